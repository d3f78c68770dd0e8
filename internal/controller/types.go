package controller

import (
	"github.com/jonboulle/clockwork"
	"github.com/mauv0809/matchdesk/internal/clock"
	"github.com/mauv0809/matchdesk/internal/match"
	"github.com/mauv0809/matchdesk/internal/metrics"
	"github.com/mauv0809/matchdesk/internal/notifier"
	"github.com/mauv0809/matchdesk/internal/pubsub"
	"github.com/mauv0809/matchdesk/internal/scheduler"
	"github.com/mauv0809/matchdesk/internal/store"
)

// Options wires a Controller to its collaborators. Store and Bus are required;
// everything else falls back to a usable default.
type Options struct {
	ObserverID string
	Rules      clock.Rules
	Store      *store.MatchStore
	Bus        pubsub.Bus
	Scheduler  *scheduler.Scheduler
	Clock      clockwork.Clock
	Metrics    metrics.Metrics
	Counters   metrics.MetricsStore
	Notifier   notifier.Notifier
	// DryRun logs result notifications instead of sending them.
	DryRun bool
}

// Listener receives a copy of the local record after every change.
// Listeners run synchronously on the writer goroutine.
type Listener func(rec match.Record)
