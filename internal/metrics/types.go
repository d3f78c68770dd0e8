package metrics

import "github.com/prometheus/client_golang/prometheus"

// Durable counter keys written to the metrics table.
const (
	KeyMatchesConfigured = "matches_configured"
	KeyMatchesFinished   = "matches_finished"
	KeyMatchesDiscarded  = "matches_discarded"
)

// Service holds all the Prometheus metrics for the application.
// By defining them all in one place, we ensure consistency in naming and labeling.
type Service struct {
	Ticks              prometheus.Counter
	NoopTicks          prometheus.Counter
	Mutations          prometheus.Counter
	RejectedMutations  prometheus.Counter
	SnapshotWrites     prometheus.Counter
	SkippedWrites      prometheus.Counter
	RemoteApplied      prometheus.Counter
	EventsAppended     prometheus.Counter
	CommitDuration     prometheus.Histogram
	SlackNotifSent     prometheus.Counter
	SlackNotifFailed   prometheus.Counter
	StartupTimeSeconds prometheus.Gauge
}
