package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

func counter(name, help string) prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{Name: "matchdesk_" + name, Help: help})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		Ticks:             counter("ticks_total", "The total number of scheduler ticks."),
		NoopTicks:         counter("noop_ticks_total", "Ticks skipped because no clock was running."),
		Mutations:         counter("mutations_total", "Committed match record mutations."),
		RejectedMutations: counter("rejected_mutations_total", "Mutations rejected by validation."),
		SnapshotWrites:    counter("snapshot_writes_total", "Snapshots written to the current match slot."),
		SkippedWrites:     counter("skipped_writes_total", "Writes skipped because the snapshot was unchanged."),
		RemoteApplied:     counter("remote_snapshots_applied_total", "Snapshots received from other observers."),
		EventsAppended:    counter("events_appended_total", "Events appended to match logs."),
		CommitDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "matchdesk_commit_duration_seconds",
			Help:    "Time spent persisting and broadcasting one mutation.",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		SlackNotifSent:   counter("slack_notifications_sent_total", "The total number of Slack notifications successfully sent."),
		SlackNotifFailed: counter("slack_notifications_failed_total", "The total number of Slack notifications that failed to send."),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "matchdesk_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.Ticks,
		s.NoopTicks,
		s.Mutations,
		s.RejectedMutations,
		s.SnapshotWrites,
		s.SkippedWrites,
		s.RemoteApplied,
		s.EventsAppended,
		s.CommitDuration,
		s.SlackNotifSent,
		s.SlackNotifFailed,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncTicks()             { s.Ticks.Inc() }
func (s *Service) IncNoopTicks()         { s.NoopTicks.Inc() }
func (s *Service) IncMutations()         { s.Mutations.Inc() }
func (s *Service) IncRejectedMutations() { s.RejectedMutations.Inc() }
func (s *Service) IncSnapshotWrites()    { s.SnapshotWrites.Inc() }
func (s *Service) IncSkippedWrites()     { s.SkippedWrites.Inc() }
func (s *Service) IncRemoteApplied()     { s.RemoteApplied.Inc() }

func (s *Service) IncEventsAppended(n int) {
	s.EventsAppended.Add(float64(n))
}

func (s *Service) ObserveCommitDuration(seconds float64) {
	s.CommitDuration.Observe(seconds)
}

func (s *Service) IncSlackNotifSent() {
	s.SlackNotifSent.Inc()
}

func (s *Service) IncSlackNotifFailed() {
	s.SlackNotifFailed.Inc()
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
