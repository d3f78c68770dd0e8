package metrics

// Metrics defines the interface for collecting application metrics.
// This decouples the application from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	IncTicks()
	IncNoopTicks()
	IncMutations()
	IncRejectedMutations()
	IncSnapshotWrites()
	IncSkippedWrites()
	IncRemoteApplied()
	IncEventsAppended(n int)
	ObserveCommitDuration(seconds float64)
	IncSlackNotifSent()
	IncSlackNotifFailed()
	SetStartupTime(duration float64)
}

// MetricsStore keeps durable lifecycle counters that survive restarts.
type MetricsStore interface {
	Increment(key string)
	GetAll() (map[string]int, error)
}
