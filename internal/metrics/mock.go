package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu                sync.Mutex
	ticks             int
	noopTicks         int
	mutations         int
	rejectedMutations int
	snapshotWrites    int
	skippedWrites     int
	remoteApplied     int
	eventsAppended    int
	commitDurations   []float64
	slackNotifSent    int
	slackNotifFailed  int
	startupTime       float64
}

var _ Metrics = (*Mock)(nil)

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		commitDurations: make([]float64, 0),
	}
}

func (m *Mock) inc(field *int, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	*field += n
}

func (m *Mock) get(field *int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *field
}

func (m *Mock) IncTicks()               { m.inc(&m.ticks, 1) }
func (m *Mock) IncNoopTicks()           { m.inc(&m.noopTicks, 1) }
func (m *Mock) IncMutations()           { m.inc(&m.mutations, 1) }
func (m *Mock) IncRejectedMutations()   { m.inc(&m.rejectedMutations, 1) }
func (m *Mock) IncSnapshotWrites()      { m.inc(&m.snapshotWrites, 1) }
func (m *Mock) IncSkippedWrites()       { m.inc(&m.skippedWrites, 1) }
func (m *Mock) IncRemoteApplied()       { m.inc(&m.remoteApplied, 1) }
func (m *Mock) IncEventsAppended(n int) { m.inc(&m.eventsAppended, n) }
func (m *Mock) IncSlackNotifSent()      { m.inc(&m.slackNotifSent, 1) }
func (m *Mock) IncSlackNotifFailed()    { m.inc(&m.slackNotifFailed, 1) }

func (m *Mock) ObserveCommitDuration(seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commitDurations = append(m.commitDurations, seconds)
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

func (m *Mock) Ticks() int             { return m.get(&m.ticks) }
func (m *Mock) NoopTicks() int         { return m.get(&m.noopTicks) }
func (m *Mock) Mutations() int         { return m.get(&m.mutations) }
func (m *Mock) RejectedMutations() int { return m.get(&m.rejectedMutations) }
func (m *Mock) SnapshotWrites() int    { return m.get(&m.snapshotWrites) }
func (m *Mock) SkippedWrites() int     { return m.get(&m.skippedWrites) }
func (m *Mock) RemoteApplied() int     { return m.get(&m.remoteApplied) }
func (m *Mock) EventsAppended() int    { return m.get(&m.eventsAppended) }

// SlackNotifSent returns the number of times IncSlackNotifSent was called.
func (m *Mock) SlackNotifSent() int { return m.get(&m.slackNotifSent) }

// SlackNotifFailed returns the number of times IncSlackNotifFailed was called.
func (m *Mock) SlackNotifFailed() int { return m.get(&m.slackNotifFailed) }
