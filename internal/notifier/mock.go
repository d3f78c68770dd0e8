package notifier

import (
	"sync"

	"github.com/mauv0809/matchdesk/internal/match"
)

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	SendMatchResultFunc func(rec match.Record, dryRun bool) (string, error)

	// Call records
	SendMatchResultCalls []struct {
		Record match.Record
		DryRun bool
	}
}

var _ Notifier = (*Mock)(nil)

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendMatchResultCalls = nil
}

func (m *Mock) SendMatchResult(rec match.Record, dryRun bool) (string, error) {
	m.mu.Lock()
	m.SendMatchResultCalls = append(m.SendMatchResultCalls, struct {
		Record match.Record
		DryRun bool
	}{rec, dryRun})
	fn := m.SendMatchResultFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(rec, dryRun)
	}
	return "mock-ts", nil
}

// Calls returns the number of result notifications sent.
func (m *Mock) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.SendMatchResultCalls)
}
