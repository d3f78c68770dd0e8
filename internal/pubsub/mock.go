package pubsub

import (
	"context"
	"sync"
)

// Mock is a Bus that records publishes and delivers them like Memory.
// It is safe for concurrent use.
type Mock struct {
	*fanout
	mu sync.Mutex

	PublishFunc  func(ctx context.Context, c Change) error
	PublishCalls []Change
}

var _ Bus = (*Mock)(nil)

// NewMock creates a new mock Bus.
func NewMock() *Mock {
	return &Mock{fanout: newFanout()}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PublishCalls = nil
}

func (m *Mock) Publish(ctx context.Context, c Change) error {
	m.mu.Lock()
	m.PublishCalls = append(m.PublishCalls, c)
	fn := m.PublishFunc
	m.mu.Unlock()
	if fn != nil {
		if err := fn(ctx, c); err != nil {
			return err
		}
	}
	m.deliver(c)
	return nil
}

// Calls returns a copy of the recorded publishes.
func (m *Mock) Calls() []Change {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Change(nil), m.PublishCalls...)
}

func (m *Mock) Close() error {
	m.closeAll()
	return nil
}
