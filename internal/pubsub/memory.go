package pubsub

import "context"

// Memory is an in-process Bus for observers that share one process.
type Memory struct {
	*fanout
}

var _ Bus = (*Memory)(nil)

// NewMemory creates an in-process bus.
func NewMemory() *Memory {
	return &Memory{fanout: newFanout()}
}

func (m *Memory) Publish(_ context.Context, c Change) error {
	m.deliver(c)
	return nil
}

func (m *Memory) Close() error {
	m.closeAll()
	return nil
}
