package store

import "context"

// Fixed slot names.
const (
	CurrentKey = "current_match"
	HistoryKey = "match_history"
)

// Slots is a durable key/value store of serialized snapshots.
type Slots interface {
	// Get returns the value stored under key and whether it exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
