package pubsub

import "context"

// Bus carries slot changes between observers. Delivery is best-effort: a change reaches
// every live subscriber except its Origin, and is dropped for subscribers that are not
// keeping up.
type Bus interface {
	Publish(ctx context.Context, change Change) error
	// Subscribe registers observerID and returns its feed plus a cancel func.
	Subscribe(observerID string) (<-chan Change, func())
	Close() error
}
