package pubsub

import (
	"context"
	"fmt"
)

// Open builds the Bus selected by opts.Driver. An empty driver means memory.
func Open(ctx context.Context, opts Options) (Bus, error) {
	topic := opts.Topic
	if topic == "" {
		topic = DefaultTopic
	}
	switch opts.Driver {
	case "", DriverMemory:
		return NewMemory(), nil
	case DriverRedis:
		return NewRedis(ctx, opts.RedisAddr, topic)
	case DriverNATS:
		return NewNATS(opts.NATSURL, topic)
	case DriverGCP:
		return NewGCP(ctx, opts.ProjectID, topic, opts.Subscription)
	default:
		return nil, fmt.Errorf("unknown replication driver %q", opts.Driver)
	}
}
