package pubsub

import "time"

// Driver names accepted by Open.
const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
	DriverNATS   = "nats"
	DriverGCP    = "gcp"
)

// DefaultTopic is the channel/subject/topic used when none is configured.
const DefaultTopic = "matchdesk-changes"

// Change announces that a slot was rewritten. Value carries the new serialized
// snapshot; Deleted marks a removed slot. Origin is the writer's observer id.
type Change struct {
	Key     string    `msgpack:"key" json:"key"`
	Value   []byte    `msgpack:"value" json:"value,omitempty"`
	Deleted bool      `msgpack:"deleted" json:"deleted"`
	Origin  string    `msgpack:"origin" json:"origin"`
	At      time.Time `msgpack:"at" json:"at"`
}

// Options configures the network drivers.
type Options struct {
	Driver       string
	Topic        string
	RedisAddr    string
	NATSURL      string
	ProjectID    string
	Subscription string
}
