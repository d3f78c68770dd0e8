package pubsub

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"
)

// Redis relays changes over a Redis PUBLISH/SUBSCRIBE channel.
type Redis struct {
	*fanout
	client  *redis.Client
	sub     *redis.PubSub
	channel string
	cancel  context.CancelFunc
}

var _ Bus = (*Redis)(nil)

// NewRedis connects to addr and starts relaying channel to local subscribers.
func NewRedis(ctx context.Context, addr, channel string) (*Redis, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	sub := client.Subscribe(ctx, channel)
	if _, err := sub.Receive(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", channel, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	r := &Redis{
		fanout:  newFanout(),
		client:  client,
		sub:     sub,
		channel: channel,
		cancel:  cancel,
	}
	go r.relay(ctx, sub.Channel())
	log.Info("Redis change bus ready", "addr", addr, "channel", channel)
	return r, nil
}

// relay hands every message on ch to local subscribers until ctx ends or ch closes.
func (r *Redis) relay(ctx context.Context, ch <-chan *redis.Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			r.deliverEncoded([]byte(msg.Payload), msg.Channel)
		}
	}
}

func (r *Redis) Publish(ctx context.Context, c Change) error {
	data, err := Encode(c)
	if err != nil {
		return err
	}
	if err := r.client.Publish(ctx, r.channel, data).Err(); err != nil {
		log.Error("Failed to publish change", "error", err, "channel", r.channel)
		return err
	}
	return nil
}

func (r *Redis) Close() error {
	r.cancel()
	r.closeAll()
	r.sub.Close()
	return r.client.Close()
}
