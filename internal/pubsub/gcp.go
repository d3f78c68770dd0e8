package pubsub

import (
	"context"
	"fmt"

	"cloud.google.com/go/pubsub"
	"github.com/charmbracelet/log"
)

// GCP relays changes over a Google Cloud Pub/Sub topic. Every observer process needs its
// own subscription on the topic so that each one sees every change.
type GCP struct {
	*fanout
	client *pubsub.Client
	topic  *pubsub.Topic
	cancel context.CancelFunc
	done   chan struct{}
}

var _ Bus = (*GCP)(nil)

// NewGCP opens topicID in projectID and starts receiving on subscriptionID.
func NewGCP(ctx context.Context, projectID, topicID, subscriptionID string) (*GCP, error) {
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create pubsub client: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	g := &GCP{
		fanout: newFanout(),
		client: client,
		topic:  client.Topic(topicID),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go g.receive(ctx, client.Subscription(subscriptionID))
	log.Info("GCP change bus ready", "project", projectID, "topic", topicID, "subscription", subscriptionID)
	return g, nil
}

func (g *GCP) receive(ctx context.Context, sub *pubsub.Subscription) {
	defer close(g.done)
	err := sub.Receive(ctx, func(_ context.Context, msg *pubsub.Message) {
		// Changes are best-effort; a payload that cannot be decoded is not worth redelivering.
		msg.Ack()
		g.handle(msg.ID, msg.Data)
	})
	if err != nil && ctx.Err() == nil {
		log.Error("Pubsub receive stopped", "error", err)
	}
}

func (g *GCP) handle(messageID string, data []byte) {
	g.deliverEncoded(data, messageID)
}

func (g *GCP) Publish(ctx context.Context, c Change) error {
	data, err := Encode(c)
	if err != nil {
		return err
	}
	result := g.topic.Publish(ctx, &pubsub.Message{Data: data})
	serverID, err := result.Get(ctx)
	if err != nil {
		log.Error("Failed to publish message", "error", err, "topic", g.topic.ID())
		return err
	}
	log.Debug("Published change", "serverID", serverID, "key", c.Key)
	return nil
}

func (g *GCP) Close() error {
	g.cancel()
	<-g.done
	g.topic.Stop()
	g.closeAll()
	return g.client.Close()
}
