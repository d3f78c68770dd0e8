package pubsub

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/nats-io/nats.go"
)

// NATS relays changes over a NATS subject.
type NATS struct {
	*fanout
	conn    *nats.Conn
	sub     *nats.Subscription
	subject string
}

var _ Bus = (*NATS)(nil)

// NewNATS connects to url and starts relaying subject to local subscribers.
func NewNATS(url, subject string) (*NATS, error) {
	conn, err := nats.Connect(url, nats.Name("matchdesk"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats at %s: %w", url, err)
	}

	n := &NATS{fanout: newFanout(), conn: conn, subject: subject}
	n.sub, err = conn.Subscribe(subject, n.handle)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", subject, err)
	}
	log.Info("NATS change bus ready", "url", url, "subject", subject)
	return n, nil
}

func (n *NATS) handle(msg *nats.Msg) {
	n.deliverEncoded(msg.Data, msg.Subject)
}

func (n *NATS) Publish(_ context.Context, c Change) error {
	data, err := Encode(c)
	if err != nil {
		return err
	}
	if err := n.conn.Publish(n.subject, data); err != nil {
		log.Error("Failed to publish change", "error", err, "subject", n.subject)
		return err
	}
	return nil
}

func (n *NATS) Close() error {
	if err := n.sub.Unsubscribe(); err != nil {
		log.Warn("Failed to unsubscribe", "error", err)
	}
	n.closeAll()
	n.conn.Close()
	return nil
}
