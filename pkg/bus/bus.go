// Package bus is a thin JetStream wrapper for the herald event stream. All
// article lifecycle events flow through one stream so consumers can attach
// durable cursors.
package bus

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"

	"github.com/nats-io/nats.go"
)

const (
	// StreamName holds every herald.> subject.
	StreamName = "HERALD"
	// SubjectRoot is the prefix all published subjects must carry.
	SubjectRoot = "herald.>"
)

// Bus publishes and consumes JSON events over a NATS JetStream connection.
type Bus struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// New connects to NATS and ensures the herald stream exists. Creating an
// already-existing stream with the same config is a no-op on the server.
func New(url string, opts ...nats.Option) (*Bus, error) {
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, err
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, err
	}

	_, err = js.AddStream(&nats.StreamConfig{
		Name:      StreamName,
		Subjects:  []string{SubjectRoot},
		Retention: nats.LimitsPolicy,
	})
	if err != nil && !errors.Is(err, nats.ErrStreamNameAlreadyInUse) {
		nc.Close()
		return nil, err
	}

	return &Bus{conn: nc, js: js}, nil
}

// Close drains in-flight messages before closing the connection.
func (b *Bus) Close() {
	if b == nil {
		return
	}
	if err := b.conn.Drain(); err != nil {
		b.conn.Close()
	}
}

// Publish marshals v to JSON and publishes it on subject. Publication is
// synchronous; the caller decides whether a failure is fatal.
func (b *Bus) Publish(ctx context.Context, subject string, v any) error {
	if b == nil {
		return errors.New("nil bus")
	}

	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}

	_, err = b.js.Publish(subject, payload, nats.Context(ctx))
	return err
}

// Subscribe attaches a durable consumer to subject. fn is invoked per
// message; a nil return acks, an error naks for redelivery. The returned
// Closer detaches the consumer; it is also closed when ctx ends.
func (b *Bus) Subscribe(ctx context.Context, subject, durable string, fn func(ctx context.Context, data []byte) error) (io.Closer, error) {
	if b == nil {
		return nil, errors.New("nil bus")
	}
	if fn == nil {
		return nil, errors.New("nil handler")
	}

	sub, err := b.js.Subscribe(subject, func(msg *nats.Msg) {
		msgCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		if err := fn(msgCtx, msg.Data); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	}, nats.Durable(durable), nats.ManualAck(), nats.AckExplicit())
	if err != nil {
		return nil, err
	}

	c := &consumer{sub: sub}
	go func() {
		<-ctx.Done()
		_ = c.Close()
	}()
	return c, nil
}

type consumer struct {
	sub    *nats.Subscription
	mu     sync.Mutex
	closed bool
}

func (c *consumer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.sub.Drain()
}
