package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Stream settings for the JetStream stream that retains document events.
const (
	StreamName    = "DOCS"
	StreamSubject = "docs.>"
	StreamMaxAge  = 7 * 24 * time.Hour
)

type natsBus struct {
	conn *nats.Conn
	js   jetstream.JetStream
}

// NewNATS connects to NATS with automatic reconnection support and ensures the
// document event stream exists. The server must have JetStream enabled.
// Extra nats.Option values (e.g. disconnect/reconnect handlers) can be appended.
func NewNATS(url string, opts ...nats.Option) (Bus, error) {
	defaults := []nats.Option{
		nats.Name("cookbook"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
	}
	nc, err := nats.Connect(url, append(defaults, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("creating JetStream context: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     StreamName,
		Subjects: []string{StreamSubject},
		MaxAge:   StreamMaxAge,
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("ensuring stream %s: %w", StreamName, err)
	}

	return &natsBus{conn: nc, js: js}, nil
}

func (b *natsBus) Publish(ctx context.Context, topic string, event any) error {
	data, err := encode(topic, event)
	if err != nil {
		return err
	}
	if _, err := b.js.Publish(ctx, topic, data); err != nil {
		return fmt.Errorf("publishing %s: %w", topic, err)
	}
	return nil
}

// Consume binds a durable JetStream consumer. Messages are acked after handler
// succeeds and redelivered with a delay when it fails, up to MaxDeliver times.
func (b *natsBus) Consume(ctx context.Context, name, topic string, handler Handler) (func(), error) {
	cons, err := b.js.CreateOrUpdateConsumer(ctx, StreamName, jetstream.ConsumerConfig{
		Durable:       name,
		FilterSubject: topic,
		AckPolicy:     jetstream.AckExplicitPolicy,
		MaxDeliver:    MaxDeliver,
	})
	if err != nil {
		return nil, fmt.Errorf("creating consumer %s: %w", name, err)
	}

	cc, err := cons.Consume(func(msg jetstream.Msg) {
		if err := handler(ctx, msg.Data()); err != nil {
			_ = msg.NakWithDelay(RedeliveryDelay)
			return
		}
		_ = msg.Ack()
	})
	if err != nil {
		return nil, fmt.Errorf("consuming %s: %w", topic, err)
	}

	return cc.Stop, nil
}

func (b *natsBus) Subscribe(topic string) (<-chan []byte, func(), error) {
	ch := make(chan []byte, 64)

	var (
		mu     sync.Mutex
		closed bool
		once   sync.Once
	)

	sub, err := b.conn.Subscribe(topic, func(msg *nats.Msg) {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		select {
		case ch <- msg.Data:
		default:
			// full: drop rather than block the NATS client
		}
	})
	if err != nil {
		close(ch)
		return nil, nil, fmt.Errorf("subscribing to %s: %w", topic, err)
	}
	// Flush registers the subscription before returning so messages
	// published on other connections are routed.
	if err := b.conn.Flush(); err != nil {
		_ = sub.Unsubscribe()
		close(ch)
		return nil, nil, fmt.Errorf("flushing subscription: %w", err)
	}

	cancel := func() {
		once.Do(func() {
			_ = sub.Unsubscribe()
			mu.Lock()
			closed = true
			close(ch)
			mu.Unlock()
		})
	}

	return ch, cancel, nil
}

func (b *natsBus) Close() error {
	b.conn.Close()
	return nil
}
