// Package events provides the document event bus backed by NATS JetStream,
// or by an in-process bus when no NATS server is configured.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Document actions.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// Topic returns the subject for a document action: docs.<collection>.<action>.
func Topic(collection, action string) string {
	return fmt.Sprintf("docs.%s.%s", collection, action)
}

// CollectionTopics returns the wildcard subject matching every action on a collection.
func CollectionTopics(collection string) string {
	return fmt.Sprintf("docs.%s.>", collection)
}

// DocumentCreated carries the full payload of a new document.
type DocumentCreated struct {
	Collection string         `json:"collection"`
	ID         string         `json:"id"`
	Fields     map[string]any `json:"fields"`
}

// DocumentUpdated carries the fields changed by a merge update.
type DocumentUpdated struct {
	Collection string         `json:"collection"`
	ID         string         `json:"id"`
	Changes    map[string]any `json:"changes"`
}

// DocumentDeleted identifies a removed document.
type DocumentDeleted struct {
	Collection string `json:"collection"`
	ID         string `json:"id"`
}

// Envelope wraps every published payload.
type Envelope struct {
	ID    string          `json:"id"`
	Topic string          `json:"topic"`
	Time  time.Time       `json:"time"`
	Data  json.RawMessage `json:"data"`
}

// Decode parses a raw envelope received from a Subscriber.
func Decode(raw []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	return &env, nil
}

// Unmarshal decodes the envelope payload into v.
func (e *Envelope) Unmarshal(v any) error {
	if err := json.Unmarshal(e.Data, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", e.Topic, err)
	}
	return nil
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}

// Subscriber receives events from the event bus.
type Subscriber interface {
	// Subscribe delivers raw envelopes on the returned channel.
	// Topics support NATS wildcards ("*" for one token, ">" for the rest).
	// Call the returned cancel function to unsubscribe and close the channel.
	Subscribe(topic string) (<-chan []byte, func(), error)
	Close() error
}

// Redelivery limits for Consume handlers that return an error.
const (
	MaxDeliver      = 5
	RedeliveryDelay = 250 * time.Millisecond
)

// Handler processes one raw envelope. A non-nil error requests redelivery.
type Handler func(ctx context.Context, raw []byte) error

// Consumer delivers every matching event to a handler at least once.
// Unlike Subscribe, a slow handler applies back-pressure instead of losing events.
type Consumer interface {
	// Consume registers the named consumer on topic and runs handler for each
	// event until the returned stop function is called.
	Consume(ctx context.Context, name, topic string, handler Handler) (stop func(), err error)
}

// Bus publishes, subscribes and consumes on one connection.
type Bus interface {
	Publisher
	Subscriber
	Consumer
}

// deliver runs handler until it succeeds, ctx ends, or MaxDeliver attempts are spent.
func deliver(ctx context.Context, raw []byte, handler Handler) {
	for attempt := 1; ; attempt++ {
		if handler(ctx, raw) == nil || attempt == MaxDeliver {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Duration(attempt) * RedeliveryDelay):
		}
	}
}

func encode(topic string, event any) ([]byte, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshaling event: %w", err)
	}

	env := Envelope{
		ID:    uuid.NewString(),
		Topic: topic,
		Time:  time.Now().UTC(),
		Data:  data,
	}

	return json.Marshal(env)
}
