package docstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/JaimeStill/cookbook/pkg/events"
	"github.com/JaimeStill/cookbook/pkg/metrics"
	"github.com/JaimeStill/cookbook/pkg/query"
)

// New creates the driver selected by cfg. db is required for the postgres driver.
func New(cfg *Config, db *sql.DB, logger *slog.Logger) (System, error) {
	switch cfg.Driver {
	case DriverMemory:
		return NewMemory(logger), nil
	case DriverPostgres:
		if db == nil {
			return nil, fmt.Errorf("postgres driver requires a database connection")
		}
		return NewPostgres(db, logger), nil
	}
	return nil, fmt.Errorf("unsupported driver %q", cfg.Driver)
}

type eventing struct {
	System
	pub    events.Publisher
	logger *slog.Logger
}

// WithEvents publishes a docs.<collection>.<action> event after each
// successful mutation. Publish failures are logged and never fail the write.
func WithEvents(sys System, pub events.Publisher, logger *slog.Logger) System {
	return &eventing{
		System: sys,
		pub:    pub,
		logger: logger.With("system", "docstore-events"),
	}
}

func (e *eventing) Create(ctx context.Context, collection string, fields Fields) (string, error) {
	id, err := e.System.Create(ctx, collection, fields)
	if err != nil {
		return "", err
	}

	e.publish(ctx, events.Topic(collection, events.ActionCreated), events.DocumentCreated{
		Collection: collection,
		ID:         id,
		Fields:     storableMap(fields),
	})
	return id, nil
}

func (e *eventing) Update(ctx context.Context, collection, id string, fields Fields) error {
	if err := e.System.Update(ctx, collection, id, fields); err != nil {
		return err
	}

	e.publish(ctx, events.Topic(collection, events.ActionUpdated), events.DocumentUpdated{
		Collection: collection,
		ID:         id,
		Changes:    storableMap(fields),
	})
	return nil
}

func (e *eventing) Delete(ctx context.Context, collection, id string) error {
	if err := e.System.Delete(ctx, collection, id); err != nil {
		return err
	}

	e.publish(ctx, events.Topic(collection, events.ActionDeleted), events.DocumentDeleted{
		Collection: collection,
		ID:         id,
	})
	return nil
}

func (e *eventing) publish(ctx context.Context, topic string, event any) {
	if err := e.pub.Publish(context.WithoutCancel(ctx), topic, event); err != nil {
		e.logger.Warn("event publish failed", "topic", topic, "error", err)
	}
}

type instrumented struct {
	System
}

// WithMetrics records operation counts and durations for sys.
func WithMetrics(sys System) System {
	return &instrumented{System: sys}
}

func (i *instrumented) Create(ctx context.Context, collection string, fields Fields) (string, error) {
	start := time.Now()
	id, err := i.System.Create(ctx, collection, fields)
	record("create", start, err)
	return id, err
}

func (i *instrumented) Read(ctx context.Context, collection, id string) (*Document, error) {
	start := time.Now()
	doc, err := i.System.Read(ctx, collection, id)
	record("read", start, err)
	return doc, err
}

func (i *instrumented) Update(ctx context.Context, collection, id string, fields Fields) error {
	start := time.Now()
	err := i.System.Update(ctx, collection, id, fields)
	record("update", start, err)
	return err
}

func (i *instrumented) Delete(ctx context.Context, collection, id string) error {
	start := time.Now()
	err := i.System.Delete(ctx, collection, id)
	record("delete", start, err)
	return err
}

func (i *instrumented) List(ctx context.Context, desc query.Description) (*Page, error) {
	start := time.Now()
	page, err := i.System.List(ctx, desc)
	record("list", start, err)
	return page, err
}

func (i *instrumented) Increment(ctx context.Context, collection, id, field string, delta int64) (int64, error) {
	start := time.Now()
	n, err := i.System.Increment(ctx, collection, id, field, delta)
	record("increment", start, err)
	return n, err
}

func record(op string, start time.Time, err error) {
	metrics.RecordStoreOperation(op, outcome(err), time.Since(start).Seconds())
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidQuery):
		return "invalid"
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	}
	return "error"
}
