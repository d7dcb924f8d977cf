// Package counters maintains the aggregate recipe counters. A consumer
// applies every recipe creation event to the "all" counter and, for
// published recipes, the "published" counter. Counters are eventually
// consistent and never recomputed by scan.
package counters

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/cookbook/internal/recipes"
	"github.com/JaimeStill/cookbook/pkg/docstore"
	"github.com/JaimeStill/cookbook/pkg/events"
	"github.com/JaimeStill/cookbook/pkg/lifecycle"
)

// Counter documents live in Collection with an integer Field.
const (
	Collection = "recipeCounts"
	Field      = "count"

	All       = "all"
	Published = "published"
)

// Counts is a snapshot of both counters.
type Counts struct {
	All       int64 `json:"all"`
	Published int64 `json:"published"`
}

// System reads and maintains the aggregate counters.
type System interface {
	Handler() *Handler
	// Start subscribes the consumer to recipe creation events.
	Start(lc *lifecycle.Coordinator) error
	// Apply counts one created recipe.
	Apply(ctx context.Context, doc events.DocumentCreated) error
	// Counts reads both counters. A missing counter reads as zero.
	Counts(ctx context.Context) (*Counts, error)
}

type system struct {
	docs     docstore.System
	consumer events.Consumer
	logger   *slog.Logger
}

// New creates the counter system over the document store and event consumer.
func New(docs docstore.System, consumer events.Consumer, logger *slog.Logger) System {
	return &system{
		docs:     docs,
		consumer: consumer,
		logger:   logger.With("system", "counters"),
	}
}

func (s *system) Handler() *Handler {
	return NewHandler(s, s.logger)
}

func (s *system) Apply(ctx context.Context, doc events.DocumentCreated) error {
	published, _ := doc.Fields[recipes.FieldIsPublished].(bool)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.increment(ctx, All)
	})
	if published {
		g.Go(func() error {
			return s.increment(ctx, Published)
		})
	}

	return g.Wait()
}

func (s *system) Counts(ctx context.Context) (*Counts, error) {
	var counts Counts

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		counts.All, err = s.read(ctx, All)
		return err
	})
	g.Go(func() (err error) {
		counts.Published, err = s.read(ctx, Published)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &counts, nil
}

func (s *system) increment(ctx context.Context, name string) error {
	n, err := s.docs.Increment(ctx, Collection, name, Field, 1)
	if err != nil {
		return fmt.Errorf("increment %s: %w", name, err)
	}
	s.logger.Debug("counter incremented", "counter", name, "value", n)
	return nil
}

func (s *system) read(ctx context.Context, name string) (int64, error) {
	doc, err := s.docs.Read(ctx, Collection, name)
	if errors.Is(err, docstore.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", name, err)
	}

	n, _ := doc.Fields[Field].(int64)
	return n, nil
}
