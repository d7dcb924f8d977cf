package pagination

import (
	"context"
	"errors"
	"slices"
	"sync"
)

// ErrStale indicates a fetch result was discarded because a newer fetch was issued.
var ErrStale = errors.New("stale page discarded")

// Fetcher loads one page for params, starting after cursor ("" for the first page).
type Fetcher[T, P any] func(ctx context.Context, params P, cursor string) ([]T, error)

// State is a snapshot of a Controller.
type State[T, P any] struct {
	Params P
	Items  []T
	Seq    uint64
}

// Controller owns a visible item list and the params that produced it.
// Replace swaps the list for a fresh first page; LoadMore appends the page
// after the last visible item. Every fetch is tagged with a sequence number
// and only the latest issued fetch may change the list.
type Controller[T, P any] struct {
	mu     sync.Mutex
	fetch  Fetcher[T, P]
	id     func(T) string
	params P
	items  []T
	seq    uint64
}

// NewController creates a Controller with an empty list and the initial params.
// id returns the cursor identity of an item.
func NewController[T, P any](
	fetch func(ctx context.Context, params P, cursor string) ([]T, error),
	id func(T) string,
	initial P,
) *Controller[T, P] {
	return &Controller[T, P]{
		fetch:  fetch,
		id:     id,
		params: initial,
	}
}

// Replace fetches the first page for params. On success the list becomes the
// page and params become current. A failed or stale fetch leaves both unchanged.
func (c *Controller[T, P]) Replace(ctx context.Context, params P) error {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	c.mu.Unlock()

	page, err := c.fetch(ctx, params, "")

	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.seq {
		return ErrStale
	}
	if err != nil {
		return err
	}

	c.params = params
	c.items = slices.Clone(page)
	return nil
}

// Reset empties the list and records params without fetching. Fetches still
// in flight become stale.
func (c *Controller[T, P]) Reset(params P) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	c.params = params
	c.items = nil
}

// LoadMore fetches the page after the last visible item and appends it.
// It is a no-op on an empty list. A failed fetch leaves the list unchanged.
func (c *Controller[T, P]) LoadMore(ctx context.Context) error {
	c.mu.Lock()
	if len(c.items) == 0 {
		c.mu.Unlock()
		return nil
	}
	c.seq++
	seq := c.seq
	params := c.params
	cursor := c.id(c.items[len(c.items)-1])
	c.mu.Unlock()

	page, err := c.fetch(ctx, params, cursor)

	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.seq {
		return ErrStale
	}
	if err != nil {
		return err
	}

	c.items = append(slices.Clip(c.items), page...)
	return nil
}

// Params returns the current params.
func (c *Controller[T, P]) Params() P {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.params
}

// Items returns a copy of the visible list.
func (c *Controller[T, P]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.items)
}

// State returns a copy of the controller state.
func (c *Controller[T, P]) State() State[T, P] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State[T, P]{
		Params: c.params,
		Items:  slices.Clone(c.items),
		Seq:    c.seq,
	}
}
