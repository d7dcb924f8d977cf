package docstore

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/JaimeStill/cookbook/pkg/lifecycle"
	"github.com/JaimeStill/cookbook/pkg/query"
)

type memory struct {
	mu          sync.RWMutex
	collections map[string]map[string][]byte
	logger      *slog.Logger
	newID       func() (string, error)
}

// NewMemory creates an in-process document store.
// Documents are held in their encoded form so reads never alias stored state.
func NewMemory(logger *slog.Logger) System {
	return &memory{
		collections: make(map[string]map[string][]byte),
		logger:      logger.With("system", "docstore", "driver", DriverMemory),
		newID:       NewID,
	}
}

func (m *memory) Start(lc *lifecycle.Coordinator) error {
	m.logger.Info("starting document store")
	return nil
}

func (m *memory) Create(ctx context.Context, collection string, fields Fields) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("create: %w: %v", ErrUnavailable, err)
	}

	id, err := m.newID()
	if err != nil {
		return "", err
	}

	data, err := encodeFields(fields)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	docs := m.collection(collection)
	if _, ok := docs[id]; ok {
		return "", fmt.Errorf("create: %w", ErrDuplicate)
	}
	docs[id] = data

	return id, nil
}

func (m *memory) Read(ctx context.Context, collection, id string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("read: %w: %v", ErrUnavailable, err)
	}

	m.mu.RLock()
	data, ok := m.collections[collection][id]
	m.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("read: %w", ErrNotFound)
	}

	fields, err := decodeFields(data)
	if err != nil {
		return nil, err
	}

	return &Document{Collection: collection, ID: id, Fields: fields}, nil
}

func (m *memory) Update(ctx context.Context, collection, id string, fields Fields) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("update: %w: %v", ErrUnavailable, err)
	}

	changes, err := normalize(fields)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.collections[collection][id]
	if !ok {
		return fmt.Errorf("update: %w", ErrNotFound)
	}

	current, err := decodeFields(data)
	if err != nil {
		return err
	}
	maps.Copy(current, changes)

	merged, err := encodeFields(current)
	if err != nil {
		return err
	}
	m.collections[collection][id] = merged

	return nil
}

func (m *memory) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("delete: %w: %v", ErrUnavailable, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.collections[collection][id]; !ok {
		return fmt.Errorf("delete: %w", ErrNotFound)
	}
	delete(m.collections[collection], id)

	return nil
}

func (m *memory) List(ctx context.Context, desc query.Description) (*Page, error) {
	plan, err := query.Prepare(ctx, storableDescription(desc), m)
	if err != nil {
		return nil, err
	}

	filters := make([]query.Filter, len(plan.Filters))
	for i, f := range plan.Filters {
		v, err := normalizeValue(f.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", query.ErrInvalid, err)
		}
		f.Value = v
		filters[i] = f
	}

	m.mu.RLock()
	stored := maps.Clone(m.collections[desc.Collection])
	m.mu.RUnlock()

	docs := make([]Document, 0, len(stored))
	for id, data := range stored {
		fields, err := decodeFields(data)
		if err != nil {
			return nil, err
		}
		doc := Document{Collection: desc.Collection, ID: id, Fields: fields}
		if matches(doc, filters) {
			docs = append(docs, doc)
		}
	}

	if plan.Sort != nil {
		field := plan.Sort.Field
		docs = slices.DeleteFunc(docs, func(d Document) bool {
			_, ok := d.Fields[field]
			return !ok
		})
	}

	order := ordering(plan.Sort)
	slices.SortFunc(docs, order)

	if plan.After != nil {
		anchor := Document{ID: plan.After.ID}
		if plan.Sort != nil {
			anchor.Fields = Fields{plan.Sort.Field: plan.After.Value}
		}
		docs = slices.DeleteFunc(docs, func(d Document) bool {
			return order(d, anchor) <= 0
		})
	}

	if plan.PageSize.Bounded() && len(docs) > plan.PageSize.Value() {
		docs = docs[:plan.PageSize.Value()]
	}

	return NewPage(docs), nil
}

func (m *memory) Increment(ctx context.Context, collection, id, field string, delta int64) (int64, error) {
	if err := query.ValidateField(field); err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("increment: %w: %v", ErrUnavailable, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	docs := m.collection(collection)
	current := Fields{}
	if data, ok := docs[id]; ok {
		fields, err := decodeFields(data)
		if err != nil {
			return 0, err
		}
		current = fields
	}

	var n int64
	switch v := current[field].(type) {
	case nil:
	case int64:
		n = v
	default:
		return 0, fmt.Errorf("increment %s/%s: %w: %s", collection, id, ErrNotInteger, field)
	}

	n += delta
	current[field] = n

	data, err := encodeFields(current)
	if err != nil {
		return 0, err
	}
	docs[id] = data

	return n, nil
}

// Snapshot resolves a cursor document for query.Prepare.
func (m *memory) Snapshot(ctx context.Context, collection, id string) (*query.Snapshot, error) {
	m.mu.RLock()
	data, ok := m.collections[collection][id]
	m.mu.RUnlock()

	if !ok {
		return nil, nil
	}

	fields, err := decodeFields(data)
	if err != nil {
		return nil, err
	}
	return &query.Snapshot{ID: id, Fields: fields}, nil
}

// collection returns the named collection, creating it. Callers hold the write lock.
func (m *memory) collection(name string) map[string][]byte {
	docs, ok := m.collections[name]
	if !ok {
		docs = make(map[string][]byte)
		m.collections[name] = docs
	}
	return docs
}

func matches(doc Document, filters []query.Filter) bool {
	for _, f := range filters {
		v, ok := doc.Fields[f.Field]
		if !ok || compareValues(v, f.Value) != 0 {
			return false
		}
	}
	return true
}

// ordering returns the result order: the sort field then id in the sort
// direction, or id ascending without a sort.
func ordering(s *query.Sort) func(a, b Document) int {
	if s == nil {
		return func(a, b Document) int {
			return strings.Compare(a.ID, b.ID)
		}
	}

	sign := 1
	if s.Descending() {
		sign = -1
	}

	return func(a, b Document) int {
		if c := compareValues(a.Fields[s.Field], b.Fields[s.Field]); c != 0 {
			return sign * c
		}
		return sign * strings.Compare(a.ID, b.ID)
	}
}
