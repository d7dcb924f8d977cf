package query

import (
	"context"
	"fmt"
)

// Snapshot is a point-in-time read of a single document used to anchor a cursor.
type Snapshot struct {
	ID     string
	Fields map[string]any
}

// Resolver reads a document snapshot by id.
// Implementations return (nil, nil) when the document does not exist.
type Resolver interface {
	Snapshot(ctx context.Context, collection, id string) (*Snapshot, error)
}

// Anchor is the resolved "start after" position of a cursor: the cursor
// document's id and, when a sort is active, its value for the sort field.
type Anchor struct {
	ID    string
	Value any
}

// Plan is a validated Description with its cursor resolved.
type Plan struct {
	Description
	After *Anchor
}

// Prepare validates desc and resolves its cursor into an Anchor.
// Cursor resolution is a separate read that runs before the paged read;
// an id that does not resolve, or a cursor document missing the sort
// field, is reported as ErrInvalid. Resolver failures are returned unchanged.
func Prepare(ctx context.Context, desc Description, r Resolver) (*Plan, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}

	plan := &Plan{Description: desc}
	if desc.Cursor == "" {
		return plan, nil
	}

	snap, err := r.Snapshot(ctx, desc.Collection, desc.Cursor)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, fmt.Errorf("%w: cursor %q does not resolve", ErrInvalid, desc.Cursor)
	}

	anchor := &Anchor{ID: snap.ID}
	if desc.Sort != nil {
		v, ok := snap.Fields[desc.Sort.Field]
		if !ok {
			return nil, fmt.Errorf(
				"%w: cursor %q has no value for sort field %s",
				ErrInvalid, desc.Cursor, desc.Sort.Field,
			)
		}
		anchor.Value = v
	}

	plan.After = anchor
	return plan, nil
}

// Apply composes the plan onto b in fixed order: filters, sort, limit, cursor.
func (p *Plan) Apply(b *Builder) *Builder {
	for _, f := range p.Filters {
		b.WhereField(f)
	}
	return b.
		OrderBy(p.Sort).
		Limit(p.PageSize).
		StartAfter(p.After)
}
