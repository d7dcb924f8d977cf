// Package docstore is a schemaless document store over named collections.
// Documents are flat field maps addressed by (collection, id); reads, merge
// updates, deletes, paged queries described by query.Description, and an
// atomic increment are provided by a PostgreSQL JSONB driver and an
// in-memory driver with the same semantics.
package docstore

import (
	"context"
	"fmt"

	nanoid "github.com/matoous/go-nanoid/v2"

	"github.com/JaimeStill/cookbook/pkg/lifecycle"
	"github.com/JaimeStill/cookbook/pkg/query"
)

// IDAlphabet is the character set for generated document ids.
const IDAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// IDLength is the length of generated document ids.
const IDLength = 20

// Fields is the top-level field map of a document.
type Fields map[string]any

// Document is a stored record.
type Document struct {
	Collection string `json:"collection"`
	ID         string `json:"id"`
	Fields     Fields `json:"fields"`
}

// Page is one page of a List result. Cursor is the id of the last
// document, or empty when the page is empty.
type Page struct {
	Documents []Document `json:"documents"`
	Cursor    string     `json:"cursor,omitempty"`
}

// NewPage builds a Page, deriving the cursor from the last document.
func NewPage(docs []Document) *Page {
	if docs == nil {
		docs = []Document{}
	}

	page := &Page{Documents: docs}
	if len(docs) > 0 {
		page.Cursor = docs[len(docs)-1].ID
	}
	return page
}

// System is the document store contract.
type System interface {
	// Start registers lifecycle hooks.
	Start(lc *lifecycle.Coordinator) error
	// Create stores fields under a new generated id. It never overwrites.
	Create(ctx context.Context, collection string, fields Fields) (string, error)
	// Read returns the document or ErrNotFound.
	Read(ctx context.Context, collection, id string) (*Document, error)
	// Update merges fields into the document's top level. Unlisted fields are kept.
	Update(ctx context.Context, collection, id string, fields Fields) error
	// Delete removes the document or returns ErrNotFound.
	Delete(ctx context.Context, collection, id string) error
	// List resolves the description's cursor, then returns one page.
	List(ctx context.Context, desc query.Description) (*Page, error)
	// Increment atomically adds delta to an integer field and returns the new value.
	// A missing document or field starts from zero.
	Increment(ctx context.Context, collection, id, field string, delta int64) (int64, error)
}

// NewID returns a new random document id.
func NewID() (string, error) {
	id, err := nanoid.Generate(IDAlphabet, IDLength)
	if err != nil {
		return "", fmt.Errorf("generate id: %w", err)
	}
	return id, nil
}

// storableDescription converts filter values to their stored form.
func storableDescription(desc query.Description) query.Description {
	if len(desc.Filters) == 0 {
		return desc
	}

	filters := make([]query.Filter, len(desc.Filters))
	for i, f := range desc.Filters {
		f.Value = storable(f.Value)
		filters[i] = f
	}
	desc.Filters = filters
	return desc
}
