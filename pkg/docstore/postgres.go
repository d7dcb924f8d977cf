package docstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/cookbook/pkg/lifecycle"
	"github.com/JaimeStill/cookbook/pkg/query"
	"github.com/JaimeStill/cookbook/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "documents", "d").
	Project("collection", "collection").
	Project("id", "id").
	Document("data", "data")

const (
	insertQuery = `
		INSERT INTO public.documents (collection, id, data)
		VALUES ($1, $2, $3::jsonb)`

	updateQuery = `
		UPDATE public.documents
		SET data = data || $3::jsonb, updated_at = now()
		WHERE collection = $1 AND id = $2`

	deleteQuery = `
		DELETE FROM public.documents
		WHERE collection = $1 AND id = $2`

	incrementQuery = `
		INSERT INTO public.documents (collection, id, data)
		VALUES ($1, $2, jsonb_build_object($3::text, $4::bigint))
		ON CONFLICT (collection, id) DO UPDATE
		SET data = documents.data || jsonb_build_object(
				$3::text,
				COALESCE((documents.data->>$3::text)::bigint, 0) + $4::bigint
			),
			updated_at = now()
		RETURNING (data->>$3::text)::bigint`
)

type postgres struct {
	db     *sql.DB
	logger *slog.Logger
	newID  func() (string, error)
}

// NewPostgres creates a document store over the documents table.
func NewPostgres(db *sql.DB, logger *slog.Logger) System {
	return &postgres{
		db:     db,
		logger: logger.With("system", "docstore", "driver", DriverPostgres),
		newID:  NewID,
	}
}

func (p *postgres) Start(lc *lifecycle.Coordinator) error {
	p.logger.Info("starting document store")
	return nil
}

func (p *postgres) Create(ctx context.Context, collection string, fields Fields) (string, error) {
	id, err := p.newID()
	if err != nil {
		return "", err
	}

	data, err := encodeFields(fields)
	if err != nil {
		return "", err
	}

	if err := repository.ExecExpectOne(ctx, p.db, insertQuery, collection, id, string(data)); err != nil {
		return "", mapError("create", err)
	}

	p.logger.Debug("document created", "collection", collection, "id", id)
	return id, nil
}

func (p *postgres) Read(ctx context.Context, collection, id string) (*Document, error) {
	q, args, err := query.NewBuilder(projection, "id").
		WhereEquals("collection", collection).
		WhereEquals("id", id).
		Limit(query.Size(1)).
		Build()
	if err != nil {
		return nil, err
	}

	doc, err := repository.QueryOne(ctx, p.db, q, args, scanDocument)
	if err != nil {
		return nil, mapError("read", err)
	}
	return &doc, nil
}

func (p *postgres) Update(ctx context.Context, collection, id string, fields Fields) error {
	data, err := encodeFields(fields)
	if err != nil {
		return err
	}

	if err := repository.ExecExpectOne(ctx, p.db, updateQuery, collection, id, string(data)); err != nil {
		return mapError("update", err)
	}

	p.logger.Debug("document updated", "collection", collection, "id", id)
	return nil
}

func (p *postgres) Delete(ctx context.Context, collection, id string) error {
	if err := repository.ExecExpectOne(ctx, p.db, deleteQuery, collection, id); err != nil {
		return mapError("delete", err)
	}

	p.logger.Debug("document deleted", "collection", collection, "id", id)
	return nil
}

func (p *postgres) List(ctx context.Context, desc query.Description) (*Page, error) {
	plan, err := query.Prepare(ctx, storableDescription(desc), p)
	if err != nil {
		return nil, err
	}

	b := query.NewBuilder(projection, "id").WhereEquals("collection", desc.Collection)
	q, args, err := plan.Apply(b).Build()
	if err != nil {
		return nil, err
	}

	docs, err := repository.QueryMany(ctx, p.db, q, args, scanDocument)
	if err != nil {
		return nil, mapError("list", err)
	}

	return NewPage(docs), nil
}

func (p *postgres) Increment(ctx context.Context, collection, id, field string, delta int64) (int64, error) {
	if err := query.ValidateField(field); err != nil {
		return 0, err
	}

	args := []any{collection, id, field, delta}
	n, err := repository.QueryOne(ctx, p.db, incrementQuery, args, repository.ScanValue[int64])
	if err != nil {
		if repository.IsInvalidCast(err) {
			return 0, fmt.Errorf("increment %s: %w", field, ErrNotInteger)
		}
		return 0, mapError("increment", err)
	}

	return n, nil
}

// Snapshot resolves a cursor document for query.Prepare.
func (p *postgres) Snapshot(ctx context.Context, collection, id string) (*query.Snapshot, error) {
	doc, err := p.Read(ctx, collection, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &query.Snapshot{ID: doc.ID, Fields: doc.Fields}, nil
}

func scanDocument(s repository.Scanner) (Document, error) {
	var (
		doc Document
		raw []byte
	)

	if err := s.Scan(&doc.Collection, &doc.ID, &raw); err != nil {
		return doc, err
	}

	fields, err := decodeFields(raw)
	if err != nil {
		return doc, err
	}
	doc.Fields = fields
	return doc, nil
}

func mapError(op string, err error) error {
	mapped := repository.MapError(err, ErrNotFound, ErrDuplicate)
	if errors.Is(mapped, ErrNotFound) || errors.Is(mapped, ErrDuplicate) {
		return fmt.Errorf("%s: %w", op, mapped)
	}
	return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
}
