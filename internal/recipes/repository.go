package recipes

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/JaimeStill/cookbook/pkg/docstore"
	"github.com/JaimeStill/cookbook/pkg/pagination"
	"github.com/JaimeStill/cookbook/pkg/storage"
)

type repo struct {
	docs       docstore.System
	images     storage.System
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a recipe repository implementing the System interface.
func New(
	docs docstore.System,
	images storage.System,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		docs:       docs,
		images:     images,
		logger:     logger.With("system", "recipes"),
		pagination: pagination,
	}
}

func (r *repo) Handler(maxUploadSize int64) *Handler {
	return NewHandler(r, r.logger, r.pagination, maxUploadSize)
}

func (r *repo) List(ctx context.Context, params Params, cursor string) (*Page, error) {
	page, err := r.docs.List(ctx, params.Describe(cursor))
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	return toPage(page), nil
}

func (r *repo) Find(ctx context.Context, id string) (*Recipe, error) {
	doc, err := r.docs.Read(ctx, Collection, id)
	if err != nil {
		return nil, mapError(err)
	}

	recipe := fromDocument(*doc)
	return &recipe, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Recipe, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	id, err := r.docs.Create(ctx, Collection, createFields(cmd))
	if err != nil {
		return nil, fmt.Errorf("create recipe: %w", err)
	}

	r.logger.Info("recipe created", "id", id, "name", cmd.Name, "published", cmd.IsPublished)

	return &Recipe{
		ID:          id,
		Name:        cmd.Name,
		Category:    cmd.Category,
		PublishDate: docstore.TimestampOf(cmd.PublishDate).Time(),
		IsPublished: cmd.IsPublished,
		ImageURL:    cmd.ImageURL,
	}, nil
}

func (r *repo) Update(ctx context.Context, id string, cmd UpdateCommand) (*Recipe, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	if err := r.docs.Update(ctx, Collection, id, updateFields(cmd)); err != nil {
		return nil, mapError(err)
	}

	r.logger.Info("recipe updated", "id", id)
	return r.Find(ctx, id)
}

func (r *repo) Delete(ctx context.Context, id string) error {
	if err := r.docs.Delete(ctx, Collection, id); err != nil {
		return mapError(err)
	}

	r.logger.Info("recipe deleted", "id", id)
	return nil
}

func (r *repo) UploadImage(ctx context.Context, filename, contentType string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty file", ErrInvalidImage)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("%w: content type %q", ErrInvalidImage, contentType)
	}

	prefix, err := docstore.NewID()
	if err != nil {
		return "", err
	}
	key := buildImageKey(prefix, sanitizeFilename(filename))

	if err := r.images.Upload(ctx, key, bytes.NewReader(data), contentType); err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}

	r.logger.Info("image uploaded", "key", key, "size", len(data))
	return r.images.URL(key), nil
}

func mapError(err error) error {
	if errors.Is(err, docstore.ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}

func buildImageKey(prefix, filename string) string {
	return fmt.Sprintf("images/%s/%s", prefix, filename)
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	if name == "." || name == "/" || name == "" {
		name = "image"
	}
	return url.PathEscape(name)
}
