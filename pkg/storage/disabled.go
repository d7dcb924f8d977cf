package storage

import (
	"context"
	"io"
	"log/slog"

	"github.com/JaimeStill/cookbook/pkg/lifecycle"
)

// disabled rejects every operation with ErrDisabled.
type disabled struct {
	logger *slog.Logger
}

func (d disabled) Start(lc *lifecycle.Coordinator) error {
	d.logger.Warn("image storage disabled")
	return nil
}

func (disabled) Upload(ctx context.Context, key string, reader io.Reader, contentType string) error {
	return ErrDisabled
}

func (disabled) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	return nil, ErrDisabled
}

func (disabled) Delete(ctx context.Context, key string) error {
	return ErrDisabled
}

func (disabled) Exists(ctx context.Context, key string) (bool, error) {
	return false, ErrDisabled
}

func (disabled) URL(key string) string {
	return ""
}
