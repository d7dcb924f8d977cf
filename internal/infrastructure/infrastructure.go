// Package infrastructure provides core service initialization for application startup.
// It assembles the shared systems (logging, database, document store, event bus,
// image storage) that domain systems require.
package infrastructure

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/JaimeStill/cookbook/internal/config"
	"github.com/JaimeStill/cookbook/pkg/database"
	"github.com/JaimeStill/cookbook/pkg/docstore"
	"github.com/JaimeStill/cookbook/pkg/events"
	"github.com/JaimeStill/cookbook/pkg/lifecycle"
	"github.com/JaimeStill/cookbook/pkg/storage"
)

// Infrastructure holds the core systems required by all domain modules.
// Database is nil when the document store runs on the memory driver.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Documents docstore.System
	Events    events.System
	Storage   storage.System
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
// The document store publishes change events on the bus and records metrics.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	var (
		db   database.System
		conn *sql.DB
	)
	if cfg.UsesDatabase() {
		var err error
		db, err = database.New(&cfg.Database, logger)
		if err != nil {
			return nil, fmt.Errorf("database init failed: %w", err)
		}
		conn = db.Connection()
	}

	bus, err := events.New(&cfg.Events, logger)
	if err != nil {
		return nil, fmt.Errorf("events init failed: %w", err)
	}

	docs, err := docstore.New(&cfg.Documents, conn, logger)
	if err != nil {
		return nil, fmt.Errorf("document store init failed: %w", err)
	}
	docs = docstore.WithEvents(docstore.WithMetrics(docs), bus, logger)

	images, err := storage.New(lc.Context(), &cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init failed: %w", err)
	}

	return &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Database:  db,
		Documents: docs,
		Events:    bus,
		Storage:   images,
	}, nil
}

// Start registers all infrastructure systems with the lifecycle coordinator.
func (i *Infrastructure) Start() error {
	if i.Database != nil {
		if err := i.Database.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("database start failed: %w", err)
		}
	}
	if err := i.Events.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("events start failed: %w", err)
	}
	if err := i.Documents.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("document store start failed: %w", err)
	}
	if err := i.Storage.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("storage start failed: %w", err)
	}
	return nil
}
