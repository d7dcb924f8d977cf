// Package database provides PostgreSQL connection management with lifecycle coordination.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/JaimeStill/cookbook/pkg/lifecycle"
)

// System manages database connections and lifecycle coordination.
type System interface {
	// Connection returns the underlying database connection pool.
	Connection() *sql.DB
	// Start registers startup and shutdown hooks with the lifecycle coordinator.
	Start(lc *lifecycle.Coordinator) error
}

// DocumentsTable is the relation every document driver reads and writes.
const DocumentsTable = "public.documents"

type database struct {
	conn        *sql.DB
	logger      *slog.Logger
	connTimeout time.Duration
}

// New opens a pgx-backed pool with the configured limits. No connection is
// made until Start pings the server.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	db, err := sql.Open("pgx", cfg.Dsn())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())

	return FromConn(db, cfg.ConnTimeoutDuration(), logger), nil
}

// FromConn wraps an existing pool. Start pings it and checks the schema
// within connTimeout.
func FromConn(db *sql.DB, connTimeout time.Duration, logger *slog.Logger) System {
	return &database{
		conn:        db,
		logger:      logger.With("system", "database"),
		connTimeout: connTimeout,
	}
}

func (d *database) Connection() *sql.DB {
	return d.conn
}

func (d *database) Start(lc *lifecycle.Coordinator) error {
	d.logger.Info("starting database connection")

	lc.OnStartupErr("database", func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, d.connTimeout)
		defer cancel()

		if err := d.conn.PingContext(pingCtx); err != nil {
			d.logger.Error("database ping failed", "error", err)
			return fmt.Errorf("%w: %v", ErrNotReady, err)
		}

		if err := d.checkSchema(pingCtx); err != nil {
			d.logger.Error("database schema check failed", "table", DocumentsTable, "error", err)
			return err
		}

		d.logger.Info("database connection established", "table", DocumentsTable)
		return nil
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		d.logger.Info("closing database connection")

		if err := d.conn.Close(); err != nil {
			d.logger.Error("database close failed", "error", err)
			return
		}

		d.logger.Info("database connection closed")
	})

	return nil
}

func (d *database) checkSchema(ctx context.Context) error {
	var exists bool
	err := d.conn.QueryRowContext(ctx, "SELECT to_regclass($1) IS NOT NULL", DocumentsTable).Scan(&exists)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotReady, err)
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrSchemaMissing, DocumentsTable)
	}
	return nil
}
