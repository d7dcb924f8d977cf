package database

import "errors"

var (
	// ErrNotReady indicates the database connection has not been established.
	ErrNotReady = errors.New("database not ready")
	// ErrSchemaMissing indicates the documents table does not exist; run cmd/migrate.
	ErrSchemaMissing = errors.New("documents table missing")
)
