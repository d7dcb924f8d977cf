package repository

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation = "23505"
	pgInvalidText     = "22P02"
)

// MapError translates database errors to domain errors. sql.ErrNoRows
// becomes notFound and a unique violation becomes duplicate. Other errors
// are returned unchanged.
func MapError(err error, notFound, duplicate error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}

	if code := Code(err); code == pgUniqueViolation {
		return duplicate
	}

	return err
}

// Code returns the PostgreSQL SQLSTATE of err, or "" when err is not a server error.
func Code(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsInvalidCast reports whether err is a failed text-to-type conversion.
func IsInvalidCast(err error) bool {
	return Code(err) == pgInvalidText
}
