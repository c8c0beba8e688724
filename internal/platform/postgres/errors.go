package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fuuti/storefront-api/internal/store"
)

// PostgreSQL error codes surfaced as constraint violations.
const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
	notNullViolationCode    = "23502"
	checkViolationCode      = "23514"
)

// MapError maps a database error to the store error taxonomy, wrapping the
// original error to preserve context. Every repository call site routes its
// driver errors through this function so callers can match with errors.Is.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode, foreignKeyViolationCode,
			notNullViolationCode, checkViolationCode:
			return fmt.Errorf("%w (%s): %v", store.ErrConstraintViolation, pgErr.ConstraintName, err)
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", store.ErrConnect, err)
	}

	// Errors already in the store taxonomy pass through unchanged.
	for _, sentinel := range []error{
		store.ErrTransactionClosed, store.ErrEmptyPayload,
		store.ErrSchemaMismatch, store.ErrConnect,
	} {
		if errors.Is(err, sentinel) {
			return err
		}
	}

	return fmt.Errorf("%w: %v", store.ErrQueryFailed, err)
}

// IsUniqueViolation checks if the given error is a PostgreSQL unique
// constraint violation, for callers that need to distinguish duplicates
// from other constraint failures.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
