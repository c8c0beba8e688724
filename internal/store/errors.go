package store

import "errors"

// Common store errors used across the data-access layer.
var (
	// ErrEmptyPayload is returned when an insert or update is attempted
	// with no columns to write.
	ErrEmptyPayload = errors.New("empty payload")

	// ErrSchemaMismatch is returned by bulk inserts when the rows do not
	// all share the same column set.
	ErrSchemaMismatch = errors.New("bulk insert rows have mismatched columns")

	// ErrConstraintViolation is returned when the database rejects a write
	// due to a unique, foreign-key, not-null or check constraint.
	ErrConstraintViolation = errors.New("constraint violation")

	// ErrConnect is returned when a connection cannot be acquired from the
	// pool, including acquisition timeouts when the pool is exhausted.
	ErrConnect = errors.New("could not acquire database connection")

	// ErrTransactionClosed is returned when a transaction handle is used
	// after it has been committed or rolled back. This is a programming
	// error in the caller, not a transient condition.
	ErrTransactionClosed = errors.New("transaction already finalized")

	// ErrQueryFailed is returned for store-reported execution failures that
	// have no more specific mapping.
	ErrQueryFailed = errors.New("query execution failed")
)
