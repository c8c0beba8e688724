package store

import (
	"context"
	"database/sql"
)

// Querier is the interface shared by *sql.DB and *Tx. Repositories depend on
// it instead of a concrete connection so the same method can execute against
// an ad-hoc pooled connection or a caller-supplied transaction handle.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Compile-time verification that both executors satisfy Querier.
var (
	_ Querier = (*sql.DB)(nil)
	_ Querier = (*Tx)(nil)
)
