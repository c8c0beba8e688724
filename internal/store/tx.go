package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fuuti/storefront-api/internal/platform/logger"
)

// DefaultTxTimeout bounds how long a transaction handle may live. A hung
// connection would otherwise pin the handle until the network layer gives up.
const DefaultTxTimeout = 30 * time.Second

// Tx is a transaction handle: one connection checked out of the pool with an
// open transaction on it. A handle is exclusively owned by the workflow that
// opened it until it is passed to a finalizer. After Commit or Rollback the
// handle is terminal; any further use fails with ErrTransactionClosed. The
// underlying connection is released exactly once, on the terminal transition,
// regardless of whether COMMIT or ROLLBACK itself succeeded.
//
// A handle wraps a single physical connection and must not be shared between
// concurrently running requests.
type Tx struct {
	conn   *sql.Conn
	tx     *sql.Tx
	cancel context.CancelFunc

	mu   sync.Mutex
	done bool
}

// Begin checks a connection out of the pool and opens a transaction on it.
// The handle carries a deadline derived from timeout (DefaultTxTimeout when
// zero); the transaction is aborted if it is still open when the deadline
// passes. Acquisition failures, including pool-exhaustion timeouts, are
// reported as ErrConnect.
func Begin(ctx context.Context, db *sql.DB, timeout time.Duration) (*Tx, error) {
	if timeout <= 0 {
		timeout = DefaultTxTimeout
	}
	txCtx, cancel := context.WithTimeout(ctx, timeout)

	conn, err := db.Conn(txCtx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("%w: %v", ErrConnect, err)
	}

	tx, err := conn.BeginTx(txCtx, nil)
	if err != nil {
		_ = conn.Close()
		cancel()
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}

	return &Tx{conn: conn, tx: tx, cancel: cancel}, nil
}

// ExecContext executes a statement inside the transaction. Valid only while
// the handle is open.
func (t *Tx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if err := t.usable(); err != nil {
		return nil, err
	}
	return t.tx.ExecContext(ctx, query, args...)
}

// QueryContext runs a query inside the transaction. Valid only while the
// handle is open.
func (t *Tx) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	if err := t.usable(); err != nil {
		return nil, err
	}
	return t.tx.QueryContext(ctx, query, args...)
}

// Commit issues COMMIT and transitions the handle to its terminal state. The
// connection is released back to the pool even when COMMIT fails.
func (t *Tx) Commit() error {
	if err := t.finish(); err != nil {
		return err
	}
	defer t.release()
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Rollback issues ROLLBACK and transitions the handle to its terminal state.
// The connection is released back to the pool even when ROLLBACK fails.
func (t *Tx) Rollback() error {
	if err := t.finish(); err != nil {
		return err
	}
	defer t.release()
	if err := t.tx.Rollback(); err != nil {
		return fmt.Errorf("rolling back transaction: %w", err)
	}
	return nil
}

// Closed reports whether the handle has reached a terminal state.
func (t *Tx) Closed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}

func (t *Tx) usable() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return ErrTransactionClosed
	}
	return nil
}

// finish claims the terminal transition. Only the first caller wins; every
// later commit or rollback attempt reports ErrTransactionClosed.
func (t *Tx) finish() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return ErrTransactionClosed
	}
	t.done = true
	return nil
}

func (t *Tx) release() {
	_ = t.conn.Close()
	t.cancel()
}

// TxFn runs inside a transaction opened by WithTx.
type TxFn func(tx *Tx) error

// WithTx opens a handle, runs fn, and finalizes: commit when fn returns nil,
// rollback otherwise. It is the service-internal counterpart of the HTTP
// response finalizer, for multi-step writes that are not tied to a request.
func WithTx(ctx context.Context, db *sql.DB, timeout time.Duration, fn TxFn) error {
	log := logger.FromContext(ctx)

	tx, err := Begin(ctx, db, timeout)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, ErrTransactionClosed) {
				log.Error("failed to roll back transaction after panic",
					"error", rbErr, "panic", p)
			}
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, ErrTransactionClosed) {
			log.Error("failed to roll back transaction",
				"rollback_error", rbErr, "original_error", err)
			return fmt.Errorf("rolling back transaction: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit transaction", "error", err)
		return err
	}
	return nil
}
