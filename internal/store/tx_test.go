package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockTx(t *testing.T) (sqlmock.Sqlmock, *Tx) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectBegin()
	tx, err := Begin(context.Background(), db, time.Minute)
	require.NoError(t, err)
	return mock, tx
}

func TestTxCommit(t *testing.T) {
	mock, tx := newMockTx(t)

	mock.ExpectExec("UPDATE products").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	_, err := tx.ExecContext(context.Background(), "UPDATE products SET status = $1", "active")
	require.NoError(t, err)

	require.NoError(t, tx.Commit())
	assert.True(t, tx.Closed())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTxRollback(t *testing.T) {
	mock, tx := newMockTx(t)

	mock.ExpectRollback()

	require.NoError(t, tx.Rollback())
	assert.True(t, tx.Closed())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTxTerminalAfterCommit(t *testing.T) {
	mock, tx := newMockTx(t)

	mock.ExpectCommit()
	require.NoError(t, tx.Commit())

	_, err := tx.ExecContext(context.Background(), "SELECT 1")
	assert.ErrorIs(t, err, ErrTransactionClosed)

	_, err = tx.QueryContext(context.Background(), "SELECT 1")
	assert.ErrorIs(t, err, ErrTransactionClosed)

	assert.ErrorIs(t, tx.Commit(), ErrTransactionClosed)
	assert.ErrorIs(t, tx.Rollback(), ErrTransactionClosed)
}

func TestTxTerminalAfterRollback(t *testing.T) {
	mock, tx := newMockTx(t)

	mock.ExpectRollback()
	require.NoError(t, tx.Rollback())

	assert.ErrorIs(t, tx.Rollback(), ErrTransactionClosed)
	assert.ErrorIs(t, tx.Commit(), ErrTransactionClosed)
}

func TestBeginWrapsBeginFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectBegin().WillReturnError(errors.New("boom"))

	_, err = Begin(context.Background(), db, time.Minute)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "beginning transaction")
}

func TestWithTxCommitsOnSuccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE otps").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err = WithTx(context.Background(), db, time.Minute, func(tx *Tx) error {
		_, execErr := tx.ExecContext(context.Background(), "UPDATE otps SET status = $1", "used")
		return execErr
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTxRollsBackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectBegin()
	mock.ExpectRollback()

	wantErr := errors.New("step failed")
	err = WithTx(context.Background(), db, time.Minute, func(tx *Tx) error {
		return wantErr
	})
	assert.ErrorIs(t, err, wantErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTxRollsBackOnPanic(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.Panics(t, func() {
		_ = WithTx(context.Background(), db, time.Minute, func(tx *Tx) error {
			panic("boom")
		})
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}
