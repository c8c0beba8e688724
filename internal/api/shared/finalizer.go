package shared

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/fuuti/storefront-api/internal/store"
)

// The finalizers below are the only place outside the Tx API where commit
// and rollback are invoked. A handler that opens a transaction handle passes
// it to exactly one finalizer before returning; the finalizer takes
// ownership and the handle is terminal afterwards. Both accept a nil handle
// so non-transactional handlers share the same exit paths.

// FinalizeSuccess commits the handle, then writes the success envelope. If
// the commit fails nothing was persisted, so the client gets an error
// response instead.
func FinalizeSuccess(w http.ResponseWriter, r *http.Request, tx *store.Tx, status int, data any) {
	if tx != nil {
		if err := tx.Commit(); err != nil {
			slog.Error("failed to commit transaction for response",
				"error", err,
				"path", r.URL.Path,
				"trace_id", GetTraceID(r.Context()))
			RespondWithError(w, r, http.StatusInternalServerError, "Unable to complete request")
			return
		}
	}
	RespondWithSuccess(w, r, status, data)
}

// FinalizeError rolls the handle back, then writes the error envelope. The
// internal error is logged, never sent to the client.
func FinalizeError(w http.ResponseWriter, r *http.Request, tx *store.Tx, status int, message string, err error) {
	if tx != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, store.ErrTransactionClosed) {
			slog.Error("failed to roll back transaction for response",
				"rollback_error", rbErr,
				"original_error", err,
				"path", r.URL.Path)
		}
	}

	if status >= http.StatusInternalServerError {
		slog.Error("request failed",
			"error", err,
			"status_code", status,
			"path", r.URL.Path,
			"trace_id", GetTraceID(r.Context()))
	}
	RespondWithError(w, r, status, message)
}
