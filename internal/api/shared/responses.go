// Package shared holds the response envelope, the request-scoped context
// values and the transaction finalizers used by every handler.
package shared

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// SuccessResponse is the envelope for successful responses.
type SuccessResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
}

// ErrorResponse is the envelope for error responses.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// RespondWithJSON writes a JSON response with the given status code and body.
func RespondWithJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode JSON response", "error", err, "path", r.URL.Path)
	}
}

// RespondWithSuccess writes the success envelope around data.
func RespondWithSuccess(w http.ResponseWriter, r *http.Request, status int, data any) {
	RespondWithJSON(w, r, status, SuccessResponse{Success: true, Data: data})
}

// RespondWithError writes the error envelope with the given message, tagged
// with the request's trace ID when one is present.
func RespondWithError(w http.ResponseWriter, r *http.Request, status int, message string) {
	traceID := GetTraceID(r.Context())

	slog.Debug("sending error response",
		"status_code", status,
		"message", message,
		"trace_id", traceID,
		"path", r.URL.Path,
		"method", r.Method)

	RespondWithJSON(w, r, status, ErrorResponse{Error: message, TraceID: traceID})
}
