package shared

import (
	"context"
	"crypto/rand"
	"encoding/hex"
)

// ContextKey is the key type for request-scoped values.
type ContextKey string

// Context keys for request-scoped values.
const (
	// UserContextKey carries the authenticated domain.User.
	UserContextKey ContextKey = "user"

	// SessionContextKey carries the authenticated login session.
	SessionContextKey ContextKey = "loginSession"

	// TraceIDKey carries the request trace ID.
	TraceIDKey ContextKey = "traceID"
)

// traceIDLength is the number of random bytes in a trace ID.
const traceIDLength = 16

// SetTraceID adds a fresh trace ID to the context, for correlating logs and
// error responses.
func SetTraceID(ctx context.Context) context.Context {
	return context.WithValue(ctx, TraceIDKey, newTraceID())
}

// GetTraceID retrieves the trace ID from the context, or "" when absent.
func GetTraceID(ctx context.Context) string {
	traceID, _ := ctx.Value(TraceIDKey).(string)
	return traceID
}

func newTraceID() string {
	b := make([]byte, traceIDLength)
	if _, err := rand.Read(b); err != nil {
		return "" // correlation is best-effort
	}
	return hex.EncodeToString(b)
}
