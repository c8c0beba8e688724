// Package middleware provides HTTP middleware for the API.
package middleware

import (
	"log/slog"
	"net/http"

	"github.com/fuuti/storefront-api/internal/api/shared"
	"github.com/fuuti/storefront-api/internal/platform/logger"
)

// NewTraceMiddleware returns middleware that tags each request with a trace
// ID and places a correspondingly tagged logger in the request context.
func NewTraceMiddleware(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := shared.SetTraceID(r.Context())
			reqLog := log.With("trace_id", shared.GetTraceID(ctx))
			ctx = logger.WithLogger(ctx, reqLog)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
