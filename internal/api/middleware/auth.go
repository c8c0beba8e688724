package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/fuuti/storefront-api/internal/api/shared"
	"github.com/fuuti/storefront-api/internal/domain"
	"github.com/fuuti/storefront-api/internal/platform/logger"
	"github.com/fuuti/storefront-api/internal/service"
	"github.com/fuuti/storefront-api/internal/service/auth"
)

// AuthMiddleware guards routes with JWT authentication. A token is only
// honored while the login session it was issued for is still switched on
// and within its validity window, and while the user's account status
// permits access.
type AuthMiddleware struct {
	jwtService auth.JWTService
	sessions   *service.SessionService
	users      *service.UserService
}

// NewAuthMiddleware creates an AuthMiddleware with the given dependencies.
func NewAuthMiddleware(jwtService auth.JWTService, sessions *service.SessionService, users *service.UserService) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		sessions:   sessions,
		users:      users,
	}
}

// Authenticate validates the bearer token, resolves its session and user,
// and stores both in the request context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Authorization header required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid authorization format")
			return
		}

		claims, err := m.jwtService.ValidateToken(r.Context(), parts[1])
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrExpiredToken):
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Token expired")
			case errors.Is(err, auth.ErrInvalidToken):
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid token")
			default:
				logger.FromContext(r.Context()).Error("failed to validate token", "error", err)
				shared.RespondWithError(w, r, http.StatusInternalServerError, "Authentication error")
			}
			return
		}

		session, err := m.sessions.FindActive(r.Context(), claims.SessionID, claims.UserID)
		if err != nil {
			logger.FromContext(r.Context()).Error("failed to load login session", "error", err)
			shared.RespondWithError(w, r, http.StatusInternalServerError, "Authentication error")
			return
		}
		if session == nil {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Unable to validate user from token")
			return
		}

		if session.ExpiredAt(time.Now()) || sessionLapsed(*session) {
			if err := m.sessions.MarkExpired(r.Context(), session.ID); err != nil {
				logger.FromContext(r.Context()).Error("failed to expire session", "error", err)
			}
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Session expired")
			return
		}

		user, err := m.users.FindByID(r.Context(), session.UserID)
		if err != nil {
			logger.FromContext(r.Context()).Error("failed to load user", "error", err)
			shared.RespondWithError(w, r, http.StatusInternalServerError, "Authentication error")
			return
		}
		if user == nil {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Unable to validate user from token")
			return
		}

		if msg, ok := userStatusBlocks(user.Status); ok {
			shared.RespondWithError(w, r, http.StatusForbidden, msg)
			return
		}

		ctx := context.WithValue(r.Context(), shared.UserContextKey, *user)
		ctx = context.WithValue(ctx, shared.SessionContextKey, *session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUser extracts the authenticated user from the request context.
func GetUser(r *http.Request) (domain.User, bool) {
	user, ok := r.Context().Value(shared.UserContextKey).(domain.User)
	return user, ok
}

// GetSession extracts the authenticated session from the request context.
func GetSession(r *http.Request) (domain.LoginSession, bool) {
	session, ok := r.Context().Value(shared.SessionContextKey).(domain.LoginSession)
	return session, ok
}

func sessionLapsed(session domain.LoginSession) bool {
	return session.LoggedOut || session.Expired
}

// userStatusBlocks maps a user status to the error message shown when that
// status denies access; ok is false for statuses that may proceed.
func userStatusBlocks(status string) (string, bool) {
	switch status {
	case domain.UserStatusActive, domain.UserStatusSelfDeactivated:
		return "", false
	case domain.UserStatusSuspended, domain.UserStatusDeactivated:
		return "Account blocked", true
	case domain.UserStatusPending:
		return "Account pending activation", true
	default:
		return "Contact support", true
	}
}
