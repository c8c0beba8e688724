// Package auth provides token issuance/validation and password hashing.
package auth

import "context"

// Claims are the application claims carried by an auth token. A token binds
// a user to one login session; the session must still be active for the
// token to grant access.
type Claims struct {
	UserID    int64
	SessionID int64
}

// JWTService issues and validates auth tokens.
type JWTService interface {
	// GenerateToken creates a signed token for the given user and session.
	GenerateToken(ctx context.Context, userID, sessionID int64) (string, error)

	// ValidateToken verifies a token and returns its claims.
	// Returns ErrExpiredToken or ErrInvalidToken on failure.
	ValidateToken(ctx context.Context, token string) (*Claims, error)
}
