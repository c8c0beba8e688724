package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fuuti/storefront-api/internal/domain"
	"github.com/fuuti/storefront-api/internal/platform/postgres"
	"github.com/fuuti/storefront-api/internal/service/auth"
	"github.com/fuuti/storefront-api/internal/store"
)

// PasswordService manages credential rows. Rotation keeps the invariant of
// one active password per user: the new row and the deactivation of the old
// one land in the same transaction.
type PasswordService struct {
	passwords *postgres.Repository[domain.UserPassword]
	hasher    auth.PasswordHasher
}

// NewPasswordService creates a PasswordService.
func NewPasswordService(db *sql.DB, hasher auth.PasswordHasher) *PasswordService {
	return &PasswordService{
		passwords: postgres.NewRepository[domain.UserPassword](db, domain.PasswordTable),
		hasher:    hasher,
	}
}

// FindActive returns the user's active credential row, or ErrUserNotFound
// when none exists.
func (s *PasswordService) FindActive(ctx context.Context, userID int64) (*domain.UserPassword, error) {
	password, err := s.passwords.FindOne(ctx, postgres.FindOptions{
		Filter: &store.Query{
			Condition: "user_id = $1 AND status = $2",
			Values:    []any{userID, domain.PasswordStatusActive},
		},
	}, nil)
	if err != nil {
		return nil, err
	}
	if password == nil {
		return nil, ErrUserNotFound
	}
	return password, nil
}

// Verify checks the plaintext candidate against the user's active credential.
// Returns ErrWrongPassword on mismatch and the credential row on success.
func (s *PasswordService) Verify(ctx context.Context, userID int64, candidate string) (*domain.UserPassword, error) {
	password, err := s.passwords.FindOne(ctx, postgres.FindOptions{
		Filter: &store.Query{
			Condition: "user_id = $1 AND status = $2",
			Values:    []any{userID, domain.PasswordStatusActive},
		},
	}, nil)
	if err != nil {
		return nil, err
	}
	if password == nil {
		return nil, ErrUserNotFound
	}
	if err := s.hasher.Compare(password.Password, candidate); err != nil {
		return nil, ErrWrongPassword
	}
	return password, nil
}

// Rotate inserts a new active credential for the user and deactivates the
// previous one, both through the caller's transaction handle.
func (s *PasswordService) Rotate(ctx context.Context, user domain.User, newPassword string, previousID int64, tx *store.Tx) error {
	hashed, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	if _, err := s.passwords.Save(ctx, store.Payload{
		"password": hashed,
		"email":    user.Email,
		"user_id":  user.ID,
	}, tx); err != nil {
		return fmt.Errorf("saving new password: %w", err)
	}

	if _, err := s.passwords.UpdateOne(ctx, &store.Query{
		Condition: "id = $1",
		Values:    []any{previousID},
	}, store.Payload{"status": domain.PasswordStatusDeactivated}, tx); err != nil {
		return fmt.Errorf("deactivating previous password: %w", err)
	}
	return nil
}
