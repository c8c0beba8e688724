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

// UserService handles account lifecycle workflows: signup, activation and
// lookup. Signup is a three-table write (user, password, OTP) threaded
// through a single transaction handle owned by the caller.
type UserService struct {
	users     *postgres.Repository[domain.User]
	passwords *postgres.Repository[domain.UserPassword]
	otps      *OTPService
	hasher    auth.PasswordHasher
	mailer    Mailer
}

// NewUserService creates a UserService.
func NewUserService(db *sql.DB, otps *OTPService, hasher auth.PasswordHasher, mailer Mailer) *UserService {
	return &UserService{
		users:     postgres.NewRepository[domain.User](db, domain.UserTable),
		passwords: postgres.NewRepository[domain.UserPassword](db, domain.PasswordTable),
		otps:      otps,
		hasher:    hasher,
		mailer:    mailer,
	}
}

// RegisterInput carries the validated signup fields.
type RegisterInput struct {
	FirstName  string
	LastName   string
	MiddleName string
	Email      string
	Phone      string
	Gender     string
	Password   string
}

// Register inserts the user, their credential row and an email-verification
// OTP through the caller's transaction handle, then hands the plaintext code
// to the mailer. The caller finalizes the handle; nothing is visible until
// it commits.
func (s *UserService) Register(ctx context.Context, input RegisterInput, tx *store.Tx) (domain.User, error) {
	userPayload := store.Payload{
		"first_name": input.FirstName,
		"last_name":  input.LastName,
		"email":      input.Email,
		"phone":      input.Phone,
		"gender":     input.Gender,
	}
	if input.MiddleName != "" {
		userPayload["middle_name"] = input.MiddleName
	}

	user, err := s.users.Save(ctx, userPayload, tx)
	if err != nil {
		return domain.User{}, fmt.Errorf("saving user: %w", err)
	}

	hashed, err := s.hasher.Hash(input.Password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hashing password: %w", err)
	}

	_, err = s.passwords.Save(ctx, store.Payload{
		"password": hashed,
		"email":    user.Email,
		"user_id":  user.ID,
	}, tx)
	if err != nil {
		return domain.User{}, fmt.Errorf("saving password: %w", err)
	}

	code, err := s.otps.Generate(ctx, user.ID, domain.OTPTypeEmailVerification, tx)
	if err != nil {
		return domain.User{}, err
	}

	if err := s.mailer.SendOTP(ctx, user.Email, "Account Activation", code); err != nil {
		return domain.User{}, fmt.Errorf("sending activation otp: %w", err)
	}

	return user, nil
}

// FindByEmail resolves a user through their active credential row. Returns
// ErrUserNotFound when no active credential carries the email.
func (s *UserService) FindByEmail(ctx context.Context, email string) (*domain.User, *domain.UserPassword, error) {
	password, err := s.passwords.FindOne(ctx, postgres.FindOptions{
		Filter: &store.Query{
			Condition: "email = $1 AND status = $2",
			Values:    []any{email, domain.PasswordStatusActive},
		},
	}, nil)
	if err != nil {
		return nil, nil, err
	}
	if password == nil {
		return nil, nil, ErrUserNotFound
	}

	user, err := s.users.FindByID(ctx, password.UserID, nil)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, ErrUserNotFound
	}
	return user, password, nil
}

// FindByID returns the user with the given id, or nil when absent.
func (s *UserService) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	return s.users.FindByID(ctx, id, nil)
}

// Activate marks the user active, completing email verification.
func (s *UserService) Activate(ctx context.Context, userID int64) error {
	_, err := s.users.UpdateOne(ctx, &store.Query{
		Condition: "id = $1",
		Values:    []any{userID},
	}, store.Payload{"status": domain.UserStatusActive}, nil)
	return err
}

// SendActivationOTP re-issues the email-verification OTP for a user who is
// still pending activation.
func (s *UserService) SendActivationOTP(ctx context.Context, user domain.User) error {
	code, err := s.otps.Generate(ctx, user.ID, domain.OTPTypeEmailVerification, nil)
	if err != nil {
		return err
	}
	return s.mailer.SendOTP(ctx, user.Email, "Account Activation", code)
}

// SendLoginOTP generates a login OTP for the user and dispatches it.
func (s *UserService) SendLoginOTP(ctx context.Context, user domain.User) error {
	code, err := s.otps.Generate(ctx, user.ID, domain.OTPTypeLogin, nil)
	if err != nil {
		return err
	}
	return s.mailer.SendOTP(ctx, user.Email, "Login OTP", code)
}

// SendPasswordResetOTP generates a password-reset OTP through the caller's
// transaction handle and dispatches it.
func (s *UserService) SendPasswordResetOTP(ctx context.Context, user domain.User, tx *store.Tx) error {
	code, err := s.otps.Generate(ctx, user.ID, domain.OTPTypePasswordReset, tx)
	if err != nil {
		return err
	}
	return s.mailer.SendOTP(ctx, user.Email, "Account Password Reset", code)
}
