// Package service holds the entity services: thin specializations of the
// generic repository that add entity-specific multi-step workflows.
package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"math/big"
	"time"

	"github.com/fuuti/storefront-api/internal/domain"
	"github.com/fuuti/storefront-api/internal/platform/postgres"
	"github.com/fuuti/storefront-api/internal/service/auth"
	"github.com/fuuti/storefront-api/internal/store"
)

const otpLength = 6

// devOTPCode is the fixed code issued in the development environment so
// local flows can be exercised without reading the log.
const devOTPCode = "123456"

// OTPService manages the one-time password lifecycle. At most one OTP per
// user is Active at any instant: generating a new code first deactivates any
// previous Active row.
type OTPService struct {
	otps      *postgres.Repository[domain.OTP]
	hasher    auth.PasswordHasher
	db        *sql.DB
	txTimeout time.Duration
	devMode   bool
	timeFunc  func() time.Time
}

// NewOTPService creates an OTPService. devMode selects the fixed development
// code instead of a random one.
func NewOTPService(db *sql.DB, hasher auth.PasswordHasher, txTimeout time.Duration, devMode bool) *OTPService {
	return &OTPService{
		otps:      postgres.NewRepository[domain.OTP](db, domain.OTPTable),
		hasher:    hasher,
		db:        db,
		txTimeout: txTimeout,
		devMode:   devMode,
		timeFunc:  time.Now,
	}
}

// Generate rotates the user's OTP: any Active row is deactivated and a fresh
// Active row is inserted with the hash of a new code. The plaintext code is
// returned for delivery to the user and is never stored. When the caller
// supplies a transaction handle the rotation joins it; otherwise the service
// opens its own handle so the two writes stay atomic.
func (s *OTPService) Generate(ctx context.Context, userID int64, otpType string, tx *store.Tx) (string, error) {
	code := s.newCode()
	hashed, err := s.hasher.Hash(code)
	if err != nil {
		return "", fmt.Errorf("hashing otp code: %w", err)
	}

	rotate := func(tx *store.Tx) error {
		filter := &store.Query{
			Condition: "user_id = $1 AND status = $2",
			Values:    []any{userID, domain.OTPStatusActive},
		}
		if _, err := s.otps.Update(ctx, filter, store.Payload{"status": domain.OTPStatusDeactivated}, tx); err != nil {
			return fmt.Errorf("deactivating previous otp: %w", err)
		}

		payload := store.Payload{
			"code":    hashed,
			"type":    otpType,
			"user_id": userID,
		}
		if _, err := s.otps.Save(ctx, payload, tx); err != nil {
			return fmt.Errorf("saving otp: %w", err)
		}
		return nil
	}

	if tx != nil {
		if err := rotate(tx); err != nil {
			return "", err
		}
		return code, nil
	}

	if err := store.WithTx(ctx, s.db, s.txTimeout, rotate); err != nil {
		return "", err
	}
	return code, nil
}

// Validate checks a submitted code against the user's Active OTP.
//
// No Active row, or an Active row older than the validity window, reports
// invalid; an expired row is moved to Deactivated on the way out. A hash
// match moves the row to Used and reports valid. A mismatch reports invalid
// without touching the row, so the user may retry within the window.
func (s *OTPService) Validate(ctx context.Context, userID int64, code string) (bool, error) {
	activeFilter := &store.Query{
		Condition: "user_id = $1 AND status = $2",
		Values:    []any{userID, domain.OTPStatusActive},
	}

	saved, err := s.otps.FindOne(ctx, postgres.FindOptions{Filter: activeFilter}, nil)
	if err != nil {
		return false, err
	}
	if saved == nil {
		return false, nil
	}

	if saved.Expired(s.timeFunc()) {
		if _, err := s.otps.Update(ctx, activeFilter, store.Payload{"status": domain.OTPStatusDeactivated}, nil); err != nil {
			return false, err
		}
		return false, nil
	}

	if err := s.hasher.Compare(saved.Code, code); err != nil {
		return false, nil
	}

	if _, err := s.otps.Update(ctx, activeFilter, store.Payload{"status": domain.OTPStatusUsed}, nil); err != nil {
		return false, err
	}
	return true, nil
}

// newCode produces the plaintext OTP: a fixed code in development, otherwise
// otpLength random decimal digits.
func (s *OTPService) newCode() string {
	if s.devMode {
		return devOTPCode
	}

	digits := make([]byte, otpLength)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			// crypto/rand only fails when the platform source is broken;
			// an OTP must never be predictable, so give up loudly.
			panic(fmt.Sprintf("otp generation: %v", err))
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits)
}
