package domain

import "time"

// OTPTable is the one-time passwords table name.
const OTPTable = "otps"

// OTPValidityPeriod is how long a generated OTP stays valid.
const OTPValidityPeriod = 5 * time.Minute

// OTP statuses. Active is the only non-terminal state: validation moves a
// row to Used, supersession or expiry moves it to Deactivated. Terminal rows
// are never reused.
const (
	OTPStatusActive      = "active"
	OTPStatusDeactivated = "deactivated"
	OTPStatusUsed        = "used"
	OTPStatusBarred      = "barred"
)

// OTP types, one per workflow that requests a code.
const (
	OTPTypeLogin             = "login"
	OTPTypePasswordUpdate    = "password update"
	OTPTypePasswordReset     = "password reset"
	OTPTypeEmailVerification = "email verification"
)

// OTP is a one-time password row. Code holds the bcrypt hash of the code.
type OTP struct {
	ID        int64     `db:"id"         json:"id"`
	Code      string    `db:"code"       json:"-"`
	Type      string    `db:"type"       json:"type"`
	UserID    int64     `db:"user_id"    json:"user_id"`
	Status    string    `db:"status"     json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Expired reports whether the OTP's validity window has passed at now.
func (o OTP) Expired(now time.Time) bool {
	return now.Sub(o.CreatedAt) >= OTPValidityPeriod
}
