package domain

import "time"

// PasswordTable is the user passwords table name.
const PasswordTable = "user_passwords"

// Password statuses. A user has exactly one active password row; rotation
// inserts a new active row and deactivates the previous one.
const (
	PasswordStatusActive      = "active"
	PasswordStatusDeactivated = "deactivated"
	PasswordStatusCompromised = "compromised"
	PasswordStatusBlacklisted = "blacklisted"
)

// UserPassword is a credential row. Password holds the bcrypt hash, never
// the plaintext.
type UserPassword struct {
	ID        int64     `db:"id"         json:"id"`
	Password  string    `db:"password"   json:"-"`
	Email     string    `db:"email"      json:"email"`
	UserID    int64     `db:"user_id"    json:"user_id"`
	Status    string    `db:"status"     json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
