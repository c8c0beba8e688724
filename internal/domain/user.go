// Package domain defines the entity row types and their status enumerations.
// Each entity maps 1:1 to a table with a serial primary key, a status column
// and a created_at timestamp defaulted by the store. Foreign keys are plain
// integer columns; the data-access layer never dereferences them.
package domain

import "time"

// UserTable is the users table name.
const UserTable = "app_users"

// User statuses.
const (
	UserStatusPending         = "pending"
	UserStatusActive          = "active"
	UserStatusSelfDeactivated = "self_deactivated"
	UserStatusSuspended       = "suspended"
	UserStatusDeactivated     = "deactivated"
)

// User is a storefront account row.
type User struct {
	ID                 int64     `db:"id"                   json:"id"`
	FirstName          string    `db:"first_name"           json:"first_name"`
	LastName           string    `db:"last_name"            json:"last_name"`
	MiddleName         *string   `db:"middle_name"          json:"middle_name,omitempty"`
	Email              string    `db:"email"                json:"email"`
	Phone              string    `db:"phone"                json:"phone"`
	Gender             string    `db:"gender"               json:"gender"`
	RequireNewPassword bool      `db:"require_new_password" json:"require_new_password"`
	IsAdmin            bool      `db:"is_admin"             json:"is_admin"`
	Status             string    `db:"status"               json:"status"`
	CreatedAt          time.Time `db:"created_at"           json:"created_at"`
}

// FullName returns the customer-facing display name.
func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}
