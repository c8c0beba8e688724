package domain

import "time"

// SessionTable is the login sessions table name.
const SessionTable = "login_sessions"

// SessionValidity is the lifetime of a login session.
const SessionValidity = 24 * time.Hour

// Session status bits.
const (
	SessionOn  int16 = 1
	SessionOff int16 = 0
)

// LoginSession is an authenticated session row. A session ends either by
// explicit logout or by passing its validity end date.
type LoginSession struct {
	ID              int64     `db:"id"                json:"id"`
	UserID          int64     `db:"user_id"           json:"user_id"`
	Status          int16     `db:"status"            json:"status"`
	ValidityEndDate time.Time `db:"validity_end_date" json:"validity_end_date"`
	LoggedOut       bool      `db:"logged_out"        json:"logged_out"`
	Expired         bool      `db:"expired"           json:"expired"`
	CreatedAt       time.Time `db:"created_at"        json:"created_at"`
}

// ExpiredAt reports whether the session's validity has lapsed at now.
func (s LoginSession) ExpiredAt(now time.Time) bool {
	return !s.ValidityEndDate.After(now)
}
