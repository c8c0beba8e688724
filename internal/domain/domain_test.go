package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUserFullName(t *testing.T) {
	user := User{FirstName: "Ada", LastName: "Obi"}
	assert.Equal(t, "Ada Obi", user.FullName())
}

func TestOTPExpired(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	fresh := OTP{CreatedAt: now.Add(-OTPValidityPeriod + time.Second)}
	assert.False(t, fresh.Expired(now))

	stale := OTP{CreatedAt: now.Add(-OTPValidityPeriod)}
	assert.True(t, stale.Expired(now))
}

func TestLoginSessionExpiredAt(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	live := LoginSession{ValidityEndDate: now.Add(time.Minute)}
	assert.False(t, live.ExpiredAt(now))

	lapsed := LoginSession{ValidityEndDate: now}
	assert.True(t, lapsed.ExpiredAt(now))
}
