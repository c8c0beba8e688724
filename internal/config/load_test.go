package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("FUUTI_DATABASE_URL", "postgres://localhost:5432/storefront")
	t.Setenv("FUUTI_AUTH_JWT_SECRET", "0123456789abcdef0123456789abcdef")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, "development", cfg.Server.Environment)
	assert.Equal(t, 10, cfg.Database.MaxOpenConns)
	assert.Equal(t, 5, cfg.Database.MaxIdleConns)
	assert.Equal(t, 30, cfg.Database.TxTimeoutSeconds)
	assert.Equal(t, 1440, cfg.Auth.TokenLifetimeMinutes)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
}

func TestLoadEnvOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("FUUTI_SERVER_PORT", "9090")
	t.Setenv("FUUTI_SERVER_LOG_LEVEL", "debug")
	t.Setenv("FUUTI_SERVER_ENVIRONMENT", "production")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, "production", cfg.Server.Environment)
}

func TestLoadMissingDatabaseURL(t *testing.T) {
	t.Setenv("FUUTI_AUTH_JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("FUUTI_DATABASE_URL", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadShortJWTSecret(t *testing.T) {
	t.Setenv("FUUTI_DATABASE_URL", "postgres://localhost:5432/storefront")
	t.Setenv("FUUTI_AUTH_JWT_SECRET", "short")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadInvalidLogLevel(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("FUUTI_SERVER_LOG_LEVEL", "loud")

	_, err := Load()
	assert.Error(t, err)
}
