package config_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standupsync/standupsync/internal/config"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/standupsync")
	t.Setenv("JWT_SECRET", "access-secret")
	t.Setenv("REFRESH_TOKEN_SECRET", "refresh-secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "dev", cfg.Version)
	assert.Equal(t, 1440, cfg.AccessTokenTTL)
	assert.Equal(t, 43200, cfg.RefreshTokenTTL)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Empty(t, cfg.SlackSigningSecret)
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("ACCESS_TOKEN_TTL_MINUTES", "15")
	t.Setenv("SLACK_SIGNING_SECRET", "signing-secret")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 15, cfg.AccessTokenTTL)
	assert.Equal(t, "signing-secret", cfg.SlackSigningSecret)
}

func TestLoadMissingDatabaseURL(t *testing.T) {
	// t.Setenv registers the restore; Unsetenv makes the key truly absent so
	// the required check trips.
	t.Setenv("DATABASE_URL", "")
	require.NoError(t, os.Unsetenv("DATABASE_URL"))
	t.Setenv("JWT_SECRET", "access-secret")
	t.Setenv("REFRESH_TOKEN_SECRET", "refresh-secret")

	_, err := config.Load()
	assert.Error(t, err)
}
