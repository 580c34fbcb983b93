package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setSecrets(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_SECRET", "access")
	t.Setenv("REFRESH_TOKEN_SECRET", "refresh")
}

func TestLoadConfigDefaults(t *testing.T) {
	setSecrets(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenExpiry)
	assert.Equal(t, 168*time.Hour, cfg.RefreshTokenExpiry)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, "@every 1h", cfg.SessionSweepSchedule)
	assert.Equal(t, "access", cfg.AccessTokenSecret)
}

func TestLoadConfigClampsBcryptCost(t *testing.T) {
	setSecrets(t)
	t.Setenv("BCRYPT_COST", "4")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, minBcryptCost, cfg.BcryptCost)
}

func TestAdminUsernamesNormalized(t *testing.T) {
	setSecrets(t)
	t.Setenv("ADMIN_USERNAMES", " Root ,, ops")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"root", "ops"}, cfg.AdminUsernames)
	assert.True(t, cfg.IsAdminUsername("root"))
	assert.False(t, cfg.IsAdminUsername("alice"))
}

func TestLoadConfigRequiresSecrets(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_SECRET", "access")
	t.Setenv("REFRESH_TOKEN_SECRET", "  ")

	_, err := LoadConfig()
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestLoadConfigRejectsMalformedValues(t *testing.T) {
	setSecrets(t)
	t.Setenv("ACCESS_TOKEN_EXPIRY", "fifteen minutes")

	_, err := LoadConfig()
	assert.Error(t, err)
}
