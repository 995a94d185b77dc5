package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "gatherpoint", cfg.Database.DBName)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiration())
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("SERVER_READ_TIMEOUT", "30s")
	t.Setenv("DB_NAME", "gatherpoint_test")
	t.Setenv("JWT_EXPIRATION_MINS", "15")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9999", cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "gatherpoint_test", cfg.Database.DBName)
	assert.Equal(t, 15*time.Minute, cfg.JWT.Expiration())
}

func TestValidateRejectsBadEnvName(t *testing.T) {
	t.Setenv("SERVER_ENV", "staging")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SERVER_ENV")
}

func TestValidateRequiresSecretInProduction(t *testing.T) {
	t.Setenv("SERVER_ENV", "production")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestValidateRejectsNonPositiveExpiration(t *testing.T) {
	t.Setenv("JWT_EXPIRATION_MINS", "-5")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_EXPIRATION_MINS")
}

func TestDSN(t *testing.T) {
	c := DatabaseConfig{
		Host: "db", Port: "5432", User: "app", Password: "pw",
		DBName: "gatherpoint", SSLMode: "disable",
	}
	assert.Equal(t,
		"host=db port=5432 user=app password=pw dbname=gatherpoint sslmode=disable",
		c.DSN())
}
