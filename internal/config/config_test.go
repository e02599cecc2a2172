package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "velpra.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
database:
  dsn: postgres://localhost/velpra
jwt:
  secret: test-secret
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "velpra-server", cfg.Server.Name)
	assert.Equal(t, 8080, cfg.API.Port)
	assert.Equal(t, 10, cfg.Database.MaxOpenConns)
	assert.Equal(t, 5, cfg.Database.MaxIdleConns)
	assert.Equal(t, time.Hour, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTokenTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.RefreshTokenTTL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "EUR", cfg.Billing.Currency)
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
database:
  dsn: postgres://localhost/velpra
jwt:
  secret: file-secret
log:
  level: info
`)

	t.Setenv("DATABASE_URL", "postgres://other/db")
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://other/db", cfg.Database.DSN)
	assert.Equal(t, "env-secret", cfg.JWT.Secret)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	path := writeConfig(t, `
database:
  dsn: postgres://localhost/velpra
`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	assert.Error(t, err)
}
