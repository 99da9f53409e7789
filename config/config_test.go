package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load reads so ambient shell state
// cannot leak into assertions.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CONFIG_PATH", "ADDR", "APP_ENV", "DATABASE_URL", "ENCRYPTION_KEY",
		"TELEGRAM_API_BASE", "HTTP_TIMEOUT", "SESSION_TTL", "SWEEP_INTERVAL",
		"BOT_SERVICE_URL", "SERVICE_TO_SERVICE_SECRET",
		"CACHE_KIND", "CACHE_TTL", "REDIS_ADDR", "REDIS_DB",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENCRYPTION_KEY", "secret")
	t.Setenv("DATABASE_URL", "postgres://localhost/authd")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8001", cfg.Addr)
	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "https://api.telegram.org", cfg.TelegramAPIBase)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, time.Hour, cfg.SweepInterval)
	assert.Equal(t, "memory", cfg.Cache.Kind)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
}

func TestLoad_RequiredSettings(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/authd")

	_, err := Load()
	require.ErrorContains(t, err, "ENCRYPTION_KEY")

	t.Setenv("ENCRYPTION_KEY", "secret")
	os.Unsetenv("DATABASE_URL")
	_, err = Load()
	require.ErrorContains(t, err, "DATABASE_URL")
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENCRYPTION_KEY", "secret")
	t.Setenv("DATABASE_URL", "postgres://db:5432/authd")
	t.Setenv("ADDR", ":9000")
	t.Setenv("APP_ENV", "prod")
	t.Setenv("SESSION_TTL", "48h")
	t.Setenv("CACHE_KIND", "redis")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("REDIS_DB", "3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, 48*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "redis", cfg.Cache.Kind)
	assert.Equal(t, "redis:6379", cfg.Cache.RedisAddr)
	assert.Equal(t, 3, cfg.Cache.RedisDB)
}

func TestLoad_YAMLFileWithEnvPrecedence(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
addr: ":7000"
env: prod
database_url: postgres://file-db/authd
encryption_key: file-secret
session_ttl: 12h
cache:
  kind: none
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))

	t.Setenv("CONFIG_PATH", path)
	t.Setenv("ADDR", ":7001") // environment beats the file

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":7001", cfg.Addr)
	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, "postgres://file-db/authd", cfg.DatabaseURL)
	assert.Equal(t, "file-secret", cfg.EncryptionKey)
	assert.Equal(t, 12*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "none", cfg.Cache.Kind)
}

func TestLoad_BadConfigFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENCRYPTION_KEY", "secret")
	t.Setenv("DATABASE_URL", "postgres://localhost/authd")

	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := Load()
	require.ErrorContains(t, err, "read config file")

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{not yaml::"), 0o600))
	t.Setenv("CONFIG_PATH", path)
	_, err = Load()
	require.ErrorContains(t, err, "parse config file")
}
