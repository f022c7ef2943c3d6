package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/types"
	"github.com/Psychoriddler/Emergilink-prototype/pkg/configparser"
)

func parsed(t *testing.T) *Config {
	t.Helper()
	cfg := &Config{}
	require.NoError(t, configparser.ParseEnv(cfg))
	cfg.Mode = types.EmergencyService
	return cfg
}

func TestDefaults(t *testing.T) {
	cfg := parsed(t)

	assert.Equal(t, types.StorageMemory, cfg.Storage.Driver)
	assert.Equal(t, 30*time.Second, cfg.Registry.HoldTTL)
	assert.Equal(t, 3*time.Second, cfg.Matcher.Budget)
	assert.Equal(t, 2*time.Minute, cfg.Matcher.CancelWindow)
	assert.Equal(t, "300-M", cfg.RateLimit.Rate)
	assert.Equal(t, "@every 5s", cfg.Scheduler.HoldSweep)
	assert.Equal(t, 6*time.Hour, cfg.Matcher.MaxServiceTime)
	assert.Equal(t, "@every 1m", cfg.Scheduler.BookingSweep)
	assert.NoError(t, cfg.validate())
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "postgres")
	t.Setenv("MATCHER_INITIAL_RADIUS_KM", "2.5")
	t.Setenv("NOTIFIER_LEDGER", "redis")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6380")

	cfg := parsed(t)

	assert.Equal(t, types.StoragePostgres, cfg.Storage.Driver)
	assert.Equal(t, 2.5, cfg.Matcher.InitialRadiusKm)
	assert.Equal(t, "cache:6380", cfg.Redis.GetAddr())
	assert.NoError(t, cfg.validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown mode", func(c *Config) { c.Mode = "ride-service" }},
		{"unknown storage", func(c *Config) { c.Storage.Driver = "sqlite" }},
		{"unknown ledger", func(c *Config) { c.Notifier.Ledger = "etcd" }},
		{"unknown channel", func(c *Config) { c.Notifier.Channel = "sms" }},
		{"bad log level", func(c *Config) { c.LogLevel = "TRACE" }},
		{"auth without secret", func(c *Config) {
			c.Auth.Enabled = true
			c.Auth.JWTSecret = ""
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := parsed(t)
			tt.mutate(cfg)
			assert.Error(t, cfg.validate())
		})
	}
}

func TestValidate_UnknownModeWrapsSentinel(t *testing.T) {
	cfg := parsed(t)
	cfg.Mode = "nope"
	assert.ErrorIs(t, cfg.validate(), ErrInvalidMode)
}

func TestLoadAuth(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("AUTH_JWT_SECRET: from-file\nAUTH_ACCESS_TOKEN_TTL: 1h\n"), 0o600))
	t.Setenv("AUTH_JWT_SECRET", "")
	t.Setenv("AUTH_ACCESS_TOKEN_TTL", "")

	auth, err := LoadAuth(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", auth.JWTSecret)
	assert.Equal(t, time.Hour, auth.AccessTokenTTL)
}

func TestDSNs(t *testing.T) {
	db := DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", Database: "emergilink"}
	assert.Equal(t, "postgres://u:p@db:5432/emergilink?sslmode=disable", db.GetDSN())

	mq := RabbitMQConfig{Host: "mq", Port: "5672", User: "guest", Password: "guest"}
	assert.Equal(t, "amqp://guest:guest@mq:5672/", mq.GetDSN())
}

func TestMask(t *testing.T) {
	assert.Equal(t, "<unset>", mask(""))
	assert.NotContains(t, mask("supersecretkey"), "secret")
}
