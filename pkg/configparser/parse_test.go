package configparser

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Matcher struct {
		Budget      time.Duration `env:"TEST_MATCHER_BUDGET" default:"3s"`
		MaxAttempts int           `env:"TEST_MATCHER_MAX_ATTEMPTS" default:"3"`
		AvgSpeedKmh float64       `env:"TEST_MATCHER_AVG_SPEED_KMH" default:"40"`
	}
	Auth struct {
		Enabled bool     `env:"TEST_AUTH_ENABLED" default:"false"`
		Roles   []string `env:"TEST_AUTH_ROLES" default:"admin, dispatcher"`
	}
	Name string `env:"TEST_NAME"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg testConfig
	require.NoError(t, ParseEnv(&cfg))

	assert.Equal(t, 3*time.Second, cfg.Matcher.Budget)
	assert.Equal(t, 3, cfg.Matcher.MaxAttempts)
	assert.InDelta(t, 40.0, cfg.Matcher.AvgSpeedKmh, 1e-9)
	assert.False(t, cfg.Auth.Enabled)
	assert.Equal(t, []string{"admin", "dispatcher"}, cfg.Auth.Roles)
	assert.Empty(t, cfg.Name)
}

func TestParseEnvOverrides(t *testing.T) {
	t.Setenv("TEST_MATCHER_BUDGET", "1500ms")
	t.Setenv("TEST_AUTH_ENABLED", "true")
	t.Setenv("TEST_NAME", "emergilink")

	var cfg testConfig
	require.NoError(t, ParseEnv(&cfg))

	assert.Equal(t, 1500*time.Millisecond, cfg.Matcher.Budget)
	assert.True(t, cfg.Auth.Enabled)
	assert.Equal(t, "emergilink", cfg.Name)
}

func TestParseEnvBadValue(t *testing.T) {
	t.Setenv("TEST_MATCHER_MAX_ATTEMPTS", "three")

	var cfg testConfig
	assert.Error(t, ParseEnv(&cfg))
}

func TestParseEnvRejectsNonPointer(t *testing.T) {
	assert.ErrorIs(t, ParseEnv(testConfig{}), ErrNotStructPointer)
}

func TestLoadYamlFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
test_yaml:
  budget: 2s # comment
  name: "${TEST_YAML_SOURCE:-fallback}"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("TEST_YAML_BUDGET", "")
	t.Setenv("TEST_YAML_NAME", "")
	require.NoError(t, LoadYamlFile(path))

	assert.Equal(t, "2s", os.Getenv("TEST_YAML_BUDGET"))
	assert.Equal(t, "fallback", os.Getenv("TEST_YAML_NAME"))
}

func TestLoadAndParseYamlMissingFile(t *testing.T) {
	var cfg testConfig
	require.NoError(t, LoadAndParseYaml(filepath.Join(t.TempDir(), "absent.yaml"), &cfg))
	assert.Equal(t, 3*time.Second, cfg.Matcher.Budget)
}
