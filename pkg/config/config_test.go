package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, DefaultFacilities, cfg.Server.Facilities)
	assert.Equal(t, 5*time.Minute, cfg.Server.HistoryTTL)
	assert.Equal(t, 5*time.Second, cfg.Client.Timeout)
	assert.Equal(t, 3, cfg.Client.MaxAttempts)
	assert.False(t, cfg.Admin.Enabled)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
logging:
  level: debug
  format: json
server:
  facilities:
    - Gym
    - Pool
  history_ttl: 2m
client:
  timeout: 1s
  max_attempts: 5
admin:
  enabled: true
  port: 9999
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "DEBUG", cfg.Logging.Level, "level is normalized to uppercase")
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, []string{"Gym", "Pool"}, cfg.Server.Facilities)
	assert.Equal(t, 2*time.Minute, cfg.Server.HistoryTTL)
	assert.Equal(t, time.Second, cfg.Client.Timeout)
	assert.Equal(t, 5, cfg.Client.MaxAttempts)
	assert.True(t, cfg.Admin.Enabled)
	assert.Equal(t, 9999, cfg.Admin.Port)
}

func TestLoadPartialFileFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: warn\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "WARN", cfg.Logging.Level)
	assert.Equal(t, DefaultFacilities, cfg.Server.Facilities)
	assert.Equal(t, 3, cfg.Client.MaxAttempts)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"bad level", "logging:\n  level: verbose\n"},
		{"bad format", "logging:\n  format: xml\n"},
		{"bad port", "admin:\n  port: 99999\n"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(c.content), 0644))

			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestSaveAndReloadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := GetDefaultConfig()
	cfg.Logging.Level = "DEBUG"
	cfg.Server.Facilities = []string{"Gym"}

	require.NoError(t, SaveConfig(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "DEBUG", loaded.Logging.Level)
	assert.Equal(t, []string{"Gym"}, loaded.Server.Facilities)
}

func TestValidateDefaultConfig(t *testing.T) {
	assert.NoError(t, Validate(GetDefaultConfig()))
}
