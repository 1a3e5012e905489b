package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunmind/sunmind/internal/config"
)

func TestNewFlagSetDefaults(t *testing.T) {
	fs := newFlagSet()
	require.NoError(t, fs.Parse(nil))

	level, _ := fs.GetString("log-level")
	listen, _ := fs.GetString("listen")
	assert.Equal(t, "info", level)
	assert.Equal(t, config.DefaultListenAddress, listen)

	for key, name := range flagKeys {
		assert.NotNil(t, fs.Lookup(name), "flag for %s", key)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tempDir)
	t.Setenv("XDG_STATE_HOME", tempDir)

	fs := newFlagSet()
	require.NoError(t, fs.Parse(nil))

	cfg, err := loadConfig(fs)
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, config.DefaultAPIBaseURL, cfg.API.BaseURL)
	assert.Empty(t, cfg.MQTT.Broker)
}

func TestLoadConfigFlagsOverrideFile(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "sunmindd.yaml")
	content := `
logging:
  level: warn
  format: json
api:
  base_url: http://localhost:8000
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	fs := newFlagSet()
	require.NoError(t, fs.Parse([]string{
		"--config", path,
		"--log-level", "debug",
		"--mqtt-broker", "tcp://localhost:1883",
	}))

	cfg, err := loadConfig(fs)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "http://localhost:8000", cfg.API.BaseURL)
	assert.Equal(t, "tcp://localhost:1883", cfg.MQTT.Broker)
}

func TestLoadConfigBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("not: [valid: yaml"), 0644))

	fs := newFlagSet()
	require.NoError(t, fs.Parse([]string{"--config", path}))

	_, err := loadConfig(fs)
	assert.Error(t, err)
}
