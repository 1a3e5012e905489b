package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetConfigBaseDir(t *testing.T) {
	tests := []struct {
		name          string
		xdgConfigHome string
		expected      string
	}{
		{"system_service", "/etc/sunmind", "/etc/sunmind"},
		{"user_custom_xdg", "/home/user/myconfigs", "/home/user/myconfigs/sunmind"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("XDG_CONFIG_HOME", tt.xdgConfigHome)
			assert.Equal(t, tt.expected, GetConfigBaseDir())
		})
	}

	t.Run("user_default", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "")
		result := GetConfigBaseDir()
		assert.True(t, filepath.IsAbs(result))
		assert.True(t, strings.HasSuffix(result, "/.config/sunmind"), result)
	})
}

func TestGetDefaultStatePath(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/tmp/state")
	assert.Equal(t, "/tmp/state/sunmind/state.db", GetDefaultStatePath())
}

func TestGetConfigPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	assert.Equal(t, "/cfg/sunmind/sunmindd.yaml", GetAgentConfigPath())
	assert.Equal(t, "/cfg/sunmind/sunmindctl.yaml", GetClientConfigPath())
}

func TestValidateHeartbeatInterval(t *testing.T) {
	assert.Equal(t, MinHeartbeatInterval, ValidateHeartbeatInterval(0))
	assert.Equal(t, 45*time.Second, ValidateHeartbeatInterval(45*time.Second))
}
