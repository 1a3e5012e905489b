package config

import (
	"os"
	"path/filepath"
	"time"
)

// GetConfigBaseDir returns the base directory for configuration files
func GetConfigBaseDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		// For the system service, XDG_CONFIG_HOME is set to /etc/sunmind
		// so we return it directly without appending ConfigDirName
		if dir == "/etc/sunmind" {
			return dir
		}
		return filepath.Join(dir, ConfigDirName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", ConfigDirName)
}

// GetStateBaseDir returns the directory holding persisted agent state
func GetStateBaseDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, ConfigDirName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state", ConfigDirName)
}

// GetConfigPath returns the full path to a configuration file
func GetConfigPath(filename string) string {
	return filepath.Join(GetConfigBaseDir(), filename)
}

// GetAgentConfigPath returns the full path to the agent configuration file
func GetAgentConfigPath() string {
	return GetConfigPath(AgentConfigFilename)
}

// GetClientConfigPath returns the full path to the CLI configuration file
func GetClientConfigPath() string {
	return GetConfigPath(ClientConfigFilename)
}

// GetDefaultStatePath returns the default path of the state database
func GetDefaultStatePath() string {
	return filepath.Join(GetStateBaseDir(), StateFilename)
}

// ValidateHeartbeatInterval clamps the heartbeat interval to the minimum allowed value
func ValidateHeartbeatInterval(interval time.Duration) time.Duration {
	if interval < MinHeartbeatInterval {
		return MinHeartbeatInterval
	}
	return interval
}

// ValidateReconnectAttempts returns the default when attempts is not positive
func ValidateReconnectAttempts(attempts int) int {
	if attempts <= 0 {
		return DefaultMaxReconnectAttempts
	}
	return attempts
}
