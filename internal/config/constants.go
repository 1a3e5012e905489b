package config

import "time"

// Common constants shared between the agent and the CLI
const (
	// ConfigDirName is the name of the config directory within XDG_CONFIG_HOME
	ConfigDirName = "sunmind"

	// AgentConfigFilename is the base filename for agent config
	AgentConfigFilename = "sunmindd.yaml"

	// ClientConfigFilename is the base filename for CLI config
	ClientConfigFilename = "sunmindctl.yaml"

	// StateFilename is the base filename for the persisted state database
	StateFilename = "state.db"

	// DefaultAPIBaseURL is the SunMind backend REST endpoint
	DefaultAPIBaseURL = "https://sunmind-backend.vercel.app"

	// DefaultWSURL is the SunMind backend telemetry socket endpoint
	DefaultWSURL = "wss://sunmind-backend.vercel.app"

	// DefaultListenAddress is the default local dashboard API address
	DefaultListenAddress = "127.0.0.1:9124"

	// DefaultRateLimit is the per-IP request budget per minute for the local API
	DefaultRateLimit = 120

	// DefaultTopicPrefix is the MQTT topic prefix used by the telemetry mirror
	DefaultTopicPrefix = "sunmind"
)

// Default timeouts and intervals
const (
	// DefaultAPITimeout bounds a single REST round trip
	DefaultAPITimeout = 30 * time.Second

	// DefaultReconnectDelay is the base of the exponential reconnect backoff
	DefaultReconnectDelay = 1 * time.Second

	// DefaultMaxReconnectAttempts is the number of automatic reconnects before giving up
	DefaultMaxReconnectAttempts = 5

	// DefaultHeartbeatInterval is the keepalive ping period while connected
	DefaultHeartbeatInterval = 30 * time.Second

	// MinHeartbeatInterval is the minimum allowed heartbeat interval
	MinHeartbeatInterval = 1 * time.Second
)

// Light constraints
const (
	// MinBrightness is the minimum allowed brightness value
	MinBrightness = 0

	// MaxBrightness is the maximum allowed brightness value
	MaxBrightness = 100
)

// Logging constants
const (
	// LogLevelDebug represents debug log level
	LogLevelDebug = "debug"

	// LogLevelInfo represents info log level
	LogLevelInfo = "info"

	// LogLevelWarn represents warning log level
	LogLevelWarn = "warn"

	// LogLevelError represents error log level
	LogLevelError = "error"

	// LogFormatText represents text log format
	LogFormatText = "text"

	// LogFormatJSON represents JSON log format
	LogFormatJSON = "json"
)
