package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	API        APIConfig        `mapstructure:"api"`
	Connection ConnectionConfig `mapstructure:"connection"`
	Server     ServerConfig     `mapstructure:"server"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	MQTT       MQTTConfig       `mapstructure:"mqtt"`

	// Internal viper instance
	v *viper.Viper
}

// APIConfig locates the SunMind backend
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url" yaml:"base_url"`
	WSURL   string        `mapstructure:"ws_url" yaml:"ws_url"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// ConnectionConfig tunes the telemetry socket
type ConnectionConfig struct {
	ReconnectDelay       time.Duration `mapstructure:"reconnect_delay" yaml:"reconnect_delay"`
	MaxReconnectAttempts int           `mapstructure:"max_reconnect_attempts" yaml:"max_reconnect_attempts"`
	HeartbeatInterval    time.Duration `mapstructure:"heartbeat_interval" yaml:"heartbeat_interval"`
}

// ServerConfig represents the local dashboard API configuration
type ServerConfig struct {
	ListenAddress string `mapstructure:"listen_address" yaml:"listen_address"`
	// APIToken, when set, is required on every protected endpoint.
	APIToken  string `mapstructure:"api_token" yaml:"api_token,omitempty"`
	RateLimit int    `mapstructure:"rate_limit" yaml:"rate_limit"`
}

// StorageConfig locates the persisted state database
type StorageConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// LoggingConfig represents the logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// MQTTConfig configures the optional telemetry mirror. An empty broker disables it.
type MQTTConfig struct {
	Broker      string `mapstructure:"broker" yaml:"broker"`
	Username    string `mapstructure:"username" yaml:"username"`
	Password    string `mapstructure:"password" yaml:"password,omitempty"`
	TopicPrefix string `mapstructure:"topic_prefix" yaml:"topic_prefix"`
}

// New wraps an existing viper instance with defaults applied.
func New(v *viper.Viper) *Config {
	setDefaults(v)
	cfg := &Config{v: v}
	cfg.fill()
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", DefaultAPIBaseURL)
	v.SetDefault("api.ws_url", DefaultWSURL)
	v.SetDefault("api.timeout", DefaultAPITimeout)
	v.SetDefault("connection.reconnect_delay", DefaultReconnectDelay)
	v.SetDefault("connection.max_reconnect_attempts", DefaultMaxReconnectAttempts)
	v.SetDefault("connection.heartbeat_interval", DefaultHeartbeatInterval)
	v.SetDefault("server.listen_address", DefaultListenAddress)
	v.SetDefault("server.rate_limit", DefaultRateLimit)
	v.SetDefault("storage.path", GetDefaultStatePath())
	v.SetDefault("logging.level", LogLevelInfo)
	v.SetDefault("logging.format", LogFormatText)
	v.SetDefault("mqtt.topic_prefix", DefaultTopicPrefix)
}

// Load loads configuration from a file and environment variables.
// A missing file is not an error; defaults apply.
func Load(configName, configFile string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigFile(GetConfigPath(configName))
	}

	v.SetEnvPrefix("SUNMIND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	} else {
		slog.Info("Using config file", "path", v.ConfigFileUsed())
	}

	return New(v), nil
}

// BindFlags lets command line flags override file and environment values.
// keys maps a config key such as "logging.level" to a flag name. Flags left
// at their default do not mask the config file.
func (c *Config) BindFlags(fs *pflag.FlagSet, keys map[string]string) error {
	for key, name := range keys {
		f := fs.Lookup(name)
		if f == nil {
			return fmt.Errorf("unknown flag %q for %s", name, key)
		}
		if err := c.v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("binding flag %q: %w", name, err)
		}
	}
	c.fill()
	return nil
}

// fill copies viper values into the typed struct
func (c *Config) fill() {
	v := c.v
	c.API = APIConfig{
		BaseURL: strings.TrimSuffix(v.GetString("api.base_url"), "/"),
		WSURL:   strings.TrimSuffix(v.GetString("api.ws_url"), "/"),
		Timeout: v.GetDuration("api.timeout"),
	}
	c.Connection = ConnectionConfig{
		ReconnectDelay:       v.GetDuration("connection.reconnect_delay"),
		MaxReconnectAttempts: ValidateReconnectAttempts(v.GetInt("connection.max_reconnect_attempts")),
		HeartbeatInterval:    ValidateHeartbeatInterval(v.GetDuration("connection.heartbeat_interval")),
	}
	c.Server = ServerConfig{
		ListenAddress: v.GetString("server.listen_address"),
		APIToken:      v.GetString("server.api_token"),
		RateLimit:     v.GetInt("server.rate_limit"),
	}
	c.Storage = StorageConfig{
		Path: v.GetString("storage.path"),
	}
	c.Logging = LoggingConfig{
		Level:  v.GetString("logging.level"),
		Format: v.GetString("logging.format"),
	}
	c.MQTT = MQTTConfig{
		Broker:      v.GetString("mqtt.broker"),
		Username:    v.GetString("mqtt.username"),
		Password:    v.GetString("mqtt.password"),
		TopicPrefix: v.GetString("mqtt.topic_prefix"),
	}
}

// Save writes the configuration back to the file it was loaded from
func (c *Config) Save() error {
	path := c.v.ConfigFileUsed()
	if path == "" {
		path = GetAgentConfigPath()
		c.v.SetConfigFile(path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	c.v.Set("api", map[string]any{
		"base_url": c.API.BaseURL,
		"ws_url":   c.API.WSURL,
		"timeout":  c.API.Timeout.String(),
	})
	c.v.Set("connection", map[string]any{
		"reconnect_delay":        c.Connection.ReconnectDelay.String(),
		"max_reconnect_attempts": c.Connection.MaxReconnectAttempts,
		"heartbeat_interval":     c.Connection.HeartbeatInterval.String(),
	})
	c.v.Set("server", map[string]any{
		"listen_address": c.Server.ListenAddress,
		"api_token":      c.Server.APIToken,
		"rate_limit":     c.Server.RateLimit,
	})
	c.v.Set("storage", map[string]any{"path": c.Storage.Path})
	c.v.Set("logging", map[string]any{"level": c.Logging.Level, "format": c.Logging.Format})
	c.v.Set("mqtt", map[string]any{
		"broker":       c.MQTT.Broker,
		"username":     c.MQTT.Username,
		"password":     c.MQTT.Password,
		"topic_prefix": c.MQTT.TopicPrefix,
	})

	if err := c.v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	return nil
}

// Watch re-reads the config file whenever it changes on disk and hands the
// refreshed values to onChange. Only the file-backed keys are refreshed.
func (c *Config) Watch(logger *slog.Logger, onChange func(*Config)) {
	if c.v.ConfigFileUsed() == "" {
		return
	}
	c.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		logger.Info("config: file changed", "path", e.Name, "op", e.Op.String())
		c.fill()
		if onChange != nil {
			onChange(c)
		}
	})
	c.v.WatchConfig()
}

// Get retrieves a raw value from the configuration
func (c *Config) Get(key string) any {
	if c.v == nil {
		return nil
	}
	return c.v.Get(key)
}
