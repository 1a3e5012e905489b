package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/sunmind/sunmind/internal/config"
	"github.com/sunmind/sunmind/internal/server"
	"github.com/sunmind/sunmind/internal/utils"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

// flagKeys maps config keys to the command line flags overriding them.
var flagKeys = map[string]string{
	"logging.level":         "log-level",
	"logging.format":        "log-format",
	"server.listen_address": "listen",
	"storage.path":          "state",
	"api.base_url":          "api-url",
	"api.ws_url":            "ws-url",
	"mqtt.broker":           "mqtt-broker",
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("sunmindd", pflag.ContinueOnError)
	fs.String("log-level", config.LogLevelInfo, "Log level (debug, info, warn, error)")
	fs.String("log-format", config.LogFormatText, "Log format (text, json)")
	fs.String("config", "", "Path to config file")
	fs.String("listen", config.DefaultListenAddress, "Local API listen address (empty disables it)")
	fs.String("state", config.GetDefaultStatePath(), "Path to the state database")
	fs.String("api-url", config.DefaultAPIBaseURL, "SunMind backend REST endpoint")
	fs.String("ws-url", config.DefaultWSURL, "SunMind backend telemetry socket endpoint")
	fs.String("mqtt-broker", "", "MQTT broker for the telemetry mirror (empty disables it)")
	fs.Bool("version", false, "Print version and exit")
	return fs
}

// loadConfig reads the config file named by --config (or the default agent
// config) and applies command line overrides.
func loadConfig(fs *pflag.FlagSet) (*config.Config, error) {
	path, _ := fs.GetString("config")
	cfg, err := config.Load(config.AgentConfigFilename, path)
	if err != nil {
		return nil, err
	}
	if err := cfg.BindFlags(fs, flagKeys); err != nil {
		return nil, err
	}
	return cfg, nil
}

func main() {
	fs := newFlagSet()
	if err := fs.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}
	if v, _ := fs.GetBool("version"); v {
		os.Stdout.WriteString("sunmindd " + version + " (" + commit + ", " + buildDate + ")\n")
		return
	}

	cfg, err := loadConfig(fs)
	if err != nil {
		// Create a basic logger for the error
		utils.SetupErrorLogger().Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := utils.SetupLogger(cfg.Logging.Level, cfg.Logging.Format)
	utils.SetAsDefaultLogger(logger)

	logger.Info("Starting sunmindd",
		"version", version,
		"commit", commit,
		"buildDate", buildDate,
	)

	srv, err := server.New(logger, cfg, server.Options{
		Build: server.BuildInfo{Version: version, Commit: commit, Date: buildDate},
	})
	if err != nil {
		logger.Error("Failed to create server", "error", err)
		os.Exit(1)
	}

	if err := srv.Start(); err != nil {
		logger.Error("Failed to start server", "error", err)
		srv.Stop()
		os.Exit(1)
	}

	cfg.Watch(logger, func(c *config.Config) {
		utils.SetLevel(c.Logging.Level)
		logger.Info("Log level reloaded", "level", utils.CurrentLevel())
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Info("Shutting down...")
	srv.Stop()
}
