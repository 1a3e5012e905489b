package main

import (
	"os"

	"github.com/sunmind/sunmind/cmd/sunmindctl/commands"
	"github.com/sunmind/sunmind/internal/config"
	"github.com/sunmind/sunmind/internal/utils"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	// Load configuration first for the logging settings; the client itself
	// is built once flags are parsed.
	cfg, err := config.Load(config.ClientConfigFilename, "")
	if err != nil {
		utils.SetupErrorLogger().Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := utils.SetupLogger(cfg.Logging.Level, cfg.Logging.Format)
	utils.SetAsDefaultLogger(logger)

	rootCmd := commands.NewRootCommand(logger, version, commit, buildDate)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
