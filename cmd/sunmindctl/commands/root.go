package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sunmind/sunmind/internal/config"
	"github.com/sunmind/sunmind/internal/utils"
	"github.com/sunmind/sunmind/pkg/client"
)

// Define a custom type for context keys to avoid collisions
type loggerContextKey struct{}

// NewRootCommand creates the root command
func NewRootCommand(logger *slog.Logger, version, commit, buildDate string) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "sunmindctl",
		Short:        "Control the SunMind agent",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if f := cmd.Flags().Lookup("log-level"); f != nil && f.Changed {
				utils.SetLevel(f.Value.String())
			}
			if _, err := getClient(cmd); err == nil {
				return nil
			}
			c, err := newClientFromFlags(cmd)
			if err != nil {
				return err
			}
			cmd.SetContext(context.WithValue(cmd.Context(), ClientContextKey, c))
			return nil
		},
	}

	// Add global flags
	cmd.PersistentFlags().String("url", "", "Agent API URL (default: http://<server.listen_address>)")
	cmd.PersistentFlags().String("api-key", "", "Agent API token (default: server.api_token)")
	cmd.PersistentFlags().String("config", "", "Path to config file")
	cmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")

	// Add commands
	cmd.AddCommand(newVersionCommand(version, commit, buildDate))
	cmd.AddCommand(NewSessionCommands()...)
	cmd.AddCommand(NewConnectionCommands()...)
	cmd.AddCommand(NewDeviceCommand())
	cmd.AddCommand(NewLightCommand())
	cmd.AddCommand(NewReviewCommand())
	cmd.AddCommand(newNotificationsCommand())
	cmd.AddCommand(newLogLevelCommand())
	cmd.AddCommand(NewConfigCommand())

	if logger != nil {
		parent := cmd.Context()
		if parent == nil {
			parent = context.Background()
		}
		cmd.SetContext(context.WithValue(parent, loggerContextKey{}, logger))
	}

	return cmd
}

// loadConfig reads the CLI config named by --config, or the default one.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(config.ClientConfigFilename, path)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// newClientFromFlags builds the agent client. Flags win over the config file.
func newClientFromFlags(cmd *cobra.Command) (client.ClientInterface, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	url, _ := cmd.Flags().GetString("url")
	if url == "" {
		url = "http://" + cfg.Server.ListenAddress
	}
	key, _ := cmd.Flags().GetString("api-key")
	if key == "" {
		key = cfg.Server.APIToken
	}
	return client.NewHTTP(getLoggerFromCmd(cmd), url, key), nil
}

// newVersionCommand creates the version command
func newVersionCommand(version, commit, buildDate string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Client:\n")
			fmt.Printf("  Version:    %s\n", version)
			fmt.Printf("  Commit:     %s\n", commit)
			fmt.Printf("  Build Date: %s\n", buildDate)

			// Try to query the agent for its version
			c, err := getClient(cmd)
			if err != nil {
				return
			}
			resp, err := c.GetVersion()
			if err != nil {
				fmt.Printf("\nAgent: not reachable\n")
				return
			}
			fmt.Printf("\nAgent:\n")
			if v, ok := resp["version"].(string); ok {
				fmt.Printf("  Version:    %s\n", v)
			}
			if c, ok := resp["commit"].(string); ok {
				fmt.Printf("  Commit:     %s\n", c)
			}
			if d, ok := resp["date"].(string); ok {
				fmt.Printf("  Build Date: %s\n", d)
			}
		},
	}
}
