package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sunmind/sunmind/internal/utils"
)

func newNotificationsCommand() *cobra.Command {
	var parseable bool
	cmd := &cobra.Command{
		Use:     "notifications",
		Short:   "Show recent agent notifications",
		Aliases: []string{"notify"},
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := getClient(cmd)
			if err != nil {
				return err
			}
			list, err := c.GetNotifications()
			if err != nil {
				return fmt.Errorf("failed to get notifications: %w", err)
			}
			if len(list) == 0 {
				if !parseable {
					pterm.Info.Println("No notifications")
				}
				return nil
			}
			for _, n := range list {
				ts := n.Timestamp.Local().Format("2006-01-02 15:04:05")
				if parseable {
					fmt.Printf("timestamp=%d level=%q message=%q\n", n.Timestamp.Unix(), n.Level, n.Message)
					continue
				}
				fmt.Printf("%s %-7s %s\n", ts, strings.ToUpper(n.Level), n.Message)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&parseable, "parseable", "p", false, "Output in parseable format (key=value)")
	return cmd
}

func newLogLevelCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "log-level [debug|info|warn|error]",
		Short: "Show or change the agent log level",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := getClient(cmd)
			if err != nil {
				return err
			}
			if len(args) == 0 {
				level, err := c.GetLogLevel()
				if err != nil {
					return fmt.Errorf("failed to get log level: %w", err)
				}
				fmt.Println(level)
				return nil
			}
			want := strings.ToLower(args[0])
			if utils.ValidateLogLevel(want) != want {
				return fmt.Errorf("invalid log level: %s", args[0])
			}
			level, err := c.SetLogLevel(want)
			if err != nil {
				return fmt.Errorf("failed to set log level: %w", err)
			}
			pterm.Success.Printf("Log level set to %s\n", level)
			return nil
		},
	}
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the CLI configuration",
	}
	cmd.AddCommand(newConfigShowCommand())
	return cmd
}

func newConfigShowCommand() *cobra.Command {
	var reveal bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			out := *cfg
			if !reveal {
				out.Server.APIToken = mask(out.Server.APIToken)
				out.MQTT.Password = mask(out.MQTT.Password)
			}
			enc := yaml.NewEncoder(os.Stdout)
			enc.SetIndent(2)
			if err := enc.Encode(out); err != nil {
				return fmt.Errorf("failed to encode config: %w", err)
			}
			return enc.Close()
		},
	}
	cmd.Flags().BoolVar(&reveal, "reveal", false, "Show secrets in clear text")
	return cmd
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) > 8 {
		return secret[:4] + "..." + secret[len(secret)-4:]
	}
	return "****"
}
