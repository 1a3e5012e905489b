package commands

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// NewConnectionCommands creates status, connect and disconnect.
func NewConnectionCommands() []*cobra.Command {
	return []*cobra.Command{
		newStatusCommand(),
		newConnectCommand(),
		newDisconnectCommand(),
	}
}

func newStatusCommand() *cobra.Command {
	var parseable bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the session, telemetry socket and light status",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := getClient(cmd)
			if err != nil {
				return err
			}
			s, err := c.GetSession()
			if err != nil {
				return fmt.Errorf("failed to get session: %w", err)
			}
			status, err := c.GetConnection()
			if err != nil {
				return fmt.Errorf("failed to get connection status: %w", err)
			}
			l, err := c.GetLight()
			if err != nil {
				return fmt.Errorf("failed to get light: %w", err)
			}

			user := ""
			if s.User != nil {
				user = s.User.Email
			}
			if parseable {
				fmt.Printf("authenticated=%v user=%q connection=%q %s\n", s.Authenticated, user, status, LightParseable(l))
				return nil
			}
			if user == "" {
				user = "not signed in"
			}
			table := pterm.TableData{
				[]string{"Property", "Value"},
				[]string{"User", user},
				[]string{"Connection", status},
			}
			table = append(table, LightTableData(l)[1:]...)
			pterm.DefaultTable.WithHasHeader().WithData(table).Render()
			return nil
		},
	}
	cmd.Flags().BoolVarP(&parseable, "parseable", "p", false, "Output in parseable format (key=value)")
	return cmd
}

func newConnectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "connect",
		Short: "Open the telemetry socket",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := getClient(cmd)
			if err != nil {
				return err
			}
			status, err := c.Connect()
			if err != nil {
				return fmt.Errorf("failed to connect: %w", err)
			}
			pterm.Success.Printf("Connection %s\n", status)
			return nil
		},
	}
}

func newDisconnectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "disconnect",
		Short: "Close the telemetry socket",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := getClient(cmd)
			if err != nil {
				return err
			}
			status, err := c.Disconnect()
			if err != nil {
				return fmt.Errorf("failed to disconnect: %w", err)
			}
			pterm.Success.Printf("Connection %s\n", status)
			return nil
		},
	}
}
