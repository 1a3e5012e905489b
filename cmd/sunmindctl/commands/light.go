package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/sunmind/sunmind/pkg/client"
	"github.com/sunmind/sunmind/pkg/sunmind"
)

// NewLightCommand creates the light command
func NewLightCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "light",
		Short: "Control the light",
	}

	cmd.AddCommand(
		newLightGetCommand(),
		newLightBrightnessCommand(),
		newLightModeCommand(),
		newLightToggleCommand(),
		newLightControlCommand(),
		newLightTargetCommand(),
		newLightSyncCommand(),
		newLightResetCommand(),
	)

	return cmd
}

// printLight renders the state returned by a light operation.
func printLight(l *client.Light, parseable bool) {
	if parseable {
		fmt.Println(LightParseable(l))
		return
	}
	pterm.DefaultTable.WithHasHeader().WithData(LightTableData(l)).Render()
}

// lightAction runs op and reports the resulting state.
func lightAction(cmd *cobra.Command, parseable bool, what string, op func(client.ClientInterface) (*client.Light, error)) error {
	c, err := getClient(cmd)
	if err != nil {
		return err
	}
	l, err := op(c)
	if err != nil {
		return fmt.Errorf("failed to %s: %w", what, err)
	}
	printLight(l, parseable)
	return nil
}

func newLightGetCommand() *cobra.Command {
	var parseable bool
	cmd := &cobra.Command{
		Use:     "get [property]",
		Short:   "Show the light state",
		Aliases: []string{"show"},
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := getClient(cmd)
			if err != nil {
				return err
			}
			l, err := c.GetLight()
			if err != nil {
				return fmt.Errorf("failed to get light: %w", err)
			}

			// If a specific property was requested, only show that
			if len(args) > 0 {
				property := strings.ToLower(args[0])
				var value any
				switch property {
				case "on":
					value = l.Settings.IsOn
				case "brightness":
					value = l.Settings.Brightness
				case "mode":
					value = l.Settings.Mode
				case "control":
					value = l.Settings.ControlMode
				case "target":
					value = l.DeviceID
				case "connected":
					value = l.Connected
				default:
					return fmt.Errorf("invalid property: %s", property)
				}
				if parseable {
					fmt.Printf("%s=%v\n", property, value)
				} else {
					fmt.Println(value)
				}
				return nil
			}

			printLight(l, parseable)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&parseable, "parseable", "p", false, "Output in parseable format (key=value)")
	return cmd
}

func newLightBrightnessCommand() *cobra.Command {
	var parseable bool
	cmd := &cobra.Command{
		Use:   "brightness [0-100]",
		Short: "Set the brightness",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var value string
			if len(args) > 0 {
				value = args[0]
			}
			value, err := prompt(value, "Enter brightness (0-100)", false)
			if err != nil {
				return err
			}
			brightness, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("invalid brightness value: %w", err)
			}
			if brightness < 0 || brightness > 100 {
				return fmt.Errorf("brightness must be between 0 and 100, got %d", brightness)
			}
			return lightAction(cmd, parseable, "set brightness", func(c client.ClientInterface) (*client.Light, error) {
				return c.SetBrightness(brightness)
			})
		},
	}
	cmd.Flags().BoolVarP(&parseable, "parseable", "p", false, "Output in parseable format (key=value)")
	return cmd
}

func newLightModeCommand() *cobra.Command {
	var parseable bool
	modes := []string{string(sunmind.ModeEconomy), string(sunmind.ModeDefault), string(sunmind.ModeMaximum)}
	cmd := &cobra.Command{
		Use:       "mode [" + strings.Join(modes, "|") + "]",
		Short:     "Apply a light preset",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: modes,
		RunE: func(cmd *cobra.Command, args []string) error {
			var mode string
			if len(args) > 0 {
				mode = args[0]
			} else {
				selected, err := pterm.DefaultInteractiveSelect.
					WithOptions(modes).
					Show("Select light mode")
				if err != nil {
					return fmt.Errorf("failed to select mode: %w", err)
				}
				mode = selected
			}
			if _, err := sunmind.ParseLightMode(mode); err != nil {
				return err
			}
			return lightAction(cmd, parseable, "set mode", func(c client.ClientInterface) (*client.Light, error) {
				return c.SetMode(mode)
			})
		},
	}
	cmd.Flags().BoolVarP(&parseable, "parseable", "p", false, "Output in parseable format (key=value)")
	return cmd
}

func newLightToggleCommand() *cobra.Command {
	var parseable bool
	cmd := &cobra.Command{
		Use:   "toggle",
		Short: "Turn the light on or off",
		RunE: func(cmd *cobra.Command, args []string) error {
			return lightAction(cmd, parseable, "toggle light", client.ClientInterface.TogglePower)
		},
	}
	cmd.Flags().BoolVarP(&parseable, "parseable", "p", false, "Output in parseable format (key=value)")
	return cmd
}

func newLightControlCommand() *cobra.Command {
	var parseable bool
	cmd := &cobra.Command{
		Use:       "control [manual|auto]",
		Short:     "Switch between manual and automatic control",
		Aliases:   []string{"control-mode"},
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(sunmind.ControlManual), string(sunmind.ControlAuto)},
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := sunmind.ParseControlMode(args[0]); err != nil {
				return err
			}
			return lightAction(cmd, parseable, "set control mode", func(c client.ClientInterface) (*client.Light, error) {
				return c.SetControlMode(args[0])
			})
		},
	}
	cmd.Flags().BoolVarP(&parseable, "parseable", "p", false, "Output in parseable format (key=value)")
	return cmd
}

func newLightTargetCommand() *cobra.Command {
	var parseable bool
	cmd := &cobra.Command{
		Use:   "target [device-id]",
		Short: "Choose the device light commands are sent to",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := getClient(cmd)
			if err != nil {
				return err
			}
			id, err := chooseDevice(c, args)
			if err != nil {
				return err
			}
			return lightAction(cmd, parseable, "set target", func(c client.ClientInterface) (*client.Light, error) {
				return c.SetTarget(id)
			})
		},
	}
	cmd.Flags().BoolVarP(&parseable, "parseable", "p", false, "Output in parseable format (key=value)")
	return cmd
}

func newLightSyncCommand() *cobra.Command {
	var parseable bool
	cmd := &cobra.Command{
		Use:   "sync [device-id]",
		Short: "Copy power and brightness from a device's telemetry",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := getClient(cmd)
			if err != nil {
				return err
			}
			id, err := chooseDevice(c, args)
			if err != nil {
				return err
			}
			return lightAction(cmd, parseable, "sync light", func(c client.ClientInterface) (*client.Light, error) {
				return c.SyncLight(id)
			})
		},
	}
	cmd.Flags().BoolVarP(&parseable, "parseable", "p", false, "Output in parseable format (key=value)")
	return cmd
}

func newLightResetCommand() *cobra.Command {
	var parseable bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Restore the default light settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return lightAction(cmd, parseable, "reset light", client.ClientInterface.ResetLight)
		},
	}
	cmd.Flags().BoolVarP(&parseable, "parseable", "p", false, "Output in parseable format (key=value)")
	return cmd
}
