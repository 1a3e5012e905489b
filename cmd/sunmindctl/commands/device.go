package commands

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/sunmind/sunmind/pkg/client"
)

// NewDeviceCommand creates the device command
func NewDeviceCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "device",
		Short:   "Inspect and select devices",
		Aliases: []string{"devices"},
	}

	cmd.AddCommand(
		newDeviceListCommand(),
		newDeviceGetCommand(),
		newDeviceSelectCommand(),
		newDeviceRemoveCommand(),
	)

	return cmd
}

// chooseDevice returns args[0], or asks the user to pick a known device.
func chooseDevice(c client.ClientInterface, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	devices, err := c.GetDevices()
	if err != nil {
		return "", fmt.Errorf("failed to get devices: %w", err)
	}
	if len(devices) == 0 {
		return "", fmt.Errorf("no devices known")
	}

	// Devices arrive sorted by name
	options := make([]string, len(devices))
	for i, d := range devices {
		options[i] = fmt.Sprintf("%s (%s)", d.ID, d.Name)
	}

	selected, err := pterm.DefaultInteractiveSelect.
		WithOptions(options).
		Show("Select a device")
	if err != nil {
		return "", fmt.Errorf("failed to select device: %w", err)
	}

	// Extract ID from selected option
	return strings.Split(selected, " (")[0], nil
}

func newDeviceListCommand() *cobra.Command {
	var parseable bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List known devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := getClient(cmd)
			if err != nil {
				return err
			}
			devices, err := c.GetDevices()
			if err != nil {
				return fmt.Errorf("failed to get devices: %w", err)
			}

			if len(devices) == 0 {
				if parseable {
					return nil
				}
				pterm.Info.Println("No devices known")
				return nil
			}

			if parseable {
				// Print one line per device in key=value format
				for _, d := range devices {
					fmt.Println(DeviceParseable(d))
				}
				return nil
			}

			// Create a table for each device
			for _, d := range devices {
				pterm.DefaultTable.WithData(DeviceTableData(d)).Render()
				pterm.Println() // Add a blank line between devices
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&parseable, "parseable", "p", false, "Output in parseable format (key=value)")
	return cmd
}

func newDeviceGetCommand() *cobra.Command {
	var parseable bool
	cmd := &cobra.Command{
		Use:   "get [id]",
		Short: "Show a device and its latest telemetry",
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
			d, err := c.GetDevice(id)
			if err != nil {
				return fmt.Errorf("failed to get device: %w", err)
			}
			if parseable {
				fmt.Println(DeviceParseable(*d))
				return nil
			}
			pterm.DefaultTable.WithData(DeviceTableData(*d)).Render()
			return nil
		},
	}
	cmd.Flags().BoolVarP(&parseable, "parseable", "p", false, "Output in parseable format (key=value)")
	return cmd
}

func newDeviceSelectCommand() *cobra.Command {
	var clearSelection bool
	cmd := &cobra.Command{
		Use:   "select [id]",
		Short: "Select the device the dashboard focuses on",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := getClient(cmd)
			if err != nil {
				return err
			}
			id := ""
			if !clearSelection {
				if id, err = chooseDevice(c, args); err != nil {
					return err
				}
			}
			if err := c.SelectDevice(id); err != nil {
				return fmt.Errorf("failed to select device: %w", err)
			}
			if id == "" {
				pterm.Success.Println("Selection cleared")
			} else {
				pterm.Success.Printf("Selected %s\n", id)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&clearSelection, "clear", false, "Clear the selection")
	return cmd
}

func newDeviceRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "remove [id]",
		Short:   "Forget a device",
		Aliases: []string{"rm"},
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := getClient(cmd)
			if err != nil {
				return err
			}
			id, err := chooseDevice(c, args)
			if err != nil {
				return err
			}
			if err := c.RemoveDevice(id); err != nil {
				return fmt.Errorf("failed to remove device: %w", err)
			}
			pterm.Success.Printf("Removed %s\n", id)
			return nil
		},
	}
}
