package commands

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/sunmind/sunmind/pkg/client"
)

// NewSessionCommands creates login, register, logout and whoami.
func NewSessionCommands() []*cobra.Command {
	return []*cobra.Command{
		newLoginCommand(),
		newRegisterCommand(),
		newLogoutCommand(),
		newWhoamiCommand(),
	}
}

// prompt asks for a value unless it was given on the command line.
func prompt(value, label string, mask bool) (string, error) {
	if value != "" {
		return value, nil
	}
	input := pterm.DefaultInteractiveTextInput.WithMultiLine(false)
	if mask {
		input = input.WithMask("*")
	}
	result, err := input.Show(label)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", label, err)
	}
	return result, nil
}

func printSession(s *client.Session) {
	if !s.Authenticated || s.User == nil {
		pterm.Info.Println("Not signed in")
		return
	}
	table := pterm.TableData{
		[]string{"Property", "Value"},
		[]string{"ID", s.User.ID},
		[]string{"Name", s.User.Name},
		[]string{"Email", s.User.Email},
	}
	if s.User.Roles != "" {
		table = append(table, []string{"Roles", s.User.Roles})
	}
	pterm.DefaultTable.WithHasHeader().WithData(table).Render()
}

func newLoginCommand() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "login [email]",
		Short: "Sign the agent in to the SunMind backend",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := getClient(cmd)
			if err != nil {
				return err
			}
			var email string
			if len(args) > 0 {
				email = args[0]
			}
			if email, err = prompt(email, "Email", false); err != nil {
				return err
			}
			if password, err = prompt(password, "Password", true); err != nil {
				return err
			}

			s, err := c.Login(email, password)
			if err != nil {
				return fmt.Errorf("failed to sign in: %w", err)
			}
			name := email
			if s.User != nil {
				name = s.User.Name
			}
			pterm.Success.Printf("Signed in as %s\n", name)
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "Password (prompted when omitted)")
	return cmd
}

func newRegisterCommand() *cobra.Command {
	var name, password string
	cmd := &cobra.Command{
		Use:   "register [email]",
		Short: "Create an account and sign the agent in with it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := getClient(cmd)
			if err != nil {
				return err
			}
			var email string
			if len(args) > 0 {
				email = args[0]
			}
			if name, err = prompt(name, "Name", false); err != nil {
				return err
			}
			if email, err = prompt(email, "Email", false); err != nil {
				return err
			}
			if password, err = prompt(password, "Password", true); err != nil {
				return err
			}

			if _, err := c.Register(name, email, password); err != nil {
				return fmt.Errorf("failed to register: %w", err)
			}
			pterm.Success.Printf("Registered and signed in as %s\n", name)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Display name (prompted when omitted)")
	cmd.Flags().StringVar(&password, "password", "", "Password (prompted when omitted)")
	return cmd
}

func newLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign the agent out",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := getClient(cmd)
			if err != nil {
				return err
			}
			if err := c.Logout(); err != nil {
				return fmt.Errorf("failed to sign out: %w", err)
			}
			pterm.Success.Println("Signed out")
			return nil
		},
	}
}

func newWhoamiCommand() *cobra.Command {
	var parseable bool
	cmd := &cobra.Command{
		Use:     "whoami",
		Short:   "Show the signed-in user",
		Aliases: []string{"session"},
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := getClient(cmd)
			if err != nil {
				return err
			}
			s, err := c.GetSession()
			if err != nil {
				return fmt.Errorf("failed to get session: %w", err)
			}
			if parseable {
				if s.User == nil {
					fmt.Printf("authenticated=%v\n", s.Authenticated)
					return nil
				}
				fmt.Printf("authenticated=%v id=%q name=%q email=%q\n", s.Authenticated, s.User.ID, s.User.Name, s.User.Email)
				return nil
			}
			printSession(s)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&parseable, "parseable", "p", false, "Output in parseable format (key=value)")
	return cmd
}
