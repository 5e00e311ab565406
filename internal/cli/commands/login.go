package commands

import (
	"fmt"
	"io"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/plateadmin/plateadmin/internal/cli/auth"
	"github.com/plateadmin/plateadmin/internal/cli/client"
	"github.com/plateadmin/plateadmin/internal/cli/config"
	"github.com/plateadmin/plateadmin/internal/cli/userconfig"
)

// NewLoginCmd creates the login command
func NewLoginCmd() *cobra.Command {
	var email, password, serverAlias string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with a PlateAdmin server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				email = os.Getenv("PLATEADMIN_EMAIL")
			}
			if password == "" {
				password = os.Getenv("PLATEADMIN_PASSWORD")
			}

			server, err := getSelectedServer(serverAlias)
			if err != nil {
				return err
			}

			if email == "" {
				email = userconfig.LastEmail(server.URL)
			}
			if email == "" {
				return fmt.Errorf("email is required (use --email flag or PLATEADMIN_EMAIL env var)")
			}

			if password == "" {
				if !term.IsTerminal(int(syscall.Stdin)) {
					return fmt.Errorf("password is required in non-interactive mode (use --password flag or PLATEADMIN_PASSWORD env var)")
				}
				fmt.Fprint(cmd.OutOrStdout(), "Password: ")
				bytePassword, err := term.ReadPassword(int(syscall.Stdin))
				fmt.Fprintln(cmd.OutOrStdout())
				if err != nil {
					return fmt.Errorf("failed to read password: %w", err)
				}
				password = string(bytePassword)
			}

			if err := runLogin(cmd.OutOrStdout(), auth.Default, server, email, password); err != nil {
				return err
			}
			// Only a convenience default for the next login
			_ = userconfig.RememberEmail(server.URL, email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (or set PLATEADMIN_EMAIL, defaults to the last one used)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set PLATEADMIN_PASSWORD, will prompt if not provided)")
	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias (uses the selected server if not specified)")

	return cmd
}

func runLogin(out io.Writer, store auth.TokenStore, server *config.Server, email, password string) error {
	fmt.Fprintf(out, "Logging in to %s (%s)...\n", server.Alias, server.URL)

	loginResp, err := client.New(server.URL, "").Login(email, password)
	if err != nil {
		return err
	}

	if err := store.SaveToken(server.URL, loginResp.Token); err != nil {
		return fmt.Errorf("failed to save authentication token: %w", err)
	}

	fmt.Fprintln(out, "✓ Login successful!")
	fmt.Fprintf(out, "  User: %s (%s)\n", loginResp.User.DisplayName, loginResp.User.Email)
	if loginResp.User.Role != "" {
		fmt.Fprintf(out, "  Role: %s\n", loginResp.User.Role)
	}

	return nil
}

// NewLogoutCmd creates the logout command
func NewLogoutCmd() *cobra.Command {
	var serverAlias string

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session for a server",
		RunE: func(cmd *cobra.Command, args []string) error {
			server, err := getSelectedServer(serverAlias)
			if err != nil {
				return err
			}
			return runLogout(cmd.OutOrStdout(), auth.Default, server)
		},
	}

	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias (uses the selected server if not specified)")

	return cmd
}

func runLogout(out io.Writer, store auth.TokenStore, server *config.Server) error {
	if err := store.DeleteToken(server.URL); err != nil {
		return err
	}
	fmt.Fprintf(out, "✓ Logged out of %s (%s)\n", server.Alias, server.URL)
	return nil
}

// NewWhoamiCmd creates the whoami command
func NewWhoamiCmd() *cobra.Command {
	var serverAlias string

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			server, err := getSelectedServer(serverAlias)
			if err != nil {
				return err
			}
			return runWhoami(cmd.OutOrStdout(), auth.Default, server)
		},
	}

	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias (uses the selected server if not specified)")

	return cmd
}

// loadSession returns the stored session for server, or ErrNotLoggedIn
func loadSession(store auth.TokenStore, server *config.Server) (string, error) {
	token, err := store.LoadToken(server.URL)
	if err != nil {
		return "", err
	}
	if !auth.SessionFromToken(token).Authenticated() {
		return "", auth.ErrNotLoggedIn
	}
	return token, nil
}

func runWhoami(out io.Writer, store auth.TokenStore, server *config.Server) error {
	token, err := loadSession(store, server)
	if err != nil {
		return err
	}

	user, err := client.New(server.URL, token).Me()
	if err != nil {
		if client.IsUnauthorized(err) {
			// The server no longer accepts the token
			_ = store.DeleteToken(server.URL)
			return auth.ErrNotLoggedIn
		}
		return err
	}

	role := user.Role
	if role == "" {
		role = "no role"
	}
	fmt.Fprintf(out, "%s <%s> on %s (%s), role: %s\n", user.DisplayName, user.Email, server.Alias, server.URL, role)
	return nil
}
