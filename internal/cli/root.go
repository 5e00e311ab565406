// Package cli wires the plateadmin command tree.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/plateadmin/plateadmin/internal/cli/auth"
	"github.com/plateadmin/plateadmin/internal/cli/commands"
)

var version = "dev" // set with -ldflags "-X github.com/plateadmin/plateadmin/internal/cli.version=..."

// NewRootCmd builds the plateadmin command tree
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "plateadmin",
		Short: "Browse a PlateAdmin store from the terminal",
		Long: `plateadmin lists the orders, products, categories and customers of a
PlateAdmin dashboard.

Servers are listed in ./plateadmin.json (see 'plateadmin init'); sessions are
kept in the OS keyring.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddGroup(
		&cobra.Group{ID: "setup", Title: "Setup:"},
		&cobra.Group{ID: "session", Title: "Session:"},
		&cobra.Group{ID: "store", Title: "Store:"},
	)

	add := func(group string, cmds ...*cobra.Command) {
		for _, cmd := range cmds {
			cmd.GroupID = group
			root.AddCommand(cmd)
		}
	}
	add("setup", commands.NewInitCmd(), commands.NewSelectServerCmd())
	add("session", commands.NewLoginCmd(), commands.NewLogoutCmd(), commands.NewWhoamiCmd())
	add("store", commands.NewListCmd(), commands.NewDashCmd())

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "plateadmin version %s\n", version)
		},
	})

	return root
}

// Execute runs the CLI with os.Args
func Execute() error {
	return run(NewRootCmd(), os.Stderr)
}

func run(root *cobra.Command, stderr io.Writer) error {
	err := root.Execute()
	if err == nil {
		return nil
	}

	fmt.Fprintf(stderr, "Error: %v\n", err)
	if errors.Is(err, auth.ErrNotLoggedIn) {
		fmt.Fprintln(stderr, "Hint: sessions are per server; pass --server to pick another one.")
	}
	return err
}
