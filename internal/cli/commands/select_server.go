package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/plateadmin/plateadmin/internal/cli/config"
	"github.com/plateadmin/plateadmin/internal/cli/serverselect"
	"github.com/plateadmin/plateadmin/internal/cli/userconfig"
)

// NewSelectServerCmd creates the select-server command
func NewSelectServerCmd() *cobra.Command {
	var clearSelection bool

	cmd := &cobra.Command{
		Use:   "select-server [url-or-alias]",
		Short: "Choose the server later commands use",
		Long: `Choose the server later commands use.

Without an argument an interactive picker is shown.

Examples:
  $ plateadmin select-server                            # Interactive selection
  $ plateadmin select-server https://admin.example.com  # Select by URL
  $ plateadmin select-server production                 # Select by alias
  $ plateadmin select-server --clear                    # Forget the selection`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if clearSelection {
				if err := userconfig.SetSelectedServer(""); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "✓ Server selection cleared")
				return nil
			}

			cfg, err := config.LoadFromCurrentDir()
			if err != nil {
				return fmt.Errorf("failed to load config: %w\nRun 'plateadmin init <url>' to create a configuration file", err)
			}

			urlOrAlias := ""
			if len(args) > 0 {
				urlOrAlias = args[0]
			}
			return runSelectServer(cmd.OutOrStdout(), cfg, urlOrAlias, serverselect.PromptServerSelection)
		},
	}

	cmd.Flags().BoolVar(&clearSelection, "clear", false, "Forget the selected server")

	return cmd
}

func runSelectServer(out io.Writer, cfg *config.Config, urlOrAlias string, prompt func(*config.Config) (*config.Server, error)) error {
	var server *config.Server
	var err error
	if urlOrAlias != "" {
		server, err = cfg.GetServerByURLOrAlias(urlOrAlias)
	} else {
		server, err = prompt(cfg)
	}
	if err != nil {
		return err
	}

	if err := userconfig.SetSelectedServer(server.URL); err != nil {
		return fmt.Errorf("failed to save selected server: %w", err)
	}

	fmt.Fprintf(out, "✓ Selected %s (%s)\n", server.Alias, server.URL)
	return nil
}
