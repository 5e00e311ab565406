package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/plateadmin/plateadmin/internal/cli/config"
)

// NewInitCmd creates the init command
func NewInitCmd() *cobra.Command {
	var alias string

	cmd := &cobra.Command{
		Use:   "init <server-url>",
		Short: "Add a PlateAdmin server to ./plateadmin.json",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get current directory: %w", err)
			}
			return runInit(cmd.OutOrStdout(), dir, args[0], alias)
		},
	}

	cmd.Flags().StringVar(&alias, "alias", "", "Server alias (defaults to production, then server-N)")

	return cmd
}

func runInit(out io.Writer, dir, rawURL, alias string) error {
	serverURL, err := config.NormalizeURL(rawURL)
	if err != nil {
		return err
	}

	configPath := filepath.Join(dir, config.ConfigFileName)

	cfg := &config.Config{Servers: []config.Server{}}
	isNewConfig := true
	if _, err := os.Stat(configPath); err == nil {
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load existing config: %w", err)
		}
		isNewConfig = false
	}

	if alias == "" {
		alias = "production"
		if len(cfg.Servers) > 0 {
			alias = fmt.Sprintf("server-%d", len(cfg.Servers)+1)
		}
	}

	if !cfg.AddServer(alias, serverURL) {
		fmt.Fprintf(out, "Server %s already exists in %s\n", serverURL, config.ConfigFileName)
		return nil
	}

	if err := config.Save(configPath, cfg); err != nil {
		return err
	}

	if isNewConfig {
		fmt.Fprintf(out, "✓ Created ./%s with server %s (%s)\n", config.ConfigFileName, serverURL, alias)
	} else {
		fmt.Fprintf(out, "✓ Added server %s (%s) to ./%s\n", serverURL, alias, config.ConfigFileName)
	}

	fmt.Fprintln(out, "\nNext steps:")
	fmt.Fprintf(out, "  1. Create the first admin at %s/api/setup if this is a new deployment\n", serverURL)
	fmt.Fprintln(out, "  2. Run 'plateadmin login' to authenticate")

	return nil
}
