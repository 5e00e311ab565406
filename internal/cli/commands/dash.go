package commands

import (
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/plateadmin/plateadmin/internal/access"
	"github.com/plateadmin/plateadmin/internal/cli/config"
)

// openURL is swapped out in tests
var openURL = openBrowser

// NewDashCmd creates the dash command
func NewDashCmd() *cobra.Command {
	var serverAlias string

	cmd := &cobra.Command{
		Use:   "dash [page]",
		Short: "Open a dashboard page in the browser",
		Long: `Open a dashboard page in the browser.

Pages are the sidebar entries: dashboard, orders, category, products, customers.
Without a page the dashboard overview is opened.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			server, err := getSelectedServer(serverAlias)
			if err != nil {
				return err
			}
			page := ""
			if len(args) == 1 {
				page = args[0]
			}
			return runDash(cmd.OutOrStdout(), server, page)
		},
	}

	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias (uses the selected server if not specified)")

	return cmd
}

// pagePath maps a sidebar page name to its route path
func pagePath(page string) (string, error) {
	if page == "" {
		return "/dashboard", nil
	}

	path := "/" + strings.Trim(strings.ToLower(page), "/")
	if route, ok := access.Lookup(path); ok && route.InNav {
		return route.Path, nil
	}

	var names []string
	for _, route := range access.Routes() {
		if route.InNav {
			names = append(names, strings.TrimPrefix(route.Path, "/"))
		}
	}
	return "", fmt.Errorf("unknown page %q (want one of %s)", page, strings.Join(names, ", "))
}

func runDash(out io.Writer, server *config.Server, page string) error {
	path, err := pagePath(page)
	if err != nil {
		return err
	}

	pageURL := server.URL + path
	fmt.Fprintf(out, "Opening %s on %s\nURL: %s\n", path, server.Alias, pageURL)

	if err := openURL(pageURL); err != nil {
		return fmt.Errorf("failed to open browser: %w\nPlease visit: %s", err, pageURL)
	}
	return nil
}

// openBrowser opens the URL in the default browser
func openBrowser(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}
