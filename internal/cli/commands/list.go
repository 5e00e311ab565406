package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/plateadmin/plateadmin/internal/cli/auth"
	"github.com/plateadmin/plateadmin/internal/cli/client"
	"github.com/plateadmin/plateadmin/internal/cli/config"
	"github.com/plateadmin/plateadmin/internal/table"
	"github.com/plateadmin/plateadmin/internal/views"
)

// listers fetch one resource and lay it out with the dashboard's columns
var listers = map[string]func(c *client.Client, search string) (table.View, error){
	"products": func(c *client.Client, search string) (table.View, error) {
		rows, err := c.ListProducts(search)
		return table.Build("Products", views.Products, rows), err
	},
	"orders": func(c *client.Client, search string) (table.View, error) {
		rows, err := c.ListOrders(search)
		return table.Build("Orders", views.Orders, rows), err
	},
	"customers": func(c *client.Client, search string) (table.View, error) {
		rows, err := c.ListCustomers(search)
		return table.Build("Customers", views.Customers, rows), err
	},
	"categories": func(c *client.Client, search string) (table.View, error) {
		rows, err := c.ListCategories(search)
		return table.Build("Categories", views.Categories, rows), err
	},
}

// NewListCmd creates the ls command
func NewListCmd() *cobra.Command {
	var serverAlias, search string

	cmd := &cobra.Command{
		Use:       "ls <products|orders|customers|categories>",
		Aliases:   []string{"list"},
		Short:     "List dashboard records",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"products", "orders", "customers", "categories"},
		RunE: func(cmd *cobra.Command, args []string) error {
			server, err := getSelectedServer(serverAlias)
			if err != nil {
				return err
			}
			return runList(cmd.OutOrStdout(), auth.Default, server, args[0], search)
		},
	}

	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias (uses the selected server if not specified)")
	cmd.Flags().StringVar(&search, "search", "", "Only show rows containing this text")

	return cmd
}

func runList(out io.Writer, store auth.TokenStore, server *config.Server, resource, search string) error {
	list, ok := listers[strings.ToLower(resource)]
	if !ok {
		return fmt.Errorf("unknown resource %q (want products, orders, customers or categories)", resource)
	}

	token, err := loadSession(store, server)
	if err != nil {
		return err
	}

	view, err := list(client.New(server.URL, token), search)
	if err != nil {
		if client.IsUnauthorized(err) {
			return auth.ErrNotLoggedIn
		}
		return err
	}

	fmt.Fprintf(out, "%s on %s (%s):\n\n", view.Title, server.Alias, server.URL)
	return table.Write(out, view)
}
