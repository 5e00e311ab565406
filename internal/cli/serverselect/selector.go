// Package serverselect decides which configured server a command talks to.
package serverselect

import (
	"fmt"
	"io"
	"os"

	"github.com/manifoldco/promptui"

	"github.com/plateadmin/plateadmin/internal/cli/config"
	"github.com/plateadmin/plateadmin/internal/cli/userconfig"
)

// Resolver picks a server from the project config, remembering the choice in
// the user config.
type Resolver struct {
	// Prompt asks the user when nothing else decides
	Prompt func(*config.Config) (*config.Server, error)
	// Warnings receives non-fatal problems saving the selection
	Warnings io.Writer
}

// Default prompts with promptui and warns on stderr
var Default = Resolver{Prompt: PromptServerSelection, Warnings: os.Stderr}

// ResolveServer resolves with the Default resolver
func ResolveServer(projectConfig *config.Config, serverAlias string) (*config.Server, error) {
	return Default.Resolve(projectConfig, serverAlias)
}

// Resolve tries, in order, the --server alias, the server chosen with
// select-server (if still configured), the only configured server, and
// finally the prompt.
func (r Resolver) Resolve(projectConfig *config.Config, serverAlias string) (*config.Server, error) {
	if serverAlias != "" {
		return projectConfig.GetServerByAlias(serverAlias)
	}

	selectedURL, err := userconfig.GetSelectedServer()
	if err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	}

	if selectedURL != "" {
		if server, err := projectConfig.GetServerByURLOrAlias(selectedURL); err == nil {
			return server, nil
		}
		// Selected server was removed from the project config
		_ = userconfig.SetSelectedServer("")
	}

	var server *config.Server
	switch {
	case len(projectConfig.Servers) == 0:
		return nil, fmt.Errorf("no servers configured in %s", config.ConfigFileName)
	case len(projectConfig.Servers) == 1:
		server = &projectConfig.Servers[0]
	default:
		if server, err = r.Prompt(projectConfig); err != nil {
			return nil, err
		}
	}

	if err := userconfig.SetSelectedServer(server.URL); err != nil && r.Warnings != nil {
		fmt.Fprintf(r.Warnings, "Warning: failed to save selected server: %v\n", err)
	}
	return server, nil
}

// PromptServerSelection shows an interactive server picker
func PromptServerSelection(projectConfig *config.Config) (*config.Server, error) {
	if len(projectConfig.Servers) == 0 {
		return nil, fmt.Errorf("no servers configured in %s", config.ConfigFileName)
	}

	labels := make([]string, len(projectConfig.Servers))
	for i, server := range projectConfig.Servers {
		labels[i] = fmt.Sprintf("%s (%s)", server.Alias, server.URL)
	}

	prompt := promptui.Select{
		Label: "Select a PlateAdmin server",
		Items: labels,
		Templates: &promptui.SelectTemplates{
			Active:   "> {{ . | cyan }}",
			Inactive: "  {{ . }}",
			Selected: "Server: {{ . | green }}",
		},
		Size: 10,
	}

	index, _, err := prompt.Run()
	if err != nil {
		return nil, fmt.Errorf("server selection cancelled: %w", err)
	}

	return &projectConfig.Servers[index], nil
}
