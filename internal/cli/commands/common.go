package commands

import (
	"fmt"

	"github.com/plateadmin/plateadmin/internal/cli/config"
	"github.com/plateadmin/plateadmin/internal/cli/serverselect"
)

// getSelectedServer loads plateadmin.json and resolves the server to use
func getSelectedServer(serverAlias string) (*config.Server, error) {
	cfg, err := config.LoadFromCurrentDir()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w\nRun 'plateadmin init <url>' to create a configuration file", err)
	}

	server, err := serverselect.ResolveServer(cfg, serverAlias)
	if err != nil {
		return nil, err
	}

	if server.URL == "" {
		return nil, fmt.Errorf("server URL is empty. Please edit %s and add a valid URL", config.ConfigFileName)
	}

	return server, nil
}
