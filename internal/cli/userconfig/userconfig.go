// Package userconfig keeps per-user CLI state that does not belong in a
// project's plateadmin.json: the selected server and the last login email
// per server.
package userconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const (
	configDirName  = "plateadmin"
	configFileName = "config.json"
)

// UserConfig is the per-user state file
type UserConfig struct {
	SelectedServerURL string            `json:"selected_server_url,omitempty"`
	LastEmails        map[string]string `json:"last_emails,omitempty"` // server URL => email
}

// GetConfigPath returns $XDG_CONFIG_HOME/plateadmin/config.json, falling back
// to ~/.config when XDG_CONFIG_HOME is unset.
func GetConfigPath() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		base = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(base, configDirName, configFileName), nil
}

// Load reads the user config. A missing file is an empty config.
func Load() (*UserConfig, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	cfg := &UserConfig{}
	data, err := os.ReadFile(configPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return cfg, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read user config file: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse user config file %s: %w", configPath, err)
	}
	return cfg, nil
}

// Save writes the user config with owner-only permissions
func Save(cfg *UserConfig) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal user config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write user config file: %w", err)
	}
	return nil
}

// update loads the config, applies fn and saves the result
func update(fn func(cfg *UserConfig)) error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	fn(cfg)
	return Save(cfg)
}

// SetSelectedServer records the server URL commands default to. An empty URL
// clears the selection.
func SetSelectedServer(serverURL string) error {
	return update(func(cfg *UserConfig) { cfg.SelectedServerURL = serverURL })
}

// GetSelectedServer returns the selected server URL, or "" if none
func GetSelectedServer() (string, error) {
	cfg, err := Load()
	if err != nil {
		return "", err
	}
	return cfg.SelectedServerURL, nil
}

// RememberEmail stores the email last used to log in to serverURL
func RememberEmail(serverURL, email string) error {
	return update(func(cfg *UserConfig) {
		if cfg.LastEmails == nil {
			cfg.LastEmails = make(map[string]string)
		}
		cfg.LastEmails[serverURL] = email
	})
}

// LastEmail returns the email last used for serverURL, or ""
func LastEmail(serverURL string) string {
	cfg, err := Load()
	if err != nil {
		return ""
	}
	return cfg.LastEmails[serverURL]
}
