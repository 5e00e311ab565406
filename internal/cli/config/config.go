package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// ConfigFileName is the project config looked up from the working directory upwards
const ConfigFileName = "plateadmin.json"

// ErrServerNotFound is returned by the server lookups
var ErrServerNotFound = errors.New("server not found in " + ConfigFileName)

// Server is a PlateAdmin deployment the CLI can talk to
type Server struct {
	Alias string `json:"alias"`
	URL   string `json:"url"`
}

// Config represents the project configuration file
type Config struct {
	Servers []Server `json:"servers"`
}

// NormalizeURL trims a server URL and checks that it is absolute http(s)
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimRight(strings.TrimSpace(raw), "/")
	if raw == "" {
		return "", fmt.Errorf("server URL is empty")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid server URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("server URL %q must start with http:// or https://", raw)
	}
	if u.Host == "" {
		return "", fmt.Errorf("server URL %q has no host", raw)
	}

	return raw, nil
}

// FindConfigFile searches for plateadmin.json in the current directory and its parents
func FindConfigFile() (string, error) {
	currentDir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}

	dir := currentDir
	for {
		configPath := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("%s not found in %s or any parent directory", ConfigFileName, currentDir)
}

// Load reads the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", path, err)
	}

	return &cfg, nil
}

// LoadFromCurrentDir loads config from the current directory or its parents
func LoadFromCurrentDir() (*Config, error) {
	configPath, err := FindConfigFile()
	if err != nil {
		return nil, err
	}

	return Load(configPath)
}

// Save writes the configuration to a file
func Save(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// AddServer appends a server unless one with the same URL exists. It reports
// whether the server was added.
func (c *Config) AddServer(alias, serverURL string) bool {
	if _, err := c.find(func(s Server) bool { return s.URL == serverURL }); err == nil {
		return false
	}
	c.Servers = append(c.Servers, Server{Alias: alias, URL: serverURL})
	return true
}

// Validate checks every server has a usable URL and that aliases are unique
func (c *Config) Validate() error {
	aliases := make(map[string]bool, len(c.Servers))
	for i, server := range c.Servers {
		if _, err := NormalizeURL(server.URL); err != nil {
			return fmt.Errorf("servers[%d]: %w", i, err)
		}
		if server.Alias == "" {
			continue
		}
		if aliases[server.Alias] {
			return fmt.Errorf("servers[%d]: duplicate alias %q", i, server.Alias)
		}
		aliases[server.Alias] = true
	}
	return nil
}

func (c *Config) find(match func(Server) bool) (*Server, error) {
	for i := range c.Servers {
		if match(c.Servers[i]) {
			return &c.Servers[i], nil
		}
	}
	return nil, ErrServerNotFound
}

// GetServerByAlias returns a server by its alias
func (c *Config) GetServerByAlias(alias string) (*Server, error) {
	server, err := c.find(func(s Server) bool { return s.Alias == alias })
	if err != nil {
		return nil, fmt.Errorf("alias %q: %w", alias, err)
	}
	return server, nil
}

// GetServerByURLOrAlias finds a server by URL first, then by alias
func (c *Config) GetServerByURLOrAlias(urlOrAlias string) (*Server, error) {
	trimmed := strings.TrimRight(urlOrAlias, "/")
	if server, err := c.find(func(s Server) bool { return s.URL == trimmed }); err == nil {
		return server, nil
	}
	server, err := c.find(func(s Server) bool { return s.Alias == urlOrAlias })
	if err != nil {
		return nil, fmt.Errorf("URL or alias %q: %w", urlOrAlias, err)
	}
	return server, nil
}
