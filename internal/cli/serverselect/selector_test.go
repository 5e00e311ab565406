package serverselect

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plateadmin/plateadmin/internal/cli/config"
	"github.com/plateadmin/plateadmin/internal/cli/userconfig"
)

var twoServers = &config.Config{Servers: []config.Server{
	{Alias: "production", URL: "https://admin.example.com"},
	{Alias: "staging", URL: "https://staging.example.com"},
}}

func TestResolveServer_Alias(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", "")

	server, err := ResolveServer(twoServers, "staging")
	require.NoError(t, err)
	assert.Equal(t, "https://staging.example.com", server.URL)

	_, err = ResolveServer(twoServers, "qa")
	assert.Error(t, err)
}

func TestResolveServer_Selected(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", "")
	require.NoError(t, userconfig.SetSelectedServer("https://staging.example.com"))

	server, err := ResolveServer(twoServers, "")
	require.NoError(t, err)
	assert.Equal(t, "staging", server.Alias)
}

func TestResolveServer_SingleServerIsRemembered(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", "")
	// A stale selection is cleared
	require.NoError(t, userconfig.SetSelectedServer("https://gone.example.com"))

	single := &config.Config{Servers: []config.Server{{Alias: "production", URL: "https://admin.example.com"}}}
	server, err := ResolveServer(single, "")
	require.NoError(t, err)
	assert.Equal(t, "production", server.Alias)

	selected, err := userconfig.GetSelectedServer()
	require.NoError(t, err)
	assert.Equal(t, "https://admin.example.com", selected)
}

func TestPromptServerSelection_NoServers(t *testing.T) {
	_, err := PromptServerSelection(&config.Config{})
	assert.Error(t, err)
}

func TestResolve_PromptsWhenAmbiguous(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", "")

	prompts := 0
	r := Resolver{Prompt: func(cfg *config.Config) (*config.Server, error) {
		prompts++
		return &cfg.Servers[1], nil
	}}

	server, err := r.Resolve(twoServers, "")
	require.NoError(t, err)
	assert.Equal(t, "staging", server.Alias)

	// The answer is remembered
	server, err = r.Resolve(twoServers, "")
	require.NoError(t, err)
	assert.Equal(t, "staging", server.Alias)
	assert.Equal(t, 1, prompts)
}

func TestResolve_PromptCancelled(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", "")

	cancelled := errors.New("cancelled")
	r := Resolver{Prompt: func(*config.Config) (*config.Server, error) { return nil, cancelled }}

	_, err := r.Resolve(twoServers, "")
	assert.ErrorIs(t, err, cancelled)

	_, err = r.Resolve(&config.Config{}, "")
	assert.Error(t, err)
}
