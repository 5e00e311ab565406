package userconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", "")
	return home
}

func TestSelectedServer(t *testing.T) {
	home := isolate(t)

	selected, err := GetSelectedServer()
	require.NoError(t, err)
	assert.Empty(t, selected)

	require.NoError(t, SetSelectedServer("https://admin.example.com"))

	selected, err = GetSelectedServer()
	require.NoError(t, err)
	assert.Equal(t, "https://admin.example.com", selected)

	info, err := os.Stat(filepath.Join(home, ".config", "plateadmin", "config.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestConfigPath_XDG(t *testing.T) {
	isolate(t)
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	path, err := GetConfigPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(xdg, "plateadmin", "config.json"), path)
}

func TestLastEmail(t *testing.T) {
	isolate(t)

	assert.Empty(t, LastEmail("https://admin.example.com"))

	require.NoError(t, SetSelectedServer("https://admin.example.com"))
	require.NoError(t, RememberEmail("https://admin.example.com", "priya.s@example.com"))
	require.NoError(t, RememberEmail("https://staging.example.com", "ops@example.com"))

	assert.Equal(t, "priya.s@example.com", LastEmail("https://admin.example.com"))
	assert.Equal(t, "ops@example.com", LastEmail("https://staging.example.com"))

	// Remembering an email keeps the selection
	selected, err := GetSelectedServer()
	require.NoError(t, err)
	assert.Equal(t, "https://admin.example.com", selected)
}

func TestLoad_Corrupt(t *testing.T) {
	isolate(t)

	path, err := GetConfigPath()
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err = Load()
	assert.Error(t, err)
	assert.Empty(t, LastEmail("https://admin.example.com"))
}
