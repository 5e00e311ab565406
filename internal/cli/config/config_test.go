package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"trailing slash", "https://admin.example.com/", "https://admin.example.com", false},
		{"surrounding space", "  http://localhost:8080 ", "http://localhost:8080", false},
		{"empty", "", "", true},
		{"no scheme", "admin.example.com", "", true},
		{"wrong scheme", "ftp://admin.example.com", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeURL(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)

	cfg := &Config{}
	assert.True(t, cfg.AddServer("production", "https://admin.example.com"))
	assert.False(t, cfg.AddServer("again", "https://admin.example.com"))
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []Server{{Alias: "production", URL: "https://admin.example.com"}}, loaded.Servers)
}

func TestFindConfigFile_SearchesParents(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))
	require.NoError(t, Save(filepath.Join(root, ConfigFileName), &Config{}))

	t.Chdir(nested)

	found, err := FindConfigFile()
	require.NoError(t, err)

	// Resolve symlinked temp dirs (macOS /var -> /private/var)
	want, err := filepath.EvalSymlinks(filepath.Join(root, ConfigFileName))
	require.NoError(t, err)
	got, err := filepath.EvalSymlinks(found)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLookups(t *testing.T) {
	cfg := &Config{Servers: []Server{
		{Alias: "production", URL: "https://admin.example.com"},
		{Alias: "staging", URL: "https://staging.example.com"},
	}}

	server, err := cfg.GetServerByAlias("staging")
	require.NoError(t, err)
	assert.Equal(t, "https://staging.example.com", server.URL)

	server, err = cfg.GetServerByURLOrAlias("https://admin.example.com/")
	require.NoError(t, err)
	assert.Equal(t, "production", server.Alias)

	server, err = cfg.GetServerByURLOrAlias("staging")
	require.NoError(t, err)
	assert.Equal(t, "https://staging.example.com", server.URL)

	_, err = cfg.GetServerByURLOrAlias("qa")
	assert.ErrorIs(t, err, ErrServerNotFound)

	_, err = cfg.GetServerByAlias("https://admin.example.com")
	assert.ErrorIs(t, err, ErrServerNotFound)
}

func TestLoad_Validates(t *testing.T) {
	tests := map[string]string{
		"bad url":         `{"servers":[{"alias":"production","url":"admin.example.com"}]}`,
		"duplicate alias": `{"servers":[{"alias":"a","url":"https://one.example.com"},{"alias":"a","url":"https://two.example.com"}]}`,
		"not json":        `{"servers":`,
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), ConfigFileName)
			require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}
