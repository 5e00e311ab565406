package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommands(t *testing.T) {
	root := NewRootCmd()

	for _, name := range []string{"init", "select-server", "login", "logout", "whoami", "ls", "dash", "version"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}

	cmd, _, err := root.Find([]string{"list"})
	require.NoError(t, err)
	assert.Equal(t, "ls", cmd.Name())
}

func TestVersion(t *testing.T) {
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	require.NoError(t, run(root, &bytes.Buffer{}))
	assert.Equal(t, "plateadmin version dev\n", out.String())
}

func TestRun_ReportsErrors(t *testing.T) {
	root := NewRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"ls", "products", "extra"})

	var stderr bytes.Buffer
	require.Error(t, run(root, &stderr))
	assert.Contains(t, stderr.String(), "Error:")
}
