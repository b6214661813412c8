package commands

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runInit(t *testing.T, args ...string) error {
	t.Helper()
	cmd := NewInitCommand()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs(args)
	return cmd.Execute()
}

func TestInitCommand(t *testing.T) {
	t.Chdir(t.TempDir())

	require.NoError(t, runInit(t))

	content, err := os.ReadFile(configFileName)
	require.NoError(t, err)
	assert.Contains(t, string(content), "engine: duckdb")
	assert.Contains(t, string(content), "rows: 1000000")

	// A second init must refuse to clobber the file.
	require.Error(t, runInit(t))

	// Unless forced.
	require.NoError(t, runInit(t, "--force"))
}
