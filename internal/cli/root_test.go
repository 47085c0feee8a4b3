package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_RegistersSubcommands(t *testing.T) {
	cmd := NewRootCommand()

	expected := []string{"validate", "verify", "handshake", "fairness", "bandwidth", "history"}
	for _, name := range expected {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err, "subcommand %s not found", name)
		assert.Equal(t, name, sub.Name())
	}
}

func TestRootCommand_RejectsInvalidFormat(t *testing.T) {
	_, err := runCommand(t, "--format", "xml", "history", "--db", "unused.db")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid format "xml"`)
}

func TestRootCommand_AcceptsValidFormats(t *testing.T) {
	for _, format := range ValidFormats {
		dir := t.TempDir()
		_, err := runCommand(t, "--format", format, "validate", dir)
		assert.NoError(t, err, "format %s rejected", format)
	}
}
