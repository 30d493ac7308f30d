package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lectern/internal/logger"
)

func TestNewRootCommand_Subcommands(t *testing.T) {
	root := NewRootCommand(&Services{})

	names := make([]string, 0, len(root.Commands()))
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"ingest", "ask", "retrieve", "index", "settings", "mcp", "chat", "version"} {
		assert.Contains(t, names, want)
	}
}

func TestNewRootCommand_NilServices(t *testing.T) {
	out, err := execute(t, nil, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "lectern version dev")
}

func TestNewRootCommand_VerboseFlag(t *testing.T) {
	t.Cleanup(func() { logger.SetVerbose(false) })

	_, err := execute(t, &Services{}, "", "--verbose", "version")
	require.NoError(t, err)
	assert.True(t, logger.IsVerbose())
}

func TestNewRootCommand_IndexAlwaysOnDisk(t *testing.T) {
	root := NewRootCommand(&Services{})
	assert.Nil(t, root.PersistentFlags().Lookup("ephemeral"))

	_, err := execute(t, &Services{}, "", "--ephemeral", "version")
	assert.ErrorContains(t, err, "unknown flag: --ephemeral")
}

func TestCommands_NotConfigured(t *testing.T) {
	tests := [][]string{
		{"ask", "q"},
		{"retrieve", "q"},
		{"ingest", "pdf", "a.pdf"},
		{"ingest", "video", "v.mp4", "v.txt"},
		{"ingest", "text", "note"},
		{"index", "status"},
		{"index", "reset", "--yes"},
		{"settings", "show"},
	}
	for _, args := range tests {
		t.Run(args[0]+" "+args[1], func(t *testing.T) {
			_, err := execute(t, &Services{}, "", args...)
			assert.ErrorIs(t, err, ErrNotConfigured)
		})
	}
}
