package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCmd_Short(t *testing.T) {
	assert.Equal(t, "Print the version number", newVersionCommand(&Services{}).Short)
}

func TestVersionCmd_Executes(t *testing.T) {
	out, err := execute(t, &Services{Version: "test-version-1.0.0"}, "", "version")

	require.NoError(t, err)
	assert.Contains(t, out, "lectern version test-version-1.0.0")
}

func TestVersionCmd_DisplaysDevByDefault(t *testing.T) {
	out, err := execute(t, &Services{}, "", "version")

	require.NoError(t, err)
	assert.Contains(t, out, "lectern version dev")
}
