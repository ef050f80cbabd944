package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCmd(t *testing.T) {
	output, err := executeCommand("version")

	require.NoError(t, err)
	assert.Contains(t, output, "revsync version "+version)
}
