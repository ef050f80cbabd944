package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockConnectionTester implements driving.ConnectionTester for testing.
type mockConnectionTester struct {
	err   error
	calls int
}

func (m *mockConnectionTester) TestConnection(_ context.Context) error {
	m.calls++
	return m.err
}

func TestTestConnectionCmd_NotConfigured(t *testing.T) {
	oldTester := connectionTester
	connectionTester = nil
	defer func() {
		connectionTester = oldTester
	}()

	_, err := executeCommand("test-connection")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "revsync configure")
}

func TestTestConnectionCmd_Success(t *testing.T) {
	oldTester := connectionTester
	tester := &mockConnectionTester{}
	connectionTester = tester
	defer func() {
		connectionTester = oldTester
	}()

	output, err := executeCommand("test-connection")

	require.NoError(t, err)
	assert.Equal(t, 1, tester.calls)
	assert.Contains(t, output, "OK")
}

func TestTestConnectionCmd_Failure(t *testing.T) {
	oldTester := connectionTester
	connectionTester = &mockConnectionTester{err: assert.AnError}
	defer func() {
		connectionTester = oldTester
	}()

	output, err := executeCommand("test-connection")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection test failed")
	assert.Contains(t, output, "FAILED")
}
