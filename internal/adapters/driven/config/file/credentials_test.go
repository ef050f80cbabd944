package file

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/revsync-cli/internal/core/domain"
)

func newTestConfigStore(t *testing.T) *ConfigStore {
	t.Helper()
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func clearCredentialEnv(t *testing.T) {
	t.Helper()
	t.Setenv(EnvAPIKey, "")
	t.Setenv(EnvClientAPIKey, "")
	t.Setenv(EnvUserAPIKey, "")
}

func TestLoadCredentials_FromEnvironment(t *testing.T) {
	t.Run("single key", func(t *testing.T) {
		clearCredentialEnv(t)
		t.Setenv(EnvAPIKey, "env-key")

		creds := LoadCredentials(nil)

		assert.True(t, creds.Configured())
	})

	t.Run("two-key pair", func(t *testing.T) {
		clearCredentialEnv(t)
		t.Setenv(EnvClientAPIKey, "client-key")
		t.Setenv(EnvUserAPIKey, "user-key")

		creds := LoadCredentials(nil)

		assert.True(t, creds.Configured())
	})

	t.Run("client key alone is not enough", func(t *testing.T) {
		clearCredentialEnv(t)
		t.Setenv(EnvClientAPIKey, "client-key")

		creds := LoadCredentials(nil)

		assert.False(t, creds.Configured())
	})
}

func TestLoadCredentials_FromConfigFile(t *testing.T) {
	clearCredentialEnv(t)
	store := newTestConfigStore(t)
	require.NoError(t, store.SaveCredentials("file-key", "", ""))

	creds := LoadCredentials(store)

	assert.True(t, creds.Configured())

	header, err := creds.AuthHeader()
	require.NoError(t, err)
	assert.Equal(t, "Rev file-key:file-key", header)
}

func TestLoadCredentials_EnvironmentTakesPrecedence(t *testing.T) {
	clearCredentialEnv(t)
	store := newTestConfigStore(t)
	require.NoError(t, store.SaveCredentials("file-key", "", ""))
	t.Setenv(EnvAPIKey, "env-key")

	creds := LoadCredentials(store)

	header, err := creds.AuthHeader()
	require.NoError(t, err)
	assert.Equal(t, "Rev env-key:env-key", header)
}

func TestLoadCredentials_NothingConfigured(t *testing.T) {
	clearCredentialEnv(t)

	creds := LoadCredentials(newTestConfigStore(t))

	assert.False(t, creds.Configured())

	_, err := creds.AuthHeader()
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
}

func TestCredentials_AuthHeader(t *testing.T) {
	tests := []struct {
		name     string
		creds    Credentials
		expected string
	}{
		{"two-key pair", Credentials{clientKey: "ck", userKey: "uk"}, "Rev ck:uk"},
		{"bare single key doubles", Credentials{apiKey: "k"}, "Rev k:k"},
		{"combined key used as-is", Credentials{apiKey: "ck:uk"}, "Rev ck:uk"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header, err := tt.creds.AuthHeader()

			require.NoError(t, err)
			assert.Equal(t, tt.expected, header)
		})
	}
}

func TestConfigStore_SaveCredentials(t *testing.T) {
	t.Run("persists across reload", func(t *testing.T) {
		clearCredentialEnv(t)
		dir := t.TempDir()
		store, err := NewConfigStore(dir)
		require.NoError(t, err)

		require.NoError(t, store.SaveCredentials("", "ck", "uk"))

		reloaded, err := NewConfigStore(dir)
		require.NoError(t, err)
		creds := LoadCredentials(reloaded)

		header, err := creds.AuthHeader()
		require.NoError(t, err)
		assert.Equal(t, "Rev ck:uk", header)
	})

	t.Run("new single key clears a stale pair", func(t *testing.T) {
		clearCredentialEnv(t)
		store := newTestConfigStore(t)
		require.NoError(t, store.SaveCredentials("", "old-ck", "old-uk"))

		require.NoError(t, store.SaveCredentials("new-key", "", ""))

		creds := LoadCredentials(store)
		header, err := creds.AuthHeader()
		require.NoError(t, err)
		assert.Equal(t, "Rev new-key:new-key", header)
	})
}
