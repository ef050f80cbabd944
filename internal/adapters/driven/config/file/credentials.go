package file

import (
	"os"
	"strings"

	"github.com/custodia-labs/revsync-cli/internal/core/domain"
	"github.com/custodia-labs/revsync-cli/internal/core/ports/driven"
	"github.com/custodia-labs/revsync-cli/internal/logger"
)

// Ensure Credentials implements the interface.
var _ driven.CredentialProvider = (*Credentials)(nil)

// Environment variables checked for API keys. Environment takes precedence
// over the config file.
const (
	EnvAPIKey       = "REV_API_KEY"
	EnvClientAPIKey = "REV_CLIENT_API_KEY"
	EnvUserAPIKey   = "REV_USER_API_KEY"
)

// Config file keys for API credentials.
const (
	KeyAPIKey       = "api_key"
	KeyClientAPIKey = "client_api_key"
	KeyUserAPIKey   = "user_api_key"
)

// Credentials resolves the API authorization value once, before the engine
// is constructed. The engine only ever sees the opaque header value.
type Credentials struct {
	apiKey    string
	clientKey string
	userKey   string
}

// LoadCredentials resolves credentials with env > config file precedence.
// A nil store is allowed; only the environment is consulted then.
func LoadCredentials(store *ConfigStore) *Credentials {
	c := &Credentials{}

	if c.loadFromEnv() {
		return c
	}
	if store != nil && c.loadFromStore(store) {
		return c
	}

	logger.Warn("No credentials found. Set %s (or %s and %s), or run 'revsync configure'.",
		EnvAPIKey, EnvClientAPIKey, EnvUserAPIKey)
	return c
}

// loadFromEnv reads credentials from the environment.
func (c *Credentials) loadFromEnv() bool {
	if key := os.Getenv(EnvAPIKey); key != "" {
		c.apiKey = key
		logger.Debug("Loaded API key from %s", EnvAPIKey)
		return true
	}

	clientKey := os.Getenv(EnvClientAPIKey)
	userKey := os.Getenv(EnvUserAPIKey)
	if clientKey != "" && userKey != "" {
		c.clientKey = clientKey
		c.userKey = userKey
		logger.Debug("Loaded credentials from environment (two-key format)")
		return true
	}

	return false
}

// loadFromStore reads credentials from the config file.
func (c *Credentials) loadFromStore(store *ConfigStore) bool {
	if key := store.GetString(KeyAPIKey); key != "" {
		c.apiKey = key
		logger.Debug("Loaded API key from config file")
		return true
	}

	clientKey := store.GetString(KeyClientAPIKey)
	userKey := store.GetString(KeyUserAPIKey)
	if clientKey != "" && userKey != "" {
		c.clientKey = clientKey
		c.userKey = userKey
		logger.Debug("Loaded credentials from config file (two-key format)")
		return true
	}

	return false
}

// SaveCredentials persists credentials to the config file. Exactly one of
// the single-key or two-key forms should be populated; the other is cleared
// so stale keys cannot shadow the new ones.
func (s *ConfigStore) SaveCredentials(apiKey, clientKey, userKey string) error {
	for key, value := range map[string]string{
		KeyAPIKey:       apiKey,
		KeyClientAPIKey: clientKey,
		KeyUserAPIKey:   userKey,
	} {
		if err := s.Set(key, value); err != nil {
			return err
		}
	}
	return s.Save()
}

// Configured reports whether a credential is available.
func (c *Credentials) Configured() bool {
	return c.apiKey != "" || (c.clientKey != "" && c.userKey != "")
}

// AuthHeader returns the Authorization header value in the documented
// "Rev <client>:<user>" form. A single key already containing a colon is
// used as-is; a bare single key is used for both positions.
func (c *Credentials) AuthHeader() (string, error) {
	if !c.Configured() {
		return "", domain.ErrNotConfigured
	}

	if c.apiKey != "" {
		if strings.Contains(c.apiKey, ":") {
			return "Rev " + c.apiKey, nil
		}
		return "Rev " + c.apiKey + ":" + c.apiKey, nil
	}

	return "Rev " + c.clientKey + ":" + c.userKey, nil
}
