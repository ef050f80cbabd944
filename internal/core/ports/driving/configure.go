package driving

import "context"

// ConnectionTester verifies that the remote account is reachable with the
// configured credentials.
type ConnectionTester interface {
	// TestConnection performs a minimal authenticated request.
	TestConnection(ctx context.Context) error
}

// CredentialWriter persists API credentials for later runs.
type CredentialWriter interface {
	// SaveCredentials stores either a single API key or a client/user key
	// pair, clearing whichever form is not provided.
	SaveCredentials(apiKey, clientKey, userKey string) error

	// Path returns the location credentials are written to, for display.
	Path() string
}
