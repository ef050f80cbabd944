package rev

import (
	"net/http"
	"time"
)

const (
	// DefaultBaseURL is the production API root.
	DefaultBaseURL = "https://www.rev.com/api/v1"

	// DefaultTimeout is the per-request HTTP timeout. Timeouts apply per
	// network request, never as a global sync-duration budget.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxAttempts is the bounded attempt count for transient
	// failures (the first try plus retries).
	DefaultMaxAttempts = 3

	// DefaultRetryDelay is the initial backoff delay; it doubles per retry.
	DefaultRetryDelay = time.Second

	// DefaultPageSize is the listing page size.
	DefaultPageSize = 50
)

// Config holds connector settings. The zero value is usable; empty fields
// fall back to the defaults above.
type Config struct {
	// BaseURL is the API root, without a trailing slash.
	BaseURL string

	// Timeout is the per-request timeout.
	Timeout time.Duration

	// MaxAttempts bounds transient-failure retries.
	MaxAttempts int

	// RetryDelay is the initial exponential backoff delay.
	RetryDelay time.Duration

	// HTTPClient overrides the HTTP client, mainly for tests.
	// Config.Timeout is ignored when set.
	HTTPClient *http.Client
}

// withDefaults fills empty fields.
func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.RetryDelay == 0 {
		c.RetryDelay = DefaultRetryDelay
	}
	return c
}
