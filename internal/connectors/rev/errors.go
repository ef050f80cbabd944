package rev

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// APIError represents a non-2xx API response.
type APIError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("rev: API error %d: %s (URL: %s)", e.StatusCode, e.Message, e.URL)
}

// Transient reports whether the status is worth retrying: server errors and
// the explicit rate-limit status. Other 4xx responses fail immediately.
func (e *APIError) Transient() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// RateLimitError represents an exhausted rate limit with a known reset time.
type RateLimitError struct {
	ResetAt time.Time
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rev: rate limit exceeded, resets at %s", e.ResetAt.Format(time.RFC3339))
}

// DecodeError represents a malformed response body. Distinguished from
// network failures so callers never retry it: retrying cannot change a
// malformed payload.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("rev: invalid JSON response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsNotFound checks if the error indicates a missing resource.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// IsRateLimited checks if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	var rateLimitErr *RateLimitError
	return errors.As(err, &rateLimitErr)
}

// IsUnauthorized checks if the error indicates an authentication failure.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// IsDecode checks if the error is a malformed-response failure.
func IsDecode(err error) bool {
	var decodeErr *DecodeError
	return errors.As(err, &decodeErr)
}

// isPermanentAPIError reports whether the error is a non-transient API
// response, the class a format-suffixed content request falls back on.
func isPermanentAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && !apiErr.Transient()
}
