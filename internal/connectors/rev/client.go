package rev

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/custodia-labs/revsync-cli/internal/core/domain"
	"github.com/custodia-labs/revsync-cli/internal/core/ports/driven"
	"github.com/custodia-labs/revsync-cli/internal/logger"
)

// maxErrorBody bounds how much of an error response body is read for the
// error message.
const maxErrorBody = 4 << 10

// Client is the authenticated, retrying Rev API transport.
//
// The authorization value is derived once at construction and attached to
// every request; it is never logged and never appears in error messages.
// Retries apply only to classifiably transient failures (connection errors,
// timeouts, 5xx, rate limiting) and re-issue the identical request, which is
// safe because every engine request is an idempotent read.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	authHeader  string
	maxAttempts int
	retryDelay  time.Duration
	rateLimiter *RateLimiter
}

// NewClient creates a transport from a validated credential provider.
func NewClient(cfg Config, creds driven.CredentialProvider) (*Client, error) {
	cfg = cfg.withDefaults()

	if creds == nil || !creds.Configured() {
		return nil, domain.ErrNotConfigured
	}
	authHeader, err := creds.AuthHeader()
	if err != nil {
		return nil, err
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		httpClient:  httpClient,
		baseURL:     cfg.BaseURL,
		authHeader:  authHeader,
		maxAttempts: cfg.MaxAttempts,
		retryDelay:  cfg.RetryDelay,
		rateLimiter: NewRateLimiter(),
	}, nil
}

// GetJSON issues a GET request and decodes the JSON response into out.
// A malformed body yields a DecodeError, distinct from network failures,
// so callers can tell "retrying is pointless" apart from "retry exhausted".
func (c *Client) GetJSON(ctx context.Context, path string, params url.Values, out any) error {
	resp, err := c.do(ctx, http.MethodGet, path, params, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return decodeJSON(resp.Body, out)
}

// GetStream issues a GET request and returns the raw response body without
// attempting JSON decoding. The caller must close the stream.
func (c *Client) GetStream(ctx context.Context, path string, params url.Values) (io.ReadCloser, error) {
	resp, err := c.do(ctx, http.MethodGet, path, params, nil)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// PostJSON issues a POST request with a JSON body and decodes the response.
func (c *Client) PostJSON(ctx context.Context, path string, params url.Values, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("rev: encode request body: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, path, params, payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return decodeJSON(resp.Body, out)
}

// TestConnection verifies the credential with a minimal listing request.
func (c *Client) TestConnection(ctx context.Context) error {
	params := url.Values{}
	params.Set("page", "0")
	params.Set("results_per_page", "1")
	if err := c.GetJSON(ctx, "/orders", params, nil); err != nil {
		if IsUnauthorized(err) {
			return fmt.Errorf("credentials rejected by the API: %w", err)
		}
		return err
	}
	return nil
}

// do executes one request with bounded exponential-backoff retries.
// Transient failures (network errors, 5xx, 429) are retried; other 4xx
// responses fail immediately.
func (c *Client) do(ctx context.Context, method, path string, params url.Values, body []byte) (*http.Response, error) {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	delay := c.retryDelay
	var lastErr error

	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if attempt > 0 {
			logger.Debug("Retrying %s %s (attempt %d/%d)", method, path, attempt+1, c.maxAttempts)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, err
		}

		var reqBody io.Reader
		if body != nil {
			reqBody = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
		if err != nil {
			return nil, fmt.Errorf("rev: build request: %w", err)
		}
		req.Header.Set("Authorization", c.authHeader)
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = fmt.Errorf("rev: %s %s failed: %w", method, path, err)
			continue
		}

		c.rateLimiter.UpdateFromResponse(resp)

		if resp.StatusCode < http.StatusMultipleChoices {
			return resp, nil
		}

		apiErr := newAPIError(resp)
		if !apiErr.Transient() {
			return nil, apiErr
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = &RateLimitError{ResetAt: c.rateLimiter.ResetTime()}
		} else {
			lastErr = apiErr
		}
	}

	return nil, lastErr
}

// decodeJSON decodes a JSON body into out, wrapping failures as DecodeError.
// A nil out discards the body after confirming it is well-formed JSON.
func decodeJSON(r io.Reader, out any) error {
	if out == nil {
		var discard json.RawMessage
		out = &discard
	}
	if err := json.NewDecoder(r).Decode(out); err != nil {
		return &DecodeError{Err: err}
	}
	return nil
}

// newAPIError builds an APIError from a non-2xx response and closes the body.
func newAPIError(resp *http.Response) *APIError {
	defer resp.Body.Close()

	message := resp.Status
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err == nil && len(raw) > 0 {
		var payload struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(raw, &payload) == nil && payload.Message != "" {
			message = payload.Message
		}
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    message,
		URL:        resp.Request.URL.String(),
	}
}

// itoa is a convenience for query parameters.
func itoa(n int) string {
	return strconv.Itoa(n)
}
