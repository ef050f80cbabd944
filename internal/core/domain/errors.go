package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotConfigured indicates API credentials are missing.
	// The engine requires a validated credential before it is constructed.
	ErrNotConfigured = errors.New("API credentials not configured")

	// ErrUnsupportedFormat indicates the content endpoint rejected a
	// format-specific request. The fetcher falls back once to the bare
	// endpoint; this surfaces only when the fallback also failed.
	ErrUnsupportedFormat = errors.New("unsupported content format")

	// ErrAllAttachmentsFailed indicates every attempted attachment in a run
	// failed. Individual failures never abort a sync; only a total failure
	// changes the process exit signal.
	ErrAllAttachmentsFailed = errors.New("all attempted attachments failed")
)
