package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// Order represents one remote job. The listing endpoint returns summaries
// without attachments; OrderDetail upgrades a summary to a full record.
// Both hydration levels share this type.
type Order struct {
	// OrderNumber is the stable external identifier (primary key).
	OrderNumber string

	// Status is the raw status string from the API.
	// Only completed orders are eligible for sync.
	Status string

	// PlacedOn is when the order was placed. Nil when the API omitted the
	// field or it could not be parsed.
	PlacedOn *time.Time

	// Attachments is populated only after detail hydration.
	Attachments []Attachment

	// Raw is the verbatim API response this order was built from.
	// For hydrated orders it is written as-is to metadata.json.
	Raw json.RawMessage
}

// completedStatuses are the status values treated as terminal.
// Matching is case-insensitive.
var completedStatuses = map[string]bool{
	"complete":  true,
	"completed": true,
	"done":      true,
	"finished":  true,
}

// Completed reports whether the order has reached a terminal state and is
// eligible for sync. Unrecognised status values return false, never an error.
func (o *Order) Completed() bool {
	return completedStatuses[strings.ToLower(o.Status)]
}

// PlacedOnOrAfter reports whether the order passes a --since cut-off.
// An order with no parseable PlacedOn is excluded when a cut-off is set.
func (o *Order) PlacedOnOrAfter(since time.Time) bool {
	if o.PlacedOn == nil {
		return false
	}
	return !o.PlacedOn.Before(since)
}

// OrderPage is one page of the listing endpoint.
type OrderPage struct {
	// TotalCount is the server-reported total. Used for progress reporting
	// only; pagination termination never trusts it.
	TotalCount int

	// Page is the zero-based page number this result covers.
	Page int

	// ResultsPerPage is the page size the server applied.
	ResultsPerPage int

	// Orders are the summaries on this page.
	Orders []Order
}

// Attachment is one downloadable unit inside an order.
type Attachment struct {
	// ID is globally unique and stable; it is the idempotency key.
	ID string

	// Name is the original filename. Untrusted: may contain
	// path-hostile characters.
	Name string

	// Type is the raw type string from the API, the authoritative
	// classification input.
	Type string

	// DownloadURI is informational only and never the sole retrieval path.
	DownloadURI string
}
