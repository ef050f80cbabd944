package driven

import "context"

// DownloadIndex is the durable idempotency ledger: the set of attachment ids
// known to be fully written to disk. It is the single source of truth for
// skip decisions; file existence is never used as a skip signal because an
// interrupted run can leave a truncated file behind.
type DownloadIndex interface {
	// IsDownloaded reports whether the attachment id is marked. Reads may
	// race with concurrent marks; a stale false means redundant work, never
	// corruption.
	IsDownloaded(id string) bool

	// MarkDownloaded durably records the id. Called only after the content
	// write is confirmed complete, never speculatively.
	MarkDownloaded(ctx context.Context, id string) error

	// Len returns the number of marked ids.
	Len() int

	// Close releases the underlying store.
	Close() error
}
