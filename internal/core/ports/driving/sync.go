package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/revsync-cli/internal/core/domain"
)

// SyncRunner coordinates order synchronisation from the remote account.
type SyncRunner interface {
	// Sync mirrors all completed orders into the export tree. Failures are
	// scoped to the smallest unit: a failed attachment does not abort its
	// order, a failed order does not abort the run. The returned report is
	// non-nil even when err is non-nil, except for enumeration failures
	// that prevent any progress.
	Sync(ctx context.Context, opts SyncOptions) (*SyncReport, error)

	// Plan executes the identical decision path as Sync but performs no
	// writes and no content fetches. Used by dry-run mode.
	Plan(ctx context.Context, opts SyncOptions) ([]PlannedAction, error)
}

// SyncOptions configures one sync run.
type SyncOptions struct {
	// PageSize is the listing page size. Zero means the default.
	PageSize int

	// Since excludes orders placed before the cut-off. Filtering is
	// client-side and never short-circuits pagination.
	Since *time.Time

	// IncludeMedia downloads media attachments when true.
	IncludeMedia bool

	// IncludeTranscripts downloads transcript and caption attachments
	// when true.
	IncludeTranscripts bool

	// Concurrency bounds concurrent attachment downloads within one order.
	// Values below 2 mean strictly sequential processing. Orders are never
	// processed concurrently with each other.
	Concurrency int

	// Events receives progress notifications. Nil disables them.
	Events EventSink
}

// EventKind identifies a sync event.
type EventKind string

// Sync event kinds.
const (
	EventOrderStarted       EventKind = "order_started"
	EventOrderFailed        EventKind = "order_failed"
	EventAttachmentSkipped  EventKind = "attachment_skipped"
	EventAttachmentExcluded EventKind = "attachment_excluded"
	EventAttachmentSaved    EventKind = "attachment_saved"
	EventAttachmentFailed   EventKind = "attachment_failed"
	EventSyncFinished       EventKind = "sync_finished"
)

// SyncEvent is one discrete progress notification.
type SyncEvent struct {
	Kind        EventKind
	OrderNumber string
	Attachment  *domain.Attachment
	Category    domain.Category
	Path        string
	Err         error
}

// EventSink receives sync events. Events for one order arrive in completion
// order, which under concurrency is not download start order.
type EventSink func(SyncEvent)

// Failure records one failed unit with enough context to be reported and
// retried on the next invocation.
type Failure struct {
	OrderNumber  string
	AttachmentID string
	Err          error
}

// SyncReport summarises one run.
type SyncReport struct {
	// RunID uniquely identifies the run.
	RunID string

	// OrdersScanned counts completed orders whose detail was hydrated.
	OrdersScanned int

	// Downloaded counts attachments newly written and marked this run.
	Downloaded int

	// Skipped counts attachments already present in the index.
	Skipped int

	// Excluded counts attachments filtered out by include options.
	Excluded int

	// Failures lists every failed order or attachment.
	Failures []Failure

	// Elapsed is the wall-clock run duration.
	Elapsed time.Duration
}

// Attempted returns the number of attachments the run tried to download.
func (r *SyncReport) Attempted() int {
	return r.Downloaded + len(r.AttachmentFailures())
}

// AttachmentFailures returns only the failures tied to a specific attachment.
func (r *SyncReport) AttachmentFailures() []Failure {
	var out []Failure
	for _, f := range r.Failures {
		if f.AttachmentID != "" {
			out = append(out, f)
		}
	}
	return out
}

// ActionType describes what a planned action would do.
type ActionType string

// Planned action types.
const (
	ActionDownload ActionType = "download"
	ActionSkip     ActionType = "skip"
	ActionExclude  ActionType = "exclude"
)

// PlannedAction is one intended unit of work from a dry run.
type PlannedAction struct {
	Type        ActionType
	OrderNumber string
	Attachment  domain.Attachment
	Category    domain.Category
	Format      domain.Format
}
