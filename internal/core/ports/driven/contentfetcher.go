package driven

import (
	"context"
	"io"

	"github.com/custodia-labs/revsync-cli/internal/core/domain"
)

// ContentFetcher retrieves attachment metadata and content bytes.
type ContentFetcher interface {
	// AttachmentDetail fetches full metadata for an attachment. Some
	// classification-relevant fields exist only at detail granularity.
	AttachmentDetail(ctx context.Context, id string) (*domain.Attachment, error)

	// Content fetches attachment bytes. Formats are tried in order via the
	// format-suffixed endpoint variant; when a format is rejected as
	// unsupported the fetcher falls back once to the bare content endpoint.
	// It never retries the same unsupported-format request.
	//
	// Returns the stream and the format actually used (FormatNone when the
	// bare endpoint served the content). The caller must close the stream;
	// content is never buffered in full here so large media can stream
	// straight to storage.
	Content(ctx context.Context, id string, formats []domain.Format) (io.ReadCloser, domain.Format, error)
}
