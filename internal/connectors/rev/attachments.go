package rev

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/custodia-labs/revsync-cli/internal/core/domain"
	"github.com/custodia-labs/revsync-cli/internal/core/ports/driven"
	"github.com/custodia-labs/revsync-cli/internal/logger"
)

// Ensure Client implements the content port.
var _ driven.ContentFetcher = (*Client)(nil)

// attachmentPayload is the wire shape of one attachment.
type attachmentPayload struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	DownloadURI string `json:"download_uri"`
}

func (p attachmentPayload) toDomain() domain.Attachment {
	return domain.Attachment{
		ID:          p.ID,
		Name:        p.Name,
		Type:        p.Type,
		DownloadURI: p.DownloadURI,
	}
}

// AttachmentDetail fetches full metadata for one attachment.
func (c *Client) AttachmentDetail(ctx context.Context, id string) (*domain.Attachment, error) {
	var payload attachmentPayload
	if err := c.GetJSON(ctx, "/attachments/"+url.PathEscape(id), nil, &payload); err != nil {
		return nil, fmt.Errorf("get attachment %s: %w", id, err)
	}
	att := payload.toDomain()
	return &att, nil
}

// Content fetches attachment bytes as a stream. Each requested format is
// tried once via the format-suffixed endpoint; a format the server rejects
// falls through to the next, and finally to the bare content endpoint. The
// same unsupported-format request is never retried. Returns the format that
// actually served the content (FormatNone for the bare endpoint).
func (c *Client) Content(ctx context.Context, id string, formats []domain.Format) (io.ReadCloser, domain.Format, error) {
	base := "/attachments/" + url.PathEscape(id) + "/content"

	rejected := false
	for _, format := range formats {
		body, err := c.GetStream(ctx, base+"."+string(format), nil)
		if err == nil {
			return body, format, nil
		}
		if !isPermanentAPIError(err) {
			// Transient failures have already exhausted their retries in
			// the transport; surface rather than mask them as a fallback.
			return nil, domain.FormatNone, fmt.Errorf("get content %s.%s: %w", id, format, err)
		}
		rejected = true
		logger.Warn("Format %s not available for attachment %s, falling back", format, id)
	}

	body, err := c.GetStream(ctx, base, nil)
	if err != nil {
		if rejected && isPermanentAPIError(err) {
			return nil, domain.FormatNone, fmt.Errorf("get content %s: %w: %w", id, domain.ErrUnsupportedFormat, err)
		}
		return nil, domain.FormatNone, fmt.Errorf("get content %s: %w", id, err)
	}
	return body, domain.FormatNone, nil
}
