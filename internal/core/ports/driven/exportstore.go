package driven

import (
	"io"

	"github.com/custodia-labs/revsync-cli/internal/core/domain"
)

// OrderDirs holds the category directory paths for one order.
type OrderDirs struct {
	Root        string
	Media       string
	Transcripts string
	Other       string
}

// ForCategory returns the directory for a category.
func (d OrderDirs) ForCategory(c domain.Category) string {
	switch c.Dir() {
	case "media":
		return d.Media
	case "transcripts":
		return d.Transcripts
	default:
		return d.Other
	}
}

// ExportStore owns the on-disk export layout and filename derivation.
type ExportStore interface {
	// Root returns the export root directory.
	Root() string

	// CreateOrderStructure lazily creates the per-order directory tree.
	// Creating an existing directory is a no-op, never an error.
	CreateOrderStructure(orderNumber string) (OrderDirs, error)

	// SaveOrderMetadata writes the full order record to metadata.json.
	// Unconditional: metadata is cheap and refreshed every run.
	SaveOrderMetadata(order *domain.Order) (string, error)

	// SaveAttachment streams content to its final deterministic path.
	// The write lands complete or not at all; a partially written file is
	// never left at the final path.
	SaveAttachment(orderNumber string, att domain.Attachment, c domain.Category, ext string, content io.Reader) (string, error)
}
