// Package export implements the on-disk export tree: one directory per
// order with metadata.json and per-category attachment subdirectories.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/custodia-labs/revsync-cli/internal/core/domain"
	"github.com/custodia-labs/revsync-cli/internal/core/ports/driven"
	"github.com/custodia-labs/revsync-cli/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.ExportStore = (*Store)(nil)

// dirPerm is the mode for created directories.
const dirPerm = 0o755

// Store writes the export layout under a root directory:
//
//	<root>/<order_number>/metadata.json
//	<root>/<order_number>/{media,transcripts,other}/<id>_<name><ext>
//
// Attachment filenames are deterministic, so file identity is derivable
// without the index if the index is ever lost.
type Store struct {
	root string
}

// NewStore creates a store rooted at the given directory, creating it if
// needed.
func NewStore(root string) (*Store, error) {
	if err := os.MkdirAll(root, dirPerm); err != nil {
		return nil, fmt.Errorf("create export root: %w", err)
	}
	return &Store{root: root}, nil
}

// Root returns the export root directory.
func (s *Store) Root() string {
	return s.root
}

// orderDir returns the directory for an order.
func (s *Store) orderDir(orderNumber string) string {
	return filepath.Join(s.root, orderNumber)
}

// CreateOrderStructure creates the per-order directory tree. Idempotent:
// existing directories are left untouched.
func (s *Store) CreateOrderStructure(orderNumber string) (driven.OrderDirs, error) {
	dirs := driven.OrderDirs{
		Root:        s.orderDir(orderNumber),
		Media:       filepath.Join(s.orderDir(orderNumber), "media"),
		Transcripts: filepath.Join(s.orderDir(orderNumber), "transcripts"),
		Other:       filepath.Join(s.orderDir(orderNumber), "other"),
	}

	for _, dir := range []string{dirs.Root, dirs.Media, dirs.Transcripts, dirs.Other} {
		if err := os.MkdirAll(dir, dirPerm); err != nil {
			return driven.OrderDirs{}, fmt.Errorf("create order directory: %w", err)
		}
	}
	return dirs, nil
}

// SaveOrderMetadata writes the full order record to metadata.json,
// overwriting any previous copy. Metadata is cheap and refreshed every run,
// unlike attachment content.
func (s *Store) SaveOrderMetadata(order *domain.Order) (string, error) {
	if order == nil || order.OrderNumber == "" {
		return "", domain.ErrInvalidInput
	}

	dir := s.orderDir(order.OrderNumber)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return "", fmt.Errorf("create order directory: %w", err)
	}

	record := []byte(order.Raw)
	if len(record) == 0 {
		// Summaries carry no verbatim record; marshal what we have.
		var err error
		record, err = json.MarshalIndent(orderMetadata(order), "", "  ")
		if err != nil {
			return "", fmt.Errorf("encode order metadata: %w", err)
		}
	}

	path := filepath.Join(dir, "metadata.json")
	if err := os.WriteFile(path, record, 0o644); err != nil {
		return "", fmt.Errorf("write order metadata: %w", err)
	}

	logger.Debug("Saved metadata for order %s", order.OrderNumber)
	return path, nil
}

// orderMetadata is the fallback metadata shape for non-hydrated orders.
func orderMetadata(order *domain.Order) map[string]any {
	attachments := make([]map[string]any, 0, len(order.Attachments))
	for _, att := range order.Attachments {
		attachments = append(attachments, map[string]any{
			"id":           att.ID,
			"name":         att.Name,
			"type":         att.Type,
			"download_uri": att.DownloadURI,
		})
	}

	meta := map[string]any{
		"order_number": order.OrderNumber,
		"status":       order.Status,
		"attachments":  attachments,
	}
	if order.PlacedOn != nil {
		meta["placed_on"] = order.PlacedOn.Format("2006-01-02T15:04:05Z07:00")
	}
	return meta
}

// SaveAttachment streams content to its deterministic final path. Bytes are
// written to a temporary file in the target directory first and renamed into
// place, so an interrupted write leaves no truncated file at the final path.
func (s *Store) SaveAttachment(
	orderNumber string,
	att domain.Attachment,
	c domain.Category,
	ext string,
	content io.Reader,
) (string, error) {
	dirs, err := s.CreateOrderStructure(orderNumber)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dirs.ForCategory(c), domain.AttachmentFilename(att, ext))

	tmp, err := os.CreateTemp(filepath.Dir(path), ".partial-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, content); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("write attachment %s: %w", att.ID, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("write attachment %s: %w", att.ID, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("finalise attachment %s: %w", att.ID, err)
	}

	logger.Debug("Saved attachment %s to %s", att.ID, path)
	return path, nil
}
