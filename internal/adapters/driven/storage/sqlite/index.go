// Package sqlite implements the durable idempotency index on SQLite.
//
// The index lives at <export-root>/.idempotency-index and holds one row per
// fully downloaded attachment id. SQLite gives the two properties the
// ledger needs: each mark is an incremental insert rather than a whole-file
// rewrite, and a missing or unreadable database degrades to an empty index
// instead of failing the run.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/revsync-cli/internal/core/ports/driven"
	"github.com/custodia-labs/revsync-cli/internal/logger"
)

// Ensure Index implements the interface.
var _ driven.DownloadIndex = (*Index)(nil)

// IndexFileName is the index file name under the export root.
const IndexFileName = ".idempotency-index"

// Index is the SQLite-backed download ledger. Marked ids are mirrored in an
// in-memory set: reads are cheap and may race with concurrent marks (a
// stale "not downloaded" costs redundant work, never corruption); writes
// are serialised and durable before the set is updated.
type Index struct {
	mu  sync.RWMutex
	ids map[string]struct{}

	db *sql.DB // nil in memory-only degraded mode
}

// OpenIndex opens or creates the index under the export root. A corrupt
// index file is moved aside and recreated; if even that fails the index
// runs memory-only for the rest of the process, which only costs re-checks
// on the next run. Absence of the index means "nothing downloaded yet",
// never an error.
func OpenIndex(root string) (*Index, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create export root: %w", err)
	}
	path := filepath.Join(root, IndexFileName)

	idx := &Index{ids: make(map[string]struct{})}

	db, err := open(path)
	if err != nil {
		logger.Warn("Index unreadable (%v), starting over", err)
		if renameErr := os.Rename(path, path+".corrupt"); renameErr == nil {
			db, err = open(path)
		}
	}
	if err != nil {
		logger.Warn("Index unavailable (%v), marks will not persist this run", err)
		return idx, nil
	}

	idx.db = db
	if err := idx.load(); err != nil {
		logger.Warn("Failed to load index (%v), treating as empty", err)
	}
	return idx, nil
}

// open opens the database and ensures the schema exists.
func open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening index: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS downloads (
			attachment_id TEXT PRIMARY KEY,
			downloaded_at DATETIME NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating downloads table: %w", err)
	}

	return db, nil
}

// load mirrors all marked ids into memory.
func (i *Index) load() error {
	rows, err := i.db.Query("SELECT attachment_id FROM downloads")
	if err != nil {
		return fmt.Errorf("querying downloads: %w", err)
	}
	defer rows.Close()

	i.mu.Lock()
	defer i.mu.Unlock()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return err
		}
		i.ids[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating downloads: %w", err)
	}

	logger.Debug("Loaded index with %d downloaded attachments", len(i.ids))
	return nil
}

// IsDownloaded reports whether the attachment id is marked.
func (i *Index) IsDownloaded(id string) bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	_, ok := i.ids[id]
	return ok
}

// MarkDownloaded durably records the id, then updates the in-memory set.
// The durable write comes first so a mark is never observed in memory
// without having been persisted; the caller has already confirmed the
// content write before calling this.
func (i *Index) MarkDownloaded(ctx context.Context, id string) error {
	if i.db != nil {
		_, err := i.db.ExecContext(ctx, `
			INSERT INTO downloads (attachment_id, downloaded_at)
			VALUES (?, ?)
			ON CONFLICT(attachment_id) DO NOTHING
		`, id, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("marking download %s: %w", id, err)
		}
	}

	i.mu.Lock()
	i.ids[id] = struct{}{}
	i.mu.Unlock()
	return nil
}

// Len returns the number of marked ids.
func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.ids)
}

// Close closes the underlying database.
func (i *Index) Close() error {
	if i.db == nil {
		return nil
	}
	return i.db.Close()
}
