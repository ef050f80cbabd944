package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/revsync-cli/internal/core/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestNewStore_CreatesRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "exports")

	store, err := NewStore(root)

	require.NoError(t, err)
	assert.Equal(t, root, store.Root())
	assert.DirExists(t, root)
}

func TestStore_CreateOrderStructure(t *testing.T) {
	store := newTestStore(t)

	dirs, err := store.CreateOrderStructure("CP0123")

	require.NoError(t, err)
	assert.DirExists(t, dirs.Root)
	assert.DirExists(t, dirs.Media)
	assert.DirExists(t, dirs.Transcripts)
	assert.DirExists(t, dirs.Other)

	t.Run("idempotent", func(t *testing.T) {
		again, err := store.CreateOrderStructure("CP0123")

		require.NoError(t, err)
		assert.Equal(t, dirs, again)
	})
}

func TestOrderDirs_ForCategory(t *testing.T) {
	store := newTestStore(t)
	dirs, err := store.CreateOrderStructure("CP0123")
	require.NoError(t, err)

	assert.Equal(t, dirs.Media, dirs.ForCategory(domain.CategoryMedia))
	assert.Equal(t, dirs.Transcripts, dirs.ForCategory(domain.CategoryTranscript))
	assert.Equal(t, dirs.Transcripts, dirs.ForCategory(domain.CategoryCaption))
	assert.Equal(t, dirs.Other, dirs.ForCategory(domain.CategoryOther))
}

func TestStore_SaveOrderMetadata(t *testing.T) {
	t.Run("writes the verbatim record", func(t *testing.T) {
		store := newTestStore(t)
		raw := `{"order_number":"CP0123","status":"complete","price":12.5,"unmodelled":{"a":1}}`
		order := &domain.Order{OrderNumber: "CP0123", Status: "complete", Raw: json.RawMessage(raw)}

		path, err := store.SaveOrderMetadata(order)

		require.NoError(t, err)
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, raw, string(data))
	})

	t.Run("overwrites a previous copy", func(t *testing.T) {
		store := newTestStore(t)
		order := &domain.Order{OrderNumber: "CP0123", Raw: json.RawMessage(`{"v":1}`)}
		_, err := store.SaveOrderMetadata(order)
		require.NoError(t, err)

		order.Raw = json.RawMessage(`{"v":2}`)
		path, err := store.SaveOrderMetadata(order)

		require.NoError(t, err)
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, `{"v":2}`, string(data))
	})

	t.Run("falls back to marshalling a summary", func(t *testing.T) {
		store := newTestStore(t)
		order := &domain.Order{OrderNumber: "CP0123", Status: "complete"}

		path, err := store.SaveOrderMetadata(order)

		require.NoError(t, err)
		data, err := os.ReadFile(path)
		require.NoError(t, err)

		var decoded map[string]any
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, "CP0123", decoded["order_number"])
	})

	t.Run("rejects invalid orders", func(t *testing.T) {
		store := newTestStore(t)

		_, err := store.SaveOrderMetadata(nil)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)

		_, err = store.SaveOrderMetadata(&domain.Order{})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestStore_SaveAttachment(t *testing.T) {
	t.Run("streams content to the category directory", func(t *testing.T) {
		store := newTestStore(t)
		att := domain.Attachment{ID: "AT1", Name: "call.mp3", Type: "media"}

		path, err := store.SaveAttachment("CP0123", att, domain.CategoryMedia, ".mp3",
			strings.NewReader("media bytes"))

		require.NoError(t, err)
		assert.Equal(t, filepath.Join(store.Root(), "CP0123", "media", "AT1_call.mp3.mp3"), path)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "media bytes", string(data))
	})

	t.Run("captions land in the transcripts directory", func(t *testing.T) {
		store := newTestStore(t)
		att := domain.Attachment{ID: "AT2", Name: "episode.srt", Type: "caption"}

		path, err := store.SaveAttachment("CP0123", att, domain.CategoryCaption, ".srt",
			strings.NewReader("1\n00:00:01,000 --> 00:00:02,000\nhi\n"))

		require.NoError(t, err)
		assert.Contains(t, path, filepath.Join("CP0123", "transcripts"))
	})

	t.Run("hostile names are sanitised", func(t *testing.T) {
		store := newTestStore(t)
		att := domain.Attachment{ID: "AT3", Name: "../../escape.mp3"}

		path, err := store.SaveAttachment("CP0123", att, domain.CategoryOther, ".bin",
			strings.NewReader("x"))

		require.NoError(t, err)
		rel, err := filepath.Rel(store.Root(), path)
		require.NoError(t, err)
		assert.False(t, strings.HasPrefix(rel, ".."), "path must stay inside the export root")
	})

	t.Run("failed write leaves no partial file at the final path", func(t *testing.T) {
		store := newTestStore(t)
		att := domain.Attachment{ID: "AT4", Name: "big.mp3"}

		_, err := store.SaveAttachment("CP0123", att, domain.CategoryMedia, ".mp3",
			&failingReader{})

		require.Error(t, err)

		mediaDir := filepath.Join(store.Root(), "CP0123", "media")
		entries, err := os.ReadDir(mediaDir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("overwrites an existing file", func(t *testing.T) {
		store := newTestStore(t)
		att := domain.Attachment{ID: "AT5", Name: "call.mp3"}

		_, err := store.SaveAttachment("CP0123", att, domain.CategoryMedia, ".mp3",
			strings.NewReader("old"))
		require.NoError(t, err)

		path, err := store.SaveAttachment("CP0123", att, domain.CategoryMedia, ".mp3",
			strings.NewReader("new"))
		require.NoError(t, err)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "new", string(data))
	})
}

// failingReader fails partway through a read.
type failingReader struct{}

func (r *failingReader) Read(_ []byte) (int, error) {
	return 0, assert.AnError
}
