// handlers_preview_test.go - Tests for preview handlers
package api

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/quickpdf/backend/internal/preview"
	"github.com/quickpdf/backend/internal/storage"
)

func TestHandleManifest(t *testing.T) {
	env := newTestEnv(t)
	stored := env.uploadPDF(t, "sess-prev", "doc.pdf")
	env.previewer.entry = preview.Entry{
		Thumbnails: []string{"thumb_1.jpg", "thumb_2.jpg"},
		PageCount:  2,
	}

	t.Run("json manifest", func(t *testing.T) {
		rec := env.request(t, http.MethodGet, "/api/preview/"+stored[0], "sess-prev", nil, "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var entry preview.Entry
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entry))
		assert.Equal(t, 2, entry.PageCount)
		assert.Len(t, entry.Thumbnails, 2)
	})

	t.Run("msgpack manifest", func(t *testing.T) {
		rec := env.request(t, http.MethodGet, "/api/preview/"+stored[0]+"?format=msgpack", "sess-prev", nil, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/msgpack", rec.Header().Get("Content-Type"))

		var entry preview.Entry
		require.NoError(t, msgpack.Unmarshal(rec.Body.Bytes(), &entry))
		assert.Equal(t, 2, entry.PageCount)
	})

	t.Run("unknown file", func(t *testing.T) {
		rec := env.request(t, http.MethodGet, "/api/preview/nope.pdf", "sess-prev", nil, "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("foreign session", func(t *testing.T) {
		rec := env.request(t, http.MethodGet, "/api/preview/"+stored[0], "sess-other", nil, "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandleThumbnail(t *testing.T) {
	env := newTestEnv(t)

	t.Run("serves session thumbnails", func(t *testing.T) {
		dir, err := env.layout.DirFor("sess-thumb", storage.ClassPreviews)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "page_1.jpg"), []byte("jpegdata"), 0o644))

		rec := env.request(t, http.MethodGet, "/api/preview/thumb/page_1.jpg", "sess-thumb", nil, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "jpegdata", rec.Body.String())
	})

	t.Run("serves the shared placeholder", func(t *testing.T) {
		rec := env.request(t, http.MethodGet, "/api/preview/thumb/"+preview.PlaceholderName, "sess-thumb", nil, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))
		assert.NotZero(t, rec.Body.Len())
	})

	t.Run("missing thumbnail", func(t *testing.T) {
		rec := env.request(t, http.MethodGet, "/api/preview/thumb/ghost.jpg", "sess-thumb", nil, "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
