// handlers_preview.go - Thumbnail manifest and image serving
package api

import (
	"io/fs"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/quickpdf/backend/internal/models"
	"github.com/quickpdf/backend/internal/preview"
	"github.com/quickpdf/backend/internal/session"
	"github.com/quickpdf/backend/internal/storage"
)

// PreviewHandler serves thumbnail manifests and the thumbnail images
// themselves.
type PreviewHandler struct {
	layout    *storage.Layout
	registry  *session.Registry
	previewer Previewer
	assets    fs.FS // holds the shared no-preview placeholder
}

// NewPreviewHandler creates a new preview handler
func NewPreviewHandler(layout *storage.Layout, registry *session.Registry, previewer Previewer, assets fs.FS) *PreviewHandler {
	return &PreviewHandler{
		layout:    layout,
		registry:  registry,
		previewer: previewer,
		assets:    assets,
	}
}

// HandleManifest returns the thumbnail manifest for one stored file.
// A password query parameter unlocks encrypted documents for preview.
// With ?format=msgpack the manifest is MessagePack-encoded, which the
// frontend uses for large page counts.
func (h *PreviewHandler) HandleManifest(c echo.Context) error {
	id := sessionID(c)
	storedName := c.Param("name")
	if storedName == "" {
		return NewValidationError("name")
	}

	tracked, ok := h.registry.Lookup(id, storedName)
	if !ok {
		return NewNotFoundError("file", storedName)
	}
	class := storage.ClassUploads
	if tracked.Kind == models.KindProcessed {
		class = storage.ClassProcessed
	}
	path, err := h.layout.FilePath(id, class, storedName)
	if err != nil {
		return NewNotFoundError("file", storedName)
	}
	if _, err := os.Stat(path); err != nil {
		return NewNotFoundError("file", storedName)
	}

	entry, err := h.previewer.Previews(id, path, c.QueryParam("password"))
	if err != nil {
		return NewInternalError("failed to generate previews", err)
	}

	if c.QueryParam("format") == "msgpack" {
		data, err := msgpack.Marshal(entry)
		if err != nil {
			return NewInternalError("failed to encode manifest", err)
		}
		return c.Blob(http.StatusOK, "application/msgpack", data)
	}
	return c.JSON(http.StatusOK, entry)
}

// HandleThumbnail serves one thumbnail image from the session's
// preview folder. The shared placeholder is served from static assets.
func (h *PreviewHandler) HandleThumbnail(c echo.Context) error {
	id := sessionID(c)
	name := c.Param("name")
	if name == "" {
		return NewValidationError("name")
	}

	if name == preview.PlaceholderName {
		f, err := h.assets.Open(preview.PlaceholderName)
		if err != nil {
			return NewNotFoundError("thumbnail", name)
		}
		defer f.Close()
		return c.Stream(http.StatusOK, "image/jpeg", f)
	}

	path, err := h.layout.FilePath(id, storage.ClassPreviews, name)
	if err != nil {
		return NewNotFoundError("thumbnail", name)
	}
	if _, err := os.Stat(path); err != nil {
		return NewNotFoundError("thumbnail", name)
	}
	return c.File(path)
}
