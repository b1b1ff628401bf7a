// handlers_download.go - File download handlers
package api

import (
	"archive/zip"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"

	"github.com/quickpdf/backend/internal/models"
	"github.com/quickpdf/backend/internal/session"
	"github.com/quickpdf/backend/internal/storage"
)

// DownloadHandler serves processed results back to the user under
// their display names.
type DownloadHandler struct {
	layout   *storage.Layout
	registry *session.Registry
}

// NewDownloadHandler creates a new download handler
func NewDownloadHandler(layout *storage.Layout, registry *session.Registry) *DownloadHandler {
	return &DownloadHandler{layout: layout, registry: registry}
}

// HandleDownload streams one file as an attachment named after its
// display name.
func (h *DownloadHandler) HandleDownload(c echo.Context) error {
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
	return c.Attachment(path, tracked.DisplayName)
}

// HandleDownloadAll streams every processed result as one zip archive
// built on the fly, entries named by display name.
func (h *DownloadHandler) HandleDownloadAll(c echo.Context) error {
	id := sessionID(c)
	h.registry.Reconcile(id)
	files := h.registry.TrackedFiles(id, models.KindProcessed)
	if len(files) == 0 {
		return NewNotFoundError("processed files", id)
	}

	c.Response().Header().Set(echo.HeaderContentType, "application/zip")
	c.Response().Header().Set(echo.HeaderContentDisposition,
		`attachment; filename="quickpdf_results.zip"`)
	c.Response().WriteHeader(http.StatusOK)

	zw := zip.NewWriter(c.Response())
	defer zw.Close()

	seen := make(map[string]int)
	for _, f := range files {
		path, err := h.layout.FilePath(id, storage.ClassProcessed, f.StoredName)
		if err != nil {
			continue
		}
		src, err := os.Open(path)
		if err != nil {
			fmt.Printf("[Download %.8s] Skipping %s: %v\n", id, f.StoredName, err)
			continue
		}

		entryName := f.DisplayName
		if n := seen[f.DisplayName]; n > 0 {
			entryName = fmt.Sprintf("%d_%s", n, f.DisplayName)
		}
		seen[f.DisplayName]++

		w, err := zw.Create(entryName)
		if err == nil {
			_, err = io.Copy(w, src)
		}
		src.Close()
		if err != nil {
			fmt.Printf("[Download %.8s] Archiving %s failed: %v\n", id, f.StoredName, err)
			return nil
		}
	}
	return nil
}
