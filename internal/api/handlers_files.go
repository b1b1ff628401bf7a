// handlers_files.go - Upload and file management handlers
package api

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/quickpdf/backend/internal/models"
	"github.com/quickpdf/backend/internal/naming"
	"github.com/quickpdf/backend/internal/session"
	"github.com/quickpdf/backend/internal/storage"
)

// FilesHandler serves upload, listing, rename and delete.
type FilesHandler struct {
	layout          *storage.Layout
	registry        *session.Registry
	maxUploadSizeMB int64
}

// NewFilesHandler creates a new files handler
func NewFilesHandler(layout *storage.Layout, registry *session.Registry, maxUploadSizeMB int64) *FilesHandler {
	return &FilesHandler{
		layout:          layout,
		registry:        registry,
		maxUploadSizeMB: maxUploadSizeMB,
	}
}

type uploadedFileResponse struct {
	DisplayName string `json:"displayName"`
	StoredName  string `json:"storedName"`
	Size        int64  `json:"size"`
}

// HandleUpload accepts one or more PDF files as multipart/form-data
// under the "files" field.
func (h *FilesHandler) HandleUpload(c echo.Context) error {
	id := sessionID(c)

	form, err := c.MultipartForm()
	if err != nil {
		return NewBadRequestError("invalid multipart form", err)
	}
	files := form.File["files"]
	if len(files) == 0 {
		return NewValidationError("files")
	}

	limit := h.maxUploadSizeMB * 1024 * 1024
	var saved []uploadedFileResponse
	for _, fh := range files {
		if !strings.EqualFold(filepath.Ext(fh.Filename), ".pdf") {
			return NewBadRequestError(fmt.Sprintf("file %s is not a PDF", fh.Filename), nil)
		}
		if fh.Size > limit {
			return NewPayloadTooLargeError(
				fmt.Sprintf("file %s exceeds the %d MB limit", fh.Filename, h.maxUploadSizeMB))
		}

		src, err := fh.Open()
		if err != nil {
			return NewInternalError("failed to read uploaded file", err)
		}
		name := naming.Generate(fh.Filename, "", ".pdf")
		_, size, err := h.layout.SaveUpload(id, name.StoredName, src)
		src.Close()
		if err != nil {
			return NewInternalError("failed to save uploaded file", err)
		}

		h.registry.Track(id, name.StoredName, name.DisplayName, models.KindUpload)
		saved = append(saved, uploadedFileResponse{
			DisplayName: name.DisplayName,
			StoredName:  name.StoredName,
			Size:        size,
		})
	}
	h.registry.RestartCountdown(id)

	fmt.Printf("[Files %.8s] Uploaded %d files\n", id, len(saved))
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"files": saved,
	})
}

// HandleList returns the session's uploads and processed results. The
// registry is reconciled against the disk first so externally removed
// files never show up.
func (h *FilesHandler) HandleList(c echo.Context) error {
	id := sessionID(c)
	h.registry.Reconcile(id)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"uploads":   h.registry.TrackedFiles(id, models.KindUpload),
		"processed": h.registry.TrackedFiles(id, models.KindProcessed),
		"countdown": h.registry.Countdown(id),
	})
}

type renameRequest struct {
	NewName string `json:"newName"`
}

// HandleRename changes a file's display name and moves the stored file
// so the two stay in step.
func (h *FilesHandler) HandleRename(c echo.Context) error {
	id := sessionID(c)
	storedName := c.Param("name")
	if storedName == "" {
		return NewValidationError("name")
	}

	var req renameRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	newStem := strings.TrimSpace(req.NewName)
	// Clients may send the full display name; the extension is managed
	// by the server.
	newStem = strings.TrimSuffix(newStem, filepath.Ext(newStem))
	if newStem == "" {
		return NewValidationError("newName")
	}

	newStored, err := h.registry.Rename(id, storedName, newStem)
	if err != nil {
		return NewNotFoundError("file", storedName)
	}

	tracked, _ := h.registry.Lookup(id, newStored)
	return c.JSON(http.StatusOK, tracked)
}

// HandleDelete removes a single file from disk and from the registry.
func (h *FilesHandler) HandleDelete(c echo.Context) error {
	id := sessionID(c)
	storedName := c.Param("name")
	if storedName == "" {
		return NewValidationError("name")
	}

	if _, ok := h.registry.Lookup(id, storedName); !ok {
		return NewNotFoundError("file", storedName)
	}
	h.registry.Remove(id, storedName)

	return c.NoContent(http.StatusNoContent)
}
