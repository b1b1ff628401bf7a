// handlers_process.go - Tool execution handlers
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/quickpdf/backend/internal/models"
	"github.com/quickpdf/backend/internal/session"
	"github.com/quickpdf/backend/internal/storage"
)

// ProcessHandler dispatches tool runs and tracks their outputs.
type ProcessHandler struct {
	layout        *storage.Layout
	registry      *session.Registry
	runner        ToolRunner
	reclaimer     Reclaimer
	deferredDelay time.Duration
}

// NewProcessHandler creates a new process handler
func NewProcessHandler(layout *storage.Layout, registry *session.Registry, runner ToolRunner, reclaimer Reclaimer, deferredDelay time.Duration) *ProcessHandler {
	return &ProcessHandler{
		layout:        layout,
		registry:      registry,
		runner:        runner,
		reclaimer:     reclaimer,
		deferredDelay: deferredDelay,
	}
}

type processRequest struct {
	Files   []string          `json:"files"` // stored names of session files
	Pages   map[string][]int  `json:"pages"` // stored name -> 1-based pages
	Options map[string]string `json:"options"`
}

// HandleProcess runs the named tool on the session's files. Inputs are
// referenced by stored name; files the session does not own are
// rejected before anything runs.
func (h *ProcessHandler) HandleProcess(c echo.Context) error {
	id := sessionID(c)
	toolID := c.Param("toolID")

	var req processRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if len(req.Files) == 0 {
		return NewValidationError("files")
	}

	paths := make([]string, 0, len(req.Files))
	pages := make(map[string][]int, len(req.Pages))
	for _, storedName := range req.Files {
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
		paths = append(paths, path)
		if sel, ok := req.Pages[storedName]; ok {
			pages[storedName] = sel
		}
	}

	result := h.runner.Execute(c.Request().Context(), id, toolID, paths, pages, req.Options)

	if result.Status == models.ToolSuccess {
		for _, out := range result.OutputFiles {
			h.registry.Track(id, out.StoredName, out.DisplayName, models.KindProcessed)
		}
		h.registry.RestartCountdown(id)
		h.reclaimer.ScheduleDeferred(id, h.deferredDelay)
		fmt.Printf("[Process %.8s] %s produced %d outputs\n", id, toolID, len(result.OutputFiles))
	}
	// Consumed uploads are removed from disk even when the tool fails;
	// drop their records regardless of the outcome.
	h.registry.Reconcile(id)

	status := http.StatusOK
	if result.Status == models.ToolError {
		status = http.StatusUnprocessableEntity
	}
	return c.JSON(status, result)
}

// HandleCatalog lists the available tools.
func (h *ProcessHandler) HandleCatalog(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"tools": h.runner.Catalog(),
	})
}
