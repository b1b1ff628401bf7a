// interfaces.go - Handler dependency contracts
// Handlers depend on these instead of the concrete implementations so
// tests can substitute stubs.
package api

import (
	"context"
	"time"

	"github.com/quickpdf/backend/internal/models"
	"github.com/quickpdf/backend/internal/preview"
	"github.com/quickpdf/backend/internal/tools"
)

// Previewer produces the thumbnail manifest for a stored document.
type Previewer interface {
	Previews(sessionID, path, password string) (preview.Entry, error)
}

// ToolRunner executes PDF tools and exposes their catalog.
type ToolRunner interface {
	Execute(ctx context.Context, sessionID, toolID string, inputPaths []string, pages map[string][]int, options map[string]string) models.ToolResult
	Catalog() []tools.Descriptor
}

// Reclaimer controls session purging from the HTTP surface.
type Reclaimer interface {
	ScheduleDeferred(sessionID string, delay time.Duration)
	RunOnDemand(sessionID string)
}
