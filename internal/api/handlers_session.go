// handlers_session.go - Session countdown and teardown handlers
package api

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/quickpdf/backend/internal/session"
)

// SessionHandler exposes the countdown and the explicit purge.
type SessionHandler struct {
	registry  *session.Registry
	reclaimer Reclaimer
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(registry *session.Registry, reclaimer Reclaimer) *SessionHandler {
	return &SessionHandler{registry: registry, reclaimer: reclaimer}
}

// HandleCountdown reports the remaining lifetime of the session's files.
func (h *SessionHandler) HandleCountdown(c echo.Context) error {
	return c.JSON(http.StatusOK, h.registry.Countdown(sessionID(c)))
}

// HandleClear purges the session's files immediately.
func (h *SessionHandler) HandleClear(c echo.Context) error {
	id := sessionID(c)
	h.reclaimer.RunOnDemand(id)
	fmt.Printf("[Session %.8s] Cleared on request\n", id)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status": "cleared",
	})
}
