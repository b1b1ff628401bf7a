// routes.go - Route registration helpers
package api

import (
	"io/fs"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/quickpdf/backend/internal/session"
	"github.com/quickpdf/backend/internal/storage"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Layout          *storage.Layout
	Registry        *session.Registry
	Previewer       Previewer
	Runner          ToolRunner
	Reclaimer       Reclaimer
	Assets          fs.FS
	MaxUploadSizeMB int64
	DeferredDelay   time.Duration
	CookieName      string
	Version         string
}

// Handlers holds all handler instances
type Handlers struct {
	Health   *HealthHandler
	Files    *FilesHandler
	Preview  *PreviewHandler
	Process  *ProcessHandler
	Download *DownloadHandler
	Session  *SessionHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		Health:   NewHealthHandler(deps.Version),
		Files:    NewFilesHandler(deps.Layout, deps.Registry, deps.MaxUploadSizeMB),
		Preview:  NewPreviewHandler(deps.Layout, deps.Registry, deps.Previewer, deps.Assets),
		Process:  NewProcessHandler(deps.Layout, deps.Registry, deps.Runner, deps.Reclaimer, deps.DeferredDelay),
		Download: NewDownloadHandler(deps.Layout, deps.Registry),
		Session:  NewSessionHandler(deps.Registry, deps.Reclaimer),
	}
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers, deps *Dependencies) {
	// Health check
	e.GET("/api/health", handlers.Health.HandleHealth)

	api := e.Group("/api", SessionMiddleware(deps.Registry, deps.CookieName))

	filesGroup := api.Group("/files")
	filesGroup.POST("/upload", handlers.Files.HandleUpload)
	filesGroup.GET("", handlers.Files.HandleList)
	filesGroup.PUT("/:name", handlers.Files.HandleRename)
	filesGroup.DELETE("/:name", handlers.Files.HandleDelete)
	filesGroup.GET("/download/:name", handlers.Download.HandleDownload)
	filesGroup.GET("/download-all", handlers.Download.HandleDownloadAll)

	previewGroup := api.Group("/preview")
	previewGroup.GET("/:name", handlers.Preview.HandleManifest)
	previewGroup.GET("/thumb/:name", handlers.Preview.HandleThumbnail)

	toolsGroup := api.Group("/tools")
	toolsGroup.GET("", handlers.Process.HandleCatalog)
	toolsGroup.POST("/:toolID/process", handlers.Process.HandleProcess)

	sessionGroup := api.Group("/session")
	sessionGroup.GET("/countdown", handlers.Session.HandleCountdown)
	sessionGroup.POST("/clear", handlers.Session.HandleClear)
}

// SetupMiddleware configures common middleware
func SetupMiddleware(e *echo.Echo) {
	e.HTTPErrorHandler = ErrorHandler
}
