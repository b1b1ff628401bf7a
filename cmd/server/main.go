package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/quickpdf/backend/internal/api"
	"github.com/quickpdf/backend/internal/cleanup"
	"github.com/quickpdf/backend/internal/config"
	"github.com/quickpdf/backend/internal/preview"
	"github.com/quickpdf/backend/internal/session"
	"github.com/quickpdf/backend/internal/storage"
	"github.com/quickpdf/backend/internal/tools"
	"github.com/quickpdf/backend/internal/web"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Get the executable's directory for config resolution
	exePath, err := os.Executable()
	if err != nil {
		fmt.Printf("Failed to get executable path: %v\n", err)
		os.Exit(1)
	}
	exeDir := filepath.Dir(exePath)

	// Load XML configuration
	configPath := filepath.Join(exeDir, "QuickPDF.config")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		fmt.Printf("Failed to create directories: %v\n", err)
		os.Exit(1)
	}

	// Storage layout and session registry
	layout, err := storage.NewLayout(cfg.GetDataDir())
	if err != nil {
		fmt.Printf("Failed to initialize storage: %v\n", err)
		os.Exit(1)
	}
	registry := session.NewRegistry(layout, cfg.CountdownDuration())

	// Preview cache and thumbnail generator
	cache := preview.NewCache(cfg.CacheTTL())
	generator := preview.NewGenerator(cache, layout, cfg.Preview.ThumbnailDPI, cfg.Preview.JPEGQuality)

	// Tool catalog and dispatcher
	catalog, err := tools.LoadCatalog(cfg.Tools.CatalogPath)
	if err != nil {
		fmt.Printf("Failed to load tool catalog: %v\n", err)
		os.Exit(1)
	}
	dispatcher := tools.NewDispatcher(layout, catalog, cfg.Tools.CallsPerMinute)

	// Reclamation scheduler
	uploads, processed, previews := cfg.RetentionWindows()
	scheduler := cleanup.NewScheduler(layout, registry, cache, map[storage.Class]time.Duration{
		storage.ClassUploads:   uploads,
		storage.ClassProcessed: processed,
		storage.ClassPreviews:  previews,
	}, cfg.SweepInterval())
	scheduler.StartupPurge()
	scheduler.Start()
	defer scheduler.Stop()

	assets, err := web.Assets()
	if err != nil {
		fmt.Printf("Failed to load embedded assets: %v\n", err)
		os.Exit(1)
	}

	e := echo.New()
	e.HideBanner = true
	api.SetupMiddleware(e)

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			path := c.Request().URL.Path
			return path == "/api/health" ||
				strings.HasPrefix(path, "/api/session/countdown") ||
				strings.HasPrefix(path, "/api/preview/thumb/")
		},
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 1024 * 4,
	}))

	// Body limit middleware
	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	// CORS configuration
	if cfg.Server.EnableCORS {
		origins := strings.Split(cfg.Server.AllowOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		if len(origins) == 0 || (len(origins) == 1 && origins[0] == "") {
			origins = []string{"*"}
		}
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     origins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
			AllowCredentials: true,
		}))
	}

	deps := &api.Dependencies{
		Layout:          layout,
		Registry:        registry,
		Previewer:       generator,
		Runner:          dispatcher,
		Reclaimer:       scheduler,
		Assets:          assets,
		MaxUploadSizeMB: cfg.Storage.MaxUploadSizeMB,
		DeferredDelay:   cfg.DeferredCleanupDelay(),
		CookieName:      cfg.Session.CookieName,
		Version:         Version,
	}
	api.RegisterRoutes(e, api.NewHandlers(deps), deps)

	if err := web.RegisterStaticRoutes(e); err != nil {
		fmt.Printf("Warning: failed to register static routes: %v\n", err)
	}

	// Configure server with settings from XML config
	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║           QuickPDF Server                                 ║\n")
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Version:    %-45s║\n", Version)
	fmt.Printf("║  Build Time: %-45s║\n", BuildTime)
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Config:    %-46s║\n", configPath)
	fmt.Printf("║  Listen:    http://%-38s║\n", cfg.GetServerAddr())
	fmt.Printf("║  Data Dir:  %-46s║\n", cfg.GetDataDir())
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")

	e.Logger.Fatal(e.StartServer(s))
}
