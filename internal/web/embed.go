// Package web provides embedded static assets for self-contained deployment.
package web

import (
	"embed"
	"io"
	"io/fs"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

//go:embed static/*
var staticFiles embed.FS

// Assets returns the embedded filesystem with the static folder as root.
// It holds the landing page and the shared preview placeholder image.
func Assets() (fs.FS, error) {
	return fs.Sub(staticFiles, "static")
}

// RegisterStaticRoutes registers the static file routes with Echo.
// The API routes should be registered before calling this function.
func RegisterStaticRoutes(e *echo.Echo) error {
	assets, err := Assets()
	if err != nil {
		return err
	}

	fileServer := http.FileServer(http.FS(assets))

	e.GET("/*", func(c echo.Context) error {
		name := strings.TrimPrefix(c.Request().URL.Path, "/")
		if name == "" {
			return serveIndexHTML(c, assets)
		}
		f, err := assets.Open(name)
		if err != nil {
			return serveIndexHTML(c, assets)
		}
		f.Close()
		fileServer.ServeHTTP(c.Response(), c.Request())
		return nil
	})

	return nil
}

// serveIndexHTML serves the landing page for unmatched routes
func serveIndexHTML(c echo.Context, assets fs.FS) error {
	f, err := assets.Open("index.html")
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "index.html not found")
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to read index.html")
	}
	return c.HTMLBlob(http.StatusOK, content)
}
