package preview

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/quickpdf/backend/internal/pdfdoc"
	"github.com/quickpdf/backend/internal/storage"
)

// MaxThumbnailsPerFile caps thumbnail generation for very long documents.
const MaxThumbnailsPerFile = 50

// Renderer rasterizes PDF pages into thumbnail files inside destDir and
// returns the stored file names in page order.
type Renderer interface {
	RenderThumbnails(path, destDir string, maxPages int) ([]string, error)
}

// Generator produces preview entries, consulting the shared cache first.
// Thumbnail files are materialized per session: the cache only carries
// names, so a hit whose files are missing from the requesting session's
// preview directory degrades to a miss and regenerates.
type Generator struct {
	cache  *Cache
	layout *storage.Layout
	render Renderer

	// pageCount is a seam so tests can count invocations; defaults to
	// pdfdoc.PageCount.
	pageCount func(path string) int
	encrypted func(path string) bool
}

// NewGenerator wires a generator with the MuPDF renderer and the default
// PDF introspection functions. Out-of-range dpi or quality fall back to
// the configuration defaults.
func NewGenerator(cache *Cache, layout *storage.Layout, dpi, quality int) *Generator {
	if dpi <= 0 {
		dpi = 100
	}
	if quality <= 0 || quality > 100 {
		quality = 85
	}
	return &Generator{
		cache:     cache,
		layout:    layout,
		render:    &FitzRenderer{DPI: float64(dpi), Quality: quality},
		pageCount: pdfdoc.PageCount,
		encrypted: pdfdoc.IsEncrypted,
	}
}

// NewGeneratorWith builds a generator from explicit collaborators.
func NewGeneratorWith(cache *Cache, layout *storage.Layout, r Renderer, pageCount func(string) int, encrypted func(string) bool) *Generator {
	return &Generator{cache: cache, layout: layout, render: r, pageCount: pageCount, encrypted: encrypted}
}

// Previews returns the thumbnail names and page count for the file at
// path, generating them into sessionID's preview directory when the cache
// cannot serve the request. Encrypted inputs are not rendered; their
// thumbnail slots hold PlaceholderName until the file is unlocked.
func (g *Generator) Previews(sessionID, path, password string) (Entry, error) {
	key, err := Fingerprint(path, password)
	if err != nil {
		return Entry{}, err
	}

	if entry, ok := g.cache.Get(key); ok {
		if g.thumbnailsPresent(sessionID, entry.Thumbnails) {
			return entry, nil
		}
		// The thumbnails were swept out from under the manifest; the
		// entry must not outlive its files if regeneration fails below.
		g.cache.Invalidate(key)
	}

	previewDir, err := g.layout.DirFor(sessionID, storage.ClassPreviews)
	if err != nil {
		return Entry{}, err
	}

	if g.encrypted(path) {
		count := g.pageCount(path)
		slots := count
		if slots > MaxThumbnailsPerFile {
			slots = MaxThumbnailsPerFile
		}
		if slots < 1 {
			slots = 1
		}
		thumbs := make([]string, slots)
		for i := range thumbs {
			thumbs[i] = PlaceholderName
		}
		fmt.Printf("[Preview %.8s] Skipping thumbnails for encrypted input %s\n", sessionID, filepath.Base(path))
		g.cache.Put(key, thumbs, count)
		return Entry{Thumbnails: thumbs, PageCount: count}, nil
	}

	thumbs, err := g.render.RenderThumbnails(path, previewDir, MaxThumbnailsPerFile)
	if err != nil {
		return Entry{}, fmt.Errorf("rendering thumbnails: %w", err)
	}
	count := g.pageCount(path)
	if count == 0 {
		count = len(thumbs)
	}

	g.cache.Put(key, thumbs, count)
	return Entry{Thumbnails: thumbs, PageCount: count}, nil
}

// thumbnailsPresent reports whether every real (non-placeholder)
// thumbnail named by the entry exists in the session's preview directory.
func (g *Generator) thumbnailsPresent(sessionID string, names []string) bool {
	for _, name := range names {
		if name == PlaceholderName {
			continue
		}
		path, err := g.layout.FilePath(sessionID, storage.ClassPreviews, name)
		if err != nil {
			return false
		}
		if _, err := os.Stat(path); err != nil {
			return false
		}
	}
	return true
}
