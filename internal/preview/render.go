package preview

import (
	"fmt"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/quickpdf/backend/internal/naming"
)

// FitzRenderer rasterizes pages through MuPDF and writes JPEG thumbnails.
type FitzRenderer struct {
	DPI     float64
	Quality int
}

// RenderThumbnails writes up to maxPages thumbnails for path into destDir
// and returns their stored names in page order. A page that fails to
// render is skipped, not fatal.
func (r *FitzRenderer) RenderThumbnails(path, destDir string, maxPages int) ([]string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("opening document: %w", err)
	}
	defer doc.Close()

	total := doc.NumPage()
	limit := total
	if maxPages > 0 && limit > maxPages {
		limit = maxPages
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	thumbs := make([]string, 0, limit)
	for page := 0; page < limit; page++ {
		img, err := doc.ImageDPI(page, r.DPI)
		if err != nil {
			fmt.Printf("[Preview] Failed to render page %d of %s: %v\n", page+1, base, err)
			continue
		}

		name := naming.Generate(fmt.Sprintf("%s_page%d.jpg", base, page+1), "preview", "").StoredName
		out, err := os.Create(filepath.Join(destDir, name))
		if err != nil {
			fmt.Printf("[Preview] Failed to create thumbnail file: %v\n", err)
			continue
		}
		if err := jpeg.Encode(out, img, &jpeg.Options{Quality: r.Quality}); err != nil {
			out.Close()
			os.Remove(filepath.Join(destDir, name))
			fmt.Printf("[Preview] Failed to encode page %d: %v\n", page+1, err)
			continue
		}
		out.Close()
		thumbs = append(thumbs, name)
	}
	return thumbs, nil
}
