package tools

import (
	"context"
	"fmt"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/ledongthuc/pdf"

	"github.com/quickpdf/backend/internal/models"
	"github.com/quickpdf/backend/internal/naming"
)

// JPGTool rasterizes PDF pages to JPG images, one file per page.
type JPGTool struct{}

func (JPGTool) ID() string { return "pdf-to-jpg" }

func (JPGTool) Run(ctx context.Context, req Request) (models.ToolResult, error) {
	path := req.Path()
	dpi := req.Options.Int("dpi", 300)
	if dpi < 36 || dpi > 600 {
		dpi = 300
	}

	doc, err := fitz.New(path)
	if err != nil {
		return models.ErrorResult(fmt.Sprintf("Could not open PDF: %v", err)), nil
	}
	defer doc.Close()

	total := doc.NumPage()
	pages := clampPages(req.Pages, total)
	if len(pages) == 0 {
		for p := 1; p <= total; p++ {
			pages = append(pages, p)
		}
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	var outputs []models.OutputFile
	for _, page := range pages {
		img, err := doc.ImageDPI(page-1, float64(dpi))
		if err != nil {
			fmt.Printf("[Tools] Rendering page %d failed: %v\n", page, err)
			continue
		}
		name := naming.Generate(fmt.Sprintf("%s_page_%d.jpg", stem, page), "jpg", ".jpg")
		outPath := filepath.Join(req.OutputDir, name.StoredName)
		f, err := os.Create(outPath)
		if err != nil {
			fmt.Printf("[Tools] Could not create %s: %v\n", outPath, err)
			continue
		}
		encErr := jpeg.Encode(f, img, &jpeg.Options{Quality: 90})
		closeErr := f.Close()
		if encErr != nil || closeErr != nil {
			os.Remove(outPath)
			fmt.Printf("[Tools] Encoding page %d failed: %v\n", page, encErr)
			continue
		}
		outputs = append(outputs, models.OutputFile{
			DisplayName: name.DisplayName,
			StoredName:  name.StoredName,
			OutputPath:  outPath,
		})
	}
	if len(outputs) == 0 {
		return models.ErrorResult("No pages could be converted"), nil
	}
	return models.SuccessResult(outputs,
		fmt.Sprintf("Converted %d pages to JPG at %d DPI", len(outputs), dpi)), nil
}

// TextTool extracts plain text from a PDF into a .txt file.
type TextTool struct{}

func (TextTool) ID() string { return "pdf-to-text" }

func (TextTool) Run(ctx context.Context, req Request) (models.ToolResult, error) {
	path := req.Path()
	includePageNumbers := req.Options.Bool("include_page_numbers", true)

	f, r, err := pdf.Open(path)
	if err != nil {
		return models.ErrorResult(fmt.Sprintf("Could not open PDF: %v", err)), nil
	}
	defer f.Close()

	total := r.NumPage()
	pages := clampPages(req.Pages, total)
	if len(pages) == 0 {
		for p := 1; p <= total; p++ {
			pages = append(pages, p)
		}
	}

	var sb strings.Builder
	extracted := 0
	for _, page := range pages {
		p := r.Page(page)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			fmt.Printf("[Tools] Text extraction on page %d failed: %v\n", page, err)
			continue
		}
		if includePageNumbers {
			fmt.Fprintf(&sb, "--- Page %d ---\n", page)
		}
		sb.WriteString(text)
		sb.WriteString("\n")
		extracted++
	}
	if extracted == 0 {
		return models.ErrorResult("No text could be extracted"), nil
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	name := naming.Generate(stem+".txt", "text", ".txt")
	outPath := filepath.Join(req.OutputDir, name.StoredName)
	if err := os.WriteFile(outPath, []byte(sb.String()), 0o644); err != nil {
		return models.ErrorResult(fmt.Sprintf("Could not write text file: %v", err)), nil
	}
	out := models.OutputFile{
		DisplayName: name.DisplayName,
		StoredName:  name.StoredName,
		OutputPath:  outPath,
	}
	return models.SuccessResult([]models.OutputFile{out},
		fmt.Sprintf("Extracted text from %d pages", extracted)), nil
}
