package tools

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/quickpdf/backend/internal/models"
	"github.com/quickpdf/backend/internal/naming"
	"github.com/quickpdf/backend/internal/pdfdoc"
)

// SplitTool extracts the selected pages of a document into one PDF
// per page. Page selection comes from the page_ranges option first,
// then from the request's page list, then defaults to all pages.
type SplitTool struct{}

func (SplitTool) ID() string { return "split" }

func (SplitTool) Run(ctx context.Context, req Request) (models.ToolResult, error) {
	path := req.Path()
	total := pdfdoc.PageCount(path)
	if total == 0 {
		return models.ErrorResult("Could not read PDF page count"), nil
	}

	pages := parsePageRanges(req.Options.String("page_ranges", ""), total)
	if len(pages) == 0 {
		pages = clampPages(req.Pages, total)
	}
	if len(pages) == 0 {
		for p := 1; p <= total; p++ {
			pages = append(pages, p)
		}
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	var outputs []models.OutputFile
	for _, page := range pages {
		name := naming.Generate(fmt.Sprintf("%s_page_%d.pdf", stem, page), "split", ".pdf")
		outPath := filepath.Join(req.OutputDir, name.StoredName)
		if err := api.TrimFile(path, outPath, []string{strconv.Itoa(page)}, nil); err != nil {
			fmt.Printf("[Tools] Split of page %d failed: %v\n", page, err)
			continue
		}
		outputs = append(outputs, models.OutputFile{
			DisplayName: name.DisplayName,
			StoredName:  name.StoredName,
			OutputPath:  outPath,
		})
	}
	if len(outputs) == 0 {
		return models.ErrorResult("No pages could be extracted"), nil
	}
	return models.SuccessResult(outputs,
		fmt.Sprintf("Split into %d pages", len(outputs))), nil
}

// parsePageRanges expands a string like "1-3,5,9" into sorted unique
// page numbers clamped to [1, total].
func parsePageRanges(s string, total int) []int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	set := make(map[int]bool)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if lo, hi, ok := strings.Cut(part, "-"); ok {
			start, err1 := strconv.Atoi(strings.TrimSpace(lo))
			end, err2 := strconv.Atoi(strings.TrimSpace(hi))
			if err1 != nil || err2 != nil {
				continue
			}
			if start < 1 {
				start = 1
			}
			if end > total {
				end = total
			}
			for p := start; p <= end; p++ {
				set[p] = true
			}
		} else if p, err := strconv.Atoi(part); err == nil && p >= 1 && p <= total {
			set[p] = true
		}
	}
	pages := make([]int, 0, len(set))
	for p := range set {
		pages = append(pages, p)
	}
	sort.Ints(pages)
	return pages
}

func clampPages(pages []int, total int) []int {
	var out []int
	for _, p := range pages {
		if p >= 1 && p <= total {
			out = append(out, p)
		}
	}
	sort.Ints(out)
	return out
}
