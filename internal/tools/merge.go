package tools

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/quickpdf/backend/internal/models"
	"github.com/quickpdf/backend/internal/naming"
)

// MergeTool combines the whole input batch into one document.
type MergeTool struct{}

func (MergeTool) ID() string { return "merge" }

func (MergeTool) Run(ctx context.Context, req Request) (models.ToolResult, error) {
	inputs := orderedInputs(req.Paths, req.Options.String("file_order", ""))

	name := naming.Generate("merged_document.pdf", "merge", ".pdf")
	outPath := filepath.Join(req.OutputDir, name.StoredName)

	if err := api.MergeCreateFile(inputs, outPath, false, nil); err != nil {
		return models.ErrorResult(fmt.Sprintf("Merge failed: %v", err)), nil
	}
	out := models.OutputFile{
		DisplayName: name.DisplayName,
		StoredName:  name.StoredName,
		OutputPath:  outPath,
	}
	return models.SuccessResult([]models.OutputFile{out},
		fmt.Sprintf("Merged %d PDFs successfully", len(inputs))), nil
}

// orderedInputs reorders paths to match a comma-separated list of
// stored base names. Paths not mentioned keep their relative order at
// the end of the batch.
func orderedInputs(paths []string, order string) []string {
	if strings.TrimSpace(order) == "" {
		return paths
	}
	byBase := make(map[string]string, len(paths))
	for _, p := range paths {
		byBase[filepath.Base(p)] = p
	}
	ordered := make([]string, 0, len(paths))
	taken := make(map[string]bool, len(paths))
	for _, base := range strings.Split(order, ",") {
		base = strings.TrimSpace(base)
		if p, ok := byBase[base]; ok && !taken[p] {
			ordered = append(ordered, p)
			taken[p] = true
		}
	}
	for _, p := range paths {
		if !taken[p] {
			ordered = append(ordered, p)
		}
	}
	return ordered
}
