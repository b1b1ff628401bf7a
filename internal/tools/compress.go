package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/quickpdf/backend/internal/models"
	"github.com/quickpdf/backend/internal/naming"
)

// CompressTool rewrites a document with redundant objects removed.
type CompressTool struct{}

func (CompressTool) ID() string { return "compress" }

func (CompressTool) Run(ctx context.Context, req Request) (models.ToolResult, error) {
	path := req.Path()
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	name := naming.Generate(stem+"_compressed.pdf", "compress", ".pdf")
	outPath := filepath.Join(req.OutputDir, name.StoredName)

	if err := api.OptimizeFile(path, outPath, nil); err != nil {
		return models.ErrorResult(fmt.Sprintf("Compression failed: %v", err)), nil
	}

	msg := "PDF compressed successfully"
	if before, after := fileSize(path), fileSize(outPath); before > 0 && after > 0 {
		saved := 100 - after*100/before
		if saved < 0 {
			saved = 0
		}
		msg = fmt.Sprintf("PDF compressed successfully, size reduced by %d%%", saved)
	}
	out := models.OutputFile{
		DisplayName: name.DisplayName,
		StoredName:  name.StoredName,
		OutputPath:  outPath,
	}
	return models.SuccessResult([]models.OutputFile{out}, msg), nil
}

func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}
