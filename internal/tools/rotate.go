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

// RotateTool rotates the selected pages (or all pages) by a fixed
// angle. Valid angles are multiples of 90.
type RotateTool struct{}

func (RotateTool) ID() string { return "rotate" }

func (RotateTool) Run(ctx context.Context, req Request) (models.ToolResult, error) {
	angle := req.Options.Int("rotation_angle", 90)
	if angle%90 != 0 {
		return models.ErrorResult(fmt.Sprintf("Invalid rotation angle: %d", angle)), nil
	}

	path := req.Path()
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	name := naming.Generate(stem+"_rotated.pdf", "rotate", ".pdf")
	outPath := filepath.Join(req.OutputDir, name.StoredName)

	if err := api.RotateFile(path, outPath, angle, pageSelection(req.Pages), nil); err != nil {
		return models.ErrorResult(fmt.Sprintf("Rotation failed: %v", err)), nil
	}
	out := models.OutputFile{
		DisplayName: name.DisplayName,
		StoredName:  name.StoredName,
		OutputPath:  outPath,
	}
	return models.SuccessResult([]models.OutputFile{out},
		fmt.Sprintf("Rotated by %d degrees", angle)), nil
}
