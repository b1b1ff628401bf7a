package tools

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/quickpdf/backend/internal/models"
	"github.com/quickpdf/backend/internal/naming"
)

// UnlockTool removes password protection from a single document.
type UnlockTool struct{}

func (UnlockTool) ID() string { return "unlock" }

func (UnlockTool) Run(ctx context.Context, req Request) (models.ToolResult, error) {
	password := req.Options.String("password", "")
	if password == "" {
		return models.ErrorResult("Password is required to unlock a PDF"), nil
	}

	path := req.Path()
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	name := naming.Generate(stem+"_unlocked.pdf", "unlock", ".pdf")
	outPath := filepath.Join(req.OutputDir, name.StoredName)

	conf := model.NewDefaultConfiguration()
	conf.UserPW = password
	conf.OwnerPW = password
	if err := api.DecryptFile(path, outPath, conf); err != nil {
		return models.ErrorResult("Could not unlock PDF, the password may be incorrect"), nil
	}
	out := models.OutputFile{
		DisplayName: name.DisplayName,
		StoredName:  name.StoredName,
		OutputPath:  outPath,
	}
	return models.SuccessResult([]models.OutputFile{out}, "PDF unlocked successfully"), nil
}

// ProtectTool encrypts a single document with a password and
// permission flags.
type ProtectTool struct{}

func (ProtectTool) ID() string { return "protect" }

func (ProtectTool) Run(ctx context.Context, req Request) (models.ToolResult, error) {
	password := req.Options.String("password", "")
	if password == "" {
		return models.ErrorResult("Password is required to protect a PDF"), nil
	}

	path := req.Path()
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	name := naming.Generate(stem+"_protected.pdf", "protect", ".pdf")
	outPath := filepath.Join(req.OutputDir, name.StoredName)

	conf := model.NewDefaultConfiguration()
	conf.UserPW = password
	conf.OwnerPW = password
	conf.Permissions = permissionFlags(req.Options)
	if err := api.EncryptFile(path, outPath, conf); err != nil {
		return models.ErrorResult(fmt.Sprintf("Could not protect PDF: %v", err)), nil
	}
	out := models.OutputFile{
		DisplayName: name.DisplayName,
		StoredName:  name.StoredName,
		OutputPath:  outPath,
	}
	return models.SuccessResult([]models.OutputFile{out}, "PDF protected successfully"), nil
}

// permissionFlags maps the allow_* options to pdfcpu permission bits.
// Everything is allowed unless explicitly disabled.
func permissionFlags(opts Options) model.PermissionFlags {
	printing := opts.Bool("allow_printing", true)
	copying := opts.Bool("allow_copying", true)
	modification := opts.Bool("allow_modification", true)

	if printing && copying && modification {
		return model.PermissionsAll
	}
	if printing {
		return model.PermissionsPrint
	}
	return model.PermissionsNone
}
