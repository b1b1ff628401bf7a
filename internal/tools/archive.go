package tools

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/quickpdf/backend/internal/models"
	"github.com/quickpdf/backend/internal/naming"
)

// bundleOutputs packs multiple tool outputs into a single zip archive
// in outputDir and removes the loose files. Archive entries carry the
// display names so the extracted files are recognizable.
func bundleOutputs(outputDir, toolID string, outputs []models.OutputFile) (models.OutputFile, error) {
	name := naming.Generate("processed_files.zip", toolID, ".zip")
	zipPath := filepath.Join(outputDir, name.StoredName)

	f, err := os.Create(zipPath)
	if err != nil {
		return models.OutputFile{}, fmt.Errorf("failed to create archive: %w", err)
	}
	zw := zip.NewWriter(f)

	seen := make(map[string]int)
	for _, out := range outputs {
		base := out.DisplayName
		if base == "" {
			base = filepath.Base(out.OutputPath)
		}
		entryName := base
		// Display names are not unique within a batch.
		if n := seen[base]; n > 0 {
			ext := filepath.Ext(base)
			entryName = fmt.Sprintf("%s_%d%s", base[:len(base)-len(ext)], n, ext)
		}
		seen[base]++

		if err := addZipEntry(zw, entryName, out.OutputPath); err != nil {
			zw.Close()
			f.Close()
			os.Remove(zipPath)
			return models.OutputFile{}, err
		}
	}
	if err := zw.Close(); err != nil {
		f.Close()
		os.Remove(zipPath)
		return models.OutputFile{}, fmt.Errorf("failed to finalize archive: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(zipPath)
		return models.OutputFile{}, fmt.Errorf("failed to write archive: %w", err)
	}

	for _, out := range outputs {
		if err := os.Remove(out.OutputPath); err != nil {
			fmt.Printf("[Tools] Could not remove bundled output %s: %v\n", out.OutputPath, err)
		}
	}
	return models.OutputFile{
		DisplayName: name.DisplayName,
		StoredName:  name.StoredName,
		OutputPath:  zipPath,
	}, nil
}

func addZipEntry(zw *zip.Writer, entryName, srcPath string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("failed to open %s for archiving: %w", srcPath, err)
	}
	defer src.Close()

	w, err := zw.Create(entryName)
	if err != nil {
		return fmt.Errorf("failed to add archive entry %s: %w", entryName, err)
	}
	if _, err := io.Copy(w, src); err != nil {
		return fmt.Errorf("failed to archive %s: %w", srcPath, err)
	}
	return nil
}
