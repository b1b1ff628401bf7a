package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"

	"github.com/quickpdf/backend/internal/models"
	"github.com/quickpdf/backend/internal/storage"
)

// Dispatcher validates tool requests, throttles them, runs the tool
// implementations and canonicalizes their results. Tool failures are
// reported inside the ToolResult so one bad file never takes down the
// request.
type Dispatcher struct {
	layout  *storage.Layout
	catalog *Catalog
	limiter *Limiter
	tools   map[string]Tool
}

// NewDispatcher wires the closed tool set against the given layout.
func NewDispatcher(layout *storage.Layout, catalog *Catalog, perMinute int) *Dispatcher {
	d := &Dispatcher{
		layout:  layout,
		catalog: catalog,
		limiter: NewLimiter(perMinute),
		tools:   make(map[string]Tool),
	}
	for _, t := range []Tool{
		MergeTool{},
		SplitTool{},
		RotateTool{},
		CompressTool{},
		JPGTool{},
		TextTool{},
		UnlockTool{},
		ProtectTool{},
	} {
		d.register(t)
	}
	return d
}

func (d *Dispatcher) register(t Tool) {
	if _, ok := d.catalog.Get(t.ID()); !ok {
		fmt.Printf("[Tools] Tool %s has no catalog entry, skipping\n", t.ID())
		return
	}
	d.tools[t.ID()] = t
}

// Catalog returns the descriptors of the registered tools.
func (d *Dispatcher) Catalog() []Descriptor {
	all := d.catalog.List()
	out := all[:0]
	for _, desc := range all {
		if _, ok := d.tools[desc.ID]; ok {
			out = append(out, desc)
		}
	}
	return out
}

// Execute runs toolID against the given input paths. Pages maps the
// base name of an input to its 1-based page selection. The returned
// result always has a definite status, never an error return: every
// failure mode is folded into an error-status result.
func (d *Dispatcher) Execute(ctx context.Context, sessionID, toolID string, inputPaths []string, pages map[string][]int, options map[string]string) models.ToolResult {
	tool, ok := d.tools[toolID]
	if !ok {
		return models.ErrorResult(fmt.Sprintf("Unknown tool: %s", toolID))
	}
	desc, _ := d.catalog.Get(toolID)

	if msg := d.validateInputs(desc, inputPaths); msg != "" {
		return models.ErrorResult(msg)
	}
	if err := d.limiter.Wait(ctx); err != nil {
		return models.ErrorResult("Request cancelled while waiting for a processing slot")
	}

	outputDir, err := d.layout.DirFor(sessionID, storage.ClassProcessed)
	if err != nil {
		return models.ErrorResult(fmt.Sprintf("Could not prepare output folder: %v", err))
	}

	fmt.Printf("[Tools %.8s] Running %s on %d files\n", sessionID, toolID, len(inputPaths))
	result := d.run(ctx, tool, desc, inputPaths, pages, options, outputDir)

	if result.Status == models.ToolSuccess && len(result.OutputFiles) > 1 {
		bundled, err := bundleOutputs(outputDir, toolID, result.OutputFiles)
		if err != nil {
			fmt.Printf("[Tools %.8s] Bundling failed: %v\n", sessionID, err)
			return models.ErrorResult("Processing succeeded but the results could not be packaged")
		}
		result.OutputFiles = []models.OutputFile{bundled}
	}

	d.removeConsumedUploads(sessionID, inputPaths)
	return result
}

// run executes the tool with panic isolation. A panicking tool is
// reported as an error result, not a crashed request.
func (d *Dispatcher) run(ctx context.Context, tool Tool, desc Descriptor, inputPaths []string, pages map[string][]int, options map[string]string, outputDir string) (result models.ToolResult) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("[Tools] %s panicked: %v\n%s", desc.ID, r, debug.Stack())
			result = models.ErrorResult(fmt.Sprintf("Tool %s failed unexpectedly", desc.ID))
		}
	}()

	opts := Options(options)
	if desc.SingleShot {
		res, err := tool.Run(ctx, Request{
			Paths:     inputPaths,
			Options:   opts,
			OutputDir: outputDir,
		})
		return normalize(res, err, desc.ID)
	}

	var outputs []models.OutputFile
	var failures []string
	for _, path := range inputPaths {
		res, err := tool.Run(ctx, Request{
			Paths:     []string{path},
			Pages:     pages[filepath.Base(path)],
			Options:   opts,
			OutputDir: outputDir,
		})
		res = normalize(res, err, desc.ID)
		if res.Status != models.ToolSuccess {
			fmt.Printf("[Tools] %s failed on %s: %s\n", desc.ID, filepath.Base(path), res.Message)
			failures = append(failures, res.Message)
			continue
		}
		outputs = append(outputs, res.OutputFiles...)
	}

	if len(outputs) == 0 {
		msg := "Processing produced no output"
		if len(failures) > 0 {
			msg = failures[0]
		}
		return models.ErrorResult(msg)
	}
	msg := fmt.Sprintf("Processed %d of %d files", len(inputPaths)-len(failures), len(inputPaths))
	return models.SuccessResult(outputs, msg)
}

// normalize folds the different ways a tool can report failure into
// one canonical result shape.
func normalize(res models.ToolResult, err error, toolID string) models.ToolResult {
	if err != nil {
		return models.ErrorResult(fmt.Sprintf("Tool %s failed: %v", toolID, err))
	}
	if res.Status == models.ToolSuccess && len(res.OutputFiles) == 0 {
		return models.ErrorResult(fmt.Sprintf("Tool %s reported success without output", toolID))
	}
	for i, out := range res.OutputFiles {
		if out.StoredName == "" {
			res.OutputFiles[i].StoredName = filepath.Base(out.OutputPath)
		}
		if out.DisplayName == "" {
			res.OutputFiles[i].DisplayName = filepath.Base(out.OutputPath)
		}
	}
	return res
}

func (d *Dispatcher) validateInputs(desc Descriptor, inputPaths []string) string {
	if len(inputPaths) == 0 {
		return "No files provided"
	}
	if len(inputPaths) < desc.MinFiles {
		return fmt.Sprintf("%s requires at least %d files", desc.Name, desc.MinFiles)
	}
	if len(inputPaths) > desc.MaxFiles {
		return fmt.Sprintf("%s accepts at most %d files", desc.Name, desc.MaxFiles)
	}
	limit := desc.MaxSizeMB * 1024 * 1024
	for _, path := range inputPaths {
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Sprintf("File %s is not available", filepath.Base(path))
		}
		if info.Size() > limit {
			return fmt.Sprintf("File %s exceeds the %d MB size limit", filepath.Base(path), desc.MaxSizeMB)
		}
	}
	return ""
}

// removeConsumedUploads deletes input files living in the session's
// uploads folder. Inputs from the processed folder (chained tool runs)
// stay in place.
func (d *Dispatcher) removeConsumedUploads(sessionID string, inputPaths []string) {
	uploadsRoot := d.layout.ClassRoot(storage.ClassUploads)
	for _, path := range inputPaths {
		if !strings.HasPrefix(path, uploadsRoot+string(os.PathSeparator)) {
			continue
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			fmt.Printf("[Tools %.8s] Could not remove consumed upload %s: %v\n", sessionID, filepath.Base(path), err)
		}
	}
}
