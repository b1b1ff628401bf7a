package tools

import (
	"context"
	"strconv"
	"strings"

	"github.com/quickpdf/backend/internal/models"
)

// Request carries everything a tool needs for one invocation. Single-input
// tools receive exactly one path; merge receives the whole batch at once.
type Request struct {
	Paths     []string
	Pages     []int // 1-based page selection, nil means all pages
	Options   Options
	OutputDir string
}

// Path returns the first input path for single-input tools.
func (r Request) Path() string {
	if len(r.Paths) == 0 {
		return ""
	}
	return r.Paths[0]
}

// Tool is one entry of the closed tool set. Run reports operational
// failures (bad password, unreadable file) inside the ToolResult; the
// error return is reserved for faults the caller should log.
type Tool interface {
	ID() string
	Run(ctx context.Context, req Request) (models.ToolResult, error)
}

// Options holds the raw per-tool options as sent by the client. Values
// arrive as strings regardless of their logical type, so every accessor
// takes a fallback.
type Options map[string]string

func (o Options) String(key, fallback string) string {
	v, ok := o[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

func (o Options) Int(key string, fallback int) int {
	v, ok := o[key]
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}
	return n
}

func (o Options) Float(key string, fallback float64) float64 {
	v, ok := o[key]
	if !ok {
		return fallback
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return fallback
	}
	return f
}

func (o Options) Bool(key string, fallback bool) bool {
	v, ok := o[key]
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	}
	return fallback
}

// pageSelection converts a 1-based page list into the string form the
// pdfcpu page selection parser expects.
func pageSelection(pages []int) []string {
	if len(pages) == 0 {
		return nil
	}
	sel := make([]string, 0, len(pages))
	for _, p := range pages {
		if p < 1 {
			continue
		}
		sel = append(sel, strconv.Itoa(p))
	}
	if len(sel) == 0 {
		return nil
	}
	return sel
}
