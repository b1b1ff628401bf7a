// Package pdfdoc holds small read-only PDF introspection helpers shared
// by the preview and tool layers.
package pdfdoc

import (
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// PageCount returns the number of pages in the document. Encrypted or
// unreadable documents report 0 rather than an error; callers treat an
// unknown count as "cannot preview yet".
func PageCount(path string) int {
	if n, err := api.PageCountFile(path); err == nil {
		return n
	}
	// Fallback reader for files pdfcpu refuses but that are still
	// structurally readable.
	f, r, err := pdf.Open(path)
	if err != nil {
		return 0
	}
	defer f.Close()
	return r.NumPage()
}

// IsEncrypted reports whether the document requires a password to open.
func IsEncrypted(path string) bool {
	_, err := api.PageCountFile(path)
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "password") || strings.Contains(msg, "encrypt") {
		return true
	}
	// pdfcpu error text is not a contract; fall back to scanning the
	// trailer region for an /Encrypt reference.
	return hasEncryptMarker(path)
}

func hasEncryptMarker(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	const tail = 4096
	info, err := f.Stat()
	if err != nil {
		return false
	}
	off := info.Size() - tail
	if off < 0 {
		off = 0
	}
	buf := make([]byte, tail)
	n, _ := f.ReadAt(buf, off)
	return strings.Contains(string(buf[:n]), "/Encrypt")
}
