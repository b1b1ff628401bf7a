// Package naming generates collision-resistant stored file names while
// keeping the user-supplied name for display only.
package naming

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Name pairs the on-disk stored name with the user-facing display name.
// The display name is never used for path construction.
type Name struct {
	DisplayName string `json:"displayName"`
	StoredName  string `json:"storedName"`
}

// Generate builds a stored name of the form
//
//	[<tool>_]<8 hex>_<unix seconds><.ext>
//
// The 8 hex characters come from a fresh UUID, so two concurrent calls in
// the same wall-clock second still get distinct names. When ext is empty
// the extension is taken from originalName; either way it is lowercased
// and dot-prefixed. The display name is originalName untouched.
func Generate(originalName, toolName, ext string) Name {
	if ext == "" {
		ext = filepath.Ext(originalName)
	}
	ext = normalizeExt(ext)

	unique := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	timestamp := time.Now().Unix()

	var stored string
	if toolName != "" {
		stored = fmt.Sprintf("%s_%s_%d%s", toolName, unique, timestamp, ext)
	} else {
		stored = fmt.Sprintf("%s_%d%s", unique, timestamp, ext)
	}

	return Name{
		DisplayName: originalName,
		StoredName:  stored,
	}
}

// WithStem returns a stored name that keeps the extension of old but
// replaces everything before it with a freshly generated name for stem.
// Used by rename so the new name stays collision-resistant.
func WithStem(oldStored, newStem string) Name {
	return Generate(newStem+filepath.Ext(oldStored), "", filepath.Ext(oldStored))
}

func normalizeExt(ext string) string {
	ext = strings.TrimSpace(strings.ToLower(ext))
	if ext == "" {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
