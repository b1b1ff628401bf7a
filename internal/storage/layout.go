// Package storage maps (session id, storage class) pairs to isolated
// directories on disk and owns all direct filesystem manipulation for
// session-scoped files.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Class is one of the three purpose-specific storage roots.
type Class string

const (
	ClassUploads   Class = "uploads"
	ClassProcessed Class = "processed"
	ClassPreviews  Class = "previews"
)

// Classes returns all storage classes in a fixed order.
func Classes() []Class {
	return []Class{ClassUploads, ClassProcessed, ClassPreviews}
}

const sessionDirPrefix = "sess_"

// Layout manages the on-disk directory tree:
//
//	<root>/<class>/sess_<session id>/<flat files>
//
// Directories are created on demand and are removable as a unit. All
// methods are safe for concurrent use; the filesystem is the only shared
// state.
type Layout struct {
	root string
}

// NewLayout creates the three class roots under root.
func NewLayout(root string) (*Layout, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving storage root: %w", err)
	}
	for _, class := range Classes() {
		if err := os.MkdirAll(filepath.Join(abs, string(class)), 0755); err != nil {
			return nil, fmt.Errorf("creating %s root: %w", class, err)
		}
	}
	return &Layout{root: abs}, nil
}

// Root returns the deployment root.
func (l *Layout) Root() string { return l.root }

// ClassRoot returns the top-level directory for a storage class.
func (l *Layout) ClassRoot(class Class) string {
	return filepath.Join(l.root, string(class))
}

// DirFor returns the absolute session directory for (sessionID, class),
// creating it if absent. Session ids are minted server-side, but the path
// is still verified to stay inside the class root.
func (l *Layout) DirFor(sessionID string, class Class) (string, error) {
	classRoot := l.ClassRoot(class)
	dir := filepath.Join(classRoot, sessionDirPrefix+sessionID)
	if !strings.HasPrefix(dir, classRoot+string(filepath.Separator)) {
		return "", fmt.Errorf("session id escapes %s root: %q", class, sessionID)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating session directory: %w", err)
	}
	return dir, nil
}

// FilePath resolves a stored file name inside a session directory. The
// name must be a bare file name; anything that resolves outside the
// session directory is rejected.
func (l *Layout) FilePath(sessionID string, class Class, name string) (string, error) {
	dir, err := l.DirFor(sessionID, class)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, filepath.Base(name))
	if filepath.Dir(path) != dir {
		return "", fmt.Errorf("invalid file name: %q", name)
	}
	return path, nil
}

// SaveUpload streams r into the session's uploads directory under
// storedName and returns the absolute path and byte count.
func (l *Layout) SaveUpload(sessionID, storedName string, r io.Reader) (string, int64, error) {
	path, err := l.FilePath(sessionID, ClassUploads, storedName)
	if err != nil {
		return "", 0, err
	}
	f, err := os.Create(path)
	if err != nil {
		return "", 0, fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	size, err := io.Copy(f, r)
	if err != nil {
		os.Remove(path)
		return "", 0, fmt.Errorf("writing file: %w", err)
	}
	return path, size, nil
}

// Rename renames a stored file within one session directory.
func (l *Layout) Rename(sessionID string, class Class, oldName, newName string) error {
	oldPath, err := l.FilePath(sessionID, class, oldName)
	if err != nil {
		return err
	}
	newPath, err := l.FilePath(sessionID, class, newName)
	if err != nil {
		return err
	}
	if err := os.Rename(oldPath, newPath); err != nil {
		return fmt.Errorf("renaming file: %w", err)
	}
	return nil
}

// RemoveFile deletes a single stored file. A missing file is not an error.
func (l *Layout) RemoveFile(sessionID string, class Class, name string) error {
	path, err := l.FilePath(sessionID, class, name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting file: %w", err)
	}
	return nil
}

// Stat returns file info for a stored file, or an error when absent.
func (l *Layout) Stat(sessionID string, class Class, name string) (os.FileInfo, error) {
	path, err := l.FilePath(sessionID, class, name)
	if err != nil {
		return nil, err
	}
	return os.Stat(path)
}

// ListFiles returns the flat file names currently present in a session
// directory. A missing directory yields an empty list.
func (l *Layout) ListFiles(sessionID string, class Class) ([]string, error) {
	classRoot := l.ClassRoot(class)
	dir := filepath.Join(classRoot, sessionDirPrefix+sessionID)
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// RemoveSession deletes the session's directory in all three classes.
// Best effort: a failure on one class is logged and does not block the
// others.
func (l *Layout) RemoveSession(sessionID string) {
	for _, class := range Classes() {
		dir := filepath.Join(l.ClassRoot(class), sessionDirPrefix+sessionID)
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			continue
		}
		if err := os.RemoveAll(dir); err != nil {
			fmt.Printf("[Storage %.8s] Failed to remove %s directory: %v\n", sessionID, class, err)
			continue
		}
		fmt.Printf("[Storage %.8s] Removed %s directory\n", sessionID, class)
	}
}

// HasAnyDir reports whether any class still holds a directory for the
// session. A session is fully gone once this returns false.
func (l *Layout) HasAnyDir(sessionID string) bool {
	for _, class := range Classes() {
		dir := filepath.Join(l.ClassRoot(class), sessionDirPrefix+sessionID)
		if _, err := os.Stat(dir); err == nil {
			return true
		}
	}
	return false
}

// SweepAged removes session directories under class older than maxAge and
// returns how many were removed. Age is now minus the older of the
// directory's modification and change times. Directories that vanish
// between listing and removal (a concurrent RemoveSession) are skipped
// silently; other per-directory failures are logged and skipped.
func (l *Layout) SweepAged(class Class, maxAge time.Duration) int {
	classRoot := l.ClassRoot(class)
	entries, err := os.ReadDir(classRoot)
	if err != nil {
		if !os.IsNotExist(err) {
			fmt.Printf("[Storage] Failed to list %s root: %v\n", class, err)
		}
		return 0
	}

	now := time.Now()
	removed := 0
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), sessionDirPrefix) {
			continue
		}
		dir := filepath.Join(classRoot, e.Name())
		info, err := os.Stat(dir)
		if err != nil {
			// Benign race with a concurrent removal.
			continue
		}
		if now.Sub(oldestTime(info)) <= maxAge {
			continue
		}
		if err := os.RemoveAll(dir); err != nil {
			fmt.Printf("[Storage] Failed to sweep %s: %v\n", dir, err)
			continue
		}
		removed++
	}
	if removed > 0 {
		fmt.Printf("[Storage] Swept %d aged session directories from %s\n", removed, class)
	}
	return removed
}

// PurgeFiles unconditionally removes all regular files directly under dir.
// Used by the startup pass over legacy shared folders. Returns the number
// of files removed.
func PurgeFiles(dir string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	removed := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
			fmt.Printf("[Storage] Failed to purge %s: %v\n", e.Name(), err)
			continue
		}
		removed++
	}
	return removed
}
