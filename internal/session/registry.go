// Package session tracks per-user sessions: an opaque id, the files the
// session owns, and the countdown after which its storage is reclaimed.
// The registry is the single source of truth for session metadata; the
// filesystem is reconciled against it, never trusted blindly.
package session

import (
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/quickpdf/backend/internal/models"
	"github.com/quickpdf/backend/internal/naming"
	"github.com/quickpdf/backend/internal/storage"
)

// Registry maps session ids to their tracked files and countdown state.
// Sessions are best-effort and self-healing: operations on an unknown id
// create a fresh empty session rather than failing.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*record
	layout   *storage.Layout
	timeout  time.Duration
}

type record struct {
	createdAt time.Time
	expiresAt time.Time
	active    bool
	files     []models.TrackedFile // ordered, unique by StoredName
}

// NewRegistry creates a registry whose countdowns run for timeout.
func NewRegistry(layout *storage.Layout, timeout time.Duration) *Registry {
	return &Registry{
		sessions: make(map[string]*record),
		layout:   layout,
		timeout:  timeout,
	}
}

// Ensure returns id when it names a live session, adopts it as a fresh
// empty session when unknown, and mints a new uuid when id is empty.
func (r *Registry) Ensure(id string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id == "" {
		id = uuid.New().String()
		fmt.Printf("[Session %.8s] Created new session\n", id)
	}
	r.ensureLocked(id)
	return id
}

func (r *Registry) ensureLocked(id string) *record {
	rec, ok := r.sessions[id]
	if !ok {
		now := time.Now()
		rec = &record{
			createdAt: now,
			expiresAt: now.Add(r.timeout),
		}
		r.sessions[id] = rec
	}
	return rec
}

// Track appends a file to the session, or replaces the existing entry
// with the same stored name (duplicate guard).
func (r *Registry) Track(id, storedName, displayName string, kind models.FileKind) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec := r.ensureLocked(id)
	tf := models.TrackedFile{
		StoredName:  storedName,
		DisplayName: displayName,
		Kind:        kind,
		CreatedAt:   time.Now(),
	}
	if info, err := r.layout.Stat(id, classFor(kind), storedName); err == nil {
		tf.Size = info.Size()
		tf.CreatedAt = info.ModTime()
	}
	for i, f := range rec.files {
		if f.StoredName == storedName {
			rec.files[i] = tf
			return
		}
	}
	rec.files = append(rec.files, tf)
}

// TrackedFiles returns the session's files of the given kind, oldest
// first. Pass an empty kind for all files.
func (r *Registry) TrackedFiles(id string, kind models.FileKind) []models.TrackedFile {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.sessions[id]
	if !ok {
		return nil
	}
	out := make([]models.TrackedFile, 0, len(rec.files))
	for _, f := range rec.files {
		if kind == "" || f.Kind == kind {
			out = append(out, f)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Lookup returns the tracked file with the given stored name.
func (r *Registry) Lookup(id, storedName string) (models.TrackedFile, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.sessions[id]
	if !ok {
		return models.TrackedFile{}, false
	}
	for _, f := range rec.files {
		if f.StoredName == storedName {
			return f, true
		}
	}
	return models.TrackedFile{}, false
}

// Rename gives a tracked file a new display stem. The on-disk rename runs
// first; metadata is only mutated once the disk rename succeeded, so a
// disk failure leaves the registry untouched. The extension of the old
// stored name is preserved. Returns the new stored name.
func (r *Registry) Rename(id, storedName, newStem string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec := r.ensureLocked(id)
	idx := -1
	for i, f := range rec.files {
		if f.StoredName == storedName {
			idx = i
			break
		}
	}
	if idx == -1 {
		return "", fmt.Errorf("file not tracked: %s", storedName)
	}

	newName := naming.WithStem(storedName, newStem)
	class := classFor(rec.files[idx].Kind)
	if err := r.layout.Rename(id, class, storedName, newName.StoredName); err != nil {
		return "", err
	}

	rec.files[idx].StoredName = newName.StoredName
	rec.files[idx].DisplayName = newStem + filepath.Ext(storedName)
	return newName.StoredName, nil
}

// Remove drops a tracked file from both disk and metadata. Metadata is
// dropped even when the disk delete fails; the file is then garbage for
// the sweep.
func (r *Registry) Remove(id, storedName string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.sessions[id]
	if !ok {
		return
	}
	for i, f := range rec.files {
		if f.StoredName != storedName {
			continue
		}
		if err := r.layout.RemoveFile(id, classFor(f.Kind), storedName); err != nil {
			fmt.Printf("[Session %.8s] Failed to delete %s: %v\n", id, storedName, err)
		}
		rec.files = append(rec.files[:i], rec.files[i+1:]...)
		return
	}
}

// Reconcile re-derives the session's file list from disk: entries whose
// file is gone are dropped (a sweep, a tool consuming its inputs, or a
// crash already reclaimed them), and CreatedAt is backfilled from mtime
// where missing. This is what makes a concurrent sweep racing a listing
// benign.
func (r *Registry) Reconcile(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.sessions[id]
	if !ok {
		return
	}

	kept := rec.files[:0]
	for _, f := range rec.files {
		info, err := r.layout.Stat(id, classFor(f.Kind), f.StoredName)
		if err != nil {
			fmt.Printf("[Session %.8s] Dropping tracked file %s: gone from disk\n", id, f.StoredName)
			continue
		}
		if f.CreatedAt.IsZero() {
			f.CreatedAt = info.ModTime()
		}
		f.Size = info.Size()
		kept = append(kept, f)
	}
	rec.files = kept
}

// RestartCountdown resets the session's expiry to now + timeout.
func (r *Registry) RestartCountdown(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec := r.ensureLocked(id)
	rec.expiresAt = time.Now().Add(r.timeout)
	rec.active = true
}

// Countdown reports the session's remaining lifetime. A countdown whose
// expiry has passed reports inactive, so a lapsed session is eligible
// for the sweep again.
func (r *Registry) Countdown(id string) models.CountdownStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.sessions[id]
	if !ok {
		return models.CountdownStatus{}
	}
	remaining := time.Until(rec.expiresAt)
	active := rec.active
	if remaining <= 0 {
		remaining = 0
		active = false
	}
	return models.CountdownStatus{
		Active:           active,
		StartTime:        rec.createdAt.Unix(),
		EndTime:          rec.expiresAt.Unix(),
		RemainingSeconds: int64(remaining.Seconds()),
	}
}

// Drop removes the session record. Disk cleanup is the caller's business.
func (r *Registry) Drop(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// IDs returns a snapshot of all known session ids.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	return ids
}

func classFor(kind models.FileKind) storage.Class {
	if kind == models.KindProcessed {
		return storage.ClassProcessed
	}
	return storage.ClassUploads
}
