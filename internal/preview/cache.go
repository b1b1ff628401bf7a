// Package preview computes thumbnail previews for PDFs and caches the
// derived metadata so byte-identical uploads do not redo page counting.
package preview

import (
	"crypto/md5"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// PlaceholderName marks a thumbnail slot whose generation was skipped,
// typically because the input is encrypted and not yet unlocked.
const PlaceholderName = "no_preview_available.jpg"

// Entry is the cached derivation for one fingerprint: the stored
// thumbnail file names (meaningful only inside the preview directory they
// were generated into) and the page count.
type Entry struct {
	Thumbnails []string `json:"thumbnails" msgpack:"thumbnails"`
	PageCount  int      `json:"pageCount" msgpack:"pageCount"`
}

type cacheRecord struct {
	entry    Entry
	cachedAt time.Time
}

// Cache is a TTL-bounded fingerprint -> Entry map shared across all
// sessions. Eviction is lazy at read time; SweepExpired additionally
// bounds memory. One mutex guards the map; no lock is held across I/O.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cacheRecord
}

// NewCache creates a cache whose entries live for ttl.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]cacheRecord),
	}
}

// Get returns the entry for key if it is younger than the TTL. An aged
// entry is evicted as a side effect and reported as a miss, so a stale
// entry is never served even without sweeps.
func (c *Cache) Get(key string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec, ok := c.entries[key]
	if !ok {
		return Entry{}, false
	}
	if time.Since(rec.cachedAt) >= c.ttl {
		delete(c.entries, key)
		return Entry{}, false
	}
	return rec.entry, true
}

// Put unconditionally (re)inserts the entry and resets its age. The
// thumbnail list replaces the previous one wholesale; entries are never
// merged.
func (c *Cache) Put(key string, thumbnails []string, pageCount int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheRecord{
		entry:    Entry{Thumbnails: thumbnails, PageCount: pageCount},
		cachedAt: time.Now(),
	}
}

// Invalidate drops the entry for key if present.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// SweepExpired removes all aged entries and returns how many were
// dropped. Correctness does not depend on it (Get already refuses stale
// entries); it exists to bound memory between reads.
func (c *Cache) SweepExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, rec := range c.entries {
		if time.Since(rec.cachedAt) >= c.ttl {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Fingerprint derives the cache key for a file: an MD5 over the content
// bytes followed by the supplied password, so the same bytes opened with
// a different password form a distinct key.
func Fingerprint(path, password string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening file for fingerprint: %w", err)
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hashing file: %w", err)
	}
	if password != "" {
		io.WriteString(h, password)
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}
