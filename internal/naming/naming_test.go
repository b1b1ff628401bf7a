package naming

import (
	"strings"
	"sync"
	"testing"
)

func TestGenerate(t *testing.T) {
	t.Run("display name is untouched", func(t *testing.T) {
		n := Generate("My Report (final).PDF", "", "")
		if n.DisplayName != "My Report (final).PDF" {
			t.Errorf("Expected original display name, got %s", n.DisplayName)
		}
	})

	t.Run("extension is normalized from original name", func(t *testing.T) {
		n := Generate("doc.PDF", "", "")
		if !strings.HasSuffix(n.StoredName, ".pdf") {
			t.Errorf("Expected lowercase .pdf suffix, got %s", n.StoredName)
		}
	})

	t.Run("explicit extension wins and gains a dot", func(t *testing.T) {
		n := Generate("doc.pdf", "", "JPG")
		if !strings.HasSuffix(n.StoredName, ".jpg") {
			t.Errorf("Expected .jpg suffix, got %s", n.StoredName)
		}
	})

	t.Run("tool name becomes prefix", func(t *testing.T) {
		n := Generate("doc.pdf", "merge", "")
		if !strings.HasPrefix(n.StoredName, "merge_") {
			t.Errorf("Expected merge_ prefix, got %s", n.StoredName)
		}
	})

	t.Run("stored name splits unambiguously", func(t *testing.T) {
		n := Generate("doc.pdf", "split", "")
		parts := strings.Split(strings.TrimSuffix(n.StoredName, ".pdf"), "_")
		if len(parts) != 3 {
			t.Fatalf("Expected tool_hex_timestamp, got %v", parts)
		}
		if len(parts[1]) != 8 {
			t.Errorf("Expected 8 hex chars, got %q", parts[1])
		}
	})
}

func TestGenerate_NoCollisions(t *testing.T) {
	const n = 10000
	seen := make(map[string]bool, n)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < n/8; i++ {
				name := Generate("input.pdf", "", "").StoredName
				mu.Lock()
				if seen[name] {
					t.Errorf("Duplicate stored name: %s", name)
				}
				seen[name] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
}

func TestWithStem(t *testing.T) {
	n := WithStem("merge_ab12cd34_1700000000.pdf", "renamed")
	if !strings.HasSuffix(n.StoredName, ".pdf") {
		t.Errorf("Expected original extension preserved, got %s", n.StoredName)
	}
	if n.DisplayName != "renamed.pdf" {
		t.Errorf("Expected display name renamed.pdf, got %s", n.DisplayName)
	}
}
