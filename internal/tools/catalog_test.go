package tools

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultCatalogCoversToolSet(t *testing.T) {
	c := DefaultCatalog()
	for _, id := range []string{"merge", "split", "rotate", "compress", "pdf-to-jpg", "pdf-to-text", "unlock", "protect"} {
		d, ok := c.Get(id)
		if !ok {
			t.Fatalf("missing catalog entry for %s", id)
		}
		if d.Name == "" || d.Description == "" {
			t.Fatalf("catalog entry %s is incomplete: %+v", id, d)
		}
		if d.MaxSizeMB <= 0 {
			t.Fatalf("catalog entry %s has no size limit", id)
		}
	}

	merge, _ := c.Get("merge")
	if merge.MinFiles != 2 || !merge.SingleShot {
		t.Fatalf("merge must be a multi-file single-shot tool: %+v", merge)
	}
	for _, id := range []string{"unlock", "protect"} {
		d, _ := c.Get(id)
		if d.MinFiles != 1 || d.MaxFiles != 1 {
			t.Fatalf("%s must accept exactly one file: %+v", id, d)
		}
	}
}

func TestLoadCatalogMissingFileFallsBack(t *testing.T) {
	c, err := LoadCatalog(filepath.Join(t.TempDir(), "tools.yaml"))
	if err != nil {
		t.Fatalf("missing file should not be an error: %v", err)
	}
	if _, ok := c.Get("merge"); !ok {
		t.Fatalf("fallback catalog should contain merge")
	}
}

func TestLoadCatalogFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tools.yaml")
	data := `
tools:
  - id: merge
    name: Custom Merge
    description: override
    min_files: 3
    max_files: 4
    max_size_mb: 25
    single_shot: true
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("writing catalog: %v", err)
	}

	c, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("loading catalog: %v", err)
	}
	d, ok := c.Get("merge")
	if !ok {
		t.Fatalf("merge missing from loaded catalog")
	}
	if d.Name != "Custom Merge" || d.MinFiles != 3 || d.MaxSizeMB != 25 {
		t.Fatalf("catalog values not honored: %+v", d)
	}
	if len(c.List()) != 1 {
		t.Fatalf("file catalog should replace the built-in set")
	}
}

func TestParseCatalogAppliesFloors(t *testing.T) {
	c, err := parseCatalog([]byte(`
tools:
  - id: odd
    name: Odd
    description: floors
    min_files: 0
    max_files: 0
    max_size_mb: 0
`))
	if err != nil {
		t.Fatalf("parsing: %v", err)
	}
	d, _ := c.Get("odd")
	if d.MinFiles != 1 || d.MaxFiles != 1 || d.MaxSizeMB != 10 {
		t.Fatalf("floors not applied: %+v", d)
	}
}

func TestSplitPageRanges(t *testing.T) {
	got := parsePageRanges("1-3, 5 ,9, junk, 40", 10)
	want := []int{1, 2, 3, 5, 9}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}

	if parsePageRanges("", 10) != nil {
		t.Fatalf("empty ranges should yield nil")
	}
	if got := parsePageRanges("8-20", 10); len(got) != 3 {
		t.Fatalf("out-of-range end should clamp, got %v", got)
	}
}
