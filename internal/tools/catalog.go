package tools

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Descriptor describes one tool for catalog listings and for the
// dispatcher's input validation.
type Descriptor struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	MinFiles    int    `yaml:"min_files" json:"min_files"`
	MaxFiles    int    `yaml:"max_files" json:"max_files"`
	MaxSizeMB   int64  `yaml:"max_size_mb" json:"max_size_mb"`
	// SingleShot tools consume the whole input batch in one call
	// instead of being invoked once per file.
	SingleShot bool `yaml:"single_shot" json:"-"`
}

// Catalog holds the descriptors of the closed tool set.
type Catalog struct {
	byID map[string]Descriptor
}

type catalogFile struct {
	Tools []Descriptor `yaml:"tools"`
}

const defaultCatalogYAML = `
tools:
  - id: merge
    name: Merge PDFs
    description: Combine multiple PDF files into a single document
    min_files: 2
    max_files: 20
    max_size_mb: 10
    single_shot: true
  - id: split
    name: Split PDF
    description: Split a PDF into individual pages
    min_files: 1
    max_files: 10
    max_size_mb: 10
  - id: rotate
    name: Rotate PDF
    description: Rotate pages of a PDF by a fixed angle
    min_files: 1
    max_files: 10
    max_size_mb: 10
  - id: compress
    name: Compress PDF
    description: Reduce PDF file size
    min_files: 1
    max_files: 10
    max_size_mb: 10
  - id: pdf-to-jpg
    name: PDF to JPG
    description: Convert PDF pages to JPG images
    min_files: 1
    max_files: 10
    max_size_mb: 10
  - id: pdf-to-text
    name: PDF to Text
    description: Extract plain text from a PDF
    min_files: 1
    max_files: 10
    max_size_mb: 10
  - id: unlock
    name: Unlock PDF
    description: Remove password protection from a PDF
    min_files: 1
    max_files: 1
    max_size_mb: 10
  - id: protect
    name: Protect PDF
    description: Add password protection and permissions to a PDF
    min_files: 1
    max_files: 1
    max_size_mb: 10
`

// DefaultCatalog returns the built-in tool catalog.
func DefaultCatalog() *Catalog {
	c, err := parseCatalog([]byte(defaultCatalogYAML))
	if err != nil {
		panic(fmt.Sprintf("built-in tool catalog is invalid: %v", err))
	}
	return c
}

// LoadCatalog reads descriptors from a YAML file, falling back to the
// built-in catalog when the file does not exist.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Printf("[Tools] No catalog at %s, using built-in tool set\n", path)
			return DefaultCatalog(), nil
		}
		return nil, fmt.Errorf("failed to read tool catalog: %w", err)
	}
	return parseCatalog(data)
}

func parseCatalog(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse tool catalog: %w", err)
	}
	c := &Catalog{byID: make(map[string]Descriptor, len(f.Tools))}
	for _, d := range f.Tools {
		if d.ID == "" {
			return nil, fmt.Errorf("tool catalog entry without id")
		}
		if d.MinFiles < 1 {
			d.MinFiles = 1
		}
		if d.MaxFiles < d.MinFiles {
			d.MaxFiles = d.MinFiles
		}
		if d.MaxSizeMB <= 0 {
			d.MaxSizeMB = 10
		}
		c.byID[d.ID] = d
	}
	return c, nil
}

// Get looks up a descriptor by tool id.
func (c *Catalog) Get(id string) (Descriptor, bool) {
	d, ok := c.byID[id]
	return d, ok
}

// List returns all descriptors sorted by id.
func (c *Catalog) List() []Descriptor {
	out := make([]Descriptor, 0, len(c.byID))
	for _, d := range c.byID {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
