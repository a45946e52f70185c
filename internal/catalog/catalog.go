// Package catalog provides the layout catalog, schema clustering, and fuzzy
// layout-name resolution for the deck-composer pipeline.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jonathan/deck-composer/internal/types"
)

// Catalog holds the immutable set of layout definitions loaded from a
// template inspection file. Safe for concurrent reads after construction.
type Catalog struct {
	Layouts []types.LayoutDefinition

	byName map[string]int
}

// catalogFile is the on-disk shape produced by the template inspector.
type catalogFile struct {
	TemplatePath string                   `json:"template_path,omitempty"`
	TotalLayouts int                      `json:"total_layouts,omitempty"`
	Layouts      []types.LayoutDefinition `json:"layouts"`
}

// New builds a catalog from layout definitions, preserving order. Duplicate
// layout names are rejected since resolution depends on name uniqueness.
func New(layouts []types.LayoutDefinition) (*Catalog, error) {
	byName := make(map[string]int, len(layouts))
	for i, layout := range layouts {
		if layout.Name == "" {
			return nil, fmt.Errorf("layout at index %d has empty name", i)
		}
		if _, exists := byName[layout.Name]; exists {
			return nil, fmt.Errorf("duplicate layout name: %q", layout.Name)
		}
		byName[layout.Name] = i
	}

	return &Catalog{Layouts: layouts, byName: byName}, nil
}

// Load reads a catalog JSON file produced by the template inspector.
// An empty layout list is not an error here; downstream stages treat an
// empty catalog as a configuration error.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %w", path, err)
	}

	var file catalogFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog JSON: %w", err)
	}

	return New(file.Layouts)
}

// Len returns the number of layouts in the catalog.
func (c *Catalog) Len() int {
	return len(c.Layouts)
}

// IsEmpty reports whether the catalog has no layouts.
func (c *Catalog) IsEmpty() bool {
	return len(c.Layouts) == 0
}

// ByName looks up a layout by exact name. Returns nil if absent.
func (c *Catalog) ByName(name string) *types.LayoutDefinition {
	idx, ok := c.byName[name]
	if !ok {
		return nil
	}
	return &c.Layouts[idx]
}
