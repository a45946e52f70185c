//nolint:revive // types is a standard Go package name pattern
package types

// SchemaCategory classifies a field schema by its dominant content role.
type SchemaCategory string

// Schema categories derived during clustering.
const (
	CategoryTextContent   SchemaCategory = "text_content"
	CategorySectionHeader SchemaCategory = "section_header"
	CategoryImageFocused  SchemaCategory = "image_focused"
	CategoryBlank         SchemaCategory = "blank"
	CategoryMixed         SchemaCategory = "mixed"
)

// Complexity is a coarse tier based on placeholder count.
type Complexity string

// Complexity tiers.
const (
	ComplexitySimple   Complexity = "simple"
	ComplexityStandard Complexity = "standard"
	ComplexityComplex  Complexity = "complex"
)

// Field is a single named field in a schema, derived from a placeholder.
type Field struct {
	FieldName string          `json:"field_name"`
	Kind      PlaceholderKind `json:"kind"`
	MaxLength int             `json:"max_length,omitempty"`
	Required  bool            `json:"required"`
}

// FieldSchema is a canonical, deduplicated description of a layout's field
// structure. Many layouts may share one schema.
type FieldSchema struct {
	ID         string         `json:"id"`
	Category   SchemaCategory `json:"category"`
	Fields     []Field        `json:"fields"`
	Complexity Complexity     `json:"complexity"`
}

// RequiredFields returns the names of all required fields in schema order.
func (s *FieldSchema) RequiredFields() []string {
	names := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		if f.Required {
			names = append(names, f.FieldName)
		}
	}
	return names
}

// FieldByName looks up a field by name. Returns nil if absent.
func (s *FieldSchema) FieldByName(name string) *Field {
	for i := range s.Fields {
		if s.Fields[i].FieldName == name {
			return &s.Fields[i]
		}
	}
	return nil
}

// HasKind reports whether any field of the given kind exists.
func (s *FieldSchema) HasKind(kind PlaceholderKind) bool {
	for _, f := range s.Fields {
		if f.Kind == kind {
			return true
		}
	}
	return false
}

// SupportsText reports whether the schema has at least one text-bearing field
// (title or body). Image-focused and blank schemas without text fields get no
// generated bullets.
func (s *FieldSchema) SupportsText() bool {
	return s.HasKind(KindTitle) || s.HasKind(KindBody)
}
