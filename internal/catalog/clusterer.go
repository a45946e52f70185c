package catalog

import (
	"fmt"

	"github.com/jonathan/deck-composer/internal/types"
)

// Default field constraints applied when deriving schema fields from
// placeholders. Title and bullet limits follow the template conventions the
// inspector reports for standard corporate templates.
const (
	maxTitleLength  = 80
	maxBulletLength = 120
)

// Clustering maps layouts onto a smaller set of canonical field schemas.
// Layouts with identical structural signatures share one schema.
type Clustering struct {
	// Schemas holds every distinct schema keyed by id.
	Schemas map[string]types.FieldSchema
	// LayoutsBySchema maps a schema id to the layout names sharing it,
	// in catalog order.
	LayoutsBySchema map[string][]string
	// SchemaByLayout is the reverse lookup from layout name to schema id.
	SchemaByLayout map[string]string

	// ids holds schema ids in first-appearance order for deterministic
	// iteration.
	ids []string
}

// Cluster groups the catalog's layouts by structural signature. The result is
// deterministic: the same catalog always yields the same schema ids and
// groupings. An empty catalog yields an empty clustering.
func Cluster(c *Catalog) *Clustering {
	clustering := &Clustering{
		Schemas:         make(map[string]types.FieldSchema),
		LayoutsBySchema: make(map[string][]string),
		SchemaByLayout:  make(map[string]string),
	}

	idBySignature := make(map[string]string)

	for i := range c.Layouts {
		layout := &c.Layouts[i]
		sig := layout.Signature()

		id, seen := idBySignature[sig]
		if !seen {
			id = fmt.Sprintf("schema_%03d", len(idBySignature)+1)
			idBySignature[sig] = id
			clustering.Schemas[id] = buildSchema(id, layout)
			clustering.ids = append(clustering.ids, id)
		}

		clustering.LayoutsBySchema[id] = append(clustering.LayoutsBySchema[id], layout.Name)
		clustering.SchemaByLayout[layout.Name] = id
	}

	return clustering
}

// SchemaFor returns the schema for a layout name. The second return is false
// if the layout is not part of the clustered catalog.
func (cl *Clustering) SchemaFor(layoutName string) (types.FieldSchema, bool) {
	id, ok := cl.SchemaByLayout[layoutName]
	if !ok {
		return types.FieldSchema{}, false
	}
	return cl.Schemas[id], true
}

// SchemaIDs returns schema ids in first-appearance order.
func (cl *Clustering) SchemaIDs() []string {
	return cl.ids
}

// buildSchema derives the canonical field schema from a representative
// layout's placeholder sequence.
func buildSchema(id string, layout *types.LayoutDefinition) types.FieldSchema {
	fields := make([]types.Field, 0, len(layout.Placeholders))
	titleCount := 0
	bodySeen := false
	imageCount := 0
	chartSeen := false
	otherCount := 0

	for _, ph := range layout.Placeholders {
		switch ph.Kind {
		case types.KindTitle:
			titleCount++
			name := "title"
			if titleCount > 1 {
				name = "subtitle"
			}
			if titleCount > 2 {
				// Rare layouts with three or more title slots.
				name = fmt.Sprintf("title%d", titleCount)
			}
			fields = append(fields, types.Field{
				FieldName: name,
				Kind:      types.KindTitle,
				MaxLength: maxTitleLength,
				Required:  true,
			})
		case types.KindBody:
			// All body placeholders collapse into one bullet field.
			if bodySeen {
				continue
			}
			bodySeen = true
			fields = append(fields, types.Field{
				FieldName: "content",
				Kind:      types.KindBody,
				MaxLength: maxBulletLength,
				Required:  true,
			})
		case types.KindImage:
			imageCount++
			fields = append(fields, types.Field{
				FieldName: fmt.Sprintf("image%d", imageCount),
				Kind:      types.KindImage,
			})
		case types.KindChart:
			if chartSeen {
				continue
			}
			chartSeen = true
			fields = append(fields, types.Field{
				FieldName: "chart_data",
				Kind:      types.KindChart,
			})
		default:
			otherCount++
			name := "extra"
			if otherCount > 1 {
				name = fmt.Sprintf("extra%d", otherCount)
			}
			fields = append(fields, types.Field{
				FieldName: name,
				Kind:      types.KindOther,
			})
		}
	}

	return types.FieldSchema{
		ID:         id,
		Category:   categorize(layout),
		Fields:     fields,
		Complexity: complexityFor(len(layout.Placeholders)),
	}
}

// categorize assigns a schema category from the placeholder mix.
func categorize(layout *types.LayoutDefinition) types.SchemaCategory {
	if len(layout.Placeholders) == 0 {
		return types.CategoryBlank
	}

	images := layout.CountKind(types.KindImage)
	bodies := layout.CountKind(types.KindBody)
	titles := layout.CountKind(types.KindTitle)
	charts := layout.CountKind(types.KindChart)

	switch {
	case images > 0 && bodies > 0:
		return types.CategoryMixed
	case images > 0:
		return types.CategoryImageFocused
	case charts > 0:
		return types.CategoryMixed
	case bodies > 0:
		return types.CategoryTextContent
	case titles > 0:
		return types.CategorySectionHeader
	default:
		return types.CategoryMixed
	}
}

// complexityFor maps placeholder count to a complexity tier.
func complexityFor(placeholderCount int) types.Complexity {
	switch {
	case placeholderCount <= 2:
		return types.ComplexitySimple
	case placeholderCount <= 5:
		return types.ComplexityStandard
	default:
		return types.ComplexityComplex
	}
}

// Stats summarizes a clustering for reporting.
type Stats struct {
	TotalLayouts  int                            `json:"total_layouts"`
	UniqueSchemas int                            `json:"unique_schemas"`
	ByCategory    map[types.SchemaCategory]int   `json:"by_category"`
	ByComplexity  map[types.Complexity]int       `json:"by_complexity"`
	WithImages    int                            `json:"with_images"`
	WithCharts    int                            `json:"with_charts"`
}

// ComputeStats tallies layout counts by category, complexity, and media
// support across the clustering.
func (cl *Clustering) ComputeStats() Stats {
	stats := Stats{
		UniqueSchemas: len(cl.Schemas),
		ByCategory:    make(map[types.SchemaCategory]int),
		ByComplexity:  make(map[types.Complexity]int),
	}

	for _, id := range cl.ids {
		schema := cl.Schemas[id]
		count := len(cl.LayoutsBySchema[id])
		stats.TotalLayouts += count
		stats.ByCategory[schema.Category] += count
		stats.ByComplexity[schema.Complexity] += count
		if schema.HasKind(types.KindImage) {
			stats.WithImages += count
		}
		if schema.HasKind(types.KindChart) {
			stats.WithCharts += count
		}
	}

	return stats
}
