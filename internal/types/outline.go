//nolint:revive // types is a standard Go package name pattern
package types

// OutlineEntry is the strategic plan for a single slide, produced by the
// outline planner before any detailed content exists. The layout name is free
// text at this point; resolution against the catalog happens later.
type OutlineEntry struct {
	SlideNumber int      `json:"slide_number"`
	LayoutName  string   `json:"layout_name"`
	Purpose     string   `json:"purpose"`
	KeyContent  []string `json:"key_content"`
	Notes       string   `json:"notes,omitempty"`
}

// Outline is the full deck-level plan returned by the planner.
type Outline struct {
	PresentationSummary string         `json:"presentation_summary"`
	Slides              []OutlineEntry `json:"slides"`
}

// ResolvedSlide pairs an outline entry with its resolved catalog layout and
// schema. ResolvedLayout is always a member of the catalog; the resolver
// guarantees a fallback for unknown names.
type ResolvedSlide struct {
	Entry          OutlineEntry     `json:"entry"`
	ResolvedLayout LayoutDefinition `json:"resolved_layout"`
	Schema         FieldSchema      `json:"schema"`
}
