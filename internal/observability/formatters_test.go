package observability

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/deck-composer/internal/catalog"
	"github.com/jonathan/deck-composer/internal/types"
)

func TestPrintCatalogStats(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintCatalogStats(catalog.Stats{
		TotalLayouts:  12,
		UniqueSchemas: 5,
		ByCategory: map[types.SchemaCategory]int{
			types.CategoryTextContent:   6,
			types.CategorySectionHeader: 2,
		},
		WithImages: 3,
	})

	output := buf.String()
	assert.Contains(t, output, "Layout Catalog")
	assert.Contains(t, output, "12")
	assert.Contains(t, output, "text_content")
	assert.Contains(t, output, "With images: 3")
}

func TestPrintOutline(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	outline := &types.Outline{
		PresentationSummary: "summary",
		Slides: []types.OutlineEntry{
			{SlideNumber: 1, LayoutName: "Title Slide", Purpose: "Open"},
			{SlideNumber: 2, LayoutName: "Title and Content", Purpose: "Timeline"},
			{SlideNumber: 3, LayoutName: "Title and Content", Purpose: "Risks"},
			{SlideNumber: 4, LayoutName: "Title and Content", Purpose: "Budget"},
			{SlideNumber: 5, LayoutName: "Title and Content", Purpose: "Team"},
			{SlideNumber: 6, LayoutName: "Section Header", Purpose: "Close"},
		},
	}
	p.PrintOutline(outline)

	output := buf.String()
	assert.Contains(t, output, "Presentation Outline")
	assert.Contains(t, output, "Title Slide")
	assert.Contains(t, output, "... and 1 more")
}

func TestPrintOutline_Nil(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintOutline(nil)

	assert.Empty(t, buf.String())
}

func TestPrintResolutions(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintResolutions([]catalog.Resolution{
		{Input: "Title Slide", Layout: "Title Slide", Method: catalog.MethodExact},
		{Input: "tittle and content", Layout: "Title and Content", Method: catalog.MethodFuzzy, Score: 0.67},
	})

	output := buf.String()
	assert.Contains(t, output, "Layout Resolutions")
	assert.Contains(t, output, "tittle and content")
	// Exact matches are noise and stay out of the report
	assert.NotContains(t, output, `"Title Slide" -> "Title Slide"`)
}

func TestPrintResolutions_AllExact(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintResolutions([]catalog.Resolution{
		{Input: "Blank", Layout: "Blank", Method: catalog.MethodExact},
	})

	assert.Empty(t, buf.String())
}

func TestPrintReview(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintReview(&types.ReviewResult{
		OverallScore:    85,
		NeedsRevision:   true,
		VisualRiskScore: 60,
		CriticalIssues: []types.CriticalIssue{
			{SlideNumbers: []int{3}, Issue: "text overflow", Severity: types.SeverityCritical},
		},
	})

	output := buf.String()
	assert.Contains(t, output, "Holistic Review")
	assert.Contains(t, output, "Overall score: 85")
	assert.Contains(t, output, "text overflow")
	assert.Contains(t, output, "needs revision")
}

func TestPrintUsage(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintUsage(types.UsageStats{TotalTokens: 15000, TotalCost: 0.15, APICalls: 9})

	output := buf.String()
	assert.Contains(t, output, "15000")
	assert.Contains(t, output, "$0.1500")
	assert.Contains(t, output, "API calls:    9")
}

func TestPrintRunSummary(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintRunSummary(&types.RunSummary{
		OutputPath:     "out/deck.html",
		SlideCount:     8,
		DegradedSlides: []int{5},
		ReviewSkipped:  true,
		RevisionPasses: 1,
	})

	output := buf.String()
	assert.Contains(t, output, "out/deck.html")
	assert.Contains(t, output, "Degraded slides: [5]")
	assert.Contains(t, output, "skipped")
}
