// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/deck-composer/internal/catalog"
	"github.com/jonathan/deck-composer/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintCatalogStats outputs a summary of the clustered layout catalog.
func (p *Printer) PrintCatalogStats(stats catalog.Stats) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Layouts:        %d\n", stats.TotalLayouts))
	sb.WriteString(fmt.Sprintf("Unique schemas: %d\n", stats.UniqueSchemas))
	sb.WriteString("\n")

	if len(stats.ByCategory) > 0 {
		sb.WriteString("By category:\n")
		for _, cat := range []types.SchemaCategory{
			types.CategoryTextContent,
			types.CategorySectionHeader,
			types.CategoryImageFocused,
			types.CategoryMixed,
			types.CategoryBlank,
		} {
			if n := stats.ByCategory[cat]; n > 0 {
				sb.WriteString(fmt.Sprintf("  %-16s %d\n", cat, n))
			}
		}
	}
	if stats.WithImages > 0 || stats.WithCharts > 0 {
		sb.WriteString(fmt.Sprintf("\nWith images: %d, with charts: %d\n", stats.WithImages, stats.WithCharts))
	}

	p.printBox("Layout Catalog", sb.String())
}

// PrintOutline outputs a human-readable summary of the planned deck.
func (p *Printer) PrintOutline(outline *types.Outline) {
	if outline == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Slides: %d\n\n", len(outline.Slides)))

	count := min(len(outline.Slides), maxItemsToShow)
	for i := 0; i < count; i++ {
		slide := outline.Slides[i]
		sb.WriteString(fmt.Sprintf("%2d. [%s] %s\n", slide.SlideNumber, slide.LayoutName, slide.Purpose))
	}
	if len(outline.Slides) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(outline.Slides)-maxItemsToShow))
	}

	p.printBox("Presentation Outline", sb.String())
}

// PrintResolutions outputs the layout-name resolutions that needed fuzzy
// matching or fallback, so surprising layout choices are visible.
func (p *Printer) PrintResolutions(resolutions []catalog.Resolution) {
	interesting := make([]catalog.Resolution, 0, len(resolutions))
	for _, r := range resolutions {
		if r.Method != catalog.MethodExact {
			interesting = append(interesting, r)
		}
	}
	if len(interesting) == 0 {
		return
	}

	var sb strings.Builder
	for _, r := range interesting {
		sb.WriteString(fmt.Sprintf("%q -> %q (%s)\n", r.Input, r.Layout, r.Method))
	}
	p.printBox("Layout Resolutions", sb.String())
}

// PrintReview outputs the holistic review verdict.
func (p *Printer) PrintReview(review *types.ReviewResult) {
	if review == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Overall score: %d\n", review.OverallScore))
	sb.WriteString(fmt.Sprintf("Coverage: %d  Verbosity: %d  Consistency: %d\n",
		review.ContentCoverageScore, review.VerbosityScore, review.ConsistencyScore))
	sb.WriteString(fmt.Sprintf("Flow: %d  Visual risk: %d\n", review.FlowScore, review.VisualRiskScore))
	sb.WriteString("\n")

	if len(review.CriticalIssues) > 0 {
		sb.WriteString("Critical issues:\n")
		count := min(len(review.CriticalIssues), maxItemsToShow)
		for i := 0; i < count; i++ {
			issue := review.CriticalIssues[i]
			sb.WriteString(fmt.Sprintf("  • [%s] slides %v: %s\n", issue.Severity, issue.SlideNumbers, issue.Issue))
		}
		if len(review.CriticalIssues) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(review.CriticalIssues)-maxItemsToShow))
		}
	}
	if review.NeedsRevision {
		sb.WriteString("\nVerdict: needs revision\n")
	} else {
		sb.WriteString("\nVerdict: accepted\n")
	}

	p.printBox("Holistic Review", sb.String())
}

// PrintUsage outputs accumulated generative-service usage for the run.
func (p *Printer) PrintUsage(usage types.UsageStats) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("API calls:    %d\n", usage.APICalls))
	sb.WriteString(fmt.Sprintf("Total tokens: %d\n", usage.TotalTokens))
	sb.WriteString(fmt.Sprintf("Est. cost:    $%.4f\n", usage.TotalCost))
	p.printBox("Usage", sb.String())
}

// PrintRunSummary outputs the final run summary.
func (p *Printer) PrintRunSummary(summary *types.RunSummary) {
	if summary == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Output:          %s\n", summary.OutputPath))
	sb.WriteString(fmt.Sprintf("Slides:          %d\n", summary.SlideCount))
	if len(summary.DegradedSlides) > 0 {
		sb.WriteString(fmt.Sprintf("Degraded slides: %v\n", summary.DegradedSlides))
	}
	if summary.ReviewSkipped {
		sb.WriteString("Review:          skipped\n")
	} else if summary.Review != nil {
		sb.WriteString(fmt.Sprintf("Review score:    %d\n", summary.Review.OverallScore))
	}
	sb.WriteString(fmt.Sprintf("Revision passes: %d\n", summary.RevisionPasses))
	p.printBox("Run Summary", sb.String())
}
