// Package export renders generated slide content into a standalone HTML
// deck and produces per-slide PNG images for the vision review.
package export

import (
	"fmt"

	"github.com/jonathan/deck-composer/internal/types"
)

// Slide pairs one slide's generated content with its layout metadata for
// rendering.
type Slide struct {
	Number     int
	LayoutName string
	Category   types.SchemaCategory
	Title      string
	Subtitle   string
	Bullets    []string
	Images     []string // image field descriptions, rendered as placeholders
	ChartData  string
	Notes      string
	Degraded   bool
}

// Deck is the full renderable presentation.
type Deck struct {
	Title   string
	Summary string
	Slides  []Slide
}

// BuildDeck assembles a renderable deck from resolved slides and their
// generated content. Both slices must be in slide order and equal length.
func BuildDeck(summary string, resolved []types.ResolvedSlide, contents []types.SlideContent) (*Deck, error) {
	if len(resolved) != len(contents) {
		return nil, &RenderingError{
			Message: fmt.Sprintf("slide count mismatch: %d resolved, %d generated", len(resolved), len(contents)),
		}
	}

	deck := &Deck{Summary: summary, Slides: make([]Slide, 0, len(resolved))}
	for i := range resolved {
		slide := buildSlide(&resolved[i], &contents[i])
		if deck.Title == "" && slide.Title != "" {
			deck.Title = slide.Title
		}
		deck.Slides = append(deck.Slides, slide)
	}
	return deck, nil
}

func buildSlide(resolved *types.ResolvedSlide, content *types.SlideContent) Slide {
	slide := Slide{
		Number:     content.SlideNumber,
		LayoutName: resolved.ResolvedLayout.Name,
		Category:   resolved.Schema.Category,
		Notes:      content.SpeakerNotes,
		Degraded:   content.Degraded,
	}

	for _, field := range resolved.Schema.Fields {
		value := content.Value(field.FieldName)
		if value.IsEmpty() {
			continue
		}

		switch {
		case field.FieldName == "title":
			slide.Title = value.Text
		case field.FieldName == "subtitle":
			slide.Subtitle = value.Text
		case field.Kind == types.KindBody:
			if value.IsList() {
				slide.Bullets = append(slide.Bullets, value.Items...)
			} else {
				slide.Bullets = append(slide.Bullets, value.Text)
			}
		case field.Kind == types.KindImage:
			slide.Images = append(slide.Images, value.Text)
		case field.Kind == types.KindChart:
			slide.ChartData = value.Text
		}
	}
	return slide
}
