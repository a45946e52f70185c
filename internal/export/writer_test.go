package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/deck-composer/internal/types"
)

func testResolved() []types.ResolvedSlide {
	titleSchema := types.FieldSchema{
		ID:       "schema_001",
		Category: types.CategorySectionHeader,
		Fields: []types.Field{
			{FieldName: "title", Kind: types.KindTitle, MaxLength: 80, Required: true},
			{FieldName: "subtitle", Kind: types.KindTitle, MaxLength: 80},
		},
	}
	contentSchema := types.FieldSchema{
		ID:       "schema_002",
		Category: types.CategoryTextContent,
		Fields: []types.Field{
			{FieldName: "title", Kind: types.KindTitle, MaxLength: 80, Required: true},
			{FieldName: "content", Kind: types.KindBody, MaxLength: 120, Required: true},
		},
	}
	mixedSchema := types.FieldSchema{
		ID:       "schema_003",
		Category: types.CategoryMixed,
		Fields: []types.Field{
			{FieldName: "title", Kind: types.KindTitle, MaxLength: 80, Required: true},
			{FieldName: "image1", Kind: types.KindImage},
		},
	}
	return []types.ResolvedSlide{
		{ResolvedLayout: types.LayoutDefinition{Name: "Title Slide"}, Schema: titleSchema},
		{ResolvedLayout: types.LayoutDefinition{Name: "Title and Content"}, Schema: contentSchema},
		{ResolvedLayout: types.LayoutDefinition{Name: "Picture with Caption"}, Schema: mixedSchema},
	}
}

func testContents() []types.SlideContent {
	return []types.SlideContent{
		{
			SlideNumber: 1,
			LayoutName:  "Title Slide",
			FieldValues: map[string]types.FieldValue{
				"title":    {Text: "Launch Plan 2026"},
				"subtitle": {Text: "Product Team Briefing"},
			},
		},
		{
			SlideNumber: 2,
			LayoutName:  "Title and Content",
			FieldValues: map[string]types.FieldValue{
				"title":   {Text: "Timeline"},
				"content": {Items: []string{"Beta in Q3", "GA in Q4", "Pricing unchanged", "Migration tooling included"}},
			},
			SpeakerNotes: "Pause for questions.",
		},
		{
			SlideNumber: 3,
			LayoutName:  "Picture with Caption",
			FieldValues: map[string]types.FieldValue{
				"title":  {Text: "Architecture"},
				"image1": {Text: "High-level system diagram"},
			},
			Degraded: true,
		},
	}
}

func TestBuildDeck(t *testing.T) {
	t.Run("assembles slides in order", func(t *testing.T) {
		deck, err := BuildDeck("A launch briefing.", testResolved(), testContents())
		require.NoError(t, err)
		require.Len(t, deck.Slides, 3)

		assert.Equal(t, "Launch Plan 2026", deck.Title)
		assert.Equal(t, "Product Team Briefing", deck.Slides[0].Subtitle)
		assert.Equal(t, []string{"Beta in Q3", "GA in Q4", "Pricing unchanged", "Migration tooling included"}, deck.Slides[1].Bullets)
		assert.Equal(t, []string{"High-level system diagram"}, deck.Slides[2].Images)
		assert.True(t, deck.Slides[2].Degraded)
	})

	t.Run("count mismatch is an error", func(t *testing.T) {
		_, err := BuildDeck("s", testResolved(), testContents()[:2])
		require.Error(t, err)
		var rerr *RenderingError
		assert.ErrorAs(t, err, &rerr)
	})
}

func TestHTMLDeckWriter(t *testing.T) {
	writer, err := NewHTMLDeckWriter()
	require.NoError(t, err)

	deck, err := BuildDeck("A launch briefing.", testResolved(), testContents())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out", "deck.html")
	require.NoError(t, writer.WriteDeck(path, deck))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(data)))
	require.NoError(t, err)

	// One section per slide, addressable by id for the screenshot pass
	assert.Equal(t, 3, doc.Find("section.slide").Length())
	assert.Equal(t, 1, doc.Find("#slide-2").Length())
	assert.Equal(t, "Timeline", doc.Find("#slide-2 h1").Text())
	assert.Equal(t, 4, doc.Find("#slide-2 li").Length())

	// Layout metadata survives rendering
	layout, _ := doc.Find("#slide-3").Attr("data-layout")
	assert.Equal(t, "Picture with Caption", layout)
	degraded, _ := doc.Find("#slide-3").Attr("data-degraded")
	assert.Equal(t, "true", degraded)

	// Speaker notes are embedded but hidden
	notes := doc.Find("#slide-2 aside.notes")
	require.Equal(t, 1, notes.Length())
	assert.Equal(t, "Pause for questions.", notes.Text())

	// Image fields render as placeholders, not broken img tags
	assert.Contains(t, doc.Find("#slide-3 .image-placeholder").Text(), "High-level system diagram")
}

func TestHTMLDeckWriterEscapesContent(t *testing.T) {
	writer, err := NewHTMLDeckWriter()
	require.NoError(t, err)

	deck := &Deck{Title: "t", Slides: []Slide{{
		Number:  1,
		Title:   `<script>alert("x")</script>`,
		Bullets: []string{"a < b"},
	}}}

	path := filepath.Join(t.TempDir(), "deck.html")
	require.NoError(t, writer.WriteDeck(path, deck))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "<script>alert")
	assert.Contains(t, string(data), "a &lt; b")
}
