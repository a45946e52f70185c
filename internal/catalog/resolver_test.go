package catalog

import (
	"bytes"
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/deck-composer/internal/types"
)

const testThreshold = 0.5

func testResolver(t *testing.T) *Resolver {
	t.Helper()
	c, clustering := clusteredTestCatalog(t)
	r := NewResolver(c, clustering, testThreshold, "")
	require.NotNil(t, r)
	return r
}

func TestResolver_ExactMatch(t *testing.T) {
	r := testResolver(t)

	layout, res := r.Resolve("Title Slide")
	assert.Equal(t, "Title Slide", layout.Name)
	assert.Equal(t, MethodExact, res.Method)
}

func TestResolver_LogsEveryResolution(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	r := testResolver(t)
	r.Resolve("Title Slide")
	r.Resolve("NoSuchLayout999")

	out := buf.String()
	assert.Contains(t, out, `exact: "Title Slide"`)
	assert.Contains(t, out, `fallback: "NoSuchLayout999"`)
}

func TestResolver_ExactMatchIsCaseInsensitive(t *testing.T) {
	r := testResolver(t)

	layout, res := r.Resolve("title slide")
	assert.Equal(t, "Title Slide", layout.Name)
	assert.Equal(t, MethodExact, res.Method)
}

func TestResolver_NormalizedMatchStripsNumericPrefix(t *testing.T) {
	r := testResolver(t)

	// "10_Title and Content" exists; resolving the bare name hits the
	// un-prefixed layout exactly, the prefixed form exactly too.
	layout, res := r.Resolve("10_title and content")
	assert.Equal(t, "10_Title and Content", layout.Name)
	assert.Equal(t, MethodExact, res.Method)

	// Punctuation differences fall through to normalized matching.
	layout, res = r.Resolve("Title-and-Content")
	assert.Equal(t, "Title and Content", layout.Name)
	assert.Equal(t, MethodNormalized, res.Method)
}

func TestResolver_FuzzyMatch(t *testing.T) {
	r := testResolver(t)

	layout, res := r.Resolve("tittle and content")
	assert.Equal(t, "Title and Content", layout.Name)
	assert.Equal(t, MethodFuzzy, res.Method)
	assert.InDelta(t, 2.0/3.0, res.Score, 0.01)
}

func TestResolver_FallbackForUnknownName(t *testing.T) {
	r := testResolver(t)

	layout, res := r.Resolve("UnknownLayout123")
	assert.Equal(t, MethodFallback, res.Method)
	// Default is the first text_content layout in catalog order.
	assert.Equal(t, "Title and Content", layout.Name)
}

func TestResolver_FallbackForEmptyString(t *testing.T) {
	r := testResolver(t)

	layout, res := r.Resolve("")
	assert.Equal(t, MethodFallback, res.Method)
	assert.NotEmpty(t, layout.Name)
}

func TestResolver_MixedOutlineEntries(t *testing.T) {
	// Outline entries ["Title Slide", "tittle and content", "UnknownLayout123"]
	// resolve to exact, fuzzy, and fallback respectively.
	r := testResolver(t)

	inputs := []string{"Title Slide", "tittle and content", "UnknownLayout123"}
	expected := []string{"Title Slide", "Title and Content", r.DefaultLayout().Name}
	methods := []ResolutionMethod{MethodExact, MethodFuzzy, MethodFallback}

	for i, input := range inputs {
		layout, res := r.Resolve(input)
		assert.Equal(t, expected[i], layout.Name, "input %q", input)
		assert.Equal(t, methods[i], res.Method, "input %q", input)
	}
}

func TestResolver_ConfiguredDefaultLayout(t *testing.T) {
	c, clustering := clusteredTestCatalog(t)
	r := NewResolver(c, clustering, testThreshold, "Blank")
	require.NotNil(t, r)

	layout, res := r.Resolve("zzz qqq")
	assert.Equal(t, MethodFallback, res.Method)
	assert.Equal(t, "Blank", layout.Name)
}

func TestResolver_NilForEmptyCatalog(t *testing.T) {
	c, err := New(nil)
	require.NoError(t, err)

	assert.Nil(t, NewResolver(c, Cluster(c), testThreshold, ""))
}

func TestResolver_TieBrokenByCatalogOrder(t *testing.T) {
	layouts := []types.LayoutDefinition{
		{Name: "Content Left", Placeholders: []types.Placeholder{{Kind: types.KindBody, Index: 0}}},
		{Name: "Content Right", Placeholders: []types.Placeholder{{Kind: types.KindBody, Index: 0}}},
	}
	c, err := New(layouts)
	require.NoError(t, err)
	r := NewResolver(c, Cluster(c), testThreshold, "")
	require.NotNil(t, r)

	// "content" overlaps both names equally; first-listed wins.
	layout, res := r.Resolve("content")
	assert.Equal(t, "Content Left", layout.Name)
	assert.Equal(t, MethodFuzzy, res.Method)
}

func TestResolver_ResolveSlideCarriesSchema(t *testing.T) {
	r := testResolver(t)

	entry := types.OutlineEntry{
		SlideNumber: 2,
		LayoutName:  "Title and Content",
		Purpose:     "Present the roadmap",
		KeyContent:  []string{"milestones"},
	}

	resolved, res := r.ResolveSlide(entry)
	assert.Equal(t, MethodExact, res.Method)
	assert.Equal(t, "Title and Content", resolved.ResolvedLayout.Name)
	assert.Equal(t, types.CategoryTextContent, resolved.Schema.Category)
	assert.Equal(t, entry, resolved.Entry)
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"10_Title and Content", "title and content"},
		{"Title-and-Content", "title and content"},
		{"  SECTION   HEADER  ", "section header"},
		{"3. Agenda", "agenda"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, normalizeName(tt.input), "input %q", tt.input)
	}
}
