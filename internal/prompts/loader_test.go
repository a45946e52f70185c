package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_KnownPrompts(t *testing.T) {
	tests := []struct {
		filename string
		key      string
		contains string
	}{
		{"planning.json", "create-outline", "{{.LayoutCategories}}"},
		{"planning.json", "create-outline-strict", "{{.ValidationErrors}}"},
		{"generation.json", "generate-slide-content", "{{.FieldRequirements}}"},
		{"generation.json", "generate-slide-content-retry", "{{.ValidationErrors}}"},
		{"review.json", "holistic-review", "{{.SlideCount}}"},
	}

	for _, tt := range tests {
		t.Run(tt.filename+"/"+tt.key, func(t *testing.T) {
			prompt, err := Get(tt.filename, tt.key)
			require.NoError(t, err)
			assert.Contains(t, prompt, tt.contains)
		})
	}
}

func TestGet_UnknownFile(t *testing.T) {
	_, err := Get("nonexistent.json", "key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestGet_UnknownKey(t *testing.T) {
	_, err := Get("planning.json", "no-such-prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no-such-prompt")
}

func TestMustGet_PanicsOnMissing(t *testing.T) {
	assert.Panics(t, func() {
		MustGet("planning.json", "no-such-prompt")
	})
}

func TestFormat(t *testing.T) {
	template := "Slide #{{.SlideNumber}}: {{.Purpose}}"
	result := Format(template, map[string]string{
		"SlideNumber": "3",
		"Purpose":     "introduce the roadmap",
	})
	assert.Equal(t, "Slide #3: introduce the roadmap", result)
}

func TestFormat_UnknownPlaceholderLeftIntact(t *testing.T) {
	result := Format("{{.Known}} and {{.Unknown}}", map[string]string{"Known": "x"})
	assert.Equal(t, "x and {{.Unknown}}", result)
}

func TestPrompts_NoUnreplacedBraces(t *testing.T) {
	// Every placeholder in the shipped prompts follows the {{.Key}} form.
	for _, filename := range []string{"planning.json", "generation.json", "review.json"} {
		loadAll()
		require.NoError(t, loadErr)
		for key, template := range loaded[filename] {
			open := strings.Count(template, "{{")
			closed := strings.Count(template, "}}")
			assert.Equal(t, open, closed, "%s/%s has unbalanced braces", filename, key)
		}
	}
}
