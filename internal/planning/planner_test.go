package planning

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/deck-composer/internal/catalog"
	"github.com/jonathan/deck-composer/internal/llm"
	"github.com/jonathan/deck-composer/internal/types"
)

// stubClient returns canned JSON responses in sequence.
type stubClient struct {
	responses []string
	err       error
	calls     int
	prompts   []string
}

func (s *stubClient) GenerateContent(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
	return s.GenerateJSON(context.Background(), prompt, llm.TierStandard)
}

func (s *stubClient) GenerateJSON(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	idx := s.calls
	if idx >= len(s.responses) {
		idx = len(s.responses) - 1
	}
	s.calls++
	return s.responses[idx], nil
}

func (s *stubClient) GenerateJSONWithImages(ctx context.Context, prompt string, _ []llm.ImageInput, tier llm.ModelTier) (string, error) {
	return s.GenerateJSON(ctx, prompt, tier)
}

func (s *stubClient) GetModel(llm.ModelTier) string { return "stub-model" }
func (s *stubClient) Close() error                  { return nil }

// hangingClient never responds; it blocks until the call context is done.
type hangingClient struct{}

func (h *hangingClient) GenerateContent(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	return h.GenerateJSON(ctx, prompt, tier)
}

func (h *hangingClient) GenerateJSON(ctx context.Context, _ string, _ llm.ModelTier) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func (h *hangingClient) GenerateJSONWithImages(ctx context.Context, prompt string, _ []llm.ImageInput, tier llm.ModelTier) (string, error) {
	return h.GenerateJSON(ctx, prompt, tier)
}

func (h *hangingClient) GetModel(llm.ModelTier) string { return "hanging-model" }
func (h *hangingClient) Close() error                  { return nil }

func testCatalog(t *testing.T) (*catalog.Catalog, *catalog.Clustering) {
	t.Helper()
	c, err := catalog.New([]types.LayoutDefinition{
		{Name: "Title Slide", Placeholders: []types.Placeholder{
			{Kind: types.KindTitle, Index: 0},
		}},
		{Name: "Title and Content", Placeholders: []types.Placeholder{
			{Kind: types.KindTitle, Index: 0},
			{Kind: types.KindBody, Index: 1},
		}},
	})
	require.NoError(t, err)
	return c, catalog.Cluster(c)
}

const validOutlineJSON = `{
	"presentation_summary": "A short deck about the launch plan.",
	"slides": [
		{"slide_number": 1, "layout_name": "Title Slide", "purpose": "Open the deck", "key_content": ["Launch plan"], "notes": "keep it minimal"},
		{"slide_number": 2, "layout_name": "Title and Content", "purpose": "Cover the timeline", "key_content": ["Q3 beta", "Q4 GA"], "notes": ""}
	]
}`

func TestCreateOutline(t *testing.T) {
	cat, cluster := testCatalog(t)
	opts := Options{BulletMin: 4, BulletMax: 6}

	t.Run("valid first response", func(t *testing.T) {
		client := &stubClient{responses: []string{validOutlineJSON}}
		planner := NewPlanner(client, cat, cluster, opts)

		outline, err := planner.CreateOutline(context.Background(), "launch plan content")
		require.NoError(t, err)
		assert.Equal(t, 1, client.calls)
		assert.Len(t, outline.Slides, 2)
		assert.Equal(t, "Title Slide", outline.Slides[0].LayoutName)
		assert.Equal(t, "A short deck about the launch plan.", outline.PresentationSummary)
	})

	t.Run("accepts markdown fenced response", func(t *testing.T) {
		client := &stubClient{responses: []string{"```json\n" + validOutlineJSON + "\n```"}}
		planner := NewPlanner(client, cat, cluster, opts)

		outline, err := planner.CreateOutline(context.Background(), "content")
		require.NoError(t, err)
		assert.Len(t, outline.Slides, 2)
	})

	t.Run("invalid response triggers one strict retry", func(t *testing.T) {
		invalid := `{"slides": []}`
		client := &stubClient{responses: []string{invalid, validOutlineJSON}}
		planner := NewPlanner(client, cat, cluster, opts)

		outline, err := planner.CreateOutline(context.Background(), "content")
		require.NoError(t, err)
		assert.Equal(t, 2, client.calls)
		assert.Len(t, outline.Slides, 2)
		// The strict prompt carries the validation feedback
		assert.Contains(t, client.prompts[1], "did not match the required outline structure")
	})

	t.Run("invalid twice is fatal", func(t *testing.T) {
		invalid := `{"presentation_summary": "x"}`
		client := &stubClient{responses: []string{invalid, invalid}}
		planner := NewPlanner(client, cat, cluster, opts)

		_, err := planner.CreateOutline(context.Background(), "content")
		require.Error(t, err)
		var perr *PlanningError
		assert.ErrorAs(t, err, &perr)
		assert.Equal(t, 2, client.calls)
	})

	t.Run("client error is fatal without retry", func(t *testing.T) {
		client := &stubClient{err: errors.New("quota exceeded")}
		planner := NewPlanner(client, cat, cluster, opts)

		_, err := planner.CreateOutline(context.Background(), "content")
		require.Error(t, err)
		var perr *PlanningError
		assert.ErrorAs(t, err, &perr)
		assert.Equal(t, 0, client.calls)
	})

	t.Run("renumbers sparse slide numbers densely", func(t *testing.T) {
		sparse := `{
			"presentation_summary": "s",
			"slides": [
				{"slide_number": 3, "layout_name": "Title Slide", "purpose": "a", "key_content": ["x"], "notes": ""},
				{"slide_number": 7, "layout_name": "Title and Content", "purpose": "b", "key_content": ["y"], "notes": ""}
			]
		}`
		client := &stubClient{responses: []string{sparse}}
		planner := NewPlanner(client, cat, cluster, opts)

		outline, err := planner.CreateOutline(context.Background(), "content")
		require.NoError(t, err)
		assert.Equal(t, 1, outline.Slides[0].SlideNumber)
		assert.Equal(t, 2, outline.Slides[1].SlideNumber)
	})

	t.Run("prompt includes category summary and target", func(t *testing.T) {
		client := &stubClient{responses: []string{validOutlineJSON}}
		planner := NewPlanner(client, cat, cluster, Options{TargetSlides: 10, BulletMin: 4, BulletMax: 6})

		_, err := planner.CreateOutline(context.Background(), "some content here")
		require.NoError(t, err)
		prompt := client.prompts[0]
		assert.Contains(t, prompt, "TEXT CONTENT:")
		assert.Contains(t, prompt, "- Title and Content")
		assert.Contains(t, prompt, "approximately 10 slides")
		assert.Contains(t, prompt, "some content here")
	})

	t.Run("stalled call fails planning within the deadline", func(t *testing.T) {
		planner := NewPlanner(&hangingClient{}, cat, cluster, Options{
			BulletMin:   4,
			BulletMax:   6,
			CallTimeout: 20 * time.Millisecond,
		})

		done := make(chan struct{})
		var err error
		go func() {
			_, err = planner.CreateOutline(context.Background(), "content")
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("CreateOutline did not return; per-call deadline not applied")
		}
		require.Error(t, err)
		var perr *PlanningError
		assert.ErrorAs(t, err, &perr)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestDescribeCategories(t *testing.T) {
	layouts := []types.LayoutDefinition{
		{Name: "Section Break", Placeholders: []types.Placeholder{{Kind: types.KindTitle, Index: 0}}},
	}
	// Seven structurally distinct text layouts in one category
	for i := 0; i < 7; i++ {
		placeholders := []types.Placeholder{{Kind: types.KindTitle, Index: 0}}
		for j := 0; j <= i; j++ {
			placeholders = append(placeholders, types.Placeholder{Kind: types.KindBody, Index: j + 1})
		}
		layouts = append(layouts, types.LayoutDefinition{
			Name:         fmt.Sprintf("Content Variant %d", i+1),
			Placeholders: placeholders,
		})
	}

	c, err := catalog.New(layouts)
	require.NoError(t, err)
	planner := NewPlanner(&stubClient{}, c, catalog.Cluster(c), Options{})

	out := planner.describeCategories()
	assert.Contains(t, out, "SECTION HEADER:")
	assert.Contains(t, out, "TEXT CONTENT:")
	assert.Contains(t, out, "- Content Variant 5")
	assert.NotContains(t, out, "- Content Variant 6")
	assert.Contains(t, out, "... and 2 more")
}
