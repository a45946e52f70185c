package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/deck-composer/internal/catalog"
	"github.com/jonathan/deck-composer/internal/export"
	"github.com/jonathan/deck-composer/internal/ingestion"
	"github.com/jonathan/deck-composer/internal/llm"
	"github.com/jonathan/deck-composer/internal/planning"
	"github.com/jonathan/deck-composer/internal/review"
	"github.com/jonathan/deck-composer/internal/types"
)

type stubPlanner struct {
	outline *types.Outline
	err     error
}

func (s *stubPlanner) CreateOutline(context.Context, string) (*types.Outline, error) {
	return s.outline, s.err
}

// stubGenerator records which slide numbers each call asked for.
type stubGenerator struct {
	mu    sync.Mutex
	calls [][]int
}

func (s *stubGenerator) GenerateAll(_ context.Context, slides []types.ResolvedSlide, _ string, _ int) ([]types.SlideContent, error) {
	numbers := make([]int, 0, len(slides))
	contents := make([]types.SlideContent, 0, len(slides))
	for _, slide := range slides {
		numbers = append(numbers, slide.Entry.SlideNumber)
		contents = append(contents, types.SlideContent{
			SlideNumber: slide.Entry.SlideNumber,
			LayoutName:  slide.ResolvedLayout.Name,
			FieldValues: map[string]types.FieldValue{
				"title": {Text: slide.Entry.Purpose},
			},
		})
	}
	s.mu.Lock()
	s.calls = append(s.calls, numbers)
	s.mu.Unlock()
	return contents, nil
}

type stubRenderer struct {
	err   error
	calls int
}

func (s *stubRenderer) RenderSlides(_ context.Context, _ string, slideCount int) ([]llm.ImageInput, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	images := make([]llm.ImageInput, slideCount)
	for i := range images {
		images[i] = llm.ImageInput{Format: "png", Data: []byte{1}}
	}
	return images, nil
}

// stubReviewer returns reviews in sequence, repeating the last one.
type stubReviewer struct {
	reviews []*types.ReviewResult
	err     error
	calls   int
}

func (s *stubReviewer) Review(context.Context, []llm.ImageInput, string, *types.Outline) (*types.ReviewResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	idx := s.calls
	if idx >= len(s.reviews) {
		idx = len(s.reviews) - 1
	}
	s.calls++
	r := *s.reviews[idx]
	return &r, nil
}

func testOutline() *types.Outline {
	return &types.Outline{
		PresentationSummary: "A short launch deck.",
		Slides: []types.OutlineEntry{
			{SlideNumber: 1, LayoutName: "Title Slide", Purpose: "Open", KeyContent: []string{"Launch"}},
			{SlideNumber: 2, LayoutName: "Title and Content", Purpose: "Timeline", KeyContent: []string{"Q3", "Q4"}},
			{SlideNumber: 3, LayoutName: "Title and Content", Purpose: "Risks", KeyContent: []string{"supply"}},
		},
	}
}

func testResolver(t *testing.T) *catalog.Resolver {
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
	cluster := catalog.Cluster(c)
	r := catalog.NewResolver(c, cluster, 0.5, "")
	require.NotNil(t, r)
	return r
}

func goodReview() *types.ReviewResult {
	return &types.ReviewResult{OverallScore: 85, NeedsRevision: false}
}

func badReview(flagged ...int) *types.ReviewResult {
	return &types.ReviewResult{
		OverallScore:  55,
		NeedsRevision: true,
		CriticalIssues: []types.CriticalIssue{
			{SlideNumbers: flagged, Issue: "weak content", Severity: types.SeverityCritical},
		},
	}
}

func newTestRunner(t *testing.T, planner OutlinePlanner, gen ContentGenerator, reviewer DeckReviewer, renderer export.Renderer, opts RunOptions) *Runner {
	t.Helper()
	writer, err := export.NewHTMLDeckWriter()
	require.NoError(t, err)

	if opts.OutputPath == "" {
		opts.OutputPath = filepath.Join(t.TempDir(), "deck.html")
	}
	if opts.Concurrency == 0 {
		opts.Concurrency = 2
	}

	return NewRunner(Stages{
		Planner:   planner,
		Resolver:  testResolver(t),
		Generator: gen,
		Writer:    writer,
		Renderer:  renderer,
		Reviewer:  reviewer,
		Usage:     llm.NewUsage(),
	}, opts)
}

func testDoc() *ingestion.SourceDocument {
	return &ingestion.SourceDocument{Path: "talk.md", Format: "markdown", Content: "# Launch\n\nplan details"}
}

func TestRunHappyPath(t *testing.T) {
	gen := &stubGenerator{}
	reviewer := &stubReviewer{reviews: []*types.ReviewResult{goodReview()}}
	out := filepath.Join(t.TempDir(), "deck.html")
	runner := newTestRunner(t, &stubPlanner{outline: testOutline()}, gen, reviewer, &stubRenderer{},
		RunOptions{OutputPath: out, MaxRevisionPasses: 1})

	summary, err := runner.Run(context.Background(), testDoc())
	require.NoError(t, err)

	assert.Equal(t, 3, summary.SlideCount)
	assert.Equal(t, 0, summary.RevisionPasses)
	assert.False(t, summary.ReviewSkipped)
	require.NotNil(t, summary.Review)
	assert.Equal(t, 85, summary.Review.OverallScore)

	// Deck artifact and review artifact are written
	_, err = os.Stat(out)
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(filepath.Dir(out), "review.json"))
	assert.NoError(t, err)

	// One generation pass covering every slide in order
	require.Len(t, gen.calls, 1)
	assert.Equal(t, []int{1, 2, 3}, gen.calls[0])
}

func TestRunRevisionRegeneratesOnlyFlaggedSlides(t *testing.T) {
	gen := &stubGenerator{}
	reviewer := &stubReviewer{reviews: []*types.ReviewResult{badReview(2), goodReview()}}
	runner := newTestRunner(t, &stubPlanner{outline: testOutline()}, gen, reviewer, &stubRenderer{},
		RunOptions{MaxRevisionPasses: 1})

	summary, err := runner.Run(context.Background(), testDoc())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.RevisionPasses)
	assert.Equal(t, 2, reviewer.calls)

	require.Len(t, gen.calls, 2)
	assert.Equal(t, []int{1, 2, 3}, gen.calls[0])
	assert.Equal(t, []int{2}, gen.calls[1])
}

func TestRunRevisionLoopIsBounded(t *testing.T) {
	// Reviewer that always demands revision must terminate after the
	// configured number of extra passes
	gen := &stubGenerator{}
	reviewer := &stubReviewer{reviews: []*types.ReviewResult{badReview(1)}}
	runner := newTestRunner(t, &stubPlanner{outline: testOutline()}, gen, reviewer, &stubRenderer{},
		RunOptions{MaxRevisionPasses: 2})

	summary, err := runner.Run(context.Background(), testDoc())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.RevisionPasses)
	// Initial review plus one per revision pass
	assert.Equal(t, 3, reviewer.calls)
	// Initial generation plus one regeneration per pass
	assert.Len(t, gen.calls, 3)
}

func TestRunZeroRevisionPassesReviewsOnce(t *testing.T) {
	// Pass budget 0 means the deck is reviewed but never revised
	gen := &stubGenerator{}
	reviewer := &stubReviewer{reviews: []*types.ReviewResult{badReview(2)}}
	runner := newTestRunner(t, &stubPlanner{outline: testOutline()}, gen, reviewer, &stubRenderer{},
		RunOptions{MaxRevisionPasses: 0})

	summary, err := runner.Run(context.Background(), testDoc())
	require.NoError(t, err)

	assert.Equal(t, 0, summary.RevisionPasses)
	assert.Equal(t, 1, reviewer.calls)
	assert.Len(t, gen.calls, 1)
	require.NotNil(t, summary.Review)
	assert.True(t, summary.Review.NeedsRevision)
}

func TestRunKeepsBestScoringVersion(t *testing.T) {
	// Revision lowers the score; the first version must win
	first := &types.ReviewResult{
		OverallScore:  80,
		NeedsRevision: true,
		CriticalIssues: []types.CriticalIssue{
			{SlideNumbers: []int{3}, Issue: "overflow", Severity: types.SeverityCritical},
		},
	}
	worse := &types.ReviewResult{OverallScore: 60, NeedsRevision: false}

	gen := &stubGenerator{}
	reviewer := &stubReviewer{reviews: []*types.ReviewResult{first, worse}}
	runner := newTestRunner(t, &stubPlanner{outline: testOutline()}, gen, reviewer, &stubRenderer{},
		RunOptions{MaxRevisionPasses: 1})

	summary, err := runner.Run(context.Background(), testDoc())
	require.NoError(t, err)

	require.NotNil(t, summary.Review)
	assert.Equal(t, 80, summary.Review.OverallScore)
}

func TestRunReviewFailureIsNotFatal(t *testing.T) {
	gen := &stubGenerator{}
	reviewer := &stubReviewer{err: &review.ReviewError{Message: "vision model unavailable"}}
	runner := newTestRunner(t, &stubPlanner{outline: testOutline()}, gen, reviewer, &stubRenderer{},
		RunOptions{MaxRevisionPasses: 1})

	summary, err := runner.Run(context.Background(), testDoc())
	require.NoError(t, err)

	assert.True(t, summary.ReviewSkipped)
	assert.Nil(t, summary.Review)
	assert.Equal(t, 3, summary.SlideCount)
}

func TestRunSkipReview(t *testing.T) {
	reviewer := &stubReviewer{reviews: []*types.ReviewResult{goodReview()}}
	runner := newTestRunner(t, &stubPlanner{outline: testOutline()}, &stubGenerator{}, reviewer, &stubRenderer{},
		RunOptions{SkipReview: true})

	summary, err := runner.Run(context.Background(), testDoc())
	require.NoError(t, err)

	assert.True(t, summary.ReviewSkipped)
	assert.Equal(t, 0, reviewer.calls)
}

func TestRunPlanningFailureIsFatal(t *testing.T) {
	planner := &stubPlanner{err: &planning.PlanningError{Message: "model refused"}}
	runner := newTestRunner(t, planner, &stubGenerator{}, &stubReviewer{}, &stubRenderer{}, RunOptions{})

	_, err := runner.Run(context.Background(), testDoc())
	require.Error(t, err)
	var perr *planning.PlanningError
	assert.ErrorAs(t, err, &perr)
}

func TestRunRenderingFailureIsFatal(t *testing.T) {
	renderer := &stubRenderer{err: errors.New("chrome not found")}
	runner := newTestRunner(t, &stubPlanner{outline: testOutline()}, &stubGenerator{}, &stubReviewer{}, renderer, RunOptions{})

	_, err := runner.Run(context.Background(), testDoc())
	assert.Error(t, err)
}
