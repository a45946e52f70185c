// Package pipeline provides the high-level orchestration for deck
// generation: planning, layout resolution, parallel content generation,
// deck rendering, holistic review, and the bounded revision loop.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/jonathan/deck-composer/internal/catalog"
	"github.com/jonathan/deck-composer/internal/db"
	"github.com/jonathan/deck-composer/internal/export"
	"github.com/jonathan/deck-composer/internal/ingestion"
	"github.com/jonathan/deck-composer/internal/llm"
	"github.com/jonathan/deck-composer/internal/observability"
	"github.com/jonathan/deck-composer/internal/types"
)

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step    string `json:"step"`
	Message string `json:"message"`
	RunID   string `json:"run_id,omitempty"`
	Content any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// OutlinePlanner produces the deck outline. Implemented by planning.Planner.
type OutlinePlanner interface {
	CreateOutline(ctx context.Context, content string) (*types.Outline, error)
}

// ContentGenerator produces slide content for resolved slides. Implemented
// by generation.Generator.
type ContentGenerator interface {
	GenerateAll(ctx context.Context, slides []types.ResolvedSlide, deckContext string, concurrency int) ([]types.SlideContent, error)
}

// DeckReviewer runs the holistic vision review. Implemented by
// review.Reviewer.
type DeckReviewer interface {
	Review(ctx context.Context, images []llm.ImageInput, originalContent string, outline *types.Outline) (*types.ReviewResult, error)
}

// Stages bundles the pipeline's stage implementations.
type Stages struct {
	Planner   OutlinePlanner
	Resolver  *catalog.Resolver
	Generator ContentGenerator
	Writer    export.DeckWriter
	Renderer  export.Renderer
	Reviewer  DeckReviewer
	Usage     *llm.Usage
}

// RunOptions holds configuration for running the pipeline
type RunOptions struct {
	OutputPath        string
	TemplateName      string
	Concurrency       int
	SkipReview        bool
	MaxRevisionPasses int
	Verbose           bool
	DatabaseURL       string
	OnProgress        ProgressCallback
}

// Runner executes the deck generation pipeline.
type Runner struct {
	stages Stages
	opts   RunOptions
}

// NewRunner creates a pipeline runner.
func NewRunner(stages Stages, opts RunOptions) *Runner {
	return &Runner{stages: stages, opts: opts}
}

// deckState is the mutable state carried across revision passes.
type deckState struct {
	resolved []types.ResolvedSlide
	contents []types.SlideContent
	review   *types.ReviewResult
}

func (r *Runner) emitProgress(step, message string, content any) {
	if r.opts.OnProgress != nil {
		r.opts.OnProgress(ProgressEvent{Step: step, Message: message, Content: content})
	}
}

// Run executes the full pipeline against a loaded source document.
func (r *Runner) Run(ctx context.Context, doc *ingestion.SourceDocument) (*types.RunSummary, error) {
	printer := observability.NewPrinter(os.Stdout)

	// Database persistence is best effort; a missing or broken database
	// never blocks deck generation
	var database *db.DB
	var runID uuid.UUID
	if r.opts.DatabaseURL != "" {
		var err error
		database, err = db.Connect(ctx, r.opts.DatabaseURL)
		if err != nil {
			fmt.Printf("Warning: Failed to connect to database: %v\n", err)
			fmt.Printf("Continuing without database persistence...\n")
			database = nil
		} else {
			defer database.Close()
			runID, err = database.CreateRun(ctx, r.opts.TemplateName, doc.Path)
			if err != nil {
				fmt.Printf("Warning: Failed to create database run: %v\n", err)
				runID = uuid.Nil
			} else {
				_ = database.SaveTextArtifact(ctx, runID, db.StepSourceText, doc.Format, doc.Content)
			}
		}
	}

	// Step 1: Planning
	fmt.Printf("Step 1/5: Planning presentation outline...\n")
	outline, err := r.stages.Planner.CreateOutline(ctx, doc.Content)
	if err != nil {
		r.completeRun(ctx, database, runID, db.StatusFailed, 0)
		return nil, err
	}
	if r.opts.Verbose {
		printer.PrintOutline(outline)
	}
	r.emitProgress(db.StepOutline, fmt.Sprintf("Planned %d slides", len(outline.Slides)), outline)
	r.saveArtifact(ctx, database, runID, db.StepOutline, "planning", outline)

	// Step 2: Layout resolution
	fmt.Printf("Step 2/5: Resolving layouts for %d slides...\n", len(outline.Slides))
	resolved := make([]types.ResolvedSlide, 0, len(outline.Slides))
	resolutions := make([]catalog.Resolution, 0, len(outline.Slides))
	for _, entry := range outline.Slides {
		slide, resolution := r.stages.Resolver.ResolveSlide(entry)
		resolved = append(resolved, slide)
		resolutions = append(resolutions, resolution)
	}
	if r.opts.Verbose {
		printer.PrintResolutions(resolutions)
	}
	r.saveArtifact(ctx, database, runID, db.StepResolvedPlan, "planning", resolved)

	state := &deckState{resolved: resolved}

	// Step 3: Content generation
	fmt.Printf("Step 3/5: Generating content for %d slides...\n", len(resolved))
	state.contents, err = r.stages.Generator.GenerateAll(ctx, resolved, doc.Content, r.opts.Concurrency)
	if err != nil {
		r.completeRun(ctx, database, runID, db.StatusFailed, len(resolved))
		return nil, err
	}
	r.emitProgress(db.StepSlideContent, "Generated slide content", nil)
	r.saveArtifact(ctx, database, runID, db.StepSlideContent, "generation", state.contents)

	// Step 4: Render deck and capture slide images
	fmt.Printf("Step 4/5: Rendering deck to %s...\n", r.opts.OutputPath)
	images, err := r.renderDeck(ctx, database, runID, outline, state)
	if err != nil {
		r.completeRun(ctx, database, runID, db.StatusFailed, len(resolved))
		return nil, err
	}

	summary := &types.RunSummary{
		OutputPath: r.opts.OutputPath,
		SlideCount: len(state.contents),
	}

	// Step 5: Holistic review plus bounded revision
	if r.opts.SkipReview {
		fmt.Printf("Step 5/5: Review skipped by configuration\n")
		summary.ReviewSkipped = true
	} else {
		fmt.Printf("Step 5/5: Reviewing rendered deck...\n")
		if err := r.reviewAndRevise(ctx, database, runID, doc, outline, state, images, summary, printer); err != nil {
			r.completeRun(ctx, database, runID, db.StatusFailed, len(resolved))
			return nil, err
		}
	}

	summary.DegradedSlides = degradedSlides(state.contents)
	summary.Review = state.review
	if r.stages.Usage != nil {
		summary.Usage = r.stages.Usage.Stats()
	}
	if r.opts.Verbose {
		printer.PrintUsage(summary.Usage)
	}
	printer.PrintRunSummary(summary)

	r.saveArtifact(ctx, database, runID, db.StepUsage, "usage", summary.Usage)
	r.completeRun(ctx, database, runID, db.StatusCompleted, summary.SlideCount)
	return summary, nil
}

// renderDeck writes the HTML artifact and captures per-slide images.
func (r *Runner) renderDeck(ctx context.Context, database *db.DB, runID uuid.UUID, outline *types.Outline, state *deckState) ([]llm.ImageInput, error) {
	deck, err := export.BuildDeck(outline.PresentationSummary, state.resolved, state.contents)
	if err != nil {
		return nil, err
	}
	if err := r.stages.Writer.WriteDeck(r.opts.OutputPath, deck); err != nil {
		return nil, err
	}
	r.emitProgress(db.StepDeckHTML, "Wrote deck artifact", nil)

	if data, err := os.ReadFile(r.opts.OutputPath); err == nil {
		r.saveTextArtifact(ctx, database, runID, db.StepDeckHTML, "export", string(data))
	}

	images, err := r.stages.Renderer.RenderSlides(ctx, r.opts.OutputPath, len(state.contents))
	if err != nil {
		return nil, err
	}
	return images, nil
}

// reviewAndRevise runs the holistic review and up to MaxRevisionPasses
// whole-deck revision cycles, keeping the best-scoring version. A failed
// review call downgrades to review-skipped instead of failing the run.
func (r *Runner) reviewAndRevise(ctx context.Context, database *db.DB, runID uuid.UUID, doc *ingestion.SourceDocument, outline *types.Outline, state *deckState, images []llm.ImageInput, summary *types.RunSummary, printer *observability.Printer) error {
	review, err := r.stages.Reviewer.Review(ctx, images, doc.Content, outline)
	if err != nil {
		fmt.Printf("Warning: Review failed, keeping generated deck: %v\n", err)
		summary.ReviewSkipped = true
		return nil
	}
	state.review = review
	if r.opts.Verbose {
		printer.PrintReview(review)
	}
	r.emitProgress(db.StepReview, fmt.Sprintf("Review score %d", review.OverallScore), review)

	best := &deckState{resolved: state.resolved, contents: state.contents, review: review}

	for pass := 1; state.review.NeedsRevision && pass <= r.opts.MaxRevisionPasses; pass++ {
		fmt.Printf("Revision pass %d/%d: regenerating flagged slides...\n", pass, r.opts.MaxRevisionPasses)
		summary.RevisionPasses = pass

		if err := r.regenerateFlagged(ctx, doc, state); err != nil {
			return err
		}
		r.saveArtifact(ctx, database, runID, db.StepSlideContent, "generation", state.contents)

		images, err := r.renderDeck(ctx, database, runID, outline, state)
		if err != nil {
			return err
		}

		review, err := r.stages.Reviewer.Review(ctx, images, doc.Content, outline)
		if err != nil {
			fmt.Printf("Warning: Re-review failed, keeping current deck: %v\n", err)
			break
		}
		state.review = review
		if r.opts.Verbose {
			printer.PrintReview(review)
		}

		if review.OverallScore > best.review.OverallScore {
			best = &deckState{resolved: state.resolved, contents: state.contents, review: review}
		}
	}

	// If revision made things worse, restore the best-scoring version
	if best.review.OverallScore > state.review.OverallScore {
		fmt.Printf("Revision lowered the score, restoring the best version (score %d)\n", best.review.OverallScore)
		state.contents = best.contents
		state.review = best.review
		if _, err := r.renderDeck(ctx, database, runID, outline, state); err != nil {
			return err
		}
	}

	r.saveArtifact(ctx, database, runID, db.StepReview, "review", state.review)
	r.writeReviewArtifact(state.review)
	return nil
}

// regenerateFlagged regenerates only the slides named by critical issues.
// When the review flags nothing concrete but still demands revision, the
// whole deck is regenerated.
func (r *Runner) regenerateFlagged(ctx context.Context, doc *ingestion.SourceDocument, state *deckState) error {
	flagged := state.review.FlaggedSlides()

	indexes := make([]int, 0, len(flagged))
	if len(flagged) == 0 {
		for i := range state.resolved {
			indexes = append(indexes, i)
		}
	} else {
		byNumber := make(map[int]int, len(state.resolved))
		for i := range state.resolved {
			byNumber[state.resolved[i].Entry.SlideNumber] = i
		}
		for _, n := range flagged {
			if i, ok := byNumber[n]; ok {
				indexes = append(indexes, i)
			}
		}
	}
	if len(indexes) == 0 {
		return nil
	}

	subset := make([]types.ResolvedSlide, 0, len(indexes))
	for _, i := range indexes {
		subset = append(subset, state.resolved[i])
	}

	regenerated, err := r.stages.Generator.GenerateAll(ctx, subset, doc.Content, r.opts.Concurrency)
	if err != nil {
		return err
	}

	contents := make([]types.SlideContent, len(state.contents))
	copy(contents, state.contents)
	for j, i := range indexes {
		contents[i] = regenerated[j]
	}
	state.contents = contents
	return nil
}

// writeReviewArtifact writes review.json next to the deck output.
func (r *Runner) writeReviewArtifact(review *types.ReviewResult) {
	if review == nil {
		return
	}
	path := filepath.Join(filepath.Dir(r.opts.OutputPath), "review.json")
	if err := WriteJSON(path, review); err != nil {
		fmt.Printf("Warning: Failed to write review artifact: %v\n", err)
	}
}

func (r *Runner) saveArtifact(ctx context.Context, database *db.DB, runID uuid.UUID, step, category string, content any) {
	if database == nil || runID == uuid.Nil {
		return
	}
	if err := database.SaveArtifact(ctx, runID, step, category, content); err != nil {
		fmt.Printf("Warning: Failed to save artifact %s: %v\n", step, err)
	}
}

func (r *Runner) saveTextArtifact(ctx context.Context, database *db.DB, runID uuid.UUID, step, category, text string) {
	if database == nil || runID == uuid.Nil {
		return
	}
	if err := database.SaveTextArtifact(ctx, runID, step, category, text); err != nil {
		fmt.Printf("Warning: Failed to save text artifact %s: %v\n", step, err)
	}
}

func (r *Runner) completeRun(ctx context.Context, database *db.DB, runID uuid.UUID, status string, slideCount int) {
	if database == nil || runID == uuid.Nil {
		return
	}
	if err := database.CompleteRun(ctx, runID, status, slideCount); err != nil {
		fmt.Printf("Warning: Failed to complete database run: %v\n", err)
	}
}

// degradedSlides lists the slide numbers that fell back to outline content.
func degradedSlides(contents []types.SlideContent) []int {
	var numbers []int
	for _, c := range contents {
		if c.Degraded {
			numbers = append(numbers, c.SlideNumber)
		}
	}
	return numbers
}
