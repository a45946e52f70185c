// Package review performs the holistic vision review of a rendered deck.
// All slide images go to the model in a single call so cross-slide concerns
// like flow and consistency are judged with full context.
package review

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/deck-composer/internal/llm"
	"github.com/jonathan/deck-composer/internal/prompts"
	"github.com/jonathan/deck-composer/internal/schemas"
	"github.com/jonathan/deck-composer/internal/types"
)

// Options are the tunables for the holistic review.
type Options struct {
	BulletMin   int
	BulletMax   int
	Threshold   int           // overall score below this forces a revision pass
	CallTimeout time.Duration // per-call deadline, 0 disables
}

// Reviewer runs single-call vision reviews of rendered slide images.
type Reviewer struct {
	client llm.Client
	opts   Options
}

// NewReviewer creates a reviewer.
func NewReviewer(client llm.Client, opts Options) *Reviewer {
	return &Reviewer{client: client, opts: opts}
}

// Review sends every slide image plus the planning context to the model in
// one call and validates the structured verdict. The needs_revision flag in
// the response is advisory only; the returned result's NeedsRevision is
// recomputed from the score threshold and critical issues.
func (r *Reviewer) Review(ctx context.Context, images []llm.ImageInput, originalContent string, outline *types.Outline) (*types.ReviewResult, error) {
	if len(images) == 0 {
		return nil, &ReviewError{Message: "no slide images to review"}
	}

	data := map[string]string{
		"SlideCount":      strconv.Itoa(len(images)),
		"OriginalContent": originalContent,
		"OutlineSummary":  outline.PresentationSummary,
		"PlanContext":     planContext(outline),
		"BulletMin":       strconv.Itoa(r.opts.BulletMin),
		"BulletMax":       strconv.Itoa(r.opts.BulletMax),
	}
	prompt := prompts.Format(prompts.MustGet("review.json", "holistic-review"), data)

	if r.opts.CallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.CallTimeout)
		defer cancel()
	}

	resp, err := r.client.GenerateJSONWithImages(ctx, prompt, images, llm.TierAdvanced)
	if err != nil {
		return nil, &ReviewError{Message: "review call failed", Cause: err}
	}

	cleaned := llm.CleanJSONBlock(resp)

	if err := schemas.ValidateDocument(schemas.ReviewContract(), cleaned); err != nil {
		return nil, &ReviewError{Message: "review response failed validation", Cause: err}
	}

	var result types.ReviewResult
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return nil, &ReviewError{Message: "failed to unmarshal review result", Cause: err}
	}

	// The model's own flag is unreliable; derive it from the contract
	result.NeedsRevision = result.RevisionRequired(r.opts.Threshold)
	return &result, nil
}

// planContext renders the outline entries as compact per-slide context.
func planContext(outline *types.Outline) string {
	var b strings.Builder
	for _, slide := range outline.Slides {
		fmt.Fprintf(&b, "Slide %d (%s): %s\n", slide.SlideNumber, slide.LayoutName, slide.Purpose)
	}
	return b.String()
}
