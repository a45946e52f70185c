package generation

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/deck-composer/internal/types"
)

// GenerateAll generates content for every resolved slide using a bounded
// worker pool. Results come back in slide order regardless of completion
// order. Individual slide failures degrade rather than abort, so the only
// error paths here are context cancellation.
func (g *Generator) GenerateAll(ctx context.Context, slides []types.ResolvedSlide, deckContext string, concurrency int) ([]types.SlideContent, error) {
	results := make([]*types.SlideContent, len(slides))

	eg, ctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		eg.SetLimit(concurrency)
	}

	for i := range slides {
		eg.Go(func() error {
			content, err := g.GenerateSlide(ctx, slides[i], deckContext)
			if err != nil {
				return err
			}
			results[i] = content
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	ordered := make([]types.SlideContent, len(results))
	for i, content := range results {
		ordered[i] = *content
	}
	return ordered, nil
}
