package export

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/jonathan/deck-composer/internal/llm"
)

// Renderer produces per-slide images from a written deck artifact.
type Renderer interface {
	RenderSlides(ctx context.Context, deckPath string, slideCount int) ([]llm.ImageInput, error)
}

// ChromeRenderer screenshots each slide section of an HTML deck in a
// headless browser. Requires Chrome/Chromium on the system.
type ChromeRenderer struct {
	Timeout time.Duration
	Verbose bool
}

// NewChromeRenderer creates a renderer with the given per-deck timeout.
func NewChromeRenderer(timeout time.Duration, verbose bool) *ChromeRenderer {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &ChromeRenderer{Timeout: timeout, Verbose: verbose}
}

// RenderSlides loads the deck from disk and captures one PNG per slide, in
// slide order.
func (r *ChromeRenderer) RenderSlides(ctx context.Context, deckPath string, slideCount int) ([]llm.ImageInput, error) {
	if slideCount <= 0 {
		return nil, &RenderingError{Message: "no slides to render"}
	}

	absPath, err := filepath.Abs(deckPath)
	if err != nil {
		return nil, &RenderingError{Message: "failed to resolve deck path", Cause: err}
	}
	url := "file://" + absPath

	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, r.Timeout)
	defer cancel()

	if r.Verbose {
		log.Printf("[RENDERER] Rendering %d slides from %s", slideCount, url)
	}

	if err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
	); err != nil {
		return nil, &RenderingError{Message: "failed to load deck in browser", Cause: err}
	}

	images := make([]llm.ImageInput, 0, slideCount)
	for n := 1; n <= slideCount; n++ {
		sel := fmt.Sprintf("#slide-%d", n)

		var buf []byte
		if err := chromedp.Run(browserCtx,
			chromedp.ScrollIntoView(sel, chromedp.ByID),
			chromedp.Screenshot(sel, &buf, chromedp.ByID),
		); err != nil {
			return nil, &RenderingError{
				Message: fmt.Sprintf("failed to capture slide %d", n),
				Cause:   err,
			}
		}

		images = append(images, llm.ImageInput{Format: "png", Data: buf})
		if r.Verbose {
			log.Printf("[RENDERER] Captured slide %d (%d bytes)", n, len(buf))
		}
	}

	return images, nil
}
