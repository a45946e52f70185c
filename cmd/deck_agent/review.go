package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/spf13/cobra"

	"github.com/jonathan/deck-composer/internal/config"
	"github.com/jonathan/deck-composer/internal/export"
	"github.com/jonathan/deck-composer/internal/ingestion"
	"github.com/jonathan/deck-composer/internal/llm"
	"github.com/jonathan/deck-composer/internal/observability"
	"github.com/jonathan/deck-composer/internal/pipeline"
	"github.com/jonathan/deck-composer/internal/review"
	"github.com/jonathan/deck-composer/internal/types"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Run a vision review against an existing deck",
	Long:  "Renders each slide of a previously generated deck HTML file to an image, sends all slides to the review model in a single call, and writes the verdict to review.json next to the deck.",
	RunE:  runReview,
}

var (
	reviewDeck      string
	reviewInput     string
	reviewAPIKey    string
	reviewThreshold int
	reviewTimeout   int
	reviewVerbose   bool
)

func init() {
	reviewCmd.Flags().StringVarP(&reviewDeck, "deck", "d", "", "Path to the deck HTML file (required)")
	reviewCmd.Flags().StringVarP(&reviewInput, "input", "i", "", "Path to the original source content (optional, improves coverage checks)")
	reviewCmd.Flags().StringVar(&reviewAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")
	reviewCmd.Flags().IntVar(&reviewThreshold, "threshold", config.DefaultReviewThreshold, "Overall score below this marks the deck as needing revision")
	reviewCmd.Flags().IntVar(&reviewTimeout, "timeout", config.DefaultCallTimeoutSeconds, "Timeout in seconds for the render and review calls")
	reviewCmd.Flags().BoolVarP(&reviewVerbose, "verbose", "v", false, "Enable verbose logging")

	if err := reviewCmd.MarkFlagRequired("deck"); err != nil {
		panic(fmt.Sprintf("failed to mark deck flag as required: %v", err))
	}

	rootCmd.AddCommand(reviewCmd)
}

func runReview(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg := config.Config{APIKey: reviewAPIKey}
	apiKey, err := resolveAPIKey(&cfg)
	if err != nil {
		return err
	}

	outline, err := outlineFromDeck(reviewDeck)
	if err != nil {
		return err
	}
	if len(outline.Slides) == 0 {
		return fmt.Errorf("no slides found in %s", reviewDeck)
	}

	originalContent := ""
	if reviewInput != "" {
		doc, err := ingestion.LoadSource(reviewInput)
		if err != nil {
			return err
		}
		originalContent = doc.Content
	}

	usage := llm.NewUsage()
	client, err := llm.NewClient(ctx, llm.DefaultConfig(), apiKey, usage)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer func() { _ = client.Close() }()

	renderer := export.NewChromeRenderer(time.Duration(reviewTimeout)*time.Second, reviewVerbose)
	fmt.Printf("Rendering %d slide(s) from %s...\n", len(outline.Slides), reviewDeck)
	images, err := renderer.RenderSlides(ctx, reviewDeck, len(outline.Slides))
	if err != nil {
		return err
	}

	reviewer := review.NewReviewer(client, review.Options{
		BulletMin:   config.DefaultBulletMin,
		BulletMax:   config.DefaultBulletMax,
		Threshold:   reviewThreshold,
		CallTimeout: time.Duration(reviewTimeout) * time.Second,
	})

	result, err := reviewer.Review(ctx, images, originalContent, outline)
	if err != nil {
		return err
	}

	printer := observability.NewPrinter(os.Stdout)
	printer.PrintReview(result)
	printer.PrintUsage(usage.Stats())

	reviewPath := filepath.Join(filepath.Dir(reviewDeck), "review.json")
	if err := pipeline.WriteJSON(reviewPath, result); err != nil {
		return fmt.Errorf("failed to write review: %w", err)
	}
	fmt.Printf("Review written to %s\n", reviewPath)
	return nil
}

// outlineFromDeck reconstructs a minimal outline from the slide sections of a
// generated deck so the reviewer has per-slide context without the original
// planning artifact.
func outlineFromDeck(path string) (*types.Outline, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open deck: %w", err)
	}
	defer func() { _ = f.Close() }()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse deck HTML: %w", err)
	}

	outline := &types.Outline{
		PresentationSummary: strings.TrimSpace(doc.Find("title").First().Text()),
	}
	doc.Find("section.slide").Each(func(i int, s *goquery.Selection) {
		layout, _ := s.Attr("data-layout")
		title := strings.TrimSpace(s.Find("h1, h2").First().Text())
		outline.Slides = append(outline.Slides, types.OutlineEntry{
			SlideNumber: i + 1,
			LayoutName:  layout,
			Purpose:     title,
		})
	})
	return outline, nil
}
