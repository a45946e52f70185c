package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/deck-composer/internal/config"
	"github.com/jonathan/deck-composer/internal/ingestion"
	"github.com/jonathan/deck-composer/internal/llm"
	"github.com/jonathan/deck-composer/internal/observability"
	"github.com/jonathan/deck-composer/internal/planning"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Plan a presentation outline without generating content",
	Long:  "Runs only the planning stage: loads the source content and layout catalog, asks the model for a slide-by-slide outline, and prints it as JSON. Useful for checking deck structure before a full generation run.",
	RunE:  runPlan,
}

var (
	planCatalog      string
	planInput        string
	planOut          string
	planTargetSlides int
	planAPIKey       string
	planVerbose      bool
)

func init() {
	planCmd.Flags().StringVarP(&planCatalog, "catalog", "c", "", "Path to the layout catalog JSON (required)")
	planCmd.Flags().StringVarP(&planInput, "input", "i", "", "Path to the source content file (required)")
	planCmd.Flags().StringVarP(&planOut, "out", "o", "", "Write the outline JSON to this file instead of stdout")
	planCmd.Flags().IntVar(&planTargetSlides, "target-slides", 0, "Target slide count (0 lets the planner decide)")
	planCmd.Flags().StringVar(&planAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")
	planCmd.Flags().BoolVarP(&planVerbose, "verbose", "v", false, "Print a formatted outline summary")

	if err := planCmd.MarkFlagRequired("catalog"); err != nil {
		panic(fmt.Sprintf("failed to mark catalog flag as required: %v", err))
	}
	if err := planCmd.MarkFlagRequired("input"); err != nil {
		panic(fmt.Sprintf("failed to mark input flag as required: %v", err))
	}

	rootCmd.AddCommand(planCmd)
}

func runPlan(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg := config.Config{Catalog: planCatalog, APIKey: planAPIKey}
	cfg.ApplyDefaults()

	apiKey, err := resolveAPIKey(&cfg)
	if err != nil {
		return err
	}

	cat, cluster, err := loadClusteredCatalog(&cfg)
	if err != nil {
		return err
	}

	doc, err := ingestion.LoadSource(planInput)
	if err != nil {
		return err
	}

	usage := llm.NewUsage()
	client, err := llm.NewClient(ctx, llm.DefaultConfig(), apiKey, usage)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer func() { _ = client.Close() }()

	planner := planning.NewPlanner(client, cat, cluster, planning.Options{
		TargetSlides: planTargetSlides,
		BulletMin:    cfg.BulletMin,
		BulletMax:    cfg.BulletMax,
		CallTimeout:  time.Duration(cfg.CallTimeoutSeconds) * time.Second,
	})

	outline, err := planner.CreateOutline(ctx, doc.Content)
	if err != nil {
		return err
	}

	if planVerbose {
		printer := observability.NewPrinter(os.Stdout)
		printer.PrintOutline(outline)
		printer.PrintUsage(usage.Stats())
	}

	data, err := json.MarshalIndent(outline, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal outline: %w", err)
	}

	if planOut != "" {
		if err := os.WriteFile(planOut, data, 0644); err != nil {
			return fmt.Errorf("failed to write outline: %w", err)
		}
		fmt.Printf("Outline written to %s (%d slides)\n", planOut, len(outline.Slides))
		return nil
	}

	fmt.Println(string(data))
	return nil
}
