package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonathan/deck-composer/internal/config"
	"github.com/jonathan/deck-composer/internal/ingestion"
	"github.com/jonathan/deck-composer/internal/pipeline"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Run the full deck generation pipeline end-to-end",
	Long: `Orchestrates the entire deck generation process: catalog clustering -> outline planning -> layout resolution -> parallel content generation -> rendering -> holistic review -> bounded revision.

Configuration can be loaded from a JSON file using --config. Command-line arguments override config file values.`,
	RunE: runGenerate,
}

var (
	genConfigPath        string
	genCatalog           string
	genInput             string
	genOutput            string
	genTargetSlides      int
	genBulletMin         int
	genBulletMax         int
	genSimilarity        float64
	genDefaultLayout     string
	genSkipReview        bool
	genReviewThreshold   int
	genMaxRevisionPasses int
	genMaxContentRetries int
	genConcurrency       int
	genAPIKey            string
	genDatabaseURL       string
	genVerbose           bool
)

func init() {
	generateCmd.Flags().StringVar(&genConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	generateCmd.Flags().StringVarP(&genCatalog, "catalog", "c", "", "Path to the layout catalog JSON produced by 'inspect'")
	generateCmd.Flags().StringVarP(&genInput, "input", "i", "", "Path to the source content file (.txt, .md, or .html)")
	generateCmd.Flags().StringVarP(&genOutput, "output", "o", "", "Path for the generated deck HTML")
	generateCmd.Flags().IntVar(&genTargetSlides, "target-slides", 0, "Target slide count (0 lets the planner decide)")
	generateCmd.Flags().IntVar(&genBulletMin, "bullet-min", 0, "Minimum bullets per content slide")
	generateCmd.Flags().IntVar(&genBulletMax, "bullet-max", 0, "Maximum bullets per content slide")
	generateCmd.Flags().Float64Var(&genSimilarity, "similarity-threshold", 0, "Minimum layout-name similarity before fallback")
	generateCmd.Flags().StringVar(&genDefaultLayout, "default-layout", "", "Fallback layout name for unresolvable layout references")
	generateCmd.Flags().BoolVar(&genSkipReview, "skip-review", false, "Skip the holistic vision review")
	generateCmd.Flags().IntVar(&genReviewThreshold, "review-threshold", 0, "Review score below which a revision pass runs")
	generateCmd.Flags().IntVar(&genMaxRevisionPasses, "max-revision-passes", config.DefaultMaxRevisionPasses, "Revision passes after the first review (0 disables revision)")
	generateCmd.Flags().IntVar(&genMaxContentRetries, "max-content-retries", 0, "Per-slide corrective retries before degrading")
	generateCmd.Flags().IntVar(&genConcurrency, "concurrency", 0, "Parallel slide generation workers")
	generateCmd.Flags().BoolVarP(&genVerbose, "verbose", "v", false, "Print detailed progress information")

	// API key can be passed as a flag, or read from env var GEMINI_API_KEY
	generateCmd.Flags().StringVar(&genAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")

	// Database URL for artifact persistence
	generateCmd.Flags().StringVar(&genDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")

	rootCmd.AddCommand(generateCmd)
}

// mergeGenerateFlags applies explicitly set CLI flags over config values.
func mergeGenerateFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("catalog") {
		cfg.Catalog = genCatalog
	}
	if cmd.Flags().Changed("input") {
		cfg.Input = genInput
	}
	if cmd.Flags().Changed("output") {
		cfg.Output = genOutput
	}
	if cmd.Flags().Changed("target-slides") {
		cfg.TargetSlides = genTargetSlides
	}
	if cmd.Flags().Changed("bullet-min") {
		cfg.BulletMin = genBulletMin
	}
	if cmd.Flags().Changed("bullet-max") {
		cfg.BulletMax = genBulletMax
	}
	if cmd.Flags().Changed("similarity-threshold") {
		cfg.SimilarityThreshold = genSimilarity
	}
	if cmd.Flags().Changed("default-layout") {
		cfg.DefaultLayout = genDefaultLayout
	}
	if cmd.Flags().Changed("skip-review") {
		cfg.SkipReview = genSkipReview
	}
	if cmd.Flags().Changed("review-threshold") {
		cfg.ReviewThreshold = genReviewThreshold
	}
	if cmd.Flags().Changed("max-revision-passes") {
		cfg.MaxRevisionPasses = &genMaxRevisionPasses
	}
	if cmd.Flags().Changed("max-content-retries") {
		cfg.MaxContentRetries = genMaxContentRetries
	}
	if cmd.Flags().Changed("concurrency") {
		cfg.Concurrency = genConcurrency
	}
	if cmd.Flags().Changed("api-key") {
		cfg.APIKey = genAPIKey
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = genDatabaseURL
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = genVerbose
	}
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	var cfg config.Config
	if genConfigPath != "" {
		loaded, err := config.LoadConfig(genConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
		if genVerbose {
			fmt.Printf("Loaded config from: %s\n", genConfigPath)
		}
	}

	mergeGenerateFlags(cmd, &cfg)
	cfg.ApplyDefaults()
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if cfg.Input == "" {
		return fmt.Errorf("input file is required (--input)")
	}
	if cfg.Output == "" {
		cfg.Output = "output/deck.html"
	}

	doc, err := ingestion.LoadSource(cfg.Input)
	if err != nil {
		return err
	}

	stages, cleanup, err := buildStages(ctx, &cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	runner := pipeline.NewRunner(stages, pipeline.RunOptions{
		OutputPath:        cfg.Output,
		TemplateName:      filepath.Base(cfg.Catalog),
		Concurrency:       cfg.Concurrency,
		SkipReview:        cfg.SkipReview,
		MaxRevisionPasses: cfg.RevisionPasses(),
		Verbose:           cfg.Verbose,
		DatabaseURL:       cfg.DatabaseURL,
	})

	summary, err := runner.Run(ctx, doc)
	if err != nil {
		return err
	}

	fmt.Printf("\nDeck written to %s (%d slides)\n", summary.OutputPath, summary.SlideCount)
	return nil
}
