package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jonathan/deck-composer/internal/catalog"
	"github.com/jonathan/deck-composer/internal/config"
	"github.com/jonathan/deck-composer/internal/export"
	"github.com/jonathan/deck-composer/internal/generation"
	"github.com/jonathan/deck-composer/internal/llm"
	"github.com/jonathan/deck-composer/internal/pipeline"
	"github.com/jonathan/deck-composer/internal/planning"
	"github.com/jonathan/deck-composer/internal/review"
)

// resolveAPIKey returns the configured API key, falling back to the
// GEMINI_API_KEY environment variable.
func resolveAPIKey(cfg *config.Config) (string, error) {
	if cfg.APIKey != "" {
		return cfg.APIKey, nil
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key, nil
	}
	return "", fmt.Errorf("API key is required (set --api-key or GEMINI_API_KEY)")
}

// loadClusteredCatalog loads and clusters the layout catalog.
func loadClusteredCatalog(cfg *config.Config) (*catalog.Catalog, *catalog.Clustering, error) {
	if cfg.Catalog == "" {
		return nil, nil, fmt.Errorf("catalog path is required")
	}
	cat, err := catalog.Load(cfg.Catalog)
	if err != nil {
		return nil, nil, err
	}
	if cat.IsEmpty() {
		return nil, nil, fmt.Errorf("catalog %s contains no layouts", cfg.Catalog)
	}
	return cat, catalog.Cluster(cat), nil
}

// buildStages wires the pipeline stages from a validated config. The
// returned cleanup closes the LLM client.
func buildStages(ctx context.Context, cfg *config.Config) (pipeline.Stages, func(), error) {
	apiKey, err := resolveAPIKey(cfg)
	if err != nil {
		return pipeline.Stages{}, nil, err
	}

	cat, cluster, err := loadClusteredCatalog(cfg)
	if err != nil {
		return pipeline.Stages{}, nil, err
	}

	resolver := catalog.NewResolver(cat, cluster, cfg.SimilarityThreshold, cfg.DefaultLayout)
	if resolver == nil {
		return pipeline.Stages{}, nil, fmt.Errorf("catalog %s contains no layouts", cfg.Catalog)
	}

	usage := llm.NewUsage()
	client, err := llm.NewClient(ctx, llm.DefaultConfig(), apiKey, usage)
	if err != nil {
		return pipeline.Stages{}, nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	cleanup := func() { _ = client.Close() }

	writer, err := export.NewHTMLDeckWriter()
	if err != nil {
		cleanup()
		return pipeline.Stages{}, nil, err
	}

	callTimeout := time.Duration(cfg.CallTimeoutSeconds) * time.Second
	stages := pipeline.Stages{
		Planner: planning.NewPlanner(client, cat, cluster, planning.Options{
			TargetSlides: cfg.TargetSlides,
			BulletMin:    cfg.BulletMin,
			BulletMax:    cfg.BulletMax,
			CallTimeout:  callTimeout,
		}),
		Resolver: resolver,
		Generator: generation.NewGenerator(client, generation.Options{
			BulletMin:   cfg.BulletMin,
			BulletMax:   cfg.BulletMax,
			MaxRetries:  cfg.MaxContentRetries,
			CallTimeout: callTimeout,
		}),
		Writer:   writer,
		Renderer: export.NewChromeRenderer(callTimeout, cfg.Verbose),
		Reviewer: review.NewReviewer(client, review.Options{
			BulletMin:   cfg.BulletMin,
			BulletMax:   cfg.BulletMax,
			Threshold:   cfg.ReviewThreshold,
			CallTimeout: callTimeout,
		}),
		Usage: usage,
	}
	return stages, cleanup, nil
}
