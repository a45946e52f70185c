package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/deck-composer/internal/config"
	"github.com/jonathan/deck-composer/internal/db"
	"github.com/jonathan/deck-composer/internal/ingestion"
	"github.com/jonathan/deck-composer/internal/pipeline"
	"github.com/jonathan/deck-composer/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Starts an HTTP server exposing deck generation and run history endpoints.

Required environment variables:
  JWT_SECRET           secret for signing auth tokens
  ADMIN_USER           admin login username
  ADMIN_PASSWORD_HASH  bcrypt hash of the admin password
  GEMINI_API_KEY       Gemini API key for pipeline runs

Optional:
  DATABASE_URL         PostgreSQL URL for run history and artifacts
  JWT_EXPIRATION_HOURS token lifetime (default 24)`,
	RunE: runServe,
}

var (
	serveAddr    string
	serveVerbose bool
)

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Address to listen on")
	serveCmd.Flags().BoolVarP(&serveVerbose, "verbose", "v", false, "Enable verbose pipeline logging")

	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	jwtCfg := server.JWTConfig{Secret: os.Getenv("JWT_SECRET")}
	if hours := os.Getenv("JWT_EXPIRATION_HOURS"); hours != "" {
		d, err := time.ParseDuration(hours + "h")
		if err != nil {
			return fmt.Errorf("invalid JWT_EXPIRATION_HOURS: %w", err)
		}
		jwtCfg.ExpirationHours = int(d.Hours())
	}

	databaseURL := os.Getenv("DATABASE_URL")
	var store *db.DB
	if databaseURL != "" {
		var err error
		store, err = db.Connect(ctx, databaseURL)
		if err != nil {
			fmt.Printf("Warning: Database connection failed, run history disabled: %v\n", err)
			store = nil
		} else {
			defer store.Close()
		}
	}

	passwords, err := config.NewPasswordConfig()
	if err != nil {
		return err
	}

	srv, err := server.NewServer(server.Options{
		Addr:      serveAddr,
		JWT:       jwtCfg,
		AdminUser: os.Getenv("ADMIN_USER"),
		AdminHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		Passwords: passwords,
		DB:        store,
		StartRun:  startServerRun(databaseURL),
	})
	if err != nil {
		return err
	}

	return srv.Start(ctx)
}

// startServerRun builds the RunStarter the server uses to launch pipeline
// runs from API requests. Each run gets its own stage wiring so client
// lifetimes do not outlive the run.
func startServerRun(databaseURL string) server.RunStarter {
	return func(ctx context.Context, req server.GenerateRequest) error {
		cfg := config.Config{
			Catalog:      req.Catalog,
			Input:        req.Source,
			Output:       req.Output,
			TargetSlides: req.TargetSlides,
			SkipReview:   req.SkipReview,
			DatabaseURL:  databaseURL,
			Verbose:      serveVerbose,
		}
		cfg.ApplyDefaults()
		if cfg.Output == "" {
			cfg.Output = "output/deck.html"
		}
		if err := cfg.Validate(); err != nil {
			return err
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
		log.Printf("Run complete: %s (%d slides)", summary.OutputPath, summary.SlideCount)
		return nil
	}
}
