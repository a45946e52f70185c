// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
)

// Config represents the generation configuration that can be loaded from a
// JSON file. Missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Paths
	Catalog string `json:"catalog,omitempty" validate:"omitempty"`          // Path to the layout catalog JSON
	Input   string `json:"input,omitempty"`                                 // Path to the source content file
	Output  string `json:"output,omitempty"`                                // Path for the generated deck artifact

	// Planning
	TargetSlides int `json:"target_slides,omitempty" validate:"gte=0"` // Optional target slide count (0 = let the planner decide)

	// Content constraints
	BulletMin int `json:"bullet_min,omitempty" validate:"gte=0"` // Minimum bullets per content slide
	BulletMax int `json:"bullet_max,omitempty" validate:"gte=0"` // Maximum bullets per content slide

	// Layout resolution
	SimilarityThreshold float64 `json:"similarity_threshold,omitempty" validate:"gte=0,lte=1"` // Minimum token-overlap score before fallback
	DefaultLayout       string  `json:"default_layout,omitempty"`                              // Fallback layout name (empty = first text layout)

	// Review
	SkipReview      bool `json:"skip_review,omitempty"`                               // Skip the holistic review stage entirely
	ReviewThreshold int  `json:"review_threshold,omitempty" validate:"gte=0,lte=100"` // Overall score below which revision triggers
	// MaxRevisionPasses is a pointer so an explicit 0 (review once, never
	// revise) is distinguishable from unset.
	MaxRevisionPasses *int `json:"max_revision_passes,omitempty" validate:"omitempty,gte=0,lte=5"`
	MaxContentRetries int  `json:"max_content_retries,omitempty" validate:"gte=0,lte=3"` // Per-slide retries before degrading

	// Execution
	Concurrency        int  `json:"concurrency,omitempty" validate:"gte=0,lte=64"` // Parallel per-slide generation workers
	CallTimeoutSeconds int  `json:"call_timeout_seconds,omitempty" validate:"gte=0"`
	Verbose            bool `json:"verbose,omitempty"`

	// External services
	APIKey      string `json:"api_key,omitempty"`      // Gemini API key
	DatabaseURL string `json:"database_url,omitempty"` // Optional PostgreSQL URL for artifact persistence
}

// Defaults are applied by ApplyDefaults for any zero-valued tunable.
const (
	DefaultBulletMin           = 4
	DefaultBulletMax           = 6
	DefaultSimilarityThreshold = 0.5
	DefaultReviewThreshold     = 70
	DefaultMaxRevisionPasses   = 1
	DefaultMaxContentRetries   = 1
	DefaultConcurrency         = 4
	DefaultCallTimeoutSeconds  = 120
)

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// ApplyDefaults fills zero-valued tunables with their defaults.
func (c *Config) ApplyDefaults() {
	if c.BulletMin == 0 {
		c.BulletMin = DefaultBulletMin
	}
	if c.BulletMax == 0 {
		c.BulletMax = DefaultBulletMax
	}
	if c.SimilarityThreshold == 0 {
		c.SimilarityThreshold = DefaultSimilarityThreshold
	}
	if c.ReviewThreshold == 0 {
		c.ReviewThreshold = DefaultReviewThreshold
	}
	if c.MaxRevisionPasses == nil {
		passes := DefaultMaxRevisionPasses
		c.MaxRevisionPasses = &passes
	}
	if c.MaxContentRetries == 0 {
		c.MaxContentRetries = DefaultMaxContentRetries
	}
	if c.Concurrency == 0 {
		c.Concurrency = DefaultConcurrency
	}
	if c.CallTimeoutSeconds == 0 {
		c.CallTimeoutSeconds = DefaultCallTimeoutSeconds
	}
}

// RevisionPasses returns the configured revision pass budget, falling back
// to the default when unset.
func (c *Config) RevisionPasses() int {
	if c.MaxRevisionPasses == nil {
		return DefaultMaxRevisionPasses
	}
	return *c.MaxRevisionPasses
}

// Validate checks field ranges and cross-field constraints. Call after
// ApplyDefaults and flag merging.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if c.BulletMin > c.BulletMax {
		return fmt.Errorf("config error: 'bullet_min' (%d) must not exceed 'bullet_max' (%d)", c.BulletMin, c.BulletMax)
	}

	return nil
}
