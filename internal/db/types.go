package db

import (
	"time"

	"github.com/google/uuid"
)

// Run represents a pipeline run record
type Run struct {
	ID           uuid.UUID  `json:"id"`
	TemplateName string     `json:"template_name"`
	SourcePath   string     `json:"source_path"`
	Status       string     `json:"status"`
	SlideCount   int        `json:"slide_count"`
	CreatedAt    time.Time  `json:"created_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// ArtifactStep constants for known artifact types
const (
	StepSourceText   = "source_text"
	StepOutline      = "outline"
	StepResolvedPlan = "resolved_plan"
	StepSlideContent = "slide_content"
	StepDeckHTML     = "deck_html"
	StepReview       = "review"
	StepUsage        = "usage"
)

// Run status values
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// ArtifactSummary is a lightweight view of an artifact for listing
type ArtifactSummary struct {
	ID       uuid.UUID `json:"id"`
	Step     string    `json:"step"`
	Category string    `json:"category"`
	HasJSON  bool      `json:"has_json"`
	HasText  bool      `json:"has_text"`
}
