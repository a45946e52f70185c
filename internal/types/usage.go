//nolint:revive // types is a standard Go package name pattern
package types

// UsageStats is a snapshot of accumulated generative-service usage for one
// pipeline run. The live accumulator lives in the llm package; this is the
// read-only form reported at run end.
type UsageStats struct {
	TotalTokens int     `json:"total_tokens"`
	TotalCost   float64 `json:"total_cost"`
	APICalls    int     `json:"api_calls"`
}

// RunSummary is the externally observable result of one pipeline run.
type RunSummary struct {
	OutputPath     string        `json:"output_path"`
	SlideCount     int           `json:"slide_count"`
	DegradedSlides []int         `json:"degraded_slides"`
	Review         *ReviewResult `json:"review,omitempty"`
	ReviewSkipped  bool          `json:"review_skipped"`
	RevisionPasses int           `json:"revision_passes"`
	Usage          UsageStats    `json:"usage"`
}
