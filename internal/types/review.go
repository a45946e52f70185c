//nolint:revive // types is a standard Go package name pattern
package types

// IssueSeverity classifies how badly a review issue affects the deck.
type IssueSeverity string

// Issue severities.
const (
	SeverityCritical IssueSeverity = "critical"
	SeverityModerate IssueSeverity = "moderate"
	SeverityMinor    IssueSeverity = "minor"
)

// CriticalIssue describes one concrete problem found during review, with the
// slides it affects and a recommended fix.
type CriticalIssue struct {
	SlideNumbers   []int         `json:"slide_numbers"`
	Issue          string        `json:"issue"`
	Severity       IssueSeverity `json:"severity"`
	Recommendation string        `json:"recommendation"`
}

// ReviewResult is the holistic, whole-deck quality assessment produced by a
// single review pass.
type ReviewResult struct {
	OverallAssessment      string          `json:"overall_assessment"`
	ContentCoverageScore   int             `json:"content_coverage_score"`
	VerbosityScore         int             `json:"verbosity_score"`
	ConsistencyScore       int             `json:"consistency_score"`
	FlowScore              int             `json:"flow_score"`
	VisualRiskScore        int             `json:"visual_risk_score"`
	OverallScore           int             `json:"overall_score"`
	NeedsRevision          bool            `json:"needs_revision"`
	CriticalIssues         []CriticalIssue `json:"critical_issues"`
	MissingContent         []string        `json:"missing_content"`
	Strengths              []string        `json:"strengths"`
	ImprovementSuggestions []string        `json:"improvement_suggestions"`
}

// AspectScores returns the per-aspect scores keyed by aspect name.
func (r *ReviewResult) AspectScores() map[string]int {
	return map[string]int{
		"content_coverage": r.ContentCoverageScore,
		"verbosity":        r.VerbosityScore,
		"consistency":      r.ConsistencyScore,
		"flow":             r.FlowScore,
		"visual_risk":      r.VisualRiskScore,
	}
}

// RevisionRequired reports whether the deck needs another pass: the overall
// score fell below threshold, or any critical issue is present regardless of
// score.
func (r *ReviewResult) RevisionRequired(threshold int) bool {
	if r.OverallScore < threshold {
		return true
	}
	return len(r.CriticalIssues) > 0
}

// FlaggedSlides returns the deduplicated slide numbers referenced by critical
// issues, in ascending order of first mention. Revision passes regenerate only
// these slides.
func (r *ReviewResult) FlaggedSlides() []int {
	seen := make(map[int]bool)
	flagged := make([]int, 0)
	for _, issue := range r.CriticalIssues {
		for _, n := range issue.SlideNumbers {
			if !seen[n] {
				seen[n] = true
				flagged = append(flagged, n)
			}
		}
	}
	return flagged
}
