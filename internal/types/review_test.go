//nolint:revive // types is a standard Go package name pattern
package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReviewResult_RevisionRequired(t *testing.T) {
	tests := []struct {
		name      string
		review    ReviewResult
		threshold int
		expected  bool
	}{
		{
			name:      "score below threshold with no issues",
			review:    ReviewResult{OverallScore: 55},
			threshold: 70,
			expected:  true,
		},
		{
			name: "score above threshold but critical issue present",
			review: ReviewResult{
				OverallScore: 85,
				CriticalIssues: []CriticalIssue{
					{SlideNumbers: []int{2}, Issue: "title overflows", Severity: SeverityCritical},
				},
			},
			threshold: 70,
			expected:  true,
		},
		{
			name:      "score above threshold and clean",
			review:    ReviewResult{OverallScore: 85},
			threshold: 70,
			expected:  false,
		},
		{
			name:      "score exactly at threshold is acceptable",
			review:    ReviewResult{OverallScore: 70},
			threshold: 70,
			expected:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.review.RevisionRequired(tt.threshold))
		})
	}
}

func TestReviewResult_FlaggedSlides(t *testing.T) {
	review := ReviewResult{
		CriticalIssues: []CriticalIssue{
			{SlideNumbers: []int{3, 1}, Issue: "duplicate content"},
			{SlideNumbers: []int{1, 5}, Issue: "text truncated"},
		},
	}

	assert.Equal(t, []int{3, 1, 5}, review.FlaggedSlides())
}

func TestReviewResult_FlaggedSlidesEmpty(t *testing.T) {
	review := ReviewResult{}
	assert.Empty(t, review.FlaggedSlides())
}

func TestReviewResult_AspectScores(t *testing.T) {
	review := ReviewResult{
		ContentCoverageScore: 90,
		VerbosityScore:       80,
		ConsistencyScore:     70,
		FlowScore:            60,
		VisualRiskScore:      50,
	}

	scores := review.AspectScores()
	assert.Equal(t, 90, scores["content_coverage"])
	assert.Equal(t, 80, scores["verbosity"])
	assert.Equal(t, 70, scores["consistency"])
	assert.Equal(t, 60, scores["flow"])
	assert.Equal(t, 50, scores["visual_risk"])
	assert.Len(t, scores, 5)
}
