package llm

import (
	"sync"

	"github.com/jonathan/deck-composer/internal/types"
)

// costPerMillionTokens is a flat blended rate used for cost estimation.
// Input and output pricing differ per model; a single averaged rate keeps the
// estimate simple and stable across tiers.
const costPerMillionTokens = 10.0

// Usage accumulates token and cost totals across every generative call made
// during one pipeline run. The orchestrator owns one Usage per run and passes
// it to the client; completions from concurrent per-slide generation record
// through the same instance, so all mutation is mutex-serialized.
type Usage struct {
	mu          sync.Mutex
	totalTokens int
	totalCost   float64
	apiCalls    int
}

// NewUsage returns an empty accumulator.
func NewUsage() *Usage {
	return &Usage{}
}

// Record adds one completed API call's token count to the totals.
func (u *Usage) Record(tokens int) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.totalTokens += tokens
	u.totalCost += float64(tokens) / 1_000_000 * costPerMillionTokens
	u.apiCalls++
}

// Stats returns a point-in-time snapshot of the accumulated totals.
func (u *Usage) Stats() types.UsageStats {
	u.mu.Lock()
	defer u.mu.Unlock()
	return types.UsageStats{
		TotalTokens: u.totalTokens,
		TotalCost:   u.totalCost,
		APICalls:    u.apiCalls,
	}
}

// Reset clears the accumulator for a fresh run.
func (u *Usage) Reset() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.totalTokens = 0
	u.totalCost = 0
	u.apiCalls = 0
}
