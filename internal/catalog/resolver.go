package catalog

import (
	"log"
	"regexp"
	"strings"

	"github.com/jonathan/deck-composer/internal/types"
)

// ResolutionMethod names the branch that produced a layout resolution.
type ResolutionMethod string

// Resolution methods, from strongest to weakest.
const (
	MethodExact      ResolutionMethod = "exact"
	MethodNormalized ResolutionMethod = "normalized"
	MethodFuzzy      ResolutionMethod = "fuzzy"
	MethodFallback   ResolutionMethod = "fallback"
)

// Resolution records one layout-name resolution for auditing.
type Resolution struct {
	Input  string           `json:"input"`
	Layout string           `json:"layout"`
	Method ResolutionMethod `json:"method"`
	Score  float64          `json:"score,omitempty"`
}

// Resolver maps loosely-specified layout names onto canonical catalog
// entries. Resolve never fails for a non-empty catalog: anything below the
// similarity threshold hits the configured default layout.
type Resolver struct {
	catalog    *Catalog
	clustering *Clustering
	threshold  float64
	defaultIdx int

	normalized []string
	tokens     [][]string
}

var (
	numericPrefixRe = regexp.MustCompile(`^\d+[_\-. ]+`)
	nonAlnumRe      = regexp.MustCompile(`[^a-z0-9]+`)
)

// NewResolver builds a resolver over a clustered catalog. defaultLayout names
// the fallback target; when empty, the first text_content layout is used,
// then the first layout overall. Returns nil for an empty catalog.
func NewResolver(c *Catalog, clustering *Clustering, threshold float64, defaultLayout string) *Resolver {
	if c.IsEmpty() {
		return nil
	}

	r := &Resolver{
		catalog:    c,
		clustering: clustering,
		threshold:  threshold,
		defaultIdx: -1,
		normalized: make([]string, len(c.Layouts)),
		tokens:     make([][]string, len(c.Layouts)),
	}

	for i := range c.Layouts {
		r.normalized[i] = normalizeName(c.Layouts[i].Name)
		r.tokens[i] = strings.Fields(r.normalized[i])
	}

	if defaultLayout != "" {
		if idx, ok := c.byName[defaultLayout]; ok {
			r.defaultIdx = idx
		}
	}
	if r.defaultIdx < 0 {
		for i := range c.Layouts {
			if schema, ok := clustering.SchemaFor(c.Layouts[i].Name); ok && schema.Category == types.CategoryTextContent {
				r.defaultIdx = i
				break
			}
		}
	}
	if r.defaultIdx < 0 {
		r.defaultIdx = 0
	}

	return r
}

// DefaultLayout returns the configured fallback layout.
func (r *Resolver) DefaultLayout() types.LayoutDefinition {
	return r.catalog.Layouts[r.defaultIdx]
}

// Resolve maps a candidate layout name to a catalog entry. The chain is:
// exact case-insensitive match, normalized match, token-overlap similarity,
// then the configured default. Every resolution is logged with the method
// used so systematic planner misses are auditable.
func (r *Resolver) Resolve(candidate string) (types.LayoutDefinition, Resolution) {
	res := r.resolve(candidate)
	layout := *r.catalog.ByName(res.Layout)

	if res.Method == MethodFallback {
		log.Printf("[RESOLVER] fallback: %q -> %q (no match above threshold %.2f)", candidate, res.Layout, r.threshold)
	} else {
		log.Printf("[RESOLVER] %s: %q -> %q (score %.2f)", res.Method, candidate, res.Layout, res.Score)
	}

	return layout, res
}

// ResolveSlide resolves an outline entry into a ResolvedSlide carrying the
// layout and its clustered schema.
func (r *Resolver) ResolveSlide(entry types.OutlineEntry) (types.ResolvedSlide, Resolution) {
	layout, res := r.Resolve(entry.LayoutName)
	schema, _ := r.clustering.SchemaFor(layout.Name)
	return types.ResolvedSlide{
		Entry:          entry,
		ResolvedLayout: layout,
		Schema:         schema,
	}, res
}

func (r *Resolver) resolve(candidate string) Resolution {
	// Exact, ignoring case.
	lower := strings.ToLower(strings.TrimSpace(candidate))
	for i := range r.catalog.Layouts {
		if strings.ToLower(r.catalog.Layouts[i].Name) == lower {
			return Resolution{Input: candidate, Layout: r.catalog.Layouts[i].Name, Method: MethodExact, Score: 1}
		}
	}

	// Normalized: numeric prefixes and punctuation stripped.
	normalized := normalizeName(candidate)
	if normalized != "" {
		for i := range r.catalog.Layouts {
			if r.normalized[i] == normalized {
				return Resolution{Input: candidate, Layout: r.catalog.Layouts[i].Name, Method: MethodNormalized, Score: 1}
			}
		}
	}

	// Token-overlap similarity; first-listed catalog entry wins ties.
	candidateTokens := strings.Fields(normalized)
	bestIdx := -1
	bestScore := 0.0
	for i := range r.catalog.Layouts {
		score := tokenOverlap(candidateTokens, r.tokens[i])
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}

	if bestIdx >= 0 && bestScore >= r.threshold {
		return Resolution{Input: candidate, Layout: r.catalog.Layouts[bestIdx].Name, Method: MethodFuzzy, Score: bestScore}
	}

	return Resolution{Input: candidate, Layout: r.catalog.Layouts[r.defaultIdx].Name, Method: MethodFallback, Score: bestScore}
}

// normalizeName lowercases a layout name, drops a leading numeric prefix
// ("10_Title and Content" -> "title and content"), and collapses punctuation
// to single spaces.
func normalizeName(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = numericPrefixRe.ReplaceAllString(s, "")
	s = nonAlnumRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// tokenOverlap scores two token sets as the size of their intersection over
// the size of the larger set. Returns 0 when either side is empty.
func tokenOverlap(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	set := make(map[string]bool, len(a))
	for _, tok := range a {
		set[tok] = true
	}

	matches := 0
	seen := make(map[string]bool, len(b))
	for _, tok := range b {
		if set[tok] && !seen[tok] {
			matches++
			seen[tok] = true
		}
	}

	larger := len(a)
	if len(b) > larger {
		larger = len(b)
	}
	return float64(matches) / float64(larger)
}
