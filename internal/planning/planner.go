// Package planning turns cleaned source content into a slide-by-slide
// outline using the LLM. The outline references catalog layouts by name
// but does not resolve them; that happens downstream.
package planning

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/deck-composer/internal/catalog"
	"github.com/jonathan/deck-composer/internal/llm"
	"github.com/jonathan/deck-composer/internal/prompts"
	"github.com/jonathan/deck-composer/internal/schemas"
	"github.com/jonathan/deck-composer/internal/types"
)

// Options are the tunables for outline planning.
type Options struct {
	TargetSlides int           // 0 means the model picks the count
	BulletMin    int
	BulletMax    int
	CallTimeout  time.Duration // per-call deadline, 0 disables
}

// Planner produces deck outlines from source content.
type Planner struct {
	client  llm.Client
	catalog *catalog.Catalog
	cluster *catalog.Clustering
	opts    Options
}

// NewPlanner creates a planner bound to a layout catalog and its clustering.
func NewPlanner(client llm.Client, cat *catalog.Catalog, cluster *catalog.Clustering, opts Options) *Planner {
	return &Planner{client: client, catalog: cat, cluster: cluster, opts: opts}
}

// CreateOutline asks the LLM for a full deck outline and validates the
// response against the outline contract. An invalid response gets one
// strict regeneration attempt before the run fails.
func (p *Planner) CreateOutline(ctx context.Context, content string) (*types.Outline, error) {
	data := map[string]string{
		"Content":          content,
		"LayoutCategories": p.describeCategories(),
		"TargetText":       p.targetText(),
		"BulletMin":        strconv.Itoa(p.opts.BulletMin),
		"BulletMax":        strconv.Itoa(p.opts.BulletMax),
	}

	prompt := prompts.Format(prompts.MustGet("planning.json", "create-outline"), data)

	outline, verr, err := p.generateOutline(ctx, prompt)
	if err != nil {
		return nil, &PlanningError{Message: "outline generation failed", Cause: err}
	}
	if verr == nil {
		return outline, nil
	}

	// One strict retry with the validation errors fed back
	data["ValidationErrors"] = verr.Summary()
	strictPrompt := prompts.Format(prompts.MustGet("planning.json", "create-outline-strict"), data)

	outline, verr, err = p.generateOutline(ctx, strictPrompt)
	if err != nil {
		return nil, &PlanningError{Message: "outline generation failed on strict retry", Cause: err}
	}
	if verr != nil {
		return nil, &PlanningError{Message: "outline failed validation after strict retry", Cause: verr}
	}
	return outline, nil
}

// generateOutline makes a single LLM call and validates the result. A
// *schemas.ValidationError is returned separately so the caller can decide
// whether to retry; any other error is terminal for this attempt.
func (p *Planner) generateOutline(ctx context.Context, prompt string) (*types.Outline, *schemas.ValidationError, error) {
	if p.opts.CallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.CallTimeout)
		defer cancel()
	}

	resp, err := p.client.GenerateJSON(ctx, prompt, llm.TierAdvanced)
	if err != nil {
		return nil, nil, err
	}

	cleaned := llm.CleanJSONBlock(resp)

	if err := schemas.ValidateDocument(schemas.OutlineContract(), cleaned); err != nil {
		var verr *schemas.ValidationError
		if errors.As(err, &verr) {
			return nil, verr, nil
		}
		return nil, nil, err
	}

	var outline types.Outline
	if err := json.Unmarshal([]byte(cleaned), &outline); err != nil {
		return nil, nil, fmt.Errorf("failed to unmarshal outline: %w", err)
	}

	renumber(&outline)
	return &outline, nil, nil
}

// renumber forces dense sequential slide numbers in array order. Models
// occasionally skip or repeat numbers; downstream stages rely on
// slide_number matching the slide's position.
func renumber(outline *types.Outline) {
	for i := range outline.Slides {
		outline.Slides[i].SlideNumber = i + 1
	}
}

// layoutsPerCategory caps the layout names listed per category so large
// catalogs do not blow up the planning prompt.
const layoutsPerCategory = 5

// describeCategories renders the clustered catalog as a compact per-category
// listing. Each category shows at most layoutsPerCategory layout names; the
// rest collapse into a count.
func (p *Planner) describeCategories() string {
	type layoutEntry struct {
		name           string
		supportsImages bool
	}

	byCategory := make(map[types.SchemaCategory][]layoutEntry)
	for i := range p.catalog.Layouts {
		layout := &p.catalog.Layouts[i]
		schema, ok := p.cluster.SchemaFor(layout.Name)
		if !ok {
			continue
		}
		byCategory[schema.Category] = append(byCategory[schema.Category], layoutEntry{
			name:           layout.Name,
			supportsImages: schema.HasKind(types.KindImage),
		})
	}

	categories := make([]string, 0, len(byCategory))
	for category := range byCategory {
		categories = append(categories, string(category))
	}
	sort.Strings(categories)

	var b strings.Builder
	for _, category := range categories {
		layouts := byCategory[types.SchemaCategory(category)]
		fmt.Fprintf(&b, "%s:\n", strings.ToUpper(strings.ReplaceAll(category, "_", " ")))
		for i, layout := range layouts {
			if i == layoutsPerCategory {
				fmt.Fprintf(&b, "  ... and %d more\n", len(layouts)-layoutsPerCategory)
				break
			}
			note := ""
			if layout.supportsImages {
				note = " (supports images)"
			}
			fmt.Fprintf(&b, "  - %s%s\n", layout.name, note)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (p *Planner) targetText() string {
	if p.opts.TargetSlides > 0 {
		return fmt.Sprintf("TARGET SLIDE COUNT: aim for approximately %d slides.", p.opts.TargetSlides)
	}
	return "Choose a slide count appropriate for the amount of content."
}
