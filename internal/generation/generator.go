// Package generation produces schema-guided slide content. Each slide is
// generated independently against the field schema of its resolved layout,
// validated, retried once with corrective feedback, and degraded to
// outline-derived content if the model cannot satisfy the contract.
package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/deck-composer/internal/llm"
	"github.com/jonathan/deck-composer/internal/prompts"
	"github.com/jonathan/deck-composer/internal/schemas"
	"github.com/jonathan/deck-composer/internal/types"
)

// Options are the tunables for per-slide content generation.
type Options struct {
	BulletMin   int
	BulletMax   int
	MaxRetries  int           // corrective retries after the first attempt
	CallTimeout time.Duration // per-call deadline, 0 disables
}

// Generator produces validated content for individual slides.
type Generator struct {
	client llm.Client
	opts   Options
}

// NewGenerator creates a content generator.
func NewGenerator(client llm.Client, opts Options) *Generator {
	return &Generator{client: client, opts: opts}
}

// GenerateSlide produces content for one resolved slide. The returned error
// is non-nil only for context cancellation; every other failure path yields
// a degraded slide built from the outline entry so the deck stays complete.
func (g *Generator) GenerateSlide(ctx context.Context, slide types.ResolvedSlide, deckContext string) (*types.SlideContent, error) {
	// Blank layouts carry no generatable fields
	if len(slide.Schema.Fields) == 0 {
		return &types.SlideContent{
			SlideNumber: slide.Entry.SlideNumber,
			LayoutName:  slide.ResolvedLayout.Name,
			FieldValues: map[string]types.FieldValue{},
		}, nil
	}

	data := g.promptData(slide, deckContext)
	prompt := prompts.Format(prompts.MustGet("generation.json", "generate-slide-content"), data)
	contract := schemas.ContentContract(&slide.Schema, g.opts.BulletMin, g.opts.BulletMax)

	var lastErr error
	for attempt := 0; attempt <= g.opts.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		content, err := g.generateOnce(ctx, prompt, contract, slide)
		if err == nil {
			return content, nil
		}
		lastErr = err

		var verr *schemas.ValidationError
		if !errors.As(err, &verr) {
			// Transport or parse failure: retrying with corrective
			// feedback will not help
			break
		}

		data["ValidationErrors"] = verr.Summary()
		prompt = prompts.Format(prompts.MustGet("generation.json", "generate-slide-content-retry"), data)
	}

	log.Printf("[GENERATOR] slide %d: falling back to outline content: %v", slide.Entry.SlideNumber, lastErr)
	content := g.fallbackContent(slide)
	content.Degraded = true
	return content, nil
}

// generateOnce makes a single content call and validates the response. The
// call deadline makes a stalled service call degrade the slide instead of
// hanging the generation pool.
func (g *Generator) generateOnce(ctx context.Context, prompt string, contract map[string]any, slide types.ResolvedSlide) (*types.SlideContent, error) {
	if g.opts.CallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.opts.CallTimeout)
		defer cancel()
	}

	resp, err := g.client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return nil, &GenerationError{SlideNumber: slide.Entry.SlideNumber, Message: "content call failed", Cause: err}
	}

	cleaned := llm.CleanJSONBlock(resp)

	if err := schemas.ValidateDocument(contract, cleaned); err != nil {
		return nil, err
	}

	var raw map[string]types.FieldValue
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, &GenerationError{SlideNumber: slide.Entry.SlideNumber, Message: "failed to unmarshal slide content", Cause: err}
	}

	content := &types.SlideContent{
		SlideNumber: slide.Entry.SlideNumber,
		LayoutName:  slide.ResolvedLayout.Name,
		FieldValues: make(map[string]types.FieldValue, len(raw)),
	}
	for name, value := range raw {
		if name == "speaker_notes" {
			content.SpeakerNotes = value.Text
			continue
		}
		content.FieldValues[name] = value
	}

	if verr := checkValues(&slide.Schema, content); verr != nil {
		return nil, verr
	}
	return content, nil
}

// checkValues enforces the constraints the JSON Schema contract cannot
// express on the decoded values: required fields must be non-empty and
// bullet arrays must not contain blank entries.
func checkValues(schema *types.FieldSchema, content *types.SlideContent) *schemas.ValidationError {
	var fieldErrs []schemas.FieldError

	for _, field := range schema.Fields {
		value, present := content.FieldValues[field.FieldName]
		if !present {
			if field.Required {
				fieldErrs = append(fieldErrs, schemas.FieldError{Field: field.FieldName, Message: "required field is missing"})
			}
			continue
		}

		if field.Required && value.IsEmpty() {
			fieldErrs = append(fieldErrs, schemas.FieldError{Field: field.FieldName, Message: "required field is empty"})
			continue
		}

		if field.Kind == types.KindBody && value.IsList() {
			for i, item := range value.Items {
				if strings.TrimSpace(item) == "" {
					fieldErrs = append(fieldErrs, schemas.FieldError{
						Field:   fmt.Sprintf("%s[%d]", field.FieldName, i),
						Message: "bullet entry is empty",
					})
				}
			}
		}
	}

	if len(fieldErrs) > 0 {
		return &schemas.ValidationError{Errors: fieldErrs}
	}
	return nil
}

// fallbackContent builds minimal content directly from the outline entry.
// The slide renders with the planned key points instead of failing the run.
func (g *Generator) fallbackContent(slide types.ResolvedSlide) *types.SlideContent {
	values := make(map[string]types.FieldValue, len(slide.Schema.Fields))

	for _, field := range slide.Schema.Fields {
		switch field.Kind {
		case types.KindTitle:
			values[field.FieldName] = types.FieldValue{Text: truncate(titleFor(slide.Entry), field.MaxLength)}
		case types.KindBody:
			bullets := slide.Entry.KeyContent
			if len(bullets) == 0 {
				bullets = []string{slide.Entry.Purpose}
			}
			trimmed := make([]string, 0, len(bullets))
			for _, b := range bullets {
				trimmed = append(trimmed, truncate(strings.TrimSpace(b), field.MaxLength))
			}
			values[field.FieldName] = types.FieldValue{Items: trimmed}
		default:
			// Image and chart fields get the slide purpose as a
			// description only when the schema demands a value
			if field.Required {
				values[field.FieldName] = types.FieldValue{Text: truncate(strings.TrimSpace(slide.Entry.Purpose), field.MaxLength)}
			}
		}
	}

	return &types.SlideContent{
		SlideNumber:  slide.Entry.SlideNumber,
		LayoutName:   slide.ResolvedLayout.Name,
		FieldValues:  values,
		SpeakerNotes: slide.Entry.Notes,
	}
}

func titleFor(entry types.OutlineEntry) string {
	if len(entry.KeyContent) > 0 && strings.TrimSpace(entry.KeyContent[0]) != "" {
		return strings.TrimSpace(entry.KeyContent[0])
	}
	return strings.TrimSpace(entry.Purpose)
}

func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max]
}

// promptData assembles the template values for the content prompts.
func (g *Generator) promptData(slide types.ResolvedSlide, deckContext string) map[string]string {
	return map[string]string{
		"SlideNumber":       strconv.Itoa(slide.Entry.SlideNumber),
		"Purpose":           slide.Entry.Purpose,
		"KeyContent":        "- " + strings.Join(slide.Entry.KeyContent, "\n- "),
		"Notes":             slide.Entry.Notes,
		"LayoutName":        slide.ResolvedLayout.Name,
		"Category":          string(slide.Schema.Category),
		"Complexity":        string(slide.Schema.Complexity),
		"FieldRequirements": describeFields(&slide.Schema, g.opts.BulletMin, g.opts.BulletMax),
		"BulletMin":         strconv.Itoa(g.opts.BulletMin),
		"BulletMax":         strconv.Itoa(g.opts.BulletMax),
		"Context":           deckContext,
	}
}

// describeFields renders the schema's fields as prompt instructions.
func describeFields(schema *types.FieldSchema, bulletMin, bulletMax int) string {
	var b strings.Builder
	for _, field := range schema.Fields {
		required := "optional"
		if field.Required {
			required = "required"
		}

		switch field.Kind {
		case types.KindBody:
			fmt.Fprintf(&b, "- %q: JSON array of %d-%d bullet strings (%s", field.FieldName, bulletMin, bulletMax, required)
			if field.MaxLength > 0 {
				fmt.Fprintf(&b, ", max %d chars per bullet", field.MaxLength)
			}
			b.WriteString(")\n")
		case types.KindImage:
			fmt.Fprintf(&b, "- %q: short description of a suitable image (%s)\n", field.FieldName, required)
		case types.KindChart:
			fmt.Fprintf(&b, "- %q: short description of the chart data to show (%s)\n", field.FieldName, required)
		default:
			fmt.Fprintf(&b, "- %q: JSON string (%s", field.FieldName, required)
			if field.MaxLength > 0 {
				fmt.Fprintf(&b, ", max %d chars", field.MaxLength)
			}
			b.WriteString(")\n")
		}
	}
	return b.String()
}
