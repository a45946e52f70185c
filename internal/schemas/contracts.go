package schemas

import (
	"github.com/jonathan/deck-composer/internal/types"
)

// OutlineContract returns the JSON Schema the planner's response must match:
// a presentation summary plus an ordered, non-empty list of slide plans.
func OutlineContract() map[string]any {
	return map[string]any{
		"title": "presentation_outline",
		"type":  "object",
		"properties": map[string]any{
			"presentation_summary": map[string]any{"type": "string"},
			"slides": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"slide_number": map[string]any{"type": "integer", "minimum": 1},
						"layout_name":  map[string]any{"type": "string", "minLength": 1},
						"purpose":      map[string]any{"type": "string", "minLength": 1},
						"key_content": map[string]any{
							"type":  "array",
							"items": map[string]any{"type": "string"},
						},
						"notes": map[string]any{"type": "string"},
					},
					"required":             []any{"slide_number", "layout_name", "purpose", "key_content"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"presentation_summary", "slides"},
		"additionalProperties": false,
	}
}

// ContentContract derives the per-slide response contract from a field
// schema. Body fields become string arrays bounded by the configured bullet
// range; every other field kind is a plain string. Required schema fields are
// required in the response.
func ContentContract(schema *types.FieldSchema, bulletMin, bulletMax int) map[string]any {
	properties := make(map[string]any, len(schema.Fields)+1)
	required := make([]any, 0, len(schema.Fields))

	for _, field := range schema.Fields {
		switch field.Kind {
		case types.KindBody:
			item := map[string]any{"type": "string"}
			prop := map[string]any{
				"type":  "array",
				"items": item,
			}
			if bulletMin > 0 {
				prop["minItems"] = bulletMin
			}
			if bulletMax > 0 {
				prop["maxItems"] = bulletMax
			}
			properties[field.FieldName] = prop
		default:
			prop := map[string]any{"type": "string"}
			if field.Required {
				prop["minLength"] = 1
			}
			properties[field.FieldName] = prop
		}

		if field.Required {
			required = append(required, field.FieldName)
		}
	}

	properties["speaker_notes"] = map[string]any{"type": "string"}

	contract := map[string]any{
		"title":                "slide_content",
		"type":                 "object",
		"properties":           properties,
		"additionalProperties": false,
	}
	if len(required) > 0 {
		contract["required"] = required
	}
	return contract
}

// ReviewContract returns the JSON Schema for the holistic review response.
// Every aspect score is bounded to 0-100.
func ReviewContract() map[string]any {
	score := func() map[string]any {
		return map[string]any{"type": "integer", "minimum": 0, "maximum": 100}
	}
	stringList := func() map[string]any {
		return map[string]any{"type": "array", "items": map[string]any{"type": "string"}}
	}

	return map[string]any{
		"title": "presentation_review",
		"type":  "object",
		"properties": map[string]any{
			"overall_assessment":     map[string]any{"type": "string"},
			"content_coverage_score": score(),
			"verbosity_score":        score(),
			"consistency_score":      score(),
			"flow_score":             score(),
			"visual_risk_score":      score(),
			"overall_score":          score(),
			"needs_revision":         map[string]any{"type": "boolean"},
			"critical_issues": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"slide_numbers": map[string]any{
							"type":  "array",
							"items": map[string]any{"type": "integer"},
						},
						"issue": map[string]any{"type": "string"},
						"severity": map[string]any{
							"type": "string",
							"enum": []any{"critical", "moderate", "minor"},
						},
						"recommendation": map[string]any{"type": "string"},
					},
					"required":             []any{"slide_numbers", "issue", "severity"},
					"additionalProperties": false,
				},
			},
			"missing_content":         stringList(),
			"strengths":               stringList(),
			"improvement_suggestions": stringList(),
		},
		"required": []any{
			"overall_assessment",
			"content_coverage_score",
			"verbosity_score",
			"consistency_score",
			"flow_score",
			"visual_risk_score",
			"overall_score",
			"needs_revision",
			"critical_issues",
			"missing_content",
			"strengths",
		},
		"additionalProperties": false,
	}
}
