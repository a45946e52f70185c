//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FieldValue holds the generated value for one schema field. A value is
// either scalar text (titles, image descriptions) or a list of bullet
// entries (body fields). Exactly one of Text/Items is populated.
type FieldValue struct {
	Text  string
	Items []string
}

// IsList reports whether the value is list-shaped.
func (v FieldValue) IsList() bool {
	return v.Items != nil
}

// IsEmpty reports whether the value carries no content.
func (v FieldValue) IsEmpty() bool {
	if v.Items != nil {
		for _, item := range v.Items {
			if strings.TrimSpace(item) != "" {
				return false
			}
		}
		return true
	}
	return strings.TrimSpace(v.Text) == ""
}

// MarshalJSON encodes the value as a plain string or a string array,
// matching the wire shape the generative service produces.
func (v FieldValue) MarshalJSON() ([]byte, error) {
	if v.Items != nil {
		return json.Marshal(v.Items)
	}
	return json.Marshal(v.Text)
}

// UnmarshalJSON accepts either a string or an array of strings.
func (v *FieldValue) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		v.Text = text
		v.Items = nil
		return nil
	}

	var items []string
	if err := json.Unmarshal(data, &items); err == nil {
		v.Items = items
		v.Text = ""
		return nil
	}

	return fmt.Errorf("field value must be a string or an array of strings, got %s", string(data))
}

// SlideContent is the fully generated content for one slide, keyed by the
// field names of its resolved schema.
type SlideContent struct {
	SlideNumber  int                   `json:"slide_number"`
	LayoutName   string                `json:"layout_name"`
	FieldValues  map[string]FieldValue `json:"field_values"`
	SpeakerNotes string                `json:"speaker_notes,omitempty"`
	Degraded     bool                  `json:"degraded,omitempty"`
}

// Value returns the value for a field name, or a zero value if absent.
func (c *SlideContent) Value(fieldName string) FieldValue {
	return c.FieldValues[fieldName]
}
