// Package types provides type definitions for structured data used throughout the deck-composer system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "strings"

// PlaceholderKind identifies what a layout placeholder is meant to hold.
type PlaceholderKind string

// Placeholder kinds recognized by the catalog.
const (
	KindTitle PlaceholderKind = "title"
	KindBody  PlaceholderKind = "body"
	KindImage PlaceholderKind = "image"
	KindChart PlaceholderKind = "chart"
	KindOther PlaceholderKind = "other"
)

// Placeholder is a single typed slot in a slide layout.
type Placeholder struct {
	Kind  PlaceholderKind `json:"kind"`
	Index int             `json:"index"`
}

// LayoutDefinition describes one named slide layout from the template catalog.
// Definitions are immutable after the catalog is loaded.
type LayoutDefinition struct {
	Name         string        `json:"name"`
	Placeholders []Placeholder `json:"placeholders"`
}

// Signature returns the structural signature of the layout: the ordered
// sequence of placeholder kinds. Two layouts with the same signature share
// a field schema.
func (l *LayoutDefinition) Signature() string {
	if len(l.Placeholders) == 0 {
		return "blank"
	}
	parts := make([]string, len(l.Placeholders))
	for i, ph := range l.Placeholders {
		parts[i] = string(ph.Kind)
	}
	return strings.Join(parts, "|")
}

// CountKind returns how many placeholders of the given kind the layout has.
func (l *LayoutDefinition) CountKind(kind PlaceholderKind) int {
	count := 0
	for _, ph := range l.Placeholders {
		if ph.Kind == kind {
			count++
		}
	}
	return count
}
