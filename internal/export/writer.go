package export

import (
	_ "embed"
	"html/template"
	"os"
	"path/filepath"
	"strings"
)

//go:embed deck.tmpl
var deckTemplate string

// DeckWriter renders a deck to a file artifact.
type DeckWriter interface {
	WriteDeck(path string, deck *Deck) error
}

// HTMLDeckWriter renders decks as standalone HTML files with fixed
// 1280x720 slide sections, one per generated slide.
type HTMLDeckWriter struct {
	tmpl *template.Template
}

// NewHTMLDeckWriter parses the embedded deck template.
func NewHTMLDeckWriter() (*HTMLDeckWriter, error) {
	tmpl, err := template.New("deck").Parse(deckTemplate)
	if err != nil {
		return nil, &RenderingError{Message: "failed to parse deck template", Cause: err}
	}
	return &HTMLDeckWriter{tmpl: tmpl}, nil
}

// WriteDeck renders the deck and writes it to path, creating parent
// directories as needed.
func (w *HTMLDeckWriter) WriteDeck(path string, deck *Deck) error {
	var b strings.Builder
	if err := w.tmpl.Execute(&b, deck); err != nil {
		return &RenderingError{Message: "failed to execute deck template", Cause: err}
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return &RenderingError{Message: "failed to create output directory", Cause: err}
		}
	}

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return &RenderingError{Message: "failed to write deck file", Cause: err}
	}
	return nil
}
