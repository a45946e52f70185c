// Package ingestion loads and normalizes the source content that the
// planner turns into a presentation outline. Plain text and Markdown are
// cleaned in place; HTML sources are reduced to their visible text first.
package ingestion

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// SourceDocument is the cleaned input handed to the planning stage.
type SourceDocument struct {
	Path      string `json:"path"`
	Format    string `json:"format"` // "text", "markdown", or "html"
	Content   string `json:"content"`
	WordCount int    `json:"word_count"`
	CharCount int    `json:"char_count"`
}

// LoadSource reads a source file and returns its cleaned content.
// The format is inferred from the file extension.
func LoadSource(path string) (*SourceDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &SourceError{Message: fmt.Sprintf("source file not found: %s", path), Cause: err}
		}
		return nil, &SourceError{Message: "failed to read source file", Cause: err}
	}

	raw := string(data)
	if !utf8.ValidString(raw) {
		return nil, &SourceError{Message: fmt.Sprintf("source file is not valid UTF-8: %s", path)}
	}

	format := detectFormat(path)

	var content string
	switch format {
	case "html":
		content, err = ExtractHTMLText(raw)
		if err != nil {
			return nil, err
		}
	default:
		content = CleanText(raw)
	}

	if strings.TrimSpace(content) == "" {
		return nil, &SourceError{Message: fmt.Sprintf("source file has no usable content: %s", path)}
	}

	return &SourceDocument{
		Path:      path,
		Format:    format,
		Content:   content,
		WordCount: len(strings.Fields(content)),
		CharCount: len(content),
	}, nil
}

func detectFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return "html"
	case ".md", ".markdown":
		return "markdown"
	default:
		return "text"
	}
}
