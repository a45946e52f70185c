package ingestion

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Elements whose text never belongs in planning input.
var strippedSelectors = []string{"script", "style", "noscript", "nav", "footer", "iframe"}

// ExtractHTMLText reduces an HTML document to its visible text content.
// Headings become markdown headings and list items become bullets so the
// document structure survives extraction.
func ExtractHTMLText(htmlContent string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return "", &SourceError{Message: "failed to parse HTML", Cause: err}
	}

	for _, sel := range strippedSelectors {
		doc.Find(sel).Remove()
	}

	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}

	var b strings.Builder
	root.Find("h1, h2, h3, h4, h5, h6, p, li, blockquote, pre, td, th").Each(func(_ int, s *goquery.Selection) {
		// Skip container cells that themselves hold matched elements,
		// otherwise nested content is emitted twice.
		if s.Find("p, li").Length() > 0 {
			return
		}

		text := strings.TrimSpace(s.Text())
		if text == "" {
			return
		}

		switch goquery.NodeName(s) {
		case "h1":
			b.WriteString("# " + text + "\n\n")
		case "h2":
			b.WriteString("## " + text + "\n\n")
		case "h3", "h4", "h5", "h6":
			b.WriteString("### " + text + "\n\n")
		case "li":
			b.WriteString("- " + text + "\n")
		default:
			b.WriteString(text + "\n\n")
		}
	})

	extracted := b.String()
	if strings.TrimSpace(extracted) == "" {
		// Fall back to the whole document text for unstructured markup
		extracted = root.Text()
	}

	return CleanText(extracted), nil
}
