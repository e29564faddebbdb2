package fetcher

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

// Extractor turns an HTML document into the article's plain text.
type Extractor interface {
	Name() string
	Extract(r io.Reader, pageURL *url.URL) (string, error)
}

// NewExtractor resolves an extractor by name; unknown names fall back to paragraphs.
func NewExtractor(name string) Extractor {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "readability":
		return ReadabilityExtractor{}
	default:
		return ParagraphExtractor{}
	}
}

// ParagraphExtractor joins the text of every <p> element in document order.
type ParagraphExtractor struct{}

// Name identifies the extractor in config.
func (ParagraphExtractor) Name() string { return "paragraphs" }

// Extract keeps non-empty trimmed paragraphs separated by newlines.
func (ParagraphExtractor) Extract(r io.Reader, _ *url.URL) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("parse document: %w", err)
	}

	var parts []string
	doc.Find("p").Each(func(_ int, p *goquery.Selection) {
		if text := strings.TrimSpace(p.Text()); text != "" {
			parts = append(parts, text)
		}
	})

	return strings.Join(parts, "\n"), nil
}

// ReadabilityExtractor keeps only the main article body.
type ReadabilityExtractor struct{}

// Name identifies the extractor in config.
func (ReadabilityExtractor) Name() string { return "readability" }

// Extract runs the readability heuristics over the document.
func (ReadabilityExtractor) Extract(r io.Reader, pageURL *url.URL) (string, error) {
	article, err := readability.FromReader(r, pageURL)
	if err != nil {
		return "", fmt.Errorf("readability: %w", err)
	}
	return strings.TrimSpace(article.TextContent), nil
}
