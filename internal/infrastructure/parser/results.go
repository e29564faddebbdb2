package parser

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"IntelliSearch/internal/domain"
)

const (
	resultBlockSelector = "div.result__body"
	titleSelector       = "a.result__a"
	snippetSelector     = "a.result__snippet"
)

// Result links point at a redirector; the real target travels in the uddg parameter.
var redirectExpr = regexp.MustCompile(`uddg=(https?%3A%2F%2F[^&]+)`)

// buildSearchURL renders the HTML search endpoint for a query.
func buildSearchURL(base string, q domain.SearchQuery) (string, error) {
	parsed, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid search url %s: %w", base, err)
	}

	parsed.Path = strings.TrimSuffix(parsed.Path, "/") + "/html/"
	query := parsed.Query()
	query.Set("q", q.Text)
	query.Set("kl", q.Region)
	query.Set("df", q.TimeFilter.Code())
	query.Set("ia", "news")
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

// parseResults extracts up to limit stubs in page order. Blocks without a title
// are skipped and do not count toward the limit.
func parseResults(doc *goquery.Document, limit int) []domain.SearchResultStub {
	var stubs []domain.SearchResultStub

	doc.Find(resultBlockSelector).EachWithBreak(func(i int, block *goquery.Selection) bool {
		if limit > 0 && len(stubs) >= limit {
			return false
		}

		stub, ok := parseBlock(block)
		if !ok {
			return true
		}
		stub.Rank = len(stubs) + 1
		stubs = append(stubs, stub)
		return true
	})

	return stubs
}

func parseBlock(block *goquery.Selection) (domain.SearchResultStub, bool) {
	titleTag := block.Find(titleSelector).First()
	if titleTag.Length() == 0 {
		return domain.SearchResultStub{}, false
	}

	stub := domain.SearchResultStub{
		Title:   strings.TrimSpace(titleTag.Text()),
		Link:    domain.UnknownURL,
		Snippet: domain.NoSummary,
	}

	if href, exists := titleTag.Attr("href"); exists {
		stub.Link = decodeLink(href)
	}

	if snippet := block.Find(snippetSelector).First(); snippet.Length() > 0 {
		stub.Snippet = strings.TrimSpace(snippet.Text())
	}

	return stub, true
}

func decodeLink(raw string) string {
	match := redirectExpr.FindStringSubmatch(raw)
	if match == nil {
		return domain.UnknownLink
	}
	link, err := url.QueryUnescape(match[1])
	if err != nil {
		return domain.UnknownLink
	}
	return link
}
