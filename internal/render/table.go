// Package render formats aggregated results for chat surfaces.
package render

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"IntelliSearch/internal/domain"
)

// NoResults is shown when a query produced nothing to list.
const NoResults = "**No matching results found.**"

const (
	tableHeader    = "| # | Title | Rating | Summary |\n|---|------|--------|---------|\n"
	summaryLimit   = 100
	halfStarSuffix = domain.StarGlyph + "½"
)

// Table renders the ranked articles as a Markdown table.
func Table(result domain.AggregateResult) string {
	if !result.OK() {
		return NoResults
	}

	var b strings.Builder
	b.WriteString(tableHeader)
	for _, article := range result.Results {
		fmt.Fprintf(&b, "| %d | %s | %s | %s |\n",
			article.Num,
			titleCell(article),
			RatingStars(article.Rating),
			TruncateSummary(article.Summary),
		)
	}
	return b.String()
}

// SanitizeTitle keeps titles from breaking table columns.
func SanitizeTitle(title string) string {
	return strings.TrimSpace(strings.ReplaceAll(title, "|", " - "))
}

func titleCell(article domain.RankedArticle) string {
	title := SanitizeTitle(article.Title)
	if isWebLink(article.Link) {
		return fmt.Sprintf("[%s](%s)", title, article.Link)
	}
	return title
}

// isWebLink reports whether link is an absolute http(s) URL with a host.
func isWebLink(link string) bool {
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// RatingStars draws a numeric rating as stars with an optional half star.
// Anything non-numeric collapses to a single star.
func RatingStars(raw string) string {
	raw = strings.TrimSpace(raw)
	if !IsPlainNumber(raw) {
		return domain.StarGlyph
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return domain.StarGlyph
	}

	full := math.Floor(value)
	stars := strings.Repeat(domain.StarGlyph, int(full))
	if value-full >= 0.5 {
		stars += halfStarSuffix
	}
	return stars
}

// IsPlainNumber accepts digits with at most one dot.
func IsPlainNumber(s string) bool {
	digits := strings.Replace(s, ".", "", 1)
	if digits == "" {
		return false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// TruncateSummary trims and shortens a snippet to the table's width.
func TruncateSummary(summary string) string {
	summary = strings.TrimSpace(summary)
	runes := []rune(summary)
	if len(runes) > summaryLimit {
		return string(runes[:summaryLimit]) + "..."
	}
	return summary
}
