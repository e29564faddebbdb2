package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"IntelliSearch/internal/domain"
	"IntelliSearch/internal/ports"
	"IntelliSearch/internal/render"
)

const qualityBodyRunes = 1000

const qualityPromptTemplate = `Analyze and rate this article on a scale of 1-5 based on:
- Accuracy, clarity, and relevance.
- Provide only a numeric rating (whole or half numbers allowed).

**Title**: %s
**Content (first 1000 chars)**: %s

**Example Valid Outputs:** ` + "`4`, `2.5`, `3`"

// QualityRater asks the completion backend for a 1-5 article rating.
type QualityRater struct {
	completion ports.TextCompletion
	logger     ports.Logger
}

var _ ports.ArticleRater = (*QualityRater)(nil)

// NewQualityRater wires the completion backend.
func NewQualityRater(completion ports.TextCompletion, log ports.Logger) *QualityRater {
	return &QualityRater{completion: completion, logger: log}
}

// QualityPrompt renders the rating prompt for a title and body.
func QualityPrompt(title, body string) string {
	return fmt.Sprintf(qualityPromptTemplate, title, prefixRunes(body, qualityBodyRunes))
}

// Rate returns the trimmed model output when it is a number in [1,5], and
// domain.RatingError otherwise.
func (r *QualityRater) Rate(ctx context.Context, title, body string) string {
	rating, err := r.rate(ctx, title, body)
	if err != nil {
		if r.logger != nil {
			r.logger.Warn("article rating unavailable", "title", title, "error", err)
		}
		return domain.RatingError
	}
	if r.logger != nil {
		r.logger.Debug("article rated", "title", title, "rating", rating)
	}
	return rating
}

func (r *QualityRater) rate(ctx context.Context, title, body string) (string, error) {
	if r.completion == nil {
		return "", fmt.Errorf("%w: no completion backend", domain.ErrRatingUnavailable)
	}

	out, err := r.completion.Complete(ctx, QualityPrompt(title, body))
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrRatingUnavailable, err)
	}

	rating := strings.TrimSpace(out)
	if !ValidRating(rating) {
		return "", fmt.Errorf("%w: invalid rating %q", domain.ErrRatingUnavailable, rating)
	}
	return rating, nil
}

// RateArticle rates the fetched body. Only a context that ends before or
// during the rating is an error.
func (r *QualityRater) RateArticle(ctx context.Context, _ string, stub domain.SearchResultStub, content domain.ArticleContent) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	rating := r.Rate(ctx, stub.Title, content.Body)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return rating, nil
}

// ValidRating accepts plain decimals (digits, at most one dot) between 1 and 5
// inclusive, the same shape the results table can draw.
func ValidRating(s string) bool {
	if !render.IsPlainNumber(s) {
		return false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return false
	}
	return v >= 1 && v <= 5
}
