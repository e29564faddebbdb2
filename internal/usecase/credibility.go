package usecase

import (
	"context"
	"strconv"
	"sync"

	"IntelliSearch/internal/domain"
	"IntelliSearch/internal/ports"
)

// Scorer blends the credibility signals of a page into a report.
type Scorer struct {
	fetcher ports.ContentFetcher
	sources SignalSources
	logger  ports.Logger
}

// NewScorer wires the fetcher and signal backends.
func NewScorer(fetcher ports.ContentFetcher, sources SignalSources, log ports.Logger) *Scorer {
	if sources.Logger == nil {
		sources.Logger = log
	}
	return &Scorer{fetcher: fetcher, sources: sources, logger: log}
}

// Rate fetches the URL and scores it against the query. Failed fetches score
// as empty content.
func (s *Scorer) Rate(ctx context.Context, query, pageURL string) domain.CredibilityReport {
	var content string
	if s.fetcher != nil {
		content = s.fetcher.Fetch(ctx, pageURL).Text()
	}
	return s.RateContent(ctx, query, pageURL, content)
}

// RateContent scores already fetched content. The five signals run concurrently.
func (s *Scorer) RateContent(ctx context.Context, query, pageURL, content string) domain.CredibilityReport {
	var (
		signals domain.Signals
		wg      sync.WaitGroup
	)

	run := func(compute func() int, dst *int) {
		defer wg.Done()
		*dst = compute()
	}

	wg.Add(5)
	go run(func() int { return s.sources.DomainTrust(ctx, content) }, &signals.DomainTrust)
	go run(func() int { return s.sources.Relevance(ctx, query, content) }, &signals.Relevance)
	go run(func() int { return s.sources.FactCheck(ctx, content) }, &signals.FactCheck)
	go run(func() int { return s.sources.Bias(ctx, content) }, &signals.Bias)
	go run(func() int { return s.sources.CitationScore(ctx, pageURL) }, &signals.Citations)
	wg.Wait()

	report := domain.NewCredibilityReport(signals)
	if s.logger != nil {
		s.logger.Debug("credibility scored", "url", pageURL, "final", report.FinalScore, "stars", report.Stars)
	}
	return report
}

// CredibilityRater adapts the scorer to the aggregator: the rating is the
// star count of the credibility report.
type CredibilityRater struct {
	scorer *Scorer
}

var _ ports.ArticleRater = (*CredibilityRater)(nil)

// NewCredibilityRater wraps a scorer.
func NewCredibilityRater(scorer *Scorer) *CredibilityRater {
	return &CredibilityRater{scorer: scorer}
}

// RateArticle scores the fetched body against the query.
func (r *CredibilityRater) RateArticle(ctx context.Context, query string, stub domain.SearchResultStub, content domain.ArticleContent) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	report := r.scorer.RateContent(ctx, query, stub.Link, content.Text())
	// Signals degrade to defaults on cancellation; such a report is not a rating.
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return strconv.Itoa(report.Stars), nil
}
