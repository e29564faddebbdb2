package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"IntelliSearch/internal/domain"
	"IntelliSearch/internal/ports"
)

// Batch-level messages of an AggregateResult.
const (
	MsgSearchFailed = "Search request failed"
	MsgNoResults    = "No valid news search results found"
)

// AggregatorDeps wires the driven adapters into the aggregator.
type AggregatorDeps struct {
	Scraper ports.SearchScraper
	Fetcher ports.ContentFetcher
	Rater   ports.ArticleRater
	Logger  ports.Logger
	// Workers caps concurrent articles; zero means one per stub.
	Workers int
	// Timeout bounds the whole batch; zero disables the deadline.
	Timeout time.Duration
}

// Aggregator runs search, then fetch and rate for every stub in parallel.
type Aggregator struct {
	scraper ports.SearchScraper
	fetcher ports.ContentFetcher
	rater   ports.ArticleRater
	logger  ports.Logger
	workers int
	timeout time.Duration
}

// NewAggregator constructs the orchestration component.
func NewAggregator(deps AggregatorDeps) *Aggregator {
	return &Aggregator{
		scraper: deps.Scraper,
		fetcher: deps.Fetcher,
		rater:   deps.Rater,
		logger:  deps.Logger,
		workers: deps.Workers,
		timeout: deps.Timeout,
	}
}

// Aggregate answers one query cycle. Only a search failure is terminal; each
// article succeeds or is dropped on its own.
func (a *Aggregator) Aggregate(ctx context.Context, q domain.SearchQuery) domain.AggregateResult {
	q = q.Normalize()

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	if a.scraper == nil {
		a.logError("aggregate: no search scraper configured")
		return domain.AggregateResult{Status: domain.StatusError, Message: MsgSearchFailed}
	}

	stubs, err := a.scraper.Search(ctx, q)
	if err != nil {
		a.logError("search failed", "query", q.Text, "error", err)
		return domain.AggregateResult{Status: domain.StatusError, Message: MsgSearchFailed}
	}
	a.info("search completed", "query", q.Text, "stubs", len(stubs))

	results := a.processAll(ctx, q.Text, stubs)
	if len(results) == 0 {
		a.logError("aggregate: no results", "query", q.Text, "error", domain.ErrNoValidResults)
		return domain.AggregateResult{Status: domain.StatusError, Message: MsgNoResults}
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Num < results[j].Num })
	a.info("aggregation completed", "query", q.Text, "results", len(results), "dropped", len(stubs)-len(results))
	return domain.AggregateResult{Status: domain.StatusSuccess, Results: results}
}

func (a *Aggregator) processAll(ctx context.Context, query string, stubs []domain.SearchResultStub) []domain.RankedArticle {
	if len(stubs) == 0 {
		return nil
	}

	workers := a.workers
	if workers <= 0 || workers > len(stubs) {
		workers = len(stubs)
	}

	jobs := make(chan domain.SearchResultStub)
	out := make(chan domain.RankedArticle, len(stubs))

	var wg sync.WaitGroup
	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			for stub := range jobs {
				article, err := a.process(ctx, query, stub)
				if err != nil {
					a.warn("article dropped", "num", stub.Rank, "title", stub.Title, "error", err)
					continue
				}
				out <- article
			}
		}()
	}

	for _, stub := range stubs {
		jobs <- stub
	}
	close(jobs)
	wg.Wait()
	close(out)

	results := make([]domain.RankedArticle, 0, len(stubs))
	for article := range out {
		results = append(results, article)
	}
	return results
}

// process isolates one article; a panic drops only this stub.
func (a *Aggregator) process(ctx context.Context, query string, stub domain.SearchResultStub) (article domain.RankedArticle, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic processing article: %v", r)
		}
	}()

	if err := ctx.Err(); err != nil {
		return domain.RankedArticle{}, err
	}

	var content domain.ArticleContent
	if a.fetcher != nil {
		content = a.fetcher.Fetch(ctx, stub.Link)
	}

	rating := domain.RatingError
	if a.rater != nil {
		rating, err = a.rater.RateArticle(ctx, query, stub, content)
		if err != nil {
			return domain.RankedArticle{}, fmt.Errorf("rate article: %w", err)
		}
	}
	if err := ctx.Err(); err != nil {
		return domain.RankedArticle{}, fmt.Errorf("article outlived batch: %w", err)
	}

	return domain.RankedArticle{
		Num:     stub.Rank,
		Link:    stub.Link,
		Title:   stub.Title,
		Summary: stub.Snippet,
		Body:    content.Body,
		Rating:  rating,
	}, nil
}

func (a *Aggregator) info(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Info(msg, args...)
	}
}

func (a *Aggregator) warn(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Warn(msg, args...)
	}
}

func (a *Aggregator) logError(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Error(msg, args...)
	}
}
