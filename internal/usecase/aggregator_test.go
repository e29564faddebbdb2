package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"IntelliSearch/internal/config"
	"IntelliSearch/internal/domain"
	"IntelliSearch/internal/infrastructure/fetcher"
	"IntelliSearch/internal/infrastructure/parser"
	"IntelliSearch/internal/ports"
)

// ratingsByTitle replies with a fixed rating per article title.
func ratingsByTitle(ratings map[string]string) func(string) (string, error) {
	return func(prompt string) (string, error) {
		for title, rating := range ratings {
			if strings.Contains(prompt, "**Title**: "+title+"\n") {
				return rating, nil
			}
		}
		return "", errors.New("unknown article")
	}
}

func TestAggregateEndToEnd(t *testing.T) {
	t.Parallel()

	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/html/":
			if r.URL.Query().Get("q") != "Latest AI news" {
				http.Error(w, "bad query", http.StatusBadRequest)
				return
			}
			var b strings.Builder
			for i, title := range []string{"Alpha", "Beta", "Gamma"} {
				target := url.QueryEscape(fmt.Sprintf("%s/article/%d", server.URL, i+1))
				fmt.Fprintf(&b, `<div class="result__body"><a class="result__a" href="//duckduckgo.com/l/?uddg=%s">%s</a>`+
					`<a class="result__snippet">%s snippet</a></div>`, target, title, title)
			}
			_, _ = w.Write([]byte(b.String()))
		case strings.HasPrefix(r.URL.Path, "/article/"):
			_, _ = fmt.Fprintf(w, "<html><body><p>Body of %s</p></body></html>", r.URL.Path)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	completion := &fakeCompletion{reply: ratingsByTitle(map[string]string{"Alpha": "4", "Beta": "ten", "Gamma": "2.5"})}
	agg := NewAggregator(AggregatorDeps{
		Scraper: parser.NewHTTPScanner(server.Client(), server.URL, "", nil),
		Fetcher: fetcher.New(config.FetcherConfig{Timeout: time.Second}, server.Client(), nil),
		Rater:   NewQualityRater(completion, nil),
	})

	result := agg.Aggregate(context.Background(), domain.SearchQuery{Text: "Latest AI news", Limit: 3})
	if !result.OK() {
		t.Fatalf("expected success, got %+v", result)
	}
	if len(result.Results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(result.Results))
	}

	wantRatings := []string{"4", domain.RatingError, "2.5"}
	for i, article := range result.Results {
		if article.Num != i+1 {
			t.Fatalf("result %d has num %d", i, article.Num)
		}
		if article.Rating != wantRatings[i] {
			t.Fatalf("result %d: expected rating %q, got %q", i, wantRatings[i], article.Rating)
		}
		if article.Body != fmt.Sprintf("Body of /article/%d", i+1) {
			t.Fatalf("result %d: unexpected body %q", i, article.Body)
		}
		if !strings.HasSuffix(article.Summary, "snippet") {
			t.Fatalf("result %d: unexpected summary %q", i, article.Summary)
		}
	}
}

func TestAggregateSearchFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	agg := NewAggregator(AggregatorDeps{
		Scraper: parser.NewHTTPScanner(server.Client(), server.URL, "", nil),
		Fetcher: fakeFetcher{},
	})

	result := agg.Aggregate(context.Background(), domain.SearchQuery{Text: "anything"})
	if result.Status != domain.StatusError || result.Message != MsgSearchFailed {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(result.Results) != 0 {
		t.Fatal("failed search must carry no results")
	}
}

func TestAggregateDropsPanickingArticle(t *testing.T) {
	t.Parallel()

	list := stubs("One", "Two", "Three")
	agg := NewAggregator(AggregatorDeps{
		Scraper: fakeScraper{stubs: list},
		Fetcher: fakeFetcher{fetch: func(_ context.Context, u string) domain.ArticleContent {
			if u == list[1].Link {
				panic("parser exploded")
			}
			return domain.ArticleContent{URL: u, Body: "ok", Status: domain.FetchOK}
		}},
		Rater: NewQualityRater(&fakeCompletion{reply: func(string) (string, error) { return "3", nil }}, nil),
	})

	result := agg.Aggregate(context.Background(), domain.SearchQuery{Text: "q"})
	if !result.OK() || len(result.Results) != 2 {
		t.Fatalf("expected two surviving results, got %+v", result)
	}
	if result.Results[0].Num != 1 || result.Results[1].Num != 3 {
		t.Fatalf("unexpected nums: %d, %d", result.Results[0].Num, result.Results[1].Num)
	}
}

func TestAggregateNoResults(t *testing.T) {
	t.Parallel()

	t.Run("empty search", func(t *testing.T) {
		t.Parallel()

		agg := NewAggregator(AggregatorDeps{Scraper: fakeScraper{}, Fetcher: fakeFetcher{}})
		result := agg.Aggregate(context.Background(), domain.SearchQuery{Text: "q"})
		if result.Status != domain.StatusError || result.Message != MsgNoResults {
			t.Fatalf("unexpected result: %+v", result)
		}
	})

	t.Run("all dropped", func(t *testing.T) {
		t.Parallel()

		agg := NewAggregator(AggregatorDeps{
			Scraper: fakeScraper{stubs: stubs("One", "Two")},
			Fetcher: fakeFetcher{fetch: func(context.Context, string) domain.ArticleContent { panic("boom") }},
		})
		result := agg.Aggregate(context.Background(), domain.SearchQuery{Text: "q"})
		if result.Status != domain.StatusError || result.Message != MsgNoResults {
			t.Fatalf("unexpected result: %+v", result)
		}
	})
}

func TestAggregateKeepsSearchOrder(t *testing.T) {
	t.Parallel()

	list := stubs("A", "B", "C", "D")
	agg := NewAggregator(AggregatorDeps{
		Scraper: fakeScraper{stubs: list},
		Fetcher: fakeFetcher{fetch: func(_ context.Context, u string) domain.ArticleContent {
			// Earlier results finish last.
			for i, s := range list {
				if s.Link == u {
					time.Sleep(time.Duration(len(list)-i) * 10 * time.Millisecond)
				}
			}
			return domain.ArticleContent{URL: u, Body: "b", Status: domain.FetchOK}
		}},
	})

	result := agg.Aggregate(context.Background(), domain.SearchQuery{Text: "q"})
	if len(result.Results) != len(list) {
		t.Fatalf("expected %d results, got %d", len(list), len(result.Results))
	}
	for i, article := range result.Results {
		if article.Num != i+1 || article.Title != list[i].Title {
			t.Fatalf("position %d holds %+v", i, article)
		}
		// Without a rater every article carries the error rating.
		if article.Rating != domain.RatingError {
			t.Fatalf("expected error rating, got %q", article.Rating)
		}
	}
}

func TestAggregateBoundsWorkers(t *testing.T) {
	t.Parallel()

	var (
		active  atomic.Int32
		maxSeen atomic.Int32
		mu      sync.Mutex
	)
	agg := NewAggregator(AggregatorDeps{
		Scraper: fakeScraper{stubs: stubs("A", "B", "C", "D", "E", "F")},
		Fetcher: fakeFetcher{fetch: func(_ context.Context, u string) domain.ArticleContent {
			n := active.Add(1)
			mu.Lock()
			if n > maxSeen.Load() {
				maxSeen.Store(n)
			}
			mu.Unlock()
			time.Sleep(20 * time.Millisecond)
			active.Add(-1)
			return domain.ArticleContent{URL: u, Status: domain.FetchOK}
		}},
		Workers: 2,
	})

	result := agg.Aggregate(context.Background(), domain.SearchQuery{Text: "q"})
	if len(result.Results) != 6 {
		t.Fatalf("expected 6 results, got %d", len(result.Results))
	}
	if maxSeen.Load() > 2 {
		t.Fatalf("expected at most 2 concurrent fetches, saw %d", maxSeen.Load())
	}
}

func TestAggregateBatchTimeout(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		fetcher    fakeFetcher
		completion ports.TextCompletion
	}{
		{
			name: "fetch outlives deadline",
			fetcher: fakeFetcher{fetch: func(ctx context.Context, u string) domain.ArticleContent {
				<-ctx.Done()
				return domain.ArticleContent{URL: u, Status: domain.FetchTimeout}
			}},
			completion: &fakeCompletion{reply: func(string) (string, error) { return "4", nil }},
		},
		{
			name:       "rating outlives deadline",
			fetcher:    fakeFetcher{},
			completion: stallingCompletion{},
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			agg := NewAggregator(AggregatorDeps{
				Scraper: fakeScraper{stubs: stubs("Slow one", "Slow two")},
				Fetcher: tc.fetcher,
				Rater:   NewQualityRater(tc.completion, nil),
				Timeout: 50 * time.Millisecond,
			})

			start := time.Now()
			result := agg.Aggregate(context.Background(), domain.SearchQuery{Text: "q"})
			if result.Status != domain.StatusError || result.Message != MsgNoResults || len(result.Results) != 0 {
				t.Fatalf("expected timed-out batch to drop every article, got %+v", result)
			}
			if elapsed := time.Since(start); elapsed > 2*time.Second {
				t.Fatalf("batch deadline not honoured, took %s", elapsed)
			}
		})
	}
}

func TestAggregateDropsCredibilityRatingCutByDeadline(t *testing.T) {
	t.Parallel()

	scorer := NewScorer(nil, SignalSources{Embedder: stallingEmbedder{}}, nil)
	agg := NewAggregator(AggregatorDeps{
		Scraper: fakeScraper{stubs: stubs("Slow one")},
		Fetcher: fakeFetcher{},
		Rater:   NewCredibilityRater(scorer),
		Timeout: 50 * time.Millisecond,
	})

	result := agg.Aggregate(context.Background(), domain.SearchQuery{Text: "q"})
	if result.Message != MsgNoResults || len(result.Results) != 0 {
		t.Fatalf("expected the article to be dropped, got %+v", result)
	}
}
