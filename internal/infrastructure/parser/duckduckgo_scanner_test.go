package parser

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"IntelliSearch/internal/domain"
	"IntelliSearch/internal/scanner"
)

const resultsPage = `
<div class="results">
  <div class="result__body">
    <h2><a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fnews.example.com%2Fai%3Fid%3D1&amp;rut=abc">  First AI story </a></h2>
    <a class="result__snippet" href="#"> Models keep getting bigger. </a>
  </div>
  <div class="result__body">
    <span>sponsored block without a title</span>
  </div>
  <div class="result__body">
    <h2><a class="result__a" href="/plain/path">Second story</a></h2>
  </div>
  <div class="result__body">
    <h2><a class="result__a">Third story</a></h2>
    <a class="result__snippet">Short snippet</a>
  </div>
  <div class="result__body">
    <h2><a class="result__a" href="//duckduckgo.com/l/?uddg=http%3A%2F%2Fblog.example.org%2Fpost">Fourth story</a></h2>
  </div>
</div>`

func mustDocument(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("new document: %v", err)
	}
	return doc
}

func TestBuildSearchURL(t *testing.T) {
	t.Parallel()

	q := domain.SearchQuery{Text: "Latest AI news", Region: "in-en", TimeFilter: domain.PastMonth, Limit: 3}
	u, err := buildSearchURL("https://duckduckgo.com", q)
	if err != nil {
		t.Fatalf("buildSearchURL returned error: %v", err)
	}

	parsed, err := url.Parse(u)
	if err != nil {
		t.Fatalf("parse result: %v", err)
	}
	if parsed.Host != "duckduckgo.com" || parsed.Path != "/html/" {
		t.Fatalf("unexpected url: %s", u)
	}

	values := parsed.Query()
	if values.Get("q") != "Latest AI news" {
		t.Fatalf("unexpected q: %s", values.Get("q"))
	}
	if values.Get("kl") != "in-en" || values.Get("df") != "m" || values.Get("ia") != "news" {
		t.Fatalf("unexpected query params: %s", parsed.RawQuery)
	}
}

func TestParseResults(t *testing.T) {
	t.Parallel()

	stubs := parseResults(mustDocument(t, resultsPage), 10)
	if len(stubs) != 4 {
		t.Fatalf("expected 4 stubs, got %d", len(stubs))
	}

	first := stubs[0]
	if first.Rank != 1 || first.Title != "First AI story" {
		t.Fatalf("unexpected first stub: %+v", first)
	}
	if first.Link != "https://news.example.com/ai?id=1" {
		t.Fatalf("unexpected decoded link: %s", first.Link)
	}
	if first.Snippet != "Models keep getting bigger." {
		t.Fatalf("unexpected snippet: %q", first.Snippet)
	}

	second := stubs[1]
	if second.Rank != 2 || second.Link != domain.UnknownLink || second.Snippet != domain.NoSummary {
		t.Fatalf("unexpected second stub: %+v", second)
	}

	third := stubs[2]
	if third.Link != domain.UnknownURL || third.Snippet != "Short snippet" {
		t.Fatalf("unexpected third stub: %+v", third)
	}

	if stubs[3].Link != "http://blog.example.org/post" || stubs[3].Rank != 4 {
		t.Fatalf("unexpected fourth stub: %+v", stubs[3])
	}
}

func TestParseResultsSkippedBlocksDoNotCountTowardLimit(t *testing.T) {
	t.Parallel()

	stubs := parseResults(mustDocument(t, resultsPage), 2)
	if len(stubs) != 2 {
		t.Fatalf("expected 2 stubs, got %d", len(stubs))
	}
	if stubs[1].Title != "Second story" {
		t.Fatalf("expected the untitled block to be skipped, got %+v", stubs[1])
	}
}

func TestHTTPScannerSearch(t *testing.T) {
	t.Parallel()

	var gotQuery url.Values
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(resultsPage))
	}))
	defer server.Close()

	sc := NewHTTPScanner(server.Client(), server.URL, "test-agent", nil)
	q := domain.SearchQuery{Text: "ai", Region: "us-en", TimeFilter: domain.PastDay, Limit: 3}

	stubs, err := sc.Search(context.Background(), q)
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if len(stubs) != 3 {
		t.Fatalf("expected 3 stubs, got %d", len(stubs))
	}
	if gotQuery.Get("df") != "d" || gotQuery.Get("q") != "ai" {
		t.Fatalf("unexpected query sent: %v", gotQuery)
	}
	if gotUA != "test-agent" {
		t.Fatalf("unexpected user agent: %s", gotUA)
	}
}

func TestHTTPScannerSearchUnavailable(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	sc := NewHTTPScanner(server.Client(), server.URL, "", nil)
	_, err := sc.Search(context.Background(), domain.SearchQuery{Text: "x", Limit: 3})
	if !errors.Is(err, domain.ErrSearchUnavailable) {
		t.Fatalf("expected ErrSearchUnavailable, got %v", err)
	}
}

func TestStrategySourceResolvesConfiguredScanner(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("kl") != domain.DefaultRegion {
			t.Errorf("expected normalized region, got %q", r.URL.Query().Get("kl"))
		}
		_, _ = w.Write([]byte(resultsPage))
	}))
	defer server.Close()

	reg := scanner.NewRegistry()
	reg.Register(NewHTTPScanner(server.Client(), server.URL, "", nil))
	reg.Register(NewBrowserScanner(server.URL, "", "", 0, nil))

	src := NewStrategySource(reg, "http", nil)
	stubs, err := src.Search(context.Background(), domain.SearchQuery{Text: "ai", Limit: 1})
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if len(stubs) != 1 {
		t.Fatalf("expected 1 stub, got %d", len(stubs))
	}

	missing := NewStrategySource(reg, "selenium", nil)
	if _, err := missing.Search(context.Background(), domain.SearchQuery{Text: "ai"}); !errors.Is(err, domain.ErrSearchUnavailable) {
		t.Fatalf("expected ErrSearchUnavailable for unknown strategy, got %v", err)
	}
}
