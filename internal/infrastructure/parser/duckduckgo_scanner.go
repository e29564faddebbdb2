package parser

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"

	"IntelliSearch/internal/domain"
	"IntelliSearch/internal/ports"
	"IntelliSearch/internal/scanner"
)

const (
	defaultSearchBaseURL = "https://duckduckgo.com"
	defaultUserAgent     = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/133.0.0.0 Safari/537.36"
)

// HTTPScanner reads the HTML search surface with plain HTTP requests.
type HTTPScanner struct {
	client    *http.Client
	baseURL   string
	userAgent string
	logger    ports.Logger
}

var _ scanner.Scanner = (*HTTPScanner)(nil)

// NewHTTPScanner wires an HTTP client; nil client gets a 10 second timeout.
func NewHTTPScanner(client *http.Client, baseURL, userAgent string, log ports.Logger) *HTTPScanner {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if baseURL == "" {
		baseURL = defaultSearchBaseURL
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &HTTPScanner{client: client, baseURL: baseURL, userAgent: userAgent, logger: log}
}

// Name identifies the strategy inside the registry.
func (h *HTTPScanner) Name() string {
	return "http"
}

// Search fetches the result page and parses up to q.Limit result blocks.
func (h *HTTPScanner) Search(ctx context.Context, q domain.SearchQuery) ([]domain.SearchResultStub, error) {
	pageURL, err := buildSearchURL(h.baseURL, q)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSearchUnavailable, err)
	}

	doc, err := h.fetchDocument(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSearchUnavailable, err)
	}

	stubs := parseResults(doc, q.Limit)
	if h.logger != nil {
		h.logger.Debug("search page parsed", "query", q.Text, "results", len(stubs))
	}
	return stubs, nil
}

func (h *HTTPScanner) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", h.userAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("search surface returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	return doc, nil
}
