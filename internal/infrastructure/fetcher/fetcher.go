package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"IntelliSearch/internal/config"
	"IntelliSearch/internal/domain"
	"IntelliSearch/internal/ports"
)

// Fetcher downloads linked pages and extracts their text.
type Fetcher struct {
	client    *http.Client
	userAgent string
	referer   string
	retries   int
	backoff   time.Duration
	extractor Extractor
	logger    ports.Logger
}

var _ ports.ContentFetcher = (*Fetcher)(nil)

// New builds a fetcher from configuration. A nil client gets the configured timeout.
func New(cfg config.FetcherConfig, client *http.Client, log ports.Logger) *Fetcher {
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	retries := cfg.Retries
	if retries < 0 {
		retries = 0
	}
	return &Fetcher{
		client:    client,
		userAgent: cfg.UserAgent,
		referer:   cfg.Referer,
		retries:   retries,
		backoff:   cfg.Backoff,
		extractor: NewExtractor(cfg.Extractor),
		logger:    log,
	}
}

// Fetch never fails: every problem is folded into the returned status.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) domain.ArticleContent {
	body, err := f.fetchWithRetry(ctx, rawURL)
	if err == nil {
		return domain.ArticleContent{URL: rawURL, Body: body, Status: domain.FetchOK}
	}

	var fetchErr *domain.FetchError
	if !errors.As(err, &fetchErr) {
		fetchErr = &domain.FetchError{Status: domain.FetchFailed, URL: rawURL, Err: err}
	}
	f.warn("fetch degraded", "url", rawURL, "status", fetchErr.Status, "error", err)

	content := domain.ArticleContent{URL: rawURL, Status: fetchErr.Status}
	if fetchErr.Status == domain.FetchFailed {
		content.Body = "Error fetching content: " + fetchErr.Error()
	}
	return content
}

func (f *Fetcher) fetchWithRetry(ctx context.Context, rawURL string) (string, error) {
	pageURL, err := url.Parse(rawURL)
	if err != nil || (pageURL.Scheme != "http" && pageURL.Scheme != "https") || pageURL.Host == "" {
		return "", &domain.FetchError{Status: domain.FetchFailed, URL: rawURL, Err: errors.New("invalid url")}
	}

	for attempt := 0; ; attempt++ {
		body, err := f.fetchOnce(ctx, pageURL)
		if err == nil {
			return body, nil
		}

		var fetchErr *domain.FetchError
		if !errors.As(err, &fetchErr) || fetchErr.Status != domain.FetchTimeout {
			return "", err
		}
		if attempt >= f.retries || ctx.Err() != nil {
			return "", err
		}

		f.debug("fetch timed out, retrying", "url", rawURL, "attempt", attempt+1)
		if err := sleep(ctx, f.backoff); err != nil {
			return "", &domain.FetchError{Status: domain.FetchTimeout, URL: rawURL, Err: err}
		}
	}
}

func (f *Fetcher) fetchOnce(ctx context.Context, pageURL *url.URL) (string, error) {
	rawURL := pageURL.String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", &domain.FetchError{Status: domain.FetchFailed, URL: rawURL, Err: fmt.Errorf("new request: %w", err)}
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	if f.referer != "" {
		req.Header.Set("Referer", f.referer)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return "", &domain.FetchError{Status: domain.FetchTimeout, URL: rawURL, Err: err}
		}
		return "", &domain.FetchError{Status: domain.FetchFailed, URL: rawURL, Err: fmt.Errorf("do request: %w", err)}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusForbidden:
		return "", &domain.FetchError{Status: domain.FetchForbidden, URL: rawURL}
	case resp.StatusCode != http.StatusOK:
		return "", &domain.FetchError{Status: domain.FetchHTTPError, URL: rawURL, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	text, err := f.extractor.Extract(resp.Body, pageURL)
	if err != nil {
		if isTimeout(err) {
			return "", &domain.FetchError{Status: domain.FetchTimeout, URL: rawURL, Err: err}
		}
		return "", &domain.FetchError{Status: domain.FetchFailed, URL: rawURL, Err: fmt.Errorf("extract %s: %w", f.extractor.Name(), err)}
	}
	return text, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (f *Fetcher) debug(msg string, args ...any) {
	if f.logger != nil {
		f.logger.Debug(msg, args...)
	}
}

func (f *Fetcher) warn(msg string, args ...any) {
	if f.logger != nil {
		f.logger.Warn(msg, args...)
	}
}
