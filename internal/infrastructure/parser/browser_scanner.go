package parser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"IntelliSearch/internal/domain"
	"IntelliSearch/internal/ports"
	"IntelliSearch/internal/scanner"
)

// BrowserScanner renders the search surface in a headless browser before parsing it.
// A browser is launched and closed per query.
type BrowserScanner struct {
	baseURL     string
	userAgent   string
	browserPath string
	waitTimeout time.Duration
	logger      ports.Logger
}

var _ scanner.Scanner = (*BrowserScanner)(nil)

// NewBrowserScanner configures the rod strategy. browserPath may be empty to let
// the launcher locate or download a browser.
func NewBrowserScanner(baseURL, userAgent, browserPath string, waitTimeout time.Duration, log ports.Logger) *BrowserScanner {
	if baseURL == "" {
		baseURL = defaultSearchBaseURL
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	if waitTimeout <= 0 {
		waitTimeout = 10 * time.Second
	}
	return &BrowserScanner{
		baseURL:     baseURL,
		userAgent:   userAgent,
		browserPath: browserPath,
		waitTimeout: waitTimeout,
		logger:      log,
	}
}

// Name identifies the strategy inside the registry.
func (b *BrowserScanner) Name() string {
	return "rod"
}

// Search renders the result page and parses up to q.Limit result blocks.
func (b *BrowserScanner) Search(ctx context.Context, q domain.SearchQuery) ([]domain.SearchResultStub, error) {
	pageURL, err := buildSearchURL(b.baseURL, q)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSearchUnavailable, err)
	}

	html, err := b.render(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSearchUnavailable, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("%w: parse document: %w", domain.ErrSearchUnavailable, err)
	}

	return parseResults(doc, q.Limit), nil
}

func (b *BrowserScanner) render(ctx context.Context, pageURL string) (string, error) {
	l := launcher.New().
		Context(ctx).
		Headless(true).
		Set("disable-gpu").
		Set("no-sandbox").
		Set("disable-dev-shm-usage").
		Set("disable-notifications").
		Set("disable-popup-blocking")
	if b.browserPath != "" {
		l = l.Bin(b.browserPath)
	}
	defer l.Cleanup()

	controlURL, err := l.Launch()
	if err != nil {
		return "", fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().Context(ctx).ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return "", fmt.Errorf("connect browser: %w", err)
	}
	defer func() {
		if cErr := browser.Close(); cErr != nil && b.logger != nil {
			b.logger.Warn("close browser", "error", cErr)
		}
	}()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", fmt.Errorf("open page: %w", err)
	}

	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: b.userAgent}); err != nil {
		return "", fmt.Errorf("set user agent: %w", err)
	}

	if err := page.Navigate(pageURL); err != nil {
		return "", fmt.Errorf("navigate: %w", err)
	}

	if err := page.Timeout(b.waitTimeout).WaitLoad(); err != nil {
		return "", fmt.Errorf("wait load: %w", err)
	}

	// An empty result page never renders a block; parse whatever loaded.
	if _, err := page.Timeout(b.waitTimeout).Element(resultBlockSelector); err != nil && b.logger != nil {
		b.logger.Warn("result blocks did not appear", "url", pageURL, "error", err)
	}

	html, err := page.HTML()
	if err != nil {
		return "", fmt.Errorf("read page html: %w", err)
	}
	return html, nil
}
