// Package lookup holds the keyed JSON lookup APIs behind the fact-check and
// citation signals.
package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"IntelliSearch/internal/config"
)

type getter struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

func newGetter(cfg config.LookupConfig, httpClient *http.Client) getter {
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return getter{endpoint: cfg.Endpoint, apiKey: cfg.APIKey, http: httpClient}
}

func (g getter) getJSON(ctx context.Context, params url.Values, v any) error {
	if g.endpoint == "" {
		return fmt.Errorf("lookup endpoint is not configured")
	}

	u, err := url.Parse(g.endpoint)
	if err != nil {
		return fmt.Errorf("parse endpoint %s: %w", g.endpoint, err)
	}
	query := u.Query()
	for k, vals := range params {
		for _, val := range vals {
			query.Add(k, val)
		}
	}
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
