package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"IntelliSearch/internal/config"
	"IntelliSearch/internal/ports"
)

// ScholarClient counts scholarly search results for a URL.
type ScholarClient struct {
	getter
}

var _ ports.CitationCounter = (*ScholarClient)(nil)

// NewScholarClient wires the scholar search endpoint.
func NewScholarClient(cfg config.LookupConfig, httpClient *http.Client) *ScholarClient {
	return &ScholarClient{getter: newGetter(cfg, httpClient)}
}

// CountCitations returns the number of organic results referencing the URL.
func (c *ScholarClient) CountCitations(ctx context.Context, pageURL string) (int, error) {
	params := url.Values{
		"q":      {pageURL},
		"engine": {"google_scholar"},
	}
	if c.apiKey != "" {
		params.Set("api_key", c.apiKey)
	}

	var resp struct {
		OrganicResults []json.RawMessage `json:"organic_results"`
		Error          string            `json:"error"`
	}
	if err := c.getJSON(ctx, params, &resp); err != nil {
		return 0, fmt.Errorf("scholar search: %w", err)
	}
	if resp.Error != "" {
		return 0, fmt.Errorf("scholar search: %s", resp.Error)
	}
	return len(resp.OrganicResults), nil
}
