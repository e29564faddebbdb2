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

// FactCheckClient searches published fact-check claims.
type FactCheckClient struct {
	getter
}

var _ ports.FactChecker = (*FactCheckClient)(nil)

// NewFactCheckClient wires the claims search endpoint.
func NewFactCheckClient(cfg config.LookupConfig, httpClient *http.Client) *FactCheckClient {
	return &FactCheckClient{getter: newGetter(cfg, httpClient)}
}

// HasClaims reports whether at least one claim matches the text.
func (c *FactCheckClient) HasClaims(ctx context.Context, text string) (bool, error) {
	params := url.Values{"query": {text}}
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}

	var resp struct {
		Claims []json.RawMessage `json:"claims"`
	}
	if err := c.getJSON(ctx, params, &resp); err != nil {
		return false, fmt.Errorf("claims search: %w", err)
	}
	return len(resp.Claims) > 0, nil
}
