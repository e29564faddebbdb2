package ml

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"IntelliSearch/internal/config"
	"IntelliSearch/internal/ports"
)

// Client talks to a hosted inference API for text classification and
// feature extraction.
type Client struct {
	endpoint       string
	apiKey         string
	embeddingModel string
	http           *http.Client
}

var _ ports.Classifier = (*Client)(nil)
var _ ports.Embedder = (*Client)(nil)

// NewClient creates a reusable HTTP client.
func NewClient(cfg config.MLConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		endpoint:       strings.TrimSuffix(cfg.InferenceURL, "/"),
		apiKey:         cfg.APIKey,
		embeddingModel: cfg.EmbeddingModel,
		http:           httpClient,
	}
}

type labelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Classify returns the highest-scoring label of a text-classification model.
func (c *Client) Classify(ctx context.Context, model, text string) (string, error) {
	var raw json.RawMessage
	if err := c.post(ctx, model, map[string]any{"inputs": text}, &raw); err != nil {
		return "", err
	}

	// Pipelines answer either [[{label,score}...]] or [{label,score}...].
	var nested [][]labelScore
	var scores []labelScore
	if err := json.Unmarshal(raw, &nested); err == nil && len(nested) > 0 {
		scores = nested[0]
	} else if err := json.Unmarshal(raw, &scores); err != nil {
		return "", fmt.Errorf("decode classification: %w", err)
	}

	best := labelScore{Score: -1}
	for _, s := range scores {
		if s.Score > best.Score {
			best = s
		}
	}
	if best.Label == "" {
		return "", fmt.Errorf("classification returned no labels")
	}
	return best.Label, nil
}

// Embed runs feature extraction for all texts in one call.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if c.embeddingModel == "" {
		return nil, fmt.Errorf("embedding model is not configured")
	}

	var vectors [][]float32
	if err := c.post(ctx, c.embeddingModel, map[string]any{"inputs": texts}, &vectors); err != nil {
		return nil, err
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(vectors))
	}
	return vectors, nil
}

func (c *Client) post(ctx context.Context, model string, payload any, v any) error {
	if c.endpoint == "" {
		return fmt.Errorf("inference endpoint is not configured")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/"+model, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("unexpected status %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
