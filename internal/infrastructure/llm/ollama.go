package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"

	"IntelliSearch/internal/config"
	"IntelliSearch/internal/ports"
)

const defaultOllamaHost = "http://localhost:11434"

// OllamaClient generates completions with a local Ollama server.
type OllamaClient struct {
	client *api.Client
	model  string
}

var _ ports.TextCompletion = (*OllamaClient)(nil)

// NewOllamaClient connects to cfg.Endpoint, defaulting to the local daemon.
func NewOllamaClient(cfg config.CompletionConfig, httpClient *http.Client) (*OllamaClient, error) {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultOllamaHost
	}
	base, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse ollama endpoint %s: %w", endpoint, err)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("ollama model is not configured")
	}

	return &OllamaClient{client: api.NewClient(base, httpClient), model: cfg.Model}, nil
}

// Complete runs a non-streaming generate call.
func (c *OllamaClient) Complete(ctx context.Context, prompt string) (string, error) {
	stream := false
	req := &api.GenerateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: &stream,
	}

	var out strings.Builder
	err := c.client.Generate(ctx, req, func(resp api.GenerateResponse) error {
		out.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama generate: %w", err)
	}

	return strings.TrimSpace(out.String()), nil
}
