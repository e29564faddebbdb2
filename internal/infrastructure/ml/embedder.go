package ml

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"
	"github.com/sashabaranov/go-openai"

	"IntelliSearch/internal/config"
	"IntelliSearch/internal/ports"
)

const (
	openAIEmbeddingDefaultModel = "text-embedding-3-small"
	ollamaEmbeddingDefaultModel = "nomic-embed-text"
	ollamaDefaultHost           = "http://localhost:11434"
)

// NewEmbedder resolves the configured embedding backend. The inference
// backend reuses the classifier client.
func NewEmbedder(cfg config.MLConfig, inference *Client) (ports.Embedder, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.EmbeddingProvider)) {
	case "", "inference":
		if inference == nil {
			inference = NewClient(cfg, nil)
		}
		return inference, nil
	case "openai":
		return NewOpenAIEmbedder(cfg)
	case "ollama":
		return NewOllamaEmbedder(cfg, nil)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.EmbeddingProvider)
	}
}

// OpenAIEmbedder implements ports.Embedder with the embeddings endpoint.
type OpenAIEmbedder struct {
	client *openai.Client
	model  string
}

var _ ports.Embedder = (*OpenAIEmbedder)(nil)

// NewOpenAIEmbedder requires an API key; EmbeddingEndpoint overrides the base URL.
func NewOpenAIEmbedder(cfg config.MLConfig) (*OpenAIEmbedder, error) {
	if cfg.EmbeddingAPIKey == "" {
		return nil, fmt.Errorf("API key is required for OpenAI embedding")
	}

	model := cfg.EmbeddingModel
	if model == "" || strings.Contains(model, "/") {
		model = openAIEmbeddingDefaultModel
	}

	clientCfg := openai.DefaultConfig(cfg.EmbeddingAPIKey)
	if cfg.EmbeddingEndpoint != "" {
		clientCfg.BaseURL = strings.TrimSuffix(cfg.EmbeddingEndpoint, "/")
	}

	return &OpenAIEmbedder{client: openai.NewClientWithConfig(clientCfg), model: model}, nil
}

// Embed creates embeddings for all texts in one request.
func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(e.model),
		Input: texts,
	})
	if err != nil {
		return nil, fmt.Errorf("openai embedding API error: %w", err)
	}

	embeddings := make([][]float32, len(resp.Data))
	for i, data := range resp.Data {
		embeddings[i] = data.Embedding
	}
	return embeddings, nil
}

// OllamaEmbedder implements ports.Embedder against a local Ollama server.
type OllamaEmbedder struct {
	client *api.Client
	model  string
}

var _ ports.Embedder = (*OllamaEmbedder)(nil)

// NewOllamaEmbedder connects to EmbeddingEndpoint, defaulting to the local daemon.
func NewOllamaEmbedder(cfg config.MLConfig, httpClient *http.Client) (*OllamaEmbedder, error) {
	endpoint := cfg.EmbeddingEndpoint
	if endpoint == "" {
		endpoint = ollamaDefaultHost
	}
	base, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse ollama endpoint %s: %w", endpoint, err)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	model := cfg.EmbeddingModel
	if model == "" || strings.Contains(model, "/") {
		model = ollamaEmbeddingDefaultModel
	}

	return &OllamaEmbedder{client: api.NewClient(base, httpClient), model: model}, nil
}

// Embed requests one embedding per text.
func (e *OllamaEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, text := range texts {
		resp, err := e.client.Embeddings(ctx, &api.EmbeddingRequest{Model: e.model, Prompt: text})
		if err != nil {
			return nil, fmt.Errorf("ollama embedding: %w", err)
		}
		vec := make([]float32, len(resp.Embedding))
		for i, v := range resp.Embedding {
			vec[i] = float32(v)
		}
		out = append(out, vec)
	}
	return out, nil
}
