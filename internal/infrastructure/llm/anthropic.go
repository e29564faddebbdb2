package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/liushuangls/go-anthropic/v2"

	"IntelliSearch/internal/config"
	"IntelliSearch/internal/ports"
)

// ClaudeClient implements ports.TextCompletion with the Messages API.
type ClaudeClient struct {
	client    *anthropic.Client
	model     string
	maxTokens int
}

var _ ports.TextCompletion = (*ClaudeClient)(nil)

// NewClaudeClient builds a client; Endpoint overrides the API base URL.
func NewClaudeClient(cfg config.CompletionConfig) (*ClaudeClient, error) {
	if cfg.APIKey == "" || cfg.Model == "" {
		return nil, fmt.Errorf("claude client misconfigured")
	}

	var opts []anthropic.ClientOption
	if cfg.Endpoint != "" {
		opts = append(opts, anthropic.WithBaseURL(strings.TrimSuffix(cfg.Endpoint, "/")))
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	return &ClaudeClient{
		client:    anthropic.NewClient(cfg.APIKey, opts...),
		model:     cfg.Model,
		maxTokens: maxTokens,
	}, nil
}

// Complete sends the prompt as one user message and joins the text blocks.
func (c *ClaudeClient) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     anthropic.Model(c.model),
		Messages:  []anthropic.Message{anthropic.NewUserTextMessage(prompt)},
		MaxTokens: c.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("claude messages: %w", err)
	}

	var out strings.Builder
	for _, content := range resp.Content {
		if content.Type == anthropic.MessagesContentTypeText {
			out.WriteString(content.GetText())
		}
	}
	if out.Len() == 0 {
		return "", fmt.Errorf("claude messages: empty content")
	}

	return strings.TrimSpace(out.String()), nil
}
