package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"IntelliSearch/internal/config"
	"IntelliSearch/internal/ports"
)

// ChatGPTClient implements ports.TextCompletion backed by OpenAI-compatible APIs.
type ChatGPTClient struct {
	client    *openai.Client
	model     string
	maxTokens int
}

var _ ports.TextCompletion = (*ChatGPTClient)(nil)

// NewChatGPTClient builds a client from configuration. Endpoint overrides the
// API base URL for compatible gateways.
func NewChatGPTClient(cfg config.CompletionConfig) (*ChatGPTClient, error) {
	if cfg.APIKey == "" || cfg.Model == "" {
		return nil, fmt.Errorf("chatgpt client misconfigured")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.Endpoint != "" {
		clientCfg.BaseURL = strings.TrimSuffix(cfg.Endpoint, "/")
	}

	return &ChatGPTClient{
		client:    openai.NewClientWithConfig(clientCfg),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
	}, nil
}

// Complete sends the prompt as a single user message.
func (c *ChatGPTClient) Complete(ctx context.Context, prompt string) (string, error) {
	if c == nil || c.client == nil {
		return "", fmt.Errorf("chatgpt client is nil")
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens: c.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("chatgpt completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chatgpt completion: empty choices")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
