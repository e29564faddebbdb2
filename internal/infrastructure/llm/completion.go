package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"IntelliSearch/internal/config"
	"IntelliSearch/internal/ports"
)

// New resolves the configured completion backend.
func New(cfg config.CompletionConfig) (ports.TextCompletion, error) {
	var (
		backend ports.TextCompletion
		err     error
	)

	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "ollama":
		backend, err = NewOllamaClient(cfg, nil)
	case "openai", "chatgpt":
		backend, err = NewChatGPTClient(cfg)
	case "anthropic", "claude":
		backend, err = NewClaudeClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported completion provider: %s", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	return WithTimeout(backend, cfg.Timeout), nil
}

// WithTimeout bounds every completion call; zero keeps the caller's deadline.
func WithTimeout(next ports.TextCompletion, timeout time.Duration) ports.TextCompletion {
	if timeout <= 0 {
		return next
	}
	return timeoutCompletion{next: next, timeout: timeout}
}

type timeoutCompletion struct {
	next    ports.TextCompletion
	timeout time.Duration
}

func (t timeoutCompletion) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.Complete(ctx, prompt)
}
