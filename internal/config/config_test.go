package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
	_ "time/tzdata"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()

	if cfg.Search.Strategy != "http" {
		t.Fatalf("unexpected strategy: %s", cfg.Search.Strategy)
	}
	if cfg.Fetcher.Retries != 2 {
		t.Fatalf("expected 2 retries, got %d", cfg.Fetcher.Retries)
	}
	if cfg.Assistant.HistoryWindow != 10 {
		t.Fatalf("expected history window 10, got %d", cfg.Assistant.HistoryWindow)
	}
	if cfg.Scheduler.Location().String() != "UTC" {
		t.Fatalf("unexpected location: %s", cfg.Scheduler.Location())
	}
}

func TestParseKeepsDefaultsForOmittedKeys(t *testing.T) {
	raw := []byte(`
search:
  strategy: rod
  limit: 3
fetcher:
  timeout: 5s
aggregator:
  rater: credibility
`)

	cfg, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	if cfg.Search.Strategy != "rod" || cfg.Search.Limit != 3 {
		t.Fatalf("unexpected search section: %+v", cfg.Search)
	}
	if cfg.Search.Region != "us-en" {
		t.Fatalf("expected default region to survive, got %q", cfg.Search.Region)
	}
	if cfg.Fetcher.Timeout != 5*time.Second {
		t.Fatalf("expected 5s timeout, got %v", cfg.Fetcher.Timeout)
	}
	if cfg.Fetcher.Backoff != 2*time.Second {
		t.Fatalf("expected default backoff, got %v", cfg.Fetcher.Backoff)
	}
	if cfg.Aggregator.Rater != "credibility" {
		t.Fatalf("unexpected rater: %s", cfg.Aggregator.Rater)
	}
}

func TestLoadAppliesFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
completion:
  provider: openai
  model: gpt-4o-mini
scheduler:
  timezone: Europe/Helsinki
  queries:
    - Latest AI news
    - go releases
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv(configPathEnv, path)
	t.Setenv(openAIAPIKeyEnv, "sk-test")
	t.Setenv(serpAPIKeyEnv, "serp-key")
	t.Setenv(telegramChatIDEnv, "-1001234")
	t.Setenv(logLevelEnv, "debug")

	cfg := Load()

	if cfg.Completion.Provider != "openai" || cfg.Completion.Model != "gpt-4o-mini" {
		t.Fatalf("unexpected completion section: %+v", cfg.Completion)
	}
	if cfg.Completion.APIKey != "sk-test" {
		t.Fatalf("expected api key from env, got %q", cfg.Completion.APIKey)
	}
	if cfg.Scholar.APIKey != "serp-key" {
		t.Fatalf("expected scholar key from env, got %q", cfg.Scholar.APIKey)
	}
	if cfg.Notifications.Telegram.ChatID != -1001234 {
		t.Fatalf("unexpected chat id: %d", cfg.Notifications.Telegram.ChatID)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected log level: %s", cfg.Logging.Level)
	}
	if cfg.Scheduler.Location().String() != "Europe/Helsinki" {
		t.Fatalf("unexpected location: %s", cfg.Scheduler.Location())
	}
	if len(cfg.Scheduler.Queries) != 2 || cfg.Scheduler.Queries[0] != "Latest AI news" {
		t.Fatalf("unexpected watch queries: %v", cfg.Scheduler.Queries)
	}
}

func TestLoadFallsBackOnUnreadableFile(t *testing.T) {
	t.Setenv(configPathEnv, filepath.Join(t.TempDir(), "missing.yaml"))

	cfg := Load()
	if cfg.Completion.Provider != "ollama" {
		t.Fatalf("expected default provider, got %s", cfg.Completion.Provider)
	}
}
