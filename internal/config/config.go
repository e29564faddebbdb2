package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone   = "UTC"
	configPathEnv     = "INTELLISEARCH_CONFIG"
	logLevelEnv       = "LOG_LEVEL"
	databaseDSNEnv    = "DATABASE_DSN"
	ollamaHostEnv     = "OLLAMA_HOST"
	openAIAPIKeyEnv   = "OPENAI_API_KEY"
	anthropicKeyEnv   = "ANTHROPIC_API_KEY"
	hfAPIKeyEnv       = "HF_API_KEY"
	factCheckKeyEnv   = "FACTCHECK_API_KEY"
	serpAPIKeyEnv     = "SERPAPI_API_KEY"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Search        SearchConfig       `yaml:"search"`
	Fetcher       FetcherConfig      `yaml:"fetcher"`
	Completion    CompletionConfig   `yaml:"completion"`
	ML            MLConfig           `yaml:"ml"`
	FactCheck     LookupConfig       `yaml:"factcheck"`
	Scholar       LookupConfig       `yaml:"scholar"`
	Aggregator    AggregatorConfig   `yaml:"aggregator"`
	Assistant     AssistantConfig    `yaml:"assistant"`
	Database      DatabaseConfig     `yaml:"database"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Notifications NotificationConfig `yaml:"notifications"`
}

// LoggingConfig selects verbosity and record format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// SearchConfig describes the search surface and the scraping strategy.
type SearchConfig struct {
	Strategy    string        `yaml:"strategy"`
	BaseURL     string        `yaml:"baseUrl"`
	Region      string        `yaml:"region"`
	TimeFilter  string        `yaml:"timeFilter"`
	Limit       int           `yaml:"limit"`
	Timeout     time.Duration `yaml:"timeout"`
	UserAgent   string        `yaml:"userAgent"`
	BrowserPath string        `yaml:"browserPath"`
}

// FetcherConfig tunes article content extraction.
type FetcherConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	Retries   int           `yaml:"retries"`
	Backoff   time.Duration `yaml:"backoff"`
	Extractor string        `yaml:"extractor"`
	UserAgent string        `yaml:"userAgent"`
	Referer   string        `yaml:"referer"`
}

// CompletionConfig selects the text-completion backend.
type CompletionConfig struct {
	Provider  string        `yaml:"provider"`
	Model     string        `yaml:"model"`
	Endpoint  string        `yaml:"endpoint"`
	APIKey    string        `yaml:"apiKey"`
	MaxTokens int           `yaml:"maxTokens"`
	Timeout   time.Duration `yaml:"timeout"`
}

// MLConfig describes the inference service used by credibility signals.
type MLConfig struct {
	InferenceURL      string        `yaml:"inferenceUrl"`
	APIKey            string        `yaml:"apiKey"`
	TrustModel        string        `yaml:"trustModel"`
	SentimentModel    string        `yaml:"sentimentModel"`
	EmbeddingProvider string        `yaml:"embeddingProvider"`
	EmbeddingModel    string        `yaml:"embeddingModel"`
	EmbeddingEndpoint string        `yaml:"embeddingEndpoint"`
	EmbeddingAPIKey   string        `yaml:"embeddingApiKey"`
	Timeout           time.Duration `yaml:"timeout"`
}

// LookupConfig wires a keyed lookup API (fact checks, scholar citations).
type LookupConfig struct {
	Endpoint string        `yaml:"endpoint"`
	APIKey   string        `yaml:"apiKey"`
	Timeout  time.Duration `yaml:"timeout"`
}

// AggregatorConfig controls the per-query fan-out.
type AggregatorConfig struct {
	Rater   string        `yaml:"rater"`
	Workers int           `yaml:"workers"`
	Timeout time.Duration `yaml:"timeout"`
}

// AssistantConfig shapes the conversation context.
type AssistantConfig struct {
	SystemPrompt  string `yaml:"systemPrompt"`
	HistoryWindow int    `yaml:"historyWindow"`
}

// DatabaseConfig points at the SQLite transcript store; empty disables it.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// SchedulerConfig defines when watch mode should run.
type SchedulerConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	Queries        []string       `yaml:"queries"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   int64  `yaml:"chatId"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else if fileCfg, err := Parse(raw); err != nil {
			log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
		} else {
			cfg = fileCfg
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()
	return cfg
}

// Parse decodes YAML on top of the defaults so omitted keys keep their values.
func Parse(raw []byte) (Config, error) {
	cfg := defaultConfig()
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(ollamaHostEnv); v != "" && c.Completion.Provider == "ollama" {
		c.Completion.Endpoint = v
	}

	if v := os.Getenv(openAIAPIKeyEnv); v != "" && c.Completion.Provider == "openai" {
		c.Completion.APIKey = v
	}

	if v := os.Getenv(ollamaHostEnv); v != "" && c.ML.EmbeddingProvider == "ollama" {
		c.ML.EmbeddingEndpoint = v
	}

	if v := os.Getenv(openAIAPIKeyEnv); v != "" && c.ML.EmbeddingProvider == "openai" {
		c.ML.EmbeddingAPIKey = v
	}

	if v := os.Getenv(anthropicKeyEnv); v != "" && c.Completion.Provider == "anthropic" {
		c.Completion.APIKey = v
	}

	if v := os.Getenv(hfAPIKeyEnv); v != "" {
		c.ML.APIKey = v
	}

	if v := os.Getenv(factCheckKeyEnv); v != "" {
		c.FactCheck.APIKey = v
	}

	if v := os.Getenv(serpAPIKeyEnv); v != "" {
		c.Scholar.APIKey = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatIDEnv); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			log.Printf("config: invalid %s %q: %v", telegramChatIDEnv, v, err)
		} else {
			c.Notifications.Telegram.ChatID = id
		}
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

// Default returns the built-in configuration.
func Default() Config {
	cfg := defaultConfig()
	cfg.bindTimezone()
	return cfg
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Search: SearchConfig{
			Strategy:   "http",
			BaseURL:    "https://duckduckgo.com",
			Region:     "us-en",
			TimeFilter: "week",
			Limit:      7,
			Timeout:    10 * time.Second,
			UserAgent:  "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/133.0.0.0 Safari/537.36",
		},
		Fetcher: FetcherConfig{
			Timeout:   10 * time.Second,
			Retries:   2,
			Backoff:   2 * time.Second,
			Extractor: "paragraphs",
			UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/89.0.4389.114 Safari/537.36",
			Referer:   "https://www.google.com",
		},
		Completion: CompletionConfig{
			Provider:  "ollama",
			Model:     "llama3.2:latest",
			Endpoint:  "http://localhost:11434",
			MaxTokens: 1024,
			Timeout:   2 * time.Minute,
		},
		ML: MLConfig{
			InferenceURL:      "https://api-inference.huggingface.co/models",
			TrustModel:        "distilbert/distilbert-base-uncased-finetuned-sst-2-english",
			SentimentModel:    "nlptown/bert-base-multilingual-uncased-sentiment",
			EmbeddingProvider: "inference",
			EmbeddingModel:    "sentence-transformers/paraphrase-MiniLM-L6-v2",
			Timeout:           10 * time.Second,
		},
		FactCheck: LookupConfig{
			Endpoint: "https://factchecktools.googleapis.com/v1alpha1/claims:search",
			Timeout:  10 * time.Second,
		},
		Scholar: LookupConfig{
			Endpoint: "https://serpapi.com/search",
			Timeout:  10 * time.Second,
		},
		Aggregator: AggregatorConfig{Rater: "quality", Workers: 0, Timeout: 0},
		Assistant: AssistantConfig{
			SystemPrompt:  "You are a helpful assistant.",
			HistoryWindow: 10,
		},
		Database:  DatabaseConfig{DSN: ""},
		Scheduler: SchedulerConfig{CronExpression: "0 6 * * *", Timezone: defaultTimezone, location: tz},
		Notifications: NotificationConfig{
			Telegram: TelegramConfig{BotToken: "", ChatID: 0},
		},
	}
}
