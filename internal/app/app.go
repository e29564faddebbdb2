package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"IntelliSearch/internal/config"
	"IntelliSearch/internal/domain"
	"IntelliSearch/internal/infrastructure/fetcher"
	"IntelliSearch/internal/infrastructure/llm"
	"IntelliSearch/internal/infrastructure/lookup"
	"IntelliSearch/internal/infrastructure/ml"
	"IntelliSearch/internal/infrastructure/parser"
	"IntelliSearch/internal/infrastructure/scheduler"
	"IntelliSearch/internal/infrastructure/storage"
	"IntelliSearch/internal/infrastructure/telegram"
	"IntelliSearch/internal/logging"
	"IntelliSearch/internal/ports"
	"IntelliSearch/internal/scanner"
	"IntelliSearch/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg    config.Config
	logger *slog.Logger

	aggregator *usecase.Aggregator
	scorer     *usecase.Scorer
	assistant  *usecase.Assistant
	repo       *storage.SQLiteRepository
}

// New builds the application. Missing optional backends are logged and leave
// their component degraded; only an unusable transcript store is fatal.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.NewWithWriter(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)
	}
	a := &Application{cfg: cfg, logger: baseLogger}

	registry := scanner.NewRegistry()
	registry.Register(parser.NewHTTPScanner(
		&http.Client{Timeout: cfg.Search.Timeout}, cfg.Search.BaseURL, cfg.Search.UserAgent,
		logging.Component(baseLogger, "scanner.http")))
	registry.Register(parser.NewBrowserScanner(
		cfg.Search.BaseURL, cfg.Search.UserAgent, cfg.Search.BrowserPath, cfg.Search.Timeout,
		logging.Component(baseLogger, "scanner.rod")))
	source := parser.NewStrategySource(registry, cfg.Search.Strategy, logging.Component(baseLogger, "source"))

	contentFetcher := fetcher.New(cfg.Fetcher, nil, logging.Component(baseLogger, "fetcher"))

	completion, err := llm.New(cfg.Completion)
	if err != nil {
		baseLogger.Warn("completion backend unavailable", "provider", cfg.Completion.Provider, "error", err)
		completion = nil
	}

	a.scorer = usecase.NewScorer(contentFetcher, a.signalSources(baseLogger), logging.Component(baseLogger, "credibility"))

	var rater ports.ArticleRater
	switch strings.ToLower(strings.TrimSpace(cfg.Aggregator.Rater)) {
	case "credibility":
		rater = usecase.NewCredibilityRater(a.scorer)
	case "", "quality":
		rater = usecase.NewQualityRater(completion, logging.Component(baseLogger, "quality"))
	default:
		return nil, fmt.Errorf("unsupported rater: %s", cfg.Aggregator.Rater)
	}

	workers := cfg.Aggregator.Workers
	if workers <= 0 {
		workers = cfg.Search.Limit
	}
	a.aggregator = usecase.NewAggregator(usecase.AggregatorDeps{
		Scraper: source,
		Fetcher: contentFetcher,
		Rater:   rater,
		Logger:  logging.Component(baseLogger, "aggregator"),
		Workers: workers,
		Timeout: cfg.Aggregator.Timeout,
	})

	var repo ports.TurnRepository
	if cfg.Database.DSN != "" {
		a.repo, err = storage.Open(ctx, cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("open transcript store: %w", err)
		}
		repo = a.repo
	}

	a.assistant = usecase.NewAssistant(usecase.AssistantDeps{
		Completion:    completion,
		Repository:    repo,
		Logger:        logging.Component(baseLogger, "assistant"),
		SystemPrompt:  cfg.Assistant.SystemPrompt,
		HistoryWindow: cfg.Assistant.HistoryWindow,
	})

	return a, nil
}

func (a *Application) signalSources(baseLogger *slog.Logger) usecase.SignalSources {
	inference := ml.NewClient(a.cfg.ML, nil)
	sources := usecase.SignalSources{
		Classifier:     inference,
		TrustModel:     a.cfg.ML.TrustModel,
		SentimentModel: a.cfg.ML.SentimentModel,
		Logger:         logging.Component(baseLogger, "signals"),
	}

	embedder, err := ml.NewEmbedder(a.cfg.ML, inference)
	if err != nil {
		baseLogger.Warn("embedding backend unavailable", "provider", a.cfg.ML.EmbeddingProvider, "error", err)
	} else {
		sources.Embedder = embedder
	}

	// Keyless lookups would fail on every call; leave them at their defaults.
	if a.cfg.FactCheck.APIKey != "" {
		sources.FactChecker = lookup.NewFactCheckClient(a.cfg.FactCheck, nil)
	}
	if a.cfg.Scholar.APIKey != "" {
		sources.Citations = lookup.NewScholarClient(a.cfg.Scholar, nil)
	}
	return sources
}

// Close releases the transcript store.
func (a *Application) Close() error {
	if a.repo == nil {
		return nil
	}
	return a.repo.Close()
}

// Query builds a search query for text with the configured search defaults.
func (a *Application) Query(text string) domain.SearchQuery {
	filter, err := domain.ParseTimeFilter(a.cfg.Search.TimeFilter)
	if err != nil {
		a.logger.Warn("invalid time filter, using past week", "value", a.cfg.Search.TimeFilter, "error", err)
		filter = domain.PastWeek
	}
	return domain.SearchQuery{
		Text:       text,
		Region:     a.cfg.Search.Region,
		TimeFilter: filter,
		Limit:      a.cfg.Search.Limit,
	}.Normalize()
}

// Search aggregates one query.
func (a *Application) Search(ctx context.Context, q domain.SearchQuery) domain.AggregateResult {
	return a.aggregator.Aggregate(ctx, q)
}

// Validate scores a single URL against a query.
func (a *Application) Validate(ctx context.Context, query, pageURL string) domain.CredibilityReport {
	return a.scorer.Rate(ctx, query, pageURL)
}

// Assistant returns the conversation assistant of this process.
func (a *Application) Assistant() *usecase.Assistant {
	return a.assistant
}

// Sessions lists recent stored sessions, newest first.
func (a *Application) Sessions(ctx context.Context, limit uint64) ([]string, error) {
	if a.repo == nil {
		return nil, errors.New("no transcript store configured")
	}
	return a.repo.ListSessions(ctx, limit)
}

// Watch runs the digest pipeline for the configured queries. With once set it
// runs a single pass; otherwise it follows the cron expression until ctx ends.
func (a *Application) Watch(ctx context.Context, once bool) error {
	queries := make([]domain.SearchQuery, 0, len(a.cfg.Scheduler.Queries))
	for _, text := range a.cfg.Scheduler.Queries {
		if strings.TrimSpace(text) != "" {
			queries = append(queries, a.Query(text))
		}
	}
	if len(queries) == 0 {
		return errors.New("no watch queries configured")
	}

	tg := a.cfg.Notifications.Telegram
	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Aggregator: a.aggregator,
		Notifier:   telegram.NewNotifier(tg.BotToken, tg.ChatID, logging.Component(a.logger, "telegram")),
		Logger:     logging.Component(a.logger, "pipeline"),
		Queries:    queries,
	})

	loc := a.cfg.Scheduler.Location()
	driver, err := scheduler.NewCronScheduler(a.cfg.Scheduler.CronExpression, loc)
	if err != nil {
		return err
	}
	runner := usecase.NewScheduler(driver, pipeline, logging.Component(a.logger, "scheduler"))
	if once {
		return runner.RunOnce(ctx, time.Now().In(loc))
	}

	if err := runner.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.logger.Info("watch started", "cron", a.cfg.Scheduler.CronExpression, "queries", len(queries), "next", driver.Next())

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return runner.Stop(stopCtx)
}
