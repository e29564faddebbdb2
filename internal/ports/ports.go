package ports

import (
	"context"
	"time"

	"IntelliSearch/internal/domain"
)

// Logger is the logging capability injected into components; *slog.Logger satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// SearchScraper retrieves ranked result stubs for a query.
type SearchScraper interface {
	Search(ctx context.Context, query domain.SearchQuery) ([]domain.SearchResultStub, error)
}

// ContentFetcher extracts the textual content of a page. It never fails; problems
// are reported through ArticleContent.Status.
type ContentFetcher interface {
	Fetch(ctx context.Context, url string) domain.ArticleContent
}

// TextCompletion is an opaque prompt-in, text-out generation service.
type TextCompletion interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Classifier labels text with a named model (credibility, sentiment).
type Classifier interface {
	Classify(ctx context.Context, model, text string) (string, error)
}

// Embedder maps texts into a shared vector space.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// FactChecker reports whether published fact-checks match the text.
type FactChecker interface {
	HasClaims(ctx context.Context, text string) (bool, error)
}

// CitationCounter counts scholarly results referencing a URL.
type CitationCounter interface {
	CountCitations(ctx context.Context, url string) (int, error)
}

// ArticleRater turns a fetched article into rating text for the results table.
type ArticleRater interface {
	RateArticle(ctx context.Context, query string, stub domain.SearchResultStub, content domain.ArticleContent) (string, error)
}

// TurnRepository persists conversation turns per session.
type TurnRepository interface {
	AppendTurn(ctx context.Context, turn domain.ConversationTurn) error
	LoadTurns(ctx context.Context, sessionID string) ([]domain.ConversationTurn, error)
}

// Notifier streams rendered digests to a chat channel.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Scheduler controls when recurring digests execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
