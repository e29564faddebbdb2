package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"IntelliSearch/internal/domain"
	"IntelliSearch/internal/ports"
	"IntelliSearch/internal/render"
)

// Assistant defaults.
const (
	DefaultSystemPrompt  = "You are a helpful assistant."
	DefaultHistoryWindow = 10
	ErrorReply           = "I apologize, but an error occurred while processing your request."
	emptyResults         = "<empty>"
	promptBodyRunes      = 1000
)

// ErrSessionNotFound is returned by Resume for unknown sessions.
var ErrSessionNotFound = errors.New("session not found")

// AssistantDeps wires the assistant's collaborators.
type AssistantDeps struct {
	Completion    ports.TextCompletion
	Repository    ports.TurnRepository
	Logger        ports.Logger
	SystemPrompt  string
	HistoryWindow int
}

// Assistant keeps a conversation log and answers with a windowed transcript.
type Assistant struct {
	completion   ports.TextCompletion
	repo         ports.TurnRepository
	logger       ports.Logger
	systemPrompt string
	window       int
	now          func() time.Time

	mu        sync.Mutex
	sessionID string
	turns     []domain.ConversationTurn
	persisted int
}

// NewAssistant starts a fresh session seeded with the system turn.
func NewAssistant(deps AssistantDeps) *Assistant {
	a := &Assistant{
		completion:   deps.Completion,
		repo:         deps.Repository,
		logger:       deps.Logger,
		systemPrompt: deps.SystemPrompt,
		window:       deps.HistoryWindow,
		now:          time.Now,
	}
	if strings.TrimSpace(a.systemPrompt) == "" {
		a.systemPrompt = DefaultSystemPrompt
	}
	if a.window <= 0 {
		a.window = DefaultHistoryWindow
	}
	a.reset()
	return a
}

// SessionID identifies the current session in the transcript store.
func (a *Assistant) SessionID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sessionID
}

// Turns returns a copy of the conversation log.
func (a *Assistant) Turns() []domain.ConversationTurn {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]domain.ConversationTurn(nil), a.turns...)
}

// Reset discards the log and starts a new session.
func (a *Assistant) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.reset()
}

func (a *Assistant) reset() {
	a.sessionID = uuid.NewString()
	a.turns = nil
	a.persisted = 0
	a.appendTurn(domain.RoleSystem, a.systemPrompt)
}

// Resume replaces the log with a stored session.
func (a *Assistant) Resume(ctx context.Context, sessionID string) error {
	if a.repo == nil {
		return fmt.Errorf("resume %s: no transcript store configured", sessionID)
	}

	turns, err := a.repo.LoadTurns(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("resume %s: %w", sessionID, err)
	}
	if len(turns) == 0 {
		return fmt.Errorf("resume %s: %w", sessionID, ErrSessionNotFound)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.sessionID = sessionID
	a.turns = turns
	a.persisted = len(turns)
	return nil
}

// Respond appends the user input, asks the completion backend with the last
// turns of the log and appends the reply. Failures yield ErrorReply.
func (a *Assistant) Respond(ctx context.Context, input string) string {
	a.mu.Lock()
	defer a.mu.Unlock()

	reply, _ := a.respond(ctx, input)
	a.flush(ctx)
	return reply
}

// Answer asks for a grounded reply to a query and its aggregated results.
// The rendered table is recorded with the reply in the log.
func (a *Assistant) Answer(ctx context.Context, query string, result domain.AggregateResult, aiOnly bool) (reply, table string) {
	table = render.Table(result)
	if aiOnly {
		table = render.NoResults
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	reply, ok := a.respond(ctx, AnswerPrompt(query, result, aiOnly))
	if ok {
		last := &a.turns[len(a.turns)-1]
		last.Content = reply + "\n\n" + table
	}
	a.flush(ctx)
	return reply, table
}

// AnswerPrompt grounds the question in the search results when there are any.
func AnswerPrompt(query string, result domain.AggregateResult, aiOnly bool) string {
	results := emptyResults
	summaries := []string{}
	if !aiOnly && result.OK() {
		results = "Search results:\n" + resultsJSON(result.Results)
		for _, r := range result.Results {
			summaries = append(summaries, r.Summary)
		}
	}
	summaryJSON, _ := json.Marshal(summaries)

	return fmt.Sprintf("Query: %s\nResults: %s\nContext: %s\n"+
		"Use search results if available, otherwise base response on conversation history.",
		query, results, summaryJSON)
}

func resultsJSON(articles []domain.RankedArticle) string {
	trimmed := make([]domain.RankedArticle, len(articles))
	for i, article := range articles {
		article.Body = prefixRunes(article.Body, promptBodyRunes)
		trimmed[i] = article
	}
	raw, err := json.Marshal(trimmed)
	if err != nil {
		return emptyResults
	}
	return string(raw)
}

// respond must be called with a.mu held.
func (a *Assistant) respond(ctx context.Context, input string) (string, bool) {
	a.appendTurn(domain.RoleUser, input)

	if a.completion == nil {
		a.logError("assistant has no completion backend")
		return ErrorReply, false
	}

	out, err := a.completion.Complete(ctx, a.transcript())
	if err != nil {
		a.logError("completion failed", "session", a.sessionID, "error", err)
		return ErrorReply, false
	}

	reply := strings.TrimSpace(out)
	a.appendTurn(domain.RoleAssistant, reply)
	return reply, true
}

// transcript renders the last window turns as "role: content" lines.
func (a *Assistant) transcript() string {
	start := len(a.turns) - a.window
	if start < 0 {
		start = 0
	}

	lines := make([]string, 0, len(a.turns)-start)
	for _, turn := range a.turns[start:] {
		lines = append(lines, fmt.Sprintf("%s: %s", turn.Role, turn.Content))
	}
	return strings.Join(lines, "\n")
}

func (a *Assistant) appendTurn(role domain.Role, content string) {
	a.turns = append(a.turns, domain.ConversationTurn{
		SessionID: a.sessionID,
		Role:      role,
		Content:   content,
		CreatedAt: a.now(),
	})
}

// flush persists turns not yet stored; store failures are logged only.
func (a *Assistant) flush(ctx context.Context) {
	if a.repo == nil {
		return
	}
	for a.persisted < len(a.turns) {
		if err := a.repo.AppendTurn(ctx, a.turns[a.persisted]); err != nil {
			a.logError("persist turn failed", "session", a.sessionID, "error", err)
			return
		}
		a.persisted++
	}
}

func (a *Assistant) logError(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Error(msg, args...)
	}
}
