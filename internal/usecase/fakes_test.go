package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"

	"IntelliSearch/internal/domain"
)

type fakeCompletion struct {
	mu      sync.Mutex
	reply   func(prompt string) (string, error)
	prompts []string
}

func (f *fakeCompletion) Complete(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	if f.reply == nil {
		return "", errors.New("no reply configured")
	}
	return f.reply(prompt)
}

func (f *fakeCompletion) lastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.prompts) == 0 {
		return ""
	}
	return f.prompts[len(f.prompts)-1]
}

// stallingCompletion answers only once the context ends, like a hung model server.
type stallingCompletion struct{}

func (stallingCompletion) Complete(ctx context.Context, _ string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

type fakeScraper struct {
	stubs []domain.SearchResultStub
	err   error
}

func (f fakeScraper) Search(context.Context, domain.SearchQuery) ([]domain.SearchResultStub, error) {
	return f.stubs, f.err
}

type fakeFetcher struct {
	fetch func(ctx context.Context, url string) domain.ArticleContent
}

func (f fakeFetcher) Fetch(ctx context.Context, url string) domain.ArticleContent {
	if f.fetch == nil {
		return domain.ArticleContent{URL: url, Body: "body of " + url, Status: domain.FetchOK}
	}
	return f.fetch(ctx, url)
}

type fakeClassifier struct {
	mu     sync.Mutex
	labels map[string]string
	err    error
	inputs []string
}

func (f *fakeClassifier) Classify(_ context.Context, model, text string) (string, error) {
	f.mu.Lock()
	f.inputs = append(f.inputs, text)
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return f.labels[model], nil
}

type fakeEmbedder struct {
	vectors [][]float32
	err     error
}

func (f fakeEmbedder) Embed(context.Context, []string) ([][]float32, error) {
	return f.vectors, f.err
}

type stallingEmbedder struct{}

func (stallingEmbedder) Embed(ctx context.Context, _ []string) ([][]float32, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

type fakeFactChecker struct {
	mu    sync.Mutex
	found bool
	err   error
	input string
}

func (f *fakeFactChecker) HasClaims(_ context.Context, text string) (bool, error) {
	f.mu.Lock()
	f.input = text
	f.mu.Unlock()
	return f.found, f.err
}

type fakeCitations struct {
	count int
	err   error
}

func (f fakeCitations) CountCitations(context.Context, string) (int, error) {
	return f.count, f.err
}

type memoryRepo struct {
	mu    sync.Mutex
	turns []domain.ConversationTurn
}

func (m *memoryRepo) AppendTurn(_ context.Context, turn domain.ConversationTurn) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns = append(m.turns, turn)
	return nil
}

func (m *memoryRepo) LoadTurns(_ context.Context, sessionID string) ([]domain.ConversationTurn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.ConversationTurn
	for _, t := range m.turns {
		if t.SessionID == sessionID {
			out = append(out, t)
		}
	}
	return out, nil
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
	err      error
}

func (r *recordingNotifier) PublishDigest(_ context.Context, digest string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.messages = append(r.messages, digest)
	return nil
}

func stubs(titles ...string) []domain.SearchResultStub {
	out := make([]domain.SearchResultStub, len(titles))
	for i, title := range titles {
		out[i] = domain.SearchResultStub{
			Rank:    i + 1,
			Title:   title,
			Link:    "https://news.example.com/" + strings.ReplaceAll(strings.ToLower(title), " ", "-"),
			Snippet: "snippet " + title,
		}
	}
	return out
}
