package usecase

import (
	"context"
	"fmt"
	"math"
	"strings"

	"IntelliSearch/internal/domain"
	"IntelliSearch/internal/ports"
)

// Signal defaults used when content is missing or a backend fails.
const (
	neutralSignal     = 50
	trustPrefixRunes  = 512
	factPrefixRunes   = 200
	citationsPerHit   = 10
	factCheckHit      = 80
	factCheckMiss     = 40
	trustReal         = 100
	trustFake         = 30
	biasPositive      = 100
	biasNeutral       = 50
	biasOther         = 30
	maxSignalStrength = 100
)

// SignalSources bundles the backends behind the five credibility signals.
// Any nil source degrades its signal to the failure default.
type SignalSources struct {
	Classifier     ports.Classifier
	TrustModel     string
	SentimentModel string
	Embedder       ports.Embedder
	FactChecker    ports.FactChecker
	Citations      ports.CitationCounter
	Logger         ports.Logger
}

// DomainTrust labels the opening of the content with the trust classifier.
func (s SignalSources) DomainTrust(ctx context.Context, content string) int {
	if content == "" {
		return neutralSignal
	}
	if s.Classifier == nil {
		return neutralSignal
	}

	label, err := s.Classifier.Classify(ctx, s.TrustModel, prefixRunes(content, trustPrefixRunes))
	if err != nil {
		s.lookupFailed("domain_trust", err)
		return neutralSignal
	}

	switch strings.ToUpper(label) {
	case "REAL":
		return trustReal
	case "FAKE":
		return trustFake
	default:
		return neutralSignal
	}
}

// Relevance is the cosine similarity of query and content, scaled to [0,100].
func (s SignalSources) Relevance(ctx context.Context, query, content string) int {
	if content == "" || s.Embedder == nil {
		return 0
	}

	vectors, err := s.Embedder.Embed(ctx, []string{query, content})
	if err != nil {
		s.lookupFailed("relevance", err)
		return 0
	}
	if len(vectors) != 2 {
		s.lookupFailed("relevance", fmt.Errorf("expected 2 embeddings, got %d", len(vectors)))
		return 0
	}

	return clampScore(int(Cosine(vectors[0], vectors[1]) * 100))
}

// FactCheck searches published claims matching the opening of the content.
func (s SignalSources) FactCheck(ctx context.Context, content string) int {
	if content == "" || s.FactChecker == nil {
		return neutralSignal
	}

	found, err := s.FactChecker.HasClaims(ctx, prefixRunes(content, factPrefixRunes))
	if err != nil {
		s.lookupFailed("fact_check", err)
		return neutralSignal
	}
	if found {
		return factCheckHit
	}
	return factCheckMiss
}

// Bias maps the sentiment of the opening of the content to a score.
func (s SignalSources) Bias(ctx context.Context, content string) int {
	if content == "" || s.Classifier == nil {
		return neutralSignal
	}

	label, err := s.Classifier.Classify(ctx, s.SentimentModel, prefixRunes(content, trustPrefixRunes))
	if err != nil {
		s.lookupFailed("bias", err)
		return neutralSignal
	}

	switch strings.ToUpper(label) {
	case "POSITIVE":
		return biasPositive
	case "NEUTRAL":
		return biasNeutral
	default:
		return biasOther
	}
}

// CitationScore scales the scholarly hit count for the URL, capped at 100.
func (s SignalSources) CitationScore(ctx context.Context, pageURL string) int {
	if s.Citations == nil {
		return 0
	}

	n, err := s.Citations.CountCitations(ctx, pageURL)
	if err != nil {
		s.lookupFailed("citations", err)
		return 0
	}
	return clampScore(n * citationsPerHit)
}

func (s SignalSources) lookupFailed(signal string, err error) {
	if s.Logger != nil {
		s.Logger.Warn("signal degraded to default", "signal", signal,
			"error", fmt.Errorf("%w: %w", domain.ErrSignalLookupFailed, err))
	}
}

// Cosine returns the cosine similarity of two vectors; mismatched or zero
// vectors yield 0.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func prefixRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > maxSignalStrength {
		return maxSignalStrength
	}
	return v
}
