package domain

import (
	"math"
	"strings"
)

// Signal weights of the composite credibility score.
const (
	WeightDomainTrust = 0.3
	WeightRelevance   = 0.3
	WeightFactCheck   = 0.2
	WeightBias        = 0.1
	WeightCitations   = 0.1
)

// StarGlyph is the glyph used for star ratings.
const StarGlyph = "⭐"

// Signals groups the five bounded heuristic scores.
type Signals struct {
	DomainTrust int
	Relevance   int
	FactCheck   int
	Bias        int
	Citations   int
}

// FinalScore applies the fixed weights; the result stays in [0,100].
func (s Signals) FinalScore() float64 {
	score := WeightDomainTrust*float64(clampSignal(s.DomainTrust)) +
		WeightRelevance*float64(clampSignal(s.Relevance)) +
		WeightFactCheck*float64(clampSignal(s.FactCheck)) +
		WeightBias*float64(clampSignal(s.Bias)) +
		WeightCitations*float64(clampSignal(s.Citations))
	return math.Max(0, math.Min(100, score))
}

// CredibilityReport is the explainable outcome of scoring one URL.
type CredibilityReport struct {
	Signals
	FinalScore  float64
	Stars       int
	Icon        string
	Explanation string
}

// NewCredibilityReport derives score, stars and explanation from the signals.
func NewCredibilityReport(s Signals) CredibilityReport {
	final := s.FinalScore()
	stars := StarsFor(final)
	return CredibilityReport{
		Signals:     s,
		FinalScore:  final,
		Stars:       stars,
		Icon:        strings.Repeat(StarGlyph, stars),
		Explanation: Explain(s),
	}
}

// StarsFor maps a [0,100] score to 1..5 stars. Halves round to even.
func StarsFor(score float64) int {
	stars := int(math.RoundToEven(score / 20))
	if stars < 1 {
		return 1
	}
	if stars > 5 {
		return 5
	}
	return stars
}

const credibleSentence = "This source is highly credible and relevant."

// Explain lists a reason for every weak signal.
func Explain(s Signals) string {
	var reasons []string
	if s.DomainTrust < 50 {
		reasons = append(reasons, "Low domain authority detected.")
	}
	if s.Relevance < 50 {
		reasons = append(reasons, "Content is not highly relevant to the query.")
	}
	if s.FactCheck < 50 {
		reasons = append(reasons, "Limited fact-checking verification available.")
	}
	if s.Bias < 50 {
		reasons = append(reasons, "Potential bias detected in content.")
	}
	if s.Citations < 30 {
		reasons = append(reasons, "Few or no citations found for this content.")
	}
	if len(reasons) == 0 {
		return credibleSentence
	}
	return strings.Join(reasons, " ")
}

func clampSignal(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
