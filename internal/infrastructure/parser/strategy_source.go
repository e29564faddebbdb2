package parser

import (
	"context"
	"fmt"

	"IntelliSearch/internal/domain"
	"IntelliSearch/internal/ports"
	"IntelliSearch/internal/scanner"
)

// StrategySource implements ports.SearchScraper via a registered scanner strategy.
type StrategySource struct {
	registry *scanner.Registry
	strategy string
	logger   ports.Logger
}

var _ ports.SearchScraper = (*StrategySource)(nil)

// NewStrategySource wires the scanner registry with the configured strategy name.
func NewStrategySource(reg *scanner.Registry, strategy string, log ports.Logger) *StrategySource {
	return &StrategySource{
		registry: reg,
		strategy: strategy,
		logger:   log,
	}
}

// Search normalizes the query and delegates to the configured strategy.
func (s *StrategySource) Search(ctx context.Context, q domain.SearchQuery) ([]domain.SearchResultStub, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("%w: scanner registry is not configured", domain.ErrSearchUnavailable)
	}

	strategy, err := s.registry.Resolve(s.strategy)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSearchUnavailable, err)
	}

	q = q.Normalize()
	s.debug("search", "strategy", strategy.Name(), "query", q.Text, "region", q.Region,
		"time_filter", q.TimeFilter, "limit", q.Limit)

	stubs, err := strategy.Search(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search %q via %s: %w", q.Text, strategy.Name(), err)
	}

	s.debug("strategy source done", "strategy", strategy.Name(), "results", len(stubs))
	return stubs, nil
}

func (s *StrategySource) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
