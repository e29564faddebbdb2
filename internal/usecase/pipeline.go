package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"IntelliSearch/internal/domain"
	"IntelliSearch/internal/ports"
	"IntelliSearch/internal/render"
)

// Aggregating is the part of the aggregator the digest pipeline needs.
type Aggregating interface {
	Aggregate(ctx context.Context, q domain.SearchQuery) domain.AggregateResult
}

// PipelineDeps wires all driven adapters into the digest pipeline.
type PipelineDeps struct {
	Aggregator Aggregating
	Notifier   ports.Notifier
	Logger     ports.Logger
	Queries    []domain.SearchQuery
}

// Pipeline runs the watched queries and publishes one digest per query.
type Pipeline struct {
	aggregator Aggregating
	notifier   ports.Notifier
	logger     ports.Logger
	queries    []domain.SearchQuery
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		aggregator: deps.Aggregator,
		notifier:   deps.Notifier,
		logger:     deps.Logger,
		queries:    deps.Queries,
	}
}

// ProcessDay aggregates every watched query and notifies. A failing query does
// not stop the others; all errors are joined.
func (p *Pipeline) ProcessDay(ctx context.Context, day time.Time) error {
	if p.aggregator == nil || len(p.queries) == 0 {
		return nil
	}

	var errs []error
	for _, q := range p.queries {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		result := p.aggregator.Aggregate(ctx, q)
		if !result.OK() {
			p.warn("watched query produced no digest", "query", q.Text, "message", result.Message)
			continue
		}

		if p.notifier == nil {
			continue
		}
		if err := p.notifier.PublishDigest(ctx, BuildDigestMessage(q.Text, day, result)); err != nil {
			errs = append(errs, fmt.Errorf("publish digest %q: %w", q.Text, err))
		}
	}

	return errors.Join(errs...)
}

// BuildDigestMessage renders the digest heading and results table.
func BuildDigestMessage(query string, day time.Time, result domain.AggregateResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s* (%s)\n\n", strings.TrimSpace(query), day.Format("2006-01-02"))
	b.WriteString(render.Table(result))
	return b.String()
}

func (p *Pipeline) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}
