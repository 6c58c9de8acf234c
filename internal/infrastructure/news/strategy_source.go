package news

import (
	"context"
	"fmt"
	"log/slog"

	"DiscussionScanner/internal/domain"
	"DiscussionScanner/internal/ports"
	"DiscussionScanner/internal/scanner"
)

// StrategySource implements ArticleSource via the scanner selected in config.
type StrategySource struct {
	registry *scanner.Registry
	name     string
	logger   *slog.Logger
}

var _ ports.ArticleSource = (*StrategySource)(nil)

// NewStrategySource wires the scanner registry with the configured source name.
func NewStrategySource(reg *scanner.Registry, name string, log *slog.Logger) *StrategySource {
	return &StrategySource{
		registry: reg,
		name:     name,
		logger:   log,
	}
}

// FetchBatch resolves the configured scanner and returns at most limit drafts.
func (s *StrategySource) FetchBatch(ctx context.Context, limit, existing int) ([]domain.ArticleDraft, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("scanner registry is not configured")
	}
	if limit <= 0 {
		return nil, nil
	}

	strategy, err := s.registry.Resolve(s.name)
	if err != nil {
		return nil, err
	}

	s.debug("fetch batch", "source", s.name, "limit", limit, "existing", existing)
	drafts, err := strategy.Scan(ctx, scanner.Request{Limit: limit, Existing: existing})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", s.name, err)
	}
	if len(drafts) > limit {
		drafts = drafts[:limit]
	}

	s.debug("source produced articles", "source", s.name, "count", len(drafts))
	return drafts, nil
}

func (s *StrategySource) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
