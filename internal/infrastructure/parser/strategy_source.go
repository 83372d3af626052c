package parser

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"KBeautyBriefing/internal/config"
	"KBeautyBriefing/internal/domain"
	"KBeautyBriefing/internal/logging"
	"KBeautyBriefing/internal/ports"
	"KBeautyBriefing/internal/scanner"
)

// StrategySource implements ContentSource via registered scanner strategies.
type StrategySource struct {
	registry    *scanner.Registry
	sources     []config.SourceConfig
	maxPerSrc   int
	concurrency int
	logger      *slog.Logger
}

var _ ports.ContentSource = (*StrategySource)(nil)

// NewStrategySource wires scanner registry with config-defined sources.
func NewStrategySource(reg *scanner.Registry, sources []config.SourceConfig, scraping config.ScrapingConfig, log *slog.Logger) *StrategySource {
	concurrency := scraping.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	return &StrategySource{
		registry:    reg,
		sources:     sources,
		maxPerSrc:   scraping.MaxPostsPerSource,
		concurrency: concurrency,
		logger:      logging.OrDiscard(log),
	}
}

// FetchPosts scans every source concurrently. A failing source is logged and contributes
// nothing; results keep configuration order.
func (s *StrategySource) FetchPosts(ctx context.Context) ([]domain.Post, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("scanner registry is not configured")
	}

	s.logger.Debug("fetch posts", "sources", len(s.sources))

	perSource := make([][]domain.Post, len(s.sources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, src := range s.sources {
		g.Go(func() error {
			posts, err := s.scanSource(gctx, src)
			if err != nil {
				s.logger.Warn("source failed", "source", src.Name, "scanner", src.Scanner, "error", err)
				return nil
			}
			s.logger.Debug("source produced posts", "source", src.Name, "count", len(posts))
			perSource[i] = posts
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("fetch posts: %w", err)
	}

	var aggregated []domain.Post
	for _, posts := range perSource {
		aggregated = append(aggregated, posts...)
	}

	s.logger.Info("strategy source done", "total_posts", len(aggregated))
	return aggregated, nil
}

func (s *StrategySource) scanSource(ctx context.Context, src config.SourceConfig) ([]domain.Post, error) {
	strategy, err := s.registry.Resolve(src.Scanner)
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", src.Name, err)
	}

	limit := src.MaxPosts
	if limit <= 0 || (s.maxPerSrc > 0 && limit > s.maxPerSrc) {
		limit = s.maxPerSrc
	}

	req := scanner.Request{
		SourceName: src.Name,
		URLs:       src.URLs,
		Selectors:  toScannerSelectors(src.Selectors),
		Options:    src.Options,
		MaxPosts:   limit,
	}

	posts, err := strategy.Scan(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("scan source %s: %w", src.Name, err)
	}
	for i := range posts {
		if posts[i].Source == "" {
			posts[i].Source = src.Name
		}
	}
	return capPosts(posts, limit), nil
}

func toScannerSelectors(cfg config.SelectorConfig) scanner.Selectors {
	return scanner.Selectors{
		Posts:   cfg.Posts,
		Title:   cfg.Title,
		Content: cfg.Content,
		Date:    cfg.Date,
		Author:  cfg.Author,
		Link:    cfg.Link,
	}
}
