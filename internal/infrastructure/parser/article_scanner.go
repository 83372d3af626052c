package parser

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/go-shiori/go-readability"

	"KBeautyBriefing/internal/domain"
	"KBeautyBriefing/internal/logging"
	"KBeautyBriefing/internal/scanner"
)

// ArticleScanner turns individual blog posts into one Post each using readability extraction.
type ArticleScanner struct {
	fetcher *Fetcher
	logger  *slog.Logger
}

var _ scanner.Scanner = (*ArticleScanner)(nil)

// NewArticleScanner wires a fetcher; a nil fetcher gets default settings.
func NewArticleScanner(fetcher *Fetcher, logger *slog.Logger) *ArticleScanner {
	if fetcher == nil {
		fetcher = NewFetcher(nil, FetcherConfig{})
	}
	return &ArticleScanner{fetcher: fetcher, logger: logging.OrDiscard(logger)}
}

// Name identifies the strategy inside the registry.
func (s *ArticleScanner) Name() string {
	return "article"
}

// Scan extracts the main text of every URL.
func (s *ArticleScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.Post, error) {
	if len(req.URLs) == 0 {
		return nil, fmt.Errorf("no urls provided for source %s", req.SourceName)
	}

	var (
		results []domain.Post
		errs    []error
	)
	for _, pageURL := range req.URLs {
		if reachedLimit(results, req.MaxPosts) {
			break
		}
		post, err := s.extract(ctx, req.SourceName, pageURL)
		if err != nil {
			s.logger.Warn("article extraction failed", "source", req.SourceName, "url", pageURL, "error", err)
			errs = append(errs, err)
			continue
		}
		results = append(results, post)
	}

	if len(results) == 0 && len(errs) == len(req.URLs) {
		return nil, errors.Join(errs...)
	}
	return results, nil
}

func (s *ArticleScanner) extract(ctx context.Context, source, pageURL string) (domain.Post, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return domain.Post{}, fmt.Errorf("invalid url %s: %w", pageURL, err)
	}
	body, err := s.fetcher.Get(ctx, pageURL)
	if err != nil {
		return domain.Post{}, fmt.Errorf("%s: %w", pageURL, err)
	}

	article, err := readability.FromReader(bytes.NewReader(body), parsed)
	if err != nil {
		return domain.Post{}, fmt.Errorf("extract %s: %w", pageURL, err)
	}

	content := cleanText(article.TextContent)
	if content == "" {
		content = cleanText(article.Excerpt)
	}
	title := cleanText(article.Title)
	if title == "" || content == "" {
		return domain.Post{}, fmt.Errorf("extract %s: no readable content", pageURL)
	}

	return domain.Post{
		Title:   title,
		Content: content,
		Source:  source,
		URL:     pageURL,
		Author:  cleanText(article.Byline),
	}, nil
}
