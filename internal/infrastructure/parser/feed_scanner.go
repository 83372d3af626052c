package parser

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mmcdole/gofeed"

	"KBeautyBriefing/internal/domain"
	"KBeautyBriefing/internal/logging"
	"KBeautyBriefing/internal/scanner"
)

// FeedScanner reads RSS and Atom feeds (blog feeds, beauty news sites).
type FeedScanner struct {
	fetcher *Fetcher
	logger  *slog.Logger
}

var _ scanner.Scanner = (*FeedScanner)(nil)

// NewFeedScanner wires a fetcher; a nil fetcher gets default settings.
func NewFeedScanner(fetcher *Fetcher, logger *slog.Logger) *FeedScanner {
	if fetcher == nil {
		fetcher = NewFetcher(nil, FetcherConfig{})
	}
	return &FeedScanner{fetcher: fetcher, logger: logging.OrDiscard(logger)}
}

// Name identifies the strategy inside the registry.
func (s *FeedScanner) Name() string {
	return "rss"
}

// Scan parses every feed URL and converts items to posts.
func (s *FeedScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.Post, error) {
	if len(req.URLs) == 0 {
		return nil, fmt.Errorf("no urls provided for source %s", req.SourceName)
	}

	fp := gofeed.NewParser()
	var (
		results []domain.Post
		errs    []error
	)
	for _, feedURL := range req.URLs {
		if reachedLimit(results, req.MaxPosts) {
			break
		}
		body, err := s.fetcher.Get(ctx, feedURL)
		if err != nil {
			s.logger.Warn("feed fetch failed", "source", req.SourceName, "url", feedURL, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", feedURL, err))
			continue
		}
		feed, err := fp.Parse(bytes.NewReader(body))
		if err != nil {
			s.logger.Warn("feed parse failed", "source", req.SourceName, "url", feedURL, "error", err)
			errs = append(errs, fmt.Errorf("parse %s: %w", feedURL, err))
			continue
		}
		for _, item := range feed.Items {
			if post, ok := feedItemToPost(item, req.SourceName); ok {
				results = append(results, post)
			}
		}
	}

	if len(results) == 0 && len(errs) == len(req.URLs) {
		return nil, errors.Join(errs...)
	}
	return capPosts(results, req.MaxPosts), nil
}

func feedItemToPost(item *gofeed.Item, source string) (domain.Post, bool) {
	if item == nil {
		return domain.Post{}, false
	}
	title := cleanText(item.Title)
	if title == "" {
		return domain.Post{}, false
	}

	content := cleanText(item.Content)
	if content == "" {
		content = cleanText(item.Description)
	}
	if content == "" {
		content = title
	}

	author := ""
	if item.Author != nil {
		author = item.Author.Name
	} else if len(item.Authors) > 0 && item.Authors[0] != nil {
		author = item.Authors[0].Name
	}

	published := item.PublishedParsed
	if published == nil {
		published = item.UpdatedParsed
	}

	return domain.Post{
		Title:       title,
		Content:     content,
		Source:      source,
		URL:         item.Link,
		Author:      author,
		PublishedAt: published,
	}, true
}
