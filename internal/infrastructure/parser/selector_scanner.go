package parser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"KBeautyBriefing/internal/domain"
	"KBeautyBriefing/internal/logging"
	"KBeautyBriefing/internal/scanner"
)

// SelectorScanner reads static HTML pages (portal search results, blog lists) with CSS selectors.
type SelectorScanner struct {
	fetcher *Fetcher
	logger  *slog.Logger
}

var _ scanner.Scanner = (*SelectorScanner)(nil)

// NewSelectorScanner wires a fetcher; a nil fetcher gets default settings.
func NewSelectorScanner(fetcher *Fetcher, logger *slog.Logger) *SelectorScanner {
	if fetcher == nil {
		fetcher = NewFetcher(nil, FetcherConfig{})
	}
	return &SelectorScanner{fetcher: fetcher, logger: logging.OrDiscard(logger)}
}

// Name identifies the strategy inside the registry.
func (s *SelectorScanner) Name() string {
	return "selector"
}

// Scan walks each URL and extracts posts until req.MaxPosts is reached.
// A failing URL is logged and skipped; the scan fails only when every URL failed.
func (s *SelectorScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.Post, error) {
	if len(req.URLs) == 0 {
		return nil, fmt.Errorf("no urls provided for source %s", req.SourceName)
	}
	if req.Selectors.Posts == "" {
		return nil, fmt.Errorf("source %s has no post selector", req.SourceName)
	}

	var (
		results []domain.Post
		errs    []error
		seen    = map[string]struct{}{}
	)
	for _, pageURL := range req.URLs {
		if reachedLimit(results, req.MaxPosts) {
			break
		}
		doc, err := s.fetcher.Document(ctx, pageURL)
		if err != nil {
			s.logger.Warn("page fetch failed", "source", req.SourceName, "url", pageURL, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", pageURL, err))
			continue
		}
		page := extractPosts(doc, req, pageURL)
		s.logger.Debug("page parsed", "source", req.SourceName, "url", pageURL, "posts", len(page))
		for _, post := range page {
			key := post.URL + "|" + post.Title
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			results = append(results, post)
		}
	}

	if len(results) == 0 && len(errs) == len(req.URLs) {
		return nil, errors.Join(errs...)
	}
	return capPosts(results, req.MaxPosts), nil
}

// extractPosts applies the request selectors to one parsed page.
func extractPosts(doc *goquery.Document, req scanner.Request, pageURL string) []domain.Post {
	var collected []domain.Post
	doc.Find(req.Selectors.Posts).Each(func(_ int, item *goquery.Selection) {
		if post, ok := parsePost(item, req, pageURL); ok {
			collected = append(collected, post)
		}
	})
	return collected
}

func parsePost(item *goquery.Selection, req scanner.Request, pageURL string) (domain.Post, bool) {
	title := cleanText(pick(item, req.Selectors.Title, req.Option("titleAttr", "")))
	if title == "" {
		return domain.Post{}, false
	}

	content := cleanText(pick(item, req.Selectors.Content, req.Option("contentAttr", "")))
	if content == "" {
		content = title
	}

	link := ""
	if req.Selectors.Link != "" {
		if href, ok := first(item, req.Selectors.Link).Attr("href"); ok {
			link = resolveURL(pageURL, href)
		}
	}
	if link == "" {
		if href, ok := item.Attr("href"); ok {
			link = resolveURL(pageURL, href)
		}
	}

	return domain.Post{
		Title:       title,
		Content:     content,
		Source:      req.SourceName,
		URL:         link,
		Author:      cleanText(pick(item, req.Selectors.Author, "")),
		PublishedAt: parseDate(pick(item, req.Selectors.Date, req.Option("dateAttr", ""))),
	}, true
}

// pick returns the attribute (when attr is set) or the text of the first selector match.
func pick(item *goquery.Selection, selector, attr string) string {
	if selector == "" {
		return ""
	}
	node := first(item, selector)
	if node.Length() == 0 {
		return ""
	}
	if attr != "" {
		v, _ := node.Attr(attr)
		return strings.TrimSpace(v)
	}
	return strings.TrimSpace(node.Text())
}

// first matches selector inside item, falling back to item itself when it matches.
func first(item *goquery.Selection, selector string) *goquery.Selection {
	if found := item.Find(selector).First(); found.Length() > 0 {
		return found
	}
	if item.Is(selector) {
		return item
	}
	return item.Find(selector)
}

func reachedLimit(posts []domain.Post, limit int) bool {
	return limit > 0 && len(posts) >= limit
}

func capPosts(posts []domain.Post, limit int) []domain.Post {
	if limit > 0 && len(posts) > limit {
		return posts[:limit]
	}
	return posts
}
