package parser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"

	"KBeautyBriefing/internal/domain"
	"KBeautyBriefing/internal/logging"
	"KBeautyBriefing/internal/scanner"
)

// BrowserScanner renders JavaScript-heavy pages (YouTube search, Instagram tags) in headless
// Chrome and then applies the same selector extraction as SelectorScanner.
type BrowserScanner struct {
	userAgent  string
	settle     time.Duration
	pageBudget time.Duration
	logger     *slog.Logger
}

var _ scanner.Scanner = (*BrowserScanner)(nil)

// NewBrowserScanner configures rendering; settle is how long to wait after load for lazy content.
func NewBrowserScanner(userAgent string, settle time.Duration, logger *slog.Logger) *BrowserScanner {
	if settle <= 0 {
		settle = 3 * time.Second
	}
	return &BrowserScanner{
		userAgent:  userAgent,
		settle:     settle,
		pageBudget: 45 * time.Second,
		logger:     logging.OrDiscard(logger),
	}
}

// Name identifies the strategy inside the registry.
func (s *BrowserScanner) Name() string {
	return "browser"
}

// Scan renders every URL in one browser instance.
func (s *BrowserScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.Post, error) {
	if len(req.URLs) == 0 {
		return nil, fmt.Errorf("no urls provided for source %s", req.SourceName)
	}
	if req.Selectors.Posts == "" {
		return nil, fmt.Errorf("source %s has no post selector", req.SourceName)
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
	)
	if s.userAgent != "" {
		opts = append(opts, chromedp.UserAgent(s.userAgent))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	// Allocate the browser without a deadline; per-page timeouts derive from it.
	if err := chromedp.Run(browserCtx); err != nil {
		return nil, fmt.Errorf("start browser for %s: %w", req.SourceName, err)
	}

	var (
		results []domain.Post
		errs    []error
	)
	for _, pageURL := range req.URLs {
		if reachedLimit(results, req.MaxPosts) {
			break
		}
		rendered, err := s.render(browserCtx, pageURL)
		if err != nil {
			s.logger.Warn("page render failed", "source", req.SourceName, "url", pageURL, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", pageURL, err))
			continue
		}
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(rendered))
		if err != nil {
			errs = append(errs, fmt.Errorf("parse %s: %w", pageURL, err))
			continue
		}
		results = append(results, extractPosts(doc, req, pageURL)...)
	}

	if len(results) == 0 && len(errs) == len(req.URLs) {
		return nil, errors.Join(errs...)
	}
	return capPosts(results, req.MaxPosts), nil
}

func (s *BrowserScanner) render(browserCtx context.Context, pageURL string) (string, error) {
	pageCtx, cancel := context.WithTimeout(browserCtx, s.pageBudget)
	defer cancel()

	var html string
	err := chromedp.Run(pageCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(s.settle),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("chromedp: %w", err)
	}
	return html, nil
}
