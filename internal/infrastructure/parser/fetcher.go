package parser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/doyensec/safeurl"
	"golang.org/x/time/rate"
)

const maxBodyBytes = 5 << 20

// FetcherConfig tunes outbound page requests.
type FetcherConfig struct {
	Timeout   time.Duration
	Delay     time.Duration
	UserAgent string
	// SafeFetch routes requests through an SSRF-guarded client that refuses private addresses.
	SafeFetch bool
}

// Fetcher downloads pages politely: one request per Delay per host.
type Fetcher struct {
	client    *http.Client
	userAgent string
	delay     time.Duration

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewFetcher builds a Fetcher; client may be nil to derive one from cfg.
func NewFetcher(client *http.Client, cfg FetcherConfig) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if client == nil {
		client = newHTTPClient(cfg)
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = "KBeautyBriefing/1.0"
	}
	return &Fetcher{
		client:    client,
		userAgent: ua,
		delay:     cfg.Delay,
		limiters:  map[string]*rate.Limiter{},
	}
}

func newHTTPClient(cfg FetcherConfig) *http.Client {
	if !cfg.SafeFetch {
		return &http.Client{Timeout: cfg.Timeout}
	}
	safeCfg := safeurl.GetConfigBuilder().
		SetTimeout(cfg.Timeout).
		SetAllowedSchemes("http", "https").
		SetAllowedPorts(80, 443).
		Build()
	return safeurl.Client(safeCfg).Client
}

// Get returns the response body of pageURL, capped at 5 MiB.
func (f *Fetcher) Get(ctx context.Context, pageURL string) ([]byte, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid url %s: %w", pageURL, err)
	}
	if err := f.limiterFor(parsed.Host).Wait(ctx); err != nil {
		return nil, fmt.Errorf("wait for rate limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept-Language", "ko-KR,ko;q=0.9,en;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned %s", parsed.Host, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// Document fetches pageURL and parses it as HTML.
func (f *Fetcher) Document(ctx context.Context, pageURL string) (*goquery.Document, error) {
	body, err := f.Get(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return doc, nil
}

func (f *Fetcher) limiterFor(host string) *rate.Limiter {
	f.mu.Lock()
	defer f.mu.Unlock()

	if l, ok := f.limiters[host]; ok {
		return l
	}
	limit := rate.Inf
	if f.delay > 0 {
		limit = rate.Every(f.delay)
	}
	l := rate.NewLimiter(limit, 1)
	f.limiters[host] = l
	return l
}
