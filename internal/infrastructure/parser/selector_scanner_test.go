package parser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"KBeautyBriefing/internal/scanner"
)

const naverPage = `
<ul>
  <li class="bx">
    <a class="title_link" href="/post/1">Korean <b>glass skin</b> routine</a>
    <div class="dsc">Layering toner &amp; essence for a dewy finish</div>
    <span class="date">2025.03.04.</span>
    <span class="writer">beautyblogger</span>
  </li>
  <li class="bx">
    <a class="title_link" href="https://blog.example.com/2">Cushion foundation review</a>
    <span class="date">yesterday</span>
  </li>
  <li class="bx">
    <div class="dsc">no title here</div>
  </li>
</ul>`

func naverSelectors() scanner.Selectors {
	return scanner.Selectors{
		Posts:   "li.bx, div.total_wrap, div.thumb",
		Title:   "a.title_link, h3.title, a.link_tit",
		Content: "div.dsc, div.content, p.content",
		Date:    "span.date, time, span.time",
		Author:  "span.author, a.author, span.writer",
		Link:    "a.title_link, a.link_tit, a",
	}
}

func TestParsePost(t *testing.T) {
	t.Parallel()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(naverPage))
	if err != nil {
		t.Fatalf("new document: %v", err)
	}

	req := scanner.Request{SourceName: "naver_beauty", Selectors: naverSelectors()}
	posts := extractPosts(doc, req, "https://search.naver.com/search.naver?where=view")
	if len(posts) != 2 {
		t.Fatalf("expected 2 posts, got %d", len(posts))
	}

	first := posts[0]
	if first.Title != "Korean glass skin routine" {
		t.Fatalf("unexpected title: %q", first.Title)
	}
	if first.Content != "Layering toner & essence for a dewy finish" {
		t.Fatalf("unexpected content: %q", first.Content)
	}
	if first.URL != "https://search.naver.com/post/1" {
		t.Fatalf("unexpected url: %q", first.URL)
	}
	if first.Author != "beautyblogger" || first.Source != "naver_beauty" {
		t.Fatalf("unexpected provenance: %+v", first)
	}
	wantDate := time.Date(2025, time.March, 4, 0, 0, 0, 0, time.UTC)
	if first.PublishedAt == nil || !first.PublishedAt.Equal(wantDate) {
		t.Fatalf("unexpected date: %v", first.PublishedAt)
	}

	second := posts[1]
	if second.Content != second.Title {
		t.Fatalf("missing content should fall back to title, got %q", second.Content)
	}
	if second.PublishedAt != nil {
		t.Fatalf("unparseable date should be nil, got %v", second.PublishedAt)
	}
}

func TestSelectorScannerScan(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.Header.Get("User-Agent") != "test-agent" {
			t.Errorf("unexpected user agent %q", r.Header.Get("User-Agent"))
		}
		if r.URL.Path == "/broken" {
			http.Error(w, "nope", http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(naverPage))
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), FetcherConfig{UserAgent: "test-agent"})
	sc := NewSelectorScanner(fetcher, nil)

	req := scanner.Request{
		SourceName: "naver_beauty",
		URLs:       []string{server.URL + "/broken", server.URL + "/a", server.URL + "/b"},
		Selectors:  naverSelectors(),
		MaxPosts:   10,
	}

	posts, err := sc.Scan(context.Background(), req)
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	// /a and /b serve the same page, so the second copy is dropped as duplicates.
	if len(posts) != 2 {
		t.Fatalf("expected 2 unique posts, got %d", len(posts))
	}
	if got := hits.Load(); got != 3 {
		t.Fatalf("expected 3 requests, got %d", got)
	}
}

func TestSelectorScannerHonoursMaxPosts(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(naverPage))
	}))
	defer server.Close()

	sc := NewSelectorScanner(NewFetcher(server.Client(), FetcherConfig{}), nil)
	posts, err := sc.Scan(context.Background(), scanner.Request{
		SourceName: "naver_beauty",
		URLs:       []string{server.URL},
		Selectors:  naverSelectors(),
		MaxPosts:   1,
	})
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	if len(posts) != 1 {
		t.Fatalf("expected cap of 1, got %d", len(posts))
	}
}

func TestSelectorScannerAllURLsFail(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	sc := NewSelectorScanner(NewFetcher(server.Client(), FetcherConfig{}), nil)
	_, err := sc.Scan(context.Background(), scanner.Request{
		SourceName: "naver_beauty",
		URLs:       []string{server.URL + "/1", server.URL + "/2"},
		Selectors:  naverSelectors(),
	})
	if err == nil || !strings.Contains(err.Error(), "503") {
		t.Fatalf("expected joined status error, got %v", err)
	}
}

func TestSelectorScannerValidatesRequest(t *testing.T) {
	t.Parallel()

	sc := NewSelectorScanner(nil, nil)
	if _, err := sc.Scan(context.Background(), scanner.Request{SourceName: "x", Selectors: naverSelectors()}); err == nil {
		t.Fatalf("expected error without urls")
	}
	if _, err := sc.Scan(context.Background(), scanner.Request{SourceName: "x", URLs: []string{"http://example.com"}}); err == nil {
		t.Fatalf("expected error without post selector")
	}
}

func TestAttributeSelectors(t *testing.T) {
	t.Parallel()

	page := `<article><a href="/p/abc"><img alt="Cica cream haul #kbeauty" src="x.jpg"></a></article>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		t.Fatalf("new document: %v", err)
	}

	req := scanner.Request{
		SourceName: "instagram_beauty",
		Selectors:  scanner.Selectors{Posts: "article a", Title: "img", Content: "img", Link: "a"},
		Options:    map[string]string{"titleAttr": "alt", "contentAttr": "alt"},
	}
	posts := extractPosts(doc, req, "https://www.instagram.com/explore/tags/kbeauty/")
	if len(posts) != 1 {
		t.Fatalf("expected 1 post, got %d", len(posts))
	}
	if posts[0].Title != "Cica cream haul #kbeauty" || posts[0].URL != "https://www.instagram.com/p/abc" {
		t.Fatalf("unexpected post: %+v", posts[0])
	}
}
