package parser

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"sync"
	"testing"
	"time"

	"KBeautyBriefing/internal/scanner"
)

func requireChrome(t *testing.T) {
	t.Helper()
	for _, name := range []string{"google-chrome", "google-chrome-stable", "chromium", "chromium-browser", "headless-shell"} {
		if _, err := exec.LookPath(name); err == nil {
			return
		}
	}
	t.Skip("chrome is not installed")
}

func TestBrowserScannerRendersEveryURL(t *testing.T) {
	requireChrome(t)
	t.Parallel()

	var (
		mu   sync.Mutex
		seen = map[string]bool{}
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen[r.URL.Path] = true
		mu.Unlock()
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, `<html><body><ul><li class="bx"><a class="title_link" href="/p%s">Serum drop %s</a></li></ul></body></html>`, r.URL.Path, r.URL.Path)
	}))
	defer server.Close()

	sc := NewBrowserScanner("", 10*time.Millisecond, nil)
	sc.pageBudget = 20 * time.Second

	posts, err := sc.Scan(context.Background(), scanner.Request{
		SourceName: "youtube_beauty",
		URLs:       []string{server.URL + "/a", server.URL + "/b"},
		Selectors:  scanner.Selectors{Posts: "li.bx", Title: "a.title_link", Link: "a.title_link"},
	})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("expected a post from each page, got %d: %+v", len(posts), posts)
	}
	mu.Lock()
	defer mu.Unlock()
	if !seen["/a"] || !seen["/b"] {
		t.Fatalf("both pages should be rendered, saw %v", seen)
	}
}

func TestBrowserScannerValidatesRequest(t *testing.T) {
	t.Parallel()

	sc := NewBrowserScanner("", 0, nil)
	if _, err := sc.Scan(context.Background(), scanner.Request{SourceName: "x", Selectors: scanner.Selectors{Posts: "li"}}); err == nil {
		t.Fatalf("expected error without urls")
	}
	if _, err := sc.Scan(context.Background(), scanner.Request{SourceName: "x", URLs: []string{"http://example.com"}}); err == nil {
		t.Fatalf("expected error without post selector")
	}
}
