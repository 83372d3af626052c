package notion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"KBeautyBriefing/internal/config"
	"KBeautyBriefing/internal/domain"
)

type capturedPage struct {
	Parent     Parent                     `json:"parent"`
	Properties map[string]json.RawMessage `json:"properties"`
	Children   []map[string]any           `json:"children"`
}

type notionServer struct {
	mu       sync.Mutex
	pages    []capturedPage
	appended []int
	failFrom int
}

func (s *notionServer) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret_token" || r.Header.Get("Notion-Version") != "2022-06-28" {
			t.Errorf("missing auth headers: %v", r.Header)
		}
		if r.Method == http.MethodPatch && r.URL.Path == "/v1/blocks/page-id/children" {
			var body struct {
				Children []map[string]any `json:"children"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("decode children: %v", err)
			}
			s.mu.Lock()
			s.appended = append(s.appended, len(body.Children))
			s.mu.Unlock()
			_, _ = w.Write([]byte(`{"object":"list","results":[]}`))
			return
		}
		if r.Method != http.MethodPost || r.URL.Path != "/v1/pages" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}

		var page capturedPage
		if err := json.NewDecoder(r.Body).Decode(&page); err != nil {
			t.Errorf("decode page: %v", err)
		}

		s.mu.Lock()
		s.pages = append(s.pages, page)
		n := len(s.pages)
		s.mu.Unlock()

		if s.failFrom > 0 && n >= s.failFrom {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"object":"error","status":400,"code":"validation_error","message":"Category is not a property that exists."}`))
			return
		}
		_, _ = w.Write([]byte(`{"object":"page","id":"page-id","url":"https://www.notion.so/page-id"}`))
	}
}

func (s *notionServer) captured() []capturedPage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]capturedPage(nil), s.pages...)
}

func newTestSink(t *testing.T, srv *notionServer, trendPages bool) *Sink {
	t.Helper()
	server := httptest.NewServer(srv.handler(t))
	t.Cleanup(server.Close)

	client := NewClient(config.NotionConfig{Token: "secret_token", Endpoint: server.URL + "/v1/"}, server.Client())
	sink := NewSink(client, "db-123", trendPages, nil)
	sink.now = func() time.Time { return time.Date(2025, time.March, 4, 7, 0, 0, 0, time.UTC) }
	return sink
}

func briefing() domain.Briefing {
	at := time.Date(2025, time.March, 4, 6, 0, 0, 0, time.UTC)
	return domain.Briefing{
		ID:                "briefing_20250304_060000",
		Date:              at,
		ScrapedPostsCount: 8,
		TrendAnalysis: domain.TrendAnalysis{Trends: []domain.Trend{
			{Name: "Glass Skin", Description: "dewy", Confidence: 0.9, Category: domain.CategorySkincare, BusinessImpact: domain.ImpactHigh, Keywords: []string{"toner"}},
			{Name: "Refill Pouches", Confidence: 0.5, Category: domain.CategoryPackaging, BusinessImpact: domain.ImpactMedium},
		}},
		SynthesisResults: domain.SynthesisResults{
			PriorityTrends: []domain.PriorityTrend{{Rank: 1, TrendName: "Glass Skin", Reasoning: "strong", BusinessImpact: domain.ImpactHigh, ActionItems: []string{"restock"}}},
			ExecutiveSummary: "Hydration keeps leading.",
		},
	}
}

func TestSinkCreatesBriefingAndTrendPages(t *testing.T) {
	t.Parallel()

	srv := &notionServer{}
	sink := newTestSink(t, srv, true)

	if err := sink.Write(context.Background(), briefing()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	pages := srv.captured()
	if len(pages) != 3 {
		t.Fatalf("expected briefing page plus 2 trend pages, got %d", len(pages))
	}

	page := pages[0]
	if page.Parent.DatabaseID != "db-123" {
		t.Fatalf("unexpected parent: %+v", page.Parent)
	}
	for _, prop := range []string{"Title", "Date", "Briefing ID", "Posts Analyzed", "Trends Identified", "Priority Trends"} {
		if _, ok := page.Properties[prop]; !ok {
			t.Fatalf("briefing page missing property %q", prop)
		}
	}
	if !strings.Contains(string(page.Properties["Title"]), "K-Beauty Briefing - 2025-03-04") {
		t.Fatalf("unexpected title: %s", page.Properties["Title"])
	}
	if string(page.Properties["Trends Identified"]) != `{"number":2}` {
		t.Fatalf("unexpected trend count: %s", page.Properties["Trends Identified"])
	}
	// summary heading, summary, priority heading, then heading/impact/reasoning/action for the one trend
	if len(page.Children) != 7 {
		t.Fatalf("expected 7 child blocks, got %d", len(page.Children))
	}

	trend := pages[1]
	if !strings.Contains(string(trend.Properties["Category"]), `"Skincare"`) ||
		!strings.Contains(string(trend.Properties["Business Impact"]), `"High"`) ||
		!strings.Contains(string(trend.Properties["Status"]), `"Active"`) ||
		!strings.Contains(string(trend.Properties["Last Updated"]), "2025-03-04T07:00:00Z") {
		t.Fatalf("unexpected trend properties: %v", trend.Properties)
	}
}

func TestSinkAppendsBlocksBeyondLimit(t *testing.T) {
	t.Parallel()

	b := briefing()
	b.SynthesisResults.PriorityTrends = nil
	for i := 1; i <= 30; i++ {
		b.SynthesisResults.PriorityTrends = append(b.SynthesisResults.PriorityTrends, domain.PriorityTrend{
			Rank:           i,
			TrendName:      fmt.Sprintf("Trend %d", i),
			BusinessImpact: domain.ImpactMedium,
			ActionItems:    []string{"brief buyers", "sample stock", "watch pricing"},
		})
	}

	srv := &notionServer{}
	if err := newTestSink(t, srv, false).Write(context.Background(), b); err != nil {
		t.Fatalf("Write: %v", err)
	}

	// 3 header blocks plus 6 per trend.
	pages := srv.captured()
	if len(pages) != 1 || len(pages[0].Children) != MaxChildren {
		t.Fatalf("create request should carry %d blocks, got %d", MaxChildren, len(pages[0].Children))
	}
	srv.mu.Lock()
	defer srv.mu.Unlock()
	if len(srv.appended) != 1 || srv.appended[0] != 183-MaxChildren {
		t.Fatalf("expected one append of %d blocks, got %v", 183-MaxChildren, srv.appended)
	}
}

func TestSinkWithoutTrendPages(t *testing.T) {
	t.Parallel()

	srv := &notionServer{}
	if err := newTestSink(t, srv, false).Write(context.Background(), briefing()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got := len(srv.captured()); got != 1 {
		t.Fatalf("expected only the briefing page, got %d", got)
	}
}

func TestSinkReportsAPIError(t *testing.T) {
	t.Parallel()

	srv := &notionServer{failFrom: 1}
	err := newTestSink(t, srv, true).Write(context.Background(), briefing())

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusBadRequest || apiErr.Code != "validation_error" {
		t.Fatalf("unexpected api error: %+v", apiErr)
	}
	if len(srv.captured()) != 1 {
		t.Fatalf("trend pages must not be attempted after the briefing page fails")
	}
}

func TestSinkTrendPageFailure(t *testing.T) {
	t.Parallel()

	srv := &notionServer{failFrom: 3}
	err := newTestSink(t, srv, true).Write(context.Background(), briefing())
	if err == nil || !strings.Contains(err.Error(), "1 of 2 trend pages failed") {
		t.Fatalf("expected partial trend failure, got %v", err)
	}
}

func TestRichTextIsTruncated(t *testing.T) {
	t.Parallel()

	rt := richText(strings.Repeat("가", maxTextRunes+10))
	content := rt[0]["text"].(map[string]any)["content"].(string)
	if got := len([]rune(content)); got != maxTextRunes {
		t.Fatalf("expected %d runes, got %d", maxTextRunes, got)
	}
}
