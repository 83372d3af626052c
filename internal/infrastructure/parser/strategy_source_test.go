package parser

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"KBeautyBriefing/internal/config"
	"KBeautyBriefing/internal/domain"
	"KBeautyBriefing/internal/scanner"
)

type stubScanner struct {
	name string
	scan func(req scanner.Request) ([]domain.Post, error)
}

func (s stubScanner) Name() string { return s.name }

func (s stubScanner) Scan(_ context.Context, req scanner.Request) ([]domain.Post, error) {
	return s.scan(req)
}

func postsFor(source string, n int) []domain.Post {
	posts := make([]domain.Post, n)
	for i := range posts {
		posts[i] = domain.Post{Title: fmt.Sprintf("%s-%d", source, i), Content: "korean skincare"}
	}
	return posts
}

func TestStrategySourceAggregatesInConfigOrder(t *testing.T) {
	t.Parallel()

	reg := scanner.NewRegistry()
	reg.Register(stubScanner{name: "fake", scan: func(req scanner.Request) ([]domain.Post, error) {
		if req.SourceName == "broken" {
			return nil, errors.New("upstream down")
		}
		return postsFor(req.SourceName, 5), nil
	}})

	sources := []config.SourceConfig{
		{Name: "first", Scanner: "fake"},
		{Name: "broken", Scanner: "fake"},
		{Name: "unknown", Scanner: "missing"},
		{Name: "second", Scanner: "fake", MaxPosts: 2},
	}
	src := NewStrategySource(reg, sources, config.ScrapingConfig{MaxPostsPerSource: 3, Concurrency: 4}, nil)

	posts, err := src.FetchPosts(context.Background())
	if err != nil {
		t.Fatalf("FetchPosts: %v", err)
	}

	want := []string{"first-0", "first-1", "first-2", "second-0", "second-1"}
	if len(posts) != len(want) {
		t.Fatalf("expected %d posts, got %d", len(want), len(posts))
	}
	for i, title := range want {
		if posts[i].Title != title {
			t.Fatalf("post %d: got %q, want %q", i, posts[i].Title, title)
		}
		if posts[i].Source == "" {
			t.Fatalf("post %d lost its source", i)
		}
	}
}

func TestStrategySourcePassesRequestFields(t *testing.T) {
	t.Parallel()

	var captured scanner.Request
	reg := scanner.NewRegistry()
	reg.Register(stubScanner{name: "selector", scan: func(req scanner.Request) ([]domain.Post, error) {
		captured = req
		return nil, nil
	}})

	sources := []config.SourceConfig{{
		Name:      "naver_beauty",
		Scanner:   "selector",
		URLs:      []string{"https://example.com"},
		Selectors: config.SelectorConfig{Posts: "li.bx", Title: "a"},
		Options:   map[string]string{"titleAttr": "title"},
	}}
	src := NewStrategySource(reg, sources, config.ScrapingConfig{MaxPostsPerSource: 50}, nil)

	if _, err := src.FetchPosts(context.Background()); err != nil {
		t.Fatalf("FetchPosts: %v", err)
	}
	if captured.SourceName != "naver_beauty" || captured.MaxPosts != 50 || captured.Selectors.Posts != "li.bx" {
		t.Fatalf("unexpected request: %+v", captured)
	}
	if captured.Option("titleAttr", "") != "title" {
		t.Fatalf("options not forwarded: %+v", captured.Options)
	}
}

func TestStrategySourceCancelled(t *testing.T) {
	t.Parallel()

	reg := scanner.NewRegistry()
	reg.Register(stubScanner{name: "fake", scan: func(scanner.Request) ([]domain.Post, error) {
		return postsFor("x", 1), nil
	}})
	src := NewStrategySource(reg, []config.SourceConfig{{Name: "x", Scanner: "fake"}}, config.ScrapingConfig{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := src.FetchPosts(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestStrategySourceWithoutRegistry(t *testing.T) {
	t.Parallel()

	src := NewStrategySource(nil, nil, config.ScrapingConfig{}, nil)
	if _, err := src.FetchPosts(context.Background()); err == nil {
		t.Fatalf("expected error without registry")
	}
}
