package scanner

import (
	"context"
	"testing"

	"KBeautyBriefing/internal/domain"
)

type namedScanner string

func (n namedScanner) Name() string { return string(n) }

func (n namedScanner) Scan(context.Context, Request) ([]domain.Post, error) { return nil, nil }

func TestRegistryResolve(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Register(namedScanner("selector"))
	reg.Register(namedScanner("rss"))

	got, err := reg.Resolve("rss")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.Name() != "rss" {
		t.Fatalf("unexpected scanner %s", got.Name())
	}

	if _, err := reg.Resolve("missing"); err == nil {
		t.Fatalf("expected error for unknown scanner")
	}

	names := reg.Names()
	if len(names) != 2 || names[0] != "rss" || names[1] != "selector" {
		t.Fatalf("unexpected names %v", names)
	}
}

func TestRegistryZeroValue(t *testing.T) {
	t.Parallel()

	var reg Registry
	reg.Register(namedScanner("article"))
	if _, err := reg.Resolve("article"); err != nil {
		t.Fatalf("zero-value registry must accept registrations: %v", err)
	}
}

func TestRequestOption(t *testing.T) {
	t.Parallel()

	req := Request{Options: map[string]string{"titleAttr": "alt", "empty": ""}}
	if req.Option("titleAttr", "") != "alt" {
		t.Fatalf("expected configured option")
	}
	if req.Option("empty", "fallback") != "fallback" || req.Option("missing", "x") != "x" {
		t.Fatalf("expected fallbacks")
	}
}
