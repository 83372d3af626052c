package usecase

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"KBeautyBriefing/internal/domain"
)

func TestAssembleIsDeterministic(t *testing.T) {
	t.Parallel()

	analysis := domain.TrendAnalysis{Trends: []domain.Trend{{Name: "Glass Skin"}}, TotalPostsAnalyzed: 2}
	synthesis := domain.SynthesisResults{ExecutiveSummary: "summary"}

	a := NewAssembler(fixedClock())
	first := a.Assemble(2, analysis, synthesis, false)
	second := a.Assemble(2, analysis, synthesis, false)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("assemble not deterministic (-first +second):\n%s", diff)
	}
	if first.ID != "briefing_20250304_060000" {
		t.Fatalf("unexpected id %q", first.ID)
	}
	if first.ScrapedPostsCount != 2 || first.Degraded {
		t.Fatalf("unexpected briefing: %+v", first)
	}
}

func TestAssembleWithID(t *testing.T) {
	t.Parallel()

	a := NewAssembler(fixedClock())
	b := a.AssembleWithID("manual_1", 0, domain.TrendAnalysis{}, domain.SynthesisResults{}, true)
	if b.ID != "manual_1" || !b.Degraded {
		t.Fatalf("unexpected briefing: %+v", b)
	}

	generated := a.AssembleWithID("", 0, domain.TrendAnalysis{}, domain.SynthesisResults{}, false)
	if generated.ID != "briefing_20250304_060000" {
		t.Fatalf("empty id should fall back to generated, got %q", generated.ID)
	}
}
