package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func sampleBriefing() Briefing {
	at := time.Date(2025, time.March, 4, 6, 0, 0, 0, time.UTC)
	return Briefing{
		ID:                NewBriefingID(at),
		Date:              at,
		ScrapedPostsCount: 12,
		TrendAnalysis: TrendAnalysis{
			Trends: []Trend{
				{
					Name:           "Glass Skin",
					Description:    "Dewy, translucent finish",
					Confidence:     0.9,
					Category:       CategorySkincare,
					BusinessImpact: ImpactHigh,
					Sources:        []string{"naver_beauty"},
					Keywords:       []string{"glass skin", "toner"},
				},
				{
					Name:           "Refill Pouches",
					Confidence:     0.4,
					Category:       CategorySustainability,
					BusinessImpact: ImpactCritical,
					Sources:        []string{},
					Keywords:       []string{},
				},
			},
			AnalysisDate:       at,
			TotalPostsAnalyzed: 9,
			ConfidenceScore:    0.75,
		},
		SynthesisResults: SynthesisResults{
			PriorityTrends: []PriorityTrend{
				{Rank: 1, TrendName: "Glass Skin", Reasoning: "strong signal", BusinessImpact: ImpactHigh, ActionItems: []string{"stock essences"}},
			},
			MarketOpportunities: []MarketOpportunity{
				{Name: "Essence bundles", Description: "bundle", PotentialValue: "high", TimeHorizon: "3 months", ActionItems: []string{"pilot"}},
			},
			RiskFactors: []RiskFactor{
				{Name: "Fad fatigue", Description: "short cycle", Severity: "medium", MitigationStrategies: []string{"small batches"}},
			},
			ExecutiveSummary: "Hydration keeps leading.",
			SynthesisDate:    at.Add(time.Minute),
		},
		Degraded: true,
	}
}

func TestBriefingJSONRoundTrip(t *testing.T) {
	t.Parallel()

	want := sampleBriefing()
	raw, err := json.Marshal(want)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got Briefing
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestBriefingJSONUsesStringEnumsAndISODates(t *testing.T) {
	t.Parallel()

	raw, err := json.Marshal(sampleBriefing())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var generic map[string]any
	if err := json.Unmarshal(raw, &generic); err != nil {
		t.Fatalf("unmarshal generic: %v", err)
	}

	if generic["date"] != "2025-03-04T06:00:00Z" {
		t.Fatalf("unexpected date encoding: %v", generic["date"])
	}
	if generic["briefing_id"] != "briefing_20250304_060000" {
		t.Fatalf("unexpected id: %v", generic["briefing_id"])
	}

	analysis := generic["trend_analysis"].(map[string]any)
	first := analysis["trends"].([]any)[0].(map[string]any)
	if first["category"] != "skincare" || first["business_impact"] != "high" {
		t.Fatalf("enums not encoded as strings: %v", first)
	}
}

func TestParseCategory(t *testing.T) {
	t.Parallel()

	cases := map[string]Category{
		"Skincare":   CategorySkincare,
		"SKIN_CARE":  CategorySkincare,
		" makeup ":   CategoryMakeup,
		"technology": CategoryTechnology,
		"wellness":   CategoryGeneral,
		"":           CategoryGeneral,
	}
	for in, want := range cases {
		if got := ParseCategory(in); got != want {
			t.Fatalf("ParseCategory(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseBusinessImpact(t *testing.T) {
	t.Parallel()

	if got := ParseBusinessImpact("HIGH"); got != ImpactHigh {
		t.Fatalf("expected high, got %q", got)
	}
	if got := ParseBusinessImpact("critical"); got != ImpactCritical {
		t.Fatalf("expected critical, got %q", got)
	}
	if got := ParseBusinessImpact("huge"); got != ImpactLow {
		t.Fatalf("expected low fallback, got %q", got)
	}
}

func TestClampConfidence(t *testing.T) {
	t.Parallel()

	if ClampConfidence(-0.2) != 0 || ClampConfidence(1.7) != 1 || ClampConfidence(0.42) != 0.42 {
		t.Fatalf("clamp out of range")
	}
}
