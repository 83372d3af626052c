package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"text/template"
	"time"

	"KBeautyBriefing/internal/domain"
	"KBeautyBriefing/internal/llmjson"
	"KBeautyBriefing/internal/logging"
	"KBeautyBriefing/internal/ports"
)

// Synthesizer turns a trend analysis into priorities, opportunities and risks.
type Synthesizer struct {
	model  ports.LanguageModel
	prompt *template.Template
	cfg    StepConfig
	logger *slog.Logger
}

// NewSynthesizer validates the prompt template and builds the synthesizer.
func NewSynthesizer(model ports.LanguageModel, cfg StepConfig, logger *slog.Logger) (*Synthesizer, error) {
	prompt, err := parsePrompt("synthesis", cfg.Prompt, DefaultSynthesisPrompt)
	if err != nil {
		return nil, err
	}
	return &Synthesizer{model: model, prompt: prompt, cfg: cfg, logger: logging.OrDiscard(logger)}, nil
}

type synthesisPayload struct {
	PriorityTrends []struct {
		TrendName      string   `json:"trend_name"`
		Reasoning      string   `json:"reasoning"`
		BusinessImpact string   `json:"business_impact"`
		ActionItems    []string `json:"action_items"`
	} `json:"priority_trends"`
	MarketOpportunities []struct {
		Name           string   `json:"opportunity_name"`
		Description    string   `json:"description"`
		PotentialValue string   `json:"potential_value"`
		TimeHorizon    string   `json:"time_horizon"`
		ActionItems    []string `json:"action_items"`
	} `json:"market_opportunities"`
	RiskFactors []struct {
		Name                 string   `json:"risk_name"`
		Description          string   `json:"description"`
		Severity             string   `json:"severity"`
		MitigationStrategies []string `json:"mitigation_strategies"`
	} `json:"risk_factors"`
	ExecutiveSummary string `json:"executive_summary"`
}

// Synthesize mirrors Extract: the result is always well formed and a non-nil error
// means the fallback ("Analysis failed") was returned.
func (s *Synthesizer) Synthesize(ctx context.Context, analysis domain.TrendAnalysis) (domain.SynthesisResults, error) {
	s.logger.Info("synthesizing insights", "trends", len(analysis.Trends))

	prompt, err := renderPrompt(s.prompt, synthesisPromptData{Trends: analysis.Trends})
	if err != nil {
		return failedSynthesis(s.cfg.now()), err
	}

	text, err := complete(ctx, s.model, s.cfg.Timeout, synthesisSystemMessage, prompt)
	if err != nil {
		return failedSynthesis(s.cfg.now()), fmt.Errorf("synthesis: %w", err)
	}

	var payload synthesisPayload
	if err := llmjson.Decode(text, &payload); err != nil {
		return failedSynthesis(s.cfg.now()), fmt.Errorf("synthesis: %w", err)
	}

	out := emptySynthesis(s.cfg.now())
	out.ExecutiveSummary = payload.ExecutiveSummary
	for i, p := range payload.PriorityTrends {
		out.PriorityTrends = append(out.PriorityTrends, domain.PriorityTrend{
			Rank:           i + 1,
			TrendName:      p.TrendName,
			Reasoning:      p.Reasoning,
			BusinessImpact: domain.ParseBusinessImpact(p.BusinessImpact),
			ActionItems:    orEmpty(p.ActionItems),
		})
	}
	for _, o := range payload.MarketOpportunities {
		out.MarketOpportunities = append(out.MarketOpportunities, domain.MarketOpportunity{
			Name:           o.Name,
			Description:    o.Description,
			PotentialValue: o.PotentialValue,
			TimeHorizon:    o.TimeHorizon,
			ActionItems:    orEmpty(o.ActionItems),
		})
	}
	for _, r := range payload.RiskFactors {
		severity := r.Severity
		if severity == "" {
			severity = string(domain.ImpactLow)
		}
		out.RiskFactors = append(out.RiskFactors, domain.RiskFactor{
			Name:                 r.Name,
			Description:          r.Description,
			Severity:             severity,
			MitigationStrategies: orEmpty(r.MitigationStrategies),
		})
	}

	s.logger.Info("synthesis done",
		"priority_trends", len(out.PriorityTrends),
		"opportunities", len(out.MarketOpportunities),
		"risks", len(out.RiskFactors))
	return out, nil
}

func emptySynthesis(at time.Time) domain.SynthesisResults {
	return domain.SynthesisResults{
		PriorityTrends:      []domain.PriorityTrend{},
		MarketOpportunities: []domain.MarketOpportunity{},
		RiskFactors:         []domain.RiskFactor{},
		SynthesisDate:       at,
	}
}

func failedSynthesis(at time.Time) domain.SynthesisResults {
	out := emptySynthesis(at)
	out.ExecutiveSummary = domain.FailedSummary
	return out
}
