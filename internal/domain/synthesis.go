package domain

import "time"

// FailedSummary is the executive summary of a synthesis that could not be produced.
const FailedSummary = "Analysis failed"

// PriorityTrend is a trend the analyst ranked for action. Rank is 1-based.
type PriorityTrend struct {
	Rank           int            `json:"rank"`
	TrendName      string         `json:"trend_name"`
	Reasoning      string         `json:"reasoning"`
	BusinessImpact BusinessImpact `json:"business_impact"`
	ActionItems    []string       `json:"action_items"`
}

// MarketOpportunity is a free-text opportunity suggested by the analyst.
type MarketOpportunity struct {
	Name           string   `json:"opportunity_name"`
	Description    string   `json:"description"`
	PotentialValue string   `json:"potential_value"`
	TimeHorizon    string   `json:"time_horizon"`
	ActionItems    []string `json:"action_items"`
}

// RiskFactor is a risk with free-text severity.
type RiskFactor struct {
	Name                 string   `json:"risk_name"`
	Description          string   `json:"description"`
	Severity             string   `json:"severity"`
	MitigationStrategies []string `json:"mitigation_strategies"`
}

// SynthesisResults is the synthesizer output for one run.
type SynthesisResults struct {
	PriorityTrends      []PriorityTrend     `json:"priority_trends"`
	MarketOpportunities []MarketOpportunity `json:"market_opportunities"`
	RiskFactors         []RiskFactor        `json:"risk_factors"`
	ExecutiveSummary    string              `json:"executive_summary"`
	SynthesisDate       time.Time           `json:"synthesis_date"`
}
