package usecase

import (
	"fmt"
	"strings"
	"text/template"
	"time"
	"unicode/utf8"

	"KBeautyBriefing/internal/domain"
)

const (
	trendSystemMessage     = "You are a K-beauty trend researcher. Analyze the content and return only valid JSON."
	synthesisSystemMessage = "You are a K-beauty market analyst. Analyze the trends and return only valid JSON."

	// MaxPostsInPrompt bounds how many posts reach the extraction prompt.
	MaxPostsInPrompt = 20
	postExcerptRunes = 200
)

// DefaultTrendPrompt is rendered with a trendPromptData value.
const DefaultTrendPrompt = `You are a K-beauty trend researcher analyzing social media content to identify emerging trends.

Analyze the provided content and identify trends with the following criteria:
- Relevance to K-beauty market
- Growth potential
- Consumer interest
- Innovation level

Output format: JSON with a "trends" array containing trend_name, description, confidence (0-1),
category (skincare, makeup, hair, fragrance, tools, ingredients, packaging, sustainability, technology, general),
business_impact (low, medium, high, critical), sources and keywords, plus an overall "confidence_score".

Content to analyze:
{{range $i, $p := .Posts}}Post {{inc $i}}:
Title: {{$p.Title}}
Content: {{excerpt $p.Content}}
Source: {{$p.Source}}
Date: {{date $p.PublishedAt}}
---
{{end}}`

// DefaultSynthesisPrompt is rendered with a synthesisPromptData value.
const DefaultSynthesisPrompt = `You are a K-beauty market analyst synthesizing trend data into actionable insights.

Analyze the trends and provide:
- Priority trends for immediate action
- Market opportunities
- Risk factors
- Executive summary

Output format: JSON with "priority_trends" (trend_name, reasoning, business_impact, action_items),
"market_opportunities" (opportunity_name, description, potential_value, time_horizon, action_items),
"risk_factors" (risk_name, description, severity, mitigation_strategies) and "executive_summary".

Trend Analysis:
{{range .Trends}}Trend: {{.Name}}
Description: {{.Description}}
Confidence: {{.Confidence}}
Category: {{.Category}}
Business Impact: {{.BusinessImpact}}
---
{{else}}No trends were identified in today's content.
{{end}}`

type trendPromptData struct {
	Posts []domain.Post
}

type synthesisPromptData struct {
	Trends []domain.Trend
}

var promptFuncs = template.FuncMap{
	"inc":     func(i int) int { return i + 1 },
	"excerpt": excerpt,
	"date": func(t *time.Time) string {
		if t == nil {
			return "unknown"
		}
		return t.Format(time.RFC3339)
	},
}

func parsePrompt(name, text, fallback string) (*template.Template, error) {
	if strings.TrimSpace(text) == "" {
		text = fallback
	}
	tmpl, err := template.New(name).Funcs(promptFuncs).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse %s prompt: %w", name, err)
	}
	return tmpl, nil
}

func renderPrompt(tmpl *template.Template, data any) (string, error) {
	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", tmpl.Name(), err)
	}
	return sb.String(), nil
}

// excerpt keeps the first postExcerptRunes runes and always appends an ellipsis.
func excerpt(content string) string {
	if utf8.RuneCountInString(content) <= postExcerptRunes {
		return content + "..."
	}
	runes := []rune(content)
	return string(runes[:postExcerptRunes]) + "..."
}
