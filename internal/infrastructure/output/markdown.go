package output

import (
	"context"
	"fmt"
	"strings"
	"text/template"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"KBeautyBriefing/internal/domain"
	"KBeautyBriefing/internal/ports"
)

const markdownTemplate = `# K-Beauty Daily Trend Briefing
**Date:** {{.Date.Format "January 02, 2006"}}
**Briefing ID:** {{.ID}}
**Posts Analyzed:** {{.ScrapedPostsCount}}
{{if .Degraded}}
> Note: part of the analysis could not be completed, so this briefing may be incomplete.
{{end}}
## Executive Summary
{{.SynthesisResults.ExecutiveSummary}}

## Priority Trends
{{range .SynthesisResults.PriorityTrends}}
### {{.Rank}}. {{.TrendName}}
**Business Impact:** {{title .BusinessImpact}}
**Reasoning:** {{.Reasoning}}

**Action Items:**
{{range .ActionItems}}- {{.}}
{{end}}{{end}}
## Market Opportunities
{{range .SynthesisResults.MarketOpportunities}}
### {{.Name}}
**Description:** {{.Description}}
**Potential Value:** {{.PotentialValue}}
**Time Horizon:** {{.TimeHorizon}}

**Action Items:**
{{range .ActionItems}}- {{.}}
{{end}}{{end}}
## Risk Factors
{{range .SynthesisResults.RiskFactors}}
### {{.Name}}
**Severity:** {{title .Severity}}
**Description:** {{.Description}}

**Mitigation Strategies:**
{{range .MitigationStrategies}}- {{.}}
{{end}}{{end}}
## Trend Analysis
**Total Trends Identified:** {{len .TrendAnalysis.Trends}}
**Confidence Score:** {{printf "%.2f" .TrendAnalysis.ConfidenceScore}}

### Identified Trends
{{range .TrendAnalysis.Trends}}
#### {{.Name}}
**Category:** {{title .Category}}
**Confidence:** {{printf "%.2f" .Confidence}}
**Business Impact:** {{title .BusinessImpact}}
**Description:** {{.Description}}

**Keywords:** {{join .Keywords ", "}}
{{end}}`

var markdownTmpl = template.Must(template.New("briefing").Funcs(template.FuncMap{
	"title": titleCase,
	"join":  strings.Join,
}).Parse(markdownTemplate))

// titleCase renders enum-like values ("high", "skin care") as labels.
func titleCase(v any) string {
	return cases.Title(language.English).String(fmt.Sprint(v))
}

// RenderMarkdown formats a briefing as the human-readable report.
func RenderMarkdown(b domain.Briefing) (string, error) {
	var sb strings.Builder
	if err := markdownTmpl.Execute(&sb, b); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return sb.String(), nil
}

// MarkdownFileName is the report file for b: one per calendar day.
func MarkdownFileName(b domain.Briefing) string {
	return filePrefix + b.Date.Format("20060102") + ".md"
}

// MarkdownSink writes the report into the file store.
type MarkdownSink struct {
	store *FileStore
}

var _ ports.Sink = (*MarkdownSink)(nil)

// NewMarkdownSink builds the "markdown" sink.
func NewMarkdownSink(store *FileStore) *MarkdownSink {
	return &MarkdownSink{store: store}
}

// Name implements ports.Sink.
func (s *MarkdownSink) Name() string { return "markdown" }

// Write renders and stores the report.
func (s *MarkdownSink) Write(ctx context.Context, b domain.Briefing) error {
	body, err := RenderMarkdown(b)
	if err != nil {
		return err
	}
	return s.store.WriteFile(ctx, MarkdownFileName(b), []byte(body))
}
