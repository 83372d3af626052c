package notion

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"KBeautyBriefing/internal/domain"
	"KBeautyBriefing/internal/logging"
	"KBeautyBriefing/internal/ports"
)

// Sink creates one briefing page and, optionally, one page per trend.
type Sink struct {
	client     *Client
	databaseID string
	trendPages bool
	now        func() time.Time
	logger     *slog.Logger
}

var _ ports.Sink = (*Sink)(nil)

// NewSink builds the "notion" sink.
func NewSink(client *Client, databaseID string, trendPages bool, logger *slog.Logger) *Sink {
	return &Sink{
		client:     client,
		databaseID: databaseID,
		trendPages: trendPages,
		now:        time.Now,
		logger:     logging.OrDiscard(logger),
	}
}

// Name implements ports.Sink.
func (s *Sink) Name() string { return "notion" }

// Write publishes b. The briefing page must succeed; trend page failures are reported together.
func (s *Sink) Write(ctx context.Context, b domain.Briefing) error {
	page, err := s.client.CreatePage(ctx, s.briefingPage(b))
	if err != nil {
		return fmt.Errorf("create briefing page: %w", err)
	}
	s.logger.Info("notion briefing page created", "briefing_id", b.ID, "url", page.URL)

	if !s.trendPages {
		return nil
	}

	failed := 0
	var lastErr error
	for _, trend := range b.TrendAnalysis.Trends {
		if _, err := s.client.CreatePage(ctx, s.trendPage(trend)); err != nil {
			failed++
			lastErr = err
			s.logger.Warn("notion trend page failed", "trend", trend.Name, "error", err)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d trend pages failed: %w", failed, len(b.TrendAnalysis.Trends), lastErr)
	}
	return nil
}

func (s *Sink) briefingPage(b domain.Briefing) Page {
	sr := b.SynthesisResults
	children := []Block{
		heading(1, "Executive Summary"),
		paragraph(sr.ExecutiveSummary),
		heading(2, "Priority Trends"),
	}
	for _, p := range sr.PriorityTrends {
		children = append(children,
			heading(3, fmt.Sprintf("%d. %s", p.Rank, p.TrendName)),
			paragraph("Business Impact: "+label(string(p.BusinessImpact))),
			paragraph(p.Reasoning),
		)
		for _, item := range p.ActionItems {
			children = append(children, bullet(item))
		}
	}

	return Page{
		Parent: Parent{DatabaseID: s.databaseID},
		Properties: map[string]any{
			"Title":             titleProp("K-Beauty Briefing - " + b.Date.Format("2006-01-02")),
			"Date":              dateProp(b.Date),
			"Briefing ID":       textProp(b.ID),
			"Posts Analyzed":    numberProp(float64(b.ScrapedPostsCount)),
			"Trends Identified": numberProp(float64(len(b.TrendAnalysis.Trends))),
			"Priority Trends":   numberProp(float64(len(sr.PriorityTrends))),
		},
		Children: children,
	}
}

func (s *Sink) trendPage(t domain.Trend) Page {
	children := []Block{
		heading(2, "Trend Description"),
		paragraph(t.Description),
	}
	if len(t.Keywords) > 0 {
		children = append(children, heading(2, "Keywords"))
		for _, k := range t.Keywords {
			children = append(children, bullet(k))
		}
	}

	return Page{
		Parent: Parent{DatabaseID: s.databaseID},
		Properties: map[string]any{
			"Name":            titleProp(t.Name),
			"Category":        selectProp(label(string(t.Category))),
			"Confidence":      numberProp(t.Confidence),
			"Business Impact": selectProp(label(string(t.BusinessImpact))),
			"Status":          selectProp("Active"),
			"Last Updated":    dateProp(s.now()),
		},
		Children: children,
	}
}

func label(v string) string {
	return cases.Title(language.English).String(v)
}
