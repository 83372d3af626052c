package telegram

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"KBeautyBriefing/internal/domain"
	"KBeautyBriefing/internal/ports"
)

// maxMessageRunes is the Bot API limit for one message.
const maxMessageRunes = 4096

// maxDigestTrends caps how many priority trends the digest lists.
const maxDigestTrends = 3

// BuildDigest formats the short chat version of a briefing.
func BuildDigest(b domain.Briefing) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "K-Beauty Daily Trend Briefing (%s)\n", b.Date.Format("2006-01-02"))
	fmt.Fprintf(&sb, "Posts analyzed: %d, trends: %d\n", b.ScrapedPostsCount, len(b.TrendAnalysis.Trends))
	if b.Degraded {
		sb.WriteString("Note: analysis incomplete\n")
	}

	sb.WriteString("\n")
	sb.WriteString(b.SynthesisResults.ExecutiveSummary)
	sb.WriteString("\n")

	priorities := b.SynthesisResults.PriorityTrends
	if len(priorities) > maxDigestTrends {
		priorities = priorities[:maxDigestTrends]
	}
	if len(priorities) > 0 {
		sb.WriteString("\nTop priorities:\n")
	}
	for _, p := range priorities {
		fmt.Fprintf(&sb, "%d. %s (%s impact)\n", p.Rank, p.TrendName, p.BusinessImpact)
		if len(p.ActionItems) > 0 {
			fmt.Fprintf(&sb, "   - %s\n", p.ActionItems[0])
		}
	}

	fmt.Fprintf(&sb, "\nBriefing ID: %s", b.ID)
	return truncate(sb.String(), maxMessageRunes)
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit-1]) + "…"
}

// Sink posts the digest through a notifier.
type Sink struct {
	notifier ports.Notifier
}

var _ ports.Sink = (*Sink)(nil)

// NewSink builds the "telegram" sink.
func NewSink(notifier ports.Notifier) *Sink {
	return &Sink{notifier: notifier}
}

// Name implements ports.Sink.
func (s *Sink) Name() string { return "telegram" }

// Write implements ports.Sink.
func (s *Sink) Write(ctx context.Context, b domain.Briefing) error {
	return s.notifier.PublishDigest(ctx, BuildDigest(b))
}
