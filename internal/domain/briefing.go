package domain

import "time"

// BriefingIDLayout formats the timestamp part of generated briefing ids.
const BriefingIDLayout = "20060102_150405"

// Briefing is the immutable output of one pipeline run.
type Briefing struct {
	ID                string           `json:"briefing_id"`
	Date              time.Time        `json:"date"`
	ScrapedPostsCount int              `json:"scraped_posts_count"`
	TrendAnalysis     TrendAnalysis    `json:"trend_analysis"`
	SynthesisResults  SynthesisResults `json:"synthesis_results"`
	// Degraded marks a briefing assembled after an LLM step recovered from failure.
	Degraded bool `json:"degraded"`
}

// NewBriefingID derives the default id for a briefing created at t.
func NewBriefingID(t time.Time) string {
	return "briefing_" + t.Format(BriefingIDLayout)
}
