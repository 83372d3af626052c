package usecase

import (
	"time"

	"KBeautyBriefing/internal/domain"
)

// Assembler combines step outputs into a Briefing.
type Assembler struct {
	now func() time.Time
}

// NewAssembler uses now as its clock; nil means time.Now.
func NewAssembler(now func() time.Time) *Assembler {
	if now == nil {
		now = time.Now
	}
	return &Assembler{now: now}
}

// Assemble stamps a new briefing id from the clock.
func (a *Assembler) Assemble(postsCount int, analysis domain.TrendAnalysis, synthesis domain.SynthesisResults, degraded bool) domain.Briefing {
	at := a.now()
	return build(domain.NewBriefingID(at), at, postsCount, analysis, synthesis, degraded)
}

// AssembleWithID is Assemble with a caller-supplied id; an empty id falls back to the generated one.
func (a *Assembler) AssembleWithID(id string, postsCount int, analysis domain.TrendAnalysis, synthesis domain.SynthesisResults, degraded bool) domain.Briefing {
	at := a.now()
	if id == "" {
		id = domain.NewBriefingID(at)
	}
	return build(id, at, postsCount, analysis, synthesis, degraded)
}

func build(id string, at time.Time, postsCount int, analysis domain.TrendAnalysis, synthesis domain.SynthesisResults, degraded bool) domain.Briefing {
	return domain.Briefing{
		ID:                id,
		Date:              at,
		ScrapedPostsCount: postsCount,
		TrendAnalysis:     analysis,
		SynthesisResults:  synthesis,
		Degraded:          degraded,
	}
}
