package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"KBeautyBriefing/internal/domain"
	"KBeautyBriefing/internal/logging"
	"KBeautyBriefing/internal/ports"
	"KBeautyBriefing/internal/relevance"
)

// ErrNoPosts aborts a run whose source produced nothing to analyze.
var ErrNoPosts = errors.New("no posts collected")

// Extractor finds trends in relevant posts.
type Extractor interface {
	Extract(ctx context.Context, posts []domain.Post) (domain.TrendAnalysis, error)
}

// Analyst turns trends into actionable insights.
type Analyst interface {
	Synthesize(ctx context.Context, analysis domain.TrendAnalysis) (domain.SynthesisResults, error)
}

// PipelineDeps wires all driven adapters into the briefing pipeline.
type PipelineDeps struct {
	Source    ports.ContentSource
	Keywords  []string
	Extractor Extractor
	Analyst   Analyst
	Assembler *Assembler
	Sinks     *SinkPipeline
	Metrics   ports.RunMetrics
	Logger    *slog.Logger
}

// Pipeline runs collect, filter, extract, synthesize, assemble and persist in order.
type Pipeline struct {
	source    ports.ContentSource
	keywords  []string
	extractor Extractor
	analyst   Analyst
	assembler *Assembler
	sinks     *SinkPipeline
	metrics   ports.RunMetrics
	logger    *slog.Logger
}

// RunOptions adjusts a single run.
type RunOptions struct {
	// DryRun assembles the briefing without writing to any sink.
	DryRun bool
	// Sinks limits persistence to the named sinks; empty means every registered sink.
	Sinks []string
	// BriefingID overrides the generated id.
	BriefingID string
}

// RunResult is what one successful run produced.
type RunResult struct {
	Briefing      domain.Briefing
	ScrapedPosts  int
	RelevantPosts int
	SinkResults   map[string]bool
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	keywords := deps.Keywords
	if len(keywords) == 0 {
		keywords = relevance.DefaultKeywords
	}
	assembler := deps.Assembler
	if assembler == nil {
		assembler = NewAssembler(nil)
	}
	return &Pipeline{
		source:    deps.Source,
		keywords:  keywords,
		extractor: deps.Extractor,
		analyst:   deps.Analyst,
		assembler: assembler,
		sinks:     deps.Sinks,
		metrics:   deps.Metrics,
		logger:    logging.OrDiscard(deps.Logger),
	}
}

// Run executes one briefing. LLM failures are recovered and flagged as degraded;
// only an empty or failing source aborts the run.
func (p *Pipeline) Run(ctx context.Context, opts RunOptions) (RunResult, error) {
	if p.source == nil || p.extractor == nil || p.analyst == nil {
		return RunResult{}, fmt.Errorf("pipeline is not fully configured")
	}

	p.logger.Info("collecting posts")
	posts, err := p.source.FetchPosts(ctx)
	if err != nil {
		return RunResult{}, fmt.Errorf("fetch posts: %w", err)
	}
	if len(posts) == 0 {
		return RunResult{}, ErrNoPosts
	}

	relevant := relevance.Filter(posts, p.keywords)
	p.recordPosts(len(posts), len(relevant))
	p.logger.Info("posts filtered", "scraped", len(posts), "relevant", len(relevant))
	if len(relevant) == 0 {
		return RunResult{}, fmt.Errorf("%w: none of %d posts matched the keywords", ErrNoPosts, len(posts))
	}

	degraded := false

	analysis, err := p.extractor.Extract(ctx, relevant)
	if err != nil {
		degraded = true
		p.recordRecovery("extract")
		p.logger.Warn("trend extraction recovered", "error", err)
	}
	if p.metrics != nil {
		p.metrics.RecordTrends(len(analysis.Trends))
	}

	synthesis, err := p.analyst.Synthesize(ctx, analysis)
	if err != nil {
		degraded = true
		p.recordRecovery("synthesize")
		p.logger.Warn("synthesis recovered", "error", err)
	}

	if err := ctx.Err(); err != nil {
		return RunResult{}, fmt.Errorf("run cancelled: %w", err)
	}

	briefing := p.assembler.AssembleWithID(opts.BriefingID, len(relevant), analysis, synthesis, degraded)
	p.logger.Info("briefing assembled",
		"briefing_id", briefing.ID,
		"trends", len(briefing.TrendAnalysis.Trends),
		"priority_trends", len(briefing.SynthesisResults.PriorityTrends),
		"degraded", degraded)

	result := RunResult{
		Briefing:      briefing,
		ScrapedPosts:  len(posts),
		RelevantPosts: len(relevant),
		SinkResults:   map[string]bool{},
	}

	if opts.DryRun || p.sinks == nil {
		return result, nil
	}

	result.SinkResults = p.sinks.Persist(ctx, briefing, enabledSet(opts.Sinks))
	return result, nil
}

func (p *Pipeline) recordPosts(scraped, relevant int) {
	if p.metrics != nil {
		p.metrics.RecordPosts(scraped, relevant)
	}
}

func (p *Pipeline) recordRecovery(step string) {
	if p.metrics != nil {
		p.metrics.RecordRecovery(step)
	}
}

func enabledSet(names []string) map[string]bool {
	if len(names) == 0 {
		return nil
	}
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}
