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

// StepConfig tunes one LLM-backed step.
type StepConfig struct {
	// Prompt overrides the default text/template prompt when non-empty.
	Prompt  string
	Timeout time.Duration
	Now     func() time.Time
}

func (c StepConfig) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// TrendExtractor asks the language model for trends found in relevant posts.
type TrendExtractor struct {
	model    ports.LanguageModel
	prompt   *template.Template
	cfg      StepConfig
	maxPosts int
	logger   *slog.Logger
}

// NewTrendExtractor validates the prompt template and builds the extractor.
func NewTrendExtractor(model ports.LanguageModel, cfg StepConfig, logger *slog.Logger) (*TrendExtractor, error) {
	prompt, err := parsePrompt("trend", cfg.Prompt, DefaultTrendPrompt)
	if err != nil {
		return nil, err
	}
	return &TrendExtractor{
		model:    model,
		prompt:   prompt,
		cfg:      cfg,
		maxPosts: MaxPostsInPrompt,
		logger:   logging.OrDiscard(logger),
	}, nil
}

type trendPayload struct {
	Trends []struct {
		Name           string   `json:"trend_name"`
		Description    string   `json:"description"`
		Confidence     float64  `json:"confidence"`
		Category       string   `json:"category"`
		BusinessImpact string   `json:"business_impact"`
		Sources        []string `json:"sources"`
		Keywords       []string `json:"keywords"`
	} `json:"trends"`
	ConfidenceScore float64 `json:"confidence_score"`
}

// Extract returns the trend analysis for posts. The analysis is always well formed;
// a non-nil error means the model step failed and the analysis is the empty fallback.
func (e *TrendExtractor) Extract(ctx context.Context, posts []domain.Post) (domain.TrendAnalysis, error) {
	if len(posts) == 0 {
		return emptyAnalysis(e.cfg.now(), 0), nil
	}

	batch := posts
	if len(batch) > e.maxPosts {
		batch = batch[:e.maxPosts]
	}

	e.logger.Info("extracting trends", "posts", len(posts), "in_prompt", len(batch))

	prompt, err := renderPrompt(e.prompt, trendPromptData{Posts: batch})
	if err != nil {
		return emptyAnalysis(e.cfg.now(), len(posts)), err
	}

	text, err := complete(ctx, e.model, e.cfg.Timeout, trendSystemMessage, prompt)
	if err != nil {
		return emptyAnalysis(e.cfg.now(), len(posts)), fmt.Errorf("trend extraction: %w", err)
	}

	var payload trendPayload
	if err := llmjson.Decode(text, &payload); err != nil {
		return emptyAnalysis(e.cfg.now(), len(posts)), fmt.Errorf("trend extraction: %w", err)
	}

	analysis := emptyAnalysis(e.cfg.now(), len(posts))
	analysis.ConfidenceScore = domain.ClampConfidence(payload.ConfidenceScore)
	for _, t := range payload.Trends {
		analysis.Trends = append(analysis.Trends, domain.Trend{
			Name:           t.Name,
			Description:    t.Description,
			Confidence:     domain.ClampConfidence(t.Confidence),
			Category:       domain.ParseCategory(t.Category),
			BusinessImpact: domain.ParseBusinessImpact(t.BusinessImpact),
			Sources:        orEmpty(t.Sources),
			Keywords:       orEmpty(t.Keywords),
		})
	}

	e.logger.Info("trend extraction done", "trends", len(analysis.Trends), "confidence", analysis.ConfidenceScore)
	return analysis, nil
}

func emptyAnalysis(at time.Time, postCount int) domain.TrendAnalysis {
	return domain.TrendAnalysis{
		Trends:             []domain.Trend{},
		AnalysisDate:       at,
		TotalPostsAnalyzed: postCount,
	}
}

// complete runs one model call bounded by timeout.
func complete(ctx context.Context, model ports.LanguageModel, timeout time.Duration, system, prompt string) (string, error) {
	if model == nil {
		return "", fmt.Errorf("language model is not configured")
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return model.Complete(ctx, ports.CompletionRequest{System: system, Prompt: prompt})
}

func orEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
