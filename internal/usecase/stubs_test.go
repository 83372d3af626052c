package usecase

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"KBeautyBriefing/internal/domain"
	"KBeautyBriefing/internal/ports"
)

type stubModel struct {
	complete func(ctx context.Context, req ports.CompletionRequest) (string, error)
	calls    atomic.Int32
}

func (m *stubModel) Complete(ctx context.Context, req ports.CompletionRequest) (string, error) {
	m.calls.Add(1)
	return m.complete(ctx, req)
}

func replying(text string) *stubModel {
	return &stubModel{complete: func(context.Context, ports.CompletionRequest) (string, error) {
		return text, nil
	}}
}

type stubSource struct {
	fetch func(ctx context.Context) ([]domain.Post, error)
}

func (s stubSource) FetchPosts(ctx context.Context) ([]domain.Post, error) {
	return s.fetch(ctx)
}

func staticSource(posts ...domain.Post) stubSource {
	return stubSource{fetch: func(context.Context) ([]domain.Post, error) { return posts, nil }}
}

type stubSink struct {
	name  string
	write func(ctx context.Context, b domain.Briefing) error
	calls atomic.Int32
}

func (s *stubSink) Name() string { return s.name }

func (s *stubSink) Write(ctx context.Context, b domain.Briefing) error {
	s.calls.Add(1)
	if s.write == nil {
		return nil
	}
	return s.write(ctx, b)
}

type stubExtractor struct {
	extract func(ctx context.Context, posts []domain.Post) (domain.TrendAnalysis, error)
}

func (s stubExtractor) Extract(ctx context.Context, posts []domain.Post) (domain.TrendAnalysis, error) {
	return s.extract(ctx, posts)
}

type stubAnalyst struct {
	synthesize func(ctx context.Context, a domain.TrendAnalysis) (domain.SynthesisResults, error)
}

func (s stubAnalyst) Synthesize(ctx context.Context, a domain.TrendAnalysis) (domain.SynthesisResults, error) {
	return s.synthesize(ctx, a)
}

type recordingMetrics struct {
	mu         sync.Mutex
	runs       []domain.RunState
	scraped    int
	relevant   int
	trends     int
	recoveries []string
	sinkWrites map[string]bool
}

var _ ports.RunMetrics = (*recordingMetrics)(nil)

func (m *recordingMetrics) RecordRun(status domain.RunState, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, status)
}

func (m *recordingMetrics) RecordPosts(scraped, relevant int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scraped, m.relevant = scraped, relevant
}

func (m *recordingMetrics) RecordTrends(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trends = count
}

func (m *recordingMetrics) RecordRecovery(step string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recoveries = append(m.recoveries, step)
}

func (m *recordingMetrics) RecordSinkWrite(sink string, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sinkWrites == nil {
		m.sinkWrites = map[string]bool{}
	}
	m.sinkWrites[sink] = ok
}

func fixedClock() func() time.Time {
	at := time.Date(2025, time.March, 4, 6, 0, 0, 0, time.UTC)
	return func() time.Time { return at }
}
