package ports

import (
	"context"
	"errors"
	"time"

	"KBeautyBriefing/internal/domain"
)

// ErrNotFound is wrapped by stores that have nothing to return yet.
var ErrNotFound = errors.New("not found")

// ContentSource produces raw posts from one or more configured origins.
type ContentSource interface {
	FetchPosts(ctx context.Context) ([]domain.Post, error)
}

// CompletionRequest carries one prompt and its sampling parameters.
type CompletionRequest struct {
	System      string
	Prompt      string
	Model       string
	MaxTokens   int
	// Temperature overrides the configured default when set; 0 is a valid value.
	Temperature *float64
}

// LanguageModel returns free text for a prompt; callers extract structure themselves.
type LanguageModel interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// Sink persists a finished briefing to one backend.
type Sink interface {
	Name() string
	Write(ctx context.Context, briefing domain.Briefing) error
}

// BriefingArchive keeps a queryable history of briefings.
type BriefingArchive interface {
	SaveBriefing(ctx context.Context, briefing domain.Briefing) error
	LatestBriefing(ctx context.Context) (domain.Briefing, error)
}

// Notifier pushes a short text digest to a chat channel.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Scheduler controls when recurring jobs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(context.Context, time.Time) error) error
	Stop(ctx context.Context) error
}

// RunMetrics records pipeline outcomes.
type RunMetrics interface {
	RecordRun(status domain.RunState, duration time.Duration)
	RecordPosts(scraped, relevant int)
	RecordTrends(count int)
	RecordRecovery(step string)
	RecordSinkWrite(sink string, ok bool)
}
