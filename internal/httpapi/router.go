// Package httpapi serves pipeline status, manual triggers and briefing downloads over HTTP.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"KBeautyBriefing/internal/domain"
	"KBeautyBriefing/internal/logging"
	"KBeautyBriefing/internal/ports"
	"KBeautyBriefing/internal/usecase"
)

// Version is reported by the index and health endpoints.
const Version = "2.0.0"

// Runner is the orchestrator surface used by the handlers.
type Runner interface {
	RunNow(ctx context.Context, opts usecase.RunOptions) (usecase.RunResult, error)
	Trigger(ctx context.Context, opts usecase.RunOptions) (string, error)
	Status() domain.PipelineStatus
	Latest() (domain.Briefing, bool)
}

// SchedulerControl starts and stops the daily loop.
type SchedulerControl interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Running() bool
}

// BriefingFiles reads persisted briefing files.
type BriefingFiles interface {
	LatestJSON() (domain.Briefing, error)
	LatestFile(ext string) ([]byte, string, error)
}

// Cleaner applies the retention window.
type Cleaner interface {
	Cleanup(ctx context.Context, days int) (usecase.CleanupReport, error)
}

// HealthInfo is static configuration echoed by /health.
type HealthInfo struct {
	LLMConfigured    bool   `json:"llm_configured"`
	NotionConfigured bool   `json:"notion_configured"`
	ArchiveEnabled   bool   `json:"archive_enabled"`
	ContentMode      string `json:"content_mode"`
	OutputDir        string `json:"output_dir"`
	ScheduleTime     string `json:"schedule_time"`
}

// RouterDeps groups everything NewRouter wires.
type RouterDeps struct {
	Runner     Runner
	Scheduler  SchedulerControl
	Files      BriefingFiles
	Archive    ports.BriefingArchive
	Cleaner    Cleaner
	Metrics    http.Handler
	CronSecret string
	Health     HealthInfo
	Logger     *slog.Logger
}

type handler struct {
	deps   RouterDeps
	logger *slog.Logger
	now    func() time.Time
}

// NewRouter builds the chi router with every endpoint and the middleware chain.
func NewRouter(deps RouterDeps) http.Handler {
	logger := logging.OrDiscard(deps.Logger)
	h := &handler{deps: deps, logger: logger, now: time.Now}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(recoverer(logger))

	r.Get("/", h.index)
	r.Get("/health", h.health)
	r.Get("/status", h.status)
	r.Post("/trigger", h.trigger)
	r.Get("/latest", h.latest)
	r.Get("/trends", h.trends)
	r.Get("/markdown", h.markdown)
	r.Get("/download/{format}", h.download)
	r.Post("/webhook", h.webhook)

	r.Route("/scheduler", func(r chi.Router) {
		r.Post("/start", h.startScheduler)
		r.Post("/stop", h.stopScheduler)
	})

	r.Route("/api/cron", func(r chi.Router) {
		r.Use(cronAuth(deps.CronSecret))
		r.Get("/run-pipeline", h.cronRun)
		r.Get("/health", h.cronHealth)
		r.Get("/cleanup", h.cronCleanup)
	})

	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	return r
}

func (h *handler) timestamp() string {
	return h.now().Format(time.RFC3339)
}
