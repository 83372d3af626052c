// Package app wires configuration into the briefing pipeline, its sinks and the HTTP surface.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"KBeautyBriefing/internal/config"
	"KBeautyBriefing/internal/httpapi"
	"KBeautyBriefing/internal/infrastructure/fixture"
	"KBeautyBriefing/internal/infrastructure/llm"
	"KBeautyBriefing/internal/infrastructure/notion"
	"KBeautyBriefing/internal/infrastructure/output"
	"KBeautyBriefing/internal/infrastructure/parser"
	"KBeautyBriefing/internal/infrastructure/scheduler"
	"KBeautyBriefing/internal/infrastructure/storage"
	"KBeautyBriefing/internal/infrastructure/telegram"
	"KBeautyBriefing/internal/logging"
	"KBeautyBriefing/internal/metrics"
	"KBeautyBriefing/internal/ports"
	"KBeautyBriefing/internal/scanner"
	"KBeautyBriefing/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg          config.Config
	logger       *slog.Logger
	registry     *prometheus.Registry
	files        *output.FileStore
	archive      *storage.Archive
	db           *sql.DB
	sinks        *usecase.SinkPipeline
	orchestrator *usecase.Orchestrator
	scheduler    *usecase.Scheduler
	retention    *usecase.Retention
}

// New builds every component described by cfg. Close releases the archive connection.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}
	component := func(name string) *slog.Logger { return baseLogger.With("component", name) }

	a := &Application{cfg: cfg, logger: baseLogger, registry: prometheus.NewRegistry()}
	collector := metrics.NewCollector(a.registry)

	source, err := buildSource(cfg, component)
	if err != nil {
		return nil, err
	}

	if cfg.LLM.APIKey == "" {
		baseLogger.Warn("llm api key not set, analysis steps will fall back to empty results")
	}
	model := llm.NewChatGPTClient(cfg.LLM)

	extractor, err := usecase.NewTrendExtractor(model, usecase.StepConfig{
		Prompt:  cfg.LLM.TrendPrompt,
		Timeout: cfg.LLM.Timeout,
	}, component("extractor"))
	if err != nil {
		return nil, fmt.Errorf("trend extractor: %w", err)
	}
	synthesizer, err := usecase.NewSynthesizer(model, usecase.StepConfig{
		Prompt:  cfg.LLM.SynthesisPrompt,
		Timeout: cfg.LLM.Timeout,
	}, component("synthesizer"))
	if err != nil {
		return nil, fmt.Errorf("synthesizer: %w", err)
	}

	a.files = output.NewFileStore(cfg.Output.Dir, cfg.ReadOnlyDeploy, component("output"))

	sinks, err := a.buildSinks(ctx, component)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.sinks = usecase.NewSinkPipeline(sinks, collector, component("sinks"))

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:    source,
		Keywords:  cfg.Content.Keywords,
		Extractor: extractor,
		Analyst:   synthesizer,
		Assembler: usecase.NewAssembler(nil),
		Sinks:     a.sinks,
		Metrics:   collector,
		Logger:    component("pipeline"),
	})
	a.orchestrator = usecase.NewOrchestrator(pipeline, collector, component("orchestrator"))

	driver, err := scheduler.NewDaily(cfg.Scheduler, component("scheduler"))
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("scheduler: %w", err)
	}
	a.scheduler = usecase.NewScheduler(driver, a.orchestrator, component("scheduler"))

	var pruner usecase.ArchivePruner
	if a.archive != nil {
		pruner = a.archive
	}
	a.retention = usecase.NewRetention(a.files, pruner, cfg.Retention.Days, component("retention"))

	baseLogger.Info("application wired",
		"content_mode", cfg.Content.Mode,
		"sinks", a.sinks.Names(),
		"output_dir", a.files.Dir(),
	)
	return a, nil
}

func buildSource(cfg config.Config, component func(string) *slog.Logger) (ports.ContentSource, error) {
	if cfg.Content.Mode == config.ContentModeFixture {
		src, err := fixture.NewSource()
		if err != nil {
			return nil, fmt.Errorf("fixture source: %w", err)
		}
		return src, nil
	}

	fetcher := parser.NewFetcher(nil, parser.FetcherConfig{
		Timeout:   cfg.Scraping.Timeout,
		Delay:     cfg.Scraping.Delay,
		UserAgent: cfg.Scraping.UserAgent,
		SafeFetch: cfg.Scraping.SafeFetch,
	})

	registry := scanner.NewRegistry()
	registry.Register(parser.NewSelectorScanner(fetcher, component("scanner.selector")))
	registry.Register(parser.NewFeedScanner(fetcher, component("scanner.rss")))
	registry.Register(parser.NewArticleScanner(fetcher, component("scanner.article")))
	registry.Register(parser.NewBrowserScanner(cfg.Scraping.UserAgent, 0, component("scanner.browser")))

	return parser.NewStrategySource(registry, cfg.EnabledSources(), cfg.Scraping, component("source")), nil
}

func (a *Application) buildSinks(ctx context.Context, component func(string) *slog.Logger) ([]ports.Sink, error) {
	var sinks []ports.Sink
	if a.cfg.Output.Markdown {
		sinks = append(sinks, output.NewMarkdownSink(a.files))
	}
	if a.cfg.Output.JSON {
		sinks = append(sinks, output.NewJSONSink(a.files))
	}

	if a.cfg.Notion.Enabled() {
		client := notion.NewClient(a.cfg.Notion, nil)
		sinks = append(sinks, notion.NewSink(client, a.cfg.Notion.DatabaseID, a.cfg.Notion.TrendPages, component("notion")))
	}

	if a.cfg.Archive.Enabled() {
		db, archive, err := openArchive(ctx, a.cfg.Archive)
		if err != nil {
			return nil, err
		}
		a.db, a.archive = db, archive
		sinks = append(sinks, storage.NewSink(archive))
	}

	if a.cfg.Notifications.Telegram.Enabled() {
		tg := a.cfg.Notifications.Telegram
		sinks = append(sinks, telegram.NewSink(telegram.NewNotifier(tg.BotToken, tg.ChatID)))
	}

	return sinks, nil
}

func archiveDriver(cfg config.ArchiveConfig) string {
	if cfg.Driver == "" {
		return storage.DriverPostgres
	}
	return cfg.Driver
}

func openArchive(ctx context.Context, cfg config.ArchiveConfig) (*sql.DB, *storage.Archive, error) {
	driver := archiveDriver(cfg)
	db, err := storage.Open(driver, cfg.DSN)
	if err != nil {
		return nil, nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping archive: %w", err)
	}
	if _, err := storage.RunMigrations(db, driver); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return db, storage.NewArchive(db, driver), nil
}

// Migrate applies the archive schema and reports the resulting version.
func Migrate(ctx context.Context, cfg config.Config) (uint, error) {
	if !cfg.Archive.Enabled() {
		return 0, errors.New("archive is not configured: set archive.dsn or DATABASE_DSN")
	}
	driver := archiveDriver(cfg.Archive)
	db, err := storage.Open(driver, cfg.Archive.DSN)
	if err != nil {
		return 0, err
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		return 0, fmt.Errorf("ping archive: %w", err)
	}
	return storage.RunMigrations(db, driver)
}

// RunOnce executes a single pipeline run synchronously.
func (a *Application) RunOnce(ctx context.Context, opts usecase.RunOptions) (usecase.RunResult, error) {
	return a.orchestrator.RunNow(ctx, opts)
}

// Cleanup applies the retention window; days <= 0 uses the configured value.
func (a *Application) Cleanup(ctx context.Context, days int) (usecase.CleanupReport, error) {
	return a.retention.Cleanup(ctx, days)
}

// SinkNames lists the registered sinks in write order.
func (a *Application) SinkNames() []string {
	return a.sinks.Names()
}

// Handler builds the HTTP surface.
func (a *Application) Handler() http.Handler {
	var archive ports.BriefingArchive
	if a.archive != nil {
		archive = a.archive
	}
	return httpapi.NewRouter(httpapi.RouterDeps{
		Runner:     a.orchestrator,
		Scheduler:  a.scheduler,
		Files:      a.files,
		Archive:    archive,
		Cleaner:    a.retention,
		Metrics:    metrics.Handler(a.registry),
		CronSecret: a.cfg.Cron.Secret,
		Health: httpapi.HealthInfo{
			LLMConfigured:    a.cfg.LLM.APIKey != "",
			NotionConfigured: a.cfg.Notion.Enabled(),
			ArchiveEnabled:   a.archive != nil,
			ContentMode:      a.cfg.Content.Mode,
			OutputDir:        a.files.Dir(),
			ScheduleTime:     a.cfg.Scheduler.RunTime,
		},
		Logger: a.logger.With("component", "http"),
	})
}

// Serve runs the HTTP server, and the scheduler when auto run is on, until ctx is done.
func (a *Application) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if a.cfg.Scheduler.AutoRun {
		if err := a.scheduler.Start(ctx); err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
	}

	timeout := a.cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	a.logger.Info("shutting down")
	if err := a.scheduler.Stop(shutdownCtx); err != nil {
		a.logger.Warn("scheduler stop failed", "error", err)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn("http shutdown failed", "error", err)
	}
	waitRuns(shutdownCtx, a.orchestrator, a.logger)

	if serveErr != nil {
		return fmt.Errorf("http server: %w", serveErr)
	}
	return nil
}

func waitRuns(ctx context.Context, o *usecase.Orchestrator, logger *slog.Logger) {
	done := make(chan struct{})
	go func() {
		o.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		logger.Warn("background run still in progress at shutdown")
	}
}

// Close releases the archive connection if one was opened.
func (a *Application) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}
