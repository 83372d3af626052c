package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"KBeautyBriefing/internal/domain"
	"KBeautyBriefing/internal/ports"
	"KBeautyBriefing/internal/usecase"
)

// maxBodyBytes caps trigger and webhook payloads.
const maxBodyBytes = 1 << 20

var downloadFormats = map[string]struct {
	ext         string
	contentType string
}{
	"markdown": {ext: ".md", contentType: "text/markdown; charset=utf-8"},
	"json":     {ext: ".json", contentType: "application/json"},
}

func (h *handler) index(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "K-Beauty Daily Trend Briefing API",
		"version": Version,
		"endpoints": map[string]string{
			"trigger":   "POST /trigger - start a briefing run",
			"status":    "GET /status - pipeline status",
			"latest":    "GET /latest - latest briefing",
			"trends":    "GET /trends - latest trend list",
			"markdown":  "GET /markdown - latest report",
			"download":  "GET /download/{format} - download markdown or json",
			"webhook":   "POST /webhook - automation trigger",
			"scheduler": "POST /scheduler/start, POST /scheduler/stop",
			"health":    "GET /health - health check",
			"metrics":   "GET /metrics - Prometheus metrics",
		},
	})
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": h.timestamp(),
		"version":   Version,
		"config":    h.deps.Health,
	})
}

type statusResponse struct {
	domain.PipelineStatus
	SchedulerRunning bool `json:"scheduler_running"`
}

func (h *handler) status(w http.ResponseWriter, _ *http.Request) {
	resp := statusResponse{PipelineStatus: h.deps.Runner.Status()}
	if h.deps.Scheduler != nil {
		resp.SchedulerRunning = h.deps.Scheduler.Running()
	}
	writeJSON(w, http.StatusOK, resp)
}

// triggerRequest is the optional body of POST /trigger.
type triggerRequest struct {
	DryRun bool     `json:"dry_run"`
	Sinks  []string `json:"sinks"`
}

func (h *handler) trigger(w http.ResponseWriter, r *http.Request) {
	var req triggerRequest
	if err := decodeBody(r, &req, true); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	runID, err := h.deps.Runner.Trigger(r.Context(), usecase.RunOptions{DryRun: req.DryRun, Sinks: req.Sinks})
	if errors.Is(err, usecase.ErrAlreadyRunning) {
		writeError(w, http.StatusConflict, "pipeline is already running, wait for completion")
		return
	}
	if err != nil {
		h.logger.Error("trigger failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not start pipeline")
		return
	}

	writeJSON(w, http.StatusAccepted, envelope{
		Status:    "started",
		Message:   "daily briefing pipeline started",
		RunID:     runID,
		Timestamp: h.timestamp(),
	})
}

// latestBriefing checks memory, then files, then the archive.
func (h *handler) latestBriefing(ctx context.Context) (domain.Briefing, error) {
	if b, ok := h.deps.Runner.Latest(); ok {
		return b, nil
	}

	if h.deps.Files != nil {
		b, err := h.deps.Files.LatestJSON()
		if err == nil {
			return b, nil
		}
		if !errors.Is(err, ports.ErrNotFound) {
			return domain.Briefing{}, err
		}
	}

	if h.deps.Archive != nil {
		return h.deps.Archive.LatestBriefing(ctx)
	}
	return domain.Briefing{}, ports.ErrNotFound
}

func (h *handler) writeLookupError(w http.ResponseWriter, err error) {
	if errors.Is(err, ports.ErrNotFound) {
		writeError(w, http.StatusNotFound, "no briefing available yet, trigger a run with POST /trigger")
		return
	}
	h.logger.Error("briefing lookup failed", "error", err)
	writeError(w, http.StatusInternalServerError, "could not load briefing")
}

func (h *handler) latest(w http.ResponseWriter, r *http.Request) {
	b, err := h.latestBriefing(r.Context())
	if err != nil {
		h.writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *handler) trends(w http.ResponseWriter, r *http.Request) {
	b, err := h.latestBriefing(r.Context())
	if err != nil {
		h.writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"briefing_id": b.ID,
		"date":        b.Date,
		"trends":      b.TrendAnalysis.Trends,
	})
}

func (h *handler) markdown(w http.ResponseWriter, _ *http.Request) {
	if h.deps.Files == nil {
		h.writeLookupError(w, ports.ErrNotFound)
		return
	}
	data, _, err := h.deps.Files.LatestFile(".md")
	if err != nil {
		h.writeLookupError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	_, _ = w.Write(data)
}

func (h *handler) download(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	df, ok := downloadFormats[format]
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid format, use 'markdown' or 'json'")
		return
	}
	if h.deps.Files == nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no %s files available", format))
		return
	}

	data, name, err := h.deps.Files.LatestFile(df.ext)
	if errors.Is(err, ports.ErrNotFound) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no %s files available", format))
		return
	}
	if err != nil {
		h.logger.Error("download failed", "format", format, "error", err)
		writeError(w, http.StatusInternalServerError, "could not read briefing file")
		return
	}

	w.Header().Set("Content-Type", df.contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	_, _ = w.Write(data)
}

type webhookRequest struct {
	Source    string         `json:"source"`
	EventType string         `json:"event_type"`
	Data      map[string]any `json:"data"`
}

func (h *handler) webhook(w http.ResponseWriter, r *http.Request) {
	var req webhookRequest
	if err := decodeBody(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Source) == "" || strings.TrimSpace(req.EventType) == "" {
		writeError(w, http.StatusBadRequest, "invalid webhook request: source and event_type are required")
		return
	}

	h.logger.Info("webhook received", "source", req.Source, "event_type", req.EventType)

	runID, err := h.deps.Runner.Trigger(r.Context(), usecase.RunOptions{})
	if errors.Is(err, usecase.ErrAlreadyRunning) {
		writeJSON(w, http.StatusOK, envelope{
			Status:    "skipped",
			Message:   "pipeline already running, webhook ignored",
			Timestamp: h.timestamp(),
		})
		return
	}
	if err != nil {
		h.logger.Error("webhook trigger failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not start pipeline")
		return
	}

	writeJSON(w, http.StatusAccepted, envelope{
		Status:    "webhook_received",
		Message:   fmt.Sprintf("webhook from %s processed", req.Source),
		RunID:     runID,
		Timestamp: h.timestamp(),
	})
}

func (h *handler) startScheduler(w http.ResponseWriter, r *http.Request) {
	if h.deps.Scheduler == nil {
		writeError(w, http.StatusServiceUnavailable, "scheduler is not configured")
		return
	}
	// the loop outlives this request
	if err := h.deps.Scheduler.Start(context.WithoutCancel(r.Context())); err != nil {
		h.logger.Error("scheduler start failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not start scheduler")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "started",
		"message":       "automated scheduler started",
		"schedule_time": h.deps.Health.ScheduleTime,
		"timestamp":     h.timestamp(),
	})
}

func (h *handler) stopScheduler(w http.ResponseWriter, r *http.Request) {
	if h.deps.Scheduler == nil {
		writeError(w, http.StatusServiceUnavailable, "scheduler is not configured")
		return
	}
	if err := h.deps.Scheduler.Stop(r.Context()); err != nil {
		h.logger.Error("scheduler stop failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not stop scheduler")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "stopped",
		"message":   "automated scheduler stopped",
		"timestamp": h.timestamp(),
	})
}

// cronRun runs synchronously but detached from the caller, so a cron client that
// gives up does not fail the run. Fetch and LLM timeouts bound it.
func (h *handler) cronRun(w http.ResponseWriter, r *http.Request) {
	result, err := h.deps.Runner.RunNow(context.WithoutCancel(r.Context()), usecase.RunOptions{})
	if errors.Is(err, usecase.ErrAlreadyRunning) {
		writeError(w, http.StatusConflict, "pipeline is already running")
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, envelope{
			Status:    "error",
			Message:   fmt.Sprintf("pipeline failed: %v", err),
			Timestamp: h.timestamp(),
		})
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		Status:     "success",
		Message:    "pipeline completed successfully",
		BriefingID: result.Briefing.ID,
		Timestamp:  h.timestamp(),
		Data: map[string]any{
			"scraped_posts":  result.ScrapedPosts,
			"relevant_posts": result.RelevantPosts,
			"trends":         len(result.Briefing.TrendAnalysis.Trends),
			"degraded":       result.Briefing.Degraded,
			"sinks":          result.SinkResults,
		},
	})
}

func (h *handler) cronHealth(w http.ResponseWriter, _ *http.Request) {
	last := "unknown"
	if end := h.deps.Runner.Status().EndTime; end != nil {
		last = end.Format(time.RFC3339)
	}
	resp := map[string]any{
		"status":            "healthy",
		"timestamp":         h.timestamp(),
		"content_mode":      h.deps.Health.ContentMode,
		"last_pipeline_run": last,
	}
	if h.deps.Scheduler != nil {
		resp["scheduler_running"] = h.deps.Scheduler.Running()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) cronCleanup(w http.ResponseWriter, r *http.Request) {
	if h.deps.Cleaner == nil {
		writeError(w, http.StatusServiceUnavailable, "cleanup is not configured")
		return
	}
	report, err := h.deps.Cleaner.Cleanup(r.Context(), 0)
	if err != nil {
		h.logger.Error("cleanup failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, envelope{
			Status:    "error",
			Message:   fmt.Sprintf("cleanup failed: %v", err),
			Timestamp: h.timestamp(),
			Data:      report,
		})
		return
	}
	writeJSON(w, http.StatusOK, envelope{
		Status:    "success",
		Message:   "cleanup completed successfully",
		Timestamp: h.timestamp(),
		Data:      report,
	})
}

// decodeBody reads a JSON body into dst; an empty body is accepted when optional.
func decodeBody(r *http.Request, dst any, optional bool) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) && optional {
			return nil
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}
