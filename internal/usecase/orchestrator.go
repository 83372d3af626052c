package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"KBeautyBriefing/internal/domain"
	"KBeautyBriefing/internal/logging"
	"KBeautyBriefing/internal/ports"
)

// ErrAlreadyRunning rejects a run request while another run is in flight.
var ErrAlreadyRunning = errors.New("pipeline is already running")

// Orchestrator owns the run status and guarantees at most one run at a time.
type Orchestrator struct {
	pipeline *Pipeline
	metrics  ports.RunMetrics
	logger   *slog.Logger
	now      func() time.Time

	mu     sync.Mutex
	status domain.PipelineStatus
	latest *domain.Briefing
	wg     sync.WaitGroup
}

// NewOrchestrator starts in the idle state.
func NewOrchestrator(pipeline *Pipeline, metrics ports.RunMetrics, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		pipeline: pipeline,
		metrics:  metrics,
		logger:   logging.OrDiscard(logger),
		now:      time.Now,
		status:   domain.PipelineStatus{Status: domain.RunIdle},
	}
}

// RunNow executes a run synchronously.
func (o *Orchestrator) RunNow(ctx context.Context, opts RunOptions) (RunResult, error) {
	runID, err := o.begin()
	if err != nil {
		return RunResult{}, err
	}
	return o.execute(ctx, runID, opts)
}

// Trigger claims the run slot and executes the run in the background. The run outlives
// ctx cancellation so an HTTP request can return immediately.
func (o *Orchestrator) Trigger(ctx context.Context, opts RunOptions) (string, error) {
	runID, err := o.begin()
	if err != nil {
		return "", err
	}

	runCtx := context.WithoutCancel(ctx)
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		_, _ = o.execute(runCtx, runID, opts)
	}()
	return runID, nil
}

// Wait blocks until background runs started by Trigger have finished.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// Status returns a snapshot of the current or last run.
func (o *Orchestrator) Status() domain.PipelineStatus {
	o.mu.Lock()
	defer o.mu.Unlock()

	snapshot := o.status
	if o.status.StartTime != nil {
		t := *o.status.StartTime
		snapshot.StartTime = &t
	}
	if o.status.EndTime != nil {
		t := *o.status.EndTime
		snapshot.EndTime = &t
	}
	return snapshot
}

// Latest returns the last briefing produced by this process.
func (o *Orchestrator) Latest() (domain.Briefing, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.latest == nil {
		return domain.Briefing{}, false
	}
	return *o.latest, true
}

// Running reports whether a run is in flight.
func (o *Orchestrator) Running() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status.Status == domain.RunRunning
}

func (o *Orchestrator) begin() (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.status.Status == domain.RunRunning {
		return "", ErrAlreadyRunning
	}

	start := o.now()
	runID := uuid.NewString()
	o.status = domain.PipelineStatus{
		Status:    domain.RunRunning,
		RunID:     runID,
		StartTime: &start,
	}
	return runID, nil
}

func (o *Orchestrator) execute(ctx context.Context, runID string, opts RunOptions) (result RunResult, err error) {
	logger := o.logger.With("run_id", runID)
	logger.Info("pipeline run started", "dry_run", opts.DryRun)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pipeline panicked: %v", r)
		}
		o.finish(runID, result, err)
		if err != nil {
			logger.Error("pipeline run failed", "error", err)
			return
		}
		logger.Info("pipeline run completed",
			"briefing_id", result.Briefing.ID,
			"degraded", result.Briefing.Degraded,
			"sinks", result.SinkResults)
	}()

	if o.pipeline == nil {
		return RunResult{}, fmt.Errorf("pipeline is not configured")
	}
	return o.pipeline.Run(ctx, opts)
}

func (o *Orchestrator) finish(runID string, result RunResult, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.status.RunID != runID {
		return
	}

	end := o.now()
	o.status.EndTime = &end
	state := domain.RunCompleted
	if err != nil {
		state = domain.RunFailed
		o.status.ErrorMessage = err.Error()
	} else {
		o.status.BriefingID = result.Briefing.ID
		briefing := result.Briefing
		o.latest = &briefing
	}
	o.status.Status = state

	if o.metrics != nil && o.status.StartTime != nil {
		o.metrics.RecordRun(state, end.Sub(*o.status.StartTime))
	}
}
