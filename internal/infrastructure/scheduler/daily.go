package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"KBeautyBriefing/internal/config"
	"KBeautyBriefing/internal/logging"
	"KBeautyBriefing/internal/ports"
)

const dayLayout = "2006-01-02"

// maxAttemptsPerDay bounds retries of a failing job within one day.
const maxAttemptsPerDay = 3

// Daily fires a job once per calendar day at or after a wall-clock time.
type Daily struct {
	hour, minute int
	loc          *time.Location
	poll         time.Duration
	backoff      time.Duration
	now          func() time.Time
	logger       *slog.Logger

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

var _ ports.Scheduler = (*Daily)(nil)

// NewDaily builds a driver from the scheduler config. RunTime is "HH:MM".
func NewDaily(cfg config.SchedulerConfig, logger *slog.Logger) (*Daily, error) {
	hour, minute, err := ParseRunTime(cfg.RunTime)
	if err != nil {
		return nil, err
	}
	poll := cfg.PollInterval
	if poll <= 0 {
		poll = time.Minute
	}
	backoff := cfg.ErrorBackoff
	if backoff <= 0 {
		backoff = 5 * time.Minute
	}
	return &Daily{
		hour:    hour,
		minute:  minute,
		loc:     cfg.Location(),
		poll:    poll,
		backoff: backoff,
		now:     time.Now,
		logger:  logging.OrDiscard(logger),
	}, nil
}

// ParseRunTime splits "HH:MM" into hour and minute.
func ParseRunTime(value string) (int, int, error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid run time %q: want HH:MM", value)
	}
	return t.Hour(), t.Minute(), nil
}

// WithClock replaces the time source.
func (d *Daily) WithClock(now func() time.Time) *Daily {
	d.now = now
	return d
}

// NextRun reports the next fire time strictly after the given instant.
func (d *Daily) NextRun(after time.Time) time.Time {
	local := after.In(d.loc)
	next := d.runAt(local)
	if !next.After(local) {
		next = time.Date(local.Year(), local.Month(), local.Day()+1, d.hour, d.minute, 0, 0, d.loc)
	}
	return next
}

func (d *Daily) runAt(local time.Time) time.Time {
	return time.Date(local.Year(), local.Month(), local.Day(), d.hour, d.minute, 0, 0, d.loc)
}

// due reports whether the job should fire at now given the last completed day.
func (d *Daily) due(now time.Time, lastDay string) bool {
	local := now.In(d.loc)
	if local.Format(dayLayout) == lastDay {
		return false
	}
	return !local.Before(d.runAt(local))
}

// Start launches the polling loop. Starting twice is a no-op.
func (d *Daily) Start(ctx context.Context, job func(context.Context, time.Time) error) error {
	if job == nil {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stop != nil {
		return nil
	}

	d.stop = make(chan struct{})
	d.done = make(chan struct{})
	go d.loop(ctx, job, d.stop, d.done)

	d.logger.Info("daily schedule armed",
		"run_time", fmt.Sprintf("%02d:%02d", d.hour, d.minute),
		"timezone", d.loc.String(),
		"next_run", d.NextRun(d.now()),
	)
	return nil
}

func (d *Daily) loop(ctx context.Context, job func(context.Context, time.Time) error, stop, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(d.poll)
	defer ticker.Stop()

	var (
		lastDay   string
		attempts  int
		notBefore time.Time
	)

	check := func() {
		now := d.now()
		if !d.due(now, lastDay) || now.Before(notBefore) {
			return
		}
		day := now.In(d.loc).Format(dayLayout)

		err := job(ctx, now)
		if err == nil {
			lastDay, attempts, notBefore = day, 0, time.Time{}
			return
		}

		attempts++
		if attempts >= maxAttemptsPerDay {
			d.logger.Error("scheduled job failed, giving up for today", "day", day, "attempts", attempts, "error", err)
			lastDay, attempts, notBefore = day, 0, time.Time{}
			return
		}
		notBefore = now.Add(d.backoff)
		d.logger.Warn("scheduled job failed, will retry", "day", day, "attempts", attempts, "retry_at", notBefore, "error", err)
	}

	check()
	for {
		select {
		case <-ticker.C:
			check()
		case <-ctx.Done():
			return
		case <-stop:
			return
		}
	}
}

// Stop halts the loop and waits for it to exit or ctx to expire.
func (d *Daily) Stop(ctx context.Context) error {
	d.mu.Lock()
	stop, done := d.stop, d.done
	d.stop, d.done = nil, nil
	d.mu.Unlock()

	if stop == nil {
		return nil
	}
	close(stop)

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
