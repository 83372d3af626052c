package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"KBeautyBriefing/internal/logging"
)

const (
	// DefaultRetentionDays applies when no retention window is configured.
	DefaultRetentionDays = 30
	// MaxRetentionDays caps the window at roughly a century.
	MaxRetentionDays = 36500
)

// ErrRetentionTooLong rejects windows beyond MaxRetentionDays.
var ErrRetentionTooLong = fmt.Errorf("retention window exceeds %d days", MaxRetentionDays)

// FilePruner removes briefing files older than a window.
type FilePruner interface {
	Prune(ctx context.Context, olderThan time.Duration) (int, error)
}

// ArchivePruner removes archived briefings dated before a cutoff.
type ArchivePruner interface {
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// CleanupReport summarises one retention pass.
type CleanupReport struct {
	FilesRemoved   int       `json:"files_removed"`
	ArchiveRemoved int64     `json:"archive_removed"`
	Cutoff         time.Time `json:"cutoff_date"`
	RetentionDays  int       `json:"retention_days"`
}

// Retention prunes old briefings from every configured store.
type Retention struct {
	files   FilePruner
	archive ArchivePruner
	days    int
	now     func() time.Time
	logger  *slog.Logger
}

// NewRetention builds a cleaner; archive may be nil.
func NewRetention(files FilePruner, archive ArchivePruner, days int, logger *slog.Logger) *Retention {
	if days <= 0 {
		days = DefaultRetentionDays
	}
	days = min(days, MaxRetentionDays)
	return &Retention{files: files, archive: archive, days: days, now: time.Now, logger: logging.OrDiscard(logger)}
}

// Cleanup prunes with the configured window, or days when positive.
// Nothing is pruned when days exceeds MaxRetentionDays.
func (r *Retention) Cleanup(ctx context.Context, days int) (CleanupReport, error) {
	if days <= 0 {
		days = r.days
	}
	if days > MaxRetentionDays {
		return CleanupReport{RetentionDays: days}, fmt.Errorf("cleanup %d days: %w", days, ErrRetentionTooLong)
	}
	now := r.now()
	cutoff := now.AddDate(0, 0, -days)
	window := now.Sub(cutoff)
	report := CleanupReport{Cutoff: cutoff, RetentionDays: days}

	var errs []error
	if r.files != nil {
		n, err := r.files.Prune(ctx, window)
		report.FilesRemoved = n
		if err != nil {
			errs = append(errs, fmt.Errorf("prune files: %w", err))
		}
	}
	if r.archive != nil {
		n, err := r.archive.PruneBefore(ctx, report.Cutoff)
		report.ArchiveRemoved = n
		if err != nil {
			errs = append(errs, fmt.Errorf("prune archive: %w", err))
		}
	}

	r.logger.Info("cleanup finished",
		"files_removed", report.FilesRemoved,
		"archive_removed", report.ArchiveRemoved,
		"retention_days", days,
	)
	return report, errors.Join(errs...)
}
