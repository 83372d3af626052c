package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"KBeautyBriefing/internal/domain"
	"KBeautyBriefing/internal/ports"
)

// ErrEmptyArchive is returned by LatestBriefing when nothing has been archived.
var ErrEmptyArchive = fmt.Errorf("briefing archive is empty: %w", ports.ErrNotFound)

// dateLayout is fixed width so SQLite text ordering matches chronological order.
const dateLayout = "2006-01-02T15:04:05.000000Z07:00"

// Archive stores briefings as JSON documents keyed by briefing id.
type Archive struct {
	db *sql.DB
	sb sq.StatementBuilderType
}

var _ ports.BriefingArchive = (*Archive)(nil)

// NewArchive wires a sql.DB opened with driver.
func NewArchive(db *sql.DB, driver string) *Archive {
	var placeholder sq.PlaceholderFormat = sq.Dollar
	if driver == DriverSQLite {
		placeholder = sq.Question
	}
	return &Archive{db: db, sb: sq.StatementBuilder.PlaceholderFormat(placeholder)}
}

// SaveBriefing upserts the briefing snapshot.
func (a *Archive) SaveBriefing(ctx context.Context, b domain.Briefing) error {
	payload, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("encode briefing: %w", err)
	}

	query, args, err := a.sb.Insert("briefings").
		Columns("briefing_id", "briefing_date", "posts_count", "trend_count", "degraded", "payload").
		Values(b.ID, formatDate(b.Date), b.ScrapedPostsCount, len(b.TrendAnalysis.Trends), b.Degraded, string(payload)).
		Suffix(`ON CONFLICT (briefing_id) DO UPDATE
              SET briefing_date = excluded.briefing_date,
                  posts_count = excluded.posts_count,
                  trend_count = excluded.trend_count,
                  degraded = excluded.degraded,
                  payload = excluded.payload,
                  updated_at = CURRENT_TIMESTAMP`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := a.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert briefing: %w", err)
	}
	return nil
}

// LatestBriefing returns the most recent archived briefing by date.
func (a *Archive) LatestBriefing(ctx context.Context) (domain.Briefing, error) {
	query, args, err := a.sb.Select("payload").
		From("briefings").
		OrderBy("briefing_date DESC", "briefing_id DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return domain.Briefing{}, fmt.Errorf("build select: %w", err)
	}

	var payload string
	if err := a.db.QueryRowContext(ctx, query, args...).Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Briefing{}, ErrEmptyArchive
		}
		return domain.Briefing{}, fmt.Errorf("query latest briefing: %w", err)
	}

	var b domain.Briefing
	if err := json.Unmarshal([]byte(payload), &b); err != nil {
		return domain.Briefing{}, fmt.Errorf("decode archived briefing: %w", err)
	}
	return b, nil
}

// PruneBefore deletes briefings dated before cutoff.
func (a *Archive) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query, args, err := a.sb.Delete("briefings").
		Where(sq.Lt{"briefing_date": formatDate(cutoff)}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete: %w", err)
	}

	res, err := a.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("prune briefings: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

func formatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

// Sink adapts an archive to the sink pipeline.
type Sink struct {
	archive ports.BriefingArchive
}

var _ ports.Sink = (*Sink)(nil)

// NewSink builds the "archive" sink.
func NewSink(archive ports.BriefingArchive) *Sink {
	return &Sink{archive: archive}
}

// Name implements ports.Sink.
func (s *Sink) Name() string { return "archive" }

// Write implements ports.Sink.
func (s *Sink) Write(ctx context.Context, b domain.Briefing) error {
	return s.archive.SaveBriefing(ctx, b)
}
