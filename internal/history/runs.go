package history

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/ShayCichocki/speclint/internal/diag"
	"github.com/ShayCichocki/speclint/pkg/models"
)

// Run summarises one validation.
type Run struct {
	ID            string
	Spec          string
	Version       string
	Platforms     []models.PlatformName
	Success       bool
	FailureReason string
	Errors        int
	Warnings      int
	Notes         int
	StartedAt     time.Time
	Duration      time.Duration
}

// NewRun builds a summary from a finished run's diagnostics.
func NewRun(spec *models.Spec, platforms []models.PlatformName, success bool, reason string,
	results []diag.Diagnostic, startedAt time.Time, duration time.Duration) Run {
	r := Run{
		ID:            uuid.New().String(),
		Spec:          spec.FullName(),
		Version:       spec.Root().Version,
		Platforms:     append([]models.PlatformName(nil), platforms...),
		Success:       success,
		FailureReason: reason,
		StartedAt:     startedAt,
		Duration:      duration,
	}
	for _, d := range results {
		switch d.Severity {
		case diag.SevError:
			r.Errors++
		case diag.SevWarning:
			r.Warnings++
		case diag.SevNote:
			r.Notes++
		}
	}
	return r
}

// Age renders how long ago the run started, e.g. "3 minutes ago".
func (r Run) Age(now time.Time) string {
	return humanize.RelTime(r.StartedAt, now, "ago", "from now")
}

// Record stores r.
func (db *DB) Record(ctx context.Context, r Run) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	platforms := make([]string, 0, len(r.Platforms))
	for _, p := range r.Platforms {
		platforms = append(platforms, string(p))
	}

	db.mu.Lock()
	defer db.mu.Unlock()
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO runs (id, spec, version, platforms, success, failure_reason,
			started_at, duration_ms, errors, warnings, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Spec, r.Version, strings.Join(platforms, ","), r.Success, r.FailureReason,
		formatTime(r.StartedAt), r.Duration.Milliseconds(), r.Errors, r.Warnings, r.Notes,
	)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// Recent returns up to limit runs, newest first.
func (db *DB) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	db.mu.RLock()
	defer db.mu.RUnlock()
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, spec, version, platforms, success, failure_reason,
			started_at, duration_ms, errors, warnings, notes
		FROM runs
		ORDER BY started_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var (
			r         Run
			platforms string
			started   string
			duration  int64
		)
		if err := rows.Scan(&r.ID, &r.Spec, &r.Version, &platforms, &r.Success, &r.FailureReason,
			&started, &duration, &r.Errors, &r.Warnings, &r.Notes); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if r.StartedAt, err = parseTime(started); err != nil {
			return nil, fmt.Errorf("parse start time of run %s: %w", r.ID, err)
		}
		r.Duration = time.Duration(duration) * time.Millisecond
		if platforms != "" {
			for _, p := range strings.Split(platforms, ",") {
				r.Platforms = append(r.Platforms, models.PlatformName(p))
			}
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
