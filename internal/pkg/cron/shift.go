package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/shift-payroll-backend/internal/domain/workshift"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/pkg/clock"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/pkg/events"
)

const (
	JobEscalateNoAttendance    = "escalate_no_attendance_shifts"
	JobEscalateMissingClockOut = "escalate_missing_clock_out_shifts"
)

// SweepConfig bounds the reconciliation sweeps. MaxOpen is how long an
// open-ended shift may stay clocked in, on top of Tolerance.
type SweepConfig struct {
	Tolerance time.Duration
	MaxOpen   time.Duration
	PageSize  int
	Interval  time.Duration
}

func DefaultSweepConfig() SweepConfig {
	return SweepConfig{
		Tolerance: 120 * time.Minute,
		MaxOpen:   16 * time.Hour,
		PageSize:  500,
		Interval:  24 * time.Hour,
	}
}

// SweepResult summarises one sweep run.
type SweepResult struct {
	Kind        workshift.SweepKind
	Pages       int
	FailedPages int
	Escalated   int64
}

type ShiftJobs struct {
	shiftRepo workshift.WorkShiftRepository
	publisher events.Publisher
	clock     clock.Clock
	cfg       SweepConfig
}

func NewShiftJobs(
	shiftRepo workshift.WorkShiftRepository,
	publisher events.Publisher,
	clk clock.Clock,
	cfg SweepConfig,
) *ShiftJobs {
	defaults := DefaultSweepConfig()
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = defaults.Tolerance
	}
	if cfg.MaxOpen <= 0 {
		cfg.MaxOpen = defaults.MaxOpen
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaults.PageSize
	}
	if cfg.Interval <= 0 {
		cfg.Interval = defaults.Interval
	}
	return &ShiftJobs{
		shiftRepo: shiftRepo,
		publisher: publisher,
		clock:     clk,
		cfg:       cfg,
	}
}

func (j *ShiftJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob(JobEscalateNoAttendance, j.cfg.Interval, j.EscalateNoAttendanceShifts)
	scheduler.AddJob(JobEscalateMissingClockOut, j.cfg.Interval, j.EscalateMissingClockOutShifts)
}

// EscalateNoAttendanceShifts moves stale shifts without any attendance to
// REVIEW with reason NO_ATTENDANCE.
func (j *ShiftJobs) EscalateNoAttendanceShifts(ctx context.Context) error {
	_, err := j.Sweep(ctx, workshift.SweepNoAttendance)
	return err
}

// EscalateMissingClockOutShifts moves stale shifts that were clocked in but
// never clocked out to REVIEW with reason LATE_OUT. Open-ended shifts count
// as stale once clocked in longer than MaxOpen.
func (j *ShiftJobs) EscalateMissingClockOutShifts(ctx context.Context) error {
	_, err := j.Sweep(ctx, workshift.SweepMissingClockOut)
	return err
}

// Sweep walks matching ids page by page and updates each page in one
// statement. A failed page is logged and skipped; its rows still match and
// are picked up by the next run.
func (j *ShiftJobs) Sweep(ctx context.Context, kind workshift.SweepKind) (SweepResult, error) {
	now := j.clock.Now()
	threshold := now.Add(-j.cfg.Tolerance)
	cutoff := workshift.SweepCutoff{
		EndedBefore:  threshold,
		OpenedBefore: threshold.Add(-j.cfg.MaxOpen),
	}
	result := SweepResult{Kind: kind}

	slog.Info("Cron: Starting shift sweep", "kind", kind, "threshold", threshold, "opened_before", cutoff.OpenedBefore)

	cursor := ""
	for {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		ids, err := j.shiftRepo.ListStaleIDs(ctx, kind, cutoff, cursor, j.cfg.PageSize)
		if err != nil {
			return result, fmt.Errorf("failed to list stale shifts after %q: %w", cursor, err)
		}
		if len(ids) == 0 {
			break
		}
		cursor = ids[len(ids)-1]
		result.Pages++

		escalated, err := j.shiftRepo.EscalateToReview(ctx, ids, kind, cutoff, now)
		if err != nil {
			result.FailedPages++
			slog.Error("Cron: Failed to escalate shift page",
				"kind", kind,
				"page", result.Pages,
				"first_id", ids[0],
				"last_id", cursor,
				"error", err)
		} else {
			result.Escalated += int64(len(escalated))
			if len(escalated) > 0 {
				j.publish(ctx, kind, escalated, now)
			}
		}

		if len(ids) < j.cfg.PageSize {
			break
		}
	}

	slog.Info("Cron: Shift sweep finished",
		"kind", kind,
		"pages", result.Pages,
		"failed_pages", result.FailedPages,
		"escalated", result.Escalated)

	if result.FailedPages > 0 {
		return result, fmt.Errorf("%d of %d pages failed to escalate", result.FailedPages, result.Pages)
	}
	return result, nil
}

func (j *ShiftJobs) publish(ctx context.Context, kind workshift.SweepKind, ids []string, at time.Time) {
	event := events.Event{
		Type:       events.TypeShiftReviewEscalated,
		OccurredAt: at,
		Payload: map[string]interface{}{
			"kind":          kind,
			"review_reason": kind.Reason(),
			"shift_ids":     ids,
		},
	}
	if err := j.publisher.Publish(ctx, event); err != nil {
		slog.Warn("Failed to publish event", "type", event.Type, "error", err)
	}
}
