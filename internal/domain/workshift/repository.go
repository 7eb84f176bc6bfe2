package workshift

import (
	"context"
	"time"
)

// Filter narrows List queries. Limit 0 returns every matching row.
type Filter struct {
	ShopID     string
	EmployeeID *string
	Statuses   []Status
	From       *time.Time
	To         *time.Time
	Settled    *bool
	Page       int
	Limit      int
	SortBy     string
	SortOrder  string
}

// SweepKind selects the predicate of a reconciliation sweep.
type SweepKind string

const (
	SweepNoAttendance    SweepKind = "no_attendance"
	SweepMissingClockOut SweepKind = "missing_clock_out"
)

// Reason is the review reason stamped on rows escalated by the sweep.
func (k SweepKind) Reason() ReviewReason {
	if k == SweepMissingClockOut {
		return ReviewReasonLateOut
	}
	return ReviewReasonNoAttendance
}

// SweepCutoff bounds the sweep predicate. A planned shift is stale once its
// end is before EndedBefore. An open-ended shift clocked in before
// OpenedBefore is stale too, so a forgotten implicit clock-out is caught.
type SweepCutoff struct {
	EndedBefore  time.Time
	OpenedBefore time.Time
}

// EmployeeShiftTotals aggregates one employee's shifts inside a window.
type EmployeeShiftTotals struct {
	EmployeeID         string
	PlannedShifts      int
	CompletedShifts    int
	NoAttendanceShifts int
	WorkedMinutes      int
	GrossPay           int64
}

type WorkShiftRepository interface {
	Create(ctx context.Context, shift WorkShift) (WorkShift, error)
	GetByID(ctx context.Context, id string, shopID string) (WorkShift, error)
	// FindOverlapping returns non-canceled shifts with a planned end whose
	// window intersects [start, end).
	FindOverlapping(ctx context.Context, employeeID, shopID string, start, end time.Time, excludeID *string) ([]WorkShift, error)
	List(ctx context.Context, filter Filter) ([]WorkShift, int64, error)
	Update(ctx context.Context, shift WorkShift) error
	Delete(ctx context.Context, id string, shopID string) error

	GetOpenAttendance(ctx context.Context, employeeID string) (WorkShift, error)
	FindClockInCandidate(ctx context.Context, employeeID, shopID string, at time.Time, earlyWindow time.Duration) (WorkShift, error)

	// ListStaleIDs returns up to limit ids matching the sweep predicate with
	// id > afterID, ordered by id.
	ListStaleIDs(ctx context.Context, kind SweepKind, cutoff SweepCutoff, afterID string, limit int) ([]string, error)
	// EscalateToReview moves the given ids to REVIEW in one statement,
	// re-checking the sweep predicate, and returns the ids it changed.
	EscalateToReview(ctx context.Context, ids []string, kind SweepKind, cutoff SweepCutoff, at time.Time) ([]string, error)

	ListSettleable(ctx context.Context, employeeID, shopID string, start, end time.Time) ([]WorkShift, error)
	ListBySettlement(ctx context.Context, settlementID string) ([]WorkShift, error)
	// LinkSettlement stamps settlementID on ids that are still unsettled and
	// returns the number of rows claimed.
	LinkSettlement(ctx context.Context, ids []string, settlementID string, at time.Time) (int64, error)

	SumByEmployee(ctx context.Context, shopID string, start, end time.Time) ([]EmployeeShiftTotals, error)
}
