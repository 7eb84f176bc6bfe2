package workshift

import (
	"time"

	"github.com/cmlabs-hris/shift-payroll-backend/internal/domain/employee"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/pkg/kst"
)

type Status string

const (
	StatusScheduled  Status = "SCHEDULED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusCanceled   Status = "CANCELED"
	StatusReview     Status = "REVIEW"
)

var StatusValues = []string{
	string(StatusScheduled),
	string(StatusInProgress),
	string(StatusCompleted),
	string(StatusCanceled),
	string(StatusReview),
}

func (s Status) IsValid() bool {
	switch s {
	case StatusScheduled, StatusInProgress, StatusCompleted, StatusCanceled, StatusReview:
		return true
	}
	return false
}

// IsOpen reports whether the shift can still receive attendance or edits.
func (s Status) IsOpen() bool {
	return s == StatusScheduled || s == StatusInProgress
}

type ReviewReason string

const (
	ReviewReasonLateIn       ReviewReason = "LATE_IN"
	ReviewReasonEarlyOut     ReviewReason = "EARLY_OUT"
	ReviewReasonLateOut      ReviewReason = "LATE_OUT"
	ReviewReasonExtended     ReviewReason = "EXTENDED"
	ReviewReasonNoAttendance ReviewReason = "NO_ATTENDANCE"
)

var ReviewReasonValues = []string{
	string(ReviewReasonLateIn),
	string(ReviewReasonEarlyOut),
	string(ReviewReasonLateOut),
	string(ReviewReasonExtended),
	string(ReviewReasonNoAttendance),
}

func (r ReviewReason) IsValid() bool {
	switch r {
	case ReviewReasonLateIn, ReviewReasonEarlyOut, ReviewReasonLateOut, ReviewReasonExtended, ReviewReasonNoAttendance:
		return true
	}
	return false
}

type WorkShift struct {
	ID               string
	ShopID           string
	EmployeeID       string
	StartAt          time.Time
	EndAt            *time.Time
	ActualInAt       *time.Time
	ActualOutAt      *time.Time
	Status           Status
	ReviewReason     *ReviewReason
	ReviewResolvedAt *time.Time
	ReviewedBy       *string
	Memo             *string
	WorkedMinutes    int
	FinalPayAmount   *int64
	SettlementID     *string
	AdminChecked     bool
	CreatedBy        string
	UpdatedBy        string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (s WorkShift) IsSettled() bool {
	return s.SettlementID != nil
}

func (s WorkShift) HasAttendance() bool {
	return s.ActualInAt != nil || s.ActualOutAt != nil
}

// IsOpenAttendance reports whether the employee clocked in on this shift and
// has not clocked out yet.
func (s WorkShift) IsOpenAttendance() bool {
	return s.ActualInAt != nil && s.ActualOutAt == nil && s.Status == StatusInProgress
}

// PlannedMinutes returns the planned duration, or 0 while the shift is
// open-ended.
func (s WorkShift) PlannedMinutes() int {
	if s.EndAt == nil {
		return 0
	}
	return kst.ElapsedMinutes(s.StartAt, *s.EndAt)
}

// Overlaps reports whether the half-open planned window intersects
// [start, end).
func (s WorkShift) Overlaps(start, end time.Time) bool {
	if s.EndAt == nil || s.Status == StatusCanceled {
		return false
	}
	return s.StartAt.Before(end) && start.Before(*s.EndAt)
}

// CheckEmployeeEditable guards employee self-edits.
func (s WorkShift) CheckEmployeeEditable() error {
	if s.IsSettled() {
		return ErrShiftSettled
	}
	if !s.Status.IsOpen() {
		return ErrForbiddenTransition
	}
	return nil
}

// CheckEmployeeDeletable guards employee deletion.
func (s WorkShift) CheckEmployeeDeletable() error {
	if s.HasAttendance() || s.IsSettled() {
		return ErrShiftNotDeletable
	}
	switch s.Status {
	case StatusInProgress, StatusCompleted, StatusCanceled:
		return ErrShiftNotDeletable
	}
	return nil
}

// ApplyPay sets FinalPayAmount for completed shifts of hourly employees and
// clears it otherwise.
func (s *WorkShift) ApplyPay(profile employee.PayProfile) {
	if s.Status == StatusCompleted && profile.IsHourly() {
		amount := profile.PayForMinutes(s.WorkedMinutes)
		s.FinalPayAmount = &amount
		return
	}
	s.FinalPayAmount = nil
}

// ValidateWindow enforces start < end when end is known.
func ValidateWindow(start time.Time, end *time.Time) error {
	if end != nil && !end.After(start) {
		return ErrInvalidWindow
	}
	return nil
}
