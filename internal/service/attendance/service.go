package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/shift-payroll-backend/internal/domain/attendance"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/domain/employee"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/domain/user"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/domain/workshift"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/pkg/clock"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/pkg/kst"
	"github.com/google/uuid"
)

type AttendanceServiceImpl struct {
	shiftRepo    workshift.WorkShiftRepository
	employeeRepo employee.EmployeeRepository
	policy       attendance.Policy
	clock        clock.Clock
}

func NewAttendanceService(
	shiftRepo workshift.WorkShiftRepository,
	employeeRepo employee.EmployeeRepository,
	policy attendance.Policy,
	clk clock.Clock,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		shiftRepo:    shiftRepo,
		employeeRepo: employeeRepo,
		policy:       policy,
		clock:        clk,
	}
}

// ClockIn implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ClockIn(ctx context.Context, actor user.Actor, req attendance.ClockInRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}
	employeeID, err := actor.RequireEmployee()
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	if _, err := a.shiftRepo.GetOpenAttendance(ctx, employeeID); err == nil {
		return attendance.AttendanceResponse{}, attendance.ErrAlreadyClockedIn
	} else if !errors.Is(err, workshift.ErrShiftNotFound) {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to check open attendance: %w", err)
	}

	emp, err := a.employeeRepo.GetByID(ctx, employeeID, actor.ShopID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if err := emp.CheckActive(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	now := a.clock.Now()

	var shift workshift.WorkShift
	switch {
	case req.ShiftID != nil:
		shift, err = a.shiftRepo.GetByID(ctx, *req.ShiftID, actor.ShopID)
		if err != nil {
			return attendance.AttendanceResponse{}, err
		}
		if shift.EmployeeID != employeeID {
			return attendance.AttendanceResponse{}, workshift.ErrShiftNotFound
		}
		if !isClockable(shift) {
			return attendance.AttendanceResponse{}, attendance.ErrShiftNotClockable
		}
	default:
		shift, err = a.shiftRepo.FindClockInCandidate(ctx, employeeID, actor.ShopID, now, a.policy.EarlyWindow)
		if err != nil && !errors.Is(err, workshift.ErrShiftNotFound) {
			return attendance.AttendanceResponse{}, fmt.Errorf("failed to find shift to clock in: %w", err)
		}
	}

	if shift.ID == "" {
		return a.clockInImplicit(ctx, actor, employeeID, req, now)
	}

	shift.ActualInAt = &now
	shift.Status = workshift.StatusInProgress
	if req.Memo != nil {
		shift.Memo = req.Memo
	}
	shift.UpdatedBy = actor.UserID
	shift.UpdatedAt = now

	if err := a.shiftRepo.Update(ctx, shift); err != nil {
		return attendance.AttendanceResponse{}, err
	}
	return attendance.AttendanceResponse{Shift: workshift.NewShiftResponse(shift)}, nil
}

// clockInImplicit opens an unplanned shift starting now. Its end is set on
// clock-out.
func (a *AttendanceServiceImpl) clockInImplicit(ctx context.Context, actor user.Actor, employeeID string, req attendance.ClockInRequest, now time.Time) (attendance.AttendanceResponse, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to generate shift id: %w", err)
	}
	shift := workshift.WorkShift{
		ID:         id.String(),
		ShopID:     actor.ShopID,
		EmployeeID: employeeID,
		StartAt:    now,
		ActualInAt: &now,
		Status:     workshift.StatusInProgress,
		Memo:       req.Memo,
		CreatedBy:  actor.UserID,
		UpdatedBy:  actor.UserID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	created, err := a.shiftRepo.Create(ctx, shift)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	return attendance.AttendanceResponse{Shift: workshift.NewShiftResponse(created), Implicit: true}, nil
}

// isClockable reports whether an explicitly chosen shift can take a
// clock-in.
func isClockable(s workshift.WorkShift) bool {
	if s.IsSettled() || s.ActualInAt != nil {
		return false
	}
	switch s.Status {
	case workshift.StatusScheduled, workshift.StatusInProgress:
		return true
	}
	return false
}

// ClockOut implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ClockOut(ctx context.Context, actor user.Actor, req attendance.ClockOutRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}
	employeeID, err := actor.RequireEmployee()
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	shift, err := a.shiftRepo.GetOpenAttendance(ctx, employeeID)
	if err != nil {
		if errors.Is(err, workshift.ErrShiftNotFound) {
			return attendance.AttendanceResponse{}, attendance.ErrNotClockedIn
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get open attendance: %w", err)
	}

	now := a.clock.Now()
	implicit := shift.EndAt == nil
	if implicit {
		conflicts, err := a.shiftRepo.FindOverlapping(ctx, employeeID, shift.ShopID, *shift.ActualInAt, now, &shift.ID)
		if err != nil {
			return attendance.AttendanceResponse{}, fmt.Errorf("failed to check overlapping shifts: %w", err)
		}
		if len(conflicts) > 0 {
			return a.clockOutClamped(ctx, actor, shift, conflicts, req, now)
		}
		shift.EndAt = &now
	}

	actualMinutes := kst.ElapsedMinutes(*shift.ActualInAt, now)
	shift.ActualOutAt = &now
	shift.WorkedMinutes = a.policy.PayableMinutes(*shift.ActualInAt, now, shift.StartAt, *shift.EndAt)
	shift.Status = workshift.StatusCompleted

	profile, err := a.employeeRepo.GetPayProfile(ctx, employeeID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	shift.ApplyPay(profile)

	if req.Memo != nil {
		shift.Memo = req.Memo
	}
	shift.UpdatedBy = actor.UserID
	shift.UpdatedAt = now

	if err := a.shiftRepo.Update(ctx, shift); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	return attendance.AttendanceResponse{
		Shift:         workshift.NewShiftResponse(shift),
		Implicit:      implicit,
		ActualMinutes: &actualMinutes,
	}, nil
}

// clockOutClamped closes an implicit shift whose window ran into planned
// shifts. The end is cut at the earliest conflicting start and the row goes to
// REVIEW with reason EXTENDED so an admin settles the real window. When the
// conflict starts before the clock-in the end stays open and only the admin
// can set it.
func (a *AttendanceServiceImpl) clockOutClamped(ctx context.Context, actor user.Actor, shift workshift.WorkShift, conflicts []workshift.WorkShift, req attendance.ClockOutRequest, now time.Time) (attendance.AttendanceResponse, error) {
	end := conflicts[0].StartAt
	for _, c := range conflicts[1:] {
		if c.StartAt.Before(end) {
			end = c.StartAt
		}
	}
	if end.After(shift.StartAt) {
		shift.EndAt = &end
	}

	actualMinutes := kst.ElapsedMinutes(*shift.ActualInAt, now)
	reason := workshift.ReviewReasonExtended
	shift.ActualOutAt = &now
	shift.WorkedMinutes = 0
	shift.FinalPayAmount = nil
	shift.Status = workshift.StatusReview
	shift.ReviewReason = &reason
	shift.ReviewResolvedAt = nil
	if req.Memo != nil {
		shift.Memo = req.Memo
	}
	shift.UpdatedBy = actor.UserID
	shift.UpdatedAt = now

	if err := a.shiftRepo.Update(ctx, shift); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	slog.Warn("Implicit shift clamped at clock-out",
		"shift_id", shift.ID,
		"employee_id", shift.EmployeeID,
		"conflicts", len(conflicts))

	return attendance.AttendanceResponse{
		Shift:         workshift.NewShiftResponse(shift),
		Implicit:      true,
		ActualMinutes: &actualMinutes,
	}, nil
}

// GetMyStatus implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetMyStatus(ctx context.Context, actor user.Actor) (attendance.StatusResponse, error) {
	employeeID, err := actor.RequireEmployee()
	if err != nil {
		return attendance.StatusResponse{}, err
	}

	shift, err := a.shiftRepo.GetOpenAttendance(ctx, employeeID)
	if err != nil {
		if errors.Is(err, workshift.ErrShiftNotFound) {
			return attendance.StatusResponse{ClockedIn: false}, nil
		}
		return attendance.StatusResponse{}, fmt.Errorf("failed to get open attendance: %w", err)
	}

	resp := workshift.NewShiftResponse(shift)
	return attendance.StatusResponse{ClockedIn: true, Shift: &resp}, nil
}
