package workshift

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/cmlabs-hris/shift-payroll-backend/internal/domain/employee"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/domain/user"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/domain/workshift"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/pkg/clock"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/pkg/events"
	"github.com/google/uuid"
)

type WorkShiftServiceImpl struct {
	shiftRepo    workshift.WorkShiftRepository
	employeeRepo employee.EmployeeRepository
	publisher    events.Publisher
	clock        clock.Clock
}

func NewWorkShiftService(
	shiftRepo workshift.WorkShiftRepository,
	employeeRepo employee.EmployeeRepository,
	publisher events.Publisher,
	clk clock.Clock,
) workshift.WorkShiftService {
	return &WorkShiftServiceImpl{
		shiftRepo:    shiftRepo,
		employeeRepo: employeeRepo,
		publisher:    publisher,
		clock:        clk,
	}
}

// CheckOverlap rejects a planned window that intersects another live shift
// of the employee. The storage exclusion constraint backs this check.
func CheckOverlap(ctx context.Context, repo workshift.WorkShiftRepository, shift workshift.WorkShift, excludeSelf bool) error {
	if shift.EndAt == nil || shift.Status == workshift.StatusCanceled {
		return nil
	}
	var exclude *string
	if excludeSelf {
		exclude = &shift.ID
	}
	overlapping, err := repo.FindOverlapping(ctx, shift.EmployeeID, shift.ShopID, shift.StartAt, *shift.EndAt, exclude)
	if err != nil {
		return fmt.Errorf("failed to check overlapping shifts: %w", err)
	}
	if len(overlapping) > 0 {
		return workshift.ErrShiftOverlap
	}
	return nil
}

// loadForActor fetches a shift of the actor's shop. Employees only see their
// own shifts; anything else is reported as not found.
func (s *WorkShiftServiceImpl) loadForActor(ctx context.Context, actor user.Actor, id string) (workshift.WorkShift, error) {
	shift, err := s.shiftRepo.GetByID(ctx, id, actor.ShopID)
	if err != nil {
		return workshift.WorkShift{}, err
	}
	if !actor.IsAdmin && !actor.OwnsEmployee(shift.EmployeeID) {
		return workshift.WorkShift{}, workshift.ErrShiftNotFound
	}
	return shift, nil
}

func (s *WorkShiftServiceImpl) CreateShift(ctx context.Context, actor user.Actor, req workshift.CreateShiftRequest) (workshift.ShiftResponse, error) {
	if err := req.Validate(); err != nil {
		return workshift.ShiftResponse{}, err
	}

	var employeeID string
	switch {
	case req.EmployeeID != nil && !actor.OwnsEmployee(*req.EmployeeID):
		if err := actor.RequireAdmin(); err != nil {
			return workshift.ShiftResponse{}, err
		}
		employeeID = *req.EmployeeID
	default:
		id, err := actor.RequireEmployee()
		if err != nil {
			return workshift.ShiftResponse{}, err
		}
		employeeID = id
	}

	emp, err := s.employeeRepo.GetByID(ctx, employeeID, actor.ShopID)
	if err != nil {
		return workshift.ShiftResponse{}, err
	}
	if err := emp.CheckActive(); err != nil {
		return workshift.ShiftResponse{}, err
	}
	if err := workshift.ValidateWindow(req.Start, req.End); err != nil {
		return workshift.ShiftResponse{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return workshift.ShiftResponse{}, fmt.Errorf("failed to generate shift id: %w", err)
	}
	now := s.clock.Now()
	shift := workshift.WorkShift{
		ID:         id.String(),
		ShopID:     actor.ShopID,
		EmployeeID: employeeID,
		StartAt:    req.Start,
		EndAt:      req.End,
		Status:     workshift.StatusScheduled,
		Memo:       req.Memo,
		CreatedBy:  actor.UserID,
		UpdatedBy:  actor.UserID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	shift.WorkedMinutes = shift.PlannedMinutes()

	if err := CheckOverlap(ctx, s.shiftRepo, shift, false); err != nil {
		return workshift.ShiftResponse{}, err
	}

	created, err := s.shiftRepo.Create(ctx, shift)
	if err != nil {
		return workshift.ShiftResponse{}, err
	}
	return workshift.NewShiftResponse(created), nil
}

func (s *WorkShiftServiceImpl) GetShift(ctx context.Context, actor user.Actor, id string) (workshift.ShiftResponse, error) {
	shift, err := s.loadForActor(ctx, actor, id)
	if err != nil {
		return workshift.ShiftResponse{}, err
	}
	return workshift.NewShiftResponse(shift), nil
}

func (s *WorkShiftServiceImpl) ListShifts(ctx context.Context, actor user.Actor, req workshift.ShiftFilterRequest) (workshift.ListShiftResponse, error) {
	if err := req.Validate(); err != nil {
		return workshift.ListShiftResponse{}, err
	}

	filter := req.ToFilter(actor.ShopID)
	if !actor.IsAdmin {
		employeeID, err := actor.RequireEmployee()
		if err != nil {
			return workshift.ListShiftResponse{}, err
		}
		filter.EmployeeID = &employeeID
	}

	shifts, total, err := s.shiftRepo.List(ctx, filter)
	if err != nil {
		return workshift.ListShiftResponse{}, err
	}

	resp := workshift.ListShiftResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
		Shifts:     make([]workshift.ShiftResponse, 0, len(shifts)),
	}
	for _, shift := range shifts {
		resp.Shifts = append(resp.Shifts, workshift.NewShiftResponse(shift))
	}
	return resp, nil
}

// UpdateShiftByEmployee applies a self-edit. Every self-edit sends the shift
// back to REVIEW for an admin to confirm.
func (s *WorkShiftServiceImpl) UpdateShiftByEmployee(ctx context.Context, actor user.Actor, id string, req workshift.UpdateShiftRequest) (workshift.ShiftResponse, error) {
	if err := req.Validate(); err != nil {
		return workshift.ShiftResponse{}, err
	}
	employeeID, err := actor.RequireEmployee()
	if err != nil {
		return workshift.ShiftResponse{}, err
	}

	shift, err := s.shiftRepo.GetByID(ctx, id, actor.ShopID)
	if err != nil {
		return workshift.ShiftResponse{}, err
	}
	if shift.EmployeeID != employeeID {
		return workshift.ShiftResponse{}, workshift.ErrShiftNotFound
	}
	if err := shift.CheckEmployeeEditable(); err != nil {
		return workshift.ShiftResponse{}, err
	}

	oldPlanned := shift.PlannedMinutes()
	timesChanged := false
	if req.Start != nil && !req.Start.Equal(shift.StartAt) {
		shift.StartAt = *req.Start
		timesChanged = true
	}
	if req.End != nil && (shift.EndAt == nil || !req.End.Equal(*shift.EndAt)) {
		end := *req.End
		shift.EndAt = &end
		timesChanged = true
	}
	if err := workshift.ValidateWindow(shift.StartAt, shift.EndAt); err != nil {
		return workshift.ShiftResponse{}, err
	}
	if timesChanged {
		if err := CheckOverlap(ctx, s.shiftRepo, shift, true); err != nil {
			return workshift.ShiftResponse{}, err
		}
		shift.WorkedMinutes = shift.PlannedMinutes()
	}

	shift.Status = workshift.StatusReview
	shift.ReviewResolvedAt = nil
	shift.ReviewReason = nil
	if shift.PlannedMinutes() > oldPlanned {
		reason := workshift.ReviewReasonExtended
		shift.ReviewReason = &reason
	}
	shift.FinalPayAmount = nil
	if req.Memo != nil {
		shift.Memo = req.Memo
	}
	shift.UpdatedBy = actor.UserID
	shift.UpdatedAt = s.clock.Now()

	if err := s.shiftRepo.Update(ctx, shift); err != nil {
		return workshift.ShiftResponse{}, err
	}
	return workshift.NewShiftResponse(shift), nil
}

func (s *WorkShiftServiceImpl) UpdateShiftByAdmin(ctx context.Context, actor user.Actor, id string, req workshift.AdminUpdateShiftRequest) (workshift.ShiftResponse, error) {
	if err := actor.RequireAdmin(); err != nil {
		return workshift.ShiftResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return workshift.ShiftResponse{}, err
	}

	shift, err := s.shiftRepo.GetByID(ctx, id, actor.ShopID)
	if err != nil {
		return workshift.ShiftResponse{}, err
	}
	if shift.IsSettled() && req.TouchesSchedule() {
		return workshift.ShiftResponse{}, workshift.ErrShiftSettled
	}

	timesChanged := false
	if req.Start != nil && !req.Start.Equal(shift.StartAt) {
		shift.StartAt = *req.Start
		timesChanged = true
	}
	if req.End != nil && (shift.EndAt == nil || !req.End.Equal(*shift.EndAt)) {
		end := *req.End
		shift.EndAt = &end
		timesChanged = true
	}
	if err := workshift.ValidateWindow(shift.StartAt, shift.EndAt); err != nil {
		return workshift.ShiftResponse{}, err
	}

	statusChanged := req.State != nil && *req.State != shift.Status
	if req.State != nil {
		shift.Status = *req.State
	}
	if req.Reason != nil {
		if shift.Status != workshift.StatusReview {
			return workshift.ShiftResponse{}, workshift.ErrInvalidReviewReason
		}
		shift.ReviewReason = req.Reason
	}
	if statusChanged && shift.Status == workshift.StatusInProgress && !shift.IsOpenAttendance() {
		return workshift.ShiftResponse{}, workshift.ErrInvalidStatus
	}
	if shift.Status == workshift.StatusCompleted && shift.EndAt == nil {
		return workshift.ShiftResponse{}, workshift.ErrInvalidWindow
	}

	if timesChanged || statusChanged {
		if err := CheckOverlap(ctx, s.shiftRepo, shift, true); err != nil {
			return workshift.ShiftResponse{}, err
		}
	}
	if timesChanged {
		shift.WorkedMinutes = shift.PlannedMinutes()
	}

	if !shift.IsSettled() {
		profile, err := s.employeeRepo.GetPayProfile(ctx, shift.EmployeeID)
		if err != nil {
			return workshift.ShiftResponse{}, err
		}
		shift.ApplyPay(profile)
	}

	if req.Memo != nil {
		shift.Memo = req.Memo
	}
	if req.AdminChecked != nil {
		shift.AdminChecked = *req.AdminChecked
	}
	shift.UpdatedBy = actor.UserID
	shift.UpdatedAt = s.clock.Now()

	if err := s.shiftRepo.Update(ctx, shift); err != nil {
		return workshift.ShiftResponse{}, err
	}
	return workshift.NewShiftResponse(shift), nil
}

// ResolveReview completes a REVIEW shift with a corrected planned window.
// Worked minutes are the plain length of the corrected window; attendance
// grace does not apply to corrections.
func (s *WorkShiftServiceImpl) ResolveReview(ctx context.Context, actor user.Actor, id string, req workshift.ResolveReviewRequest) (workshift.ShiftResponse, error) {
	if err := actor.RequireAdmin(); err != nil {
		return workshift.ShiftResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return workshift.ShiftResponse{}, err
	}

	shift, err := s.shiftRepo.GetByID(ctx, id, actor.ShopID)
	if err != nil {
		return workshift.ShiftResponse{}, err
	}
	if shift.IsSettled() {
		return workshift.ShiftResponse{}, workshift.ErrShiftSettled
	}
	if shift.Status != workshift.StatusReview {
		return workshift.ShiftResponse{}, workshift.ErrForbiddenTransition
	}

	end := req.End
	if err := workshift.ValidateWindow(req.Start, &end); err != nil {
		return workshift.ShiftResponse{}, err
	}
	shift.StartAt = req.Start
	shift.EndAt = &end
	if err := CheckOverlap(ctx, s.shiftRepo, shift, true); err != nil {
		return workshift.ShiftResponse{}, err
	}

	profile, err := s.employeeRepo.GetPayProfile(ctx, shift.EmployeeID)
	if err != nil {
		return workshift.ShiftResponse{}, err
	}

	now := s.clock.Now()
	reviewer := actor.UserID
	shift.WorkedMinutes = shift.PlannedMinutes()
	shift.Status = workshift.StatusCompleted
	shift.ApplyPay(profile)
	shift.ReviewResolvedAt = &now
	shift.ReviewedBy = &reviewer
	if req.Memo != nil {
		shift.Memo = req.Memo
	}
	shift.UpdatedBy = actor.UserID
	shift.UpdatedAt = now

	if err := s.shiftRepo.Update(ctx, shift); err != nil {
		return workshift.ShiftResponse{}, err
	}

	s.publish(ctx, events.Event{
		Type:       events.TypeShiftReviewResolved,
		ShopID:     shift.ShopID,
		OccurredAt: now,
		Payload: map[string]interface{}{
			"shift_id":       shift.ID,
			"employee_id":    shift.EmployeeID,
			"worked_minutes": shift.WorkedMinutes,
			"reviewed_by":    reviewer,
		},
	})

	return workshift.NewShiftResponse(shift), nil
}

func (s *WorkShiftServiceImpl) CancelShift(ctx context.Context, actor user.Actor, id string) (workshift.ShiftResponse, error) {
	if err := actor.RequireAdmin(); err != nil {
		return workshift.ShiftResponse{}, err
	}

	shift, err := s.shiftRepo.GetByID(ctx, id, actor.ShopID)
	if err != nil {
		return workshift.ShiftResponse{}, err
	}
	if shift.IsSettled() {
		return workshift.ShiftResponse{}, workshift.ErrShiftSettled
	}
	if !shift.Status.IsOpen() {
		return workshift.ShiftResponse{}, workshift.ErrForbiddenTransition
	}

	shift.Status = workshift.StatusCanceled
	shift.FinalPayAmount = nil
	shift.UpdatedBy = actor.UserID
	shift.UpdatedAt = s.clock.Now()

	if err := s.shiftRepo.Update(ctx, shift); err != nil {
		return workshift.ShiftResponse{}, err
	}
	return workshift.NewShiftResponse(shift), nil
}

func (s *WorkShiftServiceImpl) DeleteShiftByEmployee(ctx context.Context, actor user.Actor, id string) error {
	employeeID, err := actor.RequireEmployee()
	if err != nil {
		return err
	}

	shift, err := s.shiftRepo.GetByID(ctx, id, actor.ShopID)
	if err != nil {
		return err
	}
	if shift.EmployeeID != employeeID {
		return workshift.ErrShiftNotFound
	}
	if err := shift.CheckEmployeeDeletable(); err != nil {
		return err
	}
	return s.shiftRepo.Delete(ctx, id, actor.ShopID)
}

// DeleteShiftByAdmin hard-deletes without lifecycle guards.
func (s *WorkShiftServiceImpl) DeleteShiftByAdmin(ctx context.Context, actor user.Actor, id string) error {
	if err := actor.RequireAdmin(); err != nil {
		return err
	}
	return s.shiftRepo.Delete(ctx, id, actor.ShopID)
}

func (s *WorkShiftServiceImpl) publish(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		slog.Warn("Failed to publish event", "type", event.Type, "error", err)
	}
}
