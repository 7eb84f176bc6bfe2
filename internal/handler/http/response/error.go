package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/shift-payroll-backend/internal/domain/attendance"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/domain/employee"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/domain/payroll"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/domain/report"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/domain/shop"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/domain/user"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/domain/workshift"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/pkg/kst"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Caller errors
	case errors.Is(err, user.ErrInvalidToken):
		Unauthorized(w, "Invalid token")
	case errors.Is(err, user.ErrTokenRevoked):
		Unauthorized(w, "Token revoked")
	case errors.Is(err, user.ErrShopIDRequired):
		Unauthorized(w, "Token is not bound to a shop")
	case errors.Is(err, user.ErrAdminPrivilegeRequired):
		Forbidden(w, "Admin privilege required")
	case errors.Is(err, user.ErrEmployeeIDRequired):
		Forbidden(w, "This action requires an employee account")

	// Work shift domain errors
	case errors.Is(err, workshift.ErrShiftNotFound):
		NotFound(w, "Work shift not found")
	case errors.Is(err, workshift.ErrShiftOverlap):
		ConflictWithCode(w, "SHIFT_OVERLAP", "Work shift overlaps another shift")
	case errors.Is(err, workshift.ErrInvalidWindow):
		BadRequest(w, "end_at must be after start_at", nil)
	case errors.Is(err, workshift.ErrInvalidStatus):
		BadRequest(w, "Invalid shift status", nil)
	case errors.Is(err, workshift.ErrInvalidReviewReason):
		BadRequest(w, "Invalid review reason", nil)
	case errors.Is(err, workshift.ErrForbiddenTransition):
		ConflictWithCode(w, "FORBIDDEN_TRANSITION", "Shift status does not allow this change")
	case errors.Is(err, workshift.ErrShiftNotDeletable):
		ConflictWithCode(w, "SHIFT_NOT_DELETABLE", "Shift can no longer be deleted")
	case errors.Is(err, workshift.ErrShiftSettled):
		ConflictWithCode(w, "SHIFT_SETTLED", "Shift is already settled")

	// Attendance domain errors
	case errors.Is(err, attendance.ErrAlreadyClockedIn):
		BadRequest(w, "You already have an open attendance record", nil)
	case errors.Is(err, attendance.ErrNotClockedIn):
		BadRequest(w, "You have no open attendance record", nil)
	case errors.Is(err, attendance.ErrShiftNotClockable):
		ConflictWithCode(w, "SHIFT_NOT_CLOCKABLE", "Shift cannot accept a clock-in")

	// Payroll domain errors
	case errors.Is(err, payroll.ErrSettlementNotFound):
		NotFound(w, "Payroll settlement not found")
	case errors.Is(err, payroll.ErrAlreadySettled):
		ConflictWithCode(w, "ALREADY_SETTLED", "A settlement already exists for this employee and cycle")
	case errors.Is(err, payroll.ErrConcurrentSettlement):
		ConflictWithCode(w, "CONCURRENT_SETTLEMENT", "Shifts were claimed by another settlement")
	case errors.Is(err, payroll.ErrNoConfirmedShifts):
		BadRequest(w, "No completed hourly shifts to settle in this cycle", nil)
	case errors.Is(err, payroll.ErrNoPay):
		BadRequest(w, "Employee has no positive monthly pay configured", nil)
	case errors.Is(err, payroll.ErrNoPayUnit):
		BadRequest(w, "Employee has no pay unit configured", nil)
	case errors.Is(err, payroll.ErrInvalidCycle), errors.Is(err, kst.ErrInvalidCycleStartDay):
		BadRequest(w, "Invalid pay cycle", nil)

	// Collaborators
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrEmployeeInactive):
		BadRequest(w, "Employee is inactive", nil)
	case errors.Is(err, shop.ErrShopNotFound):
		NotFound(w, "Shop not found")

	case errors.Is(err, report.ErrExportFailed):
		InternalServerError(w, "Failed to build settlement workbook")

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
