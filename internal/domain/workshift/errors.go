package workshift

import "errors"

var (
	ErrShiftNotFound       = errors.New("work shift not found")
	ErrShiftOverlap        = errors.New("work shift overlaps another shift of the same employee")
	ErrInvalidWindow       = errors.New("end_at must be after start_at")
	ErrForbiddenTransition = errors.New("shift status does not allow this change")
	ErrShiftNotDeletable   = errors.New("shift has attendance, is settled or is no longer scheduled")
	ErrShiftSettled        = errors.New("shift is already settled")
	ErrInvalidStatus       = errors.New("invalid shift status")
	ErrInvalidReviewReason = errors.New("invalid review reason")
)
