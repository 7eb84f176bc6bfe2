package workshift

import (
	"context"

	"github.com/cmlabs-hris/shift-payroll-backend/internal/domain/user"
)

type WorkShiftService interface {
	CreateShift(ctx context.Context, actor user.Actor, req CreateShiftRequest) (ShiftResponse, error)
	GetShift(ctx context.Context, actor user.Actor, id string) (ShiftResponse, error)
	ListShifts(ctx context.Context, actor user.Actor, req ShiftFilterRequest) (ListShiftResponse, error)

	UpdateShiftByEmployee(ctx context.Context, actor user.Actor, id string, req UpdateShiftRequest) (ShiftResponse, error)
	UpdateShiftByAdmin(ctx context.Context, actor user.Actor, id string, req AdminUpdateShiftRequest) (ShiftResponse, error)
	ResolveReview(ctx context.Context, actor user.Actor, id string, req ResolveReviewRequest) (ShiftResponse, error)
	CancelShift(ctx context.Context, actor user.Actor, id string) (ShiftResponse, error)

	DeleteShiftByEmployee(ctx context.Context, actor user.Actor, id string) error
	DeleteShiftByAdmin(ctx context.Context, actor user.Actor, id string) error
}
