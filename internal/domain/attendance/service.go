package attendance

import (
	"context"

	"github.com/cmlabs-hris/shift-payroll-backend/internal/domain/user"
)

type AttendanceService interface {
	ClockIn(ctx context.Context, actor user.Actor, req ClockInRequest) (AttendanceResponse, error)
	ClockOut(ctx context.Context, actor user.Actor, req ClockOutRequest) (AttendanceResponse, error)
	GetMyStatus(ctx context.Context, actor user.Actor) (StatusResponse, error)
}
