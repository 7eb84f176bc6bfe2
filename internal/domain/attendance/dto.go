package attendance

import (
	"github.com/cmlabs-hris/shift-payroll-backend/internal/domain/workshift"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/pkg/validator"
)

type ClockInRequest struct {
	ShiftID *string `json:"shift_id" validate:"omitempty,uuid"`
	Memo    *string `json:"memo" validate:"omitempty,max=500"`
}

func (r *ClockInRequest) Validate() error {
	return validator.Struct(r).OrNil()
}

type ClockOutRequest struct {
	Memo *string `json:"memo" validate:"omitempty,max=500"`
}

func (r *ClockOutRequest) Validate() error {
	return validator.Struct(r).OrNil()
}

type AttendanceResponse struct {
	Shift         workshift.ShiftResponse `json:"shift"`
	Implicit      bool                    `json:"implicit"`
	ActualMinutes *int                    `json:"actual_minutes,omitempty"`
}

type StatusResponse struct {
	ClockedIn bool                     `json:"clocked_in"`
	Shift     *workshift.ShiftResponse `json:"shift,omitempty"`
}
