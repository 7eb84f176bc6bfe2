package payroll

import (
	"time"

	"github.com/cmlabs-hris/shift-payroll-backend/internal/pkg/kst"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/pkg/validator"
)

type CyclePeriod struct {
	Year          int  `json:"year" validate:"required,gte=2000,lte=2100"`
	Month         int  `json:"month" validate:"required,min=1,max=12"`
	CycleStartDay *int `json:"cycle_start_day" validate:"omitempty,min=1,max=28"`
}

type SettleEmployeeRequest struct {
	EmployeeID string  `json:"employee_id" validate:"required,uuid"`
	Note       *string `json:"note" validate:"omitempty,max=500"`
	CyclePeriod
}

func (r *SettleEmployeeRequest) Validate() error {
	return validator.Struct(r).OrNil()
}

type SettleAllRequest struct {
	Note *string `json:"note" validate:"omitempty,max=500"`
	CyclePeriod
}

func (r *SettleAllRequest) Validate() error {
	return validator.Struct(r).OrNil()
}

type SettlementFilterRequest struct {
	EmployeeID *string `json:"employee_id" validate:"omitempty,uuid"`
	Year       *int    `json:"year" validate:"omitempty,gte=2000,lte=2100"`
	Month      *int    `json:"month" validate:"omitempty,min=1,max=12"`
	Page       int     `json:"page" validate:"gte=0"`
	Limit      int     `json:"limit" validate:"gte=0,lte=100"`
}

func (f *SettlementFilterRequest) Validate() error {
	errs := validator.Struct(f)
	if f.Month != nil && f.Year == nil {
		errs.Add("year", "year is required when month is given")
	}
	if f.Page == 0 {
		f.Page = 1
	}
	if f.Limit == 0 {
		f.Limit = 20
	}
	return errs.OrNil()
}

// ToFilter bounds cycle_start by the requested civil year or month.
func (f SettlementFilterRequest) ToFilter(shopID string) SettlementFilter {
	filter := SettlementFilter{
		ShopID:     shopID,
		EmployeeID: f.EmployeeID,
		Page:       f.Page,
		Limit:      f.Limit,
	}
	switch {
	case f.Year != nil && f.Month != nil:
		from, to := kst.MonthRange(*f.Year, time.Month(*f.Month))
		filter.From, filter.To = &from, &to
	case f.Year != nil:
		from := kst.FromCivil(*f.Year, time.January, 1, 0, 0)
		to := kst.FromCivil(*f.Year+1, time.January, 1, 0, 0).Add(-time.Millisecond)
		filter.From, filter.To = &from, &to
	}
	return filter
}

type SettlementResponse struct {
	ID             string  `json:"id"`
	ShopID         string  `json:"shop_id"`
	EmployeeID     string  `json:"employee_id"`
	CycleStart     string  `json:"cycle_start"`
	CycleEnd       string  `json:"cycle_end"`
	WorkedMinutes  int     `json:"worked_minutes"`
	BasePay        int64   `json:"base_pay"`
	TotalPay       int64   `json:"total_pay"`
	IncomeTax      int64   `json:"income_tax"`
	LocalIncomeTax int64   `json:"local_income_tax"`
	OtherTax       int64   `json:"other_tax"`
	NetPay         int64   `json:"net_pay"`
	SettledAt      string  `json:"settled_at"`
	ProcessedBy    string  `json:"processed_by"`
	Note           *string `json:"note"`
}

func NewSettlementResponse(s Settlement) SettlementResponse {
	return SettlementResponse{
		ID:             s.ID,
		ShopID:         s.ShopID,
		EmployeeID:     s.EmployeeID,
		CycleStart:     s.CycleStart.UTC().Format(time.RFC3339Nano),
		CycleEnd:       s.CycleEnd.UTC().Format(time.RFC3339Nano),
		WorkedMinutes:  s.WorkedMinutes,
		BasePay:        s.BasePay,
		TotalPay:       s.TotalPay,
		IncomeTax:      s.IncomeTax,
		LocalIncomeTax: s.LocalIncomeTax,
		OtherTax:       s.OtherTax,
		NetPay:         s.NetPay,
		SettledAt:      s.SettledAt.UTC().Format(time.RFC3339),
		ProcessedBy:    s.ProcessedBy,
		Note:           s.Note,
	}
}

type SettleResult struct {
	Settlement        SettlementResponse `json:"settlement"`
	AppliedShiftCount int                `json:"applied_shift_count"`
}

type SkippedEmployee struct {
	EmployeeID string     `json:"employee_id"`
	Reason     SkipReason `json:"reason"`
	Message    string     `json:"message"`
}

type SettleAllResult struct {
	CycleStart   string            `json:"cycle_start"`
	CycleEnd     string            `json:"cycle_end"`
	CreatedCount int               `json:"created_count"`
	SkippedCount int               `json:"skipped_count"`
	Created      []SettleResult    `json:"created"`
	Skipped      []SkippedEmployee `json:"skipped"`
}

type ListSettlementResponse struct {
	TotalCount  int64                `json:"total_count"`
	Page        int                  `json:"page"`
	Limit       int                  `json:"limit"`
	TotalPages  int                  `json:"total_pages"`
	Settlements []SettlementResponse `json:"settlements"`
}
