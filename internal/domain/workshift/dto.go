package workshift

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/shift-payroll-backend/internal/pkg/kst"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/pkg/validator"
)

type CreateShiftRequest struct {
	EmployeeID *string `json:"employee_id" validate:"omitempty,uuid"`
	StartAt    string  `json:"start_at" validate:"required"`
	EndAt      *string `json:"end_at"`
	Memo       *string `json:"memo" validate:"omitempty,max=500"`

	Start time.Time  `json:"-"`
	End   *time.Time `json:"-"`
}

func (r *CreateShiftRequest) Validate() error {
	errs := validator.Struct(r)

	if start, ok := validator.ParseDateTimeField(&errs, "start_at", r.StartAt); ok {
		r.Start = start
	}
	if r.EndAt != nil {
		if end, ok := validator.ParseDateTimeField(&errs, "end_at", *r.EndAt); ok {
			r.End = &end
		}
	}

	return errs.OrNil()
}

// UpdateShiftRequest is an employee self-edit.
type UpdateShiftRequest struct {
	StartAt *string `json:"start_at"`
	EndAt   *string `json:"end_at"`
	Memo    *string `json:"memo" validate:"omitempty,max=500"`

	Start *time.Time `json:"-"`
	End   *time.Time `json:"-"`
}

func (r *UpdateShiftRequest) Validate() error {
	errs := validator.Struct(r)

	if r.StartAt != nil {
		if start, ok := validator.ParseDateTimeField(&errs, "start_at", *r.StartAt); ok {
			r.Start = &start
		}
	}
	if r.EndAt != nil {
		if end, ok := validator.ParseDateTimeField(&errs, "end_at", *r.EndAt); ok {
			r.End = &end
		}
	}
	if r.StartAt == nil && r.EndAt == nil && r.Memo == nil {
		errs.Add("request", "at least one of start_at, end_at or memo is required")
	}

	return errs.OrNil()
}

type AdminUpdateShiftRequest struct {
	StartAt      *string `json:"start_at"`
	EndAt        *string `json:"end_at"`
	Status       *string `json:"status"`
	ReviewReason *string `json:"review_reason"`
	Memo         *string `json:"memo" validate:"omitempty,max=500"`
	AdminChecked *bool   `json:"admin_checked"`

	Start  *time.Time    `json:"-"`
	End    *time.Time    `json:"-"`
	State  *Status       `json:"-"`
	Reason *ReviewReason `json:"-"`
}

func (r *AdminUpdateShiftRequest) Validate() error {
	errs := validator.Struct(r)

	if r.StartAt != nil {
		if start, ok := validator.ParseDateTimeField(&errs, "start_at", *r.StartAt); ok {
			r.Start = &start
		}
	}
	if r.EndAt != nil {
		if end, ok := validator.ParseDateTimeField(&errs, "end_at", *r.EndAt); ok {
			r.End = &end
		}
	}
	if r.Status != nil {
		s := Status(strings.ToUpper(*r.Status))
		if !s.IsValid() {
			errs.Add("status", "status must be one of: "+strings.Join(StatusValues, ", "))
		} else {
			r.State = &s
		}
	}
	if r.ReviewReason != nil {
		rr := ReviewReason(strings.ToUpper(*r.ReviewReason))
		if !rr.IsValid() {
			errs.Add("review_reason", "review_reason must be one of: "+strings.Join(ReviewReasonValues, ", "))
		} else {
			r.Reason = &rr
		}
	}

	return errs.OrNil()
}

// TouchesSchedule reports whether the edit changes times or status.
func (r *AdminUpdateShiftRequest) TouchesSchedule() bool {
	return r.Start != nil || r.End != nil || r.State != nil || r.Reason != nil
}

type ResolveReviewRequest struct {
	StartAt string  `json:"start_at" validate:"required"`
	EndAt   string  `json:"end_at" validate:"required"`
	Memo    *string `json:"memo" validate:"omitempty,max=500"`

	Start time.Time `json:"-"`
	End   time.Time `json:"-"`
}

func (r *ResolveReviewRequest) Validate() error {
	errs := validator.Struct(r)

	if start, ok := validator.ParseDateTimeField(&errs, "start_at", r.StartAt); ok {
		r.Start = start
	}
	if end, ok := validator.ParseDateTimeField(&errs, "end_at", r.EndAt); ok {
		r.End = end
	}

	return errs.OrNil()
}

// ShiftFilterRequest is parsed from query parameters. Dates are KST civil
// dates and bound start_at inclusively.
type ShiftFilterRequest struct {
	EmployeeID *string `json:"employee_id" validate:"omitempty,uuid"`
	Status     *string `json:"status"`
	FromDate   *string `json:"from_date"`
	ToDate     *string `json:"to_date"`
	Settled    *bool   `json:"settled"`
	Page       int     `json:"page"`
	Limit      int     `json:"limit"`
	SortBy     string  `json:"sort_by"`
	SortOrder  string  `json:"sort_order"`
}

var sortableColumns = []string{"start_at", "end_at", "created_at", "status"}

func (f *ShiftFilterRequest) Validate() error {
	errs := validator.Struct(f)

	if f.Page < 0 {
		errs.Add("page", "page must be a positive number")
	}
	if f.Page == 0 {
		f.Page = 1
	}
	if f.Limit < 0 {
		errs.Add("limit", "limit must be a positive number")
	}
	if f.Limit == 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		errs.Add("limit", "limit must not exceed 100")
	}
	if f.Status != nil {
		for _, s := range strings.Split(*f.Status, ",") {
			if !Status(strings.ToUpper(strings.TrimSpace(s))).IsValid() {
				errs.Add("status", "status must be one of: "+strings.Join(StatusValues, ", "))
				break
			}
		}
	}
	if f.FromDate != nil {
		if _, ok := validator.IsValidDate(*f.FromDate); !ok {
			errs.Add("from_date", "from_date must be YYYY-MM-DD")
		}
	}
	if f.ToDate != nil {
		if _, ok := validator.IsValidDate(*f.ToDate); !ok {
			errs.Add("to_date", "to_date must be YYYY-MM-DD")
		}
	}
	if f.SortBy == "" {
		f.SortBy = "start_at"
	}
	if !validator.IsInSlice(f.SortBy, sortableColumns) {
		errs.Add("sort_by", "sort_by must be one of: "+strings.Join(sortableColumns, ", "))
	}
	f.SortOrder = strings.ToLower(f.SortOrder)
	if f.SortOrder == "" {
		f.SortOrder = "desc"
	}
	if f.SortOrder != "asc" && f.SortOrder != "desc" {
		errs.Add("sort_order", "sort_order must be asc or desc")
	}

	return errs.OrNil()
}

// ToFilter converts a validated request into a repository filter.
func (f ShiftFilterRequest) ToFilter(shopID string) Filter {
	filter := Filter{
		ShopID:     shopID,
		EmployeeID: f.EmployeeID,
		Settled:    f.Settled,
		Page:       f.Page,
		Limit:      f.Limit,
		SortBy:     f.SortBy,
		SortOrder:  f.SortOrder,
	}
	if f.Status != nil {
		for _, s := range strings.Split(*f.Status, ",") {
			filter.Statuses = append(filter.Statuses, Status(strings.ToUpper(strings.TrimSpace(s))))
		}
	}
	if f.FromDate != nil {
		d, _ := validator.IsValidDate(*f.FromDate)
		from := kst.FromCivil(d.Year(), d.Month(), d.Day(), 0, 0)
		filter.From = &from
	}
	if f.ToDate != nil {
		d, _ := validator.IsValidDate(*f.ToDate)
		to := kst.EndOfDay(kst.FromCivil(d.Year(), d.Month(), d.Day(), 0, 0))
		filter.To = &to
	}
	return filter
}

type ShiftResponse struct {
	ID               string  `json:"id"`
	ShopID           string  `json:"shop_id"`
	EmployeeID       string  `json:"employee_id"`
	StartAt          string  `json:"start_at"`
	EndAt            *string `json:"end_at"`
	ActualInAt       *string `json:"actual_in_at"`
	ActualOutAt      *string `json:"actual_out_at"`
	Status           string  `json:"status"`
	ReviewReason     *string `json:"review_reason"`
	ReviewResolvedAt *string `json:"review_resolved_at"`
	ReviewedBy       *string `json:"reviewed_by"`
	Memo             *string `json:"memo"`
	WorkedMinutes    int     `json:"worked_minutes"`
	FinalPayAmount   *int64  `json:"final_pay_amount"`
	SettlementID     *string `json:"settlement_id"`
	IsSettled        bool    `json:"is_settled"`
	AdminChecked     bool    `json:"admin_checked"`
	CreatedBy        string  `json:"created_by"`
	UpdatedBy        string  `json:"updated_by"`
	CreatedAt        string  `json:"created_at"`
	UpdatedAt        string  `json:"updated_at"`
}

type ListShiftResponse struct {
	TotalCount int64           `json:"total_count"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
	Shifts     []ShiftResponse `json:"shifts"`
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

func NewShiftResponse(s WorkShift) ShiftResponse {
	resp := ShiftResponse{
		ID:               s.ID,
		ShopID:           s.ShopID,
		EmployeeID:       s.EmployeeID,
		StartAt:          s.StartAt.UTC().Format(time.RFC3339),
		EndAt:            formatTime(s.EndAt),
		ActualInAt:       formatTime(s.ActualInAt),
		ActualOutAt:      formatTime(s.ActualOutAt),
		Status:           string(s.Status),
		ReviewResolvedAt: formatTime(s.ReviewResolvedAt),
		ReviewedBy:       s.ReviewedBy,
		Memo:             s.Memo,
		WorkedMinutes:    s.WorkedMinutes,
		FinalPayAmount:   s.FinalPayAmount,
		SettlementID:     s.SettlementID,
		IsSettled:        s.IsSettled(),
		AdminChecked:     s.AdminChecked,
		CreatedBy:        s.CreatedBy,
		UpdatedBy:        s.UpdatedBy,
		CreatedAt:        s.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:        s.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if s.ReviewReason != nil {
		r := string(*s.ReviewReason)
		resp.ReviewReason = &r
	}
	return resp
}
