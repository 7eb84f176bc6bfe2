package report

import (
	"time"

	"github.com/cmlabs-hris/shift-payroll-backend/internal/domain/payroll"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/pkg/validator"
)

type PeriodRequest struct {
	payroll.CyclePeriod
}

func (r *PeriodRequest) Validate() error {
	return validator.Struct(r).OrNil()
}

func (r PeriodRequest) MonthValue() time.Month {
	return time.Month(r.Month)
}

type Bucket struct {
	Gross    int64 `json:"gross"`
	Withheld int64 `json:"withheld"`
	Net      int64 `json:"net"`
}

func (b Bucket) Sub(o Bucket) Bucket {
	return Bucket{Gross: b.Gross - o.Gross, Withheld: b.Withheld - o.Withheld, Net: b.Net - o.Net}
}

type PeriodTotals struct {
	CycleStart string `json:"cycle_start"`
	CycleEnd   string `json:"cycle_end"`
	Fixed      Bucket `json:"fixed"`
	Hourly     Bucket `json:"hourly"`
	Total      Bucket `json:"total"`
}

type OverviewResponse struct {
	Current  PeriodTotals `json:"current"`
	Previous PeriodTotals `json:"previous"`
	Delta    struct {
		Fixed  Bucket `json:"fixed"`
		Hourly Bucket `json:"hourly"`
		Total  Bucket `json:"total"`
	} `json:"delta"`
}

type EmployeeSummary struct {
	EmployeeID         string `json:"employee_id"`
	EmployeeName       string `json:"employee_name"`
	PayUnit            string `json:"pay_unit"`
	PlannedShifts      int    `json:"planned_shifts"`
	CompletedShifts    int    `json:"completed_shifts"`
	NoAttendanceShifts int    `json:"no_attendance_shifts"`
	WorkedMinutes      int    `json:"worked_minutes"`
	ExtraMinutes       int    `json:"extra_minutes"`
	Gross              int64  `json:"gross"`
	Withheld           int64  `json:"withheld"`
	AbsenceDeduction   int64  `json:"absence_deduction"`
	Net                int64  `json:"net"`
	Settled            bool   `json:"settled"`
}

type EmployeeSummaryResponse struct {
	CycleStart string            `json:"cycle_start"`
	CycleEnd   string            `json:"cycle_end"`
	Employees  []EmployeeSummary `json:"employees"`
}

// ShiftExportRow is one line of the settlement workbook.
type ShiftExportRow struct {
	ShiftID        string
	EmployeeID     string
	EmployeeName   string
	Date           string
	WorkedMinutes  int
	GrossPay       int64
	IncomeTax      int64
	LocalIncomeTax int64
	OtherTax       int64
	NetPay         int64
}

type Export struct {
	FileName string
	Content  []byte
}
