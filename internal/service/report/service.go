package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/shift-payroll-backend/internal/domain/attendance"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/domain/employee"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/domain/payroll"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/domain/report"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/domain/shop"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/domain/user"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/domain/workshift"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/pkg/kst"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"
)

const (
	sheetShifts  = "Shifts"
	sheetSummary = "Summary"
)

type ReportServiceImpl struct {
	shiftRepo      workshift.WorkShiftRepository
	employeeRepo   employee.EmployeeRepository
	settlementRepo payroll.SettlementRepository
	shopRepo       shop.ShopRepository
	rates          payroll.TaxRates
}

func NewReportService(
	shiftRepo workshift.WorkShiftRepository,
	employeeRepo employee.EmployeeRepository,
	settlementRepo payroll.SettlementRepository,
	shopRepo shop.ShopRepository,
	rates payroll.TaxRates,
) report.ReportService {
	return &ReportServiceImpl{
		shiftRepo:      shiftRepo,
		employeeRepo:   employeeRepo,
		settlementRepo: settlementRepo,
		shopRepo:       shopRepo,
		rates:          rates,
	}
}

func (s *ReportServiceImpl) resolve(ctx context.Context, actor user.Actor, req report.PeriodRequest) (payroll.Cycle, error) {
	if err := actor.RequireAdmin(); err != nil {
		return payroll.Cycle{}, err
	}
	if err := req.Validate(); err != nil {
		return payroll.Cycle{}, err
	}
	return payroll.ResolveCycle(ctx, s.shopRepo, actor.ShopID, req.CyclePeriod)
}

func bucketOf(w payroll.Withholding) report.Bucket {
	return report.Bucket{Gross: w.Gross, Withheld: w.Total(), Net: w.NetPay}
}

func addBucket(a, b report.Bucket) report.Bucket {
	return report.Bucket{Gross: a.Gross + b.Gross, Withheld: a.Withheld + b.Withheld, Net: a.Net + b.Net}
}

// periodTotals sums final pay of completed shifts per employee and withholds
// each employee total. The fixed bucket stays zero.
func (s *ReportServiceImpl) periodTotals(ctx context.Context, shopID string, cycle payroll.Cycle) (report.PeriodTotals, error) {
	totals, err := s.shiftRepo.SumByEmployee(ctx, shopID, cycle.Start, cycle.End)
	if err != nil {
		return report.PeriodTotals{}, fmt.Errorf("failed to sum shifts for cycle %s: %w", kst.CivilDate(cycle.Start), err)
	}

	out := report.PeriodTotals{
		CycleStart: cycle.Start.UTC().Format(time.RFC3339Nano),
		CycleEnd:   cycle.End.UTC().Format(time.RFC3339Nano),
	}
	for _, t := range totals {
		if t.GrossPay <= 0 {
			continue
		}
		out.Hourly = addBucket(out.Hourly, bucketOf(s.rates.Withhold(t.GrossPay)))
	}
	out.Total = addBucket(out.Fixed, out.Hourly)
	return out, nil
}

// Overview implements report.ReportService.
func (s *ReportServiceImpl) Overview(ctx context.Context, actor user.Actor, req report.PeriodRequest) (report.OverviewResponse, error) {
	cycle, err := s.resolve(ctx, actor, req)
	if err != nil {
		return report.OverviewResponse{}, err
	}

	var resp report.OverviewResponse
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		totals, err := s.periodTotals(gCtx, actor.ShopID, cycle)
		if err != nil {
			return err
		}
		resp.Current = totals
		return nil
	})

	g.Go(func() error {
		totals, err := s.periodTotals(gCtx, actor.ShopID, cycle.Previous())
		if err != nil {
			return err
		}
		resp.Previous = totals
		return nil
	})

	if err := g.Wait(); err != nil {
		return report.OverviewResponse{}, err
	}

	resp.Delta.Fixed = resp.Current.Fixed.Sub(resp.Previous.Fixed)
	resp.Delta.Hourly = resp.Current.Hourly.Sub(resp.Previous.Hourly)
	resp.Delta.Total = resp.Current.Total.Sub(resp.Previous.Total)
	return resp, nil
}

// extraMinutesByEmployee groups completed worked minutes per civil day of
// start and applies the daily extra-minutes rule.
func extraMinutesByEmployee(shifts []workshift.WorkShift) map[string]int {
	perDay := make(map[string]map[string]int)
	for _, shift := range shifts {
		days, ok := perDay[shift.EmployeeID]
		if !ok {
			days = make(map[string]int)
			perDay[shift.EmployeeID] = days
		}
		days[kst.CivilDate(shift.StartAt)] += shift.WorkedMinutes
	}

	extra := make(map[string]int, len(perDay))
	for employeeID, days := range perDay {
		for _, worked := range days {
			extra[employeeID] += attendance.CalcExtraMinutes(worked)
		}
	}
	return extra
}

// absenceDeduction is the monthly report deduction
// floor(pay × absent / planned). Settlement never applies it.
func absenceDeduction(monthlyPay int64, absent, planned int) int64 {
	if planned <= 0 || absent <= 0 {
		return 0
	}
	return decimal.NewFromInt(monthlyPay).
		Mul(decimal.NewFromInt(int64(absent))).
		Div(decimal.NewFromInt(int64(planned))).
		Floor().
		IntPart()
}

func (s *ReportServiceImpl) completedShifts(ctx context.Context, shopID string, cycle payroll.Cycle) ([]workshift.WorkShift, error) {
	from, to := cycle.Start, cycle.End
	shifts, _, err := s.shiftRepo.List(ctx, workshift.Filter{
		ShopID:    shopID,
		Statuses:  []workshift.Status{workshift.StatusCompleted},
		From:      &from,
		To:        &to,
		SortBy:    "start_at",
		SortOrder: "asc",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list completed shifts: %w", err)
	}
	return shifts, nil
}

// EmployeeSummaries implements report.ReportService.
func (s *ReportServiceImpl) EmployeeSummaries(ctx context.Context, actor user.Actor, req report.PeriodRequest) (report.EmployeeSummaryResponse, error) {
	cycle, err := s.resolve(ctx, actor, req)
	if err != nil {
		return report.EmployeeSummaryResponse{}, err
	}

	var (
		employees   []employee.Employee
		totals      []workshift.EmployeeShiftTotals
		completed   []workshift.WorkShift
		settlements []payroll.Settlement
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		employees, err = s.employeeRepo.ListByShop(gCtx, actor.ShopID)
		return err
	})
	g.Go(func() error {
		var err error
		totals, err = s.shiftRepo.SumByEmployee(gCtx, actor.ShopID, cycle.Start, cycle.End)
		return err
	})
	g.Go(func() error {
		var err error
		completed, err = s.completedShifts(gCtx, actor.ShopID, cycle)
		return err
	})
	g.Go(func() error {
		var err error
		settlements, _, err = s.settlementRepo.List(gCtx, payroll.SettlementFilter{
			ShopID: actor.ShopID,
			From:   &cycle.Start,
			To:     &cycle.Start,
		})
		if err != nil {
			return fmt.Errorf("failed to list settlements: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return report.EmployeeSummaryResponse{}, err
	}

	byEmployee := make(map[string]workshift.EmployeeShiftTotals, len(totals))
	for _, t := range totals {
		byEmployee[t.EmployeeID] = t
	}
	settled := make(map[string]bool, len(settlements))
	for _, st := range settlements {
		if st.CycleEnd.Equal(cycle.End) {
			settled[st.EmployeeID] = true
		}
	}
	extra := extraMinutesByEmployee(completed)

	resp := report.EmployeeSummaryResponse{
		CycleStart: cycle.Start.UTC().Format(time.RFC3339Nano),
		CycleEnd:   cycle.End.UTC().Format(time.RFC3339Nano),
		Employees:  make([]report.EmployeeSummary, 0, len(employees)),
	}
	for _, emp := range employees {
		t := byEmployee[emp.ID]
		summary := report.EmployeeSummary{
			EmployeeID:         emp.ID,
			EmployeeName:       emp.FullName,
			PlannedShifts:      t.PlannedShifts,
			CompletedShifts:    t.CompletedShifts,
			NoAttendanceShifts: t.NoAttendanceShifts,
			WorkedMinutes:      t.WorkedMinutes,
			ExtraMinutes:       extra[emp.ID],
		}
		if emp.PayUnit != nil {
			summary.PayUnit = string(*emp.PayUnit)
		}

		profile := emp.PayProfile()
		switch {
		case profile.IsHourly():
			w := payroll.NoWithholding(0)
			if t.GrossPay > 0 {
				w = s.rates.Withhold(t.GrossPay)
			}
			summary.Gross = w.Gross
			summary.Withheld = w.Total()
			summary.Net = w.NetPay
		case profile.IsMonthly():
			pay := profile.MonthlyPay()
			summary.Gross = pay
			summary.AbsenceDeduction = absenceDeduction(pay, t.NoAttendanceShifts, t.PlannedShifts)
			summary.Net = pay - summary.AbsenceDeduction
		}

		summary.Settled = settled[emp.ID]

		resp.Employees = append(resp.Employees, summary)
	}
	return resp, nil
}

// exportRows builds one export line per completed shift. Hourly final pay is
// withheld per shift; shifts without final pay export zero amounts.
func (s *ReportServiceImpl) exportRows(shifts []workshift.WorkShift, names map[string]string) []report.ShiftExportRow {
	rows := make([]report.ShiftExportRow, 0, len(shifts))
	for _, shift := range shifts {
		w := payroll.NoWithholding(0)
		if shift.FinalPayAmount != nil {
			w = s.rates.Withhold(*shift.FinalPayAmount)
		}
		rows = append(rows, report.ShiftExportRow{
			ShiftID:        shift.ID,
			EmployeeID:     shift.EmployeeID,
			EmployeeName:   names[shift.EmployeeID],
			Date:           kst.CivilDate(shift.StartAt),
			WorkedMinutes:  shift.WorkedMinutes,
			GrossPay:       w.Gross,
			IncomeTax:      w.IncomeTax,
			LocalIncomeTax: w.LocalIncomeTax,
			OtherTax:       w.OtherTax,
			NetPay:         w.NetPay,
		})
	}
	return rows
}

// ExportSettlementWorkbook implements report.ReportService.
func (s *ReportServiceImpl) ExportSettlementWorkbook(ctx context.Context, actor user.Actor, req report.PeriodRequest) (report.Export, error) {
	cycle, err := s.resolve(ctx, actor, req)
	if err != nil {
		return report.Export{}, err
	}

	employees, err := s.employeeRepo.ListByShop(ctx, actor.ShopID)
	if err != nil {
		return report.Export{}, fmt.Errorf("failed to list employees: %w", err)
	}
	names := make(map[string]string, len(employees))
	for _, emp := range employees {
		names[emp.ID] = emp.FullName
	}

	shifts, err := s.completedShifts(ctx, actor.ShopID, cycle)
	if err != nil {
		return report.Export{}, err
	}

	content, err := buildWorkbook(s.exportRows(shifts, names))
	if err != nil {
		slog.Error("Report: failed to build workbook", "shop_id", actor.ShopID, "error", err)
		return report.Export{}, fmt.Errorf("%w: %v", report.ErrExportFailed, err)
	}

	return report.Export{
		FileName: fmt.Sprintf("payroll_%04d-%02d.xlsx", cycle.Year, int(cycle.Month)),
		Content:  content,
	}, nil
}

func buildWorkbook(rows []report.ShiftExportRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetShifts); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(sheetShifts, "A1", &[]interface{}{
		"Shift ID", "Employee ID", "Employee", "Date", "Worked Minutes",
		"Gross Pay", "Income Tax", "Local Income Tax", "Other Tax", "Net Pay",
	}); err != nil {
		return nil, err
	}

	type summaryRow struct {
		name    string
		shifts  int
		minutes int
		totals  report.ShiftExportRow
	}
	var order []string
	summaries := make(map[string]*summaryRow)

	for i, r := range rows {
		if err := f.SetSheetRow(sheetShifts, fmt.Sprintf("A%d", i+2), &[]interface{}{
			r.ShiftID, r.EmployeeID, r.EmployeeName, r.Date, r.WorkedMinutes,
			r.GrossPay, r.IncomeTax, r.LocalIncomeTax, r.OtherTax, r.NetPay,
		}); err != nil {
			return nil, err
		}

		sum, ok := summaries[r.EmployeeID]
		if !ok {
			sum = &summaryRow{name: r.EmployeeName}
			summaries[r.EmployeeID] = sum
			order = append(order, r.EmployeeID)
		}
		sum.shifts++
		sum.minutes += r.WorkedMinutes
		sum.totals.GrossPay += r.GrossPay
		sum.totals.IncomeTax += r.IncomeTax
		sum.totals.LocalIncomeTax += r.LocalIncomeTax
		sum.totals.OtherTax += r.OtherTax
		sum.totals.NetPay += r.NetPay
	}

	if _, err := f.NewSheet(sheetSummary); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(sheetSummary, "A1", &[]interface{}{
		"Employee ID", "Employee", "Shifts", "Worked Minutes",
		"Gross Pay", "Income Tax", "Local Income Tax", "Other Tax", "Net Pay",
	}); err != nil {
		return nil, err
	}
	for i, employeeID := range order {
		sum := summaries[employeeID]
		if err := f.SetSheetRow(sheetSummary, fmt.Sprintf("A%d", i+2), &[]interface{}{
			employeeID, sum.name, sum.shifts, sum.minutes,
			sum.totals.GrossPay, sum.totals.IncomeTax, sum.totals.LocalIncomeTax, sum.totals.OtherTax, sum.totals.NetPay,
		}); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
