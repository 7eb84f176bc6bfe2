package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cmlabs-hris/shift-payroll-backend/internal/domain/employee"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/domain/payroll"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/domain/shop"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/domain/user"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/domain/workshift"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/pkg/clock"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/pkg/events"
	"github.com/google/uuid"
)

type PayrollServiceImpl struct {
	tx             payroll.Transactor
	settlementRepo payroll.SettlementRepository
	shiftRepo      workshift.WorkShiftRepository
	employeeRepo   employee.EmployeeRepository
	shopRepo       shop.ShopRepository
	rates          payroll.TaxRates
	publisher      events.Publisher
	clock          clock.Clock
}

func NewPayrollService(
	tx payroll.Transactor,
	settlementRepo payroll.SettlementRepository,
	shiftRepo workshift.WorkShiftRepository,
	employeeRepo employee.EmployeeRepository,
	shopRepo shop.ShopRepository,
	rates payroll.TaxRates,
	publisher events.Publisher,
	clk clock.Clock,
) payroll.PayrollService {
	return &PayrollServiceImpl{
		tx:             tx,
		settlementRepo: settlementRepo,
		shiftRepo:      shiftRepo,
		employeeRepo:   employeeRepo,
		shopRepo:       shopRepo,
		rates:          rates,
		publisher:      publisher,
		clock:          clk,
	}
}

// computation is the aggregate of one employee's shifts for a cycle.
type computation struct {
	workedMinutes int
	withholding   payroll.Withholding
}

// compute applies the pay unit rules. Only hourly pay is withheld.
func (s *PayrollServiceImpl) compute(profile employee.PayProfile, shifts []workshift.WorkShift) (computation, error) {
	var c computation
	for _, shift := range shifts {
		c.workedMinutes += shift.WorkedMinutes
	}

	switch {
	case profile.IsHourly():
		var gross int64
		for _, shift := range shifts {
			if shift.FinalPayAmount != nil {
				gross += *shift.FinalPayAmount
			}
		}
		if gross <= 0 {
			return computation{}, payroll.ErrNoConfirmedShifts
		}
		c.withholding = s.rates.Withhold(gross)
	case profile.IsMonthly():
		if !profile.Pay.IsPositive() {
			return computation{}, payroll.ErrNoPay
		}
		c.withholding = payroll.NoWithholding(profile.MonthlyPay())
	default:
		return computation{}, payroll.ErrNoPayUnit
	}
	return c, nil
}

func (s *PayrollServiceImpl) snapshot(actor user.Actor, employeeID string, cycle payroll.Cycle, c computation, note *string, now time.Time) payroll.Settlement {
	return payroll.Settlement{
		ShopID:         actor.ShopID,
		EmployeeID:     employeeID,
		CycleStart:     cycle.Start,
		CycleEnd:       cycle.End,
		WorkedMinutes:  c.workedMinutes,
		BasePay:        c.withholding.Gross,
		TotalPay:       c.withholding.Gross,
		IncomeTax:      c.withholding.IncomeTax,
		LocalIncomeTax: c.withholding.LocalIncomeTax,
		OtherTax:       c.withholding.OtherTax,
		NetPay:         c.withholding.NetPay,
		SettledAt:      now,
		ProcessedBy:    actor.UserID,
		Note:           note,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func shiftIDs(shifts []workshift.WorkShift) []string {
	ids := make([]string, 0, len(shifts))
	for _, shift := range shifts {
		ids = append(ids, shift.ID)
	}
	return ids
}

// settleOne runs the write-once settlement of one employee. Errors are
// returned unwrapped for domain conditions so bulk runs can classify them.
func (s *PayrollServiceImpl) settleOne(ctx context.Context, actor user.Actor, emp employee.Employee, cycle payroll.Cycle, note *string) (payroll.SettleResult, error) {
	_, err := s.settlementRepo.FindByCycleKey(ctx, emp.ID, cycle.Start, cycle.End)
	if err == nil {
		return payroll.SettleResult{}, payroll.ErrAlreadySettled
	}
	if !errors.Is(err, payroll.ErrSettlementNotFound) {
		return payroll.SettleResult{}, err
	}

	shifts, err := s.shiftRepo.ListSettleable(ctx, emp.ID, actor.ShopID, cycle.Start, cycle.End)
	if err != nil {
		return payroll.SettleResult{}, err
	}

	c, err := s.compute(emp.PayProfile(), shifts)
	if err != nil {
		return payroll.SettleResult{}, err
	}

	now := s.clock.Now()
	id, err := uuid.NewV7()
	if err != nil {
		return payroll.SettleResult{}, fmt.Errorf("failed to generate settlement id: %w", err)
	}
	settlement := s.snapshot(actor, emp.ID, cycle, c, note, now)
	settlement.ID = id.String()

	ids := shiftIDs(shifts)
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		created, err := s.settlementRepo.Create(ctx, settlement)
		if err != nil {
			return err
		}
		settlement = created

		if len(ids) == 0 {
			return nil
		}
		linked, err := s.shiftRepo.LinkSettlement(ctx, ids, created.ID, now)
		if err != nil {
			return err
		}
		if linked != int64(len(ids)) {
			return payroll.ErrConcurrentSettlement
		}
		return nil
	})
	if err != nil {
		return payroll.SettleResult{}, err
	}

	s.publishSettled(ctx, settlement, len(ids))

	return payroll.SettleResult{
		Settlement:        payroll.NewSettlementResponse(settlement),
		AppliedShiftCount: len(ids),
	}, nil
}

// SettleEmployeeCycle implements payroll.PayrollService.
func (s *PayrollServiceImpl) SettleEmployeeCycle(ctx context.Context, actor user.Actor, req payroll.SettleEmployeeRequest) (payroll.SettleResult, error) {
	if err := actor.RequireAdmin(); err != nil {
		return payroll.SettleResult{}, err
	}
	if err := req.Validate(); err != nil {
		return payroll.SettleResult{}, err
	}

	cycle, err := payroll.ResolveCycle(ctx, s.shopRepo, actor.ShopID, req.CyclePeriod)
	if err != nil {
		return payroll.SettleResult{}, err
	}
	emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID, actor.ShopID)
	if err != nil {
		return payroll.SettleResult{}, err
	}

	return s.settleOne(ctx, actor, emp, cycle, req.Note)
}

// SettleAllEmployeesCycle implements payroll.PayrollService. A failing
// employee is recorded as skipped and never aborts the run.
func (s *PayrollServiceImpl) SettleAllEmployeesCycle(ctx context.Context, actor user.Actor, req payroll.SettleAllRequest) (payroll.SettleAllResult, error) {
	if err := actor.RequireAdmin(); err != nil {
		return payroll.SettleAllResult{}, err
	}
	if err := req.Validate(); err != nil {
		return payroll.SettleAllResult{}, err
	}

	cycle, err := payroll.ResolveCycle(ctx, s.shopRepo, actor.ShopID, req.CyclePeriod)
	if err != nil {
		return payroll.SettleAllResult{}, err
	}
	employees, err := s.employeeRepo.ListByShop(ctx, actor.ShopID)
	if err != nil {
		return payroll.SettleAllResult{}, fmt.Errorf("failed to list employees: %w", err)
	}

	result := payroll.SettleAllResult{
		CycleStart: cycle.Start.UTC().Format(time.RFC3339Nano),
		CycleEnd:   cycle.End.UTC().Format(time.RFC3339Nano),
		Created:    make([]payroll.SettleResult, 0),
		Skipped:    make([]payroll.SkippedEmployee, 0),
	}
	for _, emp := range employees {
		settled, err := s.settleOne(ctx, actor, emp, cycle, req.Note)
		if err != nil {
			reason := payroll.SkipReasonFor(err)
			if reason == payroll.SkipError {
				slog.Error("Payroll: failed to settle employee", "employee_id", emp.ID, "error", err)
			}
			result.Skipped = append(result.Skipped, payroll.SkippedEmployee{
				EmployeeID: emp.ID,
				Reason:     reason,
				Message:    err.Error(),
			})
			continue
		}
		result.Created = append(result.Created, settled)
	}
	result.CreatedCount = len(result.Created)
	result.SkippedCount = len(result.Skipped)

	slog.Info("Payroll: bulk settlement finished",
		"shop_id", actor.ShopID,
		"cycle_start", result.CycleStart,
		"created", result.CreatedCount,
		"skipped", result.SkippedCount)

	return result, nil
}

// RecomputeEmployeeCycle re-aggregates a cycle on the same key: shifts
// already linked to the cycle's settlement plus newly settleable ones.
func (s *PayrollServiceImpl) RecomputeEmployeeCycle(ctx context.Context, actor user.Actor, req payroll.SettleEmployeeRequest) (payroll.SettleResult, error) {
	if err := actor.RequireAdmin(); err != nil {
		return payroll.SettleResult{}, err
	}
	if err := req.Validate(); err != nil {
		return payroll.SettleResult{}, err
	}

	cycle, err := payroll.ResolveCycle(ctx, s.shopRepo, actor.ShopID, req.CyclePeriod)
	if err != nil {
		return payroll.SettleResult{}, err
	}
	emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID, actor.ShopID)
	if err != nil {
		return payroll.SettleResult{}, err
	}

	now := s.clock.Now()
	var (
		settlement payroll.Settlement
		applied    int
	)
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var linked []workshift.WorkShift
		existing, err := s.settlementRepo.FindByCycleKey(ctx, emp.ID, cycle.Start, cycle.End)
		switch {
		case err == nil:
			linked, err = s.shiftRepo.ListBySettlement(ctx, existing.ID)
			if err != nil {
				return err
			}
		case !errors.Is(err, payroll.ErrSettlementNotFound):
			return err
		}

		fresh, err := s.shiftRepo.ListSettleable(ctx, emp.ID, actor.ShopID, cycle.Start, cycle.End)
		if err != nil {
			return err
		}

		c, err := s.compute(emp.PayProfile(), append(linked, fresh...))
		if err != nil {
			return err
		}

		next := s.snapshot(actor, emp.ID, cycle, c, req.Note, now)
		if existing.ID != "" {
			next.ID = existing.ID
			next.CreatedAt = existing.CreatedAt
		} else {
			id, err := uuid.NewV7()
			if err != nil {
				return fmt.Errorf("failed to generate settlement id: %w", err)
			}
			next.ID = id.String()
		}

		settlement, err = s.settlementRepo.Upsert(ctx, next)
		if err != nil {
			return err
		}

		applied = len(linked) + len(fresh)
		if len(fresh) == 0 {
			return nil
		}
		n, err := s.shiftRepo.LinkSettlement(ctx, shiftIDs(fresh), settlement.ID, now)
		if err != nil {
			return err
		}
		if n != int64(len(fresh)) {
			return payroll.ErrConcurrentSettlement
		}
		return nil
	})
	if err != nil {
		return payroll.SettleResult{}, err
	}

	s.publishSettled(ctx, settlement, applied)

	return payroll.SettleResult{
		Settlement:        payroll.NewSettlementResponse(settlement),
		AppliedShiftCount: applied,
	}, nil
}

func (s *PayrollServiceImpl) GetSettlement(ctx context.Context, actor user.Actor, id string) (payroll.SettlementResponse, error) {
	if err := actor.RequireAdmin(); err != nil {
		return payroll.SettlementResponse{}, err
	}
	settlement, err := s.settlementRepo.GetByID(ctx, id, actor.ShopID)
	if err != nil {
		return payroll.SettlementResponse{}, err
	}
	return payroll.NewSettlementResponse(settlement), nil
}

func (s *PayrollServiceImpl) ListSettlements(ctx context.Context, actor user.Actor, req payroll.SettlementFilterRequest) (payroll.ListSettlementResponse, error) {
	if err := actor.RequireAdmin(); err != nil {
		return payroll.ListSettlementResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return payroll.ListSettlementResponse{}, err
	}

	filter := req.ToFilter(actor.ShopID)
	settlements, total, err := s.settlementRepo.List(ctx, filter)
	if err != nil {
		return payroll.ListSettlementResponse{}, err
	}

	resp := payroll.ListSettlementResponse{
		TotalCount:  total,
		Page:        filter.Page,
		Limit:       filter.Limit,
		TotalPages:  int(math.Ceil(float64(total) / float64(filter.Limit))),
		Settlements: make([]payroll.SettlementResponse, 0, len(settlements)),
	}
	for _, settlement := range settlements {
		resp.Settlements = append(resp.Settlements, payroll.NewSettlementResponse(settlement))
	}
	return resp, nil
}

func (s *PayrollServiceImpl) publishSettled(ctx context.Context, settlement payroll.Settlement, shiftCount int) {
	event := events.Event{
		Type:       events.TypePayrollSettled,
		ShopID:     settlement.ShopID,
		OccurredAt: settlement.SettledAt,
		Payload: map[string]interface{}{
			"settlement_id": settlement.ID,
			"employee_id":   settlement.EmployeeID,
			"cycle_start":   settlement.CycleStart,
			"cycle_end":     settlement.CycleEnd,
			"total_pay":     settlement.TotalPay,
			"net_pay":       settlement.NetPay,
			"shift_count":   shiftCount,
		},
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		slog.Warn("Failed to publish event", "type", event.Type, "error", err)
	}
}
