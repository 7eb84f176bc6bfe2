package payroll

import (
	"context"

	"github.com/cmlabs-hris/shift-payroll-backend/internal/domain/user"
)

type PayrollService interface {
	SettleEmployeeCycle(ctx context.Context, actor user.Actor, req SettleEmployeeRequest) (SettleResult, error)
	SettleAllEmployeesCycle(ctx context.Context, actor user.Actor, req SettleAllRequest) (SettleAllResult, error)
	RecomputeEmployeeCycle(ctx context.Context, actor user.Actor, req SettleEmployeeRequest) (SettleResult, error)

	GetSettlement(ctx context.Context, actor user.Actor, id string) (SettlementResponse, error)
	ListSettlements(ctx context.Context, actor user.Actor, req SettlementFilterRequest) (ListSettlementResponse, error)
}
