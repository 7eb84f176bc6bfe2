package report

import (
	"context"

	"github.com/cmlabs-hris/shift-payroll-backend/internal/domain/user"
)

type ReportService interface {
	Overview(ctx context.Context, actor user.Actor, req PeriodRequest) (OverviewResponse, error)
	EmployeeSummaries(ctx context.Context, actor user.Actor, req PeriodRequest) (EmployeeSummaryResponse, error)
	ExportSettlementWorkbook(ctx context.Context, actor user.Actor, req PeriodRequest) (Export, error)
}
