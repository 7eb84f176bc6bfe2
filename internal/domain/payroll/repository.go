package payroll

import (
	"context"
	"time"
)

type SettlementFilter struct {
	ShopID     string
	EmployeeID *string
	From       *time.Time
	To         *time.Time
	Page       int
	Limit      int
}

type SettlementRepository interface {
	FindByCycleKey(ctx context.Context, employeeID string, cycleStart, cycleEnd time.Time) (Settlement, error)
	// Create returns ErrAlreadySettled when the cycle key is taken.
	Create(ctx context.Context, settlement Settlement) (Settlement, error)
	// Upsert writes the snapshot on the (employee, cycleStart, cycleEnd) key.
	Upsert(ctx context.Context, settlement Settlement) (Settlement, error)
	GetByID(ctx context.Context, id string, shopID string) (Settlement, error)
	List(ctx context.Context, filter SettlementFilter) ([]Settlement, int64, error)
}

// Transactor runs fn in one atomic unit; repositories called with the
// derived ctx join it.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
