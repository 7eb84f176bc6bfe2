package employee

import "context"

// EmployeeRepository is the read-only view of employee master data.
type EmployeeRepository interface {
	GetByID(ctx context.Context, id string, shopID string) (Employee, error)
	ListByShop(ctx context.Context, shopID string) ([]Employee, error)
	GetPayProfile(ctx context.Context, id string) (PayProfile, error)
}
