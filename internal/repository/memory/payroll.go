package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/shift-payroll-backend/internal/domain/employee"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/domain/payroll"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/domain/shop"
	"github.com/google/uuid"
)

type SettlementRepository struct {
	store *Store
}

var _ payroll.SettlementRepository = (*SettlementRepository)(nil)

func (r *SettlementRepository) findByKeyLocked(employeeID string, start, end time.Time) (payroll.Settlement, bool) {
	for _, s := range r.store.settlements {
		if s.EmployeeID == employeeID && s.CycleStart.Equal(start) && s.CycleEnd.Equal(end) {
			return s, true
		}
	}
	return payroll.Settlement{}, false
}

func (r *SettlementRepository) FindByCycleKey(ctx context.Context, employeeID string, cycleStart, cycleEnd time.Time) (payroll.Settlement, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	s, ok := r.findByKeyLocked(employeeID, cycleStart, cycleEnd)
	if !ok {
		return payroll.Settlement{}, payroll.ErrSettlementNotFound
	}
	return s, nil
}

func (r *SettlementRepository) Create(ctx context.Context, settlement payroll.Settlement) (payroll.Settlement, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.findByKeyLocked(settlement.EmployeeID, settlement.CycleStart, settlement.CycleEnd); ok {
		return payroll.Settlement{}, payroll.ErrAlreadySettled
	}
	if settlement.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return payroll.Settlement{}, err
		}
		settlement.ID = id.String()
	}
	r.store.settlements[settlement.ID] = settlement
	return settlement, nil
}

func (r *SettlementRepository) Upsert(ctx context.Context, settlement payroll.Settlement) (payroll.Settlement, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if existing, ok := r.findByKeyLocked(settlement.EmployeeID, settlement.CycleStart, settlement.CycleEnd); ok {
		settlement.ID = existing.ID
		settlement.CreatedAt = existing.CreatedAt
	} else if settlement.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return payroll.Settlement{}, err
		}
		settlement.ID = id.String()
	}
	r.store.settlements[settlement.ID] = settlement
	return settlement, nil
}

func (r *SettlementRepository) GetByID(ctx context.Context, id string, shopID string) (payroll.Settlement, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	s, ok := r.store.settlements[id]
	if !ok || s.ShopID != shopID {
		return payroll.Settlement{}, payroll.ErrSettlementNotFound
	}
	return s, nil
}

func (r *SettlementRepository) List(ctx context.Context, filter payroll.SettlementFilter) ([]payroll.Settlement, int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var matched []payroll.Settlement
	for _, s := range r.store.settlements {
		if s.ShopID != filter.ShopID {
			continue
		}
		if filter.EmployeeID != nil && s.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.From != nil && s.CycleStart.Before(*filter.From) {
			continue
		}
		if filter.To != nil && s.CycleStart.After(*filter.To) {
			continue
		}
		matched = append(matched, s)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CycleStart.Equal(matched[j].CycleStart) {
			return matched[i].CycleStart.After(matched[j].CycleStart)
		}
		return matched[i].EmployeeID < matched[j].EmployeeID
	})

	total := int64(len(matched))
	return paginate(matched, filter.Page, filter.Limit), total, nil
}

type EmployeeRepository struct {
	store *Store
}

var _ employee.EmployeeRepository = (*EmployeeRepository)(nil)

func (r *EmployeeRepository) GetByID(ctx context.Context, id string, shopID string) (employee.Employee, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	e, ok := r.store.employees[id]
	if !ok || e.ShopID != shopID {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (r *EmployeeRepository) ListByShop(ctx context.Context, shopID string) ([]employee.Employee, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var result []employee.Employee
	for _, id := range sortedKeys(r.store.employees) {
		e := r.store.employees[id]
		if e.ShopID == shopID && e.IsActive {
			result = append(result, e)
		}
	}
	return result, nil
}

func (r *EmployeeRepository) GetPayProfile(ctx context.Context, id string) (employee.PayProfile, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	e, ok := r.store.employees[id]
	if !ok {
		return employee.PayProfile{}, employee.ErrEmployeeNotFound
	}
	return e.PayProfile(), nil
}

type ShopRepository struct {
	store *Store
}

var _ shop.ShopRepository = (*ShopRepository)(nil)

func (r *ShopRepository) GetByID(ctx context.Context, id string) (shop.Shop, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	s, ok := r.store.shops[id]
	if !ok {
		return shop.Shop{}, shop.ErrShopNotFound
	}
	return s, nil
}
