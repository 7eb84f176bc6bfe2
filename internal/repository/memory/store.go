// Package memory provides in-process repository implementations backed by
// maps. They mirror the PostgreSQL repositories closely enough for service
// tests and local runs without a database.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/cmlabs-hris/shift-payroll-backend/internal/domain/employee"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/domain/payroll"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/domain/shop"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/domain/workshift"
)

type Store struct {
	mu   sync.Mutex
	txMu sync.Mutex

	shifts      map[string]workshift.WorkShift
	settlements map[string]payroll.Settlement
	employees   map[string]employee.Employee
	shops       map[string]shop.Shop

	// EscalateHook, when set, runs before each sweep page update and can
	// fail it.
	EscalateHook func(ids []string) error
	// LinkHook, when set, runs before LinkSettlement and can fail it.
	LinkHook func(ids []string) error
}

func NewStore() *Store {
	return &Store{
		shifts:      make(map[string]workshift.WorkShift),
		settlements: make(map[string]payroll.Settlement),
		employees:   make(map[string]employee.Employee),
		shops:       make(map[string]shop.Shop),
	}
}

func (s *Store) Shifts() *ShiftRepository {
	return &ShiftRepository{store: s}
}

func (s *Store) Settlements() *SettlementRepository {
	return &SettlementRepository{store: s}
}

func (s *Store) Employees() *EmployeeRepository {
	return &EmployeeRepository{store: s}
}

func (s *Store) Shops() *ShopRepository {
	return &ShopRepository{store: s}
}

// PutEmployee seeds employee master data.
func (s *Store) PutEmployee(e employee.Employee) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees[e.ID] = e
}

// PutShop seeds shop master data.
func (s *Store) PutShop(sh shop.Shop) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shops[sh.ID] = sh
}

// WithinTx serialises transactions and restores a snapshot when fn fails.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(ctx); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type snapshot struct {
	shifts      map[string]workshift.WorkShift
	settlements map[string]payroll.Settlement
}

func (s *Store) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := snapshot{
		shifts:      make(map[string]workshift.WorkShift, len(s.shifts)),
		settlements: make(map[string]payroll.Settlement, len(s.settlements)),
	}
	for k, v := range s.shifts {
		snap.shifts[k] = cloneShift(v)
	}
	for k, v := range s.settlements {
		snap.settlements[k] = v
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shifts = snap.shifts
	s.settlements = snap.settlements
}

func paginate[T any](items []T, page, limit int) []T {
	if limit <= 0 {
		return items
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= len(items) {
		return []T{}
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
