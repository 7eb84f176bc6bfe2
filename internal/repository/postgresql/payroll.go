package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/shift-payroll-backend/internal/domain/payroll"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const settlementColumns = `
	id, shop_id, employee_id, cycle_start, cycle_end, worked_minutes,
	base_pay, total_pay, income_tax, local_income_tax, other_tax, net_pay,
	settled_at, processed_by, note, created_at, updated_at`

type settlementRepository struct {
	db *database.DB
}

func NewSettlementRepository(db *database.DB) payroll.SettlementRepository {
	return &settlementRepository{db: db}
}

func scanSettlement(row pgx.Row) (payroll.Settlement, error) {
	var s payroll.Settlement
	err := row.Scan(
		&s.ID, &s.ShopID, &s.EmployeeID, &s.CycleStart, &s.CycleEnd, &s.WorkedMinutes,
		&s.BasePay, &s.TotalPay, &s.IncomeTax, &s.LocalIncomeTax, &s.OtherTax, &s.NetPay,
		&s.SettledAt, &s.ProcessedBy, &s.Note, &s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}

func settlementArgs(s payroll.Settlement) []interface{} {
	return []interface{}{
		s.ID, s.ShopID, s.EmployeeID, s.CycleStart, s.CycleEnd, s.WorkedMinutes,
		s.BasePay, s.TotalPay, s.IncomeTax, s.LocalIncomeTax, s.OtherTax, s.NetPay,
		s.SettledAt, s.ProcessedBy, s.Note, s.CreatedAt, s.UpdatedAt,
	}
}

// FindByCycleKey implements payroll.SettlementRepository.
func (r *settlementRepository) FindByCycleKey(ctx context.Context, employeeID string, cycleStart, cycleEnd time.Time) (payroll.Settlement, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + settlementColumns + `
		FROM payroll_settlements
		WHERE employee_id = $1 AND cycle_start = $2 AND cycle_end = $3
	`

	s, err := scanSettlement(q.QueryRow(ctx, query, employeeID, cycleStart, cycleEnd))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Settlement{}, payroll.ErrSettlementNotFound
		}
		return payroll.Settlement{}, fmt.Errorf("failed to find settlement by cycle: %w", err)
	}
	return s, nil
}

// Create implements payroll.SettlementRepository.
func (r *settlementRepository) Create(ctx context.Context, settlement payroll.Settlement) (payroll.Settlement, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_settlements (` + settlementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING ` + settlementColumns

	created, err := scanSettlement(q.QueryRow(ctx, query, settlementArgs(settlement)...))
	if err != nil {
		if constraintViolation(err, sqlStateUniqueViolation, "payroll_settlements_cycle_key") {
			return payroll.Settlement{}, payroll.ErrAlreadySettled
		}
		return payroll.Settlement{}, fmt.Errorf("failed to create settlement: %w", err)
	}
	return created, nil
}

// Upsert implements payroll.SettlementRepository. An existing row keeps its
// id and created_at.
func (r *settlementRepository) Upsert(ctx context.Context, settlement payroll.Settlement) (payroll.Settlement, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_settlements (` + settlementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT ON CONSTRAINT payroll_settlements_cycle_key DO UPDATE SET
			worked_minutes = EXCLUDED.worked_minutes,
			base_pay = EXCLUDED.base_pay,
			total_pay = EXCLUDED.total_pay,
			income_tax = EXCLUDED.income_tax,
			local_income_tax = EXCLUDED.local_income_tax,
			other_tax = EXCLUDED.other_tax,
			net_pay = EXCLUDED.net_pay,
			settled_at = EXCLUDED.settled_at,
			processed_by = EXCLUDED.processed_by,
			note = EXCLUDED.note,
			updated_at = EXCLUDED.updated_at
		RETURNING ` + settlementColumns

	saved, err := scanSettlement(q.QueryRow(ctx, query, settlementArgs(settlement)...))
	if err != nil {
		return payroll.Settlement{}, fmt.Errorf("failed to upsert settlement: %w", err)
	}
	return saved, nil
}

// GetByID implements payroll.SettlementRepository.
func (r *settlementRepository) GetByID(ctx context.Context, id string, shopID string) (payroll.Settlement, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + settlementColumns + ` FROM payroll_settlements WHERE id = $1 AND shop_id = $2`

	s, err := scanSettlement(q.QueryRow(ctx, query, id, shopID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Settlement{}, payroll.ErrSettlementNotFound
		}
		return payroll.Settlement{}, fmt.Errorf("failed to get settlement by ID: %w", err)
	}
	return s, nil
}

// List implements payroll.SettlementRepository.
func (r *settlementRepository) List(ctx context.Context, filter payroll.SettlementFilter) ([]payroll.Settlement, int64, error) {
	q := GetQuerier(ctx, r.db)

	where := []string{"shop_id = $1"}
	args := []interface{}{filter.ShopID}
	argIdx := 2

	if filter.EmployeeID != nil {
		where = append(where, fmt.Sprintf("employee_id = $%d", argIdx))
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.From != nil {
		where = append(where, fmt.Sprintf("cycle_start >= $%d", argIdx))
		args = append(args, *filter.From)
		argIdx++
	}
	if filter.To != nil {
		where = append(where, fmt.Sprintf("cycle_start <= $%d", argIdx))
		args = append(args, *filter.To)
	}
	whereClause := strings.Join(where, " AND ")

	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM payroll_settlements WHERE "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count settlements: %w", err)
	}

	query := fmt.Sprintf("SELECT %s FROM payroll_settlements WHERE %s ORDER BY cycle_start DESC, employee_id",
		settlementColumns, whereClause)
	if filter.Limit > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.Limit, (page-1)*filter.Limit)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list settlements: %w", err)
	}
	defer rows.Close()

	var settlements []payroll.Settlement
	for rows.Next() {
		s, err := scanSettlement(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan settlement: %w", err)
		}
		settlements = append(settlements, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate settlements: %w", err)
	}
	return settlements, total, nil
}
