package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/shift-payroll-backend/internal/domain/employee"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var e employee.Employee
	err := row.Scan(&e.ID, &e.ShopID, &e.FullName, &e.PayUnit, &e.Pay, &e.IsActive, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

// GetByID implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) GetByID(ctx context.Context, id string, shopID string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, shop_id, full_name, pay_unit, pay, is_active, created_at, updated_at
		FROM employees
		WHERE id = $1 AND shop_id = $2
	`

	e, err := scanEmployee(q.QueryRow(ctx, query, id, shopID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee by ID: %w", err)
	}
	return e, nil
}

// ListByShop returns the active employees of a shop ordered by id.
func (r *employeeRepositoryImpl) ListByShop(ctx context.Context, shopID string) ([]employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, shop_id, full_name, pay_unit, pay, is_active, created_at, updated_at
		FROM employees
		WHERE shop_id = $1 AND is_active = TRUE
		ORDER BY id
	`

	rows, err := q.Query(ctx, query, shopID)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var employees []employee.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate employees: %w", err)
	}
	return employees, nil
}

// GetPayProfile implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) GetPayProfile(ctx context.Context, id string) (employee.PayProfile, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT id, pay_unit, COALESCE(pay, 0) FROM employees WHERE id = $1`

	var p employee.PayProfile
	if err := q.QueryRow(ctx, query, id).Scan(&p.EmployeeID, &p.PayUnit, &p.Pay); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.PayProfile{}, employee.ErrEmployeeNotFound
		}
		return employee.PayProfile{}, fmt.Errorf("failed to get pay profile: %w", err)
	}
	return p, nil
}
