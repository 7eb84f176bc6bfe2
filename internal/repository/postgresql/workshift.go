package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/shift-payroll-backend/internal/domain/workshift"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const workShiftColumns = `
	id, shop_id, employee_id, start_at, end_at, actual_in_at, actual_out_at,
	status, review_reason, review_resolved_at, reviewed_by, memo,
	worked_minutes, final_pay_amount, settlement_id, admin_checked,
	created_by, updated_by, created_at, updated_at`

type workShiftRepositoryImpl struct {
	db *database.DB
}

func NewWorkShiftRepository(db *database.DB) workshift.WorkShiftRepository {
	return &workShiftRepositoryImpl{db: db}
}

func scanWorkShift(row pgx.Row) (workshift.WorkShift, error) {
	var s workshift.WorkShift
	err := row.Scan(
		&s.ID, &s.ShopID, &s.EmployeeID, &s.StartAt, &s.EndAt, &s.ActualInAt, &s.ActualOutAt,
		&s.Status, &s.ReviewReason, &s.ReviewResolvedAt, &s.ReviewedBy, &s.Memo,
		&s.WorkedMinutes, &s.FinalPayAmount, &s.SettlementID, &s.AdminChecked,
		&s.CreatedBy, &s.UpdatedBy, &s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}

func collectWorkShifts(rows pgx.Rows) ([]workshift.WorkShift, error) {
	defer rows.Close()

	var shifts []workshift.WorkShift
	for rows.Next() {
		s, err := scanWorkShift(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan work shift: %w", err)
		}
		shifts = append(shifts, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate work shifts: %w", err)
	}
	return shifts, nil
}

func mapWorkShiftWriteError(op string, err error) error {
	if constraintViolation(err, sqlStateExclusionViolation, "no_overlapping_work_shifts") {
		return workshift.ErrShiftOverlap
	}
	return fmt.Errorf("failed to %s work shift: %w", op, err)
}

// Create implements workshift.WorkShiftRepository.
func (r *workShiftRepositoryImpl) Create(ctx context.Context, shift workshift.WorkShift) (workshift.WorkShift, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO work_shifts (
			id, shop_id, employee_id, start_at, end_at, actual_in_at, actual_out_at,
			status, review_reason, review_resolved_at, reviewed_by, memo,
			worked_minutes, final_pay_amount, settlement_id, admin_checked,
			created_by, updated_by, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19, $20
		) RETURNING ` + workShiftColumns

	created, err := scanWorkShift(q.QueryRow(ctx, query,
		shift.ID, shift.ShopID, shift.EmployeeID, shift.StartAt, shift.EndAt, shift.ActualInAt, shift.ActualOutAt,
		shift.Status, shift.ReviewReason, shift.ReviewResolvedAt, shift.ReviewedBy, shift.Memo,
		shift.WorkedMinutes, shift.FinalPayAmount, shift.SettlementID, shift.AdminChecked,
		shift.CreatedBy, shift.UpdatedBy, shift.CreatedAt, shift.UpdatedAt,
	))
	if err != nil {
		return workshift.WorkShift{}, mapWorkShiftWriteError("create", err)
	}
	return created, nil
}

// GetByID implements workshift.WorkShiftRepository.
func (r *workShiftRepositoryImpl) GetByID(ctx context.Context, id string, shopID string) (workshift.WorkShift, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + workShiftColumns + ` FROM work_shifts WHERE id = $1 AND shop_id = $2`

	s, err := scanWorkShift(q.QueryRow(ctx, query, id, shopID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return workshift.WorkShift{}, workshift.ErrShiftNotFound
		}
		return workshift.WorkShift{}, fmt.Errorf("failed to get work shift by ID: %w", err)
	}
	return s, nil
}

// FindOverlapping implements workshift.WorkShiftRepository.
func (r *workShiftRepositoryImpl) FindOverlapping(ctx context.Context, employeeID, shopID string, start, end time.Time, excludeID *string) ([]workshift.WorkShift, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + workShiftColumns + `
		FROM work_shifts
		WHERE employee_id = $1
		  AND shop_id = $2
		  AND status <> 'CANCELED'
		  AND end_at IS NOT NULL
		  AND start_at < $4
		  AND end_at > $3
		  AND ($5::uuid IS NULL OR id <> $5::uuid)
		ORDER BY start_at
	`

	rows, err := q.Query(ctx, query, employeeID, shopID, start, end, excludeID)
	if err != nil {
		return nil, fmt.Errorf("failed to find overlapping work shifts: %w", err)
	}
	return collectWorkShifts(rows)
}

var workShiftSortColumns = map[string]string{
	"start_at":   "start_at",
	"end_at":     "end_at",
	"created_at": "created_at",
	"status":     "status",
}

func buildWorkShiftWhere(filter workshift.Filter) (string, []interface{}) {
	where := []string{"shop_id = $1"}
	args := []interface{}{filter.ShopID}
	argIdx := 2

	if filter.EmployeeID != nil {
		where = append(where, fmt.Sprintf("employee_id = $%d", argIdx))
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, st := range filter.Statuses {
			statuses[i] = string(st)
		}
		where = append(where, fmt.Sprintf("status = ANY($%d)", argIdx))
		args = append(args, statuses)
		argIdx++
	}
	if filter.From != nil {
		where = append(where, fmt.Sprintf("start_at >= $%d", argIdx))
		args = append(args, *filter.From)
		argIdx++
	}
	if filter.To != nil {
		where = append(where, fmt.Sprintf("start_at <= $%d", argIdx))
		args = append(args, *filter.To)
		argIdx++
	}
	if filter.Settled != nil {
		if *filter.Settled {
			where = append(where, "settlement_id IS NOT NULL")
		} else {
			where = append(where, "settlement_id IS NULL")
		}
	}

	return strings.Join(where, " AND "), args
}

// List implements workshift.WorkShiftRepository.
func (r *workShiftRepositoryImpl) List(ctx context.Context, filter workshift.Filter) ([]workshift.WorkShift, int64, error) {
	q := GetQuerier(ctx, r.db)

	where, args := buildWorkShiftWhere(filter)

	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM work_shifts WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count work shifts: %w", err)
	}

	sortBy, ok := workShiftSortColumns[filter.SortBy]
	if !ok {
		sortBy = "start_at"
	}
	sortOrder := "ASC"
	if strings.EqualFold(filter.SortOrder, "desc") {
		sortOrder = "DESC"
	}

	query := fmt.Sprintf("SELECT %s FROM work_shifts WHERE %s ORDER BY %s %s, id",
		workShiftColumns, where, sortBy, sortOrder)
	if filter.Limit > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.Limit, (page-1)*filter.Limit)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list work shifts: %w", err)
	}
	shifts, err := collectWorkShifts(rows)
	if err != nil {
		return nil, 0, err
	}
	return shifts, total, nil
}

// Update implements workshift.WorkShiftRepository.
func (r *workShiftRepositoryImpl) Update(ctx context.Context, shift workshift.WorkShift) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE work_shifts SET
			start_at = $3,
			end_at = $4,
			actual_in_at = $5,
			actual_out_at = $6,
			status = $7,
			review_reason = $8,
			review_resolved_at = $9,
			reviewed_by = $10,
			memo = $11,
			worked_minutes = $12,
			final_pay_amount = $13,
			settlement_id = $14,
			admin_checked = $15,
			updated_by = $16,
			updated_at = $17
		WHERE id = $1 AND shop_id = $2
	`

	tag, err := q.Exec(ctx, query,
		shift.ID, shift.ShopID,
		shift.StartAt, shift.EndAt, shift.ActualInAt, shift.ActualOutAt,
		shift.Status, shift.ReviewReason, shift.ReviewResolvedAt, shift.ReviewedBy, shift.Memo,
		shift.WorkedMinutes, shift.FinalPayAmount, shift.SettlementID, shift.AdminChecked,
		shift.UpdatedBy, shift.UpdatedAt,
	)
	if err != nil {
		return mapWorkShiftWriteError("update", err)
	}
	if tag.RowsAffected() == 0 {
		return workshift.ErrShiftNotFound
	}
	return nil
}

// Delete implements workshift.WorkShiftRepository.
func (r *workShiftRepositoryImpl) Delete(ctx context.Context, id string, shopID string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM work_shifts WHERE id = $1 AND shop_id = $2`, id, shopID)
	if err != nil {
		return fmt.Errorf("failed to delete work shift: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return workshift.ErrShiftNotFound
	}
	return nil
}

// GetOpenAttendance implements workshift.WorkShiftRepository.
func (r *workShiftRepositoryImpl) GetOpenAttendance(ctx context.Context, employeeID string) (workshift.WorkShift, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + workShiftColumns + `
		FROM work_shifts
		WHERE employee_id = $1
		  AND actual_in_at IS NOT NULL
		  AND actual_out_at IS NULL
		  AND status = 'IN_PROGRESS'
		ORDER BY actual_in_at DESC
		LIMIT 1
	`

	s, err := scanWorkShift(q.QueryRow(ctx, query, employeeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return workshift.WorkShift{}, workshift.ErrShiftNotFound
		}
		return workshift.WorkShift{}, fmt.Errorf("failed to get open attendance: %w", err)
	}
	return s, nil
}

// FindClockInCandidate implements workshift.WorkShiftRepository.
func (r *workShiftRepositoryImpl) FindClockInCandidate(ctx context.Context, employeeID, shopID string, at time.Time, earlyWindow time.Duration) (workshift.WorkShift, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + workShiftColumns + `
		FROM work_shifts
		WHERE employee_id = $1
		  AND shop_id = $2
		  AND status = 'SCHEDULED'
		  AND actual_in_at IS NULL
		  AND actual_out_at IS NULL
		  AND settlement_id IS NULL
		  AND end_at IS NOT NULL
		  AND start_at <= $4
		  AND end_at >= $3
		ORDER BY start_at
		LIMIT 1
	`

	s, err := scanWorkShift(q.QueryRow(ctx, query, employeeID, shopID, at, at.Add(earlyWindow)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return workshift.WorkShift{}, workshift.ErrShiftNotFound
		}
		return workshift.WorkShift{}, fmt.Errorf("failed to find clock-in candidate: %w", err)
	}
	return s, nil
}

// sweepPredicate expects the cutoff as $1 (planned end) and $2 (clock-in of
// open-ended rows).
func sweepPredicate(kind workshift.SweepKind) string {
	base := `settlement_id IS NULL
		  AND status IN ('SCHEDULED', 'IN_PROGRESS')
		  AND actual_out_at IS NULL
		  AND (end_at < $1 OR (end_at IS NULL AND actual_in_at < $2))`
	if kind == workshift.SweepMissingClockOut {
		return base + ` AND actual_in_at IS NOT NULL`
	}
	return base + ` AND actual_in_at IS NULL`
}

// ListStaleIDs implements workshift.WorkShiftRepository.
func (r *workShiftRepositoryImpl) ListStaleIDs(ctx context.Context, kind workshift.SweepKind, cutoff workshift.SweepCutoff, afterID string, limit int) ([]string, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id::text
		FROM work_shifts
		WHERE ` + sweepPredicate(kind) + `
		  AND ($3::uuid IS NULL OR id > $3::uuid)
		ORDER BY id
		LIMIT $4
	`

	var cursor *string
	if afterID != "" {
		cursor = &afterID
	}

	rows, err := q.Query(ctx, query, cutoff.EndedBefore, cutoff.OpenedBefore, cursor, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list stale work shifts: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan stale work shift ids: %w", err)
	}
	return ids, nil
}

// EscalateToReview implements workshift.WorkShiftRepository.
func (r *workShiftRepositoryImpl) EscalateToReview(ctx context.Context, ids []string, kind workshift.SweepKind, cutoff workshift.SweepCutoff, at time.Time) ([]string, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE work_shifts SET
			status = 'REVIEW',
			review_reason = $4,
			review_resolved_at = NULL,
			updated_at = $5
		WHERE ` + sweepPredicate(kind) + `
		  AND id = ANY($3::uuid[])
		RETURNING id::text
	`

	rows, err := q.Query(ctx, query, cutoff.EndedBefore, cutoff.OpenedBefore, ids, kind.Reason(), at)
	if err != nil {
		return nil, fmt.Errorf("failed to escalate work shifts: %w", err)
	}
	escalated, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to escalate work shifts: %w", err)
	}
	return escalated, nil
}

// ListSettleable implements workshift.WorkShiftRepository.
func (r *workShiftRepositoryImpl) ListSettleable(ctx context.Context, employeeID, shopID string, start, end time.Time) ([]workshift.WorkShift, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + workShiftColumns + `
		FROM work_shifts
		WHERE employee_id = $1
		  AND shop_id = $2
		  AND status = 'COMPLETED'
		  AND settlement_id IS NULL
		  AND start_at BETWEEN $3 AND $4
		ORDER BY start_at
	`

	rows, err := q.Query(ctx, query, employeeID, shopID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list settleable work shifts: %w", err)
	}
	return collectWorkShifts(rows)
}

// ListBySettlement implements workshift.WorkShiftRepository.
func (r *workShiftRepositoryImpl) ListBySettlement(ctx context.Context, settlementID string) ([]workshift.WorkShift, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + workShiftColumns + ` FROM work_shifts WHERE settlement_id = $1 ORDER BY start_at`

	rows, err := q.Query(ctx, query, settlementID)
	if err != nil {
		return nil, fmt.Errorf("failed to list work shifts by settlement: %w", err)
	}
	return collectWorkShifts(rows)
}

// LinkSettlement implements workshift.WorkShiftRepository.
func (r *workShiftRepositoryImpl) LinkSettlement(ctx context.Context, ids []string, settlementID string, at time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE work_shifts
		SET settlement_id = $2, updated_at = $3
		WHERE id = ANY($1::uuid[])
		  AND settlement_id IS NULL
	`

	tag, err := q.Exec(ctx, query, ids, settlementID, at)
	if err != nil {
		return 0, fmt.Errorf("failed to link work shifts to settlement: %w", err)
	}
	return tag.RowsAffected(), nil
}

// SumByEmployee implements workshift.WorkShiftRepository.
func (r *workShiftRepositoryImpl) SumByEmployee(ctx context.Context, shopID string, start, end time.Time) ([]workshift.EmployeeShiftTotals, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			employee_id::text,
			COUNT(*) FILTER (WHERE status <> 'CANCELED'),
			COUNT(*) FILTER (WHERE status = 'COMPLETED'),
			COUNT(*) FILTER (WHERE status = 'REVIEW' AND review_reason = 'NO_ATTENDANCE'),
			COALESCE(SUM(worked_minutes) FILTER (WHERE status = 'COMPLETED'), 0),
			COALESCE(SUM(final_pay_amount) FILTER (WHERE status = 'COMPLETED'), 0)
		FROM work_shifts
		WHERE shop_id = $1
		  AND start_at BETWEEN $2 AND $3
		GROUP BY employee_id
		ORDER BY employee_id
	`

	rows, err := q.Query(ctx, query, shopID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to sum work shifts by employee: %w", err)
	}
	defer rows.Close()

	var totals []workshift.EmployeeShiftTotals
	for rows.Next() {
		var t workshift.EmployeeShiftTotals
		if err := rows.Scan(
			&t.EmployeeID, &t.PlannedShifts, &t.CompletedShifts, &t.NoAttendanceShifts,
			&t.WorkedMinutes, &t.GrossPay,
		); err != nil {
			return nil, fmt.Errorf("failed to scan work shift totals: %w", err)
		}
		totals = append(totals, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate work shift totals: %w", err)
	}
	return totals, nil
}
