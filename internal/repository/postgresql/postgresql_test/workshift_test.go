package postgresql_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/shift-payroll-backend/internal/domain/payroll"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/domain/workshift"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/repository/postgresql"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newShift(t *testing.T, shopID, employeeID string, start time.Time, hours int) workshift.WorkShift {
	t.Helper()
	id, err := uuid.NewV7()
	require.NoError(t, err)

	end := start.Add(time.Duration(hours) * time.Hour)
	now := time.Now().UTC().Truncate(time.Microsecond)
	return workshift.WorkShift{
		ID:            id.String(),
		ShopID:        shopID,
		EmployeeID:    employeeID,
		StartAt:       start,
		EndAt:         &end,
		Status:        workshift.StatusScheduled,
		WorkedMinutes: hours * 60,
		CreatedBy:     "test",
		UpdatedBy:     "test",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func seed(t *testing.T) (*TestDatabaseSetup, string, string) {
	setup := NewTestDatabase(t)
	shopID := uuid.NewString()
	employeeID := uuid.NewString()
	setup.SeedShopEmployee(t, shopID, employeeID)
	return setup, shopID, employeeID
}

func TestWorkShiftRepository_CreateAndGet(t *testing.T) {
	setup, shopID, employeeID := seed(t)
	repo := postgresql.NewWorkShiftRepository(setup.DB)
	ctx := context.Background()

	start := time.Date(2025, 9, 2, 0, 0, 0, 0, time.UTC)
	shift := newShift(t, shopID, employeeID, start, 8)
	memo := "opening"
	shift.Memo = &memo

	created, err := repo.Create(ctx, shift)
	require.NoError(t, err)
	assert.Equal(t, shift.ID, created.ID)

	got, err := repo.GetByID(ctx, shift.ID, shopID)
	require.NoError(t, err)
	assert.True(t, start.Equal(got.StartAt))
	assert.Equal(t, workshift.StatusScheduled, got.Status)
	require.NotNil(t, got.Memo)
	assert.Equal(t, "opening", *got.Memo)
	assert.Nil(t, got.SettlementID)

	_, err = repo.GetByID(ctx, shift.ID, uuid.NewString())
	assert.ErrorIs(t, err, workshift.ErrShiftNotFound)
}

func TestWorkShiftRepository_OverlapIsRejected(t *testing.T) {
	setup, shopID, employeeID := seed(t)
	repo := postgresql.NewWorkShiftRepository(setup.DB)
	ctx := context.Background()

	start := time.Date(2025, 9, 2, 0, 0, 0, 0, time.UTC)
	first := newShift(t, shopID, employeeID, start, 8)
	_, err := repo.Create(ctx, first)
	require.NoError(t, err)

	overlapping, err := repo.FindOverlapping(ctx, employeeID, shopID, start.Add(4*time.Hour), start.Add(10*time.Hour), nil)
	require.NoError(t, err)
	require.Len(t, overlapping, 1)

	overlapping, err = repo.FindOverlapping(ctx, employeeID, shopID, start.Add(4*time.Hour), start.Add(10*time.Hour), &first.ID)
	require.NoError(t, err)
	assert.Empty(t, overlapping)

	_, err = repo.Create(ctx, newShift(t, shopID, employeeID, start.Add(4*time.Hour), 6))
	assert.ErrorIs(t, err, workshift.ErrShiftOverlap)

	// Touching windows do not overlap.
	_, err = repo.Create(ctx, newShift(t, shopID, employeeID, start.Add(8*time.Hour), 4))
	assert.NoError(t, err)
}

func TestWorkShiftRepository_SweepEscalation(t *testing.T) {
	setup, shopID, employeeID := seed(t)
	repo := postgresql.NewWorkShiftRepository(setup.DB)
	ctx := context.Background()

	now := time.Date(2025, 9, 10, 12, 0, 0, 0, time.UTC)
	threshold := now.Add(-2 * time.Hour)
	cutoff := workshift.SweepCutoff{EndedBefore: threshold, OpenedBefore: threshold.Add(-16 * time.Hour)}

	stale := newShift(t, shopID, employeeID, now.Add(-12*time.Hour), 8)
	_, err := repo.Create(ctx, stale)
	require.NoError(t, err)

	clockedIn := newShift(t, shopID, employeeID, now.Add(-30*time.Hour), 8)
	in := clockedIn.StartAt
	clockedIn.ActualInAt = &in
	clockedIn.Status = workshift.StatusInProgress
	_, err = repo.Create(ctx, clockedIn)
	require.NoError(t, err)

	recent := newShift(t, shopID, employeeID, now.Add(-3*time.Hour), 2)
	_, err = repo.Create(ctx, recent)
	require.NoError(t, err)

	// implicit clock-in that was never closed
	open := newShift(t, shopID, employeeID, now.Add(-20*time.Hour), 0)
	open.EndAt = nil
	openIn := open.StartAt
	open.ActualInAt = &openIn
	open.Status = workshift.StatusInProgress
	_, err = repo.Create(ctx, open)
	require.NoError(t, err)

	ids, err := repo.ListStaleIDs(ctx, workshift.SweepNoAttendance, cutoff, "", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{stale.ID}, ids)

	escalated, err := repo.EscalateToReview(ctx, append(ids, recent.ID), workshift.SweepNoAttendance, cutoff, now)
	require.NoError(t, err)
	assert.Equal(t, []string{stale.ID}, escalated)

	escalated, err = repo.EscalateToReview(ctx, ids, workshift.SweepNoAttendance, cutoff, now)
	require.NoError(t, err)
	assert.Empty(t, escalated)

	got, err := repo.GetByID(ctx, stale.ID, shopID)
	require.NoError(t, err)
	assert.Equal(t, workshift.StatusReview, got.Status)
	require.NotNil(t, got.ReviewReason)
	assert.Equal(t, workshift.ReviewReasonNoAttendance, *got.ReviewReason)

	ids, err = repo.ListStaleIDs(ctx, workshift.SweepMissingClockOut, cutoff, "", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{clockedIn.ID, open.ID}, ids)

	ids, err = repo.ListStaleIDs(ctx, workshift.SweepMissingClockOut, cutoff, clockedIn.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{open.ID}, ids)

	escalated, err = repo.EscalateToReview(ctx, ids, workshift.SweepMissingClockOut, cutoff, now)
	require.NoError(t, err)
	assert.Equal(t, []string{open.ID}, escalated)

	got, err = repo.GetByID(ctx, open.ID, shopID)
	require.NoError(t, err)
	assert.Equal(t, workshift.StatusReview, got.Status)
	require.NotNil(t, got.ReviewReason)
	assert.Equal(t, workshift.ReviewReasonLateOut, *got.ReviewReason)
	assert.Nil(t, got.EndAt)
}

func TestWorkShiftRepository_LinkSettlementClaimsOnce(t *testing.T) {
	setup, shopID, employeeID := seed(t)
	shifts := postgresql.NewWorkShiftRepository(setup.DB)
	settlements := postgresql.NewSettlementRepository(setup.DB)
	tx := postgresql.NewTransactor(setup.DB)
	ctx := context.Background()

	cycle, err := payroll.NewCycle(2025, time.September, 1)
	require.NoError(t, err)

	shift := newShift(t, shopID, employeeID, cycle.Start.Add(9*time.Hour), 8)
	shift.Status = workshift.StatusCompleted
	_, err = shifts.Create(ctx, shift)
	require.NoError(t, err)

	settlement := payroll.Settlement{
		ID:          uuid.NewString(),
		ShopID:      shopID,
		EmployeeID:  employeeID,
		CycleStart:  cycle.Start,
		CycleEnd:    cycle.End,
		SettledAt:   time.Now().UTC(),
		ProcessedBy: "test",
	}

	err = tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := settlements.Create(ctx, settlement); err != nil {
			return err
		}
		n, err := shifts.LinkSettlement(ctx, []string{shift.ID}, settlement.ID, time.Now().UTC())
		if err != nil {
			return err
		}
		assert.Equal(t, int64(1), n)
		return nil
	})
	require.NoError(t, err)

	n, err := shifts.LinkSettlement(ctx, []string{shift.ID}, settlement.ID, time.Now().UTC())
	require.NoError(t, err)
	assert.Zero(t, n)

	linked, err := shifts.ListBySettlement(ctx, settlement.ID)
	require.NoError(t, err)
	require.Len(t, linked, 1)
	assert.Equal(t, shift.ID, linked[0].ID)
}

func TestTransactor_RollsBackOnError(t *testing.T) {
	setup, shopID, employeeID := seed(t)
	repo := postgresql.NewWorkShiftRepository(setup.DB)
	tx := postgresql.NewTransactor(setup.DB)
	ctx := context.Background()

	shift := newShift(t, shopID, employeeID, time.Date(2025, 9, 3, 0, 0, 0, 0, time.UTC), 4)
	boom := errors.New("boom")

	err := tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := repo.Create(ctx, shift); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = repo.GetByID(ctx, shift.ID, shopID)
	assert.ErrorIs(t, err, workshift.ErrShiftNotFound)
}
