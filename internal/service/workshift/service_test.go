package workshift

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/shift-payroll-backend/internal/domain/employee"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/domain/user"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/domain/workshift"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/pkg/clock"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/pkg/events"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/repository/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testShopID     = "0190b5a0-0000-7000-8000-000000000001"
	testEmployeeID = "0190b5a0-0000-7000-8000-0000000000e1"
	testOtherID    = "0190b5a0-0000-7000-8000-0000000000e2"
	testAdminID    = "0190b5a0-0000-7000-8000-0000000000a1"
)

type fixture struct {
	store    *memory.Store
	clock    *clock.FixedClock
	recorder *events.Recorder
	service  workshift.WorkShiftService
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := memory.NewStore()
	hourly := employee.PayUnitHourly
	rate := decimal.NewFromInt(10000)
	store.PutEmployee(employee.Employee{ID: testEmployeeID, ShopID: testShopID, FullName: "Kim Staff", PayUnit: &hourly, Pay: &rate, IsActive: true})
	store.PutEmployee(employee.Employee{ID: testOtherID, ShopID: testShopID, FullName: "Lee Staff", PayUnit: &hourly, Pay: &rate, IsActive: true})

	clk := clock.Fixed(time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC))
	recorder := events.NewRecorder()
	return fixture{
		store:    store,
		clock:    clk,
		recorder: recorder,
		service:  NewWorkShiftService(store.Shifts(), store.Employees(), recorder, clk),
	}
}

func employeeActor(id string) user.Actor {
	return user.Actor{UserID: "user-" + id, ShopID: testShopID, EmployeeID: &id}
}

func adminActor() user.Actor {
	return user.Actor{UserID: testAdminID, ShopID: testShopID, IsAdmin: true}
}

func strPtr(s string) *string { return &s }

func (f fixture) createShift(t *testing.T, actor user.Actor, start, end string) workshift.ShiftResponse {
	t.Helper()
	resp, err := f.service.CreateShift(context.Background(), actor, workshift.CreateShiftRequest{
		StartAt: start,
		EndAt:   strPtr(end),
	})
	require.NoError(t, err)
	return resp
}

// seed writes a shift directly to the store, bypassing lifecycle rules.
func (f fixture) seed(t *testing.T, shift workshift.WorkShift) workshift.WorkShift {
	t.Helper()
	created, err := f.store.Shifts().Create(context.Background(), shift)
	require.NoError(t, err)
	return created
}

func at(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func atPtr(s string) *time.Time {
	t := at(s)
	return &t
}

// ===== CREATE =====

func TestWorkShiftService_CreateShift_Success(t *testing.T) {
	f := newFixture(t)

	resp := f.createShift(t, employeeActor(testEmployeeID), "2025-09-01T00:00:00Z", "2025-09-01T08:00:00Z")

	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, testEmployeeID, resp.EmployeeID)
	assert.Equal(t, string(workshift.StatusScheduled), resp.Status)
	assert.Equal(t, 480, resp.WorkedMinutes)
	assert.Nil(t, resp.FinalPayAmount)
	assert.Equal(t, "user-"+testEmployeeID, resp.CreatedBy)
}

func TestWorkShiftService_CreateShift_InvalidWindow(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.CreateShift(context.Background(), employeeActor(testEmployeeID), workshift.CreateShiftRequest{
		StartAt: "2025-09-01T08:00:00Z",
		EndAt:   strPtr("2025-09-01T08:00:00Z"),
	})

	assert.ErrorIs(t, err, workshift.ErrInvalidWindow)
}

func TestWorkShiftService_CreateShift_OverlapLeavesStateUnchanged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	actor := employeeActor(testEmployeeID)
	f.createShift(t, actor, "2025-09-01T00:00:00Z", "2025-09-01T08:00:00Z")

	_, err := f.service.CreateShift(ctx, actor, workshift.CreateShiftRequest{
		StartAt: "2025-09-01T07:59:00Z",
		EndAt:   strPtr("2025-09-01T10:00:00Z"),
	})
	require.ErrorIs(t, err, workshift.ErrShiftOverlap)

	shifts, total, err := f.store.Shifts().List(ctx, workshift.Filter{ShopID: testShopID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, shifts, 1)
}

func TestWorkShiftService_CreateShift_AdjacentWindowsDoNotOverlap(t *testing.T) {
	f := newFixture(t)
	actor := employeeActor(testEmployeeID)
	f.createShift(t, actor, "2025-09-01T00:00:00Z", "2025-09-01T08:00:00Z")

	resp := f.createShift(t, actor, "2025-09-01T08:00:00Z", "2025-09-01T10:00:00Z")

	assert.Equal(t, 120, resp.WorkedMinutes)
}

func TestWorkShiftService_CreateShift_ForOtherEmployeeRequiresAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := workshift.CreateShiftRequest{
		EmployeeID: strPtr(testOtherID),
		StartAt:    "2025-09-02T00:00:00Z",
		EndAt:      strPtr("2025-09-02T04:00:00Z"),
	}

	_, err := f.service.CreateShift(ctx, employeeActor(testEmployeeID), req)
	assert.ErrorIs(t, err, user.ErrAdminPrivilegeRequired)

	resp, err := f.service.CreateShift(ctx, adminActor(), req)
	require.NoError(t, err)
	assert.Equal(t, testOtherID, resp.EmployeeID)
	assert.Equal(t, testAdminID, resp.CreatedBy)
}

func TestWorkShiftService_CreateShift_UnknownEmployee(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.CreateShift(context.Background(), adminActor(), workshift.CreateShiftRequest{
		EmployeeID: strPtr("0190b5a0-0000-7000-8000-0000000000ff"),
		StartAt:    "2025-09-02T00:00:00Z",
	})

	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestWorkShiftService_CreateShift_InactiveEmployee(t *testing.T) {
	f := newFixture(t)
	f.store.PutEmployee(employee.Employee{ID: testOtherID, ShopID: testShopID, FullName: "Lee Staff", IsActive: false})

	_, err := f.service.CreateShift(context.Background(), adminActor(), workshift.CreateShiftRequest{
		EmployeeID: strPtr(testOtherID),
		StartAt:    "2025-09-02T00:00:00Z",
	})

	assert.ErrorIs(t, err, employee.ErrEmployeeInactive)
}

// ===== EMPLOYEE EDIT =====

func TestWorkShiftService_UpdateShiftByEmployee_ForcesReview(t *testing.T) {
	f := newFixture(t)
	actor := employeeActor(testEmployeeID)
	created := f.createShift(t, actor, "2025-09-01T00:00:00Z", "2025-09-01T08:00:00Z")

	resp, err := f.service.UpdateShiftByEmployee(context.Background(), actor, created.ID, workshift.UpdateShiftRequest{
		EndAt: strPtr("2025-09-01T09:00:00Z"),
	})

	require.NoError(t, err)
	assert.Equal(t, string(workshift.StatusReview), resp.Status)
	assert.Equal(t, 540, resp.WorkedMinutes)
	require.NotNil(t, resp.ReviewReason)
	assert.Equal(t, string(workshift.ReviewReasonExtended), *resp.ReviewReason)
	assert.Nil(t, resp.ReviewResolvedAt)
}

func TestWorkShiftService_UpdateShiftByEmployee_MemoOnlyStillForcesReview(t *testing.T) {
	f := newFixture(t)
	actor := employeeActor(testEmployeeID)
	created := f.createShift(t, actor, "2025-09-01T00:00:00Z", "2025-09-01T08:00:00Z")

	resp, err := f.service.UpdateShiftByEmployee(context.Background(), actor, created.ID, workshift.UpdateShiftRequest{
		Memo: strPtr("swapped with Lee"),
	})

	require.NoError(t, err)
	assert.Equal(t, string(workshift.StatusReview), resp.Status)
	assert.Equal(t, 480, resp.WorkedMinutes)
	assert.Nil(t, resp.ReviewReason)
}

func TestWorkShiftService_UpdateShiftByEmployee_Guards(t *testing.T) {
	tests := []struct {
		name    string
		status  workshift.Status
		settled bool
		wantErr error
	}{
		{"completed", workshift.StatusCompleted, false, workshift.ErrForbiddenTransition},
		{"canceled", workshift.StatusCanceled, false, workshift.ErrForbiddenTransition},
		{"already in review", workshift.StatusReview, false, workshift.ErrForbiddenTransition},
		{"settled", workshift.StatusCompleted, true, workshift.ErrShiftSettled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			shift := workshift.WorkShift{
				ShopID:     testShopID,
				EmployeeID: testEmployeeID,
				StartAt:    at("2025-09-01T00:00:00Z"),
				EndAt:      atPtr("2025-09-01T08:00:00Z"),
				Status:     tt.status,
			}
			if tt.settled {
				shift.SettlementID = strPtr("settlement-1")
			}
			seeded := f.seed(t, shift)

			_, err := f.service.UpdateShiftByEmployee(context.Background(), employeeActor(testEmployeeID), seeded.ID, workshift.UpdateShiftRequest{
				Memo: strPtr("late"),
			})

			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestWorkShiftService_UpdateShiftByEmployee_OtherEmployeesShiftIsNotFound(t *testing.T) {
	f := newFixture(t)
	created := f.createShift(t, employeeActor(testOtherID), "2025-09-01T00:00:00Z", "2025-09-01T08:00:00Z")

	_, err := f.service.UpdateShiftByEmployee(context.Background(), employeeActor(testEmployeeID), created.ID, workshift.UpdateShiftRequest{
		Memo: strPtr("mine now"),
	})

	assert.ErrorIs(t, err, workshift.ErrShiftNotFound)
}

func TestWorkShiftService_UpdateShiftByEmployee_OverlapExcludesSelf(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	actor := employeeActor(testEmployeeID)
	first := f.createShift(t, actor, "2025-09-01T00:00:00Z", "2025-09-01T04:00:00Z")
	f.createShift(t, actor, "2025-09-01T06:00:00Z", "2025-09-01T08:00:00Z")

	_, err := f.service.UpdateShiftByEmployee(ctx, actor, first.ID, workshift.UpdateShiftRequest{
		EndAt: strPtr("2025-09-01T05:00:00Z"),
	})
	require.NoError(t, err)

	f2 := newFixture(t)
	a := f2.createShift(t, actor, "2025-09-01T00:00:00Z", "2025-09-01T04:00:00Z")
	f2.createShift(t, actor, "2025-09-01T06:00:00Z", "2025-09-01T08:00:00Z")
	_, err = f2.service.UpdateShiftByEmployee(ctx, actor, a.ID, workshift.UpdateShiftRequest{
		EndAt: strPtr("2025-09-01T07:00:00Z"),
	})
	assert.ErrorIs(t, err, workshift.ErrShiftOverlap)
}

// ===== ADMIN EDIT =====

func TestWorkShiftService_UpdateShiftByAdmin_CompletedComputesFinalPay(t *testing.T) {
	f := newFixture(t)
	created := f.createShift(t, employeeActor(testEmployeeID), "2025-09-01T00:00:00Z", "2025-09-01T08:00:00Z")

	resp, err := f.service.UpdateShiftByAdmin(context.Background(), adminActor(), created.ID, workshift.AdminUpdateShiftRequest{
		EndAt:  strPtr("2025-09-01T04:30:00Z"),
		Status: strPtr("completed"),
	})

	require.NoError(t, err)
	assert.Equal(t, string(workshift.StatusCompleted), resp.Status)
	assert.Equal(t, 270, resp.WorkedMinutes)
	require.NotNil(t, resp.FinalPayAmount)
	assert.Equal(t, int64(45000), *resp.FinalPayAmount)
	assert.Equal(t, testAdminID, resp.UpdatedBy)
}

func TestWorkShiftService_UpdateShiftByAdmin_NonCompletedClearsFinalPay(t *testing.T) {
	f := newFixture(t)
	pay := int64(80000)
	seeded := f.seed(t, workshift.WorkShift{
		ShopID:         testShopID,
		EmployeeID:     testEmployeeID,
		StartAt:        at("2025-09-01T00:00:00Z"),
		EndAt:          atPtr("2025-09-01T08:00:00Z"),
		Status:         workshift.StatusCompleted,
		WorkedMinutes:  480,
		FinalPayAmount: &pay,
	})

	resp, err := f.service.UpdateShiftByAdmin(context.Background(), adminActor(), seeded.ID, workshift.AdminUpdateShiftRequest{
		Status: strPtr("REVIEW"),
	})

	require.NoError(t, err)
	assert.Equal(t, string(workshift.StatusReview), resp.Status)
	assert.Nil(t, resp.FinalPayAmount)
}

func TestWorkShiftService_UpdateShiftByAdmin_MonthlyEmployeeHasNoFinalPay(t *testing.T) {
	f := newFixture(t)
	monthly := employee.PayUnitMonthly
	salary := decimal.NewFromInt(2500000)
	f.store.PutEmployee(employee.Employee{ID: testOtherID, ShopID: testShopID, PayUnit: &monthly, Pay: &salary, IsActive: true})
	created := f.createShift(t, employeeActor(testOtherID), "2025-09-01T00:00:00Z", "2025-09-01T08:00:00Z")

	resp, err := f.service.UpdateShiftByAdmin(context.Background(), adminActor(), created.ID, workshift.AdminUpdateShiftRequest{
		Status: strPtr("COMPLETED"),
	})

	require.NoError(t, err)
	assert.Nil(t, resp.FinalPayAmount)
}

func TestWorkShiftService_UpdateShiftByAdmin_SettledShift(t *testing.T) {
	f := newFixture(t)
	pay := int64(80000)
	seeded := f.seed(t, workshift.WorkShift{
		ShopID:         testShopID,
		EmployeeID:     testEmployeeID,
		StartAt:        at("2025-09-01T00:00:00Z"),
		EndAt:          atPtr("2025-09-01T08:00:00Z"),
		Status:         workshift.StatusCompleted,
		WorkedMinutes:  480,
		FinalPayAmount: &pay,
		SettlementID:   strPtr("settlement-1"),
	})
	ctx := context.Background()

	_, err := f.service.UpdateShiftByAdmin(ctx, adminActor(), seeded.ID, workshift.AdminUpdateShiftRequest{
		EndAt: strPtr("2025-09-01T09:00:00Z"),
	})
	assert.ErrorIs(t, err, workshift.ErrShiftSettled)

	checked := true
	resp, err := f.service.UpdateShiftByAdmin(ctx, adminActor(), seeded.ID, workshift.AdminUpdateShiftRequest{
		Memo:         strPtr("verified"),
		AdminChecked: &checked,
	})
	require.NoError(t, err)
	assert.True(t, resp.AdminChecked)
	assert.Equal(t, 480, resp.WorkedMinutes)
	require.NotNil(t, resp.FinalPayAmount)
	assert.Equal(t, int64(80000), *resp.FinalPayAmount)
}

func TestWorkShiftService_UpdateShiftByAdmin_RequiresAdmin(t *testing.T) {
	f := newFixture(t)
	created := f.createShift(t, employeeActor(testEmployeeID), "2025-09-01T00:00:00Z", "2025-09-01T08:00:00Z")

	_, err := f.service.UpdateShiftByAdmin(context.Background(), employeeActor(testEmployeeID), created.ID, workshift.AdminUpdateShiftRequest{
		Status: strPtr("COMPLETED"),
	})

	assert.ErrorIs(t, err, user.ErrAdminPrivilegeRequired)
}

func TestWorkShiftService_UpdateShiftByAdmin_RejectsOverlap(t *testing.T) {
	f := newFixture(t)
	first := f.createShift(t, employeeActor(testEmployeeID), "2025-09-01T00:00:00Z", "2025-09-01T08:00:00Z")
	second := f.createShift(t, employeeActor(testEmployeeID), "2025-09-01T10:00:00Z", "2025-09-01T14:00:00Z")
	ctx := context.Background()

	_, err := f.service.UpdateShiftByAdmin(ctx, adminActor(), second.ID, workshift.AdminUpdateShiftRequest{
		StartAt: strPtr("2025-09-01T07:00:00Z"),
	})
	assert.ErrorIs(t, err, workshift.ErrShiftOverlap)

	// restoring a canceled shift into an occupied window is rejected too
	_, err = f.service.CancelShift(ctx, adminActor(), first.ID)
	require.NoError(t, err)
	f.createShift(t, employeeActor(testEmployeeID), "2025-09-01T01:00:00Z", "2025-09-01T05:00:00Z")
	_, err = f.service.UpdateShiftByAdmin(ctx, adminActor(), first.ID, workshift.AdminUpdateShiftRequest{
		Status: strPtr("SCHEDULED"),
	})
	assert.ErrorIs(t, err, workshift.ErrShiftOverlap)

	stored, err := f.store.Shifts().GetByID(ctx, second.ID, testShopID)
	require.NoError(t, err)
	assert.Equal(t, at("2025-09-01T10:00:00Z"), stored.StartAt)
}

func TestWorkShiftService_UpdateShiftByAdmin_ReviewReasonNeedsReviewStatus(t *testing.T) {
	f := newFixture(t)
	created := f.createShift(t, employeeActor(testEmployeeID), "2025-09-01T00:00:00Z", "2025-09-01T08:00:00Z")
	ctx := context.Background()

	_, err := f.service.UpdateShiftByAdmin(ctx, adminActor(), created.ID, workshift.AdminUpdateShiftRequest{
		ReviewReason: strPtr("LATE_IN"),
	})
	assert.ErrorIs(t, err, workshift.ErrInvalidReviewReason)

	resp, err := f.service.UpdateShiftByAdmin(ctx, adminActor(), created.ID, workshift.AdminUpdateShiftRequest{
		Status:       strPtr("REVIEW"),
		ReviewReason: strPtr("LATE_IN"),
	})
	require.NoError(t, err)
	require.NotNil(t, resp.ReviewReason)
	assert.Equal(t, string(workshift.ReviewReasonLateIn), *resp.ReviewReason)
}

func TestWorkShiftService_UpdateShiftByAdmin_InProgressNeedsOpenAttendance(t *testing.T) {
	f := newFixture(t)
	created := f.createShift(t, employeeActor(testEmployeeID), "2025-09-01T00:00:00Z", "2025-09-01T08:00:00Z")

	_, err := f.service.UpdateShiftByAdmin(context.Background(), adminActor(), created.ID, workshift.AdminUpdateShiftRequest{
		Status: strPtr("IN_PROGRESS"),
	})

	assert.ErrorIs(t, err, workshift.ErrInvalidStatus)
}

// ===== REVIEW RESOLUTION =====

func TestWorkShiftService_ResolveReview_UsesCorrectedWindowOnly(t *testing.T) {
	f := newFixture(t)
	reason := workshift.ReviewReasonLateOut
	seeded := f.seed(t, workshift.WorkShift{
		ShopID:       testShopID,
		EmployeeID:   testEmployeeID,
		StartAt:      at("2025-09-01T00:00:00Z"),
		EndAt:        atPtr("2025-09-01T08:00:00Z"),
		ActualInAt:   atPtr("2025-09-01T00:55:00Z"),
		ActualOutAt:  atPtr("2025-09-01T04:20:00Z"),
		Status:       workshift.StatusReview,
		ReviewReason: &reason,
	})

	resp, err := f.service.ResolveReview(context.Background(), adminActor(), seeded.ID, workshift.ResolveReviewRequest{
		StartAt: "2025-09-01T01:00:00Z",
		EndAt:   "2025-09-01T04:00:00Z",
	})

	require.NoError(t, err)
	assert.Equal(t, string(workshift.StatusCompleted), resp.Status)
	assert.Equal(t, 180, resp.WorkedMinutes)
	require.NotNil(t, resp.FinalPayAmount)
	assert.Equal(t, int64(30000), *resp.FinalPayAmount)
	require.NotNil(t, resp.ActualInAt)
	assert.Equal(t, "2025-09-01T00:55:00Z", *resp.ActualInAt)
	require.NotNil(t, resp.ReviewResolvedAt)
	require.NotNil(t, resp.ReviewedBy)
	assert.Equal(t, testAdminID, *resp.ReviewedBy)
	assert.Len(t, f.recorder.OfType(events.TypeShiftReviewResolved), 1)
}

func TestWorkShiftService_ResolveReview_RequiresReviewStatus(t *testing.T) {
	f := newFixture(t)
	created := f.createShift(t, employeeActor(testEmployeeID), "2025-09-01T00:00:00Z", "2025-09-01T08:00:00Z")

	_, err := f.service.ResolveReview(context.Background(), adminActor(), created.ID, workshift.ResolveReviewRequest{
		StartAt: "2025-09-01T01:00:00Z",
		EndAt:   "2025-09-01T04:00:00Z",
	})

	assert.ErrorIs(t, err, workshift.ErrForbiddenTransition)
}

func TestWorkShiftService_ResolveReview_RejectsOverlap(t *testing.T) {
	f := newFixture(t)
	f.createShift(t, employeeActor(testEmployeeID), "2025-09-01T10:00:00Z", "2025-09-01T12:00:00Z")
	seeded := f.seed(t, workshift.WorkShift{
		ShopID:     testShopID,
		EmployeeID: testEmployeeID,
		StartAt:    at("2025-09-01T00:00:00Z"),
		EndAt:      atPtr("2025-09-01T08:00:00Z"),
		Status:     workshift.StatusReview,
	})

	_, err := f.service.ResolveReview(context.Background(), adminActor(), seeded.ID, workshift.ResolveReviewRequest{
		StartAt: "2025-09-01T06:00:00Z",
		EndAt:   "2025-09-01T11:00:00Z",
	})

	assert.ErrorIs(t, err, workshift.ErrShiftOverlap)
	stored, err := f.store.Shifts().GetByID(context.Background(), seeded.ID, testShopID)
	require.NoError(t, err)
	assert.Equal(t, workshift.StatusReview, stored.Status)
}

// ===== CANCEL / DELETE =====

func TestWorkShiftService_CancelShift(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.createShift(t, employeeActor(testEmployeeID), "2025-09-01T00:00:00Z", "2025-09-01T08:00:00Z")

	resp, err := f.service.CancelShift(ctx, adminActor(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, string(workshift.StatusCanceled), resp.Status)

	_, err = f.service.CancelShift(ctx, adminActor(), created.ID)
	assert.ErrorIs(t, err, workshift.ErrForbiddenTransition)

	// a canceled window no longer blocks new shifts
	f.createShift(t, employeeActor(testEmployeeID), "2025-09-01T02:00:00Z", "2025-09-01T06:00:00Z")
}

func TestWorkShiftService_DeleteShiftByEmployee_Guards(t *testing.T) {
	tests := []struct {
		name    string
		shift   workshift.WorkShift
		wantErr error
	}{
		{
			name:  "scheduled without attendance",
			shift: workshift.WorkShift{Status: workshift.StatusScheduled},
		},
		{
			name:  "review without attendance",
			shift: workshift.WorkShift{Status: workshift.StatusReview},
		},
		{
			name:    "has actual clock-in",
			shift:   workshift.WorkShift{Status: workshift.StatusScheduled, ActualInAt: atPtr("2025-09-01T00:00:00Z")},
			wantErr: workshift.ErrShiftNotDeletable,
		},
		{
			name:    "in progress",
			shift:   workshift.WorkShift{Status: workshift.StatusInProgress},
			wantErr: workshift.ErrShiftNotDeletable,
		},
		{
			name:    "completed",
			shift:   workshift.WorkShift{Status: workshift.StatusCompleted},
			wantErr: workshift.ErrShiftNotDeletable,
		},
		{
			name:    "canceled",
			shift:   workshift.WorkShift{Status: workshift.StatusCanceled},
			wantErr: workshift.ErrShiftNotDeletable,
		},
		{
			name:    "settled",
			shift:   workshift.WorkShift{Status: workshift.StatusReview, SettlementID: strPtr("settlement-1")},
			wantErr: workshift.ErrShiftNotDeletable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			shift := tt.shift
			shift.ShopID = testShopID
			shift.EmployeeID = testEmployeeID
			shift.StartAt = at("2025-09-01T00:00:00Z")
			shift.EndAt = atPtr("2025-09-01T08:00:00Z")
			seeded := f.seed(t, shift)

			err := f.service.DeleteShiftByEmployee(ctx, employeeActor(testEmployeeID), seeded.ID)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				_, getErr := f.store.Shifts().GetByID(ctx, seeded.ID, testShopID)
				assert.NoError(t, getErr)
				return
			}
			require.NoError(t, err)
			_, getErr := f.store.Shifts().GetByID(ctx, seeded.ID, testShopID)
			assert.ErrorIs(t, getErr, workshift.ErrShiftNotFound)
		})
	}
}

func TestWorkShiftService_DeleteShiftByAdmin_Unconditional(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pay := int64(80000)
	seeded := f.seed(t, workshift.WorkShift{
		ShopID:         testShopID,
		EmployeeID:     testEmployeeID,
		StartAt:        at("2025-09-01T00:00:00Z"),
		EndAt:          atPtr("2025-09-01T08:00:00Z"),
		ActualInAt:     atPtr("2025-09-01T00:00:00Z"),
		ActualOutAt:    atPtr("2025-09-01T08:00:00Z"),
		Status:         workshift.StatusCompleted,
		FinalPayAmount: &pay,
		SettlementID:   strPtr("settlement-1"),
	})

	require.NoError(t, f.service.DeleteShiftByAdmin(ctx, adminActor(), seeded.ID))

	_, err := f.store.Shifts().GetByID(ctx, seeded.ID, testShopID)
	assert.ErrorIs(t, err, workshift.ErrShiftNotFound)
}

// ===== READ =====

func TestWorkShiftService_ListShifts_EmployeeSeesOwnShifts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createShift(t, employeeActor(testEmployeeID), "2025-09-01T00:00:00Z", "2025-09-01T08:00:00Z")
	f.createShift(t, employeeActor(testEmployeeID), "2025-09-02T00:00:00Z", "2025-09-02T08:00:00Z")
	f.createShift(t, employeeActor(testOtherID), "2025-09-01T00:00:00Z", "2025-09-01T08:00:00Z")

	own, err := f.service.ListShifts(ctx, employeeActor(testEmployeeID), workshift.ShiftFilterRequest{
		EmployeeID: strPtr(testOtherID),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), own.TotalCount)
	for _, s := range own.Shifts {
		assert.Equal(t, testEmployeeID, s.EmployeeID)
	}

	all, err := f.service.ListShifts(ctx, adminActor(), workshift.ShiftFilterRequest{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), all.TotalCount)
	assert.Equal(t, 2, all.TotalPages)
	assert.Len(t, all.Shifts, 2)
	assert.Equal(t, "2025-09-02T00:00:00Z", all.Shifts[0].StartAt)
}

func TestWorkShiftService_GetShift_HidesOtherEmployees(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.createShift(t, employeeActor(testOtherID), "2025-09-01T00:00:00Z", "2025-09-01T08:00:00Z")

	_, err := f.service.GetShift(ctx, employeeActor(testEmployeeID), created.ID)
	assert.ErrorIs(t, err, workshift.ErrShiftNotFound)

	resp, err := f.service.GetShift(ctx, adminActor(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, resp.ID)
}
