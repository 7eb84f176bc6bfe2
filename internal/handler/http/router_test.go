package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cmlabs-hris/shift-payroll-backend/internal/domain/attendance"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/domain/employee"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/domain/payroll"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/domain/shop"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/handler/http/response"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/pkg/clock"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/pkg/events"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/pkg/jwt"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/repository/memory"
	attendanceService "github.com/cmlabs-hris/shift-payroll-backend/internal/service/attendance"
	payrollService "github.com/cmlabs-hris/shift-payroll-backend/internal/service/payroll"
	reportService "github.com/cmlabs-hris/shift-payroll-backend/internal/service/report"
	workshiftService "github.com/cmlabs-hris/shift-payroll-backend/internal/service/workshift"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	handlerTestSecret     = "test-secret-key-for-jwt"
	handlerTestShopID     = "0190b5a0-0000-7000-8000-000000000001"
	handlerTestEmployeeID = "0190b5a0-0000-7000-8000-0000000000e1"
	handlerTestAdminID    = "0190b5a0-0000-7000-8000-0000000000a1"
)

type routerFixture struct {
	router     *chi.Mux
	jwtService *jwt.JWTService
	clock      *clock.FixedClock
}

func newRouterFixture(t *testing.T) routerFixture {
	t.Helper()

	store := memory.NewStore()
	hourly := employee.PayUnitHourly
	rate := decimal.NewFromInt(10000)
	store.PutShop(shop.Shop{ID: handlerTestShopID, Name: "Main Street"})
	store.PutEmployee(employee.Employee{
		ID:       handlerTestEmployeeID,
		ShopID:   handlerTestShopID,
		FullName: "Kim Staff",
		PayUnit:  &hourly,
		Pay:      &rate,
		IsActive: true,
	})

	clk := clock.Fixed(time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC))
	publisher := events.NewRecorder()
	jwtService := jwt.NewJWTService(handlerTestSecret, time.Hour, jwt.NewMemoryTokenStore())
	rates := payroll.TaxRates{
		IncomeRate:        decimal.RequireFromString("0.03"),
		LocalRateOnIncome: decimal.RequireFromString("0.10"),
	}

	shiftSvc := workshiftService.NewWorkShiftService(store.Shifts(), store.Employees(), publisher, clk)
	attendanceSvc := attendanceService.NewAttendanceService(store.Shifts(), store.Employees(), attendance.Policy{EarlyWindow: time.Hour}, clk)
	payrollSvc := payrollService.NewPayrollService(store, store.Settlements(), store.Shifts(), store.Employees(), store.Shops(), rates, publisher, clk)
	reportSvc := reportService.NewReportService(store.Shifts(), store.Employees(), store.Settlements(), store.Shops(), rates)

	router := NewRouter(
		RouterOptions{AllowedOrigins: []string{"http://localhost:3000"}, Env: "test", LogOutput: io.Discard},
		jwtService,
		NewAuthHandler(jwtService),
		NewShiftHandler(shiftSvc),
		NewAttendanceHandler(attendanceSvc),
		NewPayrollHandler(payrollSvc),
		NewReportHandler(reportSvc),
	)

	return routerFixture{router: router, jwtService: jwtService, clock: clk}
}

func (f routerFixture) employeeToken(t *testing.T) string {
	t.Helper()
	employeeID := handlerTestEmployeeID
	token, _, err := f.jwtService.GenerateAccessToken(jwt.AccessClaims{
		UserID:     "user-" + handlerTestEmployeeID,
		ShopID:     handlerTestShopID,
		EmployeeID: &employeeID,
	})
	require.NoError(t, err)
	return token
}

func (f routerFixture) adminToken(t *testing.T) string {
	t.Helper()
	token, _, err := f.jwtService.GenerateAccessToken(jwt.AccessClaims{
		UserID:  handlerTestAdminID,
		ShopID:  handlerTestShopID,
		IsAdmin: true,
	})
	require.NoError(t, err)
	return token
}

func (f routerFixture) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var resp response.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestRouter_Healthz(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodGet, "/healthz", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_RequiresToken(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/shifts", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/shifts", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_AdminRoutesRejectEmployees(t *testing.T) {
	f := newRouterFixture(t)
	token := f.employeeToken(t)

	for _, path := range []string{
		"/api/v1/admin/reports/overview?year=2025&month=9",
		"/api/v1/admin/payroll/settlements",
	} {
		rec := f.do(t, http.MethodGet, path, token, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code, path)
	}
}

func TestRouter_ShiftLifecycle(t *testing.T) {
	f := newRouterFixture(t)
	token := f.employeeToken(t)

	rec := f.do(t, http.MethodPost, "/api/v1/shifts", token, map[string]interface{}{
		"start_at": "2025-09-02T09:00:00+09:00",
		"end_at":   "2025-09-02T18:00:00+09:00",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		Data struct {
			ID         string `json:"id"`
			EmployeeID string `json:"employee_id"`
			Status     string `json:"status"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, handlerTestEmployeeID, created.Data.EmployeeID)
	assert.Equal(t, "SCHEDULED", created.Data.Status)

	rec = f.do(t, http.MethodGet, "/api/v1/shifts/"+created.Data.ID, token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/shifts", token, map[string]interface{}{
		"start_at": "2025-09-02T12:00:00+09:00",
		"end_at":   "2025-09-02T20:00:00+09:00",
	})
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "SHIFT_OVERLAP", decodeResponse(t, rec).Error.Code)

	rec = f.do(t, http.MethodDelete, "/api/v1/shifts/"+created.Data.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/api/v1/shifts/"+created.Data.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_AdminShiftEdits(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/shifts", f.employeeToken(t), map[string]interface{}{
		"start_at": "2025-09-03T09:00:00+09:00",
		"end_at":   "2025-09-03T18:00:00+09:00",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	path := "/api/v1/admin/shifts/" + created.Data.ID

	rec = f.do(t, http.MethodPatch, path, f.adminToken(t), map[string]interface{}{"review_reason": "LATE_IN"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid review reason", decodeResponse(t, rec).Error.Message)

	rec = f.do(t, http.MethodPatch, path, f.adminToken(t), map[string]interface{}{"status": "IN_PROGRESS"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid shift status", decodeResponse(t, rec).Error.Message)

	rec = f.do(t, http.MethodDelete, path, f.adminToken(t), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/shifts/"+created.Data.ID, f.adminToken(t), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_ShiftValidation(t *testing.T) {
	f := newRouterFixture(t)
	token := f.employeeToken(t)

	rec := f.do(t, http.MethodPost, "/api/v1/shifts", token, map[string]interface{}{
		"start_at": "yesterday",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Contains(t, resp.Error.Details, "start_at")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/shifts", bytes.NewBufferString("{"))
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_LogoutRevokesToken(t *testing.T) {
	f := newRouterFixture(t)
	token := f.employeeToken(t)

	rec := f.do(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Token revoked", decodeResponse(t, rec).Error.Message)
}

func TestRouter_AdminReportOverview(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/admin/reports/overview?year=2025&month=9", f.adminToken(t), nil)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/api/v1/admin/reports/overview?year=2025&month=13", f.adminToken(t), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
