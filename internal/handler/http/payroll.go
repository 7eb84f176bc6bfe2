package http

import (
	"net/http"

	"github.com/cmlabs-hris/shift-payroll-backend/internal/domain/payroll"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/handler/http/response"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type PayrollHandler interface {
	Settle(w http.ResponseWriter, r *http.Request)
	SettleAll(w http.ResponseWriter, r *http.Request)
	Recompute(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
}

type payrollHandlerImpl struct {
	payrollService payroll.PayrollService
}

func NewPayrollHandler(payrollService payroll.PayrollService) PayrollHandler {
	return &payrollHandlerImpl{payrollService: payrollService}
}

// Settle implements PayrollHandler.
func (h *payrollHandlerImpl) Settle(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}

	var req payroll.SettleEmployeeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.payrollService.SettleEmployeeCycle(r.Context(), actor, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Payroll settled", result)
}

// SettleAll implements PayrollHandler.
func (h *payrollHandlerImpl) SettleAll(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}

	var req payroll.SettleAllRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.payrollService.SettleAllEmployeesCycle(r.Context(), actor, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Recompute implements PayrollHandler.
func (h *payrollHandlerImpl) Recompute(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}

	var req payroll.SettleEmployeeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.payrollService.RecomputeEmployeeCycle(r.Context(), actor, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll recomputed", result)
}

// List implements PayrollHandler.
func (h *payrollHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}

	var errs validator.ValidationErrors
	filter := payroll.SettlementFilterRequest{
		EmployeeID: queryString(r, "employee_id"),
		Year:       queryInt(r, "year", &errs),
		Month:      queryInt(r, "month", &errs),
		Page:       intOrZero(queryInt(r, "page", &errs)),
		Limit:      intOrZero(queryInt(r, "limit", &errs)),
	}
	if err := errs.OrNil(); err != nil {
		response.HandleError(w, err)
		return
	}

	results, err := h.payrollService.ListSettlements(r.Context(), actor, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, results)
}

// Get implements PayrollHandler.
func (h *payrollHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}

	result, err := h.payrollService.GetSettlement(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
