package http

import (
	"net/http"

	"github.com/cmlabs-hris/shift-payroll-backend/internal/domain/report"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/handler/http/response"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/pkg/validator"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportHandler interface {
	Overview(w http.ResponseWriter, r *http.Request)
	Employees(w http.ResponseWriter, r *http.Request)
	Export(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
}

func NewReportHandler(reportService report.ReportService) ReportHandler {
	return &reportHandlerImpl{reportService: reportService}
}

func periodFromQuery(w http.ResponseWriter, r *http.Request) (report.PeriodRequest, bool) {
	var errs validator.ValidationErrors
	req := report.PeriodRequest{CyclePeriod: queryCyclePeriod(r, &errs)}
	if err := errs.OrNil(); err != nil {
		response.HandleError(w, err)
		return report.PeriodRequest{}, false
	}
	return req, true
}

// Overview implements ReportHandler.
func (h *reportHandlerImpl) Overview(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}
	req, ok := periodFromQuery(w, r)
	if !ok {
		return
	}

	result, err := h.reportService.Overview(r.Context(), actor, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Employees implements ReportHandler.
func (h *reportHandlerImpl) Employees(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}
	req, ok := periodFromQuery(w, r)
	if !ok {
		return
	}

	result, err := h.reportService.EmployeeSummaries(r.Context(), actor, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Export implements ReportHandler.
func (h *reportHandlerImpl) Export(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}
	req, ok := periodFromQuery(w, r)
	if !ok {
		return
	}

	export, err := h.reportService.ExportSettlementWorkbook(r.Context(), actor, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Attachment(w, xlsxContentType, export.FileName, export.Content)
}
