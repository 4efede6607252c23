package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/handler/http/response"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/sse"
	"github.com/go-chi/chi/v5"
)

type PayrollHandler interface {
	// Runs
	CreateRun(w http.ResponseWriter, r *http.Request)
	GetRun(w http.ResponseWriter, r *http.Request)
	ProcessRun(w http.ResponseWriter, r *http.Request)
	LockRun(w http.ResponseWriter, r *http.Request)
	StreamRunEvents(w http.ResponseWriter, r *http.Request)

	// Payslips
	ListRunPayslips(w http.ResponseWriter, r *http.Request)
	GeneratePayslip(w http.ResponseWriter, r *http.Request)
	GetPayslip(w http.ResponseWriter, r *http.Request)
	UpdatePayslipStatus(w http.ResponseWriter, r *http.Request)
	ListEmployeePayslips(w http.ResponseWriter, r *http.Request)
}

type payrollHandlerImpl struct {
	payrollService payroll.PayrollService
	hub            *sse.Hub
	keepalive      time.Duration
}

func NewPayrollHandler(payrollService payroll.PayrollService, hub *sse.Hub) PayrollHandler {
	return &payrollHandlerImpl{
		payrollService: payrollService,
		hub:            hub,
		keepalive:      30 * time.Second,
	}
}

// ========== RUNS ==========

func (h *payrollHandlerImpl) CreateRun(w http.ResponseWriter, r *http.Request) {
	var req payroll.CreatePayrollRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	req.CompanyID = chi.URLParam(r, "companyID")

	run, err := h.payrollService.CreatePayrollRun(r.Context(), req)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.Created(w, "Payroll run created", payroll.ToRunResponse(run))
}

func (h *payrollHandlerImpl) GetRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.payrollService.GetPayrollRun(r.Context(), chi.URLParam(r, "runID"))
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.Success(w, payroll.ToRunResponse(run))
}

func (h *payrollHandlerImpl) ProcessRun(w http.ResponseWriter, r *http.Request) {
	var req payroll.ProcessPayrollRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	// The run outlives a disconnected client; per-employee timeouts bound it.
	// Per-employee failures are reported in the summary, not as an error.
	ctx := context.WithoutCancel(r.Context())
	summary, err := h.payrollService.ProcessPayrollRun(ctx, chi.URLParam(r, "runID"), req.ProcessedBy)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.Success(w, payroll.ToSummaryResponse(summary))
}

func (h *payrollHandlerImpl) LockRun(w http.ResponseWriter, r *http.Request) {
	var req payroll.LockPayrollRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	run, err := h.payrollService.LockPayrollRun(r.Context(), chi.URLParam(r, "runID"), req.LockedBy)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.Success(w, payroll.ToRunResponse(run))
}

// StreamRunEvents streams run progress as server-sent events until the run finishes.
// A run that is not draft or processing gets its current state and the stream ends.
func (h *payrollHandlerImpl) StreamRunEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		response.InternalServerError(w, "Streaming not supported")
		return
	}

	runID := chi.URLParam(r, "runID")
	events, cleanup := h.hub.Subscribe(runID)
	defer cleanup()

	// Subscribe before reading the run so a completion in between is not missed.
	run, err := h.payrollService.GetPayrollRun(r.Context(), runID)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	writeEvent(w, "run_status", payroll.ToRunResponse(run))
	flusher.Flush()
	if run.Status != payroll.RunStatusDraft && run.Status != payroll.RunStatusProcessing {
		return
	}

	keepalive := time.NewTicker(h.keepalive)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			writeEvent(w, event.Name, event.Data)
			flusher.Flush()
			if event.Name == payroll.EventRunCompleted || event.Name == payroll.EventRunFailed {
				return
			}

		case <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}

func writeEvent(w http.ResponseWriter, name string, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, payload)
}

// ========== PAYSLIPS ==========

func (h *payrollHandlerImpl) ListRunPayslips(w http.ResponseWriter, r *http.Request) {
	payslips, err := h.payrollService.ListPayslipsByRun(r.Context(), chi.URLParam(r, "runID"))
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.Success(w, toPayslipResponses(payslips))
}

func (h *payrollHandlerImpl) GeneratePayslip(w http.ResponseWriter, r *http.Request) {
	run, err := h.payrollService.GetPayrollRun(r.Context(), chi.URLParam(r, "runID"))
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	payslip, err := h.payrollService.GeneratePayslipForEmployee(r.Context(), payroll.GeneratePayslipRequest{
		EmployeeID: chi.URLParam(r, "employeeID"),
		RunID:      run.ID,
		CompanyID:  run.CompanyID,
		Month:      run.Month,
		Year:       run.Year,
	})
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.Created(w, "Payslip generated", payroll.ToPayslipResponse(payslip))
}

func (h *payrollHandlerImpl) GetPayslip(w http.ResponseWriter, r *http.Request) {
	payslip, err := h.payrollService.GetPayslip(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.Success(w, payroll.ToPayslipResponse(payslip))
}

func (h *payrollHandlerImpl) UpdatePayslipStatus(w http.ResponseWriter, r *http.Request) {
	var req payroll.UpdatePayslipStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	payslip, err := h.payrollService.UpdatePayslipStatus(r.Context(), chi.URLParam(r, "id"), payroll.PayslipStatus(req.Status))
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.Success(w, payroll.ToPayslipResponse(payslip))
}

func (h *payrollHandlerImpl) ListEmployeePayslips(w http.ResponseWriter, r *http.Request) {
	var year *int
	if yearStr := r.URL.Query().Get("year"); yearStr != "" {
		y, err := strconv.Atoi(yearStr)
		if err != nil {
			response.BadRequest(w, "Invalid year")
			return
		}
		year = &y
	}

	payslips, err := h.payrollService.ListPayslipsByEmployee(r.Context(), chi.URLParam(r, "employeeID"), chi.URLParam(r, "companyID"), year)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.Success(w, toPayslipResponses(payslips))
}

func toPayslipResponses(payslips []payroll.Payslip) []payroll.PayslipResponse {
	out := make([]payroll.PayslipResponse, 0, len(payslips))
	for _, p := range payslips {
		out = append(out, payroll.ToPayslipResponse(p))
	}
	return out
}
