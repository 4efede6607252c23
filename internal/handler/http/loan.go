package http

import (
	"encoding/json"
	"net/http"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/loan"
	"github.com/cmlabs-hris/payroll-engine/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type LoanHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	GetSchedule(w http.ResponseWriter, r *http.Request)
	UpdateStatus(w http.ResponseWriter, r *http.Request)
}

type loanHandlerImpl struct {
	loanService loan.LoanService
}

func NewLoanHandler(loanService loan.LoanService) LoanHandler {
	return &loanHandlerImpl{loanService: loanService}
}

func (h *loanHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req loan.CreateLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	req.CompanyID = chi.URLParam(r, "companyID")

	l, err := h.loanService.CreateLoan(r.Context(), req)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.Created(w, "Loan created", loan.ToResponse(l))
}

func (h *loanHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	l, err := h.loanService.GetLoan(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "companyID"))
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.Success(w, loan.ToResponse(l))
}

func (h *loanHandlerImpl) GetSchedule(w http.ResponseWriter, r *http.Request) {
	schedule, err := h.loanService.GetRepaymentSchedule(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "companyID"))
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.Success(w, schedule)
}

func (h *loanHandlerImpl) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req loan.UpdateLoanStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	l, err := h.loanService.UpdateLoanStatus(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "companyID"), loan.Status(req.Status))
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.Success(w, loan.ToResponse(l))
}
