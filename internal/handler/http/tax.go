package http

import (
	"encoding/json"
	"net/http"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/tax"
	"github.com/cmlabs-hris/payroll-engine/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type TaxHandler interface {
	CreateConfiguration(w http.ResponseWriter, r *http.Request)
	GetConfiguration(w http.ResponseWriter, r *http.Request)
}

type taxHandlerImpl struct {
	taxService tax.TaxService
}

func NewTaxHandler(taxService tax.TaxService) TaxHandler {
	return &taxHandlerImpl{taxService: taxService}
}

func (h *taxHandlerImpl) CreateConfiguration(w http.ResponseWriter, r *http.Request) {
	var req tax.CreateConfigurationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	req.CompanyID = chi.URLParam(r, "companyID")

	cfg, err := h.taxService.CreateConfiguration(r.Context(), req)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.Created(w, "Tax configuration created", tax.ToResponse(cfg))
}

func (h *taxHandlerImpl) GetConfiguration(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.taxService.GetConfiguration(r.Context(), chi.URLParam(r, "companyID"), chi.URLParam(r, "financialYear"))
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.Success(w, tax.ToResponse(cfg))
}
