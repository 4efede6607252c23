package http

import (
	"encoding/json"
	"net/http"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/adhoc"
	"github.com/cmlabs-hris/payroll-engine/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type AdHocHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Submit(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
	Cancel(w http.ResponseWriter, r *http.Request)
}

type adHocHandlerImpl struct {
	adHocService adhoc.AdHocService
}

func NewAdHocHandler(adHocService adhoc.AdHocService) AdHocHandler {
	return &adHocHandlerImpl{adHocService: adHocService}
}

func (h *adHocHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req adhoc.CreateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	req.CompanyID = chi.URLParam(r, "companyID")

	item, err := h.adHocService.CreateItem(r.Context(), req)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.Created(w, "Ad hoc item created", adhoc.ToResponse(item))
}

func (h *adHocHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.adHocService.GetItem(r.Context(), chi.URLParam(r, "id"))
	h.respond(w, r, item, err)
}

func (h *adHocHandlerImpl) Submit(w http.ResponseWriter, r *http.Request) {
	item, err := h.adHocService.Submit(r.Context(), chi.URLParam(r, "id"))
	h.respond(w, r, item, err)
}

func (h *adHocHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	var req adhoc.ApproveItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	item, err := h.adHocService.Approve(r.Context(), chi.URLParam(r, "id"), req)
	h.respond(w, r, item, err)
}

func (h *adHocHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	var req adhoc.RejectItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	item, err := h.adHocService.Reject(r.Context(), chi.URLParam(r, "id"), req)
	h.respond(w, r, item, err)
}

func (h *adHocHandlerImpl) Cancel(w http.ResponseWriter, r *http.Request) {
	item, err := h.adHocService.Cancel(r.Context(), chi.URLParam(r, "id"))
	h.respond(w, r, item, err)
}

func (h *adHocHandlerImpl) respond(w http.ResponseWriter, r *http.Request, item adhoc.Item, err error) {
	if err != nil {
		response.HandleError(w, r, err)
		return
	}
	response.Success(w, adhoc.ToResponse(item))
}
