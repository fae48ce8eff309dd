package invoice

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/noah-isme/backend-agency/internal/common"
)

// Handlers exposes the invoice read and void endpoints.
type Handlers struct {
	Svc      *Service
	Validate *validator.Validate
	Pages    common.PageLimits
}

// List handles GET /api/v1/invoices with ?customer_id= and ?status= filters.
func (h *Handlers) List(w http.ResponseWriter, r *http.Request) {
	var f ListFilter
	if raw := r.URL.Query().Get("customer_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			common.WriteError(w, common.ErrValidation("invalid customer_id filter"))
			return
		}
		f.CustomerID = id
	}
	f.Status = Status(r.URL.Query().Get("status"))

	page, perPage := h.Pages.Parse(r)
	items, total, err := h.Svc.List(r.Context(), f, perPage, common.Offset(page, perPage))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONList(w, http.StatusOK, items, common.Pagination{
		Page: page, PerPage: perPage, TotalItems: total,
	})
}

// Get handles GET /api/v1/invoices/{id}.
func (h *Handlers) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.WriteError(w, common.ErrValidation("invalid invoice id"))
		return
	}
	inv, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, inv)
}

type voidRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=400"`
}

// Void handles POST /api/v1/invoices/{id}/void. The route is mounted behind
// the transaction PIN gate.
func (h *Handlers) Void(w http.ResponseWriter, r *http.Request) {
	if !common.PINVerified(r.Context()) {
		common.WriteError(w, common.ErrForbidden("transaction pin required"))
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.WriteError(w, common.ErrValidation("invalid invoice id"))
		return
	}
	var req voidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.WriteError(w, common.ErrValidation("invalid JSON body"))
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		common.WriteError(w, common.ErrValidation(err.Error()))
		return
	}

	var actor uuid.UUID
	if raw, ok := common.StaffID(r.Context()); ok {
		actor, _ = uuid.Parse(raw)
	}
	inv, err := h.Svc.Void(r.Context(), id, actor, req.Reason)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, inv)
}
