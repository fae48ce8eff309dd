package receipt

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/noah-isme/backend-agency/internal/common"
)

// Handlers exposes the receipt endpoints.
type Handlers struct {
	Svc      *Service
	Validate *validator.Validate
	Pages    common.PageLimits
}

type recordRequest struct {
	CustomerID string `json:"customer_id" validate:"required,uuid"`
	InvoiceID  string `json:"invoice_id" validate:"omitempty,uuid"`
	Amount     int64  `json:"amount" validate:"required,gt=0"`
	Method     string `json:"method" validate:"required,oneof=cash bank mobile"`
	Reference  string `json:"reference" validate:"omitempty,max=120"`
	Note       string `json:"note" validate:"omitempty,max=400"`
	ToDeposit  bool   `json:"to_deposit"`
}

// Record handles POST /api/v1/receipts.
func (h *Handlers) Record(w http.ResponseWriter, r *http.Request) {
	var req recordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.WriteError(w, common.ErrValidation("invalid JSON body"))
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		common.WriteError(w, common.ErrValidation(err.Error()))
		return
	}
	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		common.WriteError(w, common.ErrValidation("invalid customer_id"))
		return
	}

	p := RecordParams{
		CustomerID: customerID,
		Amount:     req.Amount,
		Method:     Method(req.Method),
		Reference:  req.Reference,
		Note:       req.Note,
		ToDeposit:  req.ToDeposit,
	}
	if req.InvoiceID != "" {
		invoiceID, err := uuid.Parse(req.InvoiceID)
		if err != nil {
			common.WriteError(w, common.ErrValidation("invalid invoice_id"))
			return
		}
		p.InvoiceID = &invoiceID
	}
	if raw, ok := common.StaffID(r.Context()); ok {
		p.ActorID, _ = uuid.Parse(raw)
	}

	rec, err := h.Svc.Record(r.Context(), p)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusCreated, rec)
}

// ListByCustomer handles GET /api/v1/customers/{id}/receipts.
func (h *Handlers) ListByCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.WriteError(w, common.ErrValidation("invalid customer id"))
		return
	}
	page, perPage := h.Pages.Parse(r)
	receipts, total, err := h.Svc.ListByCustomer(r.Context(), customerID, perPage, common.Offset(page, perPage))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONList(w, http.StatusOK, receipts, common.Pagination{
		Page: page, PerPage: perPage, TotalItems: total,
	})
}

// Get handles GET /api/v1/receipts/{id}.
func (h *Handlers) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.WriteError(w, common.ErrValidation("invalid receipt id"))
		return
	}
	rec, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, rec)
}
