package deposit

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/noah-isme/backend-agency/internal/common"
	"github.com/noah-isme/backend-agency/internal/fare"
)

// Handlers exposes deposit ledger endpoints under /customers/{id}/deposit.
type Handlers struct {
	Svc      *Service
	Validate *validator.Validate
	Pages    common.PageLimits
}

type statementResponse struct {
	Balance fare.Money `json:"balance"`
	Entries []Entry    `json:"entries"`
}

// Statement handles GET /api/v1/customers/{id}/deposit.
func (h *Handlers) Statement(w http.ResponseWriter, r *http.Request) {
	customerID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.WriteError(w, common.ErrValidation("invalid customer id"))
		return
	}
	balance, err := h.Svc.Balance(r.Context(), customerID)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	page, perPage := h.Pages.Parse(r)
	entries, total, err := h.Svc.Statement(r.Context(), customerID, perPage, common.Offset(page, perPage))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONList(w, http.StatusOK, statementResponse{Balance: balance, Entries: entries}, common.Pagination{
		Page: page, PerPage: perPage, TotalItems: total,
	})
}

type adjustRequest struct {
	Kind   string `json:"kind" validate:"required,oneof=credit debit"`
	Amount int64  `json:"amount" validate:"required,gt=0"`
	Note   string `json:"note" validate:"required,min=3,max=400"`
}

// Adjust handles POST /api/v1/customers/{id}/deposit/adjust. The route is
// mounted behind the transaction PIN gate.
func (h *Handlers) Adjust(w http.ResponseWriter, r *http.Request) {
	if !common.PINVerified(r.Context()) {
		common.WriteError(w, common.ErrForbidden("transaction pin required"))
		return
	}
	customerID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.WriteError(w, common.ErrValidation("invalid customer id"))
		return
	}
	var req adjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.WriteError(w, common.ErrValidation("invalid JSON body"))
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		common.WriteError(w, common.ErrValidation(err.Error()))
		return
	}
	p := MutateParams{
		CustomerID:    customerID,
		Amount:        req.Amount,
		ReferenceType: RefManual,
		Note:          req.Note,
		ActorID:       actorID(r),
	}
	var entry Entry
	if Kind(req.Kind) == KindDebit {
		entry, err = h.Svc.Debit(r.Context(), p)
	} else {
		entry, err = h.Svc.Credit(r.Context(), p)
	}
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusCreated, entry)
}

func actorID(r *http.Request) uuid.UUID {
	if id, ok := common.StaffID(r.Context()); ok {
		if parsed, err := uuid.Parse(id); err == nil {
			return parsed
		}
	}
	return uuid.Nil
}
