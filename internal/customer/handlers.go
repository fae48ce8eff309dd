package customer

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/noah-isme/backend-agency/internal/common"
)

// Handlers exposes customer endpoints.
type Handlers struct {
	Svc      *Service
	Validate *validator.Validate
	Pages    common.PageLimits
}

type payload struct {
	Name           string `json:"name" validate:"required,min=2,max=160"`
	Phone          string `json:"phone" validate:"required,min=6,max=20"`
	Email          string `json:"email" validate:"omitempty,email"`
	Address        string `json:"address" validate:"omitempty,max=400"`
	PassportNumber string `json:"passport_number" validate:"omitempty,max=20"`
}

// Create handles POST /api/v1/customers.
func (h *Handlers) Create(w http.ResponseWriter, r *http.Request) {
	var req payload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.WriteError(w, common.ErrValidation("invalid JSON body"))
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		common.WriteError(w, common.ErrValidation(err.Error()))
		return
	}
	c, err := h.Svc.Create(r.Context(), CreateParams{
		Name:           req.Name,
		Phone:          req.Phone,
		Email:          req.Email,
		Address:        req.Address,
		PassportNumber: req.PassportNumber,
	})
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusCreated, c)
}

// List handles GET /api/v1/customers with ?q= search.
func (h *Handlers) List(w http.ResponseWriter, r *http.Request) {
	page, perPage := h.Pages.Parse(r)
	items, total, err := h.Svc.List(r.Context(), r.URL.Query().Get("q"), perPage, common.Offset(page, perPage))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONList(w, http.StatusOK, items, common.Pagination{
		Page: page, PerPage: perPage, TotalItems: total,
	})
}

// Get handles GET /api/v1/customers/{id}.
func (h *Handlers) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.WriteError(w, common.ErrValidation("invalid customer id"))
		return
	}
	c, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, c)
}

// Update handles PUT /api/v1/customers/{id}.
func (h *Handlers) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.WriteError(w, common.ErrValidation("invalid customer id"))
		return
	}
	var req payload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.WriteError(w, common.ErrValidation("invalid JSON body"))
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		common.WriteError(w, common.ErrValidation(err.Error()))
		return
	}
	c, err := h.Svc.Update(r.Context(), id, CreateParams{
		Name:           req.Name,
		Phone:          req.Phone,
		Email:          req.Email,
		Address:        req.Address,
		PassportNumber: req.PassportNumber,
	})
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, c)
}
