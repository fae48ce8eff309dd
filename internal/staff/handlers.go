package staff

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/noah-isme/backend-agency/internal/common"
)

// Handlers exposes the staff administration endpoints.
type Handlers struct {
	Svc      *Service
	Validate *validator.Validate
	Pages    common.PageLimits
}

type createRequest struct {
	Name     string   `json:"name" validate:"required,min=2,max=120"`
	Email    string   `json:"email" validate:"required,email"`
	Password string   `json:"password" validate:"required,min=8,max=128"`
	Roles    []string `json:"roles" validate:"omitempty,dive,oneof=staff billcreator admin"`
}

// Create handles POST /api/v1/staff.
func (h *Handlers) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.WriteError(w, common.ErrValidation("invalid JSON body"))
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		common.WriteError(w, common.ErrValidation(err.Error()))
		return
	}
	st, err := h.Svc.Create(r.Context(), CreateParams{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Roles:    req.Roles,
	})
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusCreated, st)
}

// List handles GET /api/v1/staff.
func (h *Handlers) List(w http.ResponseWriter, r *http.Request) {
	page, perPage := h.Pages.Parse(r)
	items, total, err := h.Svc.List(r.Context(), perPage, common.Offset(page, perPage))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONList(w, http.StatusOK, items, common.Pagination{
		Page: page, PerPage: perPage, TotalItems: total,
	})
}

// Get handles GET /api/v1/staff/{id}.
func (h *Handlers) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.WriteError(w, common.ErrValidation("invalid staff id"))
		return
	}
	st, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, st)
}

type updateRequest struct {
	Name   string   `json:"name" validate:"required,min=2,max=120"`
	Roles  []string `json:"roles" validate:"required,min=1,dive,oneof=staff billcreator admin"`
	Active bool     `json:"active"`
}

// Update handles PUT /api/v1/staff/{id}.
func (h *Handlers) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.WriteError(w, common.ErrValidation("invalid staff id"))
		return
	}
	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.WriteError(w, common.ErrValidation("invalid JSON body"))
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		common.WriteError(w, common.ErrValidation(err.Error()))
		return
	}
	st, err := h.Svc.Update(r.Context(), id, UpdateParams{
		Name:   req.Name,
		Roles:  req.Roles,
		Active: req.Active,
	})
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, st)
}

type setPINRequest struct {
	PIN string `json:"pin" validate:"required,min=4,max=8,numeric"`
}

// SetPIN handles PUT /api/v1/staff/{id}/pin. Staff may set their own
// PIN; admins may set anyone's.
func (h *Handlers) SetPIN(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.WriteError(w, common.ErrValidation("invalid staff id"))
		return
	}
	actor, _ := common.StaffID(r.Context())
	if actor != id.String() && !common.HasRole(r.Context(), RoleAdmin) {
		common.WriteError(w, common.ErrForbidden("cannot set another staff member's pin"))
		return
	}
	var req setPINRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.WriteError(w, common.ErrValidation("invalid JSON body"))
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		common.WriteError(w, common.ErrValidation(err.Error()))
		return
	}
	if err := h.Svc.SetPIN(r.Context(), id, req.PIN); err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, map[string]string{"status": "pin updated"})
}

type setPasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=128"`
}

// SetPassword handles PUT /api/v1/staff/{id}/password. Accounts may only
// change their own password.
func (h *Handlers) SetPassword(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.WriteError(w, common.ErrValidation("invalid staff id"))
		return
	}
	actor, _ := common.StaffID(r.Context())
	if actor != id.String() {
		common.WriteError(w, common.ErrForbidden("cannot change another staff member's password"))
		return
	}
	var req setPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.WriteError(w, common.ErrValidation("invalid JSON body"))
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		common.WriteError(w, common.ErrValidation(err.Error()))
		return
	}
	if err := h.Svc.SetPassword(r.Context(), id, req.CurrentPassword, req.NewPassword); err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, map[string]string{"status": "password updated"})
}
