package auth

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/noah-isme/backend-agency/internal/common"
)

// Handlers exposes the authentication endpoints.
type Handlers struct {
	Svc      *Service
	Validate *validator.Validate
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login handles POST /api/v1/auth/login.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.WriteError(w, common.ErrValidation("invalid JSON body"))
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		common.WriteError(w, common.ErrValidation(err.Error()))
		return
	}
	result, err := h.Svc.Login(r.Context(), req.Email, req.Password, r.UserAgent(), common.ClientIP(r))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, result)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// Refresh handles POST /api/v1/auth/refresh.
func (h *Handlers) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.WriteError(w, common.ErrValidation("invalid JSON body"))
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		common.WriteError(w, common.ErrValidation(err.Error()))
		return
	}
	result, err := h.Svc.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, result)
}

// Logout handles POST /api/v1/auth/logout. Revoking an unknown token is not
// an error.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.WriteError(w, common.ErrValidation("invalid JSON body"))
		return
	}
	if err := h.Svc.Logout(r.Context(), req.RefreshToken); err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// LogoutAll handles POST /api/v1/auth/logout-all. It revokes every session
// held by the authenticated account.
func (h *Handlers) LogoutAll(w http.ResponseWriter, r *http.Request) {
	raw, ok := common.StaffID(r.Context())
	if !ok {
		common.WriteError(w, common.ErrUnauthorized())
		return
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		common.WriteError(w, common.ErrUnauthorized())
		return
	}
	if err := h.Svc.RevokeAll(r.Context(), id); err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, map[string]string{"status": "sessions revoked"})
}

// Me handles GET /api/v1/auth/me.
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := common.StaffID(r.Context())
	if !ok {
		common.WriteError(w, common.ErrUnauthorized())
		return
	}
	account, err := h.Svc.Me(r.Context(), id)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, account)
}
