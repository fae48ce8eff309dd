package audit

import (
	"net/http"

	"github.com/noah-isme/backend-agency/internal/common"
)

// Handlers exposes the admin audit log listing.
type Handlers struct {
	Svc   *Service
	Pages common.PageLimits
}

// List handles GET /api/v1/audit. Admin only.
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
