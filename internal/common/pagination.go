package common

import "net/http"

// Pagination holds pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	TotalItems int64 `json:"total_items"`
}

// PageLimits carries the configured page-size bounds for list endpoints.
type PageLimits struct {
	Default int
	Max     int
}

// Parse extracts page and per-page query parameters within the configured
// bounds.
func (p PageLimits) Parse(r *http.Request) (page, perPage int) {
	def := p.Default
	if def <= 0 {
		def = 20
	}
	max := p.Max
	if max <= 0 {
		max = 100
	}
	return ParsePagination(r, def, max)
}

// ParsePagination extracts page and per-page parameters from query values.
func ParsePagination(r *http.Request, defaultPerPage, maxPerPage int) (page, perPage int) {
	page = AtoiDefault(r.URL.Query().Get("page"), 1)
	if page < 1 {
		page = 1
	}
	perPage = AtoiDefault(r.URL.Query().Get("limit"), defaultPerPage)
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if maxPerPage > 0 && perPage > maxPerPage {
		perPage = maxPerPage
	}
	return
}

// Offset converts page/perPage into a SQL offset.
func Offset(page, perPage int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * perPage
}
