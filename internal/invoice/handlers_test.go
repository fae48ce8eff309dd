package invoice

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-agency/internal/common"
)

func TestVoidRejectsRequestWithoutPINGate(t *testing.T) {
	h := &Handlers{}

	r := httptest.NewRequest("POST", "/api/v1/invoices/abc/void",
		strings.NewReader(`{"reason":"duplicate entry"}`))
	w := httptest.NewRecorder()
	h.Void(w, r)

	require.Equal(t, http.StatusForbidden, w.Code)
	require.Contains(t, w.Body.String(), "FORBIDDEN")
}

func TestVoidAllowedAfterPINGate(t *testing.T) {
	h := &Handlers{}

	// The invoice id is invalid, so the request fails after the gate check.
	r := httptest.NewRequest("POST", "/api/v1/invoices/abc/void",
		strings.NewReader(`{"reason":"duplicate entry"}`))
	r = r.WithContext(common.WithPINVerified(r.Context()))
	w := httptest.NewRecorder()
	h.Void(w, r)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "invalid invoice id")
}
