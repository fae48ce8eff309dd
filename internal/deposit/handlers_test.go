package deposit

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-agency/internal/common"
)

func TestAdjustRejectsRequestWithoutPINGate(t *testing.T) {
	h := &Handlers{}

	r := httptest.NewRequest("POST", "/api/v1/customers/abc/deposit/adjust",
		strings.NewReader(`{"kind":"credit","amount":5000,"note":"opening balance"}`))
	w := httptest.NewRecorder()
	h.Adjust(w, r)

	require.Equal(t, http.StatusForbidden, w.Code)
	require.Contains(t, w.Body.String(), "FORBIDDEN")
}

func TestAdjustAllowedAfterPINGate(t *testing.T) {
	h := &Handlers{}

	// The customer id is invalid, so the request fails after the gate check.
	r := httptest.NewRequest("POST", "/api/v1/customers/abc/deposit/adjust",
		strings.NewReader(`{"kind":"credit","amount":5000,"note":"opening balance"}`))
	r = r.WithContext(common.WithPINVerified(r.Context()))
	w := httptest.NewRecorder()
	h.Adjust(w, r)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "invalid customer id")
}
