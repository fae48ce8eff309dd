package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-agency/internal/common"
)

func TestAuthenticateAttachesIdentityWhenTokenPresent(t *testing.T) {
	svc, account, _ := newTestService(t)
	login, err := svc.Login(context.Background(), "rafi@agency.local", "secret-password", "go-test", "127.0.0.1")
	require.NoError(t, err)

	mw := Middleware{Service: svc}
	var gotID string
	var gotOK bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, gotOK = common.StaffID(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	r := httptest.NewRequest("GET", "/api/v1/invoices", nil)
	r.Header.Set("Authorization", "Bearer "+login.AccessToken)
	w := httptest.NewRecorder()
	mw.Authenticate(next).ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, gotOK)
	require.Equal(t, account.ID.String(), gotID)
}

func TestAuthenticatePassesAnonymousRequests(t *testing.T) {
	svc, _, _ := newTestService(t)

	mw := Middleware{Service: svc}
	var gotOK bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, gotOK = common.StaffID(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	r := httptest.NewRequest("GET", "/health/live", nil)
	w := httptest.NewRecorder()
	mw.Authenticate(next).ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	require.False(t, gotOK)
}

func TestAuthenticateIgnoresInvalidToken(t *testing.T) {
	svc, _, _ := newTestService(t)

	mw := Middleware{Service: svc}
	var gotOK bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, gotOK = common.StaffID(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	r := httptest.NewRequest("GET", "/api/v1/invoices", nil)
	r.Header.Set("Authorization", "Bearer garbage")
	w := httptest.NewRecorder()
	mw.Authenticate(next).ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	require.False(t, gotOK)
}
