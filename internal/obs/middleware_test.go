package obs

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestStatusRecorderCapturesStatusAndBytes(t *testing.T) {
	rec := httptest.NewRecorder()
	sr := NewStatusRecorder(rec)
	sr.WriteHeader(http.StatusTeapot)
	n, err := sr.Write([]byte("short and stout"))
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if sr.Status() != http.StatusTeapot {
		t.Fatalf("status = %d", sr.Status())
	}
	if sr.BytesWritten() != int64(n) {
		t.Fatalf("bytes = %d, want %d", sr.BytesWritten(), n)
	}
}

func TestHTTPObsCountsRequests(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewHTTPMetrics("agency_test", nil, reg)
	handler := HTTPObs{Metrics: metrics}.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tickets", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	count := testutil.ToFloat64(metrics.ReqTotal.WithLabelValues(http.MethodPost, "/api/v1/tickets", "201"))
	if count != 1 {
		t.Fatalf("request counter = %v, want 1", count)
	}
}

func TestRoutePatternContextRoundTrip(t *testing.T) {
	ctx := WithRoutePattern(t.Context(), "/api/v1/invoices/{id}")
	if got := RoutePatternFromContext(ctx); got != "/api/v1/invoices/{id}" {
		t.Fatalf("pattern = %q", got)
	}
}
