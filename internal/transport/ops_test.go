package transport

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/darkfeedlabs/leakwatch/internal/observability"
)

func opsRouter(t *testing.T, healthy bool) http.Handler {
	t.Helper()
	reg := prometheus.NewRegistry()
	observability.InitMetrics(reg)
	return NewOpsRouter("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), observability.ReadinessChecks{
		CatalogLoaded:   func() bool { return true },
		UpstreamHealthy: func() bool { return healthy },
	})
}

func TestOpsRouter_Metrics(t *testing.T) {
	srv := httptest.NewServer(opsRouter(t, true))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestOpsRouter_Health(t *testing.T) {
	srv := httptest.NewServer(opsRouter(t, true))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestOpsRouter_ReadinessReflectsBreaker(t *testing.T) {
	srv := httptest.NewServer(opsRouter(t, false))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/readyz")
	if err != nil {
		t.Fatalf("GET /readyz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", resp.StatusCode)
	}
}
