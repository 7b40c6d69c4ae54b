// Package integration provides a reusable test harness for end-to-end
// testing of the gateway: the operation catalog, the dispatch pipeline, and
// the real upstream HTTP client wired against a mock of the
// Ransomware.live Pro API.
package integration

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/darkfeedlabs/leakwatch/internal/catalog"
	"github.com/darkfeedlabs/leakwatch/internal/config"
	"github.com/darkfeedlabs/leakwatch/internal/dispatch"
	"github.com/darkfeedlabs/leakwatch/internal/upstream"
)

// apiKey is the key the mock API accepts.
const apiKey = "integration-key"

// Harness wires a dispatcher against a mock upstream API.
type Harness struct {
	t          *testing.T
	server     *httptest.Server
	Dispatcher *dispatch.Dispatcher
	Client     *upstream.Client

	// RequestCount counts requests that reached the mock API.
	RequestCount atomic.Int32
}

// HarnessOption configures the test harness.
type HarnessOption func(*harnessConfig)

type harnessConfig struct {
	upstreamCfg config.UpstreamConfig
	key         string
}

// WithRetry enables the upstream retry policy.
func WithRetry(attempts int) HarnessOption {
	return func(c *harnessConfig) {
		c.upstreamCfg.Retry = config.RetryConfig{
			MaxAttempts:    attempts,
			BackoffInitial: time.Millisecond,
			BackoffMax:     5 * time.Millisecond,
		}
	}
}

// WithBreaker enables the circuit breaker with the given thresholds.
func WithBreaker(failures, successes int) HarnessOption {
	return func(c *harnessConfig) {
		c.upstreamCfg.CircuitBreaker = config.CircuitBreakerConfig{
			FailureThreshold: failures,
			SuccessThreshold: successes,
			Timeout:          time.Minute,
		}
	}
}

// WithAPIKey overrides the key presented to the mock API.
func WithAPIKey(key string) HarnessOption {
	return func(c *harnessConfig) {
		c.key = key
	}
}

// NewHarness starts a mock upstream API and builds a dispatcher against it.
// Cleanup is registered on t.
func NewHarness(t *testing.T, opts ...HarnessOption) *Harness {
	t.Helper()

	hc := &harnessConfig{
		upstreamCfg: config.UpstreamConfig{Timeout: 2 * time.Second},
		key:         apiKey,
	}
	for _, opt := range opts {
		opt(hc)
	}

	h := &Harness{t: t}
	h.server = httptest.NewServer(h.routes())
	t.Cleanup(h.server.Close)

	hc.upstreamCfg.BaseURL = h.server.URL
	h.Client = upstream.NewClient(hc.upstreamCfg, hc.key, zap.NewNop())
	t.Cleanup(h.Client.Close)

	h.Dispatcher = dispatch.New(catalog.Default(), h.Client, zap.NewNop(), nil)
	return h
}

// routes serves a minimal slice of the upstream API surface.
func (h *Harness) routes() http.Handler {
	mux := http.NewServeMux()

	auth := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			h.RequestCount.Add(1)
			if r.Header.Get("X-API-KEY") != apiKey {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"invalid API key"}`))
				return
			}
			next(w, r)
		}
	}

	mux.HandleFunc("/listgroups", auth(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]map[string]any{
			{"name": "lockbit3", "victims": 1200},
			{"name": "alphv", "victims": 730},
		})
	}))
	mux.HandleFunc("/groups/", auth(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/groups/")
		if name != "lockbit3" {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"group not found"}`))
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"name": "lockbit3", "active": true})
	}))
	mux.HandleFunc("/victims", auth(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("year") == "2024" {
			json.NewEncoder(w).Encode([]map[string]any{{"victim": "acme-corp", "group": "lockbit3"}})
			return
		}
		w.Write([]byte(`[]`))
	}))
	mux.HandleFunc("/victims/recent", auth(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"order": r.URL.Query().Get("order")})
	}))
	mux.HandleFunc("/stats", auth(func(w http.ResponseWriter, r *http.Request) {
		// Empty body on a 200, exercising the no-data path.
	}))
	mux.HandleFunc("/ransomnotes", auth(func(w http.ResponseWriter, r *http.Request) {
		// Permanently degraded endpoint for retry and breaker scenarios.
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":"service unavailable"}`))
	}))

	return mux
}
