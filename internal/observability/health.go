package observability

import (
	"encoding/json"
	"net/http"
)

// Build-time variables injected via ldflags.
var (
	Version = "dev"
	Commit  = "unknown"
)

// HealthResponse is the JSON response for the liveness endpoint.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
}

// ReadinessResponse is the JSON response for the readiness endpoint.
type ReadinessResponse struct {
	Status string                 `json:"status"`
	Checks map[string]CheckResult `json:"checks"`
}

// CheckResult is the result of a single readiness check.
type CheckResult struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// ReadinessChecks holds the dependency checks for the readiness endpoint.
type ReadinessChecks struct {
	// CatalogLoaded reports whether the operation catalog is populated.
	CatalogLoaded func() bool
	// UpstreamHealthy reports whether the upstream circuit is not open.
	UpstreamHealthy func() bool
}

// HandleHealth returns an HTTP handler for the liveness endpoint.
func HandleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(HealthResponse{
			Status:  "ok",
			Version: Version,
			Commit:  Commit,
		})
	}
}

// HandleReady returns an HTTP handler for the readiness endpoint.
func HandleReady(checks ReadinessChecks) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		results := make(map[string]CheckResult)

		if checks.CatalogLoaded != nil {
			if checks.CatalogLoaded() {
				results["catalog"] = CheckResult{Status: "ok"}
			} else {
				results["catalog"] = CheckResult{Status: "error", Error: "no operations registered"}
			}
		}
		if checks.UpstreamHealthy != nil {
			if checks.UpstreamHealthy() {
				results["upstream"] = CheckResult{Status: "ok"}
			} else {
				results["upstream"] = CheckResult{Status: "error", Error: "circuit breaker is open"}
			}
		}

		status := "ready"
		httpStatus := http.StatusOK
		for _, result := range results {
			if result.Status != "ok" {
				status = "not_ready"
				httpStatus = http.StatusServiceUnavailable
				break
			}
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(httpStatus)
		json.NewEncoder(w).Encode(ReadinessResponse{
			Status: status,
			Checks: results,
		})
	}
}
