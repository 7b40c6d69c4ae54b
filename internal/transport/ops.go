package transport

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/darkfeedlabs/leakwatch/internal/observability"
)

// NewOpsRouter builds the router for the operational endpoints: metrics
// scrape, liveness, and readiness. It is served on a separate listener so
// the MCP stdio stream stays the only client-facing surface.
func NewOpsRouter(metricsPath string, metricsHandler http.Handler, checks observability.ReadinessChecks) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	r.Method(http.MethodGet, metricsPath, metricsHandler)
	r.Get("/healthz", observability.HandleHealth())
	r.Get("/readyz", observability.HandleReady(checks))

	return r
}

// StartOpsServer starts the operational HTTP listener in the background
// and returns the server for shutdown. Listener errors are logged, not
// fatal: a dead ops listener must not take the gateway down.
func StartOpsServer(addr string, handler http.Handler, logger *zap.Logger) *http.Server {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("ops listener starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("ops listener failed", zap.Error(err))
		}
	}()

	return srv
}

// ShutdownOpsServer stops the operational listener with a bounded grace
// period.
func ShutdownOpsServer(srv *http.Server, logger *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("ops listener shutdown", zap.Error(err))
	}
}
