// Command leakwatch is an MCP stdio gateway over the Ransomware.live Pro
// API. It exposes the read-only operation catalog as MCP tools and serves
// optional operational endpoints on a separate HTTP listener.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/darkfeedlabs/leakwatch/internal/catalog"
	"github.com/darkfeedlabs/leakwatch/internal/config"
	"github.com/darkfeedlabs/leakwatch/internal/dispatch"
	"github.com/darkfeedlabs/leakwatch/internal/observability"
	"github.com/darkfeedlabs/leakwatch/internal/transport"
	"github.com/darkfeedlabs/leakwatch/internal/upstream"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "leakwatch:", err)
		os.Exit(1)
	}
}

func run() error {
	// A .env file is a local development convenience; absence is fine.
	_ = godotenv.Load()

	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	logger, err := observability.NewLogger(cfg.Observability)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer logger.Sync()

	apiKey, err := cfg.Upstream.APIKey()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, cfg.Observability.Tracing, cfg.Server.Name, cfg.Server.Version)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Warn("tracing shutdown", zap.Error(err))
		}
	}()

	contracts := catalog.Contracts()
	if verrs := catalog.Validate(contracts); len(verrs) > 0 {
		for _, ve := range verrs {
			logger.Error("catalog declaration invalid",
				zap.String("path", ve.Path),
				zap.String("code", ve.Code),
				zap.String("message", ve.Message),
			)
		}
		return errors.New("catalog validation failed")
	}
	registry := catalog.NewRegistry(contracts)

	client := upstream.NewClient(cfg.Upstream, apiKey, logger)
	defer client.Close()

	var metrics *observability.Metrics
	var opsServer *http.Server
	if cfg.Observability.Metrics.Enabled {
		metrics = observability.InitMetrics(prometheus.DefaultRegisterer)
		go watchBreaker(ctx, client, metrics)

		router := transport.NewOpsRouter(cfg.Observability.Metrics.Path, observability.Handler(), observability.ReadinessChecks{
			CatalogLoaded:   func() bool { return registry.Len() > 0 },
			UpstreamHealthy: func() bool { return client.BreakerState() != upstream.BreakerOpen },
		})
		opsServer = transport.StartOpsServer(cfg.Observability.Metrics.Addr, router, logger)
		defer transport.ShutdownOpsServer(opsServer, logger)
	}

	dispatcher := dispatch.New(registry, client, logger, metrics)
	srv := transport.NewMCPServer(cfg.Server, registry, dispatcher, logger)

	logger.Info("leakwatch starting",
		zap.String("version", cfg.Server.Version),
		zap.String("upstream", cfg.Upstream.BaseURL),
		zap.Int("operations", registry.Len()),
	)

	if err := transport.ServeStdio(ctx, srv); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("serve: %w", err)
	}

	logger.Info("leakwatch stopped")
	return nil
}

// watchBreaker mirrors the circuit breaker state into the metrics gauge.
func watchBreaker(ctx context.Context, client *upstream.Client, metrics *observability.Metrics) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.BreakerState.Set(float64(client.BreakerState()))
		}
	}
}
