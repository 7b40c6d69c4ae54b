package integration

import (
	"context"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/darkfeedlabs/leakwatch/internal/catalog"
	"github.com/darkfeedlabs/leakwatch/internal/config"
	"github.com/darkfeedlabs/leakwatch/internal/dispatch"
	"github.com/darkfeedlabs/leakwatch/internal/upstream"
	"github.com/darkfeedlabs/leakwatch/model"
)

// deadGateway builds a dispatcher whose upstream has no listener.
func deadGateway(t *testing.T) *dispatch.Dispatcher {
	t.Helper()
	client := upstream.NewClient(config.UpstreamConfig{
		BaseURL: "http://127.0.0.1:1",
		Timeout: time.Second,
	}, apiKey, zap.NewNop())
	t.Cleanup(client.Close)
	return dispatch.New(catalog.Default(), client, zap.NewNop(), nil)
}

func TestResilience_UpstreamDownIsTransportError(t *testing.T) {
	env := deadGateway(t).Dispatch(context.Background(), "get_stats", nil)
	if env.OK() {
		t.Fatal("dead upstream should fail")
	}
	if env.Failure.Kind != model.ErrTransport {
		t.Errorf("Kind = %q", env.Failure.Kind)
	}
	if !strings.HasPrefix(env.Render(), "Error: ") {
		t.Errorf("Render = %q", env.Render())
	}
}

func TestResilience_RetriesDegradedEndpoint(t *testing.T) {
	h := NewHarness(t, WithRetry(3))

	env := h.Dispatcher.Dispatch(context.Background(), "get_ransomnotes", nil)
	if env.OK() {
		t.Fatal("permanently degraded endpoint should fail")
	}
	if env.Failure.Kind != model.ErrUpstream {
		t.Errorf("Kind = %q", env.Failure.Kind)
	}
	if h.RequestCount.Load() != 3 {
		t.Errorf("requests = %d, want 3 attempts", h.RequestCount.Load())
	}
}

func TestResilience_BreakerOpensAndRejects(t *testing.T) {
	h := NewHarness(t, WithBreaker(2, 1))

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		env := h.Dispatcher.Dispatch(ctx, "get_ransomnotes", nil)
		if env.OK() {
			t.Fatalf("dispatch %d should fail", i)
		}
	}

	if h.Client.BreakerState() != upstream.BreakerOpen {
		t.Fatalf("BreakerState = %v, want open", h.Client.BreakerState())
	}

	before := h.RequestCount.Load()
	env := h.Dispatcher.Dispatch(ctx, "get_ransomnotes", nil)
	if env.OK() {
		t.Fatal("dispatch should be rejected while the breaker is open")
	}
	if env.Failure.Kind != model.ErrTransport {
		t.Errorf("Kind = %q", env.Failure.Kind)
	}
	if h.RequestCount.Load() != before {
		t.Error("rejected dispatch must not reach the wire")
	}

	// Healthy endpoints share the breaker; they are rejected too.
	env = h.Dispatcher.Dispatch(ctx, "list_groups", nil)
	if env.OK() {
		t.Fatal("breaker guards the whole origin")
	}
}
