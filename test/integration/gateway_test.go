package integration

import (
	"context"
	"strings"
	"testing"

	"github.com/darkfeedlabs/leakwatch/model"
)

func TestGateway_ListGroups(t *testing.T) {
	h := NewHarness(t)

	env := h.Dispatcher.Dispatch(context.Background(), "list_groups", nil)
	if !env.OK() {
		t.Fatalf("dispatch failed: %v", env.Failure)
	}

	groups, ok := env.Payload.([]any)
	if !ok {
		t.Fatalf("payload = %T", env.Payload)
	}
	if len(groups) != 2 {
		t.Errorf("groups = %d, want 2", len(groups))
	}
	if !strings.Contains(env.Render(), "lockbit3") {
		t.Errorf("Render missing group name:\n%s", env.Render())
	}
}

func TestGateway_GroupNotFoundVerbatim(t *testing.T) {
	h := NewHarness(t)

	env := h.Dispatcher.Dispatch(context.Background(), "get_group_info",
		model.Arguments{"group_name": "ghostgang"})

	if env.OK() {
		t.Fatal("unknown group should fail")
	}
	want := `Error: status 404: {"error":"group not found"}`
	if env.Render() != want {
		t.Errorf("Render = %q, want %q", env.Render(), want)
	}
}

func TestGateway_VictimsFilteredByYear(t *testing.T) {
	h := NewHarness(t)

	env := h.Dispatcher.Dispatch(context.Background(), "list_victims",
		model.Arguments{"year": "2024"})

	if !env.OK() {
		t.Fatalf("dispatch failed: %v", env.Failure)
	}
	if !strings.Contains(env.Render(), "acme-corp") {
		t.Errorf("Render missing victim:\n%s", env.Render())
	}
}

func TestGateway_ValidationStopsBeforeWire(t *testing.T) {
	h := NewHarness(t)

	env := h.Dispatcher.Dispatch(context.Background(), "list_victims",
		model.Arguments{"year": "99"})

	if env.OK() {
		t.Fatal("two-digit year should fail validation")
	}
	if env.Failure.Kind != model.ErrInvalidRequest {
		t.Errorf("Kind = %q", env.Failure.Kind)
	}
	if h.RequestCount.Load() != 0 {
		t.Errorf("requests = %d, want 0", h.RequestCount.Load())
	}
}

func TestGateway_RecentDefaultOrderReachesWire(t *testing.T) {
	h := NewHarness(t)

	env := h.Dispatcher.Dispatch(context.Background(), "get_recent_victims", nil)
	if !env.OK() {
		t.Fatalf("dispatch failed: %v", env.Failure)
	}
	if !strings.Contains(env.Render(), `"order": "discovered"`) {
		t.Errorf("default order not sent upstream:\n%s", env.Render())
	}
}

func TestGateway_EmptyBodyRendersNoData(t *testing.T) {
	h := NewHarness(t)

	env := h.Dispatcher.Dispatch(context.Background(), "get_stats", nil)
	if !env.OK() {
		t.Fatalf("dispatch failed: %v", env.Failure)
	}
	if env.Render() != "No data returned from API" {
		t.Errorf("Render = %q", env.Render())
	}
}

func TestGateway_BadKeySurfacesUpstreamError(t *testing.T) {
	h := NewHarness(t, WithAPIKey("wrong-key"))

	env := h.Dispatcher.Dispatch(context.Background(), "list_groups", nil)
	if env.OK() {
		t.Fatal("bad key should fail")
	}
	if env.Failure.Kind != model.ErrUpstream {
		t.Errorf("Kind = %q", env.Failure.Kind)
	}
	if !strings.HasPrefix(env.Failure.Message, "status 401:") {
		t.Errorf("Message = %q", env.Failure.Message)
	}
}

func TestGateway_Idempotent(t *testing.T) {
	h := NewHarness(t)

	args := model.Arguments{"group_name": "lockbit3"}
	first := h.Dispatcher.Dispatch(context.Background(), "get_group_info", args).Render()
	second := h.Dispatcher.Dispatch(context.Background(), "get_group_info", args).Render()

	if first != second {
		t.Errorf("renders differ:\n%s\n---\n%s", first, second)
	}
	if h.RequestCount.Load() != 2 {
		t.Errorf("requests = %d, want 2", h.RequestCount.Load())
	}
}
