package transport

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/darkfeedlabs/leakwatch/internal/catalog"
	"github.com/darkfeedlabs/leakwatch/internal/config"
	"github.com/darkfeedlabs/leakwatch/internal/dispatch"
	"github.com/darkfeedlabs/leakwatch/model"
)

type stubUpstream struct {
	result model.Result
}

func (s *stubUpstream) Issue(context.Context, model.RequestShape) (model.Result, error) {
	return s.result, nil
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func TestToolFromContract_RequiredAndSchema(t *testing.T) {
	registry := catalog.Default()
	contract, ok := registry.Resolve("get_group_info")
	if !ok {
		t.Fatal("get_group_info not in catalog")
	}

	tool := toolFromContract(contract)

	if tool.Name != "get_group_info" {
		t.Errorf("Name = %q", tool.Name)
	}
	if tool.Description == "" {
		t.Error("Description should not be empty")
	}
	if len(tool.InputSchema.Required) != 1 || tool.InputSchema.Required[0] != "group_name" {
		t.Errorf("Required = %v", tool.InputSchema.Required)
	}
	if _, ok := tool.InputSchema.Properties["group_name"]; !ok {
		t.Error("group_name missing from schema properties")
	}
}

func TestToolFromContract_EnumAndDefault(t *testing.T) {
	registry := catalog.Default()
	contract, _ := registry.Resolve("get_recent_victims")

	tool := toolFromContract(contract)

	prop, ok := tool.InputSchema.Properties["order"].(map[string]any)
	if !ok {
		t.Fatalf("order property = %T", tool.InputSchema.Properties["order"])
	}
	if prop["default"] != "discovered" {
		t.Errorf("default = %v", prop["default"])
	}
	if _, ok := prop["enum"]; !ok {
		t.Error("enum missing from order property")
	}
}

func TestArgumentsFrom_StringifiesAndDropsEmpty(t *testing.T) {
	args := argumentsFrom(callRequest(map[string]any{
		"year":  2024,
		"group": "lockbit",
		"month": "",
	}))

	if args.Get("year") != "2024" {
		t.Errorf("year = %q", args.Get("year"))
	}
	if args.Get("group") != "lockbit" {
		t.Errorf("group = %q", args.Get("group"))
	}
	if args.Has("month") {
		t.Error("empty values should be dropped")
	}
}

func TestToolHandler_RendersEnvelope(t *testing.T) {
	up := &stubUpstream{result: model.Result{StatusCode: 404, Body: []byte(`{"error":"not found"}`)}}
	d := dispatch.New(catalog.Default(), up, zap.NewNop(), nil)

	handler := toolHandler(d, "get_group_info")
	result, err := handler(context.Background(), callRequest(map[string]any{"group_name": "nope"}))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}

	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content = %T", result.Content[0])
	}
	if !strings.HasPrefix(text.Text, "Error: status 404:") {
		t.Errorf("text = %q", text.Text)
	}
}

func TestNewMCPServer_RegistersAllOperations(t *testing.T) {
	registry := catalog.Default()
	d := dispatch.New(registry, &stubUpstream{result: model.Result{StatusCode: 200, Body: []byte(`{}`)}}, zap.NewNop(), nil)

	srv := NewMCPServer(config.ServerConfig{Name: "leakwatch", Version: "test"}, registry, d, zap.NewNop())
	if srv == nil {
		t.Fatal("NewMCPServer returned nil")
	}
}
