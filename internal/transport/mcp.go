// Package transport exposes the operation catalog over MCP stdio and
// serves the operational HTTP endpoints.
package transport

import (
	"context"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/darkfeedlabs/leakwatch/internal/catalog"
	"github.com/darkfeedlabs/leakwatch/internal/config"
	"github.com/darkfeedlabs/leakwatch/internal/dispatch"
	"github.com/darkfeedlabs/leakwatch/model"
)

// NewMCPServer builds the MCP server and registers one tool per catalog
// operation, in declaration order.
func NewMCPServer(cfg config.ServerConfig, registry *catalog.Registry, dispatcher *dispatch.Dispatcher, logger *zap.Logger) *mcpserver.MCPServer {
	srv := mcpserver.NewMCPServer(cfg.Name, cfg.Version)

	for _, contract := range registry.List() {
		srv.AddTool(toolFromContract(contract), toolHandler(dispatcher, contract.Name))
	}

	logger.Info("mcp server configured",
		zap.String("name", cfg.Name),
		zap.String("version", cfg.Version),
		zap.Int("tools", registry.Len()),
	)

	return srv
}

// toolFromContract translates an operation contract into an MCP tool
// declaration. All parameters are strings on the wire.
func toolFromContract(contract model.OperationContract) mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(contract.Description)}

	for _, p := range contract.Params {
		propOpts := []mcp.PropertyOption{mcp.Description(p.Description)}
		if p.Required {
			propOpts = append(propOpts, mcp.Required())
		}
		if p.Pattern != nil {
			propOpts = append(propOpts, mcp.Pattern(p.Pattern.String()))
		}
		if len(p.Enum) > 0 {
			propOpts = append(propOpts, mcp.Enum(p.Enum...))
		}
		if p.Default != "" {
			propOpts = append(propOpts, mcp.DefaultString(p.Default))
		}
		opts = append(opts, mcp.WithString(p.Name, propOpts...))
	}

	return mcp.NewTool(contract.Name, opts...)
}

// toolHandler adapts a dispatcher operation to the MCP tool handler shape.
// Dispatch failures travel in-band as rendered text; the handler itself
// never returns an error.
func toolHandler(dispatcher *dispatch.Dispatcher, operation string) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		env := dispatcher.Dispatch(ctx, operation, argumentsFrom(req))
		return mcp.NewToolResultText(env.Render()), nil
	}
}

// argumentsFrom flattens the MCP request arguments into the string bundle
// the dispatcher works with. Non-string values are stringified; absent and
// empty values are equivalent downstream, so empties are dropped here.
func argumentsFrom(req mcp.CallToolRequest) model.Arguments {
	raw := req.GetArguments()
	args := make(model.Arguments, len(raw))
	for k, v := range raw {
		if s := cast.ToString(v); s != "" {
			args[k] = s
		}
	}
	return args
}

// ServeStdio runs the MCP server over stdin/stdout until the context is
// cancelled or the stream closes.
func ServeStdio(ctx context.Context, srv *mcpserver.MCPServer) error {
	stdio := mcpserver.NewStdioServer(srv)
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}
