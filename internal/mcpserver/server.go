// Package mcpserver exposes the salon tools over the Model Context Protocol
// so other assistants can book on the salon calendar.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/comigor/booking-go/internal/logger"
	"github.com/comigor/booking-go/pkg/tools"
)

// New creates an MCP server registering every tool of manager.
func New(manager *tools.Manager, version string) (*server.MCPServer, error) {
	s := server.NewMCPServer("salon-booking", version,
		server.WithToolCapabilities(true),
	)
	for _, t := range manager.List() {
		schema, err := json.Marshal(t.Parameters())
		if err != nil {
			return nil, fmt.Errorf("marshal schema of %s: %w", t.Name(), err)
		}
		s.AddTool(mcp.NewToolWithRawSchema(t.Name(), t.Description(), schema), handlerFor(t))
		logger.L.Debug("Registered MCP tool", "tool", t.Name())
	}
	return s, nil
}

// Serve runs s on stdin/stdout until the input closes.
func Serve(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

func handlerFor(t tools.Tool) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := "{}"
		if request.Params.Arguments != nil {
			b, err := json.Marshal(request.Params.Arguments)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
			}
			args = string(b)
		}

		out, err := t.Run(ctx, args)
		if err != nil {
			logger.L.Error("MCP tool failed", "tool", t.Name(), "error", err)
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(out), nil
	}
}
