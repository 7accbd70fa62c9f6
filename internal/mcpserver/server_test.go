package mcpserver

import (
	"context"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"

	"github.com/comigor/booking-go/pkg/tools"
)

type mockTool struct {
	runFunc func(ctx context.Context, args string) (string, error)
}

func (m *mockTool) Name() string        { return "cancel_event_tool" }
func (m *mockTool) Description() string { return "cancels" }
func (m *mockTool) Parameters() any {
	return map[string]any{"type": "object", "properties": map[string]any{}}
}
func (m *mockTool) Run(ctx context.Context, args string) (string, error) {
	return m.runFunc(ctx, args)
}

func textOf(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestHandlerFor_PassesArgumentsAsJSON(t *testing.T) {
	var got string
	h := handlerFor(&mockTool{runFunc: func(_ context.Context, args string) (string, error) {
		got = args
		return "Event with booking code ABC123 has been successfully canceled.", nil
	}})

	req := mcp.CallToolRequest{}
	req.Params.Name = "cancel_event_tool"
	req.Params.Arguments = map[string]any{"booking_code": "ABC123", "customer_phone": "555"}

	res, err := h(context.Background(), req)
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.JSONEq(t, `{"booking_code":"ABC123","customer_phone":"555"}`, got)
	require.Contains(t, textOf(t, res), "successfully canceled")
}

func TestHandlerFor_NoArguments(t *testing.T) {
	var got string
	h := handlerFor(&mockTool{runFunc: func(_ context.Context, args string) (string, error) {
		got = args
		return "ok", nil
	}})

	_, err := h(context.Background(), mcp.CallToolRequest{})
	require.NoError(t, err)
	require.Equal(t, "{}", got)
}

func TestHandlerFor_ToolError(t *testing.T) {
	h := handlerFor(&mockTool{runFunc: func(context.Context, string) (string, error) {
		return "", errors.New("boom")
	}})

	res, err := h(context.Background(), mcp.CallToolRequest{})
	require.NoError(t, err)
	require.True(t, res.IsError)
	require.Equal(t, "boom", textOf(t, res))
}

func TestNew_RegistersTools(t *testing.T) {
	s, err := New(tools.NewManager(&mockTool{}), "test")
	require.NoError(t, err)
	require.NotNil(t, s)
}
