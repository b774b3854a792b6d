package cli

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gremlin/internal/config"
	"github.com/roach88/gremlin/internal/testutil"
)

func callTool(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) (string, bool) {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	result, err := handler(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text, result.IsError
}

func TestMCP_Flows(t *testing.T) {
	s := newMCPServer(config.Default())

	text, isErr := callTool(t, s.handleFlows, map[string]any{"spec": writeShopSpec(t), "limit": float64(2)})
	assert.False(t, isErr)
	assert.Contains(t, text, "1. Home to Order Confirmation (4) [157]")
	assert.Contains(t, text, "2. Home to Order Confirmation (3) [152]")
	assert.NotContains(t, text, "3. ")
}

func TestMCP_InlineDocument(t *testing.T) {
	s := newMCPServer(config.Default())

	text, isErr := callTool(t, s.handleValidate, map[string]any{"document": string(testutil.ShopJSON())})
	assert.False(t, isErr)
	assert.Equal(t, "valid", text)
}

func TestMCP_ValidateReportsErrors(t *testing.T) {
	s := newMCPServer(config.Default())

	text, isErr := callTool(t, s.handleValidate, map[string]any{"spec": writeBrokenSpec(t)})
	assert.True(t, isErr)
	assert.Contains(t, text, "E207")
}

func TestMCP_MissingSpec(t *testing.T) {
	s := newMCPServer(config.Default())

	text, isErr := callTool(t, s.handleFlows, map[string]any{})
	assert.True(t, isErr)
	assert.Contains(t, text, "spec or document is required")
}

func TestMCP_Verify(t *testing.T) {
	s := newMCPServer(config.Default())

	text, isErr := callTool(t, s.handleVerify, map[string]any{"spec": writeShopSpec(t)})
	assert.False(t, isErr)
	assert.Contains(t, text, `"status": "violated"`)
	assert.Contains(t, text, `"step": 7`)
}

func TestMCP_GeneratePlaywright(t *testing.T) {
	cfg := config.Default()
	cfg.BaseURL = "http://localhost:3000"
	s := newMCPServer(cfg)

	text, isErr := callTool(t, s.handleGeneratePlaywright, map[string]any{"spec": writeShopSpec(t)})
	assert.False(t, isErr)
	assert.Contains(t, text, "await page.goto('http://localhost:3000');")

	text, isErr = callTool(t, s.handleGeneratePlaywright, map[string]any{"spec": writeShopSpec(t), "group_by": "page"})
	assert.True(t, isErr)
	assert.Contains(t, text, "invalid group_by")
}

func TestMCP_GenerateMaestro(t *testing.T) {
	s := newMCPServer(config.Default())

	text, isErr := callTool(t, s.handleGenerateMaestro, map[string]any{"spec": writeShopSpec(t), "app_id": "com.example.shop"})
	assert.False(t, isErr)
	assert.Contains(t, text, "appId: com.example.shop")
	assert.Contains(t, text, "\n---\n")
}

func TestMCP_FuzzDeterministic(t *testing.T) {
	s := newMCPServer(config.Default())
	args := map[string]any{"spec": writeShopSpec(t), "seed": float64(42), "count": float64(6)}

	first, isErr := callTool(t, s.handleFuzz, args)
	require.False(t, isErr)
	second, _ := callTool(t, s.handleFuzz, args)
	assert.Equal(t, first, second)
	assert.Contains(t, first, "test.fail();")

	text, isErr := callTool(t, s.handleFuzz, map[string]any{"spec": writeShopSpec(t), "strategies": "rapid_fire, monkey"})
	assert.True(t, isErr)
	assert.Contains(t, text, `unknown strategy "monkey"`)
}

func TestMCP_Report(t *testing.T) {
	s := newMCPServer(config.Default())

	text, isErr := callTool(t, s.handleReport, map[string]any{"spec": writeShopSpec(t)})
	assert.False(t, isErr)
	assert.Contains(t, text, "# Shop")
	assert.Contains(t, text, "## Properties")
}

func TestParams(t *testing.T) {
	params := map[string]any{"s": "x", "n": float64(3), "b": true, "num": 7}
	assert.Equal(t, "x", stringParam(params, "s", ""))
	assert.Equal(t, "7", stringParam(params, "num", ""))
	assert.Equal(t, "d", stringParam(params, "missing", "d"))
	assert.Equal(t, 3, intParam(params, "n", 0))
	assert.Equal(t, 9, intParam(params, "missing", 9))
	assert.True(t, boolParam(params, "b", false))
	assert.False(t, boolParam(params, "missing", false))
}
