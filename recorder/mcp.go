package recorder

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/locsynth/kit"
)

// RegisterMCP registers the locator tools on an MCP server.
func (r *Recorder) RegisterMCP(srv *mcp.Server) {
	ep := r.endpoints()

	kit.RegisterMCPTool(srv, &mcp.Tool{
		Name: "locator_build",
		Description: "Synthesise every verified locator (id, link, name, css, xpath) for one element " +
			"of a page given as HTML or URL. Candidates come back best first.",
		InputSchema: kit.InputSchema(map[string]any{
			"html":   map[string]any{"type": "string", "description": "Page HTML; takes precedence over url"},
			"url":    map[string]any{"type": "string", "description": "Page URL to fetch"},
			"target": map[string]any{"type": "string", "description": "Locator of the element, e.g. id=login or //form/input[2]"},
			"scope":  map[string]any{"type": "string", "enum": []string{ScopeDocument, ScopeFrame}, "description": "Default: document"},
			"render": map[string]any{"type": "boolean", "description": "Render the URL in headless Chrome first"},
		}, []string{"target"}),
	}, ep.locate, kit.DecodeArgs[LocateRequest])

	kit.RegisterMCPTool(srv, &mcp.Tool{
		Name:        "locator_strategies",
		Description: "List the locator strategies of both scopes in priority order.",
		InputSchema: kit.InputSchema(map[string]any{}, nil),
	}, ep.strategies, func(*mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		return &kit.MCPDecodeResult{}, nil
	})

	kit.RegisterMCPTool(srv, &mcp.Tool{
		Name:        "locator_set_order",
		Description: "Move the named strategies of a scope to the front, in the given order. The order is persisted.",
		InputSchema: kit.InputSchema(map[string]any{
			"scope": map[string]any{"type": "string", "enum": []string{ScopeDocument, ScopeFrame}},
			"order": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		}, []string{"scope", "order"}),
	}, ep.setOrder, kit.DecodeArgs[SetOrderRequest])
}
