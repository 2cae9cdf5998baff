// Package mcpserver exposes the football agent tools over the Model Context
// Protocol, on stdio for local assistants and on streamable HTTP next to the
// REST API.
package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/riskibarqy/dotmatchlens/internal/platform/logging"
	"github.com/riskibarqy/dotmatchlens/internal/usecase"
)

const serverName = "dotmatchlens"

// ToolExecutor is the subset of the agent tool set served over MCP.
type ToolExecutor interface {
	Specs() []usecase.ToolSpec
	Execute(ctx context.Context, name string, args map[string]any) (any, error)
}

type Server struct {
	mcpServer *mcp.Server
	tools     ToolExecutor
	logger    *logging.Logger
}

// New registers one MCP tool per agent tool spec.
func New(tools ToolExecutor, version string, logger *logging.Logger) (*Server, error) {
	if tools == nil {
		return nil, fmt.Errorf("%w: mcp server requires a tool executor", usecase.ErrInvalidInput)
	}
	if logger == nil {
		logger = logging.Default()
	}
	if version == "" {
		version = "dev"
	}

	s := &Server{
		mcpServer: mcp.NewServer(&mcp.Implementation{Name: serverName, Version: version}, nil),
		tools:     tools,
		logger:    logger,
	}
	for _, spec := range tools.Specs() {
		s.mcpServer.AddTool(&mcp.Tool{
			Name:        spec.Name,
			Description: spec.Description,
			InputSchema: inputSchema(spec.Parameters),
		}, s.toolHandler(spec.Name))
	}
	return s, nil
}

// Run serves a single session over stdin/stdout until ctx is cancelled or the
// client disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.serve(ctx, &mcp.StdioTransport{})
}

func (s *Server) serve(ctx context.Context, transport mcp.Transport) error {
	err := s.mcpServer.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("serve mcp: %w", err)
	}
	return nil
}

// HTTPHandler serves the same tools over the streamable HTTP transport.
func (s *Server) HTTPHandler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.mcpServer
	}, nil)
}

func (s *Server) toolHandler(name string) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := map[string]any{}
		if req != nil && req.Params != nil && len(req.Params.Arguments) > 0 {
			if err := sonic.Unmarshal(req.Params.Arguments, &args); err != nil {
				return errorResult(fmt.Sprintf("invalid arguments: %v", err)), nil
			}
		}

		result, err := s.tools.Execute(ctx, name, args)
		if err != nil {
			// Tool failures go back to the model as content, not protocol errors.
			s.logger.WarnContext(ctx, "mcp tool failed", "tool", name, "error", err)
			return errorResult(err.Error()), nil
		}

		payload, err := sonic.Marshal(result)
		if err != nil {
			return nil, fmt.Errorf("encode %s result: %w", name, err)
		}
		s.logger.DebugContext(ctx, "mcp tool executed", "tool", name, "bytes", len(payload))
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: string(payload)}},
		}, nil
	}
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: msg}},
	}
}

// inputSchema guarantees the object schema MCP requires for tool input.
func inputSchema(params map[string]any) map[string]any {
	if len(params) == 0 {
		return map[string]any{"type": "object", "properties": map[string]any{}}
	}
	if _, ok := params["type"]; !ok {
		out := make(map[string]any, len(params)+1)
		for k, v := range params {
			out[k] = v
		}
		out["type"] = "object"
		return out
	}
	return params
}
