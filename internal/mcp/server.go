// Package mcp exposes the course tools over the Model Context Protocol,
// so external MCP clients (editors, agents) can search the same course
// catalog the chat API serves.
package mcp

import (
	"context"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/owenlin0/coursechat/internal/tools"
)

// Server wraps the MCP SDK server around the tool registry.
type Server struct {
	mcpServer *mcp.Server
	registry  *tools.Registry
}

// Config holds MCP server configuration.
type Config struct {
	Name     string
	Version  string
	Registry *tools.Registry
}

// NewServer creates an MCP server exposing the registry's tools.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("server name is required")
	}
	if cfg.Version == "" {
		return nil, fmt.Errorf("server version is required")
	}
	if cfg.Registry == nil {
		return nil, fmt.Errorf("tool registry is required")
	}

	s := &Server{
		mcpServer: mcp.NewServer(&mcp.Implementation{
			Name:    cfg.Name,
			Version: cfg.Version,
		}, nil),
		registry: cfg.Registry,
	}

	if err := s.registerSearch(); err != nil {
		return nil, err
	}
	if err := s.registerOutline(); err != nil {
		return nil, err
	}
	return s, nil
}

// Run serves MCP on the given transport. Blocking.
func (s *Server) Run(ctx context.Context, transport mcp.Transport) error {
	return s.mcpServer.Run(ctx, transport)
}

func (s *Server) registerSearch() error {
	inputSchema, err := jsonschema.For[tools.SearchInput](nil)
	if err != nil {
		return fmt.Errorf("creating search input schema: %w", err)
	}

	tool := &mcp.Tool{
		Name:        tools.SearchToolName,
		Description: "Search course materials with smart course name matching and lesson filtering",
		InputSchema: inputSchema,
	}

	mcp.AddTool(s.mcpServer, tool, func(ctx context.Context, _ *mcp.CallToolRequest, in tools.SearchInput) (*mcp.CallToolResult, any, error) {
		res, err := s.registry.Execute(ctx, tools.SearchToolName, in)
		if err != nil {
			return nil, nil, fmt.Errorf("search failed: %w", err)
		}
		return textResult(res.Text), nil, nil
	})
	return nil
}

func (s *Server) registerOutline() error {
	inputSchema, err := jsonschema.For[tools.OutlineInput](nil)
	if err != nil {
		return fmt.Errorf("creating outline input schema: %w", err)
	}

	tool := &mcp.Tool{
		Name:        tools.OutlineToolName,
		Description: "Get the complete outline of a course including title, link, instructor, and all lessons",
		InputSchema: inputSchema,
	}

	mcp.AddTool(s.mcpServer, tool, func(ctx context.Context, _ *mcp.CallToolRequest, in tools.OutlineInput) (*mcp.CallToolResult, any, error) {
		res, err := s.registry.Execute(ctx, tools.OutlineToolName, in)
		if err != nil {
			return nil, nil, fmt.Errorf("outline failed: %w", err)
		}
		return textResult(res.Text), nil, nil
	})
	return nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}
