// Package server provides the MCP server implementation.
package server

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/openportal-dev/waldur-mcp/internal/auth"
	"github.com/openportal-dev/waldur-mcp/internal/endpoints"
	"github.com/openportal-dev/waldur-mcp/internal/waldur"
)

// Server wraps the MCP server with the Waldur-specific dependencies the tool
// handlers need.
type Server struct {
	mcpServer     *server.MCPServer
	waldurClient  *waldur.Client
	authenticator *auth.Authenticator
	endpoints     *endpoints.Service
	logger        *slog.Logger
}

// New creates a new MCP server for the Waldur tools.
func New(waldurClient *waldur.Client, authenticator *auth.Authenticator, endpointSvc *endpoints.Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	mcpServer := server.NewMCPServer(
		"waldur-mcp-tools",
		"1.0.0",
		server.WithPromptCapabilities(true),
		server.WithLogging(),
		server.WithRecovery(),
	)

	return &Server{
		mcpServer:     mcpServer,
		waldurClient:  waldurClient,
		authenticator: authenticator,
		endpoints:     endpointSvc,
		logger:        logger,
	}
}

// MCPServer returns the underlying MCP server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// WaldurClient returns the Waldur API client.
func (s *Server) WaldurClient() *waldur.Client {
	return s.waldurClient
}

// Authenticator returns the device-flow authenticator.
func (s *Server) Authenticator() *auth.Authenticator {
	return s.authenticator
}

// Endpoints returns the endpoint catalog service.
func (s *Server) Endpoints() *endpoints.Service {
	return s.endpoints
}

// Logger returns the server logger.
func (s *Server) Logger() *slog.Logger {
	return s.logger
}

// AddTool is a convenience wrapper for adding tools.
func (s *Server) AddTool(tool mcp.Tool, handler server.ToolHandlerFunc) {
	s.mcpServer.AddTool(tool, handler)
}

// AddPrompt is a convenience wrapper for adding prompts.
func (s *Server) AddPrompt(prompt mcp.Prompt, handler server.PromptHandlerFunc) {
	s.mcpServer.AddPrompt(prompt, handler)
}
