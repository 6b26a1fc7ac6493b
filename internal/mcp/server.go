// Package mcp exposes the relay as MCP tools over stdio, so agent clients
// can list models, chat, and pull project context without the HTTP server.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/ziadkadry99/ollamachat/internal/relay"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server that exposes local model chat tools.
type Server struct {
	relay *relay.Relay
	mcp   *server.MCPServer
}

// NewServer creates a new MCP server backed by the given relay.
func NewServer(rly *relay.Relay) *Server {
	s := &Server{relay: rly}

	s.mcp = server.NewMCPServer(
		"ollamachat",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(listModelsTool, s.handleListModels)
	s.mcp.AddTool(chatTool, s.handleChat)
	s.mcp.AddTool(projectContextTool, s.handleProjectContext)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
