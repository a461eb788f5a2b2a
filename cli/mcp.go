// ABOUTME: MCP server subcommand
// ABOUTME: Starts the MCP server for Claude Desktop integration
package cli

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/harperreed/prospect/handlers"
	"github.com/harperreed/prospect/session"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// MCPCommand starts the MCP server on stdio
func MCPCommand(s *session.Session, version string) error {
	log.Info("Starting prospect MCP server", "version", version, "prospects", s.Len())

	server := handlers.NewServer(s, version)
	return server.Run(context.Background(), &mcp.StdioTransport{})
}
