package mcp

import (
	"net/http"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/hayderhassan/InsightSphere/pkg/mcp/tools"
	"github.com/hayderhassan/InsightSphere/pkg/middleware"
	"github.com/hayderhassan/InsightSphere/pkg/services"
)

// ServerName is the name the MCP server reports during initialization.
const ServerName = "insightsphere"

// Server wraps the mcp-go MCPServer with the InsightSphere tool set.
type Server struct {
	mcp    *server.MCPServer
	logger *zap.Logger
}

// NewServer creates an MCP server with the health and semantic tools registered.
// db is pinged by the health tool and may be nil.
func NewServer(version string, semanticService services.SemanticService, db tools.Pinger, logger *zap.Logger) *Server {
	mcpServer := server.NewMCPServer(
		ServerName,
		version,
		server.WithToolCapabilities(true),
	)

	tools.RegisterHealthTool(mcpServer, &tools.HealthToolDeps{
		Version: version,
		DB:      db,
		Logger:  logger.Named("mcp"),
	})
	tools.RegisterSemanticTools(mcpServer, &tools.SemanticToolDeps{
		SemanticService: semanticService,
		Logger:          logger.Named("mcp"),
	})

	return &Server{
		mcp:    mcpServer,
		logger: logger,
	}
}

// MCP returns the underlying MCPServer.
func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

// NewStreamableHTTPServer creates an HTTP transport server wrapping this MCP server.
// The HTTP mux handles routing to /mcp, so no endpoint path is configured here.
func (s *Server) NewStreamableHTTPServer() *server.StreamableHTTPServer {
	return server.NewStreamableHTTPServer(
		s.mcp,
		server.WithStateLess(true),
	)
}

// Handler returns the streamable HTTP transport with tool calls logged.
func (s *Server) Handler() http.Handler {
	return middleware.MCPRequestLogger(s.logger.Named("mcp-http"))(s.NewStreamableHTTPServer())
}
