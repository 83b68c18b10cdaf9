package tools

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/hayderhassan/InsightSphere/pkg/models"
)

// healthPingTimeout bounds the database ping made by the health tool.
const healthPingTimeout = 2 * time.Second

// Pinger is satisfied by the database pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthToolDeps contains dependencies for the health tool. DB may be nil
// when the server runs without storage.
type HealthToolDeps struct {
	Version string
	DB      Pinger
	Logger  *zap.Logger
}

type healthResult struct {
	Status       string               `json:"status"`
	Version      string               `json:"version"`
	Database     string               `json:"database,omitempty"`
	LogicalTypes []models.LogicalType `json:"logical_types"`
}

// RegisterHealthTool adds the health tool. It reports the engine version,
// whether the dataset store answers, and the logical types overrides accept.
func RegisterHealthTool(s *server.MCPServer, deps *HealthToolDeps) {
	tool := mcp.NewTool(
		"health",
		mcp.WithDescription(
			"Returns InsightSphere health, version, dataset store reachability and the logical types accepted in overrides",
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result := healthResult{
			Status:       "ok",
			Version:      deps.Version,
			LogicalTypes: models.LogicalTypeOptions,
		}

		if deps.DB != nil {
			pingCtx, cancel := context.WithTimeout(ctx, healthPingTimeout)
			defer cancel()
			if err := deps.DB.Ping(pingCtx); err != nil {
				deps.Logger.Warn("Database health check failed", zap.Error(err))
				result.Status = "degraded"
				result.Database = "unreachable"
			} else {
				result.Database = "ok"
			}
		}

		return jsonResult(result)
	})
}
