// Package mcp exposes the workout tracker to AI assistants over the Model
// Context Protocol: stats, history, the weekly plan, and strength records.
package mcp

import (
	"context"
	"log/slog"
	"time"

	"github.com/Rushil-19-blr/muscle-mind-motion-track-84/internal/models"
	"github.com/Rushil-19-blr/muscle-mind-motion-track-84/internal/plan"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type contextKey int

const userIDKey contextKey = iota

// UserIDFromContext extracts the user ID injected by the transport layer.
func UserIDFromContext(ctx context.Context) int {
	if id, ok := ctx.Value(userIDKey).(int); ok {
		return id
	}
	return 1
}

// WithUserID returns a context with the given user ID.
func WithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// DataSource abstracts the data layer for MCP tools. Both *storage.DB
// (local) and HTTPClient (remote via the REST API) satisfy this interface;
// stats are always computed in-process from the history.
type DataSource interface {
	GetCompletedWorkouts(ctx context.Context, userID, limit int) ([]models.CompletedWorkout, error)
	GetTodaysCompletedWorkout(ctx context.Context, userID int) (*models.CompletedWorkout, error)
	GetPlan(ctx context.Context, userID int) (*plan.WorkoutPlan, error)
}

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("MuscleMind", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("MuscleMind workout tracker. Query workout history, training stats, strength records, and the weekly plan. All data is scoped to the authenticated user."),
	)

	h := &handlers{ds: ds, log: log, now: time.Now}

	s.AddTools(
		server.ServerTool{Tool: toolGetWorkoutStats, Handler: h.getWorkoutStats},
		server.ServerTool{Tool: toolGetWorkouts, Handler: h.getWorkouts},
		server.ServerTool{Tool: toolGetWorkoutPlan, Handler: h.getWorkoutPlan},
		server.ServerTool{Tool: toolGetStrengthRecords, Handler: h.getStrengthRecords},
		server.ServerTool{Tool: toolGetTodaysWorkout, Handler: h.getTodaysWorkout},
	)

	s.AddResources(
		server.ServerResource{Resource: resRecentWorkouts, Handler: h.recentWorkouts},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
	now func() time.Time
}

var resRecentWorkouts = mcp.NewResource(
	"musclemind://recent_workouts",
	"Recent Workouts",
	mcp.WithResourceDescription("Completed workouts from the last 14 days"),
	mcp.WithMIMEType("application/json"),
)
