// Package mcp exposes the workout log to MCP clients as tools and resources.
package mcp

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/claude/liftlog/internal/workout"
)

type contextKey int

const userKey contextKey = iota

// DefaultUser is used when the transport did not inject an identity, as with
// the local stdio server.
const DefaultUser workout.UserID = "local"

// UserFromContext extracts the user injected by the transport layer.
func UserFromContext(ctx context.Context) workout.UserID {
	if u, ok := ctx.Value(userKey).(workout.UserID); ok && u != "" {
		return u
	}
	return DefaultUser
}

// WithUser returns a context carrying user.
func WithUser(ctx context.Context, user workout.UserID) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("LiftLog", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("LiftLog strength training log. Query monthly totals, a day's session, lifetime stats and premade routines. All data is scoped to the authenticated user. Volume is kilograms times reps over completed sets; time is in seconds."),
	)

	h := &handlers{ds: ds, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolGetMonthlyStats, Handler: h.getMonthlyStats},
		server.ServerTool{Tool: toolGetDay, Handler: h.getDay},
		server.ServerTool{Tool: toolGetProfileStats, Handler: h.getProfileStats},
		server.ServerTool{Tool: toolListSessions, Handler: h.listSessions},
		server.ServerTool{Tool: toolListRoutines, Handler: h.listRoutines},
	)

	s.AddResources(
		server.ServerResource{Resource: resRecentSessions, Handler: h.recentSessions},
		server.ServerResource{Resource: resRoutines, Handler: h.routines},
	)

	return s
}

type handlers struct {
	ds  DataSource
	log *slog.Logger
}

var resRecentSessions = mcp.NewResource(
	"liftlog://recent_sessions",
	"Recent Sessions",
	mcp.WithResourceDescription("The ten most recent workout sessions, newest first"),
	mcp.WithMIMEType("application/json"),
)

var resRoutines = mcp.NewResource(
	"liftlog://routines",
	"Routines",
	mcp.WithResourceDescription("Premade routines with their resolved exercises"),
	mcp.WithMIMEType("application/json"),
)
