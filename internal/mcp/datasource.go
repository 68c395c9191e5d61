package mcp

import (
	"context"

	"github.com/claude/liftlog/internal/aggregate"
	"github.com/claude/liftlog/internal/logbook"
	"github.com/claude/liftlog/internal/workout"
)

// DataSource abstracts the data layer for MCP tools. Both *logbook.Service
// (local) and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	Calendar(ctx context.Context, user workout.UserID, day workout.Day) (logbook.CalendarView, error)
	Monthly(ctx context.Context, user workout.UserID, day workout.Day) (aggregate.MonthlyStats, error)
	Profile(ctx context.Context, user workout.UserID) (aggregate.ProfileStats, error)
	ListSessions(ctx context.Context, user workout.UserID) ([]workout.Session, error)
	RecentSessions(ctx context.Context, user workout.UserID, limit int) ([]workout.Session, error)
}

// Compile-time check: *logbook.Service satisfies DataSource.
var _ DataSource = (*logbook.Service)(nil)
