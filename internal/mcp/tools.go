package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/claude/liftlog/internal/catalog"
	"github.com/claude/liftlog/internal/workout"
)

// parseDay accepts YYYY-MM-DD or RFC 3339. Empty input is the zero Day,
// which the data source reads as today.
func parseDay(s string) (workout.Day, error) {
	if s == "" {
		return workout.Day{}, nil
	}
	if d, err := workout.ParseDay(s); err == nil {
		return d, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return workout.Day{}, fmt.Errorf("want YYYY-MM-DD, got %q", s)
	}
	return workout.DayOf(t, t.Location()), nil
}

var toolGetMonthlyStats = mcp.NewTool("get_monthly_stats",
	mcp.WithDescription("Totals for one calendar month: number of workouts, total volume (kg x reps over completed sets) and total time in seconds."),
	mcp.WithString("date", mcp.Description("Any day in the month (YYYY-MM-DD). Defaults to today.")),
)

var toolGetDay = mcp.NewTool("get_day",
	mcp.WithDescription("The calendar view for one day: the month's totals, the days with a workout that month, and that day's session with every exercise and set, or null."),
	mcp.WithString("date", mcp.Description("Day to look up (YYYY-MM-DD). Defaults to today.")),
)

var toolGetProfileStats = mcp.NewTool("get_profile_stats",
	mcp.WithDescription("Lifetime stats: total workouts, distinct training days, current streak of consecutive days and total volume."),
)

var toolListSessions = mcp.NewTool("list_sessions",
	mcp.WithDescription("List recorded sessions oldest first, optionally within a date range."),
	mcp.WithString("start", mcp.Description("First day to include (YYYY-MM-DD).")),
	mcp.WithString("end", mcp.Description("Last day to include (YYYY-MM-DD).")),
	mcp.WithNumber("limit", mcp.Description("Return at most this many of the newest matching sessions. 0 means all.")),
)

var toolListRoutines = mcp.NewTool("list_routines",
	mcp.WithDescription("Premade routines with their exercises, usable as templates for a new session."),
)

func (h *handlers) getMonthlyStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	day, err := parseDay(req.GetString("date", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date: " + err.Error()), nil
	}

	stats, err := h.ds.Monthly(ctx, UserFromContext(ctx), day)
	if err != nil {
		h.log.Error("mcp get_monthly_stats", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(stats)
}

func (h *handlers) getDay(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	day, err := parseDay(req.GetString("date", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date: " + err.Error()), nil
	}

	view, err := h.ds.Calendar(ctx, UserFromContext(ctx), day)
	if err != nil {
		h.log.Error("mcp get_day", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(view)
}

func (h *handlers) getProfileStats(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := h.ds.Profile(ctx, UserFromContext(ctx))
	if err != nil {
		h.log.Error("mcp get_profile_stats", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(stats)
}

func (h *handlers) listSessions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, err := parseDay(req.GetString("start", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid start: " + err.Error()), nil
	}
	end, err := parseDay(req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid end: " + err.Error()), nil
	}
	limit := req.GetInt("limit", 0)

	sessions, err := h.ds.ListSessions(ctx, UserFromContext(ctx))
	if err != nil {
		h.log.Error("mcp list_sessions", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(filterSessions(sessions, start, end, limit))
}

// filterSessions keeps sessions within [start, end] (zero bounds are open)
// and then the newest limit of them, preserving order.
func filterSessions(sessions []workout.Session, start, end workout.Day, limit int) []workout.Session {
	out := []workout.Session{}
	for _, s := range sessions {
		if !start.IsZero() && s.Date.Before(start) {
			continue
		}
		if !end.IsZero() && end.Before(s.Date) {
			continue
		}
		out = append(out, s)
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}

type routineView struct {
	catalog.Routine
	Exercises []catalog.Exercise `json:"exercises"`
}

func resolvedRoutines() []routineView {
	var out []routineView
	for _, r := range catalog.Routines() {
		out = append(out, routineView{Routine: r, Exercises: catalog.ExercisesForRoutine(r.ID)})
	}
	return out
}

func (h *handlers) listRoutines(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(resolvedRoutines())
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
