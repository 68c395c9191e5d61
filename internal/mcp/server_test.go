package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/claude/liftlog/internal/aggregate"
	"github.com/claude/liftlog/internal/logbook"
	"github.com/claude/liftlog/internal/workout"
)

type fakeSource struct {
	user     workout.UserID
	day      workout.Day
	sessions []workout.Session
	err      error
}

func (f *fakeSource) Calendar(_ context.Context, user workout.UserID, day workout.Day) (logbook.CalendarView, error) {
	f.user, f.day = user, day
	return logbook.CalendarView{Selected: day, Prompt: logbook.RecordPrompt}, f.err
}

func (f *fakeSource) Monthly(_ context.Context, user workout.UserID, day workout.Day) (aggregate.MonthlyStats, error) {
	f.user, f.day = user, day
	return aggregate.MonthlyStats{TotalWorkouts: 2, TotalVolume: 800, TotalTimeSec: 70}, f.err
}

func (f *fakeSource) Profile(_ context.Context, user workout.UserID) (aggregate.ProfileStats, error) {
	f.user = user
	return aggregate.ProfileStats{TotalWorkouts: 3, CurrentStreak: 2}, f.err
}

func (f *fakeSource) ListSessions(_ context.Context, user workout.UserID) ([]workout.Session, error) {
	f.user = user
	return f.sessions, f.err
}

func (f *fakeSource) RecentSessions(_ context.Context, user workout.UserID, limit int) ([]workout.Session, error) {
	f.user = user
	if limit < len(f.sessions) {
		return f.sessions[:limit], f.err
	}
	return f.sessions, f.err
}

func newHandlers(ds DataSource) *handlers {
	return &handlers{ds: ds, log: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("empty tool result")
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content type = %T, want TextContent", res.Content[0])
	}
	return text.Text
}

func sessionOn(d int) workout.Session {
	return workout.Session{
		ID:        "s" + time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC).Format("02"),
		Date:      workout.Day{Year: 2024, Month: time.January, Day: d},
		CreatedAt: workout.At(time.Date(2024, 1, d, 18, 0, 0, 0, time.UTC)),
	}
}

// TestUserFromContextDefault verifies the stdio default user when no value
// is set in the context.
func TestUserFromContextDefault(t *testing.T) {
	if u := UserFromContext(context.Background()); u != DefaultUser {
		t.Errorf("UserFromContext(empty) = %q, want %q", u, DefaultUser)
	}
}

// TestUserFromContextSet verifies the user is extracted after WithUser.
func TestUserFromContextSet(t *testing.T) {
	ctx := WithUser(context.Background(), "alice")
	if u := UserFromContext(ctx); u != "alice" {
		t.Errorf("UserFromContext = %q, want alice", u)
	}
}

// TestParseDay covers empty, date-only, RFC 3339 and invalid inputs.
func TestParseDay(t *testing.T) {
	if d, err := parseDay(""); err != nil || !d.IsZero() {
		t.Errorf("parseDay(\"\") = %v, %v", d, err)
	}
	d, err := parseDay("2024-01-20")
	if err != nil || d != (workout.Day{Year: 2024, Month: time.January, Day: 20}) {
		t.Errorf("parseDay(date) = %v, %v", d, err)
	}
	d, err = parseDay("2024-01-20T23:30:00-05:00")
	if err != nil || d.Day != 20 {
		t.Errorf("parseDay(rfc3339) = %v, %v", d, err)
	}
	if _, err := parseDay("last tuesday"); err == nil {
		t.Error("expected error for invalid date")
	}
}

// TestGetMonthlyStatsTool verifies the date argument and user reach the data source.
func TestGetMonthlyStatsTool(t *testing.T) {
	ds := &fakeSource{}
	h := newHandlers(ds)
	ctx := WithUser(context.Background(), "alice")

	res, err := h.getMonthlyStats(ctx, callRequest(map[string]any{"date": "2024-01-20"}))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("tool error: %s", resultText(t, res))
	}
	if ds.user != "alice" || ds.day.Day != 20 {
		t.Errorf("data source got user=%q day=%v", ds.user, ds.day)
	}
	var stats aggregate.MonthlyStats
	if err := json.Unmarshal([]byte(resultText(t, res)), &stats); err != nil {
		t.Fatal(err)
	}
	if stats.TotalVolume != 800 {
		t.Errorf("TotalVolume = %v, want 800", stats.TotalVolume)
	}
}

// TestGetDayInvalidDate returns a tool error rather than a protocol error.
func TestGetDayInvalidDate(t *testing.T) {
	h := newHandlers(&fakeSource{})
	res, err := h.getDay(context.Background(), callRequest(map[string]any{"date": "nope"}))
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError {
		t.Error("expected tool error")
	}
}

// TestGetProfileStatsQueryError surfaces data source failures as tool errors.
func TestGetProfileStatsQueryError(t *testing.T) {
	h := newHandlers(&fakeSource{err: errors.New("db down")})
	res, err := h.getProfileStats(context.Background(), callRequest(nil))
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError {
		t.Error("expected tool error")
	}
}

// TestFilterSessions covers range bounds and the newest-N limit.
func TestFilterSessions(t *testing.T) {
	all := []workout.Session{sessionOn(10), sessionOn(15), sessionOn(20), sessionOn(25)}
	start := workout.Day{Year: 2024, Month: time.January, Day: 15}
	end := workout.Day{Year: 2024, Month: time.January, Day: 20}

	got := filterSessions(all, start, end, 0)
	if len(got) != 2 || got[0].Date.Day != 15 || got[1].Date.Day != 20 {
		t.Errorf("range filter = %v", got)
	}
	got = filterSessions(all, workout.Day{}, workout.Day{}, 1)
	if len(got) != 1 || got[0].Date.Day != 25 {
		t.Errorf("limit filter = %v", got)
	}
}

// TestListRoutinesTool resolves routine exercises from the catalog.
func TestListRoutinesTool(t *testing.T) {
	h := newHandlers(&fakeSource{})
	res, err := h.listRoutines(context.Background(), callRequest(nil))
	if err != nil {
		t.Fatal(err)
	}
	var routines []routineView
	if err := json.Unmarshal([]byte(resultText(t, res)), &routines); err != nil {
		t.Fatal(err)
	}
	if len(routines) == 0 {
		t.Fatal("no routines")
	}
	for _, r := range routines {
		if len(r.Exercises) == 0 {
			t.Errorf("routine %s has no resolved exercises", r.ID)
		}
	}
}

// TestRecentSessionsResource returns the data source's newest sessions as JSON.
func TestRecentSessionsResource(t *testing.T) {
	ds := &fakeSource{sessions: []workout.Session{sessionOn(25), sessionOn(20)}}
	h := newHandlers(ds)

	var req mcp.ReadResourceRequest
	req.Params.URI = "liftlog://recent_sessions"
	contents, err := h.recentSessions(WithUser(context.Background(), "bob"), req)
	if err != nil {
		t.Fatal(err)
	}
	text := contents[0].(mcp.TextResourceContents)
	if text.URI != "liftlog://recent_sessions" {
		t.Errorf("URI = %q", text.URI)
	}
	var sessions []workout.Session
	if err := json.Unmarshal([]byte(text.Text), &sessions); err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 2 || ds.user != "bob" {
		t.Errorf("sessions = %d, user = %q", len(sessions), ds.user)
	}
}

// TestNewRegistersCapabilities checks the server builds with a data source.
func TestNewRegistersCapabilities(t *testing.T) {
	if s := New(&fakeSource{}, "test", slog.Default()); s == nil {
		t.Fatal("New returned nil")
	}
}
