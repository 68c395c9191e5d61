package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/claude/liftlog/internal/aggregate"
	"github.com/claude/liftlog/internal/logbook"
	"github.com/claude/liftlog/internal/workout"
)

// newTestServer creates an httptest server that routes requests to handler functions
// keyed by path. Verifies the HTTP client sends correct paths and query params.
func newTestServer(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := handlers[r.URL.Path]
		if !ok {
			t.Errorf("unexpected request path: %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
}

func writeTestJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatal(err)
	}
}

// TestCalendar verifies the date parameter and the calendar view decoding.
func TestCalendar(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/calendar": func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("date"); got != "2024-01-20" {
				t.Errorf("date=%q, want 2024-01-20", got)
			}
			s := sessionOn(20)
			writeTestJSON(t, w, logbook.CalendarView{
				Month:       "2024-01",
				Selected:    s.Date,
				Stats:       aggregate.MonthlyStats{TotalWorkouts: 1},
				WorkoutDays: []workout.Day{s.Date},
				Session:     &s,
			})
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL, "")
	view, err := client.Calendar(context.Background(), "ignored", workout.Day{Year: 2024, Month: time.January, Day: 20})
	if err != nil {
		t.Fatal(err)
	}
	if view.Session == nil || view.Session.ID != "s20" {
		t.Errorf("session = %+v", view.Session)
	}
	if len(view.WorkoutDays) != 1 {
		t.Errorf("workout days = %v", view.WorkoutDays)
	}
}

// TestMonthlyDefaultsToServerToday sends no date for the zero Day.
func TestMonthlyDefaultsToServerToday(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/stats/monthly": func(w http.ResponseWriter, r *http.Request) {
			if r.URL.RawQuery != "" {
				t.Errorf("query=%q, want none", r.URL.RawQuery)
			}
			writeTestJSON(t, w, aggregate.MonthlyStats{TotalWorkouts: 2, TotalVolume: 800, TotalTimeSec: 70})
		},
	})
	defer ts.Close()

	stats, err := NewHTTPClient(ts.URL, "").Monthly(context.Background(), "", workout.Day{})
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalVolume != 800 {
		t.Errorf("volume=%v, want 800", stats.TotalVolume)
	}
}

// TestBearerToken verifies the token is sent on every request.
func TestBearerToken(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/stats/profile": func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get("Authorization"); got != "Bearer tok" {
				t.Errorf("Authorization=%q", got)
			}
			writeTestJSON(t, w, aggregate.ProfileStats{TotalWorkouts: 5})
		},
	})
	defer ts.Close()

	stats, err := NewHTTPClient(ts.URL+"/", "tok").Profile(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalWorkouts != 5 {
		t.Errorf("total=%d, want 5", stats.TotalWorkouts)
	}
}

// TestRecentSessionsLimit verifies the limit parameter.
func TestRecentSessionsLimit(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/sessions": func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("limit"); got != "10" {
				t.Errorf("limit=%q, want 10", got)
			}
			writeTestJSON(t, w, []workout.Session{sessionOn(20)})
		},
	})
	defer ts.Close()

	sessions, err := NewHTTPClient(ts.URL, "").RecentSessions(context.Background(), "", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 1 {
		t.Errorf("sessions=%d, want 1", len(sessions))
	}
}

// TestHTTPErrorStatus surfaces non-200 responses with the body.
func TestHTTPErrorStatus(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/sessions": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"missing token"}`))
		},
	})
	defer ts.Close()

	_, err := NewHTTPClient(ts.URL, "").ListSessions(context.Background(), "")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "401") || !strings.Contains(err.Error(), "missing token") {
		t.Errorf("err = %v", err)
	}
}
