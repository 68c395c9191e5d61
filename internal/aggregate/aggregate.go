// Package aggregate derives calendar views and summary statistics from a
// snapshot of workout sessions.
//
// Every method is a pure function of its arguments. Data-quality problems
// (unparseable timestamps, two sessions on one day) never abort a
// computation; they are returned in a Report for the caller to log.
package aggregate

import (
	"sort"
	"time"

	"github.com/claude/liftlog/internal/workout"
)

// AnomalyKind classifies a data-quality problem found while aggregating.
type AnomalyKind string

const (
	// MalformedTimestamp marks a session whose createdAt could not be parsed.
	MalformedTimestamp AnomalyKind = "malformed_timestamp"
	// DuplicateDay marks a second session on a calendar day that already has one.
	DuplicateDay AnomalyKind = "duplicate_day"
)

// Anomaly is one data-quality problem. Index is the session's position in the
// input slice.
type Anomaly struct {
	Kind      AnomalyKind `json:"kind"`
	Index     int         `json:"index"`
	SessionID string      `json:"session_id,omitempty"`
	Day       string      `json:"day,omitempty"`
	Raw       string      `json:"raw,omitempty"`
}

// Report collects anomalies found during one call.
type Report struct {
	Anomalies []Anomaly `json:"anomalies,omitempty"`
}

// Empty reports whether no anomalies were found.
func (r Report) Empty() bool {
	return len(r.Anomalies) == 0
}

// Count returns the number of anomalies of kind k.
func (r Report) Count(k AnomalyKind) int {
	n := 0
	for _, a := range r.Anomalies {
		if a.Kind == k {
			n++
		}
	}
	return n
}

func (r *Report) add(kind AnomalyKind, i int, s workout.Session) {
	a := Anomaly{Kind: kind, Index: i, SessionID: s.ID}
	switch kind {
	case MalformedTimestamp:
		a.Raw = s.CreatedAt.Raw
	case DuplicateDay:
		a.Day = s.Date.String()
	}
	r.Anomalies = append(r.Anomalies, a)
}

// MonthlyStats summarizes the sessions in one calendar month. The zero value
// is the result for a month with no sessions.
type MonthlyStats struct {
	TotalWorkouts int     `json:"total_workouts"`
	TotalVolume   float64 `json:"total_volume"`
	TotalTimeSec  int64   `json:"total_time_sec"`
}

// Calendar interprets instants as calendar days in Location. A nil Location
// means UTC.
type Calendar struct {
	Location *time.Location
}

func (c Calendar) loc() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}

// MonthWindow returns the first and last instant of the calendar month
// containing ref. Both bounds are inclusive.
func (c Calendar) MonthWindow(ref time.Time) (start, end time.Time) {
	local := ref.In(c.loc())
	start = time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, c.loc())
	end = start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return start, end
}

// MonthlyStats totals the sessions whose createdAt lies within the month
// containing ref. Sessions with an unparseable createdAt are skipped and
// reported.
func (c Calendar) MonthlyStats(sessions []workout.Session, ref time.Time) (MonthlyStats, Report) {
	var (
		stats  MonthlyStats
		report Report
	)
	start, end := c.MonthWindow(ref)
	for i, s := range sessions {
		if !s.CreatedAt.Valid() {
			report.add(MalformedTimestamp, i, s)
			continue
		}
		t := s.CreatedAt.In(c.loc())
		if t.Before(start) || t.After(end) {
			continue
		}
		stats.TotalWorkouts++
		stats.TotalVolume += s.TotalVolume
		stats.TotalTimeSec += s.TotalTimeSec
	}
	return stats, report
}

// FindSessionForDate returns the first session whose createdAt falls on the
// same calendar day as selected. A nil selected, or no match, yields nil.
// Further sessions on the matched day are reported as duplicates.
func (c Calendar) FindSessionForDate(sessions []workout.Session, selected *time.Time) (*workout.Session, Report) {
	var report Report
	if selected == nil {
		return nil, report
	}
	want := workout.DayOf(*selected, c.loc())

	var found *workout.Session
	for i := range sessions {
		s := sessions[i]
		if !s.CreatedAt.Valid() {
			report.add(MalformedTimestamp, i, s)
			continue
		}
		if workout.DayOf(s.CreatedAt.In(c.loc()), c.loc()) != want {
			continue
		}
		if found != nil {
			s.Date = want
			report.add(DuplicateDay, i, s)
			continue
		}
		match := s
		found = &match
	}
	return found, report
}

// TotalVolumeForSession sums weight times reps over the completed sets of
// exercises.
func TotalVolumeForSession(exercises []workout.Exercise) float64 {
	return workout.Volume(exercises)
}

// WorkoutDays lists the distinct calendar days in ref's month that have a
// session, in ascending order.
func (c Calendar) WorkoutDays(sessions []workout.Session, ref time.Time) ([]workout.Day, Report) {
	var report Report
	month := workout.DayOf(ref, c.loc())
	seen := make(map[workout.Day]bool)
	days := []workout.Day{}
	for i, s := range sessions {
		if !s.CreatedAt.Valid() {
			report.add(MalformedTimestamp, i, s)
			continue
		}
		d := workout.DayOf(s.CreatedAt.In(c.loc()), c.loc())
		if d.Year != month.Year || d.Month != month.Month {
			continue
		}
		if seen[d] {
			continue
		}
		seen[d] = true
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days, report
}

// ProfileStats summarizes a user's whole history.
type ProfileStats struct {
	TotalWorkouts int     `json:"total_workouts"`
	TotalDays     int     `json:"total_days"`
	CurrentStreak int     `json:"current_streak"`
	TotalVolume   float64 `json:"total_volume"`
}

// Profile computes lifetime stats as of today. CurrentStreak counts
// consecutive days with a session ending today, or yesterday when today has
// none yet. Sessions with an unparseable createdAt count toward
// TotalWorkouts and TotalVolume but not toward days.
func (c Calendar) Profile(sessions []workout.Session, today time.Time) (ProfileStats, Report) {
	var (
		stats  ProfileStats
		report Report
	)
	days := make(map[workout.Day]bool)
	for i, s := range sessions {
		stats.TotalWorkouts++
		stats.TotalVolume += s.TotalVolume
		if !s.CreatedAt.Valid() {
			report.add(MalformedTimestamp, i, s)
			continue
		}
		d := workout.DayOf(s.CreatedAt.In(c.loc()), c.loc())
		if days[d] {
			s.Date = d
			report.add(DuplicateDay, i, s)
			continue
		}
		days[d] = true
	}
	stats.TotalDays = len(days)

	cursor := workout.DayOf(today, c.loc())
	if !days[cursor] {
		cursor = cursor.AddDays(-1)
	}
	for days[cursor] {
		stats.CurrentStreak++
		cursor = cursor.AddDays(-1)
	}
	return stats, report
}
