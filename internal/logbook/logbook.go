// Package logbook is the application service behind every surface: it seals
// drafts into stored sessions and answers calendar and stats queries by
// running the aggregator over the user's stored history.
package logbook

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/claude/liftlog/internal/aggregate"
	"github.com/claude/liftlog/internal/events"
	"github.com/claude/liftlog/internal/observability"
	"github.com/claude/liftlog/internal/storage"
	"github.com/claude/liftlog/internal/workout"
)

// RecordPrompt is shown for a selected day without a session.
const RecordPrompt = "No workout recorded for this day. Record one?"

// Options configures a Service. Store is required; the rest have defaults.
type Options struct {
	Store     storage.Store
	ImportLog storage.ImportLogger
	Location  *time.Location
	Publisher events.Publisher
	Metrics   *observability.Metrics
	Logger    *slog.Logger
	Now       func() time.Time
}

// Service implements the workout log use cases for an explicit user.
type Service struct {
	store     storage.Store
	importLog storage.ImportLogger
	cal       aggregate.Calendar
	publisher events.Publisher
	metrics   *observability.Metrics
	log       *slog.Logger
	now       func() time.Time
}

// New creates a Service.
func New(opts Options) *Service {
	s := &Service{
		store:     opts.Store,
		importLog: opts.ImportLog,
		cal:       aggregate.Calendar{Location: opts.Location},
		publisher: opts.Publisher,
		metrics:   opts.Metrics,
		log:       opts.Logger,
		now:       opts.Now,
	}
	if s.cal.Location == nil {
		s.cal.Location = time.UTC
	}
	if s.publisher == nil {
		s.publisher = events.Nop{}
	}
	if s.metrics == nil {
		s.metrics, _ = observability.NewTestMetrics()
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Location is the zone calendar days are computed in.
func (s *Service) Location() *time.Location {
	return s.cal.Location
}

// Today is the current calendar day.
func (s *Service) Today() workout.Day {
	return workout.DayOf(s.now(), s.cal.Location)
}

// CompleteWorkout seals draft as user's session on day and stores it,
// replacing any session already recorded that day. A zero day means today.
func (s *Service) CompleteWorkout(ctx context.Context, user workout.UserID, day workout.Day, draft workout.Draft, elapsed time.Duration) (workout.Session, error) {
	now := s.now()
	if day.IsZero() {
		day = workout.DayOf(now, s.cal.Location)
	}

	sealed, err := draft.Seal(user, day, now, elapsed, s.cal.Location)
	if err != nil {
		return workout.Session{}, err
	}

	stored, err := s.store.Upsert(ctx, sealed)
	if err != nil {
		return workout.Session{}, fmt.Errorf("storing session: %w", err)
	}
	s.metrics.SessionsSealed.Inc()
	s.log.Info("session sealed",
		"user", user,
		"date", stored.Date.String(),
		"volume", stored.TotalVolume,
		"time_sec", stored.TotalTimeSec,
		"exercises", len(stored.Exercises))

	s.publish(ctx, stored, now)
	return stored, nil
}

func (s *Service) publish(ctx context.Context, sess workout.Session, at time.Time) {
	if err := s.publisher.PublishSessionSealed(ctx, events.NewSessionSealed(sess, at)); err != nil {
		s.metrics.PublishFailures.WithLabelValues(s.publisher.Name()).Inc()
		s.log.Warn("publishing session event failed",
			"backend", s.publisher.Name(),
			"session", sess.ID,
			"error", err)
	}
}

// CalendarView is the month of the selected day plus that day's session.
type CalendarView struct {
	Month       string                 `json:"month"`
	Selected    workout.Day            `json:"selected"`
	Stats       aggregate.MonthlyStats `json:"stats"`
	WorkoutDays []workout.Day          `json:"workout_days"`
	Session     *workout.Session       `json:"session"`
	Prompt      string                 `json:"prompt,omitempty"`
}

// Calendar builds the calendar view for selected. A zero selected means today.
func (s *Service) Calendar(ctx context.Context, user workout.UserID, selected workout.Day) (CalendarView, error) {
	if selected.IsZero() {
		selected = s.Today()
	}
	sessions, err := s.store.List(ctx, user)
	if err != nil {
		return CalendarView{}, fmt.Errorf("listing sessions: %w", err)
	}

	ref := selected.Start(s.cal.Location)
	stats, statsReport := s.cal.MonthlyStats(sessions, ref)
	days, _ := s.cal.WorkoutDays(sessions, ref)
	session, findReport := s.cal.FindSessionForDate(sessions, &ref)

	// Malformed timestamps show up in every pass; report them once.
	s.report(user, "monthly_stats", statsReport)
	s.report(user, "find_session", aggregate.Report{Anomalies: onlyKind(findReport, aggregate.DuplicateDay)})

	view := CalendarView{
		Month:       fmt.Sprintf("%04d-%02d", selected.Year, int(selected.Month)),
		Selected:    selected,
		Stats:       stats,
		WorkoutDays: days,
		Session:     session,
	}
	if session == nil {
		view.Prompt = RecordPrompt
	}
	return view, nil
}

// Monthly returns the stats of the month containing day.
func (s *Service) Monthly(ctx context.Context, user workout.UserID, day workout.Day) (aggregate.MonthlyStats, error) {
	if day.IsZero() {
		day = s.Today()
	}
	sessions, err := s.store.List(ctx, user)
	if err != nil {
		return aggregate.MonthlyStats{}, fmt.Errorf("listing sessions: %w", err)
	}
	stats, report := s.cal.MonthlyStats(sessions, day.Start(s.cal.Location))
	s.report(user, "monthly_stats", report)
	return stats, nil
}

// Profile returns lifetime stats as of now.
func (s *Service) Profile(ctx context.Context, user workout.UserID) (aggregate.ProfileStats, error) {
	sessions, err := s.store.List(ctx, user)
	if err != nil {
		return aggregate.ProfileStats{}, fmt.Errorf("listing sessions: %w", err)
	}
	stats, report := s.cal.Profile(sessions, s.now())
	s.report(user, "profile", report)
	return stats, nil
}

// SessionOn returns the stored session of day, or storage.ErrNotFound.
func (s *Service) SessionOn(ctx context.Context, user workout.UserID, day workout.Day) (workout.Session, error) {
	return s.store.GetByDay(ctx, user, day)
}

// ListSessions returns the user's sessions, oldest first.
func (s *Service) ListSessions(ctx context.Context, user workout.UserID) ([]workout.Session, error) {
	sessions, err := s.store.List(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	return sessions, nil
}

// RecentSessions returns up to limit sessions, newest first.
func (s *Service) RecentSessions(ctx context.Context, user workout.UserID, limit int) ([]workout.Session, error) {
	sessions, err := s.ListSessions(ctx, user)
	if err != nil {
		return nil, err
	}
	out := make([]workout.Session, 0, min(limit, len(sessions)))
	for i := len(sessions) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, sessions[i])
	}
	return out, nil
}

// report logs and counts aggregation anomalies. They never fail a request.
func (s *Service) report(user workout.UserID, op string, r aggregate.Report) {
	for _, a := range r.Anomalies {
		s.metrics.AggregationAnomalies.WithLabelValues(string(a.Kind)).Inc()
		s.log.Warn("session data anomaly",
			"op", op,
			"user", user,
			"kind", a.Kind,
			"session", a.SessionID,
			"index", a.Index,
			"day", a.Day,
			"raw", a.Raw)
	}
}

func onlyKind(r aggregate.Report, k aggregate.AnomalyKind) []aggregate.Anomaly {
	var out []aggregate.Anomaly
	for _, a := range r.Anomalies {
		if a.Kind == k {
			out = append(out, a)
		}
	}
	return out
}

// IsNotFound reports whether err means "no session".
func IsNotFound(err error) bool {
	return errors.Is(err, storage.ErrNotFound)
}
