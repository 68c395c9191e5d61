// Package memory is an in-process Store, optionally seeded from a JSON
// fixture file.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/claude/liftlog/internal/storage"
	"github.com/claude/liftlog/internal/workout"
)

// Store keeps sessions per user in insertion order.
type Store struct {
	mu       sync.RWMutex
	sessions map[workout.UserID][]workout.Session
}

// New returns an empty Store.
func New() *Store {
	return &Store{sessions: make(map[workout.UserID][]workout.Session)}
}

// LoadFixtures reads a JSON array of sessions from path and appends them
// verbatim. Fixtures are a snapshot of historical data: they are not
// deduplicated, so a fixture may carry the same-day duplicates older
// revisions produced. Sessions without a user_id are assigned to user, and
// sessions without a date take the day of their createdAt in loc.
func (s *Store) LoadFixtures(path string, user workout.UserID, loc *time.Location) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading fixtures: %w", err)
	}
	var fixtures []workout.Session
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return 0, fmt.Errorf("parsing fixtures: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range fixtures {
		if f.UserID == "" {
			f.UserID = user
		}
		if f.Date.IsZero() && f.CreatedAt.Valid() {
			f.Date = workout.DayOf(f.CreatedAt.In(loc), loc)
		}
		s.sessions[f.UserID] = append(s.sessions[f.UserID], f)
	}
	return len(fixtures), nil
}

func (s *Store) List(_ context.Context, user workout.UserID) ([]workout.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]workout.Session, len(s.sessions[user]))
	copy(out, s.sessions[user])
	storage.SortByDate(out)
	return out, nil
}

func (s *Store) Upsert(_ context.Context, sess workout.Session) (workout.Session, error) {
	sess, err := storage.Prepare(sess)
	if err != nil {
		return workout.Session{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.sessions[sess.UserID]
	for i := range list {
		if list[i].Date == sess.Date {
			sess.ID = list[i].ID
			list[i] = sess
			return sess, nil
		}
	}
	s.sessions[sess.UserID] = append(list, sess)
	return sess, nil
}

func (s *Store) GetByDay(_ context.Context, user workout.UserID, day workout.Day) (workout.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sess := range s.sessions[user] {
		if sess.Date == day {
			return sess, nil
		}
	}
	return workout.Session{}, storage.ErrNotFound
}

func (s *Store) Close() error { return nil }
