// Package storage defines the persistence capability every session backend
// implements. Backends live in subpackages; callers depend only on Store.
package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/claude/liftlog/internal/workout"
)

var (
	// ErrNotFound is returned by GetByDay when the user has no session that day.
	ErrNotFound = errors.New("session not found")
	// ErrInvalidSession is returned by Upsert for a session without a user or date.
	ErrInvalidSession = errors.New("invalid session")
)

//go:generate mockgen -source=$GOFILE -destination=storagemock/store.go -package=storagemock

// Store persists sealed sessions, at most one per user and calendar day.
type Store interface {
	// List returns every session of user ordered by date ascending.
	List(ctx context.Context, user workout.UserID) ([]workout.Session, error)
	// Upsert writes s, replacing any session the user already has on s.Date.
	// The stored session is returned with its ID assigned.
	Upsert(ctx context.Context, s workout.Session) (workout.Session, error)
	// GetByDay returns the user's session on day, or ErrNotFound.
	GetByDay(ctx context.Context, user workout.UserID, day workout.Day) (workout.Session, error)
	Close() error
}

// Prepare checks the write key of s and assigns an ID when it has none.
// Backends call it at the top of Upsert.
func Prepare(s workout.Session) (workout.Session, error) {
	if s.UserID == "" {
		return s, fmt.Errorf("%w: user is required", ErrInvalidSession)
	}
	if s.Date.IsZero() {
		return s, fmt.Errorf("%w: date is required", ErrInvalidSession)
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return s, nil
}

// SortByDate orders sessions by Date, keeping input order for equal days.
func SortByDate(sessions []workout.Session) {
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].Date.Before(sessions[j].Date)
	})
}

// ImportLog records the outcome of one batch import.
type ImportLog struct {
	ID               int64          `json:"id"`
	UserID           workout.UserID `json:"user_id"`
	CreatedAt        time.Time      `json:"created_at"`
	Source           string         `json:"source"`
	Status           string         `json:"status"`
	SessionsReceived int            `json:"sessions_received"`
	SessionsWritten  int            `json:"sessions_written"`
	SessionsSkipped  int            `json:"sessions_skipped"`
	DurationMs       *int           `json:"duration_ms"`
	ErrorMessage     *string        `json:"error_message"`
	Metadata         map[string]any `json:"metadata,omitempty"`
}

// ImportLogger is implemented by backends that keep an import history.
type ImportLogger interface {
	InsertImportLog(ctx context.Context, log ImportLog) (int64, error)
	QueryImportLogs(ctx context.Context, user workout.UserID, limit int) ([]ImportLog, error)
}
