// Package events publishes domain events about sealed sessions to a broker.
package events

import (
	"context"
	"time"

	"github.com/claude/liftlog/internal/workout"
)

// SessionSealed is emitted after a session has been written.
type SessionSealed struct {
	SessionID    string    `json:"session_id"`
	UserID       string    `json:"user_id"`
	Date         string    `json:"date"`
	TotalVolume  float64   `json:"total_volume"`
	TotalTimeSec int64     `json:"total_time_sec"`
	Exercises    int       `json:"exercises"`
	Sets         int       `json:"sets"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// NewSessionSealed describes s as sealed at at.
func NewSessionSealed(s workout.Session, at time.Time) SessionSealed {
	return SessionSealed{
		SessionID:    s.ID,
		UserID:       string(s.UserID),
		Date:         s.Date.String(),
		TotalVolume:  s.TotalVolume,
		TotalTimeSec: s.TotalTimeSec,
		Exercises:    len(s.Exercises),
		Sets:         s.SetCount(),
		OccurredAt:   at.UTC(),
	}
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	PublishSessionSealed(ctx context.Context, e SessionSealed) error
	// Name identifies the backend in logs and metrics.
	Name() string
	Close() error
}

// Nop discards every event.
type Nop struct{}

func (Nop) PublishSessionSealed(context.Context, SessionSealed) error { return nil }
func (Nop) Name() string                                              { return "none" }
func (Nop) Close() error                                              { return nil }
