// Package ingest turns third-party workout exports into sessions and hands
// them to the logbook.
package ingest

import (
	"context"
	"fmt"
	"io"

	"github.com/claude/liftlog/internal/logbook"
	"github.com/claude/liftlog/internal/workout"
)

// Provider parses one export format.
type Provider interface {
	// Name is the import source recorded in logs and metrics.
	Name() string
	Parse(r io.Reader) ([]workout.Session, error)
}

// Sink stores parsed sessions for a user. *logbook.Service implements it.
type Sink interface {
	Import(ctx context.Context, user workout.UserID, source string, sessions []workout.Session) (logbook.ImportResult, error)
}

// ParseError reports an export that could not be read. Callers treat it as
// bad input rather than a server failure.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s export: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Run parses r with p and imports the result for user.
func Run(ctx context.Context, sink Sink, p Provider, r io.Reader, user workout.UserID) (logbook.ImportResult, error) {
	sessions, err := p.Parse(r)
	if err != nil {
		return logbook.ImportResult{}, &ParseError{Source: p.Name(), Err: err}
	}
	return sink.Import(ctx, user, p.Name(), sessions)
}
