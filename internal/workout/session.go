// Package workout defines the workout log domain: sets, exercises, sessions,
// calendar days and the draft that a session is composed in before sealing.
package workout

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrEmptySession is returned when sealing a draft with no exercises.
	ErrEmptySession = errors.New("session has no exercises")
	// ErrInvalidExercise is returned for an exercise with no name.
	ErrInvalidExercise = errors.New("invalid exercise")
	// ErrInvalidSet is returned for a set with negative or non-finite weight
	// or negative reps.
	ErrInvalidSet = errors.New("invalid set")
)

// UserID scopes every stored session. It is the login name, token subject or
// other stable identifier resolved per request.
type UserID string

// Set is one performed set.
type Set struct {
	WeightKg  float64 `json:"weight"`
	Reps      int     `json:"reps"`
	Completed bool    `json:"completed"`
}

// UnmarshalJSON treats a missing "completed" field as true; older exports
// recorded only finished sets and carried no flag.
func (s *Set) UnmarshalJSON(b []byte) error {
	var wire struct {
		WeightKg  float64 `json:"weight"`
		Reps      int     `json:"reps"`
		Completed *bool   `json:"completed"`
	}
	if err := json.Unmarshal(b, &wire); err != nil {
		return err
	}
	s.WeightKg = wire.WeightKg
	s.Reps = wire.Reps
	s.Completed = wire.Completed == nil || *wire.Completed
	return nil
}

// Volume is weight times reps for a completed set, zero otherwise.
func (s Set) Volume() float64 {
	if !s.Completed {
		return 0
	}
	return s.WeightKg * float64(s.Reps)
}

func (s Set) validate() error {
	if math.IsNaN(s.WeightKg) || math.IsInf(s.WeightKg, 0) {
		return fmt.Errorf("%w: weight must be a finite number", ErrInvalidSet)
	}
	if s.WeightKg < 0 {
		return fmt.Errorf("%w: weight must not be negative", ErrInvalidSet)
	}
	if s.Reps < 0 {
		return fmt.Errorf("%w: reps must not be negative", ErrInvalidSet)
	}
	return nil
}

// ValidateExercises checks that every exercise is named and every set has a
// finite, non-negative weight and non-negative reps.
func ValidateExercises(exercises []Exercise) error {
	for i, e := range exercises {
		if strings.TrimSpace(e.Name) == "" {
			return fmt.Errorf("exercise %s: %w: name is required", ordinal(i), ErrInvalidExercise)
		}
		for j, s := range e.Sets {
			if err := s.validate(); err != nil {
				return fmt.Errorf("exercise %s set %s: %w", ordinal(i), ordinal(j), err)
			}
		}
	}
	return nil
}

// ExerciseID identifies an exercise within a session. Clients have sent both
// catalog slugs and small integers, so JSON numbers are accepted too.
type ExerciseID string

// UnmarshalJSON accepts a string or a number.
func (id *ExerciseID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ExerciseID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = ExerciseID(n.String())
	return nil
}

// Exercise is one exercise performed in a session. Sets keep insertion order.
type Exercise struct {
	ID   ExerciseID `json:"id"`
	Name string     `json:"name"`
	Sets []Set      `json:"sets"`
}

// Volume sums the volume of the exercise's completed sets.
func (e Exercise) Volume() float64 {
	var total float64
	for _, s := range e.Sets {
		total += s.Volume()
	}
	return total
}

// Session is one day's sealed workout.
type Session struct {
	ID           string     `json:"id,omitempty"`
	UserID       UserID     `json:"user_id,omitempty"`
	Date         Day        `json:"date"`
	CreatedAt    Timestamp  `json:"created_at"`
	TotalTimeSec int64      `json:"total_time_sec"`
	TotalVolume  float64    `json:"total_volume"`
	Exercises    []Exercise `json:"exercises"`
}

// Volume recomputes the session volume from its sets.
func Volume(exercises []Exercise) float64 {
	var total float64
	for _, e := range exercises {
		total += e.Volume()
	}
	return total
}

// Key is the persistence key enforcing one session per user and day.
func (s Session) Key() string {
	return DayKey(s.UserID, s.Date)
}

// SetCount returns the number of recorded sets across all exercises.
func (s Session) SetCount() int {
	n := 0
	for _, e := range s.Exercises {
		n += len(e.Sets)
	}
	return n
}

// DayKey builds the persistence key for a user and day.
func DayKey(user UserID, day Day) string {
	return string(user) + "_" + day.String()
}

// ordinal formats a 1-based position for error messages.
func ordinal(i int) string {
	return "#" + strconv.Itoa(i+1)
}
