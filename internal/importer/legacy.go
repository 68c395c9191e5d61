package importer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/claude/liftlog/internal/workout"
)

// ErrUnitRequired is returned when a legacy export is read without saying
// what unit its totalTime values are in.
var ErrUnitRequired = errors.New("totalTime unit is required (seconds or minutes)")

// Unit is the unit of a legacy export's totalTime field.
type Unit string

const (
	UnitSeconds Unit = "seconds"
	UnitMinutes Unit = "minutes"
)

// ParseUnit accepts "seconds"/"s"/"sec" and "minutes"/"m"/"min".
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return "", ErrUnitRequired
	case "seconds", "second", "sec", "s":
		return UnitSeconds, nil
	case "minutes", "minute", "min", "m":
		return UnitMinutes, nil
	}
	return "", fmt.Errorf("unknown totalTime unit %q", s)
}

func (u Unit) seconds(v float64) (int64, error) {
	switch u {
	case UnitSeconds:
		return int64(math.Round(v)), nil
	case UnitMinutes:
		return int64(math.Round(v * 60)), nil
	}
	return 0, ErrUnitRequired
}

// LegacySource names legacy JSON imports in logs and metrics.
const LegacySource = "legacy"

// record is one entry of the browser local-storage "workouts" array.
type record struct {
	Date        string             `json:"date"`
	CreatedAt   workout.Timestamp  `json:"createdAt"`
	TotalTime   float64            `json:"totalTime"`
	TotalVolume float64            `json:"totalVolume"`
	Exercises   []workout.Exercise `json:"exercises"`
}

// Legacy reads the JSON the old browser client kept in local storage: either
// a bare array of sessions or an object with a "workouts" array.
type Legacy struct {
	Unit     Unit
	Location *time.Location
}

func (l Legacy) Name() string { return LegacySource }

// Parse decodes the export. Totals are converted to seconds; stored volume
// is passed through untouched so the logbook can compare it with the sets.
// A createdAt that cannot be parsed is kept raw; the session's day then
// comes from the "date" field when present.
func (l Legacy) Parse(r io.Reader) ([]workout.Session, error) {
	if l.Unit == "" {
		return nil, ErrUnitRequired
	}
	loc := l.Location
	if loc == nil {
		loc = time.UTC
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading legacy export: %w", err)
	}
	records, err := decodeRecords(data)
	if err != nil {
		return nil, err
	}

	sessions := make([]workout.Session, 0, len(records))
	for _, rec := range records {
		secs, err := l.Unit.seconds(rec.TotalTime)
		if err != nil {
			return nil, err
		}
		s := workout.Session{
			CreatedAt:    rec.CreatedAt,
			TotalTimeSec: secs,
			TotalVolume:  rec.TotalVolume,
			Exercises:    rec.Exercises,
		}
		switch {
		case rec.CreatedAt.Valid():
			s.Date = workout.DayOf(rec.CreatedAt.In(loc), loc)
		case rec.Date != "":
			if d, err := workout.ParseDay(rec.Date); err == nil {
				s.Date = d
			} else if ts := workout.ParseTimestamp(rec.Date); ts.Valid() {
				s.Date = workout.DayOf(ts.In(loc), loc)
			}
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}

func decodeRecords(data []byte) ([]record, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}
	if data[0] == '{' {
		var wrapped struct {
			Workouts []record `json:"workouts"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return nil, fmt.Errorf("decoding legacy export: %w", err)
		}
		return wrapped.Workouts, nil
	}
	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decoding legacy export: %w", err)
	}
	return records, nil
}
