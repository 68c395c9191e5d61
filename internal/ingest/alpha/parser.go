// Package alpha reads Alpha Progression CSV exports.
package alpha

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/claude/liftlog/internal/workout"
)

var (
	// "Session Name";"2026-02-19 4:54 h";"1:02 hr"
	sessionHeaderRe = regexp.MustCompile(`^"(.+)";"(\d{4}-\d{2}-\d{2}\s+\d+:\d+)\s+h";"(.+)"$`)

	// "1. Exercise Name · Equipment · 8 reps[· modifiers]"[;"warmup info"]
	exerciseHeaderRe = regexp.MustCompile(`^"(\d+)\.\s+(.+?)(?:\s+·\s+(\S.*?))?\s+·\s+(\d+)\s+reps(.*?)"(?:;"(.+)")?$`)

	// 1;115;8;1  (number;kg;reps;rir)
	setRowRe = regexp.MustCompile(`^(\d+);(.+);(\d+);(.+)$`)

	// WU1 · 37,5 kg · 9 reps
	warmupRe = regexp.MustCompile(`WU(\d+)\s+·\s+(.+?)\s+kg\s+·\s+(\d+)\s+reps`)

	// 1:02 hr, 45 min
	hoursRe   = regexp.MustCompile(`^(\d+):(\d{2})\s*hr?$`)
	minutesRe = regexp.MustCompile(`^(\d+)\s*min$`)

	slugRe = regexp.MustCompile(`[^a-z0-9]+`)
)

const columnHeader = "#;KG;REPS;RIR"

// Parse reads an export and returns one session per block, in file order.
// Session start times are interpreted in loc (UTC when nil). Warmup sets are
// kept but marked not completed, so they never count toward volume.
func Parse(r io.Reader, loc *time.Location) ([]workout.Session, error) {
	if loc == nil {
		loc = time.UTC
	}
	p := &parser{loc: loc}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if err := p.line(strings.TrimSpace(scanner.Text())); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading export: %w", err)
	}
	p.endSession()
	return p.sessions, nil
}

type parser struct {
	loc      *time.Location
	sessions []workout.Session
	current  *workout.Session
	exercise *workout.Exercise
}

func (p *parser) line(line string) error {
	switch {
	case line == "":
		p.endSession()
	case line == columnHeader:
	case sessionHeaderRe.MatchString(line):
		p.endSession()
		return p.startSession(sessionHeaderRe.FindStringSubmatch(line))
	case exerciseHeaderRe.MatchString(line):
		if p.current == nil {
			return fmt.Errorf("exercise without session: %q", line)
		}
		p.endExercise()
		return p.startExercise(exerciseHeaderRe.FindStringSubmatch(line))
	case setRowRe.MatchString(line):
		if p.exercise == nil {
			return fmt.Errorf("set without exercise: %q", line)
		}
		m := setRowRe.FindStringSubmatch(line)
		weight, err := parseWeight(m[2])
		if err != nil {
			return fmt.Errorf("set %q: %w", line, err)
		}
		reps, _ := strconv.Atoi(m[3])
		p.exercise.Sets = append(p.exercise.Sets, workout.Set{
			WeightKg:  weight,
			Reps:      reps,
			Completed: true,
		})
	}
	// Anything else is a note or metadata line.
	return nil
}

func (p *parser) startSession(m []string) error {
	start, err := parseStart(m[2], p.loc)
	if err != nil {
		return fmt.Errorf("session %q: %w", m[1], err)
	}
	p.current = &workout.Session{
		Date:         workout.DayOf(start, p.loc),
		CreatedAt:    workout.At(start),
		TotalTimeSec: int64(parseDuration(m[3]) / time.Second),
	}
	return nil
}

func (p *parser) startExercise(m []string) error {
	name := strings.TrimSpace(m[2])
	equipment := strings.TrimSpace(m[3])
	warmups, err := parseWarmups(m[6])
	if err != nil {
		return fmt.Errorf("exercise %q: %w", name, err)
	}
	p.exercise = &workout.Exercise{
		ID:   exerciseID(name, equipment),
		Name: name,
		Sets: warmups,
	}
	return nil
}

func (p *parser) endExercise() {
	if p.exercise == nil {
		return
	}
	p.current.Exercises = append(p.current.Exercises, *p.exercise)
	p.exercise = nil
}

func (p *parser) endSession() {
	if p.current == nil {
		return
	}
	p.endExercise()
	p.current.TotalVolume = workout.Volume(p.current.Exercises)
	p.sessions = append(p.sessions, *p.current)
	p.current = nil
}

// parseStart accepts both "2026-02-19 4:54" and "2026-02-19 16:54".
func parseStart(s string, loc *time.Location) (time.Time, error) {
	for _, layout := range []string{"2006-01-02 15:04", "2006-01-02 3:04"} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse start %q", s)
}

// parseDuration reads "1:02 hr" or "45 min". Unknown forms yield zero.
func parseDuration(s string) time.Duration {
	s = strings.TrimSpace(s)
	if m := hoursRe.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1])
		mins, _ := strconv.Atoi(m[2])
		return time.Duration(h)*time.Hour + time.Duration(mins)*time.Minute
	}
	if m := minutesRe.FindStringSubmatch(s); m != nil {
		mins, _ := strconv.Atoi(m[1])
		return time.Duration(mins) * time.Minute
	}
	return 0
}

// parseWarmups reads "WU1 · 37,5 kg · 9 reps<br>WU2 · 72,5 kg · 7 reps".
func parseWarmups(s string) ([]workout.Set, error) {
	var sets []workout.Set
	for _, part := range strings.Split(s, "<br>") {
		m := warmupRe.FindStringSubmatch(part)
		if m == nil {
			continue
		}
		weight, err := parseWeight(m[2])
		if err != nil {
			return nil, fmt.Errorf("warmup %s: %w", m[1], err)
		}
		reps, _ := strconv.Atoi(m[3])
		sets = append(sets, workout.Set{WeightKg: weight, Reps: reps})
	}
	return sets, nil
}

// parseWeight reads European decimals. Bodyweight-plus values ("+35") are
// recorded as the added load only. Anything that is not a finite,
// non-negative number is an error.
func parseWeight(s string) (float64, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "+")
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return 0, fmt.Errorf("weight %q: %w", s, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, fmt.Errorf("weight %q: must be a finite, non-negative number", s)
	}
	return f, nil
}

func exerciseID(name, equipment string) workout.ExerciseID {
	slug := strings.Trim(slugRe.ReplaceAllString(strings.ToLower(name+" "+equipment), "-"), "-")
	return workout.ExerciseID(slug)
}
