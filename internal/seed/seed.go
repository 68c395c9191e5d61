// Package seed generates plausible fake training history for demos and load
// testing.
package seed

import (
	"fmt"
	"math"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/claude/liftlog/internal/catalog"
	"github.com/claude/liftlog/internal/workout"
)

// Generator builds sessions from the catalog routines.
type Generator struct {
	Faker    *gofakeit.Faker
	Location *time.Location
	// Rate is the chance, in [0,1], that a given day has a session.
	Rate float64
}

// New returns a generator seeded with seed. The same seed yields the same
// history.
func New(seed int64, loc *time.Location) *Generator {
	if loc == nil {
		loc = time.UTC
	}
	return &Generator{Faker: gofakeit.New(seed), Location: loc, Rate: 0.5}
}

// Generate returns at most one session per day for the days in [from, from+days).
func (g *Generator) Generate(user workout.UserID, from workout.Day, days int) ([]workout.Session, error) {
	routines := catalog.Routines()
	var out []workout.Session
	for i := 0; i < days; i++ {
		if g.Faker.Float64Range(0, 1) >= g.Rate {
			continue
		}
		day := from.AddDays(i)
		r := routines[g.Faker.IntRange(0, len(routines)-1)]
		s, err := g.session(user, day, r.ID)
		if err != nil {
			return nil, fmt.Errorf("generating %s: %w", day, err)
		}
		out = append(out, s)
	}
	return out, nil
}

func (g *Generator) session(user workout.UserID, day workout.Day, routineID string) (workout.Session, error) {
	d, err := catalog.DraftFromRoutine(routineID)
	if err != nil {
		return workout.Session{}, err
	}
	for i := range d.Exercises {
		weight := roundTo(g.Faker.Float64Range(20, 120), 2.5)
		for n := g.Faker.IntRange(2, 5); n > 0; n-- {
			set := workout.Set{
				WeightKg:  weight,
				Reps:      g.Faker.IntRange(3, 12),
				Completed: g.Faker.Float64Range(0, 1) < 0.9,
			}
			if _, err := d.AddSet(i, set); err != nil {
				return workout.Session{}, err
			}
		}
	}
	at := day.Start(g.Location).Add(time.Duration(g.Faker.IntRange(6, 20)) * time.Hour).
		Add(time.Duration(g.Faker.IntRange(0, 59)) * time.Minute)
	elapsed := time.Duration(g.Faker.IntRange(30, 95)) * time.Minute
	return d.Seal(user, day, at, elapsed, g.Location)
}

func roundTo(v, step float64) float64 {
	return math.Round(v/step) * step
}
