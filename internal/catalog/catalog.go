// Package catalog holds the built-in exercise list and premade routines.
package catalog

import (
	"errors"

	"github.com/claude/liftlog/internal/workout"
)

// ErrUnknownRoutine is returned for a routine id that is not in the catalog.
var ErrUnknownRoutine = errors.New("unknown routine")

// Category groups exercises by body part.
type Category string

const (
	Chest     Category = "chest"
	Back      Category = "back"
	Legs      Category = "legs"
	Shoulders Category = "shoulders"
	Arms      Category = "arms"
	Core      Category = "core"
)

// Exercise is a catalog entry.
type Exercise struct {
	ID       workout.ExerciseID `json:"id"`
	Name     string             `json:"name"`
	Category Category           `json:"category"`
}

// Routine is a named template of exercises.
type Routine struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Creator     string               `json:"creator"`
	Description string               `json:"description"`
	ExerciseIDs []workout.ExerciseID `json:"exercise_ids"`
}

var exercises = []Exercise{
	{ID: "bench-press", Name: "Bench Press", Category: Chest},
	{ID: "incline-press", Name: "Incline Bench Press", Category: Chest},
	{ID: "dips", Name: "Dips", Category: Chest},
	{ID: "pull-up", Name: "Pull-up", Category: Back},
	{ID: "barbell-row", Name: "Barbell Row", Category: Back},
	{ID: "lat-pull-down", Name: "Lat Pulldown", Category: Back},
	{ID: "squat", Name: "Squat", Category: Legs},
	{ID: "deadlift", Name: "Deadlift", Category: Legs},
	{ID: "leg-press", Name: "Leg Press", Category: Legs},
	{ID: "overhead-press", Name: "Overhead Press", Category: Shoulders},
	{ID: "side-lateral-raise", Name: "Side Lateral Raise", Category: Shoulders},
	{ID: "barbell-curl", Name: "Barbell Curl", Category: Arms},
	{ID: "triceps-extension", Name: "Triceps Extension", Category: Arms},
	{ID: "plank", Name: "Plank", Category: Core},
}

var routines = []Routine{
	{
		ID:          "routine-beginner-strength",
		Name:        "Beginner Strength",
		Creator:     "liftlog",
		Description: "Full-body strength built around the big lifts.",
		ExerciseIDs: []workout.ExerciseID{"squat", "bench-press", "deadlift", "overhead-press"},
	},
	{
		ID:          "routine-push-day",
		Name:        "Push Day (chest/shoulders/triceps)",
		Creator:     "liftlog",
		Description: "Pressing movements for chest, shoulders and triceps.",
		ExerciseIDs: []workout.ExerciseID{"bench-press", "incline-press", "overhead-press", "triceps-extension"},
	},
	{
		ID:          "routine-pull-day",
		Name:        "Pull Day (back/biceps)",
		Creator:     "liftlog",
		Description: "Pulling movements for back and biceps.",
		ExerciseIDs: []workout.ExerciseID{"pull-up", "barbell-row", "lat-pull-down", "barbell-curl"},
	},
}

// Exercises returns the catalog, optionally filtered to one category.
func Exercises(category Category) []Exercise {
	out := make([]Exercise, 0, len(exercises))
	for _, e := range exercises {
		if category == "" || e.Category == category {
			out = append(out, e)
		}
	}
	return out
}

// Lookup finds an exercise by id.
func Lookup(id workout.ExerciseID) (Exercise, bool) {
	for _, e := range exercises {
		if e.ID == id {
			return e, true
		}
	}
	return Exercise{}, false
}

// Routines returns the premade routines.
func Routines() []Routine {
	out := make([]Routine, len(routines))
	for i, r := range routines {
		r.ExerciseIDs = append([]workout.ExerciseID(nil), r.ExerciseIDs...)
		out[i] = r
	}
	return out
}

// RoutineByID finds a routine.
func RoutineByID(id string) (Routine, bool) {
	for _, r := range Routines() {
		if r.ID == id {
			return r, true
		}
	}
	return Routine{}, false
}

// ExercisesForRoutine resolves a routine's exercises in routine order. Ids
// missing from the catalog are skipped; an unknown routine yields nil.
func ExercisesForRoutine(id string) []Exercise {
	r, ok := RoutineByID(id)
	if !ok {
		return nil
	}
	out := make([]Exercise, 0, len(r.ExerciseIDs))
	for _, eid := range r.ExerciseIDs {
		if e, ok := Lookup(eid); ok {
			out = append(out, e)
		}
	}
	return out
}

// DraftFromRoutine starts a draft with one empty exercise per routine entry.
func DraftFromRoutine(id string) (workout.Draft, error) {
	if _, ok := RoutineByID(id); !ok {
		return workout.Draft{}, ErrUnknownRoutine
	}
	var d workout.Draft
	for _, e := range ExercisesForRoutine(id) {
		d.AddExercise(e.ID, e.Name)
	}
	return d, nil
}
