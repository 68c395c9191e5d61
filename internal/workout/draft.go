package workout

import (
	"fmt"
	"strings"
	"time"
)

// Draft is a session being composed. It is owned by a single composing flow
// and edited in place until Seal produces the immutable Session.
type Draft struct {
	Exercises []Exercise `json:"exercises"`
}

// AddExercise appends an exercise with no sets and returns its index.
func (d *Draft) AddExercise(id ExerciseID, name string) int {
	d.Exercises = append(d.Exercises, Exercise{ID: id, Name: name})
	return len(d.Exercises) - 1
}

// AddSet appends a set to exercise i and returns the set's index.
func (d *Draft) AddSet(i int, s Set) (int, error) {
	if err := d.checkExercise(i); err != nil {
		return 0, err
	}
	d.Exercises[i].Sets = append(d.Exercises[i].Sets, s)
	return len(d.Exercises[i].Sets) - 1, nil
}

// UpdateSet replaces set j of exercise i.
func (d *Draft) UpdateSet(i, j int, s Set) error {
	if err := d.checkSet(i, j); err != nil {
		return err
	}
	d.Exercises[i].Sets[j] = s
	return nil
}

// ToggleCompleted flips the completed flag of set j of exercise i.
func (d *Draft) ToggleCompleted(i, j int) error {
	if err := d.checkSet(i, j); err != nil {
		return err
	}
	d.Exercises[i].Sets[j].Completed = !d.Exercises[i].Sets[j].Completed
	return nil
}

// RemoveSet deletes set j of exercise i; later sets shift down one place.
func (d *Draft) RemoveSet(i, j int) error {
	if err := d.checkSet(i, j); err != nil {
		return err
	}
	sets := d.Exercises[i].Sets
	d.Exercises[i].Sets = append(sets[:j:j], sets[j+1:]...)
	return nil
}

// RemoveExercise deletes exercise i.
func (d *Draft) RemoveExercise(i int) error {
	if err := d.checkExercise(i); err != nil {
		return err
	}
	d.Exercises = append(d.Exercises[:i:i], d.Exercises[i+1:]...)
	return nil
}

// Validate checks the draft can be sealed.
func (d *Draft) Validate() error {
	if len(d.Exercises) == 0 {
		return ErrEmptySession
	}
	return ValidateExercises(d.Exercises)
}

// Seal validates the draft and produces the session for user on day.
// Totals are recomputed here; nothing the client reports is trusted.
// CreatedAt is day at the time of day of at (in loc), so the session's
// createdAt always falls on its own Date, even when recorded after the fact.
func (d *Draft) Seal(user UserID, day Day, at time.Time, elapsed time.Duration, loc *time.Location) (Session, error) {
	if err := d.Validate(); err != nil {
		return Session{}, err
	}
	if loc == nil {
		loc = time.UTC
	}
	if elapsed < 0 {
		elapsed = 0
	}

	local := at.In(loc)
	created := time.Date(day.Year, day.Month, day.Day,
		local.Hour(), local.Minute(), local.Second(), local.Nanosecond(), loc)

	exercises := make([]Exercise, len(d.Exercises))
	for i, e := range d.Exercises {
		sets := make([]Set, len(e.Sets))
		copy(sets, e.Sets)
		exercises[i] = Exercise{ID: e.ID, Name: strings.TrimSpace(e.Name), Sets: sets}
	}

	return Session{
		UserID:       user,
		Date:         day,
		CreatedAt:    At(created),
		TotalTimeSec: int64(elapsed / time.Second),
		TotalVolume:  Volume(exercises),
		Exercises:    exercises,
	}, nil
}

func (d *Draft) checkExercise(i int) error {
	if i < 0 || i >= len(d.Exercises) {
		return fmt.Errorf("exercise index %d out of range", i)
	}
	return nil
}

func (d *Draft) checkSet(i, j int) error {
	if err := d.checkExercise(i); err != nil {
		return err
	}
	if j < 0 || j >= len(d.Exercises[i].Sets) {
		return fmt.Errorf("set index %d out of range for exercise %d", j, i)
	}
	return nil
}
