package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/claude/liftlog/internal/storage"
	"github.com/claude/liftlog/internal/workout"
)

const sessionColumns = `id, user_id, session_date, created_at, created_at_raw, total_time_sec, total_volume`

// List returns the user's sessions with their exercises, oldest day first.
func (db *DB) List(ctx context.Context, user workout.UserID) ([]workout.Session, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+sessionColumns+`
		 FROM workout_sessions
		 WHERE user_id = $1
		 ORDER BY session_date ASC`,
		string(user))
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	result := []workout.Session{}
	index := make(map[string]int)
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		index[s.ID] = len(result)
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return result, nil
	}

	err = db.loadExercises(ctx, func(sessionID string) *workout.Session {
		if i, ok := index[sessionID]; ok {
			return &result[i]
		}
		return nil
	}, `s.user_id = $1`, string(user))
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetByDay returns the user's session on day or storage.ErrNotFound.
func (db *DB) GetByDay(ctx context.Context, user workout.UserID, day workout.Day) (workout.Session, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT `+sessionColumns+`
		 FROM workout_sessions
		 WHERE user_id = $1 AND session_date = $2`,
		string(user), day.Start(time.UTC))
	s, err := scanSession(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return workout.Session{}, storage.ErrNotFound
	}
	if err != nil {
		return workout.Session{}, err
	}

	err = db.loadExercises(ctx, func(sessionID string) *workout.Session {
		if sessionID == s.ID {
			return &s
		}
		return nil
	}, `s.id = $1`, s.ID)
	if err != nil {
		return workout.Session{}, err
	}
	return s, nil
}

// Upsert writes the session and replaces its exercises and sets in one
// transaction. An existing row for the same user and day keeps its id.
func (db *DB) Upsert(ctx context.Context, s workout.Session) (workout.Session, error) {
	s, err := storage.Prepare(s)
	if err != nil {
		return workout.Session{}, err
	}
	// Ids from imports may not be UUIDs; the row id column is.
	if _, err := uuid.Parse(s.ID); err != nil {
		s.ID = uuid.NewString()
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return workout.Session{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	// Zone-less and unparseable createdAt values are kept as text so a read
	// returns exactly what was written.
	var createdAt *time.Time
	var createdRaw *string
	switch {
	case s.CreatedAt.Valid() && !s.CreatedAt.Floating:
		t := s.CreatedAt.Time
		createdAt = &t
	case s.CreatedAt.String() != "":
		raw := s.CreatedAt.String()
		createdRaw = &raw
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO workout_sessions (id, user_id, session_date, created_at, created_at_raw, total_time_sec, total_volume)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (user_id, session_date) DO UPDATE SET
			created_at = EXCLUDED.created_at,
			created_at_raw = EXCLUDED.created_at_raw,
			total_time_sec = EXCLUDED.total_time_sec,
			total_volume = EXCLUDED.total_volume,
			updated_at = NOW()
		 RETURNING id`,
		s.ID, string(s.UserID), s.Date.Start(time.UTC), createdAt, createdRaw, s.TotalTimeSec, s.TotalVolume,
	).Scan(&s.ID)
	if err != nil {
		return workout.Session{}, fmt.Errorf("upserting session %s: %w", s.Key(), err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM workout_exercises WHERE session_id = $1`, s.ID); err != nil {
		return workout.Session{}, fmt.Errorf("clearing exercises of %s: %w", s.Key(), err)
	}
	rowID, err := uuid.Parse(s.ID)
	if err != nil {
		return workout.Session{}, fmt.Errorf("session %s: stored id %q: %w", s.Key(), s.ID, err)
	}
	if err := insertExercises(ctx, tx, rowID, s.Exercises); err != nil {
		return workout.Session{}, err
	}
	if err := insertSets(ctx, tx, rowID, s.Exercises); err != nil {
		return workout.Session{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return workout.Session{}, fmt.Errorf("committing session %s: %w", s.Key(), err)
	}
	return s, nil
}

// insertExercises and insertSets use COPY, which has no bind-parameter
// limit, so a session of any size is written in one round trip each.
func insertExercises(ctx context.Context, tx pgx.Tx, sessionID uuid.UUID, exercises []workout.Exercise) error {
	if len(exercises) == 0 {
		return nil
	}
	rows := make([][]any, len(exercises))
	for i, e := range exercises {
		rows[i] = []any{sessionID, i, string(e.ID), e.Name}
	}
	_, err := tx.CopyFrom(ctx,
		pgx.Identifier{"workout_exercises"},
		[]string{"session_id", "exercise_number", "exercise_id", "name"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("inserting exercises: %w", err)
	}
	return nil
}

func insertSets(ctx context.Context, tx pgx.Tx, sessionID uuid.UUID, exercises []workout.Exercise) error {
	var rows [][]any
	for i, e := range exercises {
		for j, set := range e.Sets {
			rows = append(rows, []any{sessionID, i, j, set.WeightKg, set.Reps, set.Completed})
		}
	}
	if len(rows) == 0 {
		return nil
	}
	_, err := tx.CopyFrom(ctx,
		pgx.Identifier{"workout_sets"},
		[]string{"session_id", "exercise_number", "set_number", "weight_kg", "reps", "completed"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("inserting sets: %w", err)
	}
	return nil
}

// loadExercises fills in exercises and sets for sessions matched by where.
// lookup maps a session id to the session to fill, or nil to skip it.
func (db *DB) loadExercises(ctx context.Context, lookup func(string) *workout.Session, where string, arg any) error {
	exRows, err := db.Pool.Query(ctx,
		`SELECT e.session_id, e.exercise_number, e.exercise_id, e.name
		 FROM workout_exercises e
		 JOIN workout_sessions s ON s.id = e.session_id
		 WHERE `+where+`
		 ORDER BY e.session_id, e.exercise_number ASC`,
		arg)
	if err != nil {
		return fmt.Errorf("querying exercises: %w", err)
	}
	defer exRows.Close()

	for exRows.Next() {
		var (
			sessionID, exerciseID, name string
			number                      int
		)
		if err := exRows.Scan(&sessionID, &number, &exerciseID, &name); err != nil {
			return fmt.Errorf("scanning exercise: %w", err)
		}
		if s := lookup(sessionID); s != nil {
			s.Exercises = append(s.Exercises, workout.Exercise{ID: workout.ExerciseID(exerciseID), Name: name})
		}
	}
	if err := exRows.Err(); err != nil {
		return err
	}

	setRows, err := db.Pool.Query(ctx,
		`SELECT ws.session_id, ws.exercise_number, ws.weight_kg, ws.reps, ws.completed
		 FROM workout_sets ws
		 JOIN workout_sessions s ON s.id = ws.session_id
		 WHERE `+where+`
		 ORDER BY ws.session_id, ws.exercise_number ASC, ws.set_number ASC`,
		arg)
	if err != nil {
		return fmt.Errorf("querying sets: %w", err)
	}
	defer setRows.Close()

	for setRows.Next() {
		var (
			sessionID string
			number    int
			set       workout.Set
		)
		if err := setRows.Scan(&sessionID, &number, &set.WeightKg, &set.Reps, &set.Completed); err != nil {
			return fmt.Errorf("scanning set: %w", err)
		}
		s := lookup(sessionID)
		if s == nil || number < 0 || number >= len(s.Exercises) {
			continue
		}
		s.Exercises[number].Sets = append(s.Exercises[number].Sets, set)
	}
	return setRows.Err()
}

func scanSession(row pgx.Row) (workout.Session, error) {
	var (
		s          workout.Session
		user       string
		date       time.Time
		createdAt  *time.Time
		createdRaw *string
	)
	if err := row.Scan(&s.ID, &user, &date, &createdAt, &createdRaw, &s.TotalTimeSec, &s.TotalVolume); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return s, err
		}
		return s, fmt.Errorf("scanning session: %w", err)
	}
	s.UserID = workout.UserID(user)
	s.Date = workout.DayOf(date, time.UTC)
	switch {
	case createdAt != nil:
		s.CreatedAt = workout.At(*createdAt)
	case createdRaw != nil:
		s.CreatedAt = workout.ParseTimestamp(*createdRaw)
	}
	return s, nil
}
