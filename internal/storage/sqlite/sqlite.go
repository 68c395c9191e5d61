// Package sqlite stores sessions in a local SQLite file, one row per user and
// day with the exercises kept as a JSON document.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/claude/liftlog/internal/storage"
	"github.com/claude/liftlog/internal/workout"
)

// Store is a storage.Store on a SQLite database file.
type Store struct {
	db *sql.DB
}

// Open creates the database file if needed, applies migrations and returns
// the store.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}
	// SQLite allows one writer; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

const selectColumns = `SELECT id, user_id, session_date, created_at, total_time_sec, total_volume, exercises FROM sessions`

func (s *Store) List(ctx context.Context, user workout.UserID) ([]workout.Session, error) {
	rows, err := s.db.QueryContext(ctx,
		selectColumns+` WHERE user_id = ? ORDER BY session_date ASC`, string(user))
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	result := []workout.Session{}
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, sess)
	}
	return result, rows.Err()
}

func (s *Store) GetByDay(ctx context.Context, user workout.UserID, day workout.Day) (workout.Session, error) {
	row := s.db.QueryRowContext(ctx,
		selectColumns+` WHERE user_id = ? AND session_date = ?`, string(user), day.String())
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return workout.Session{}, storage.ErrNotFound
	}
	return sess, err
}

func (s *Store) Upsert(ctx context.Context, sess workout.Session) (workout.Session, error) {
	sess, err := storage.Prepare(sess)
	if err != nil {
		return workout.Session{}, err
	}

	exercises, err := json.Marshal(nonNil(sess.Exercises))
	if err != nil {
		return workout.Session{}, fmt.Errorf("encoding exercises: %w", err)
	}

	err = s.db.QueryRowContext(ctx,
		`INSERT INTO sessions (id, user_id, session_date, created_at, total_time_sec, total_volume, exercises)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (user_id, session_date) DO UPDATE SET
			created_at = excluded.created_at,
			total_time_sec = excluded.total_time_sec,
			total_volume = excluded.total_volume,
			exercises = excluded.exercises,
			updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
		 RETURNING id`,
		sess.ID, string(sess.UserID), sess.Date.String(), sess.CreatedAt.String(),
		sess.TotalTimeSec, sess.TotalVolume, string(exercises),
	).Scan(&sess.ID)
	if err != nil {
		return workout.Session{}, fmt.Errorf("upserting session %s: %w", sess.Key(), err)
	}
	return sess, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (workout.Session, error) {
	var (
		sess                       workout.Session
		user, day, created, exJSON string
	)
	if err := row.Scan(&sess.ID, &user, &day, &created, &sess.TotalTimeSec, &sess.TotalVolume, &exJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return sess, err
		}
		return sess, fmt.Errorf("scanning session: %w", err)
	}
	sess.UserID = workout.UserID(user)

	d, err := workout.ParseDay(day)
	if err != nil {
		return sess, fmt.Errorf("session %s: %w", sess.ID, err)
	}
	sess.Date = d
	// created_at is kept as written; unparseable legacy values surface as
	// invalid timestamps for the aggregator to report.
	sess.CreatedAt = workout.ParseTimestamp(created)

	if err := json.Unmarshal([]byte(exJSON), &sess.Exercises); err != nil {
		return sess, fmt.Errorf("decoding exercises of session %s: %w", sess.ID, err)
	}
	return sess, nil
}

func nonNil(ex []workout.Exercise) []workout.Exercise {
	if ex == nil {
		return []workout.Exercise{}
	}
	return ex
}
