// Package storagetest holds the behavioral checks every storage.Store
// backend must pass.
package storagetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claude/liftlog/internal/storage"
	"github.com/claude/liftlog/internal/workout"
)

// Session builds a sealed session for user on the given day.
func Session(user workout.UserID, y int, m time.Month, d int, volume float64) workout.Session {
	day := workout.Day{Year: y, Month: m, Day: d}
	return workout.Session{
		UserID:       user,
		Date:         day,
		CreatedAt:    workout.At(time.Date(y, m, d, 18, 0, 0, 0, time.UTC)),
		TotalTimeSec: 2400,
		TotalVolume:  volume,
		Exercises: []workout.Exercise{{
			ID:   "squat",
			Name: "Squat",
			Sets: []workout.Set{
				{WeightKg: volume / 10, Reps: 10, Completed: true},
				{WeightKg: 20, Reps: 5, Completed: false},
			},
		}},
	}
}

// Run exercises the Store contract against a fresh store from newStore.
func Run(t *testing.T, newStore func(t *testing.T) storage.Store) {
	t.Run("empty list", func(t *testing.T) {
		s := newStore(t)
		got, err := s.List(context.Background(), "nobody")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("get missing day", func(t *testing.T) {
		s := newStore(t)
		_, err := s.GetByDay(context.Background(), "alice", workout.Day{Year: 2024, Month: 1, Day: 16})
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("upsert assigns id and round trips", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		in := Session("alice", 2024, time.January, 15, 500)

		stored, err := s.Upsert(ctx, in)
		require.NoError(t, err)
		assert.NotEmpty(t, stored.ID)

		got, err := s.GetByDay(ctx, "alice", in.Date)
		require.NoError(t, err)
		assert.Equal(t, stored.ID, got.ID)
		assert.Equal(t, in.Date, got.Date)
		assert.Equal(t, in.TotalVolume, got.TotalVolume)
		assert.Equal(t, in.TotalTimeSec, got.TotalTimeSec)
		assert.True(t, in.CreatedAt.Time.Equal(got.CreatedAt.Time))
		require.Len(t, got.Exercises, 1)
		assert.Equal(t, in.Exercises[0].Name, got.Exercises[0].Name)
		assert.Equal(t, in.Exercises[0].Sets, got.Exercises[0].Sets)
	})

	t.Run("one session per day", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		first, err := s.Upsert(ctx, Session("alice", 2024, time.January, 20, 300))
		require.NoError(t, err)
		second, err := s.Upsert(ctx, Session("alice", 2024, time.January, 20, 450))
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID, "replacing a day keeps its id")

		all, err := s.List(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, 450.0, all[0].TotalVolume)
	})

	t.Run("list is scoped and ordered", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		for _, sess := range []workout.Session{
			Session("alice", 2024, time.February, 1, 100),
			Session("alice", 2024, time.January, 15, 500),
			Session("bob", 2024, time.January, 16, 999),
			Session("alice", 2024, time.January, 20, 300),
		} {
			_, err := s.Upsert(ctx, sess)
			require.NoError(t, err)
		}

		all, err := s.List(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, "2024-01-15", all[0].Date.String())
		assert.Equal(t, "2024-01-20", all[1].Date.String())
		assert.Equal(t, "2024-02-01", all[2].Date.String())
		for _, sess := range all {
			assert.Equal(t, workout.UserID("alice"), sess.UserID)
		}

		_, err = s.GetByDay(ctx, "alice", workout.Day{Year: 2024, Month: 1, Day: 16})
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("rejects missing key", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		_, err := s.Upsert(ctx, workout.Session{Date: workout.Day{Year: 2024, Month: 1, Day: 1}})
		assert.ErrorIs(t, err, storage.ErrInvalidSession)
		_, err = s.Upsert(ctx, workout.Session{UserID: "alice"})
		assert.ErrorIs(t, err, storage.ErrInvalidSession)
	})
}
