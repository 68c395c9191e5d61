//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	postgrescontainer "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/claude/liftlog/internal/storage"
	"github.com/claude/liftlog/internal/storage/storagetest"
	"github.com/claude/liftlog/internal/workout"
)

func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	pg, err := postgrescontainer.Run(ctx, "postgres:16-alpine",
		postgrescontainer.WithDatabase("liftlog"),
		postgrescontainer.WithUsername("liftlog"),
		postgrescontainer.WithPassword("liftlog"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(ctx) })

	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		db, err := New(ctx, dsn)
		if err != nil {
			return false
		}
		db.Close()
		return true
	}, 30*time.Second, 500*time.Millisecond, "postgres never became ready")

	require.NoError(t, RunMigrations(dsn))
	return dsn
}

func TestStoreContract(t *testing.T) {
	dsn := startPostgres(t)
	ctx := context.Background()

	storagetest.Run(t, func(t *testing.T) storage.Store {
		db, err := New(ctx, dsn)
		require.NoError(t, err)
		_, err = db.Pool.Exec(ctx, `TRUNCATE workout_sessions CASCADE`)
		require.NoError(t, err)
		t.Cleanup(func() { db.Close() })
		return db
	})
}

func TestImportLogs(t *testing.T) {
	dsn := startPostgres(t)
	ctx := context.Background()
	db, err := New(ctx, dsn)
	require.NoError(t, err)
	defer db.Close()

	ms := 42
	id, err := db.InsertImportLog(ctx, storage.ImportLog{
		UserID:           "alice",
		Source:           "alpha",
		Status:           "success",
		SessionsReceived: 3,
		SessionsWritten:  2,
		SessionsSkipped:  1,
		DurationMs:       &ms,
		Metadata:         map[string]any{"file": "export.csv"},
	})
	require.NoError(t, err)
	require.NotZero(t, id)

	logs, err := db.QueryImportLogs(ctx, "alice", 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.Equal(t, 2, logs[0].SessionsWritten)
	require.Equal(t, "export.csv", logs[0].Metadata["file"])
}

func TestUpsertLargeSessionAndFloatingCreatedAt(t *testing.T) {
	dsn := startPostgres(t)
	ctx := context.Background()
	db, err := New(ctx, dsn)
	require.NoError(t, err)
	defer db.Close()

	// 12000 sets would need 72000 bind parameters in a single INSERT.
	sets := make([]workout.Set, 12000)
	for i := range sets {
		sets[i] = workout.Set{WeightKg: 20, Reps: 5, Completed: true}
	}
	in := workout.Session{
		UserID:    "alice",
		Date:      workout.Day{Year: 2024, Month: time.January, Day: 20},
		CreatedAt: workout.ParseTimestamp("2024-01-20T07:15:00"),
		Exercises: []workout.Exercise{{ID: "squat", Name: "Squat", Sets: sets}},
	}
	in.TotalVolume = workout.Volume(in.Exercises)

	_, err = db.Upsert(ctx, in)
	require.NoError(t, err)

	got, err := db.GetByDay(ctx, "alice", in.Date)
	require.NoError(t, err)
	require.Len(t, got.Exercises, 1)
	require.Len(t, got.Exercises[0].Sets, 12000)
	require.True(t, got.CreatedAt.Floating)
	require.Equal(t, "2024-01-20T07:15:00", got.CreatedAt.String())
}
