package storage_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/claude/liftlog/internal/storage"
	"github.com/claude/liftlog/internal/storage/storagemock"
	"github.com/claude/liftlog/internal/storage/storagetest"
	"github.com/claude/liftlog/internal/workout"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCachedListHitsBackendOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	next := storagemock.NewMockStore(ctrl)
	sessions := []workout.Session{storagetest.Session("alice", 2024, time.January, 15, 500)}

	next.EXPECT().List(gomock.Any(), workout.UserID("alice")).Return(sessions, nil).Times(1)

	c := storage.NewCached(next, 1, discard())
	for i := 0; i < 3; i++ {
		got, err := c.List(context.Background(), "alice")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, 500.0, got[0].TotalVolume)
	}
	hits, misses := c.Stats()
	assert.Equal(t, int64(2), hits)
	assert.Equal(t, int64(1), misses)
}

func TestCachedUpsertInvalidatesWriter(t *testing.T) {
	ctrl := gomock.NewController(t)
	next := storagemock.NewMockStore(ctrl)
	jan15 := storagetest.Session("alice", 2024, time.January, 15, 500)
	jan20 := storagetest.Session("alice", 2024, time.January, 20, 300)

	gomock.InOrder(
		next.EXPECT().List(gomock.Any(), workout.UserID("alice")).Return([]workout.Session{jan15}, nil),
		next.EXPECT().Upsert(gomock.Any(), jan20).Return(jan20, nil),
		next.EXPECT().List(gomock.Any(), workout.UserID("alice")).Return([]workout.Session{jan15, jan20}, nil),
	)

	c := storage.NewCached(next, 1, discard())
	ctx := context.Background()

	got, err := c.List(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = c.Upsert(ctx, jan20)
	require.NoError(t, err)

	got, err = c.List(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestCachedDoesNotCacheErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	next := storagemock.NewMockStore(ctrl)
	boom := errors.New("backend down")

	gomock.InOrder(
		next.EXPECT().List(gomock.Any(), workout.UserID("alice")).Return(nil, boom),
		next.EXPECT().List(gomock.Any(), workout.UserID("alice")).Return([]workout.Session{}, nil),
	)

	c := storage.NewCached(next, 1, discard())
	_, err := c.List(context.Background(), "alice")
	assert.ErrorIs(t, err, boom)
	got, err := c.List(context.Background(), "alice")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCachedPassesThroughGetByDay(t *testing.T) {
	ctrl := gomock.NewController(t)
	next := storagemock.NewMockStore(ctrl)
	day := workout.Day{Year: 2024, Month: time.January, Day: 16}
	next.EXPECT().GetByDay(gomock.Any(), workout.UserID("alice"), day).Return(workout.Session{}, storage.ErrNotFound)
	next.EXPECT().Close().Return(nil)

	c := storage.NewCached(next, 1, discard())
	_, err := c.GetByDay(context.Background(), "alice", day)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.NoError(t, c.Close())
}

func TestPrepare(t *testing.T) {
	s, err := storage.Prepare(workout.Session{UserID: "alice", Date: workout.Day{Year: 2024, Month: 1, Day: 1}})
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID)

	kept, err := storage.Prepare(s)
	require.NoError(t, err)
	assert.Equal(t, s.ID, kept.ID)

	_, err = storage.Prepare(workout.Session{UserID: "alice"})
	assert.ErrorIs(t, err, storage.ErrInvalidSession)
}
