package workout

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetMissingCompletedCountsAsCompleted(t *testing.T) {
	var sets []Set
	require.NoError(t, json.Unmarshal([]byte(`[{"weight":50,"reps":10},{"weight":20,"reps":5,"completed":false}]`), &sets))

	require.Len(t, sets, 2)
	assert.True(t, sets[0].Completed)
	assert.False(t, sets[1].Completed)
	assert.Equal(t, 500.0, sets[0].Volume()+sets[1].Volume())
}

func TestExerciseIDAcceptsNumbers(t *testing.T) {
	var ex []Exercise
	require.NoError(t, json.Unmarshal([]byte(`[{"id":3,"name":"Squat","sets":[]},{"id":"bench-press","name":"Bench"}]`), &ex))

	assert.Equal(t, ExerciseID("3"), ex[0].ID)
	assert.Equal(t, ExerciseID("bench-press"), ex[1].ID)
}

func TestVolume(t *testing.T) {
	exercises := []Exercise{
		{Name: "Squat", Sets: []Set{
			{WeightKg: 50, Reps: 10, Completed: true},
			{WeightKg: 20, Reps: 5, Completed: false},
		}},
		{Name: "Curl", Sets: []Set{{WeightKg: 10, Reps: 12, Completed: true}}},
	}
	assert.Equal(t, 620.0, Volume(exercises))
	assert.Zero(t, Volume(nil))
	assert.Zero(t, Volume([]Exercise{{Name: "Plank"}}))
}

func TestSessionKey(t *testing.T) {
	s := Session{UserID: "alice", Date: Day{Year: 2024, Month: time.March, Day: 9}}
	assert.Equal(t, "alice_2024-03-09", s.Key())
	assert.Equal(t, s.Key(), DayKey("alice", s.Date))
}

func TestSessionJSONRoundTripKeepsMalformedTimestamp(t *testing.T) {
	in := Session{
		UserID:    "alice",
		Date:      Day{Year: 2024, Month: 1, Day: 15},
		CreatedAt: Timestamp{Raw: "last tuesday"},
	}
	b, err := json.Marshal(in)
	require.NoError(t, err)

	var out Session
	require.NoError(t, json.Unmarshal(b, &out))
	assert.False(t, out.CreatedAt.Valid())
	assert.Equal(t, "last tuesday", out.CreatedAt.Raw)
	assert.Equal(t, in.Date, out.Date)
}
