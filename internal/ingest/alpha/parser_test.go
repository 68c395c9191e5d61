package alpha

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/claude/liftlog/internal/workout"
)

const sampleCSV = `
"Legs · Day 2 · Week 4 · Push-Pull-Legs";"2026-02-19 4:54 h";"1:02 hr"
"1. Hack Squats · Machine · 8 reps";"WU1 · 37,5 kg · 9 reps<br>WU2 · 72,5 kg · 7 reps"
#;KG;REPS;RIR
1;115;8;1
2;115;10;1
3;115;10;1
"2. Sumo Squats · Smith machine · 10 reps";"WU1 · 35 kg · 8 reps"
#;KG;REPS;RIR
1;70;8;1
2;70;12;1
"3. Hyperextensions on Roman Chair · Bodyweight · 10 reps";"WU1 · +0 kg · 8 reps"
#;KG;REPS;RIR
1;+35;10;0
2;+35;9;1
3;+35;10;0
"4. Reverse Lunges · Dumbbells · 10 reps"
#;KG;REPS;RIR
1;10;10;1
2;10;10;1
3;10;10;0
"5. Standing Calf Raises · Machine · 12 reps";"WU1 · 47,5 kg · 8 reps"
#;KG;REPS;RIR
1;157,5;11;1
2;157,5;11;0
3;157,5;10;0
"6. Hanging Leg Raises · Bodyweight · 12 reps · 2 dropsets"
#;KG;REPS;RIR
1;+0;12;1
2;+0;12;1
3;+0;12;0

"Push · Day 1 · Week 4 · Push-Pull-Legs";"2026-02-17 5:04 h";"1:12 hr"
"1. Bench Press · Barbell · 6 reps";"WU1 · 22,5 kg · 10 reps<br>WU2 · 47,5 kg · 8 reps<br>WU3 · 77,5 kg · 6 reps"
#;KG;REPS;RIR
1;102,5;6;0
2;102,5;6;0
3;100;6;0
`

// TestParseCompleteSessions verifies a multi-session export becomes sealed-looking sessions.
func TestParseCompleteSessions(t *testing.T) {
	sessions, err := Parse(strings.NewReader(sampleCSV), time.UTC)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("sessions = %d, want 2", len(sessions))
	}

	s1 := sessions[0]
	if want := (workout.Day{Year: 2026, Month: time.February, Day: 19}); s1.Date != want {
		t.Errorf("s1.Date = %s, want %s", s1.Date, want)
	}
	if got := s1.CreatedAt.Time; !got.Equal(time.Date(2026, 2, 19, 4, 54, 0, 0, time.UTC)) {
		t.Errorf("s1.CreatedAt = %v", got)
	}
	if s1.TotalTimeSec != 3720 {
		t.Errorf("s1.TotalTimeSec = %d, want 3720", s1.TotalTimeSec)
	}
	if len(s1.Exercises) != 6 {
		t.Fatalf("s1 exercises = %d, want 6", len(s1.Exercises))
	}
	if math.Abs(s1.TotalVolume-10975) > 1e-9 {
		t.Errorf("s1.TotalVolume = %f, want 10975", s1.TotalVolume)
	}

	s2 := sessions[1]
	if s2.TotalTimeSec != 4320 {
		t.Errorf("s2.TotalTimeSec = %d, want 4320", s2.TotalTimeSec)
	}
	if s2.TotalVolume != 1830 {
		t.Errorf("s2.TotalVolume = %f, want 1830", s2.TotalVolume)
	}
}

// TestExerciseHeaders covers names, equipment and modifiers in exercise headers.
func TestExerciseHeaders(t *testing.T) {
	sessions, err := Parse(strings.NewReader(sampleCSV), nil)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	tests := []struct {
		idx  int
		name string
		id   workout.ExerciseID
		sets int
	}{
		{0, "Hack Squats", "hack-squats-machine", 5},
		{1, "Sumo Squats", "sumo-squats-smith-machine", 3},
		{2, "Hyperextensions on Roman Chair", "hyperextensions-on-roman-chair-bodyweight", 4},
		{3, "Reverse Lunges", "reverse-lunges-dumbbells", 3},
		{4, "Standing Calf Raises", "standing-calf-raises-machine", 4},
		{5, "Hanging Leg Raises", "hanging-leg-raises-bodyweight", 3},
	}
	for _, tt := range tests {
		ex := sessions[0].Exercises[tt.idx]
		if ex.Name != tt.name {
			t.Errorf("exercise %d name = %q, want %q", tt.idx, ex.Name, tt.name)
		}
		if ex.ID != tt.id {
			t.Errorf("exercise %d id = %q, want %q", tt.idx, ex.ID, tt.id)
		}
		if len(ex.Sets) != tt.sets {
			t.Errorf("exercise %d sets = %d, want %d", tt.idx, len(ex.Sets), tt.sets)
		}
	}
}

// TestWarmupsNotCompleted verifies warmups precede working sets and carry no volume.
func TestWarmupsNotCompleted(t *testing.T) {
	sessions, err := Parse(strings.NewReader(sampleCSV), nil)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	sets := sessions[0].Exercises[0].Sets
	for i, s := range sets {
		wantCompleted := i >= 2
		if s.Completed != wantCompleted {
			t.Errorf("set %d completed = %v, want %v", i, s.Completed, wantCompleted)
		}
	}
	if sets[0].WeightKg != 37.5 || sets[0].Reps != 9 {
		t.Errorf("wu1 = %+v", sets[0])
	}
}

// TestStartInLocation verifies start times are read in the configured zone.
func TestStartInLocation(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*3600)
	sessions, err := Parse(strings.NewReader(sampleCSV), loc)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if got := sessions[0].CreatedAt.Time.UTC(); !got.Equal(time.Date(2026, 2, 18, 18, 54, 0, 0, time.UTC)) {
		t.Errorf("CreatedAt UTC = %v", got)
	}
	if sessions[0].Date.Day != 19 {
		t.Errorf("Date = %s, want local day 19", sessions[0].Date)
	}
}

// TestEuropeanDecimal verifies comma decimals ("102,5" = 102.5 kg).
func TestEuropeanDecimal(t *testing.T) {
	if got, err := parseWeight("102,5"); err != nil || got != 102.5 {
		t.Errorf("parseWeight(102,5) = %f, %v, want 102.5", got, err)
	}
}

// TestBodyweightPlus verifies "+35" records only the added load.
func TestBodyweightPlus(t *testing.T) {
	if got, err := parseWeight("+35"); err != nil || got != 35 {
		t.Errorf("parseWeight(+35) = %f, %v, want 35", got, err)
	}
	if got, err := parseWeight("+0"); err != nil || got != 0 {
		t.Errorf("parseWeight(+0) = %f, %v, want 0", got, err)
	}
}

// TestRejectsNonFiniteWeight verifies weights that would poison volume totals are refused.
func TestRejectsNonFiniteWeight(t *testing.T) {
	for _, in := range []string{"NaN", "nan", "Inf", "+Inf", "-5", "heavy"} {
		if got, err := parseWeight(in); err == nil {
			t.Errorf("parseWeight(%q) = %f, want error", in, got)
		}
	}

	export := "\"Push\";\"2026-02-17 5:04 h\";\"1:12 hr\"\n" +
		"\"1. Bench Press · Barbell · 6 reps\"\n" +
		"#;KG;REPS;RIR\n" +
		"1;NaN;5;1\n"
	if _, err := Parse(strings.NewReader(export), nil); err == nil {
		t.Error("expected error for NaN set weight")
	}

	warmup := "\"Push\";\"2026-02-17 5:04 h\";\"1:12 hr\"\n" +
		"\"1. Bench Press · Barbell · 6 reps\";\"WU1 · Inf kg · 9 reps\"\n"
	if _, err := Parse(strings.NewReader(warmup), nil); err == nil {
		t.Error("expected error for infinite warmup weight")
	}
}

// TestParseDuration covers the duration forms seen in exports.
func TestParseDuration(t *testing.T) {
	tests := map[string]time.Duration{
		"1:02 hr": 62 * time.Minute,
		"0:45 h":  45 * time.Minute,
		"45 min":  45 * time.Minute,
		"soon":    0,
	}
	for in, want := range tests {
		if got := parseDuration(in); got != want {
			t.Errorf("parseDuration(%q) = %v, want %v", in, got, want)
		}
	}
}

// TestWarmupParsing verifies <br>-separated warmups in the header's second field.
func TestWarmupParsing(t *testing.T) {
	sets, err := parseWarmups("WU1 · 37,5 kg · 9 reps<br>WU2 · 72,5 kg · 7 reps")
	if err != nil {
		t.Fatalf("parseWarmups: %v", err)
	}
	if len(sets) != 2 {
		t.Fatalf("warmup sets = %d, want 2", len(sets))
	}
	if sets[1].WeightKg != 72.5 || sets[1].Reps != 7 {
		t.Errorf("wu2 = %+v", sets[1])
	}
	if sets[0].Completed || sets[1].Completed {
		t.Error("warmups should not be completed")
	}
}

// TestEmptyInput verifies that empty input returns no sessions without error.
func TestEmptyInput(t *testing.T) {
	sessions, err := Parse(strings.NewReader(""), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sessions) != 0 {
		t.Errorf("sessions = %d, want 0", len(sessions))
	}
}

// TestOrphanRows verifies structural errors are reported.
func TestOrphanRows(t *testing.T) {
	if _, err := Parse(strings.NewReader(`"1. Bench Press · Barbell · 6 reps"`), nil); err == nil {
		t.Error("expected error for exercise without session")
	}
	orphanSet := "\"Push\";\"2026-02-17 5:04 h\";\"1:12 hr\"\n1;100;5;1\n"
	if _, err := Parse(strings.NewReader(orphanSet), nil); err == nil {
		t.Error("expected error for set without exercise")
	}
}

// TestBadStartTime verifies an unparseable session start fails the parse.
func TestBadStartTime(t *testing.T) {
	_, err := Parse(strings.NewReader(`"Push";"2026-13-45 5:04 h";"1:12 hr"`), nil)
	if err == nil {
		t.Error("expected error for invalid date")
	}
}
