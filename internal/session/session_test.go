package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Rushil-19-blr/muscle-mind-motion-track-84/internal/models"
	"github.com/Rushil-19-blr/muscle-mind-motion-track-84/internal/plan"
)

// testClock is a manually advanced clock so rest backfill and durations are
// deterministic.
type testClock struct {
	now time.Time
}

func newTestClock() *testClock {
	// A Monday evening.
	return &testClock{now: time.Date(2026, 8, 24, 18, 0, 0, 0, time.Local)}
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// captureSaver records the workout handed to it and can be told to fail.
type captureSaver struct {
	saved *models.CompletedWorkout
	err   error
}

func (s *captureSaver) SaveCompletedWorkout(ctx context.Context, w models.CompletedWorkout) error {
	s.saved = &w
	return s.err
}

func testDayPlan() *plan.WorkoutPlan {
	return &plan.WorkoutPlan{
		Name: "Push/Pull",
		Days: []plan.WorkoutDay{
			{
				Day:  "Monday",
				Name: "Push Day",
				Exercises: []plan.Exercise{
					{Name: "Bench Press", Sets: 2, Reps: "8-10", Weight: "60 kg", RestTime: "60 seconds", MuscleGroups: []string{"chest"}},
					{Name: "Pull Ups", Sets: 1, Reps: "10", RestTime: "90 seconds", MuscleGroups: []string{"back"}},
				},
			},
		},
	}
}

func startSession(t *testing.T, clock *testClock, saver Saver) *Session {
	t.Helper()
	s, err := New(Config{
		UserID:       1,
		Plan:         testDayPlan(),
		Saver:        saver,
		Now:          clock.Now,
		TickInterval: time.Hour, // ticks never fire in tests; rest ends via SkipRest
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

// TestNewRestDay verifies no session starts when the plan has no entry for
// today, or no plan exists at all.
func TestNewRestDay(t *testing.T) {
	clock := newTestClock()
	clock.Advance(24 * time.Hour) // Tuesday: not in the plan

	_, err := New(Config{Plan: testDayPlan(), Now: clock.Now})
	if !errors.Is(err, ErrRestDay) {
		t.Errorf("New on a rest day = %v, want ErrRestDay", err)
	}

	_, err = New(Config{Plan: nil, Now: clock.Now})
	if !errors.Is(err, ErrNoPlan) {
		t.Errorf("New without a plan = %v, want ErrNoPlan", err)
	}
}

// TestRecordSetValidation verifies bad input is rejected with a field-level
// error and the session does not change state.
func TestRecordSetValidation(t *testing.T) {
	clock := newTestClock()
	s := startSession(t, clock, nil)

	cases := []struct {
		name   string
		reps   string
		weight string
		field  string
	}{
		{"missing reps", "", "60", "reps"},
		{"non-numeric reps", "eight", "60", "reps"},
		{"negative reps", "-3", "60", "reps"},
		{"missing weight with suggestion", "8", "", "weight"},
		{"non-numeric weight", "8", "heavy", "weight"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := s.RecordSet(tc.reps, tc.weight)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("RecordSet = %v, want ValidationError", err)
			}
			if verr.Field != tc.field {
				t.Errorf("field = %q, want %q", verr.Field, tc.field)
			}

			snap := s.Snapshot()
			if snap.State != "in_progress" {
				t.Errorf("state = %s after invalid input, want in_progress", snap.State)
			}
			if len(snap.CompletedSets) != 0 {
				t.Errorf("%d sets recorded after invalid input, want 0", len(snap.CompletedSets))
			}
		})
	}
}

// TestRecordSetStartsRest verifies a valid set transitions to resting with
// the exercise's planned rest time.
func TestRecordSetStartsRest(t *testing.T) {
	clock := newTestClock()
	s := startSession(t, clock, nil)

	if err := s.RecordSet("8", "60"); err != nil {
		t.Fatalf("RecordSet: %v", err)
	}

	snap := s.Snapshot()
	if snap.State != "resting" {
		t.Fatalf("state = %s, want resting", snap.State)
	}
	if snap.RestRemaining != 60 {
		t.Errorf("RestRemaining = %d, want 60 from the plan", snap.RestRemaining)
	}
	if len(snap.CompletedSets) != 1 || snap.CompletedSets[0].Reps != 8 || snap.CompletedSets[0].Weight != 60 {
		t.Errorf("CompletedSets = %+v, want one 8x60 set", snap.CompletedSets)
	}
	if snap.CompletedSets[0].RestTime != 0 {
		t.Errorf("RestTime = %d before rest ends, want 0", snap.CompletedSets[0].RestTime)
	}
}

// TestSkipRestBackfillsElapsed verifies skipping rest writes the actual
// elapsed rest into the just-recorded set.
func TestSkipRestBackfillsElapsed(t *testing.T) {
	clock := newTestClock()
	s := startSession(t, clock, nil)

	if err := s.RecordSet("8", "60"); err != nil {
		t.Fatalf("RecordSet: %v", err)
	}
	clock.Advance(45 * time.Second)
	if err := s.SkipRest(); err != nil {
		t.Fatalf("SkipRest: %v", err)
	}

	snap := s.Snapshot()
	if snap.State != "in_progress" {
		t.Errorf("state = %s, want in_progress", snap.State)
	}
	if got := snap.CompletedSets[0].RestTime; got != 45 {
		t.Errorf("backfilled RestTime = %d, want 45", got)
	}
	if snap.SetNumber != 2 {
		t.Errorf("SetNumber = %d, want 2", snap.SetNumber)
	}
}

// TestFinalSetAdvancesExerciseAfterRest verifies the provisional set counter:
// the last set still gets its rest, and the exercise advances when the rest
// ends.
func TestFinalSetAdvancesExerciseAfterRest(t *testing.T) {
	clock := newTestClock()
	s := startSession(t, clock, nil)

	mustRecord := func(reps, weight string) {
		t.Helper()
		if err := s.RecordSet(reps, weight); err != nil {
			t.Fatalf("RecordSet: %v", err)
		}
	}

	mustRecord("8", "60")
	clock.Advance(30 * time.Second)
	if err := s.SkipRest(); err != nil {
		t.Fatal(err)
	}

	mustRecord("6", "60") // final set of Bench Press
	snap := s.Snapshot()
	if snap.State != "resting" {
		t.Fatalf("state after final set = %s, want resting (rest still runs)", snap.State)
	}
	if snap.ExerciseIndex != 0 {
		t.Fatalf("exercise advanced before rest ended")
	}

	clock.Advance(20 * time.Second)
	if err := s.SkipRest(); err != nil {
		t.Fatal(err)
	}

	snap = s.Snapshot()
	if snap.ExerciseIndex != 1 || snap.Exercise.Name != "Pull Ups" {
		t.Errorf("exercise = %d %q, want 1 Pull Ups", snap.ExerciseIndex, snap.Exercise.Name)
	}
	if snap.SetNumber != 1 {
		t.Errorf("SetNumber = %d after advancing, want 1", snap.SetNumber)
	}
	if snap.WeightInput != "" {
		t.Errorf("WeightInput = %q, want empty (bodyweight exercise)", snap.WeightInput)
	}
}

// TestBodyweightSetNeedsNoWeight verifies exercises without a weight
// suggestion accept an empty weight and contribute zero volume.
func TestBodyweightSetNeedsNoWeight(t *testing.T) {
	clock := newTestClock()
	saver := &captureSaver{}
	s := startSession(t, clock, saver)

	if err := s.GoToExercise(1); err != nil { // jump to Pull Ups
		t.Fatal(err)
	}
	if err := s.RecordSet("10", ""); err != nil {
		t.Fatalf("RecordSet bodyweight: %v", err)
	}

	record, err := s.Finish(context.Background())
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if record.TotalVolume != 0 {
		t.Errorf("TotalVolume = %.0f, want 0 for bodyweight-only work", record.TotalVolume)
	}
}

// TestRestOpsOutsideRest verifies pause/resume/skip are rejected while not
// resting.
func TestRestOpsOutsideRest(t *testing.T) {
	clock := newTestClock()
	s := startSession(t, clock, nil)

	for name, op := range map[string]func() error{
		"SkipRest":   s.SkipRest,
		"PauseRest":  s.PauseRest,
		"ResumeRest": s.ResumeRest,
	} {
		if err := op(); !errors.Is(err, ErrNotResting) {
			t.Errorf("%s outside rest = %v, want ErrNotResting", name, err)
		}
	}
}

// TestManualRest verifies StartRest begins a countdown without a recorded
// set, and that no set gains a backfilled rest when none was recorded.
func TestManualRest(t *testing.T) {
	clock := newTestClock()
	s := startSession(t, clock, nil)

	if err := s.StartRest(); err != nil {
		t.Fatalf("StartRest: %v", err)
	}
	if snap := s.Snapshot(); snap.State != "resting" {
		t.Fatalf("state = %s, want resting", snap.State)
	}
	clock.Advance(10 * time.Second)
	if err := s.SkipRest(); err != nil {
		t.Fatal(err)
	}
	if snap := s.Snapshot(); len(snap.CompletedSets) != 0 {
		t.Errorf("manual rest created %d sets, want 0", len(snap.CompletedSets))
	}
}

// TestGoToExerciseBounds verifies navigation past either end is a no-op.
func TestGoToExerciseBounds(t *testing.T) {
	clock := newTestClock()
	s := startSession(t, clock, nil)

	if err := s.GoToExercise(-1); err != nil {
		t.Fatalf("GoToExercise(-1): %v", err)
	}
	if snap := s.Snapshot(); snap.ExerciseIndex != 0 {
		t.Errorf("index = %d after backward no-op, want 0", snap.ExerciseIndex)
	}

	if err := s.GoToExercise(5); err != nil {
		t.Fatalf("GoToExercise(5): %v", err)
	}
	if snap := s.Snapshot(); snap.ExerciseIndex != 0 {
		t.Errorf("index = %d after out-of-range move, want 0", snap.ExerciseIndex)
	}
}

// TestGoToExerciseCancelsRest verifies navigating during rest cancels the
// countdown and resets the set counter.
func TestGoToExerciseCancelsRest(t *testing.T) {
	clock := newTestClock()
	s := startSession(t, clock, nil)

	if err := s.RecordSet("8", "60"); err != nil {
		t.Fatal(err)
	}
	if err := s.GoToExercise(1); err != nil {
		t.Fatal(err)
	}

	snap := s.Snapshot()
	if snap.State != "in_progress" {
		t.Errorf("state = %s after nav, want in_progress", snap.State)
	}
	if snap.ExerciseIndex != 1 || snap.SetNumber != 1 {
		t.Errorf("position = exercise %d set %d, want exercise 1 set 1", snap.ExerciseIndex, snap.SetNumber)
	}
}

// TestFinishBuildsCompleteRecord verifies the snapshot: every planned
// exercise present (empty sets included), total volume summed, local date,
// duration from the wall clock.
func TestFinishBuildsCompleteRecord(t *testing.T) {
	clock := newTestClock()
	saver := &captureSaver{}
	s := startSession(t, clock, saver)

	if err := s.RecordSet("8", "60"); err != nil {
		t.Fatal(err)
	}
	clock.Advance(40 * time.Minute)

	record, err := s.Finish(context.Background())
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}

	if record.WorkoutName != "Push Day" {
		t.Errorf("WorkoutName = %q, want Push Day", record.WorkoutName)
	}
	if record.Date != "2026-08-24" {
		t.Errorf("Date = %q, want 2026-08-24", record.Date)
	}
	if record.Duration != 40 {
		t.Errorf("Duration = %d, want 40", record.Duration)
	}
	if record.TotalVolume != 480 {
		t.Errorf("TotalVolume = %.0f, want 480 (8 x 60)", record.TotalVolume)
	}
	if len(record.Exercises) != 2 {
		t.Fatalf("record has %d exercises, want all 2 planned", len(record.Exercises))
	}
	if record.Exercises[1].Name != "Pull Ups" || record.Exercises[1].Sets == nil || len(record.Exercises[1].Sets) != 0 {
		t.Errorf("unworked exercise = %+v, want present with empty (non-nil) sets", record.Exercises[1])
	}
	if saver.saved == nil || saver.saved.ID != record.ID {
		t.Error("record was not handed to the saver")
	}

	// Terminal state: everything else is rejected.
	if err := s.RecordSet("5", "50"); !errors.Is(err, ErrFinished) {
		t.Errorf("RecordSet after finish = %v, want ErrFinished", err)
	}
	if _, err := s.Finish(context.Background()); !errors.Is(err, ErrFinished) {
		t.Errorf("second Finish = %v, want ErrFinished", err)
	}
}

// TestFinishSurvivesSaveFailure verifies a persistence error still leaves the
// session finished and returns the built record.
func TestFinishSurvivesSaveFailure(t *testing.T) {
	clock := newTestClock()
	saver := &captureSaver{err: fmt.Errorf("database down")}
	s := startSession(t, clock, saver)

	if err := s.RecordSet("8", "60"); err != nil {
		t.Fatal(err)
	}
	record, err := s.Finish(context.Background())
	if err == nil {
		t.Fatal("Finish with failing saver returned nil error")
	}
	if record.TotalVolume != 480 {
		t.Errorf("record not built on save failure: %+v", record)
	}
	if snap := s.Snapshot(); snap.State != "finished" {
		t.Errorf("state = %s after failed save, want finished", snap.State)
	}
}

// TestFinishCancelsRest verifies finishing mid-rest tears the timer down.
func TestFinishCancelsRest(t *testing.T) {
	clock := newTestClock()
	s := startSession(t, clock, &captureSaver{})

	if err := s.RecordSet("8", "60"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Finish(context.Background()); err != nil {
		t.Fatalf("Finish during rest: %v", err)
	}
	if snap := s.Snapshot(); snap.TimerRunning {
		t.Error("timer still running after finish")
	}
}

// TestSnapshotDetachedFromBackfill verifies the snapshot carries its own copy
// of the recorded sets: the rest backfill that follows must not reach into a
// snapshot a caller may still be reading.
func TestSnapshotDetachedFromBackfill(t *testing.T) {
	clock := newTestClock()
	s := startSession(t, clock, nil)

	if err := s.RecordSet("8", "60"); err != nil {
		t.Fatal(err)
	}
	snap := s.Snapshot()

	clock.Advance(45 * time.Second)
	if err := s.SkipRest(); err != nil {
		t.Fatal(err)
	}

	if got := snap.CompletedSets[0].RestTime; got != 0 {
		t.Errorf("earlier snapshot RestTime = %d after backfill, want 0", got)
	}
	if got := s.Snapshot().CompletedSets[0].RestTime; got != 45 {
		t.Errorf("live RestTime = %d, want 45", got)
	}
}

// TestSnapshotEncodesDuringRestExpiry keeps encoding a snapshot while a live
// timer expires and backfills the last set on its own goroutine.
func TestSnapshotEncodesDuringRestExpiry(t *testing.T) {
	p := testDayPlan()
	p.Days[0].Exercises[0].RestTime = "1 seconds"

	clock := newTestClock()
	s, err := New(Config{
		UserID:       1,
		Plan:         p,
		Now:          clock.Now,
		TickInterval: time.Millisecond,
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := s.RecordSet("8", "60"); err != nil {
		t.Fatal(err)
	}
	snap := s.Snapshot()

	deadline := time.Now().Add(2 * time.Second)
	for s.Snapshot().State == "resting" {
		if _, err := json.Marshal(snap); err != nil {
			t.Fatal(err)
		}
		if time.Now().After(deadline) {
			t.Fatal("rest never expired")
		}
	}
	if _, err := json.Marshal(snap); err != nil {
		t.Fatal(err)
	}
}
