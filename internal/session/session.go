// Package session drives a single workout from first set to completion:
// exercise, set, rest, next set or exercise, finish. It is independent of any
// transport; the HTTP layer and tests operate it through the same methods.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Rushil-19-blr/muscle-mind-motion-track-84/internal/models"
	"github.com/Rushil-19-blr/muscle-mind-motion-track-84/internal/plan"
	"github.com/google/uuid"
)

// State is the session's lifecycle phase.
type State int

const (
	// StateInProgress means an exercise/set is active and awaiting input.
	StateInProgress State = iota
	// StateResting means the rest countdown is live between sets/exercises.
	StateResting
	// StateFinished is terminal; the completed record has been built.
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateInProgress:
		return "in_progress"
	case StateResting:
		return "resting"
	case StateFinished:
		return "finished"
	}
	return "unknown"
}

var (
	// ErrRestDay means the plan has no entry for today; no session is runnable.
	ErrRestDay = errors.New("no workout planned for today")
	// ErrNoPlan means the user has no workout plan at all.
	ErrNoPlan = errors.New("no workout plan")
	// ErrNotResting is returned by rest operations outside StateResting.
	ErrNotResting = errors.New("no rest period is active")
	// ErrFinished is returned by operations on a finished session.
	ErrFinished = errors.New("session already finished")
)

// ValidationError flags missing or malformed set input. It blocks the
// offending transition only and never changes session state.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Msg)
}

// Saver persists the completed-workout snapshot on finish.
type Saver interface {
	SaveCompletedWorkout(ctx context.Context, w models.CompletedWorkout) error
}

// CalorieEstimator produces the optional calories-burned figure. A nil
// estimator or an estimator error leaves the field at zero; it is never
// required for the session to finish.
type CalorieEstimator interface {
	EstimateCalories(ctx context.Context, w models.CompletedWorkout, profile models.UserProfile) (int, error)
}

// Config wires a new session.
type Config struct {
	UserID   int
	Plan     *plan.WorkoutPlan
	Saver    Saver
	Calories CalorieEstimator
	Profile  models.UserProfile
	Log      *slog.Logger

	// Now and TickInterval exist for tests; zero values mean time.Now and
	// one second.
	Now          func() time.Time
	TickInterval time.Duration
}

// Session is the workout state machine. All exported methods are safe for
// concurrent use; the rest-timer goroutine re-enters through the same lock.
type Session struct {
	mu       sync.Mutex
	log      *slog.Logger
	saver    Saver
	calories CalorieEstimator
	profile  models.UserProfile
	now      func() time.Time
	tick     time.Duration

	userID    int
	day       plan.WorkoutDay
	startTime time.Time

	state       State
	exerciseIdx int
	// setNumber is 1-based and may be provisionally advanced one past the
	// exercise's target while the final rest runs; the rest-end transition
	// then moves to the next exercise.
	setNumber int
	completed [][]models.Set

	restStart   time.Time
	timer       *RestTimer
	weightInput string
}

// New starts a session for today's planned workout. Returns ErrNoPlan when
// the plan is missing and ErrRestDay when no plan day matches today.
func New(cfg Config) (*Session, error) {
	if cfg.Plan == nil {
		return nil, ErrNoPlan
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.TickInterval == 0 {
		cfg.TickInterval = time.Second
	}
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}

	day := cfg.Plan.DayFor(cfg.Now())
	if day == nil || len(day.Exercises) == 0 {
		return nil, ErrRestDay
	}

	s := &Session{
		log:       cfg.Log,
		saver:     cfg.Saver,
		calories:  cfg.Calories,
		profile:   cfg.Profile,
		now:       cfg.Now,
		tick:      cfg.TickInterval,
		userID:    cfg.UserID,
		day:       *day,
		startTime: cfg.Now(),
		state:     StateInProgress,
		setNumber: 1,
		completed: make([][]models.Set, len(day.Exercises)),
	}
	s.weightInput = day.Exercises[0].Weight
	return s, nil
}

// RecordSet validates and appends one completed set for the current
// exercise, then transitions to resting or, after the final set of the final
// exercise, waits in StateInProgress for an explicit Finish.
func (s *Session) RecordSet(reps, weight string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateFinished {
		return ErrFinished
	}

	ex := s.day.Exercises[s.exerciseIdx]

	reps = strings.TrimSpace(reps)
	weight = strings.TrimSpace(weight)
	if reps == "" {
		return &ValidationError{Field: "reps", Msg: "enter the reps you completed"}
	}
	repCount, err := strconv.Atoi(reps)
	if err != nil || repCount < 0 {
		return &ValidationError{Field: "reps", Msg: "must be a non-negative number"}
	}
	if ex.Weight != "" && weight == "" {
		return &ValidationError{Field: "weight", Msg: "enter the weight you used"}
	}
	var weightKg float64
	if weight != "" {
		weightKg, err = strconv.ParseFloat(weight, 64)
		if err != nil || weightKg < 0 {
			return &ValidationError{Field: "weight", Msg: "must be a non-negative number"}
		}
	}

	// Rest time starts at 0 and is backfilled when the following rest
	// period ends.
	s.completed[s.exerciseIdx] = append(s.completed[s.exerciseIdx], models.Set{
		Reps:   repCount,
		Weight: weightKg,
	})

	lastSet := s.setNumber >= ex.Sets
	lastExercise := s.exerciseIdx == len(s.day.Exercises)-1

	switch {
	case !lastSet:
		s.setNumber++
		s.startRestLocked(ex)
	case !lastExercise:
		// Provisionally step past the target; rest-end advances the exercise.
		s.setNumber++
		s.startRestLocked(ex)
	default:
		// All sets done. Stay in progress until the user finishes explicitly.
		s.weightInput = ""
	}
	return nil
}

// startRestLocked begins the rest countdown using the planned rest time of
// the exercise just worked. Caller holds s.mu.
func (s *Session) startRestLocked(ex plan.Exercise) {
	if s.timer != nil {
		s.timer.Cancel()
	}
	s.restStart = s.now()
	s.state = StateResting
	s.timer = StartRestTimer(ex.RestSeconds(), s.tick, s.onRestExpired)
}

func (s *Session) onRestExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateResting {
		return
	}
	s.endRestLocked()
}

// endRestLocked backfills the actual rest taken into the most recently
// recorded set (the one retroactive Set mutation the model allows) and
// returns to StateInProgress, advancing to the next exercise when the set
// counter has passed its target.
func (s *Session) endRestLocked() {
	elapsed := int(s.now().Sub(s.restStart).Seconds())
	if elapsed < 0 {
		elapsed = 0
	}
	if sets := s.completed[s.exerciseIdx]; len(sets) > 0 {
		sets[len(sets)-1].RestTime = elapsed
	}

	s.timer = nil
	s.state = StateInProgress

	if s.setNumber > s.day.Exercises[s.exerciseIdx].Sets {
		s.advanceLocked(1)
	}
}

// SkipRest ends the rest period early. Valid only while resting.
func (s *Session) SkipRest() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateResting {
		return ErrNotResting
	}
	s.timer.Cancel()
	s.endRestLocked()
	return nil
}

// PauseRest stops the countdown without resetting it.
func (s *Session) PauseRest() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateResting {
		return ErrNotResting
	}
	s.timer.Pause()
	return nil
}

// ResumeRest continues a paused countdown.
func (s *Session) ResumeRest() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateResting {
		return ErrNotResting
	}
	s.timer.Resume()
	return nil
}

// StartRest begins a rest period manually, without recording a set.
func (s *Session) StartRest() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateFinished {
		return ErrFinished
	}
	if s.state == StateResting {
		return nil
	}
	s.startRestLocked(s.day.Exercises[s.exerciseIdx])
	return nil
}

// GoToExercise moves delta exercises forward or backward. Completed-set
// history is untouched; the set counter resets and the weight input is
// prefilled with the target exercise's suggestion. A move past either end is
// a no-op.
func (s *Session) GoToExercise(delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateFinished {
		return ErrFinished
	}
	target := s.exerciseIdx + delta
	if target < 0 || target >= len(s.day.Exercises) {
		return nil
	}
	if s.timer != nil {
		s.timer.Cancel()
		s.timer = nil
	}
	s.state = StateInProgress
	s.advanceLocked(delta)
	return nil
}

// advanceLocked moves the exercise cursor. Caller holds s.mu and has
// verified bounds (rest-end advancement is always in bounds because the
// provisional counter only passes the target when exercises remain).
func (s *Session) advanceLocked(delta int) {
	s.exerciseIdx += delta
	s.setNumber = 1
	s.weightInput = s.day.Exercises[s.exerciseIdx].Weight
}

// ElapsedMinutes is the wall-clock session length so far.
func (s *Session) ElapsedMinutes() int {
	return int(s.now().Sub(s.startTime).Minutes())
}

// Finish terminates the session and persists the completed-workout snapshot.
// Every planned exercise appears in the record, with an empty set list when
// nothing was logged for it. The session always reaches StateFinished; a
// persistence failure is returned for the caller to surface, never to block
// completion.
func (s *Session) Finish(ctx context.Context) (models.CompletedWorkout, error) {
	s.mu.Lock()
	if s.state == StateFinished {
		s.mu.Unlock()
		return models.CompletedWorkout{}, ErrFinished
	}
	if s.timer != nil {
		s.timer.Cancel()
		s.timer = nil
	}
	s.state = StateFinished

	exercises := make([]models.CompletedExercise, len(s.day.Exercises))
	totalVolume := 0.0
	for i, ex := range s.day.Exercises {
		sets := s.completed[i]
		if sets == nil {
			sets = []models.Set{}
		}
		for _, set := range sets {
			totalVolume += set.Volume()
		}
		exercises[i] = models.CompletedExercise{
			Name:         ex.Name,
			MuscleGroups: ex.MuscleGroups,
			Sets:         sets,
		}
	}

	name := s.day.Name
	if name == "" {
		name = "Today's Workout"
	}
	record := models.CompletedWorkout{
		ID:          uuid.New(),
		UserID:      s.userID,
		WorkoutName: name,
		Date:        models.LocalDate(s.now()),
		Duration:    s.ElapsedMinutes(),
		Exercises:   exercises,
		TotalVolume: totalVolume,
		CreatedAt:   s.now(),
	}
	s.mu.Unlock()

	if s.calories != nil {
		if kcal, err := s.calories.EstimateCalories(ctx, record, s.profile); err == nil {
			record.CaloriesBurned = kcal
		} else {
			s.log.Warn("calorie estimate failed", "error", err)
		}
	}

	if s.saver != nil {
		if err := s.saver.SaveCompletedWorkout(ctx, record); err != nil {
			s.log.Error("saving completed workout", "error", err)
			return record, fmt.Errorf("saving completed workout: %w", err)
		}
	}
	return record, nil
}

// Abandon discards the session without persisting anything. Nothing was
// written before the terminal transition, so this is a plain drop, not a
// rollback.
func (s *Session) Abandon() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Cancel()
		s.timer = nil
	}
	s.state = StateFinished
}

// Snapshot is the JSON view of the live session.
type Snapshot struct {
	State           string              `json:"state"`
	WorkoutName     string              `json:"workout_name"`
	ExerciseIndex   int                 `json:"exercise_index"`
	TotalExercises  int                 `json:"total_exercises"`
	Exercise        plan.Exercise       `json:"exercise"`
	SetNumber       int                 `json:"set_number"`
	CompletedSets   []models.Set        `json:"completed_sets"`
	WeightInput     string              `json:"weight_input,omitempty"`
	RestRemaining   int                 `json:"rest_remaining"`
	TimerRunning    bool                `json:"timer_running"`
	ElapsedMinutes  int                 `json:"elapsed_minutes"`
	ProgressPercent float64             `json:"progress_percent"`
}

// Snapshot returns the current session view.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	ex := s.day.Exercises[s.exerciseIdx]
	setNum := s.setNumber
	if setNum > ex.Sets {
		setNum = ex.Sets
	}
	// Copy the sets: the rest-expiry backfill mutates the live slice after
	// the lock is released, and the caller encodes the snapshot unlocked.
	sets := make([]models.Set, len(s.completed[s.exerciseIdx]))
	copy(sets, s.completed[s.exerciseIdx])

	snap := Snapshot{
		State:          s.state.String(),
		WorkoutName:    s.day.Name,
		ExerciseIndex:  s.exerciseIdx,
		TotalExercises: len(s.day.Exercises),
		Exercise:       ex,
		SetNumber:      setNum,
		CompletedSets:  sets,
		WeightInput:    s.weightInput,
		ElapsedMinutes: s.ElapsedMinutes(),
	}
	if s.timer != nil {
		snap.RestRemaining = s.timer.Remaining()
		snap.TimerRunning = s.timer.Running()
	}
	total := len(s.day.Exercises)
	if total > 0 && ex.Sets > 0 {
		snap.ProgressPercent = (float64(s.exerciseIdx) + float64(setNum)/float64(ex.Sets)) / float64(total) * 100
	}
	return snap
}
