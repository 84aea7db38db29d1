package models

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DateFormat is the canonical layout for workout dates. Dates are formatted
// in local time everywhere (completion checks, streaks, today lookups) so a
// workout logged at 23:30 never lands on the wrong day.
const DateFormat = "2006-01-02"

// LocalDate formats t as a local-time calendar date.
func LocalDate(t time.Time) string {
	return t.Format(DateFormat)
}

// Set is one performed unit of an exercise. RestTime is the rest actually
// taken after this set, in seconds; it is written as 0 when the set is
// recorded and backfilled when the following rest period ends.
type Set struct {
	Reps     int     `json:"reps"`
	Weight   float64 `json:"weight"`
	RestTime int     `json:"rest_time"`
}

// Volume returns reps x weight for this set. Bodyweight sets (weight 0)
// contribute 0.
func (s Set) Volume() float64 {
	return float64(s.Reps) * s.Weight
}

// CompletedExercise is the recorded outcome of one planned exercise.
// Exercises the user skipped entirely are kept with an empty set list.
type CompletedExercise struct {
	Name         string   `json:"name"`
	MuscleGroups []string `json:"muscle_groups"`
	Sets         []Set    `json:"sets"`
}

// CompletedWorkout is the immutable record produced when a session finishes.
type CompletedWorkout struct {
	ID             uuid.UUID           `json:"id"`
	UserID         int                 `json:"user_id"`
	WorkoutName    string              `json:"workout_name"`
	Date           string              `json:"date"` // local YYYY-MM-DD
	Duration       int                 `json:"duration"` // minutes
	Exercises      []CompletedExercise `json:"exercises"`
	TotalVolume    float64             `json:"total_volume"`
	CaloriesBurned int                 `json:"calories_burned,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
}

// UserProfile holds the onboarding data the plan generator and calorie
// estimator consume. Numeric fields stay strings because they arrive as
// free-form form input and are passed through to the generator verbatim.
type UserProfile struct {
	Name               string   `json:"name"`
	Age                string   `json:"age"`
	Height             string   `json:"height"`
	Weight             string   `json:"weight"`
	Gender             string   `json:"gender"`
	BodyFat            string   `json:"body_fat,omitempty"`
	MuscleMass         string   `json:"muscle_mass,omitempty"`
	DietStyle          string   `json:"diet_style,omitempty"`
	DailyCalories      string   `json:"daily_calories,omitempty"`
	ProteinIntake      string   `json:"protein_intake,omitempty"`
	CurrentProgram     string   `json:"current_program,omitempty"`
	BenchPress         string   `json:"bench_press,omitempty"`
	Squat              string   `json:"squat,omitempty"`
	Deadlift           string   `json:"deadlift,omitempty"`
	OverheadPress      string   `json:"overhead_press,omitempty"`
	PullUps            string   `json:"pull_ups,omitempty"`
	Rows               string   `json:"rows,omitempty"`
	PrimaryGoal        string   `json:"primary_goal"`
	SecondaryGoal      string   `json:"secondary_goal,omitempty"`
	WeeklyAvailability string   `json:"weekly_availability,omitempty"`
	PreferredDays      []string `json:"preferred_days,omitempty"`
}

// WeightKg parses the profile weight, defaulting to 70 when absent or
// unparseable. Used by the calorie fallback formula.
func (p UserProfile) WeightKg() float64 {
	w := parseLeadingFloat(p.Weight)
	if w <= 0 {
		return 70
	}
	return w
}

// parseLeadingFloat reads the leading numeric portion of a free-form string
// like "82.5 kg" or "70kg".
func parseLeadingFloat(s string) float64 {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && (s[end] == '.' || (s[end] >= '0' && s[end] <= '9')) {
		end++
	}
	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0
	}
	return v
}
