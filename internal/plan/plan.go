// Package plan holds the AI-generated weekly workout template and the
// day-matching policy used to pick "today's workout" from it.
package plan

import (
	"strconv"
	"strings"
	"time"
)

// Exercise is one planned exercise within a workout day. Immutable once the
// plan is generated.
type Exercise struct {
	Name         string   `json:"name"`
	Sets         int      `json:"sets"`
	Reps         string   `json:"reps"` // may be a range like "8-12"
	Weight       string   `json:"weight,omitempty"`
	RestTime     string   `json:"rest_time"` // e.g. "90 seconds"
	MuscleGroups []string `json:"muscle_groups"`
	Notes        string   `json:"notes,omitempty"`
}

// DefaultRestSeconds is used when an exercise's rest time cannot be parsed.
const DefaultRestSeconds = 120

// RestSeconds parses the planned rest time. The generator emits strings like
// "90 seconds" or "2 minutes"; only the leading integer is trusted, with
// minutes scaled accordingly.
func (e Exercise) RestSeconds() int {
	fields := strings.Fields(e.RestTime)
	if len(fields) == 0 {
		return DefaultRestSeconds
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil || n <= 0 {
		return DefaultRestSeconds
	}
	if len(fields) > 1 && strings.HasPrefix(strings.ToLower(fields[1]), "min") {
		return n * 60
	}
	return n
}

// WorkoutDay is one labelled day of the plan with its ordered exercises.
type WorkoutDay struct {
	Day       string     `json:"day"`
	Name      string     `json:"name"`
	Duration  int        `json:"duration"` // minutes
	Exercises []Exercise `json:"exercises"`
}

// WorkoutPlan is the weekly template. Modification always produces a new
// plan object; nothing here is patched in place.
type WorkoutPlan struct {
	Name     string       `json:"name"`
	Duration string       `json:"duration"`
	Goals    []string     `json:"goals"`
	Notes    string       `json:"notes,omitempty"`
	Days     []WorkoutDay `json:"days"`
}

// abbreviations maps common short day labels to full weekday names. Consulted
// before the substring fallback so "tue"/"tues" resolve unambiguously.
var abbreviations = map[string]string{
	"mon":   "monday",
	"tue":   "tuesday",
	"tues":  "tuesday",
	"wed":   "wednesday",
	"thu":   "thursday",
	"thur":  "thursday",
	"thurs": "thursday",
	"fri":   "friday",
	"sat":   "saturday",
	"sun":   "sunday",
}

// normalizeDay lowercases, trims, and expands known abbreviations.
func normalizeDay(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if full, ok := abbreviations[s]; ok {
		return full
	}
	return s
}

// DayMatches reports whether a plan day label refers to the given weekday.
// Matching is deliberately fuzzy: exact match after normalization, then
// substring containment in either direction, so a plan day "Mon" matches
// "monday" and "Monday - Push Day" matches "monday".
func DayMatches(planDay, weekday string) bool {
	p := normalizeDay(planDay)
	w := normalizeDay(weekday)
	if p == "" || w == "" {
		return false
	}
	if p == w {
		return true
	}
	return strings.Contains(p, w) || strings.Contains(w, p)
}

// DayFor returns the plan entry for the given time's weekday, or nil when the
// plan has no entry for that day (a rest day).
func (p *WorkoutPlan) DayFor(t time.Time) *WorkoutDay {
	if p == nil {
		return nil
	}
	weekday := t.Weekday().String()
	for i := range p.Days {
		if DayMatches(p.Days[i].Day, weekday) {
			return &p.Days[i]
		}
	}
	return nil
}

// TotalExercises counts exercises across all days.
func (p *WorkoutPlan) TotalExercises() int {
	if p == nil {
		return 0
	}
	n := 0
	for _, d := range p.Days {
		n += len(d.Exercises)
	}
	return n
}
