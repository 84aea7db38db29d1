// Package stats computes display statistics from a user's completed-workout
// history. Compute is a pure function over the in-memory list; it never
// mutates its input and is deterministic for a fixed "now".
package stats

import (
	"sort"
	"time"

	"github.com/Rushil-19-blr/muscle-mind-motion-track-84/internal/models"
)

// maxTrendPoints bounds the per-exercise progression kept for sparklines.
const maxTrendPoints = 6

// StrengthRecord is the running personal record for one exercise name.
// Current only ever increases across the chronological history; Progression
// may contain local dips (a plateau below the PR still shows in the trend).
type StrengthRecord struct {
	Current     float64   `json:"current"`
	Progress    float64   `json:"progress"`
	Date        string    `json:"date"` // local YYYY-MM-DD of the current PR
	Progression []float64 `json:"progression"`
}

// Stats is the full aggregate over a workout history.
type Stats struct {
	TotalWorkouts     int                       `json:"total_workouts"`
	ThisMonthWorkouts int                       `json:"this_month_workouts"`
	CurrentStreak     int                       `json:"current_streak"`
	TotalVolume       float64                   `json:"total_volume"`
	StrengthProgress  map[string]StrengthRecord `json:"strength_progress"`
	MuscleGroupStats  map[string]int            `json:"muscle_group_stats"`
}

// Compute aggregates the full history. The now argument anchors the
// this-month count and the streak walk; callers pass time.Now().
func Compute(history []models.CompletedWorkout, now time.Time) Stats {
	s := Stats{
		TotalWorkouts:    len(history),
		StrengthProgress: map[string]StrengthRecord{},
		MuscleGroupStats: map[string]int{},
	}

	for _, w := range history {
		s.TotalVolume += w.TotalVolume
		if d, err := time.ParseInLocation(models.DateFormat, w.Date, now.Location()); err == nil {
			if d.Month() == now.Month() && d.Year() == now.Year() {
				s.ThisMonthWorkouts++
			}
		}
	}

	s.CurrentStreak = streak(history, now)
	s.StrengthProgress = strengthProgress(history)

	for _, w := range history {
		for _, ex := range w.Exercises {
			for _, group := range ex.MuscleGroups {
				// Weighted by sets performed, not exercise occurrences: four
				// sets of bench press count four towards chest.
				s.MuscleGroupStats[group] += len(ex.Sets)
			}
		}
	}

	return s
}

// streak counts consecutive calendar days with a workout, walking backward
// from today. Dates are compared as local YYYY-MM-DD strings.
func streak(history []models.CompletedWorkout, now time.Time) int {
	if len(history) == 0 {
		return 0
	}
	dates := make(map[string]bool, len(history))
	for _, w := range history {
		dates[w.Date] = true
	}

	count := 0
	day := now
	for dates[models.LocalDate(day)] {
		count++
		day = day.AddDate(0, 0, -1)
	}
	return count
}

// strengthProgress walks the history chronologically and tracks a running
// max weight per exercise name.
func strengthProgress(history []models.CompletedWorkout) map[string]StrengthRecord {
	sorted := make([]models.CompletedWorkout, len(history))
	copy(sorted, history)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Date != sorted[j].Date {
			return sorted[i].Date < sorted[j].Date
		}
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	records := map[string]StrengthRecord{}
	for _, w := range sorted {
		for _, ex := range w.Exercises {
			if len(ex.Sets) == 0 {
				continue
			}
			attempt := maxWeight(ex.Sets)

			rec, ok := records[ex.Name]
			if !ok {
				records[ex.Name] = StrengthRecord{
					Current:     attempt,
					Progress:    0,
					Date:        w.Date,
					Progression: []float64{attempt},
				}
				continue
			}

			// Consecutive equal attempts collapse to one trend point; dips
			// below the PR still get recorded.
			tail := rec.Progression[len(rec.Progression)-1]
			if attempt != tail {
				rec.Progression = keepLast(append(rec.Progression, attempt), maxTrendPoints)
			}
			if attempt > rec.Current {
				rec.Progress = attempt - rec.Current
				rec.Current = attempt
				rec.Date = w.Date
			}
			records[ex.Name] = rec
		}
	}
	return records
}

func maxWeight(sets []models.Set) float64 {
	max := sets[0].Weight
	for _, s := range sets[1:] {
		if s.Weight > max {
			max = s.Weight
		}
	}
	return max
}

// keepLast returns the trailing n elements of vals, reusing the backing
// array. The named helper keeps the sparkline truncation policy in one place.
func keepLast(vals []float64, n int) []float64 {
	if len(vals) <= n {
		return vals
	}
	return vals[len(vals)-n:]
}
