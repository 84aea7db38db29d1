// Package importer loads workout history exported from the hosted app (a
// JSON array in its camelCase wire format) into the local database.
package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/Rushil-19-blr/muscle-mind-motion-track-84/internal/models"
	"github.com/Rushil-19-blr/muscle-mind-motion-track-84/internal/storage"
	"github.com/google/uuid"
)

// Stats tracks import progress.
type Stats struct {
	WorkoutsInserted   int
	WorkoutsDuplicated int
	WorkoutsSkipped    int
}

// Importer reads an exported history file and inserts workouts into the DB.
type Importer struct {
	db     *storage.DB
	log    *slog.Logger
	userID int
	dryRun bool
	stats  Stats
}

// New creates a new Importer writing history for the given user.
func New(db *storage.DB, userID int, log *slog.Logger, dryRun bool) *Importer {
	return &Importer{db: db, log: log, userID: userID, dryRun: dryRun}
}

// exportedWorkout is the hosted app's completed-workout shape. Field names
// are camelCase there, so it cannot unmarshal directly into models.
type exportedWorkout struct {
	ID          string `json:"id"`
	WorkoutName string `json:"workoutName"`
	Date        string `json:"date"`
	Duration    int    `json:"duration"`
	Exercises   []struct {
		Name string `json:"name"`
		Sets []struct {
			Reps     int     `json:"reps"`
			Weight   float64 `json:"weight"`
			RestTime int     `json:"restTime"`
		} `json:"sets"`
		MuscleGroups []string `json:"muscleGroups"`
	} `json:"exercises"`
	TotalVolume    float64   `json:"totalVolume"`
	CaloriesBurned int       `json:"caloriesBurned"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Import reads the export file and inserts every well-formed workout,
// oldest first. Records the store rejects as same-day duplicates are counted,
// not errors; the import is re-runnable.
func (imp *Importer) Import(ctx context.Context, path string) (*Stats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return &imp.stats, fmt.Errorf("reading export file: %w", err)
	}

	var exported []exportedWorkout
	if err := json.Unmarshal(data, &exported); err != nil {
		return &imp.stats, fmt.Errorf("parsing export file: %w", err)
	}

	workouts := make([]models.CompletedWorkout, 0, len(exported))
	for _, e := range exported {
		w, ok := imp.convert(e)
		if !ok {
			imp.stats.WorkoutsSkipped++
			continue
		}
		workouts = append(workouts, w)
	}

	sort.SliceStable(workouts, func(i, j int) bool {
		return workouts[i].CreatedAt.Before(workouts[j].CreatedAt)
	})

	for _, w := range workouts {
		if imp.dryRun {
			imp.stats.WorkoutsInserted++
			continue
		}
		inserted, err := imp.db.SaveCompletedWorkout(ctx, w)
		if err != nil {
			return &imp.stats, fmt.Errorf("saving workout %s: %w", w.Date, err)
		}
		if inserted {
			imp.stats.WorkoutsInserted++
		} else {
			imp.stats.WorkoutsDuplicated++
			imp.log.Info("duplicate workout skipped", "date", w.Date)
		}
	}
	return &imp.stats, nil
}

// convert maps an exported record to the local model. Records without a date
// or without any exercises are dropped; missing IDs and volumes are rebuilt.
func (imp *Importer) convert(e exportedWorkout) (models.CompletedWorkout, bool) {
	if len(e.Exercises) == 0 {
		imp.log.Warn("skipping workout with no exercises", "name", e.WorkoutName, "date", e.Date)
		return models.CompletedWorkout{}, false
	}

	date, ok := normalizeDate(e.Date)
	if !ok {
		imp.log.Warn("skipping workout with unparseable date", "name", e.WorkoutName, "date", e.Date)
		return models.CompletedWorkout{}, false
	}

	id, err := uuid.Parse(e.ID)
	if err != nil {
		id = uuid.New()
	}

	exercises := make([]models.CompletedExercise, len(e.Exercises))
	volume := 0.0
	for i, ex := range e.Exercises {
		sets := make([]models.Set, len(ex.Sets))
		for j, s := range ex.Sets {
			sets[j] = models.Set{Reps: s.Reps, Weight: s.Weight, RestTime: s.RestTime}
			volume += sets[j].Volume()
		}
		exercises[i] = models.CompletedExercise{
			Name:         ex.Name,
			MuscleGroups: ex.MuscleGroups,
			Sets:         sets,
		}
	}

	totalVolume := e.TotalVolume
	if totalVolume == 0 {
		totalVolume = volume
	}
	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	return models.CompletedWorkout{
		ID:             id,
		UserID:         imp.userID,
		WorkoutName:    e.WorkoutName,
		Date:           date,
		Duration:       e.Duration,
		Exercises:      exercises,
		TotalVolume:    totalVolume,
		CaloriesBurned: e.CaloriesBurned,
		CreatedAt:      createdAt,
	}, true
}

// normalizeDate accepts the export's date forms (plain YYYY-MM-DD or a full
// ISO timestamp) and returns the canonical local date string.
func normalizeDate(s string) (string, bool) {
	if t, err := time.ParseInLocation(models.DateFormat, s, time.Local); err == nil {
		return models.LocalDate(t), true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return models.LocalDate(t.Local()), true
	}
	return "", false
}
