package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Rushil-19-blr/muscle-mind-motion-track-84/internal/models"
)

// SaveCompletedWorkout inserts a finished workout record. Returns true if
// inserted, false when a workout already exists for that user and date (the
// store, not the session, enforces the one-per-day rule).
func (db *DB) SaveCompletedWorkout(ctx context.Context, w models.CompletedWorkout) (bool, error) {
	exercises, err := json.Marshal(w.Exercises)
	if err != nil {
		return false, fmt.Errorf("encoding exercises: %w", err)
	}

	tag, err := db.Pool.Exec(ctx,
		`INSERT INTO completed_workouts
		 (id, user_id, workout_name, date, duration_min, exercises, total_volume, calories_burned, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		 ON CONFLICT (user_id, date) DO NOTHING`,
		w.ID, w.UserID, w.WorkoutName, w.Date, w.Duration, exercises,
		w.TotalVolume, w.CaloriesBurned, w.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("inserting completed workout: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// GetCompletedWorkouts retrieves a user's workout history, newest first.
// limit <= 0 means the full history (the statistics aggregator needs all of
// it; dashboards pass a small limit).
func (db *DB) GetCompletedWorkouts(ctx context.Context, userID, limit int) ([]models.CompletedWorkout, error) {
	query := `SELECT id, user_id, workout_name, date, duration_min, exercises,
	          total_volume, calories_burned, created_at
	          FROM completed_workouts
	          WHERE user_id = $1
	          ORDER BY created_at DESC`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying completed workouts: %w", err)
	}
	defer rows.Close()

	var result []models.CompletedWorkout
	for rows.Next() {
		w, err := scanCompletedWorkout(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, w)
	}
	return result, rows.Err()
}

// GetTodaysCompletedWorkout returns today's workout for the user, or nil
// when none has been logged yet. "Today" is the local calendar date.
func (db *DB) GetTodaysCompletedWorkout(ctx context.Context, userID int) (*models.CompletedWorkout, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, workout_name, date, duration_min, exercises,
		 total_volume, calories_burned, created_at
		 FROM completed_workouts
		 WHERE user_id = $1 AND date = $2
		 LIMIT 1`,
		userID, models.LocalDate(time.Now()))
	if err != nil {
		return nil, fmt.Errorf("querying today's workout: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	w, err := scanCompletedWorkout(rows)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanCompletedWorkout(row scannable) (models.CompletedWorkout, error) {
	var w models.CompletedWorkout
	var date time.Time
	var exercises []byte
	if err := row.Scan(&w.ID, &w.UserID, &w.WorkoutName, &date, &w.Duration,
		&exercises, &w.TotalVolume, &w.CaloriesBurned, &w.CreatedAt); err != nil {
		return w, fmt.Errorf("scanning completed workout: %w", err)
	}
	w.Date = date.Format(models.DateFormat)
	if err := json.Unmarshal(exercises, &w.Exercises); err != nil {
		return w, fmt.Errorf("decoding exercises: %w", err)
	}
	return w, nil
}
