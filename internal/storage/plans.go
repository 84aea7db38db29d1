package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Rushil-19-blr/muscle-mind-motion-track-84/internal/plan"
	"github.com/jackc/pgx/v5"
)

// SavePlan stores the user's workout plan, replacing any existing one.
// Plans are replaced wholesale; modification never patches in place.
func (db *DB) SavePlan(ctx context.Context, userID int, p *plan.WorkoutPlan) error {
	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding plan: %w", err)
	}
	_, err = db.Pool.Exec(ctx,
		`INSERT INTO workout_plans (user_id, plan, updated_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (user_id) DO UPDATE SET plan = $2, updated_at = NOW()`,
		userID, payload)
	if err != nil {
		return fmt.Errorf("saving plan: %w", err)
	}
	return nil
}

// GetPlan returns the user's plan, or nil when none has been generated.
func (db *DB) GetPlan(ctx context.Context, userID int) (*plan.WorkoutPlan, error) {
	var payload []byte
	err := db.Pool.QueryRow(ctx,
		`SELECT plan FROM workout_plans WHERE user_id = $1`, userID,
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying plan: %w", err)
	}

	var p plan.WorkoutPlan
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("decoding plan: %w", err)
	}
	return &p, nil
}

// DeletePlan removes the user's plan.
func (db *DB) DeletePlan(ctx context.Context, userID int) error {
	_, err := db.Pool.Exec(ctx,
		`DELETE FROM workout_plans WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("deleting plan: %w", err)
	}
	return nil
}
