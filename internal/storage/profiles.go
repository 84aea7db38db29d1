package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Rushil-19-blr/muscle-mind-motion-track-84/internal/models"
	"github.com/jackc/pgx/v5"
)

// SaveProfile stores the user's onboarding profile, replacing any existing one.
func (db *DB) SaveProfile(ctx context.Context, userID int, p models.UserProfile) error {
	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding profile: %w", err)
	}
	_, err = db.Pool.Exec(ctx,
		`INSERT INTO profiles (user_id, profile, updated_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (user_id) DO UPDATE SET profile = $2, updated_at = NOW()`,
		userID, payload)
	if err != nil {
		return fmt.Errorf("saving profile: %w", err)
	}
	return nil
}

// GetProfile returns the user's profile, or nil when onboarding has not
// happened yet.
func (db *DB) GetProfile(ctx context.Context, userID int) (*models.UserProfile, error) {
	var payload []byte
	err := db.Pool.QueryRow(ctx,
		`SELECT profile FROM profiles WHERE user_id = $1`, userID,
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying profile: %w", err)
	}

	var p models.UserProfile
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("decoding profile: %w", err)
	}
	return &p, nil
}
