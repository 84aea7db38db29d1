package upload

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Rushil-19-blr/muscle-mind-motion-track-84/internal/models"
)

// HistorySource supplies the local workouts to push. *storage.DB satisfies
// it.
type HistorySource interface {
	GetCompletedWorkouts(ctx context.Context, userID, limit int) ([]models.CompletedWorkout, error)
}

// Stats tracks upload progress.
type Stats struct {
	Uploaded int
	Skipped  int
	Failed   int
}

// Uploader pushes local history to a remote server, skipping workouts the
// state database already records as sent.
type Uploader struct {
	source HistorySource
	client *Client
	state  *StateDB
	log    *slog.Logger
	userID int
	dryRun bool
}

// New creates a new Uploader.
func New(source HistorySource, client *Client, state *StateDB, userID int, log *slog.Logger, dryRun bool) *Uploader {
	return &Uploader{
		source: source,
		client: client,
		state:  state,
		log:    log,
		userID: userID,
		dryRun: dryRun,
	}
}

// Run uploads every not-yet-sent workout, oldest first. A send failure is
// logged and counted; the remaining workouts still get their attempt.
func (u *Uploader) Run(ctx context.Context) (*Stats, error) {
	history, err := u.source.GetCompletedWorkouts(ctx, u.userID, 0)
	if err != nil {
		return nil, fmt.Errorf("loading local history: %w", err)
	}

	stats := &Stats{}

	// History comes back newest-first; send oldest first so the remote
	// timeline fills in order.
	for i := len(history) - 1; i >= 0; i-- {
		w := history[i]
		id := w.ID.String()

		sent, err := u.state.IsUploaded(id)
		if err != nil {
			return stats, fmt.Errorf("checking upload state: %w", err)
		}
		if sent {
			stats.Skipped++
			continue
		}

		if u.dryRun {
			u.log.Info("would upload", "date", w.Date, "workout", w.WorkoutName)
			stats.Uploaded++
			continue
		}

		if err := u.client.SendWorkout(w); err != nil {
			u.log.Error("upload failed", "date", w.Date, "error", err)
			stats.Failed++
			continue
		}
		if err := u.state.MarkUploaded(id, w.Date); err != nil {
			return stats, fmt.Errorf("recording upload state: %w", err)
		}
		u.log.Info("uploaded workout", "date", w.Date, "workout", w.WorkoutName)
		stats.Uploaded++
	}

	return stats, nil
}
