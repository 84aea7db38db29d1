package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Rushil-19-blr/muscle-mind-motion-track-84/internal/models"
)

// WorkoutSaver writes completed workouts to the primary store and falls back
// to the pending queue when it is unreachable. The session layer depends on
// this through its Saver interface, so a database outage degrades to a
// queued save instead of trapping the user mid-workout.
type WorkoutSaver struct {
	DB    *DB
	Queue *PendingQueue
	Log   *slog.Logger
}

// SaveCompletedWorkout persists the record, spooling it locally when the
// primary save fails. The returned error reports the degraded save so the
// caller can notify the user; the record is not lost either way.
func (s *WorkoutSaver) SaveCompletedWorkout(ctx context.Context, w models.CompletedWorkout) error {
	_, err := s.DB.SaveCompletedWorkout(ctx, w)
	if err == nil {
		return nil
	}

	if s.Queue == nil {
		return err
	}
	if qerr := s.Queue.Enqueue(w); qerr != nil {
		s.Log.Error("pending queue enqueue failed", "error", qerr)
		return fmt.Errorf("saving workout (queue also failed: %v): %w", qerr, err)
	}
	s.Log.Warn("primary save failed, workout queued locally", "id", w.ID, "error", err)
	return fmt.Errorf("saving workout (queued for retry): %w", err)
}
