package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Rushil-19-blr/muscle-mind-motion-track-84/internal/models"
	_ "modernc.org/sqlite"
)

// PendingQueue is a local SQLite spool for completed workouts that failed to
// reach the primary store. Finishing a session must never block on the
// database being up; queued records are flushed at startup and on a
// schedule.
type PendingQueue struct {
	db *sql.DB
}

// OpenPendingQueue opens (or creates) the queue database at dir/pending.db.
func OpenPendingQueue(dir string) (*PendingQueue, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating queue dir %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "pending.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening queue db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS pending_workouts (
		id        TEXT PRIMARY KEY,
		payload   TEXT NOT NULL,
		queued_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating queue table: %w", err)
	}

	return &PendingQueue{db: db}, nil
}

// Enqueue spools a workout record for a later flush. Re-queueing the same
// record is a no-op.
func (q *PendingQueue) Enqueue(w models.CompletedWorkout) error {
	payload, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("encoding pending workout: %w", err)
	}
	_, err = q.db.Exec(
		`INSERT OR IGNORE INTO pending_workouts (id, payload) VALUES (?, ?)`,
		w.ID.String(), string(payload),
	)
	return err
}

// Len returns the number of spooled records.
func (q *PendingQueue) Len() (int, error) {
	var n int
	err := q.db.QueryRow(`SELECT COUNT(*) FROM pending_workouts`).Scan(&n)
	return n, err
}

// Flush retries every spooled record against the primary store, deleting the
// ones that make it through (or that the store rejects as duplicates).
// Records that still fail stay queued for the next flush.
func (q *PendingQueue) Flush(ctx context.Context, db *DB, log *slog.Logger) error {
	rows, err := q.db.Query(`SELECT id, payload FROM pending_workouts ORDER BY queued_at`)
	if err != nil {
		return fmt.Errorf("reading pending workouts: %w", err)
	}

	type pending struct {
		id      string
		payload string
	}
	var batch []pending
	for rows.Next() {
		var p pending
		if err := rows.Scan(&p.id, &p.payload); err != nil {
			rows.Close()
			return fmt.Errorf("scanning pending workout: %w", err)
		}
		batch = append(batch, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, p := range batch {
		var w models.CompletedWorkout
		if err := json.Unmarshal([]byte(p.payload), &w); err != nil {
			// Unreadable record; drop it rather than wedging the queue.
			log.Error("dropping corrupt pending workout", "id", p.id, "error", err)
			q.remove(p.id)
			continue
		}
		if _, err := db.SaveCompletedWorkout(ctx, w); err != nil {
			log.Warn("pending workout flush failed, keeping queued", "id", p.id, "error", err)
			continue
		}
		if err := q.remove(p.id); err != nil {
			return err
		}
		log.Info("flushed pending workout", "id", p.id, "date", w.Date)
	}
	return nil
}

func (q *PendingQueue) remove(id string) error {
	_, err := q.db.Exec(`DELETE FROM pending_workouts WHERE id = ?`, id)
	return err
}

// Close closes the queue database.
func (q *PendingQueue) Close() error {
	return q.db.Close()
}
