package storage

import "context"

// GetOrCreateUser ensures a user row exists and returns its ID. The server
// runs single-tenant and seeds one "local" user at startup; the importer
// writes history under the same row. Repeat calls refresh last_seen and
// display_name.
func (db *DB) GetOrCreateUser(ctx context.Context, login, displayName string) (int, error) {
	var id int
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO users (login, display_name)
		VALUES ($1, $2)
		ON CONFLICT (login) DO UPDATE
			SET last_seen = NOW(), display_name = COALESCE(NULLIF($2, ''), users.display_name)
		RETURNING id
	`, login, displayName).Scan(&id)
	return id, err
}
