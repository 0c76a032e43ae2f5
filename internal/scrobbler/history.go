package scrobbler

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// History is a persistent log of confirmed plays, backed by SQLite.
// It is display-only: duplicate suppression and scrobble submission do
// not consult it.
type History struct {
	db *sql.DB
}

// Play is one confirmed play in the history.
type Play struct {
	ID        int64
	Artist    string
	Title     string
	PlayedAt  time.Time
	Scrobbled bool
}

// NewHistory opens (or creates) a play history at the given path.
// Pass ":memory:" for an ephemeral history.
func NewHistory(dbPath string) (*History, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Set connection pool size to 1 for in-memory databases to ensure consistency
	// For file-based databases, this still works well for our use case
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA journal_mode = WAL",
		"PRAGMA temp_store = MEMORY",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	schema := `
		CREATE TABLE IF NOT EXISTS plays (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			artist TEXT NOT NULL,
			title TEXT NOT NULL,
			played_at INTEGER NOT NULL,
			scrobbled BOOLEAN DEFAULT 0,
			created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
		);

		CREATE INDEX IF NOT EXISTS idx_played_at ON plays(played_at);
	`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &History{db: db}, nil
}

// Close closes the database connection
func (h *History) Close() error {
	if h.db != nil {
		return h.db.Close()
	}
	return nil
}

// Add records a confirmed play.
func (h *History) Add(ctx context.Context, play Play) (int64, error) {
	query := `
		INSERT INTO plays (artist, title, played_at, scrobbled)
		VALUES (?, ?, ?, ?)
	`

	result, err := h.db.ExecContext(ctx, query,
		play.Artist,
		play.Title,
		play.PlayedAt.Unix(),
		play.Scrobbled,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert play: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get insert id: %w", err)
	}

	return id, nil
}

// Recent retrieves the most recent plays, newest first.
// A limit of 0 returns everything.
func (h *History) Recent(ctx context.Context, limit int) ([]Play, error) {
	query := `
		SELECT id, artist, title, played_at, scrobbled
		FROM plays
		ORDER BY played_at DESC, id DESC
	`

	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := h.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query plays: %w", err)
	}
	defer rows.Close()

	var plays []Play
	for rows.Next() {
		var p Play
		var playedAtUnix int64

		err := rows.Scan(&p.ID, &p.Artist, &p.Title, &playedAtUnix, &p.Scrobbled)
		if err != nil {
			return nil, fmt.Errorf("failed to scan play: %w", err)
		}

		p.PlayedAt = time.Unix(playedAtUnix, 0)
		plays = append(plays, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating plays: %w", err)
	}

	return plays, nil
}

// Last returns the most recent play, or nil if the history is empty.
func (h *History) Last(ctx context.Context) (*Play, error) {
	plays, err := h.Recent(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(plays) == 0 {
		return nil, nil
	}
	return &plays[0], nil
}

// Count returns the number of recorded plays.
func (h *History) Count(ctx context.Context) (int, error) {
	var count int
	err := h.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM plays").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count plays: %w", err)
	}
	return count, nil
}

// Cleanup removes plays older than the given age to prevent unbounded
// growth. Returns the number of rows removed.
func (h *History) Cleanup(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := time.Now().Add(-maxAge).Unix()

	result, err := h.db.ExecContext(ctx, "DELETE FROM plays WHERE played_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup old plays: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return deleted, nil
}
