package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/supportmesh/core"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	transcript TEXT NOT NULL,
	updated_at INTEGER NOT NULL
)`

// SQLiteStore keeps one row per session in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path and ensures the
// sessions table exists. Use ":memory:" for a throwaway database.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create sessions table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Get loads the transcript of sessionID, or an empty one.
func (s *SQLiteStore) Get(ctx context.Context, sessionID string) ([]core.Message, error) {
	if sessionID == "" {
		return nil, core.ErrEmptySessionID
	}
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT transcript FROM sessions WHERE id = ?`, sessionID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return []core.Message{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite get session: %w", err)
	}
	return Decode([]byte(raw))
}

// Put upserts the transcript of sessionID in a single statement.
func (s *SQLiteStore) Put(ctx context.Context, sessionID string, messages []core.Message) error {
	if sessionID == "" {
		return core.ErrEmptySessionID
	}
	data, err := Encode(messages)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO sessions (id, transcript, updated_at) VALUES (?, ?, ?)
ON CONFLICT(id) DO UPDATE SET transcript = excluded.transcript, updated_at = excluded.updated_at`,
		sessionID, string(data), time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("sqlite put session: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
