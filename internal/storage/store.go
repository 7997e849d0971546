// Package storage persists rooms and user accounts in SQLite. Room
// durability is best-effort: the registry treats in-memory state as the
// source of truth and writes here asynchronously.
package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/evhenko/tunesync/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS rooms (
	id            TEXT PRIMARY KEY,
	playlist      TEXT NOT NULL DEFAULT '[]',
	current_index INTEGER NOT NULL DEFAULT -1,
	play_mode     TEXT NOT NULL DEFAULT 'sequence',
	visibility    TEXT NOT NULL DEFAULT 'public',
	password_hash TEXT,
	locked        INTEGER NOT NULL DEFAULT 0,
	updated_at    TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS users (
	email         TEXT PRIMARY KEY,
	password_hash TEXT NOT NULL,
	nickname      TEXT NOT NULL DEFAULT '',
	bio           TEXT NOT NULL DEFAULT '',
	avatar        TEXT NOT NULL DEFAULT '',
	verified      INTEGER NOT NULL DEFAULT 0,
	verify_token  TEXT,
	created_at    TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_users_verify_token ON users(verify_token);
`

// Store wraps a SQLite database holding rooms and users. The path can
// be ":memory:" for tests.
type Store struct {
	db *sql.DB
}

func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	// a single writer keeps sqlite happy under concurrent savers
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Load returns the persisted state for a room id, or (nil, nil) when
// none exists.
func (s *Store) Load(id string) (*domain.RoomState, error) {
	row := s.db.QueryRow(`
		SELECT playlist, current_index, play_mode, visibility, password_hash, locked
		FROM rooms WHERE id = ?
	`, id)
	return scanRoom(row)
}

// LoadLocked returns every room persisted with the locked flag set,
// keyed by id. Used once at process start.
func (s *Store) LoadLocked() (map[string]domain.RoomState, error) {
	rows, err := s.db.Query(`
		SELECT id, playlist, current_index, play_mode, visibility, password_hash, locked
		FROM rooms WHERE locked = 1
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query locked rooms: %w", err)
	}
	defer rows.Close()

	out := make(map[string]domain.RoomState)
	for rows.Next() {
		var id string
		var playlist string
		var hash sql.NullString
		var st domain.RoomState
		if err := rows.Scan(&id, &playlist, &st.CurrentIndex, &st.PlayMode, &st.Visibility, &hash, &st.Locked); err != nil {
			return nil, fmt.Errorf("failed to scan room: %w", err)
		}
		if err := json.Unmarshal([]byte(playlist), &st.Playlist); err != nil {
			st.Playlist = nil
		}
		st.PasswordHash = hash.String
		out[id] = st
	}
	return out, rows.Err()
}

// Save upserts the full room state. Idempotent.
func (s *Store) Save(id string, st domain.RoomState) error {
	playlist, err := json.Marshal(st.Playlist)
	if err != nil {
		return fmt.Errorf("failed to marshal playlist: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO rooms (id, playlist, current_index, play_mode, visibility, password_hash, locked, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			playlist = excluded.playlist,
			current_index = excluded.current_index,
			play_mode = excluded.play_mode,
			visibility = excluded.visibility,
			password_hash = excluded.password_hash,
			locked = excluded.locked,
			updated_at = excluded.updated_at
	`, id, string(playlist), st.CurrentIndex, string(st.PlayMode), string(st.Visibility), st.PasswordHash, st.Locked, time.Now())
	if err != nil {
		return fmt.Errorf("failed to save room: %w", err)
	}
	return nil
}

func scanRoom(row *sql.Row) (*domain.RoomState, error) {
	var playlist string
	var hash sql.NullString
	var st domain.RoomState
	err := row.Scan(&playlist, &st.CurrentIndex, &st.PlayMode, &st.Visibility, &hash, &st.Locked)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan room: %w", err)
	}
	if err := json.Unmarshal([]byte(playlist), &st.Playlist); err != nil {
		st.Playlist = nil
	}
	st.PasswordHash = hash.String
	return &st, nil
}
