package session

import (
	"database/sql"
	"errors"
	"fmt"
)

// PostgresStore persists session state so logins survive restarts. It is
// only wired when the postgres driver is configured.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) (*PostgresStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}
	s := &PostgresStore{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) ensureSchema() error {
	const q = `
CREATE TABLE IF NOT EXISTS sessions (
	token TEXT PRIMARY KEY,
	is_logged_in BOOLEAN NOT NULL,
	username TEXT NOT NULL,
	level INTEGER NOT NULL,
	expires_at TIMESTAMPTZ NOT NULL
)`
	if _, err := s.db.Exec(q); err != nil {
		return fmt.Errorf("ensure sessions schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(token string) (State, error) {
	const q = `
SELECT is_logged_in, username, level, expires_at
FROM sessions
WHERE token = $1`
	var st State
	if err := s.db.QueryRow(q, token).Scan(&st.IsLoggedIn, &st.Username, &st.Level, &st.ExpiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return State{}, ErrSessionNotFound
		}
		return State{}, fmt.Errorf("query session: %w", err)
	}
	return st, nil
}

func (s *PostgresStore) Set(token string, st State) error {
	const q = `
INSERT INTO sessions (token, is_logged_in, username, level, expires_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (token) DO UPDATE
SET is_logged_in = EXCLUDED.is_logged_in,
	username = EXCLUDED.username,
	level = EXCLUDED.level,
	expires_at = EXCLUDED.expires_at`
	if _, err := s.db.Exec(q, token, st.IsLoggedIn, st.Username, st.Level, st.ExpiresAt); err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

func (s *PostgresStore) Destroy(token string) error {
	const q = `DELETE FROM sessions WHERE token = $1`
	if _, err := s.db.Exec(q, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
