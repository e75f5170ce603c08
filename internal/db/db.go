package db

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Open opens the configured driver and verifies connectivity with a ping.
func Open(driver, dsn string) (*sql.DB, error) {
	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping %s database: %w", driver, err)
	}
	return conn, nil
}

// EnsureSchema creates the pokemon and users tables when missing. The id
// column syntax is the only driver-specific part.
func EnsureSchema(conn *sql.DB, driver string) error {
	idColumn := "SERIAL PRIMARY KEY"
	if driver == "sqlite3" {
		idColumn = "INTEGER PRIMARY KEY AUTOINCREMENT"
	}

	queries := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS pokemon (
	id %s,
	description TEXT NOT NULL,
	base_total INTEGER NOT NULL
)`, idColumn),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS users (
	id %s,
	username TEXT NOT NULL,
	password TEXT NOT NULL,
	level INTEGER NOT NULL DEFAULT 1
)`, idColumn),
	}

	for _, q := range queries {
		if _, err := conn.Exec(q); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
