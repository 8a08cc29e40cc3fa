package store

import (
	"context"
	"fmt"
)

// schema holds the idempotent DDL for each backend. Timestamps are stored
// as Unix milliseconds so every driver scans them the same way.
var schema = map[Driver][]string{
	DriverSQLite: {
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			stars INTEGER NOT NULL DEFAULT 0,
			last_active INTEGER,
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS users_stars_idx ON users (stars DESC)`,
	},
	DriverPostgres: {
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			stars BIGINT NOT NULL DEFAULT 0,
			last_active BIGINT,
			created_at BIGINT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS users_stars_idx ON users (stars DESC)`,
	},
	DriverMySQL: {
		`CREATE TABLE IF NOT EXISTS users (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			username VARCHAR(64) NOT NULL UNIQUE,
			password_hash VARCHAR(255) NOT NULL,
			stars BIGINT NOT NULL DEFAULT 0,
			last_active BIGINT NULL,
			created_at BIGINT NOT NULL,
			INDEX users_stars_idx (stars)
		)`,
	},
}

func (s *Store) migrate(ctx context.Context) error {
	stmts, ok := schema[s.driver]
	if !ok {
		return fmt.Errorf("no schema for driver %q", s.driver)
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec schema: %w", err)
		}
	}
	return nil
}
