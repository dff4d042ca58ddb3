// Package db is the SQLite persistence layer: profiles with public
// slugs, one schedule record per (user, month, year), and public view
// events.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps sql.DB for the schedule service.
type DB struct {
	*sql.DB
	path string
}

// NewDB opens the database at path and runs migrations.
func NewDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if err := createTables(db); err != nil {
		return nil, err
	}
	return &DB{DB: db, path: path}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		// Business profiles; identity itself lives upstream, this row
		// carries the public-facing attributes.
		`CREATE TABLE IF NOT EXISTS profiles (
			id TEXT PRIMARY KEY,
			display_name TEXT,
			business_name TEXT,
			public_slug TEXT UNIQUE,
			logo_url TEXT,
			banner_url TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// One record per user per month; schedule_data is the JSON
		// month blob, total_hours a derived cache recomputed on save.
		`CREATE TABLE IF NOT EXISTS schedules (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT NOT NULL,
			month INTEGER NOT NULL,
			year INTEGER NOT NULL,
			schedule_data TEXT NOT NULL,
			is_public BOOLEAN NOT NULL DEFAULT 0,
			total_hours REAL NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(user_id, month, year),
			FOREIGN KEY (user_id) REFERENCES profiles(id)
		)`,

		// Public calendar view events.
		`CREATE TABLE IF NOT EXISTS schedule_views (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT NOT NULL,
			public_slug TEXT NOT NULL,
			ip_address TEXT,
			user_agent TEXT,
			referrer TEXT,
			viewed_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES profiles(id)
		)`,

		// Indexes
		`CREATE INDEX IF NOT EXISTS idx_profiles_slug ON profiles(public_slug)`,
		`CREATE INDEX IF NOT EXISTS idx_schedules_user_month ON schedules(user_id, year, month)`,
		`CREATE INDEX IF NOT EXISTS idx_schedules_public ON schedules(is_public)`,
		`CREATE INDEX IF NOT EXISTS idx_views_user_time ON schedule_views(user_id, viewed_at)`,
	}

	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			return fmt.Errorf("exec migration %s: %w", trimSQL(q), err)
		}
	}
	return nil
}

func trimSQL(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 60 {
		return s[:60] + "..."
	}
	return s
}

// Ping checks connectivity for readiness probes.
func (db *DB) Ping(ctx context.Context) error {
	return db.PingContext(ctx)
}
