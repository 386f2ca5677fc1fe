package storage

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// New opens a SQLite database connection at the given path.
// It enables foreign keys and sets connection pool settings.
func New(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	// Enable foreign keys (disabled by default in SQLite)
	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		_ = db.Close()
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// Migrate runs database migrations to create the required tables.
// It is idempotent and can be run multiple times safely.
func Migrate(db *sql.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS postboxes (
			id TEXT PRIMARY KEY,
			nickname TEXT NOT NULL,
			prayer_topic TEXT NOT NULL DEFAULT '',
			url TEXT NOT NULL,
			is_opened INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS postcards (
			id TEXT PRIMARY KEY,
			postbox_id TEXT NOT NULL,
			template_id INTEGER NOT NULL DEFAULT 1,
			template_type INTEGER NOT NULL DEFAULT 0,
			template_name TEXT NOT NULL DEFAULT '',
			is_anonymous INTEGER NOT NULL DEFAULT 0,
			sender_name TEXT NOT NULL DEFAULT '',
			verse_reference TEXT NOT NULL DEFAULT '',
			verse_text TEXT NOT NULL DEFAULT '',
			message TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (postbox_id) REFERENCES postboxes(id) ON DELETE CASCADE
		);`,
		`CREATE INDEX IF NOT EXISTS idx_postcards_postbox ON postcards(postbox_id);`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}
