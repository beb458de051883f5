package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const currentVersion = 2

type Store struct {
	db *sql.DB
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
func New(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory() (*Store, error) {
	return New(":memory:")
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	var version int
	err := s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}
	if version < 2 {
		if err := s.migrateV2(); err != nil {
			return err
		}
	}

	_, err = s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (s *Store) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS kv (
		key         TEXT PRIMARY KEY,
		version     INTEGER NOT NULL DEFAULT 0,
		value       BLOB NOT NULL,
		updated_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	INSERT OR IGNORE INTO settings (key, value) VALUES
		('theme_mode',    'system'),
		('sound_effects', 'on'),
		('notifications', 'on');
	`
	_, err := s.db.Exec(ddl)
	return err
}

func (s *Store) migrateV2() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS practice_sessions (
		id            TEXT PRIMARY KEY,
		category_id   TEXT NOT NULL,
		status        TEXT NOT NULL DEFAULT 'active',
		answered      INTEGER NOT NULL DEFAULT 0,
		correct       INTEGER NOT NULL DEFAULT 0,
		xp_earned     INTEGER NOT NULL DEFAULT 0,
		started_at    TEXT NOT NULL,
		completed_at  TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_started  ON practice_sessions(started_at);
	CREATE INDEX IF NOT EXISTS idx_sessions_category ON practice_sessions(category_id);

	INSERT OR IGNORE INTO settings (key, value) VALUES
		('daily_goal_xp', '50');
	`
	_, err := s.db.Exec(ddl)
	return err
}

// DefaultDBPath resolves the database file path in priority order:
// 1. DRIVETHEORY_DB environment variable
// 2. $XDG_DATA_HOME/drivetheory/drivetheory.db
// 3. ~/.local/share/drivetheory/drivetheory.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("DRIVETHEORY_DB"); p != "" {
		return p, nil
	}
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "drivetheory.db"), nil
}

// DataDir is where the database and log file live.
func DataDir() (string, error) {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "drivetheory"), nil
}
