package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// GetBlob returns the value and schema version stored under key.
// A missing key yields a nil value and no error.
func (s *Store) GetBlob(key string) ([]byte, int, error) {
	var value []byte
	var version int
	err := s.db.QueryRow(`SELECT value, version FROM kv WHERE key = ?`, key).Scan(&value, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("get blob %q: %w", key, err)
	}
	return value, version, nil
}

func (s *Store) PutBlob(key string, version int, value []byte) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(
		`INSERT INTO kv (key, version, value, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET version = excluded.version, value = excluded.value, updated_at = excluded.updated_at`,
		key, version, value, now,
	)
	if err != nil {
		return fmt.Errorf("put blob %q: %w", key, err)
	}
	return nil
}

func (s *Store) DeleteBlob(key string) error {
	_, err := s.db.Exec(`DELETE FROM kv WHERE key = ?`, key)
	return err
}

// BackupBlob copies key to a timestamped sibling key and returns its name.
func (s *Store) BackupBlob(key string) (string, error) {
	value, version, err := s.GetBlob(key)
	if err != nil {
		return "", err
	}
	if value == nil {
		return "", nil
	}
	backup := fmt.Sprintf("%s.bak-%s", key, time.Now().UTC().Format("20060102T150405"))
	if err := s.PutBlob(backup, version, value); err != nil {
		return "", err
	}
	return backup, nil
}
