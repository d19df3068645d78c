package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/riff/internal/shared"
)

const createKVTable = `
CREATE TABLE IF NOT EXISTS kv (
	key TEXT PRIMARY KEY,
	value BLOB NOT NULL,
	updated_at INTEGER NOT NULL
)`

const upsertKV = `
INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

// SQLiteStore implements [KV] on top of a single sqlite table.
//
// A positive maxValueBytes enforces a per-value size quota, surfacing
// [shared.ErrQuotaExceeded] the way a browser store surfaces quota errors.
type SQLiteStore struct {
	db            *sql.DB
	maxValueBytes int
}

// NewSQLiteStore creates the kv table if needed and returns a store over db.
// maxValueBytes <= 0 disables the quota.
func NewSQLiteStore(db *sql.DB, maxValueBytes int) (*SQLiteStore, error) {
	if db == nil {
		return nil, fmt.Errorf("%w: nil database handle", shared.ErrInvalidInput)
	}

	if _, err := db.Exec(createKVTable); err != nil {
		return nil, fmt.Errorf("failed to create kv table: %w", err)
	}

	return &SQLiteStore{db: db, maxValueBytes: maxValueBytes}, nil
}

// Get retrieves the value for key, or (nil, nil) if the key is absent.
func (s *SQLiteStore) Get(key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read key %s: %w", key, err)
	}
	return value, nil
}

// Set writes a single key.
func (s *SQLiteStore) Set(key string, value []byte) error {
	if err := s.checkQuota(key, value); err != nil {
		return err
	}

	if _, err := s.db.Exec(upsertKV, key, value, time.Now().UnixMilli()); err != nil {
		return fmt.Errorf("failed to write key %s: %w", key, err)
	}
	return nil
}

// SetMulti writes all keys in one transaction. Either every key is written or none is.
func (s *SQLiteStore) SetMulti(values map[string][]byte) error {
	for key, value := range values {
		if err := s.checkQuota(key, value); err != nil {
			return err
		}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UnixMilli()
	for key, value := range values {
		if _, err := tx.Exec(upsertKV, key, value, now); err != nil {
			return fmt.Errorf("failed to write key %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit writes: %w", err)
	}
	return nil
}

// Delete removes the given keys. Missing keys are not an error.
func (s *SQLiteStore) Delete(keys ...string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, key := range keys {
		if _, err := tx.Exec("DELETE FROM kv WHERE key = ?", key); err != nil {
			return fmt.Errorf("failed to delete key %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit deletes: %w", err)
	}
	return nil
}

// Keys returns all stored keys in lexical order.
func (s *SQLiteStore) Keys() ([]string, error) {
	rows, err := s.db.Query("SELECT key FROM kv ORDER BY key")
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan key: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

func (s *SQLiteStore) checkQuota(key string, value []byte) error {
	if s.maxValueBytes > 0 && len(value) > s.maxValueBytes {
		return fmt.Errorf("%w: value for %s is %d bytes (limit %d)", shared.ErrQuotaExceeded, key, len(value), s.maxValueBytes)
	}
	return nil
}
