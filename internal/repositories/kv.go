package repositories

import (
	"database/sql"
	"fmt"
	"time"
)

// Tables backing the key-value repositories. The session table is owned
// by the session store and is wiped on logout; the settings table holds
// data that survives it.
const (
	SessionTable  = "session"
	SettingsTable = "settings"
)

// KVRepository provides string key-value persistence backed by a
// single-purpose table.
//
// It is the storage layer for session tokens and other small blobs that the
// hosted app would keep in browser storage.
type KVRepository struct {
	db    *sql.DB
	table string
}

// NewKVRepository creates a new [KVRepository] over the given table.
func NewKVRepository(db *sql.DB, table string) *KVRepository {
	return &KVRepository{db: db, table: table}
}

// Set stores a value under the given key, replacing any existing value.
func (r *KVRepository) Set(key, value string) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, r.table)

	if _, err := r.db.Exec(query, key, value, time.Now()); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}

	return nil
}

// Get retrieves the value for a key. Missing keys return an empty string
// with ok set to false rather than an error.
func (r *KVRepository) Get(key string) (value string, ok bool, err error) {
	err = r.db.QueryRow(fmt.Sprintf("SELECT value FROM %s WHERE key = ?", r.table), key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get key %s: %w", key, err)
	}
	return value, true, nil
}

// Delete removes a key. Deleting a missing key is not an error.
func (r *KVRepository) Delete(key string) error {
	if _, err := r.db.Exec(fmt.Sprintf("DELETE FROM %s WHERE key = ?", r.table), key); err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}

// DeleteAll removes every stored key.
func (r *KVRepository) DeleteAll() error {
	if _, err := r.db.Exec(fmt.Sprintf("DELETE FROM %s", r.table)); err != nil {
		return fmt.Errorf("failed to clear %s store: %w", r.table, err)
	}
	return nil
}
