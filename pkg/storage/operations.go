package storage

import (
	"database/sql"
	"errors"

	"taskdesk/pkg/utils"
)

// LocalStorage persists small string values across runs
type LocalStorage struct {
	db *sql.DB
}

// New wraps an already connected database
func New(db *sql.DB) *LocalStorage {
	return &LocalStorage{db: db}
}

// GetItem returns the value stored under key and whether it exists
func (s *LocalStorage) GetItem(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM local_storage WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// SetItem stores value under key, replacing any previous value
func (s *LocalStorage) SetItem(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO local_storage (key, value, updated) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated = CURRENT_TIMESTAMP`,
		key, value,
	)
	if err != nil {
		return err
	}
	utils.Log("Stored item: %s", key)
	return nil
}

// RemoveItem deletes key; removing a missing key is not an error
func (s *LocalStorage) RemoveItem(key string) error {
	_, err := s.db.Exec("DELETE FROM local_storage WHERE key = ?", key)
	if err != nil {
		return err
	}
	utils.Log("Removed item: %s", key)
	return nil
}

// Close releases the underlying database
func (s *LocalStorage) Close() error {
	return s.db.Close()
}
