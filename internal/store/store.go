package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"tryon/internal/config"
	"tryon/internal/job"
)

//go:embed schema.sql
var schemaSQL string

// Slot keys are fixed: the store holds one job record and one reference photo.
const (
	KeyCurrentJob     = "current_job"
	KeyReferencePhoto = "reference_photo"
)

// Photo is the persisted user reference photo.
type Photo struct {
	Label   string    `json:"label,omitempty"`
	Data    string    `json:"data"`
	SavedAt time.Time `json:"saved_at"`
}

// Store persists whole-record slots in SQLite. Records are replaced
// wholesale on every write; last write wins.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the slot database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.StorePath())
}

// OpenPath opens a slot database at an explicit location.
func OpenPath(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db, path: dbPath}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Get reads the raw value of a slot. The second return reports presence.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	row := s.db.QueryRowContext(ctx, `SELECT value FROM slots WHERE key = ?`, key)
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get slot %s: %w", key, err)
	}
	return value, true, nil
}

// Set replaces a slot value atomically.
func (s *Store) Set(ctx context.Context, key, value string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO slots (key, value, updated_at) VALUES (?, ?, ?)
         ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key,
		value,
		now,
	)
	if err != nil {
		return fmt.Errorf("set slot %s: %w", key, err)
	}
	return nil
}

// Remove deletes a slot. Removing an absent slot is not an error.
func (s *Store) Remove(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM slots WHERE key = ?`, key); err != nil {
		return fmt.Errorf("remove slot %s: %w", key, err)
	}
	return nil
}

// SaveJob persists the job record, replacing any previous one.
func (s *Store) SaveJob(ctx context.Context, record job.Record) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal job record: %w", err)
	}
	return s.Set(ctx, KeyCurrentJob, string(payload))
}

// LoadJob reads the persisted job record. An absent slot yields a fresh
// idle record with found=false.
func (s *Store) LoadJob(ctx context.Context) (job.Record, bool, error) {
	raw, found, err := s.Get(ctx, KeyCurrentJob)
	if err != nil {
		return job.Record{}, false, err
	}
	if !found {
		return job.NewIdle(), false, nil
	}
	var record job.Record
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return job.Record{}, false, fmt.Errorf("unmarshal job record: %w", err)
	}
	return record, true, nil
}

// SavePhoto persists the user reference photo.
func (s *Store) SavePhoto(ctx context.Context, photo Photo) error {
	payload, err := json.Marshal(photo)
	if err != nil {
		return fmt.Errorf("marshal photo: %w", err)
	}
	return s.Set(ctx, KeyReferencePhoto, string(payload))
}

// LoadPhoto reads the persisted reference photo.
func (s *Store) LoadPhoto(ctx context.Context) (Photo, bool, error) {
	raw, found, err := s.Get(ctx, KeyReferencePhoto)
	if err != nil {
		return Photo{}, false, err
	}
	if !found {
		return Photo{}, false, nil
	}
	var photo Photo
	if err := json.Unmarshal([]byte(raw), &photo); err != nil {
		return Photo{}, false, fmt.Errorf("unmarshal photo: %w", err)
	}
	return photo, true, nil
}

// RemovePhoto deletes the persisted reference photo.
func (s *Store) RemovePhoto(ctx context.Context) error {
	return s.Remove(ctx, KeyReferencePhoto)
}
