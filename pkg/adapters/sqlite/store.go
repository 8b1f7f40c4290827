// Package sqlite stores bot configs in SQLite, keeping every saved revision.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/aretw0/flowstudio/pkg/domain"
	"github.com/aretw0/flowstudio/pkg/ports"
)

// ErrStoreClosed is returned by operations on a closed store.
var ErrStoreClosed = errors.New("store is closed")

// Store implements ports.VersionedStore on top of SQLite.
// It is suitable for single-process production use.
type Store struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
	now    func() time.Time
}

// New opens the database at path and creates the schema if needed.
// The path should be a file path (e.g., "./flowstudio.db") or ":memory:" for testing.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// a single connection keeps ":memory:" databases shared
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS config_versions (
			name TEXT NOT NULL,
			number INTEGER NOT NULL,
			message TEXT NOT NULL,
			created_at TEXT NOT NULL,
			data BLOB NOT NULL,
			PRIMARY KEY (name, number)
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Save persists the config as a new revision without a message.
func (s *Store) Save(ctx context.Context, name string, cfg *domain.BotConfig) error {
	_, err := s.SaveVersion(ctx, name, cfg, "")
	return err
}

// SaveVersion persists the config as a new revision and returns its number.
func (s *Store) SaveVersion(ctx context.Context, name string, cfg *domain.BotConfig, message string) (int, error) {
	if err := ports.ValidateName(name); err != nil {
		return 0, err
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		return 0, fmt.Errorf("marshal config: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrStoreClosed
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var number int
	err = tx.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(number), 0) + 1 FROM config_versions WHERE name = ?
	`, name).Scan(&number)
	if err != nil {
		return 0, fmt.Errorf("next version: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO config_versions (name, number, message, created_at, data)
		VALUES (?, ?, ?, ?, ?)
	`, name, number, message, s.now().UTC().Format(time.RFC3339Nano), data)
	if err != nil {
		return 0, fmt.Errorf("save config: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return number, nil
}

// Load retrieves the latest revision.
func (s *Store) Load(ctx context.Context, name string) (*domain.BotConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}

	var data []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT data FROM config_versions
		WHERE name = ?
		ORDER BY number DESC
		LIMIT 1
	`, name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ports.ErrConfigNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return decode(data)
}

// LoadVersion retrieves a given revision.
func (s *Store) LoadVersion(ctx context.Context, name string, number int) (*domain.BotConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}

	var data []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT data FROM config_versions
		WHERE name = ? AND number = ?
	`, name, number).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s@%d", ports.ErrVersionNotFound, name, number)
	}
	if err != nil {
		return nil, fmt.Errorf("load config version: %w", err)
	}
	return decode(data)
}

// Versions lists the revisions of a config, oldest first.
func (s *Store) Versions(ctx context.Context, name string) ([]ports.Version, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT number, message, created_at
		FROM config_versions
		WHERE name = ?
		ORDER BY number
	`, name)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	var versions []ports.Version
	for rows.Next() {
		var v ports.Version
		var createdAt string
		if err := rows.Scan(&v.Number, &v.Message, &createdAt); err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		v.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate versions: %w", err)
	}
	if len(versions) == 0 {
		return nil, fmt.Errorf("%w: %s", ports.ErrConfigNotFound, name)
	}
	return versions, nil
}

// Delete removes the config and its history.
func (s *Store) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM config_versions WHERE name = ?`, name); err != nil {
		return fmt.Errorf("delete config: %w", err)
	}
	return nil
}

// List returns the stored bot names, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT name FROM config_versions ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list configs: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate configs: %w", err)
	}
	return names, nil
}

// Close closes the database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func decode(data []byte) (*domain.BotConfig, error) {
	var cfg domain.BotConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}
