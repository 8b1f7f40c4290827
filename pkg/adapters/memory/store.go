// Package memory provides in-memory implementations of the storage ports,
// mostly for tests and the default `serve` setup.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/aretw0/flowstudio/pkg/domain"
	"github.com/aretw0/flowstudio/pkg/ports"
)

type revision struct {
	version ports.Version
	data    []byte
}

// Store implements ports.VersionedStore in memory.
// Configs are kept encoded so callers never share state with the store.
// Safe for concurrent use.
type Store struct {
	data map[string][]revision
	mu   sync.RWMutex
	now  func() time.Time
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string][]revision),
		now:  time.Now,
	}
}

// Save persists the config as a new revision without a message.
func (s *Store) Save(ctx context.Context, name string, cfg *domain.BotConfig) error {
	_, err := s.SaveVersion(ctx, name, cfg, "")
	return err
}

// SaveVersion persists the config as a new revision.
func (s *Store) SaveVersion(ctx context.Context, name string, cfg *domain.BotConfig, message string) (int, error) {
	if err := ports.ValidateName(name); err != nil {
		return 0, err
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	revs := s.data[name]
	v := ports.Version{Number: len(revs) + 1, Message: message, CreatedAt: s.now()}
	s.data[name] = append(revs, revision{version: v, data: data})
	return v.Number, nil
}

// Load retrieves the latest revision.
func (s *Store) Load(ctx context.Context, name string) (*domain.BotConfig, error) {
	s.mu.RLock()
	revs := s.data[name]
	s.mu.RUnlock()

	if len(revs) == 0 {
		return nil, ports.ErrConfigNotFound
	}
	return decode(revs[len(revs)-1].data)
}

// LoadVersion retrieves a given revision.
func (s *Store) LoadVersion(ctx context.Context, name string, number int) (*domain.BotConfig, error) {
	s.mu.RLock()
	revs := s.data[name]
	s.mu.RUnlock()

	if number < 1 || number > len(revs) {
		return nil, fmt.Errorf("%w: %s@%d", ports.ErrVersionNotFound, name, number)
	}
	return decode(revs[number-1].data)
}

// Versions lists the revisions of a config, oldest first.
func (s *Store) Versions(ctx context.Context, name string) ([]ports.Version, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	revs := s.data[name]
	if len(revs) == 0 {
		return nil, ports.ErrConfigNotFound
	}
	versions := make([]ports.Version, len(revs))
	for i, r := range revs {
		versions[i] = r.version
	}
	return versions, nil
}

// Delete removes the config and its history.
func (s *Store) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, name)
	return nil
}

// List returns the stored bot names, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.data))
	for name := range s.data {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

func decode(data []byte) (*domain.BotConfig, error) {
	var cfg domain.BotConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}
