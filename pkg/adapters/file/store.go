// Package file stores bot configs as JSON documents in a directory.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/flowstudio/pkg/domain"
	"github.com/aretw0/flowstudio/pkg/ports"
)

const ext = ".json"

// Store implements ports.ConfigStore using the local filesystem.
// Every config is a <name>.json file in BasePath.
type Store struct {
	BasePath string
	Logger   *slog.Logger
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".flowstudio/configs".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".flowstudio", "configs")
	}
	return &Store{BasePath: basePath, Logger: slog.New(slog.DiscardHandler)}
}

func (s *Store) path(name string) string {
	return filepath.Join(s.BasePath, name+ext)
}

// Save persists the config to a JSON file atomically.
// It writes to a temporary file first, syncs it and then renames it to the destination.
func (s *Store) Save(ctx context.Context, name string, cfg *domain.BotConfig) error {
	if err := ports.ValidateName(name); err != nil {
		return err
	}
	if err := os.MkdirAll(s.BasePath, 0o755); err != nil {
		return fmt.Errorf("failed to ensure config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// same directory, so the rename stays on one filesystem
	tmpFile, err := os.CreateTemp(s.BasePath, ".tmp-"+name+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// cannot rename an open file on Windows
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path(name)); err != nil {
		return fmt.Errorf("failed to rename temp file to config: %w", err)
	}
	return nil
}

// Load reads the config from its JSON file.
func (s *Store) Load(ctx context.Context, name string) (*domain.BotConfig, error) {
	if err := ports.ValidateName(name); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ports.ErrConfigNotFound, name)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg domain.BotConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config %s: %w", name, err)
	}
	return &cfg, nil
}

// Delete removes the config file.
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := ports.ValidateName(name); err != nil {
		return err
	}
	if err := os.Remove(s.path(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete config file: %w", err)
	}
	return nil
}

// List returns the names of all stored configs, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list configs: %w", err)
	}

	names := []string{}
	for _, entry := range entries {
		if name, ok := configName(entry.Name()); ok && !entry.IsDir() {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names, nil
}

func configName(file string) (string, bool) {
	name, ok := strings.CutSuffix(filepath.Base(file), ext)
	if !ok || ports.ValidateName(name) != nil {
		return "", false
	}
	return name, true
}

// Watch implements ports.Watchable. It reports configs written, created,
// removed or renamed in BasePath, including by other processes.
func (s *Store) Watch(ctx context.Context) (<-chan string, error) {
	if err := os.MkdirAll(s.BasePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to ensure config directory: %w", err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(s.BasePath); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch dir %q: %w", s.BasePath, err)
	}

	out := make(chan string)
	go func() {
		defer close(out)
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				name, ok := configName(event.Name)
				if !ok || event.Op == fsnotify.Chmod {
					continue
				}
				select {
				case out <- name:
				case <-ctx.Done():
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.Logger.Warn("config watcher error", "path", s.BasePath, "err", err)
			}
		}
	}()
	return out, nil
}
