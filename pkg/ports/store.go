package ports

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/aretw0/flowstudio/pkg/domain"
)

var (
	// ErrConfigNotFound is returned when no config is stored under a name.
	ErrConfigNotFound = errors.New("config not found")
	// ErrVersionNotFound is returned when a config has no such version.
	ErrVersionNotFound = errors.New("config version not found")
	// ErrInvalidName is returned for names that cannot be used as a storage key.
	ErrInvalidName = errors.New("invalid config name")
)

var namePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]{0,127}$`)

// ValidateName checks that name is safe to use as a key or a file name.
func ValidateName(name string) error {
	if !namePattern.MatchString(name) || name == "." || name == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// ConfigStore defines the interface for persisting bot configs.
// Configs are stored as whole documents, unknown keys included.
type ConfigStore interface {
	// Save persists the config under the given bot name, replacing any previous one.
	Save(ctx context.Context, name string, cfg *domain.BotConfig) error

	// Load retrieves the config stored under the given bot name.
	// Returns ErrConfigNotFound if there is none.
	Load(ctx context.Context, name string) (*domain.BotConfig, error)

	// Delete removes the config. Deleting a missing config is not an error.
	Delete(ctx context.Context, name string) error

	// List returns the stored bot names, sorted.
	List(ctx context.Context) ([]string, error)
}

// Version describes one saved revision of a config.
type Version struct {
	Number    int       `json:"number"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// VersionedStore is a ConfigStore that keeps every saved revision. Save
// records a revision with an empty message.
type VersionedStore interface {
	ConfigStore

	// SaveVersion persists the config as a new revision and returns its number.
	// Numbers start at 1 and grow by one per bot.
	SaveVersion(ctx context.Context, name string, cfg *domain.BotConfig, message string) (int, error)

	// Versions lists the revisions of a config, oldest first.
	// Returns ErrConfigNotFound if there is none.
	Versions(ctx context.Context, name string) ([]Version, error)

	// LoadVersion retrieves a given revision.
	// Returns ErrVersionNotFound if it does not exist.
	LoadVersion(ctx context.Context, name string, number int) (*domain.BotConfig, error)
}
