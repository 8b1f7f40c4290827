package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aretw0/flowstudio/pkg/adapters/file"
	"github.com/aretw0/flowstudio/pkg/adapters/memory"
	"github.com/aretw0/flowstudio/pkg/adapters/redis"
	"github.com/aretw0/flowstudio/pkg/adapters/sqlite"
	"github.com/aretw0/flowstudio/pkg/ports"
)

// Backend is an opened config store. Locker and Watchable are nil when the
// store kind does not provide them.
type Backend struct {
	Store     ports.ConfigStore
	Locker    ports.DistributedLocker
	Watchable ports.Watchable
	close     func() error
}

// Close releases the store connections.
func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// OpenStore builds the store selected by c.
func OpenStore(c StoreConfig, logger *slog.Logger) (*Backend, error) {
	switch c.Kind {
	case StoreMemory:
		return &Backend{Store: memory.NewStore()}, nil
	case StoreFile:
		s := file.New(c.File.Path)
		s.Logger = logger
		return &Backend{Store: s, Watchable: s}, nil
	case StoreRedis:
		var opts []redis.Option
		if c.Redis.Prefix != "" {
			opts = append(opts, redis.WithPrefix(c.Redis.Prefix))
		}
		if c.Redis.TTL > 0 {
			opts = append(opts, redis.WithTTL(c.Redis.TTL))
		}
		s := redis.New(c.Redis.Addr, c.Redis.Password, c.Redis.DB, opts...)
		b := &Backend{Store: s, close: s.Close}
		if c.Redis.Lock {
			b.Locker = redis.NewLocker(s.Client(), "flowstudio:")
		}
		return b, nil
	case StoreSQLite:
		if c.SQLite.Path != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(c.SQLite.Path), 0o755); err != nil {
				return nil, fmt.Errorf("failed to ensure sqlite directory: %w", err)
			}
		}
		s, err := sqlite.New(c.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		return &Backend{Store: s, close: s.Close}, nil
	default:
		return nil, fmt.Errorf("%w: unknown store kind %q", ErrInvalidConfig, c.Kind)
	}
}
