package ports

import (
	"context"
	"time"
)

// UnlockFunc is a function that releases a distributed lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker defines the interface for distributed concurrency control.
// It lets several editor replicas agree on who is editing a bot.
type DistributedLocker interface {
	// Lock attempts to acquire a distributed lock for the given key (e.g. bot name).
	// It blocks until the lock is acquired or the context is canceled.
	// The lock expires after ttl unless released earlier with the returned UnlockFunc.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
