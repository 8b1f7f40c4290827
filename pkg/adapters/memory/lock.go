package memory

import (
	"context"
	"sync"
	"time"

	"github.com/aretw0/flowstudio/pkg/ports"
)

// lockEntry holds the lock token and the reference count.
type lockEntry struct {
	token chan struct{} // holding the token means holding the lock
	refs  int
}

// Locker implements ports.DistributedLocker within a single process.
// It uses Reference Counting to garbage collect unused locks.
type Locker struct {
	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks
}

// NewLocker creates an empty Locker.
func NewLocker() *Locker {
	return &Locker{locks: make(map[string]*lockEntry)}
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST call release(key) when it no longer waits for or holds the token.
func (l *Locker) acquire(key string) *lockEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, exists := l.locks[key]
	if !exists {
		entry = &lockEntry{token: make(chan struct{}, 1)}
		l.locks[key] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (l *Locker) release(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, exists := l.locks[key]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(l.locks, key)
	}
}

// Lock waits for key until ctx is done. The lock is released by the returned
// UnlockFunc or when ttl elapses, whichever comes first; a second release is
// a no-op.
func (l *Locker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	entry := l.acquire(key)
	select {
	case entry.token <- struct{}{}:
	case <-ctx.Done():
		l.release(key)
		return nil, ctx.Err()
	}

	var once sync.Once
	unlock := func() {
		once.Do(func() {
			<-entry.token
			l.release(key)
		})
	}
	var timer *time.Timer
	if ttl > 0 {
		timer = time.AfterFunc(ttl, unlock)
	}

	return func(context.Context) error {
		if timer != nil {
			timer.Stop()
		}
		unlock()
		return nil
	}, nil
}

// size reports how many keys are locked or awaited.
func (l *Locker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
