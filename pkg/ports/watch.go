package ports

import "context"

// Watchable is implemented by stores that can notify about backend changes.
// It is used by the editor to reload configs edited outside of it.
type Watchable interface {
	// Watch returns a channel that receives the name of every config changed
	// in the backend. The channel is closed when ctx is done.
	Watch(ctx context.Context) (<-chan string, error)
}
