package broadcast

import "context"

// Message wraps one published value.
type Message[T any] struct {
	Data T
}

// Subscriber receives messages from a Broadcaster.
type Subscriber[T any] interface {
	// Receive returns the message channel. It is closed when the subscriber
	// is released.
	Receive(ctx context.Context) <-chan Message[T]
	// Close releases the subscriber. It is idempotent.
	Close() error
}

// Broadcaster delivers every message to all current subscribers.
type Broadcaster[T any] interface {
	// Subscribe registers a subscriber that lives until ctx ends, it is
	// closed, or the broadcaster is closed.
	Subscribe(ctx context.Context) Subscriber[T]
	Broadcast(ctx context.Context, msg Message[T]) error
	// Close releases all subscribers. Later broadcasts are no-ops and later
	// subscribers start closed.
	Close() error
}
