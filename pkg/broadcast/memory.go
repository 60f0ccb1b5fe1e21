package broadcast

import (
	"context"
	"sync"
)

// MemoryBroadcaster is an in-process Broadcaster. Publishing never blocks: a
// subscriber whose buffer is full is released instead, which ends its stream
// so the client can reconnect and resynchronise.
type MemoryBroadcaster[T any] struct {
	mu         sync.Mutex
	subs       map[*memorySubscriber[T]]struct{}
	bufferSize int
	closed     bool
}

// NewMemoryBroadcaster gives each subscriber a buffer of bufferSize messages,
// at least one.
func NewMemoryBroadcaster[T any](bufferSize int) *MemoryBroadcaster[T] {
	return &MemoryBroadcaster[T]{
		subs:       make(map[*memorySubscriber[T]]struct{}),
		bufferSize: max(bufferSize, 1),
	}
}

func (b *MemoryBroadcaster[T]) Subscribe(ctx context.Context) Subscriber[T] {
	sub := &memorySubscriber[T]{ch: make(chan Message[T], b.bufferSize)}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		sub.release()
		return sub
	}

	b.subs[sub] = struct{}{}
	sub.owner = b
	sub.stop = context.AfterFunc(ctx, func() { b.remove(sub) })
	return sub
}

func (b *MemoryBroadcaster[T]) Broadcast(_ context.Context, msg Message[T]) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for sub := range b.subs {
		select {
		case sub.ch <- msg:
		default:
			delete(b.subs, sub)
			sub.release()
		}
	}
	return nil
}

func (b *MemoryBroadcaster[T]) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	for sub := range b.subs {
		sub.release()
	}
	clear(b.subs)
	return nil
}

func (b *MemoryBroadcaster[T]) remove(sub *memorySubscriber[T]) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subs[sub]; ok {
		delete(b.subs, sub)
		sub.release()
	}
}

type memorySubscriber[T any] struct {
	ch    chan Message[T]
	owner *MemoryBroadcaster[T]
	stop  func() bool
	once  sync.Once
}

func (s *memorySubscriber[T]) Receive(context.Context) <-chan Message[T] {
	return s.ch
}

func (s *memorySubscriber[T]) Close() error {
	if s.owner != nil {
		s.owner.remove(s)
		return nil
	}
	s.release()
	return nil
}

// release closes the channel. Callers hold the owner's lock, so it never
// races with a send.
func (s *memorySubscriber[T]) release() {
	s.once.Do(func() {
		if s.stop != nil {
			s.stop()
		}
		close(s.ch)
	})
}
