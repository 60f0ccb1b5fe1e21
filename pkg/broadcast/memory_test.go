package broadcast_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/liveform/pkg/broadcast"
	"github.com/dmitrymomot/liveform/pkg/dom"
)

func batch(ids ...string) broadcast.Message[[]dom.Patch] {
	patches := make([]dom.Patch, 0, len(ids))
	for _, id := range ids {
		patches = append(patches, dom.Patch{ID: id, HTML: `<p id="` + id + `"></p>`})
	}
	return broadcast.Message[[]dom.Patch]{Data: patches}
}

func receive(t *testing.T, sub broadcast.Subscriber[[]dom.Patch]) ([]dom.Patch, bool) {
	t.Helper()
	select {
	case msg, ok := <-sub.Receive(context.Background()):
		return msg.Data, ok
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for a message")
		return nil, false
	}
}

func TestMemoryBroadcaster_Subscribe(t *testing.T) {
	t.Parallel()

	t.Run("after close returns a closed subscriber", func(t *testing.T) {
		t.Parallel()
		b := broadcast.NewMemoryBroadcaster[[]dom.Patch](4)
		require.NoError(t, b.Close())

		_, ok := receive(t, b.Subscribe(context.Background()))
		assert.False(t, ok)
	})

	t.Run("context cancellation releases the subscriber", func(t *testing.T) {
		t.Parallel()
		b := broadcast.NewMemoryBroadcaster[[]dom.Patch](4)
		defer b.Close()

		ctx, cancel := context.WithCancel(context.Background())
		sub := b.Subscribe(ctx)
		cancel()

		_, ok := receive(t, sub)
		assert.False(t, ok)
	})
}

func TestMemoryBroadcaster_Broadcast(t *testing.T) {
	t.Parallel()

	t.Run("every subscriber gets the batch", func(t *testing.T) {
		t.Parallel()
		b := broadcast.NewMemoryBroadcaster[[]dom.Patch](4)
		defer b.Close()

		ctx := context.Background()
		first, second := b.Subscribe(ctx), b.Subscribe(ctx)
		require.NoError(t, b.Broadcast(ctx, batch("username-errorlist", "signup-submit")))

		for _, sub := range []broadcast.Subscriber[[]dom.Patch]{first, second} {
			patches, ok := receive(t, sub)
			require.True(t, ok)
			require.Len(t, patches, 2)
			assert.Equal(t, "username-errorlist", patches[0].ID)
		}
	})

	t.Run("keeps publish order", func(t *testing.T) {
		t.Parallel()
		b := broadcast.NewMemoryBroadcaster[[]dom.Patch](8)
		defer b.Close()

		ctx := context.Background()
		sub := b.Subscribe(ctx)
		for _, id := range []string{"a", "b", "c"} {
			require.NoError(t, b.Broadcast(ctx, batch(id)))
		}
		for _, want := range []string{"a", "b", "c"} {
			patches, ok := receive(t, sub)
			require.True(t, ok)
			assert.Equal(t, want, patches[0].ID)
		}
	})

	t.Run("slow subscribers are dropped without blocking", func(t *testing.T) {
		t.Parallel()
		b := broadcast.NewMemoryBroadcaster[[]dom.Patch](1)
		defer b.Close()

		ctx := context.Background()
		slow := b.Subscribe(ctx)

		done := make(chan struct{})
		go func() {
			defer close(done)
			for range 10 {
				_ = b.Broadcast(ctx, batch("x"))
			}
		}()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("broadcast blocked on a full subscriber")
		}

		_, ok := receive(t, slow)
		assert.True(t, ok, "buffered message is still delivered")
		require.Eventually(t, func() bool {
			select {
			case _, ok := <-slow.Receive(ctx):
				return !ok
			default:
				return false
			}
		}, time.Second, 10*time.Millisecond)
	})

	t.Run("no-op after close", func(t *testing.T) {
		t.Parallel()
		b := broadcast.NewMemoryBroadcaster[[]dom.Patch](4)
		require.NoError(t, b.Close())
		assert.NoError(t, b.Broadcast(context.Background(), batch("x")))
		assert.NoError(t, b.Close(), "close is idempotent")
	})
}

func TestMemoryBroadcaster_Concurrent(t *testing.T) {
	t.Parallel()

	b := broadcast.NewMemoryBroadcaster[[]dom.Patch](64)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	for range 8 {
		sub := b.Subscribe(ctx)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range sub.Receive(ctx) {
			}
		}()
	}
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 8 {
				_ = b.Broadcast(ctx, batch("row"))
			}
		}()
	}

	time.Sleep(20 * time.Millisecond)
	cancel()
	require.NoError(t, b.Close())
	wg.Wait()
}
