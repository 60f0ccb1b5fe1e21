package cache_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/liveform/pkg/cache"
)

type closer struct {
	mu     sync.Mutex
	closed []string
}

func (c *closer) evict(key string, _ int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = append(c.closed, key)
}

func (c *closer) keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.closed...)
}

func TestLRUCache(t *testing.T) {
	t.Parallel()

	t.Run("get and put", func(t *testing.T) {
		t.Parallel()
		c := cache.NewLRUCache[string, int](2)

		_, ok := c.Get("visitor-a")
		assert.False(t, ok)

		_, replaced := c.Put("visitor-a", 1)
		assert.False(t, replaced)
		got, ok := c.Get("visitor-a")
		require.True(t, ok)
		assert.Equal(t, 1, got)
		assert.Equal(t, 1, c.Len())
	})

	t.Run("replacing returns the old value without evicting it", func(t *testing.T) {
		t.Parallel()
		var cl closer
		c := cache.NewLRUCache[string, int](2)
		c.SetEvictCallback(cl.evict)

		c.Put("visitor-a", 1)
		old, replaced := c.Put("visitor-a", 2)
		assert.True(t, replaced)
		assert.Equal(t, 1, old)
		assert.Empty(t, cl.keys())
	})

	t.Run("evicts the least recently used", func(t *testing.T) {
		t.Parallel()
		var cl closer
		c := cache.NewLRUCache[string, int](2)
		c.SetEvictCallback(cl.evict)

		c.Put("a", 1)
		c.Put("b", 2)
		c.Get("a")
		c.Put("c", 3)

		assert.Equal(t, []string{"b"}, cl.keys())
		_, ok := c.Get("b")
		assert.False(t, ok)
		_, ok = c.Get("a")
		assert.True(t, ok)
	})

	t.Run("remove and clear run the callback", func(t *testing.T) {
		t.Parallel()
		var cl closer
		c := cache.NewLRUCache[string, int](3)
		c.SetEvictCallback(cl.evict)

		c.Put("a", 1)
		c.Put("b", 2)
		c.Put("c", 3)

		v, ok := c.Remove("a")
		require.True(t, ok)
		assert.Equal(t, 1, v)
		_, ok = c.Remove("a")
		assert.False(t, ok)

		c.Clear()
		assert.ElementsMatch(t, []string{"a", "b", "c"}, cl.keys())
		assert.Zero(t, c.Len())
	})

	t.Run("callback may use the cache", func(t *testing.T) {
		t.Parallel()
		c := cache.NewLRUCache[string, int](1)
		c.SetEvictCallback(func(string, int) { _ = c.Len() })

		c.Put("a", 1)
		c.Put("b", 2)
		assert.Equal(t, 1, c.Len())
	})

	t.Run("rejects non-positive capacity", func(t *testing.T) {
		t.Parallel()
		assert.Panics(t, func() { cache.NewLRUCache[string, int](0) })
	})
}

func TestLRUCache_Concurrent(t *testing.T) {
	t.Parallel()

	c := cache.NewLRUCache[string, int](16)
	var wg sync.WaitGroup
	for w := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 100 {
				key := fmt.Sprintf("visitor-%d", (w*100+i)%32)
				c.Put(key, i)
				c.Get(key)
				if i%10 == 0 {
					c.Remove(key)
				}
			}
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, c.Len(), 16)
}
