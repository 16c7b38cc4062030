package cache_test

import (
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"github.com/five82/whisker/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func byLen(s string) int64 { return int64(len(s)) }

func TestNew_ValidatesBounds(t *testing.T) {
	t.Run("No bound", func(t *testing.T) {
		_, err := cache.New[string, int](cache.Options[string, int]{})
		require.Error(t, err)
	})

	t.Run("Negative bound", func(t *testing.T) {
		_, err := cache.New[string, int](cache.Options[string, int]{MaxEntries: -1})
		require.Error(t, err)
	})

	t.Run("Byte bound without sizer", func(t *testing.T) {
		_, err := cache.New[string, int](cache.Options[string, int]{MaxBytes: 10})
		require.Error(t, err)
	})
}

func TestLRU_GetPutAndRecency(t *testing.T) {
	// Arrange
	var evicted []string
	c, err := cache.New[string, string](cache.Options[string, string]{
		MaxEntries: 2,
		OnEvict:    func(key string, _ string) { evicted = append(evicted, key) },
	})
	require.NoError(t, err)

	// Act
	c.Put("a", "1")
	c.Put("b", "2")
	v, ok := c.Get("a") // a becomes most recent, b is now the eviction candidate
	c.Put("c", "3")

	// Assert
	require.True(t, ok)
	assert.Equal(t, "1", v)
	assert.Equal(t, []string{"b"}, evicted)
	assert.Equal(t, []string{"c", "a"}, c.Keys())
	_, ok = c.Peek("b")
	assert.False(t, ok)

	stats := c.Stats()
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Evictions)
	assert.Equal(t, 2, stats.Entries)
}

func TestLRU_PeekDoesNotPromote(t *testing.T) {
	c, err := cache.New[string, int](cache.Options[string, int]{MaxEntries: 2})
	require.NoError(t, err)

	c.Put("a", 1)
	c.Put("b", 2)
	_, ok := c.Peek("a")
	require.True(t, ok)
	c.Put("c", 3)

	assert.False(t, c.Contains("a"))
	assert.True(t, c.Contains("b"))
	assert.Equal(t, uint64(0), c.Stats().Hits)
}

func TestLRU_ByteBound(t *testing.T) {
	t.Run("Evicts until weight fits", func(t *testing.T) {
		c, err := cache.New[string, string](cache.Options[string, string]{MaxBytes: 10, SizeOf: byLen})
		require.NoError(t, err)

		c.Put("a", "aaaa")
		c.Put("b", "bbbb")
		c.Put("c", "cccc")

		assert.Equal(t, int64(8), c.Size())
		assert.Equal(t, []string{"c", "b"}, c.Keys())
	})

	t.Run("Oversize value is not stored", func(t *testing.T) {
		c, err := cache.New[string, string](cache.Options[string, string]{MaxBytes: 4, SizeOf: byLen})
		require.NoError(t, err)
		c.Put("small", "ab")

		stored := c.Put("huge", "abcdefgh")

		assert.False(t, stored)
		assert.False(t, c.Contains("huge"))
		assert.True(t, c.Contains("small"))
	})

	t.Run("Replacing a value adjusts weight", func(t *testing.T) {
		c, err := cache.New[string, string](cache.Options[string, string]{MaxBytes: 100, SizeOf: byLen})
		require.NoError(t, err)

		c.Put("a", "aaaa")
		c.Put("a", "aa")

		assert.Equal(t, int64(2), c.Size())
		assert.Equal(t, 1, c.Len())
	})
}

func TestLRU_RemoveAndClear(t *testing.T) {
	c, err := cache.New[string, string](cache.Options[string, string]{MaxEntries: 4, MaxBytes: 100, SizeOf: byLen})
	require.NoError(t, err)
	c.Put("a", "aaa")
	c.Put("b", "bb")

	assert.True(t, c.Remove("a"))
	assert.False(t, c.Remove("a"))
	assert.Equal(t, int64(2), c.Size())

	c.Clear()
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, int64(0), c.Size())
	_, ok := c.Get("b")
	assert.False(t, ok)
}

func TestLRU_BoundsHoldAfterAnyPutSequence(t *testing.T) {
	const maxEntries = 5
	const maxBytes = 40

	rng := rand.New(rand.NewSource(7))
	c, err := cache.New[int, string](cache.Options[int, string]{MaxEntries: maxEntries, MaxBytes: maxBytes, SizeOf: byLen})
	require.NoError(t, err)

	for i := 0; i < 2000; i++ {
		key := rng.Intn(30)
		switch rng.Intn(4) {
		case 0:
			c.Get(key)
		case 1:
			c.Remove(key)
		default:
			c.Put(key, fmt.Sprintf("%0*d", rng.Intn(20)+1, key))
		}
		require.LessOrEqual(t, c.Len(), maxEntries, "step %d", i)
		require.LessOrEqual(t, c.Size(), int64(maxBytes), "step %d", i)
	}
}

func TestLRU_ConcurrentAccess(t *testing.T) {
	c, err := cache.New[int, int](cache.Options[int, int]{MaxEntries: 16})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				key := (g*31 + i) % 40
				if _, ok := c.Get(key); !ok {
					c.Put(key, key*2)
				}
			}
		}(g)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), 16)
	for _, key := range c.Keys() {
		v, ok := c.Peek(key)
		require.True(t, ok)
		assert.Equal(t, key*2, v)
	}
}
