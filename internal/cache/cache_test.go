package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_SetGet(t *testing.T) {
	c := NewMemoryCache(1024)
	defer c.Close()

	require.NoError(t, c.Set("a", []byte("hello"), time.Minute))

	body, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, "hello", string(body))

	_, ok = c.Get("missing")
	assert.False(t, ok)

	stats := c.Stats()
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
	assert.Equal(t, int64(5), stats.SizeBytes)
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(1024)
	defer c.Close()

	require.NoError(t, c.Set("a", []byte("x"), time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Stats().Entries)
}

func TestMemoryCache_LRUEviction(t *testing.T) {
	c := NewMemoryCache(10)
	defer c.Close()

	require.NoError(t, c.Set("a", []byte("1234"), time.Minute))
	require.NoError(t, c.Set("b", []byte("1234"), time.Minute))

	// touch a so that b becomes least recently used
	_, ok := c.Get("a")
	require.True(t, ok)

	require.NoError(t, c.Set("c", []byte("1234"), time.Minute))

	_, ok = c.Get("b")
	assert.False(t, ok, "b should have been evicted")
	_, ok = c.Get("a")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
	assert.Equal(t, int64(8), c.Stats().SizeBytes)
}

func TestMemoryCache_ReplaceAndOversized(t *testing.T) {
	c := NewMemoryCache(10)
	defer c.Close()

	require.NoError(t, c.Set("a", []byte("1234"), time.Minute))
	require.NoError(t, c.Set("a", []byte("12"), time.Minute))
	assert.Equal(t, int64(2), c.Stats().SizeBytes)

	require.NoError(t, c.Set("big", make([]byte, 11), time.Minute))
	_, ok := c.Get("big")
	assert.False(t, ok)

	require.NoError(t, c.Delete("a"))
	require.NoError(t, c.Delete("a"))
	assert.Equal(t, int64(0), c.Stats().SizeBytes)
}
