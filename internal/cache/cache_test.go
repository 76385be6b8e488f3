package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetAndGet(t *testing.T) {
	c := New()
	defer c.Close()

	c.Set("key", "value", time.Minute)

	got, ok := c.Get("key")
	require.True(t, ok)
	assert.Equal(t, "value", got)
}

func TestGetMissing(t *testing.T) {
	c := New()
	defer c.Close()

	_, ok := c.Get("nope")
	assert.False(t, ok)
}

func TestExpiredEntryIsDropped(t *testing.T) {
	c := New()
	defer c.Close()

	c.Set("key", "value", -time.Second)

	_, ok := c.Get("key")
	assert.False(t, ok)

	// The lazy drop must have removed the entry entirely.
	c.mu.RLock()
	_, stillThere := c.entries["key"]
	c.mu.RUnlock()
	assert.False(t, stillThere)
}

func TestDelete(t *testing.T) {
	c := New()
	defer c.Close()

	c.Set("key", 42, time.Minute)
	c.Delete("key")

	_, ok := c.Get("key")
	assert.False(t, ok)
}

func TestOverwrite(t *testing.T) {
	c := New()
	defer c.Close()

	c.Set("key", 1, time.Minute)
	c.Set("key", 2, time.Minute)

	got, ok := c.Get("key")
	require.True(t, ok)
	assert.Equal(t, 2, got)
}

func TestConcurrentAccess(t *testing.T) {
	c := New()
	defer c.Close()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("key-%d", n%10)
			c.Set(key, n, time.Minute)
			c.Get(key)
			c.Delete(key)
		}(i)
	}
	wg.Wait()
}

func TestCloseIsIdempotent(t *testing.T) {
	c := New()
	c.Close()
	c.Close()
}
