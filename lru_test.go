package sheetgrid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLRUCacheGetSetRoundTrip(t *testing.T) {
	c := newLRUCache[string, int](3)
	c.Set("a", 1)
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestLRUCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := newLRUCache[string, int](2)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a") // touch a, so b becomes the oldest
	c.Set("c", 3)

	_, ok := c.Get("b")
	assert.False(t, ok, "b should have been evicted as least recently used")
	_, ok = c.Get("a")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
}

func TestLRUCacheDeleteAndClear(t *testing.T) {
	c := newLRUCache[string, int](5)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Delete("a")
	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len())

	c.Clear()
	assert.Equal(t, 0, c.Len())
}
