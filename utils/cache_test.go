package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheSetGetDelete(t *testing.T) {
	c, err := NewCache(4, time.Minute)
	require.NoError(t, err)

	assert.Nil(t, c.Get("missing"))

	c.Set("k", "v")
	assert.Equal(t, "v", c.Get("k"))

	c.Delete("k")
	assert.Nil(t, c.Get("k"))
}

func TestCacheExpiresEntries(t *testing.T) {
	c, err := NewCache(4, 10*time.Millisecond)
	require.NoError(t, err)

	c.Set("k", "v")
	time.Sleep(20 * time.Millisecond)
	assert.Nil(t, c.Get("k"))
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c, err := NewCache(2, time.Minute)
	require.NoError(t, err)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	assert.Nil(t, c.Get("a"))
	assert.Equal(t, 2, c.Get("b"))
	assert.Equal(t, 3, c.Get("c"))
}
