package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTTLCacheRoundTrip(t *testing.T) {
	c := NewTTLCache()

	_, ok, err := c.GetBytes("k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.SetBytes("k", []byte("v"), time.Minute))
	b, ok, err := c.GetBytes("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), b)
}

func TestTTLCacheExpiry(t *testing.T) {
	c := NewTTLCache()
	require.NoError(t, c.SetBytes("k", []byte("v"), time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	_, ok, err := c.GetBytes("k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTTLCacheZeroTTLNeverExpires(t *testing.T) {
	c := NewTTLCache()
	require.NoError(t, c.SetBytes("k", []byte("v"), 0))
	time.Sleep(2 * time.Millisecond)

	_, ok, err := c.GetBytes("k")
	require.NoError(t, err)
	assert.True(t, ok)
}
