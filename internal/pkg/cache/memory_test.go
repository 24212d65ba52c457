package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryClientGetSetDelete(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryClient()

	_, err := c.Get(ctx, "filme:1")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "filme:1", []byte(`{"id":1}`), time.Minute))
	got, err := c.Get(ctx, "filme:1")
	require.NoError(t, err)
	assert.Equal(t, `{"id":1}`, got)

	require.NoError(t, c.Delete(ctx, "filme:1", "inexistente"))
	_, err = c.Get(ctx, "filme:1")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryClientExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMemoryClient()
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "k", "v", time.Second))
	require.NoError(t, c.Set(ctx, "sem-ttl", "v", 0))

	now = now.Add(time.Second)
	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)

	got, err := c.Get(ctx, "sem-ttl")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestMemoryClientIncrWindow(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMemoryClient()
	c.now = func() time.Time { return now }

	for want := int64(1); want <= 3; want++ {
		n, err := c.IncrWindow(ctx, "rate-limit:1.2.3.4", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}

	// A janela é fixada no primeiro incremento e não desliza.
	now = now.Add(59 * time.Second)
	n, err := c.IncrWindow(ctx, "rate-limit:1.2.3.4", time.Minute)
	require.NoError(t, err)
	assert.EqualValues(t, 4, n)

	now = now.Add(time.Second)
	n, err = c.IncrWindow(ctx, "rate-limit:1.2.3.4", time.Minute)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	require.NoError(t, c.Set(ctx, "texto", "abc", 0))
	_, err = c.IncrWindow(ctx, "texto", time.Minute)
	assert.Error(t, err)
}

func TestMemoryClientSweepsExpiredKeys(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMemoryClient()
	c.now = func() time.Time { return now }

	for _, ip := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		_, err := c.IncrWindow(ctx, "rate-limit:"+ip, time.Second)
		require.NoError(t, err)
	}
	require.NoError(t, c.Set(ctx, "sem-ttl", "v", 0))
	assert.Len(t, c.data, 4)

	// Antes do intervalo de varredura os expirados continuam no mapa.
	now = now.Add(30 * time.Second)
	require.NoError(t, c.Set(ctx, "movie:id:1", "{}", time.Hour))
	assert.Len(t, c.data, 5)

	now = now.Add(defaultSweepInterval)
	_, err := c.IncrWindow(ctx, "rate-limit:10.0.0.9", time.Second)
	require.NoError(t, err)

	assert.Len(t, c.data, 3)
	assert.Contains(t, c.data, "sem-ttl")
	assert.Contains(t, c.data, "movie:id:1")
	assert.Contains(t, c.data, "rate-limit:10.0.0.9")
}
