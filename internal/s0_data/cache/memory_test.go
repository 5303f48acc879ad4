package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/propopol/internal/contracts"
	"github.com/wonny/propopol/pkg/logger"
)

func TestMemoryCache_RoundTrip(t *testing.T) {
	c := NewMemoryCache(logger.Nop())
	ctx := context.Background()

	obs := []contracts.PriceObservation{
		{Code: "005930", Date: time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC), Close: 61000, Volume: 100},
	}
	require.NoError(t, c.Set(ctx, "series:naver:005930", obs, time.Hour))

	var got []contracts.PriceObservation
	hit, err := c.Get(ctx, "series:naver:005930", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, obs, got)

	hit, err = c.Get(ctx, "series:naver:000660", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(logger.Nop())
	now := time.Date(2026, 10, 19, 18, 30, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "short", 1, time.Minute))
	require.NoError(t, c.Set(ctx, "forever", 2, 0))

	now = now.Add(2 * time.Minute)

	var v int
	hit, err := c.Get(ctx, "short", &v)
	require.NoError(t, err)
	assert.False(t, hit)

	hit, err = c.Get(ctx, "forever", &v)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 2, v)
}

func TestMemoryCache_Prune(t *testing.T) {
	c := NewMemoryCache(logger.Nop())
	now := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	for _, key := range []string{"a", "b", "c"} {
		require.NoError(t, c.Set(ctx, key, key, time.Hour))
	}
	require.NoError(t, c.Set(ctx, "d", "d", 0))

	now = now.Add(2 * time.Hour)
	assert.Equal(t, 3, c.Prune())
	assert.Equal(t, 1, c.Len())
}
