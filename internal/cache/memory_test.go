package cache

import (
	"context"
	"testing"
	"time"

	"KWatch/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_GetSet(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(time.Minute)

	_, ok := c.Get(ctx, "0050.TW")
	assert.False(t, ok)

	c.Set(ctx, model.PriceSeries{Symbol: "0050.tw", Bars: []model.PriceBar{{Close: 150}}})
	got, ok := c.Get(ctx, "0050.TW")
	require.True(t, ok)
	assert.Equal(t, 150.0, got.Bars[0].Close)
}

func TestMemory_Expiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(time.Minute)
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set(ctx, model.PriceSeries{Symbol: "2002.TW"})
	now = now.Add(59 * time.Second)
	_, ok := c.Get(ctx, "2002.TW")
	assert.True(t, ok)

	now = now.Add(time.Second)
	_, ok = c.Get(ctx, "2002.TW")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestMemory_Clear(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(0)
	c.Set(ctx, model.PriceSeries{Symbol: "A"})
	c.Set(ctx, model.PriceSeries{Symbol: "B"})
	require.Equal(t, 2, c.Len())

	require.NoError(t, c.Clear(ctx))
	assert.Equal(t, 0, c.Len())
}

func TestNop(t *testing.T) {
	ctx := context.Background()
	var c Cache = Nop{}
	c.Set(ctx, model.PriceSeries{Symbol: "A"})
	_, ok := c.Get(ctx, "A")
	assert.False(t, ok)
	assert.NoError(t, c.Clear(ctx))
}
