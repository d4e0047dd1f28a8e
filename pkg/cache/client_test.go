package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mo-amir99/coursetrack-server-go/pkg/config"
)

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	c := NewMemoryCache()
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "stats", "[]", time.Minute))

	got, err := c.Get(ctx, "stats")
	require.NoError(t, err)
	assert.Equal(t, "[]", got)

	now = now.Add(2 * time.Minute)
	_, err = c.Get(ctx, "stats")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestMemoryCache_DeleteAndClose(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	require.NoError(t, c.Set(ctx, "a", "1", 0))
	require.NoError(t, c.Set(ctx, "b", "2", 0))
	require.NoError(t, c.Delete(ctx, "a"))

	_, err := c.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, c.Close())
	_, err = c.Get(ctx, "b")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	type row struct {
		Title string `json:"title"`
		Count int    `json:"count"`
	}

	require.NoError(t, SetJSON(ctx, c, "rows", []row{{Title: "Go", Count: 2}}, time.Minute))

	var out []row
	require.NoError(t, GetJSON(ctx, c, "rows", &out))
	assert.Equal(t, []row{{Title: "Go", Count: 2}}, out)

	assert.ErrorIs(t, GetJSON(ctx, c, "missing", &out), ErrMiss)
}

func TestNew_FallsBackToMemory(t *testing.T) {
	c, err := New(context.Background(), config.RedisConfig{})
	require.NoError(t, err)
	assert.IsType(t, &MemoryCache{}, c)
}
