package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dmitrijs2005/recipebox/internal/logging"
	"github.com/dmitrijs2005/recipebox/internal/server/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})
	return mr, client
}

func sampleRecipe() *models.Recipe {
	ts := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	return &models.Recipe{
		ID: "r-1", Name: "Tomato Soup", Instructions: "boil",
		Ingredients: []string{"tomato", "salt", "water"},
		PostedBy:    "u-1", PostedByName: "Alice",
		PostedAt: ts, CreatedAt: ts, UpdatedAt: ts,
	}
}

func TestRedisCache_SetGetInvalidate(t *testing.T) {
	mr, client := setupTestRedis(t)
	c := NewRedisCache(client, time.Minute, logging.Nop{})
	ctx := context.Background()

	_, ok := c.Get(ctx, "r-1")
	assert.False(t, ok)

	c.Set(ctx, sampleRecipe())
	assert.True(t, mr.Exists("recipebox:recipe:r-1"))
	assert.Equal(t, time.Minute, mr.TTL("recipebox:recipe:r-1"))

	got, ok := c.Get(ctx, "r-1")
	require.True(t, ok)
	assert.Equal(t, sampleRecipe(), got)

	c.Invalidate(ctx, "r-1")
	_, ok = c.Get(ctx, "r-1")
	assert.False(t, ok)
}

func TestRedisCache_SetAfterInvalidateIsIgnored(t *testing.T) {
	mr, client := setupTestRedis(t)
	c := NewRedisCache(client, time.Minute, logging.Nop{})
	ctx := context.Background()

	// A lookup read the row, the delete committed, then the lookup caches.
	stale := sampleRecipe()
	c.Invalidate(ctx, stale.ID)
	c.Set(ctx, stale)

	_, ok := c.Get(ctx, stale.ID)
	assert.False(t, ok)
	assert.False(t, mr.Exists("recipebox:recipe:r-1"))
	assert.True(t, mr.Exists("recipebox:deleted:r-1"))

	// Other recipes are unaffected.
	other := sampleRecipe()
	other.ID = "r-2"
	c.Set(ctx, other)
	_, ok = c.Get(ctx, "r-2")
	assert.True(t, ok)
}

func TestRedisCache_Expires(t *testing.T) {
	mr, client := setupTestRedis(t)
	c := NewRedisCache(client, time.Minute, logging.Nop{})
	ctx := context.Background()

	c.Set(ctx, sampleRecipe())
	mr.FastForward(2 * time.Minute)

	_, ok := c.Get(ctx, "r-1")
	assert.False(t, ok)
}

func TestRedisCache_CorruptEntryIsDropped(t *testing.T) {
	mr, client := setupTestRedis(t)
	c := NewRedisCache(client, time.Minute, logging.Nop{})
	require.NoError(t, mr.Set("recipebox:recipe:r-1", "{not json"))

	_, ok := c.Get(context.Background(), "r-1")
	assert.False(t, ok)
	assert.False(t, mr.Exists("recipebox:recipe:r-1"))
}

func TestRedisCache_ServerDownIsAMiss(t *testing.T) {
	mr, client := setupTestRedis(t)
	c := NewRedisCache(client, time.Minute, logging.Nop{})
	mr.Close()

	ctx := context.Background()
	c.Set(ctx, sampleRecipe())
	_, ok := c.Get(ctx, "r-1")
	assert.False(t, ok)
	c.Invalidate(ctx, "r-1")
}

func TestNewRedisClient(t *testing.T) {
	mr, _ := setupTestRedis(t)
	addr := mr.Addr()
	client, err := NewRedisClient(context.Background(), addr)
	require.NoError(t, err)
	_ = client.Close()

	mr.Close()
	_, err = NewRedisClient(context.Background(), addr)
	require.Error(t, err)
}

func TestNop(t *testing.T) {
	var c RecipeCache = Nop{}
	c.Set(context.Background(), sampleRecipe())
	_, ok := c.Get(context.Background(), "r-1")
	assert.False(t, ok)
}
