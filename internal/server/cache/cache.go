// Package cache holds an optional read-through cache for recipe detail.
// Cache failures are never fatal: a broken cache degrades to a miss.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/dmitrijs2005/recipebox/internal/logging"
	"github.com/dmitrijs2005/recipebox/internal/server/models"
	"github.com/redis/go-redis/v9"
)

type RecipeCache interface {
	Get(ctx context.Context, id string) (*models.Recipe, bool)
	Set(ctx context.Context, recipe *models.Recipe)
	Invalidate(ctx context.Context, id string)
}

const (
	keyPrefix       = "recipebox:recipe:"
	tombstonePrefix = "recipebox:deleted:"
)

// tombstoneTTL outlives any read that started before the delete.
const tombstoneTTL = 24 * time.Hour

func key(id string) string          { return keyPrefix + id }
func tombstoneKey(id string) string { return tombstonePrefix + id }

// setUnlessDeleted writes KEYS[1] unless the tombstone KEYS[2] exists.
var setUnlessDeleted = redis.NewScript(`
	if redis.call("EXISTS", KEYS[2]) == 1 then
		return 0
	end
	if tonumber(ARGV[2]) > 0 then
		redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[2])
	else
		redis.call("SET", KEYS[1], ARGV[1])
	end
	return 1
`)

type RedisCache struct {
	client redis.UniversalClient
	ttl    time.Duration
	logger logging.Logger
}

func NewRedisCache(client redis.UniversalClient, ttl time.Duration, logger logging.Logger) *RedisCache {
	return &RedisCache{client: client, ttl: ttl, logger: logger}
}

// NewRedisClient dials addr and checks the connection with PING.
func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func (c *RedisCache) Get(ctx context.Context, id string) (*models.Recipe, bool) {
	data, err := c.client.Get(ctx, key(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn(ctx, "recipe cache read failed", "recipe_id", id, "error", err)
		}
		return nil, false
	}

	var recipe models.Recipe
	if err := json.Unmarshal(data, &recipe); err != nil {
		c.logger.Warn(ctx, "recipe cache entry is corrupt", "recipe_id", id, "error", err)
		if err := c.client.Del(ctx, key(id)).Err(); err != nil {
			c.logger.Warn(ctx, "recipe cache drop failed", "recipe_id", id, "error", err)
		}
		return nil, false
	}
	return &recipe, true
}

// Set stores recipe unless it was invalidated in the meantime. A lookup that
// read the row before a concurrent delete must not resurrect it.
func (c *RedisCache) Set(ctx context.Context, recipe *models.Recipe) {
	data, err := json.Marshal(recipe)
	if err != nil {
		c.logger.Warn(ctx, "recipe cache encode failed", "recipe_id", recipe.ID, "error", err)
		return
	}
	keys := []string{key(recipe.ID), tombstoneKey(recipe.ID)}
	if err := setUnlessDeleted.Run(ctx, c.client, keys, data, c.ttl.Milliseconds()).Err(); err != nil {
		c.logger.Warn(ctx, "recipe cache write failed", "recipe_id", recipe.ID, "error", err)
	}
}

// Invalidate drops a deleted recipe and leaves a tombstone so later Set
// calls for the same id are ignored.
func (c *RedisCache) Invalidate(ctx context.Context, id string) {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, tombstoneKey(id), "1", tombstoneTTL)
		pipe.Del(ctx, key(id))
		return nil
	})
	if err != nil {
		c.logger.Warn(ctx, "recipe cache invalidate failed", "recipe_id", id, "error", err)
	}
}

// Nop is used when no cache is configured.
type Nop struct{}

func (Nop) Get(context.Context, string) (*models.Recipe, bool) { return nil, false }
func (Nop) Set(context.Context, *models.Recipe)                {}
func (Nop) Invalidate(context.Context, string)                 {}
