package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"tally/internal/models"

	"github.com/redis/go-redis/v9"
)

const walletCachePrefix = "wallet:"

// RedisWalletCache caches wallet snapshots in redis with a TTL. It sits
// on the read path only; every balance mutation invalidates the entry.
type RedisWalletCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisWalletCache(client *redis.Client, ttl time.Duration) *RedisWalletCache {
	if client == nil {
		panic("redis client is required")
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisWalletCache{client: client, ttl: ttl}
}

func walletKey(id uint) string {
	return fmt.Sprintf("%s%d", walletCachePrefix, id)
}

func (c *RedisWalletCache) Get(ctx context.Context, id uint) (*models.Wallet, error) {
	data, err := c.client.Get(ctx, walletKey(id)).Bytes()
	if err != nil {
		return nil, err
	}
	var w models.Wallet
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

func (c *RedisWalletCache) Set(ctx context.Context, w *models.Wallet) error {
	data, err := json.Marshal(w)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, walletKey(w.ID), data, c.ttl).Err()
}

func (c *RedisWalletCache) Invalidate(ctx context.Context, id uint) error {
	return c.client.Del(ctx, walletKey(id)).Err()
}

// NoopWalletCache disables caching. Used by the sweeper binary and in
// tests.
type NoopWalletCache struct{}

func (NoopWalletCache) Get(context.Context, uint) (*models.Wallet, error) {
	return nil, redis.Nil
}
func (NoopWalletCache) Set(context.Context, *models.Wallet) error { return nil }
func (NoopWalletCache) Invalidate(context.Context, uint) error    { return nil }
