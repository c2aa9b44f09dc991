package cache

import (
	"context"
	"encoding/json"
	"time"

	redis "github.com/redis/go-redis/v9"

	"equiptrack/backend/internal/domain"
)

type RedisCheckoutCache struct {
	client *redis.Client
}

func NewRedisCheckoutCache(addr string, password string, db int) *RedisCheckoutCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &RedisCheckoutCache{client: client}
}

func (c *RedisCheckoutCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCheckoutCache) Close() error {
	return c.client.Close()
}

func (c *RedisCheckoutCache) Get(ctx context.Context, key string) (*domain.ExtendedCheckout, bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var checkout domain.ExtendedCheckout
	if err := json.Unmarshal([]byte(val), &checkout); err != nil {
		return nil, false, err
	}
	return &checkout, true, nil
}

func (c *RedisCheckoutCache) Set(ctx context.Context, key string, value *domain.ExtendedCheckout, ttl time.Duration) error {
	if value == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, ttl).Err()
}

func (c *RedisCheckoutCache) Del(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}
