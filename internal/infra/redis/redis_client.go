package redis

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"

	"groq-chat-relay/internal/config"
)

// RedisClient is the thin command surface the session store needs. Keeping
// it an interface lets tests substitute a map-backed fake.
type RedisClient interface {
	Ping(ctx context.Context) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	Close() error
}

var _ RedisClient = (*goRedisClient)(nil)

type goRedisClient struct {
	rdb *redis.Client
}

// NewClient connects and verifies the server is reachable before returning.
func NewClient(ctx context.Context, cfg *config.RedisConfig) (*goRedisClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.URL,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &goRedisClient{rdb: rdb}, nil
}

func (c *goRedisClient) Ping(ctx context.Context) error { return c.rdb.Ping(ctx).Err() }

func (c *goRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return c.rdb.Set(ctx, key, value, expiration).Err()
}

func (c *goRedisClient) Get(ctx context.Context, key string) (string, error) {
	return c.rdb.Get(ctx, key).Result()
}

func (c *goRedisClient) Del(ctx context.Context, keys ...string) error {
	return c.rdb.Del(ctx, keys...).Err()
}

func (c *goRedisClient) Close() error { return c.rdb.Close() }
