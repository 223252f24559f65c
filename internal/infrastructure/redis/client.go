package redis

import (
	"context"
	"log/slog"
	"time"

	stderrors "errors"

	"github.com/redis/go-redis/v9"
)

var ErrKeyNotFound = stderrors.New("key not found")

// Client defines the Redis operations the services use.
type Client interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Del(ctx context.Context, key string) error
	Close() error
}

type client struct {
	rdb *redis.Client
}

func NewClient(addr string) (Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	slog.Info("connected to Redis", "addr", addr)
	return &client{rdb: rdb}, nil
}

func (c *client) Get(ctx context.Context, key string) (string, error) {
	val, err := c.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", ErrKeyNotFound
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func (c *client) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return c.rdb.Set(ctx, key, value, expiration).Err()
}

func (c *client) Del(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, key).Err()
}

func (c *client) Close() error {
	return c.rdb.Close()
}
