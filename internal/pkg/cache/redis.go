package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned when a key is absent or undecodable
var ErrMiss = errors.New("cache miss")

// Interface defines the minimal Redis interface needed for caching
type Interface interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Ping(ctx context.Context) *redis.StatusCmd
}

// Config holds redis connection settings
type Config struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisClient connects to redis and verifies the connection
func NewRedisClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// GetJSON decodes the value at key into dst. A missing key or a value that
// does not decode yields ErrMiss.
func GetJSON(ctx context.Context, c Interface, key string, dst any) error {
	raw, err := c.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrMiss
		}
		return err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return ErrMiss
	}
	return nil
}

// SetJSON stores value as JSON under key with a TTL
func SetJSON(ctx context.Context, c Interface, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	return c.Set(ctx, key, data, ttl).Err()
}

// Delete removes keys, ignoring ones that do not exist
func Delete(ctx context.Context, c Interface, keys ...string) error {
	return c.Del(ctx, keys...).Err()
}
