package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stateofclarity/refinery/internal/refine/quality"
)

// Client wraps Redis operations for the refinement pipeline: per-brief run
// locks and a short-lived cache of the latest quality gate result.
type Client struct {
	rdb *redis.Client
}

// Config holds Redis connection configuration.
type Config struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
}

// NewClient creates a new Redis client.
func NewClient(cfg Config) (*Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}

	rdb := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Health checks if Redis is reachable.
func (c *Client) Health(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Key helpers
func lockKey(briefID string) string {
	return fmt.Sprintf("refining:%s", briefID)
}

func resultKey(briefID string) string {
	return fmt.Sprintf("gate_result:%s", briefID)
}

// AcquireRunLock attempts to take the refinement lock for a brief. Two
// workers must never refine the same brief concurrently.
func (c *Client) AcquireRunLock(ctx context.Context, briefID string, ttl time.Duration) (bool, error) {
	ok, err := c.rdb.SetNX(ctx, lockKey(briefID), "locked", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("setnx failed: %w", err)
	}
	return ok, nil
}

// ReleaseRunLock releases the refinement lock for a brief.
func (c *Client) ReleaseRunLock(ctx context.Context, briefID string) error {
	return c.rdb.Del(ctx, lockKey(briefID)).Err()
}

// RefreshRunLock extends the TTL of a held lock.
func (c *Client) RefreshRunLock(ctx context.Context, briefID string, ttl time.Duration) error {
	return c.rdb.Expire(ctx, lockKey(briefID), ttl).Err()
}

// CacheGateResult stores the latest quality gate result for a brief.
func (c *Client) CacheGateResult(ctx context.Context, briefID string, result quality.GateResult, ttl time.Duration) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal gate result: %w", err)
	}
	return c.rdb.Set(ctx, resultKey(briefID), data, ttl).Err()
}

// GetGateResult returns the cached gate result, or found=false on a miss.
func (c *Client) GetGateResult(ctx context.Context, briefID string) (quality.GateResult, bool, error) {
	var result quality.GateResult
	data, err := c.rdb.Get(ctx, resultKey(briefID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return result, false, nil
	}
	if err != nil {
		return result, false, fmt.Errorf("get failed: %w", err)
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return result, false, fmt.Errorf("failed to unmarshal gate result: %w", err)
	}
	return result, true, nil
}
