package views

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix  = "views:"
	popularKey = "views:popular"
)

// RedisCounter keeps one counter per slug plus a sorted set used for ranking.
type RedisCounter struct { // implements Counter
	client *redis.Client
}

func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
}

func NewRedisCounter(client *redis.Client) *RedisCounter {
	return &RedisCounter{client: client}
}

// Ping verifies the connection.
func (c *RedisCounter) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (c *RedisCounter) Increment(ctx context.Context, slug string) (int64, error) {
	pipe := c.client.TxPipeline()
	incr := pipe.Incr(ctx, keyPrefix+slug)
	pipe.ZIncrBy(ctx, popularKey, 1, slug)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("error incrementing views: %w", err)
	}
	return incr.Val(), nil
}

func (c *RedisCounter) Get(ctx context.Context, slug string) (int64, error) {
	n, err := c.client.Get(ctx, keyPrefix+slug).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	} else if err != nil {
		return 0, fmt.Errorf("error reading views: %w", err)
	}
	return n, nil
}

func (c *RedisCounter) Popular(ctx context.Context, limit int) ([]Entry, error) {
	scores, err := c.client.ZRevRangeWithScores(ctx, popularKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("error querying popular posts: %w", err)
	}

	entries := make([]Entry, 0, len(scores))
	for _, z := range scores {
		slug, ok := z.Member.(string)
		if !ok {
			continue
		}
		entries = append(entries, Entry{Slug: slug, Views: int64(z.Score)})
	}
	return entries, nil
}

// Forget removes a slug from the counters, used when a post is deleted or unpublished.
func (c *RedisCounter) Forget(ctx context.Context, slug string) error {
	pipe := c.client.TxPipeline()
	pipe.Del(ctx, keyPrefix+slug)
	pipe.ZRem(ctx, popularKey, slug)
	_, err := pipe.Exec(ctx)
	if err != nil {
		viewsLogger.Error().Err(err).Str("slug", slug).Msg("Error removing view counters")
	}
	return err
}
