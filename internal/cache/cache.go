package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/smmonirhasan92/man2man-sub004/config"
)

// Cache wraps Redis for the ephemeral guards: per-user task cooldown locks
// and day-scoped task counters. Callers must tolerate a nil *Cache; when
// Redis is down the task service falls back to database timestamps.
type Cache struct {
	client *redis.Client
}

func New(cfg *config.RedisConfig) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &Cache{client: client}, nil
}

func (c *Cache) Close() error { return c.client.Close() }

// AcquireCooldown atomically claims the per-user cooldown slot. It returns
// false when the previous claim is still inside the window, which is exactly
// the "two requests <10s apart" race the DB timestamp check cannot close.
func (c *Cache) AcquireCooldown(ctx context.Context, userID uint, window time.Duration) (bool, error) {
	key := fmt.Sprintf("task:cooldown:%d", userID)
	return c.client.SetNX(ctx, key, 1, window).Result()
}

// ReleaseCooldown frees the slot early, used when the task is rejected after
// the lock was taken so the user is not penalised for a failed attempt.
func (c *Cache) ReleaseCooldown(ctx context.Context, userID uint) error {
	return c.client.Del(ctx, fmt.Sprintf("task:cooldown:%d", userID)).Err()
}

// IncrDailyTasks bumps the user's task counter for the given day key and
// returns the new count. The key expires shortly after local midnight.
func (c *Cache) IncrDailyTasks(ctx context.Context, userID uint, day string, ttl time.Duration) (int64, error) {
	key := fmt.Sprintf("task:count:%d:%s", userID, day)
	pipe := c.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// DecrDailyTasks undoes a counter bump after a rejected claim.
func (c *Cache) DecrDailyTasks(ctx context.Context, userID uint, day string) error {
	key := fmt.Sprintf("task:count:%d:%s", userID, day)
	return c.client.Decr(ctx, key).Err()
}
