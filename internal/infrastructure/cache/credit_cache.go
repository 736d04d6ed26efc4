// Package cache keeps a display copy of each user's remaining credits.
// The ledger in postgres stays authoritative; nothing here gates spending.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CreditCache stores per-user credit totals.
type CreditCache interface {
	// Get returns the cached total and whether it was present.
	Get(ctx context.Context, userID uuid.UUID) (int, bool)
	Set(ctx context.Context, userID uuid.UUID, credits int)
	Invalidate(ctx context.Context, userID uuid.UUID)
}

type redisCreditCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisCreditCache creates a Redis-backed cache. Failures are logged and
// treated as misses.
func NewRedisCreditCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) CreditCache {
	return &redisCreditCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func creditKey(userID uuid.UUID) string {
	return fmt.Sprintf("credits:user:%s", userID)
}

func (c *redisCreditCache) Get(ctx context.Context, userID uuid.UUID) (int, bool) {
	val, err := c.client.Get(ctx, creditKey(userID)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("Failed to read credit cache", zap.String("user_id", userID.String()), zap.Error(err))
		}
		return 0, false
	}

	credits, err := strconv.Atoi(val)
	if err != nil {
		c.logger.Warn("Corrupt credit cache entry", zap.String("user_id", userID.String()), zap.String("value", val))
		return 0, false
	}
	return credits, true
}

func (c *redisCreditCache) Set(ctx context.Context, userID uuid.UUID, credits int) {
	if err := c.client.Set(ctx, creditKey(userID), credits, c.ttl).Err(); err != nil {
		c.logger.Warn("Failed to write credit cache", zap.String("user_id", userID.String()), zap.Error(err))
	}
}

func (c *redisCreditCache) Invalidate(ctx context.Context, userID uuid.UUID) {
	if err := c.client.Del(ctx, creditKey(userID)).Err(); err != nil {
		c.logger.Warn("Failed to invalidate credit cache", zap.String("user_id", userID.String()), zap.Error(err))
	}
}

type noopCreditCache struct{}

// NewNoopCreditCache is used when Redis is disabled.
func NewNoopCreditCache() CreditCache {
	return noopCreditCache{}
}

func (noopCreditCache) Get(context.Context, uuid.UUID) (int, bool) { return 0, false }

func (noopCreditCache) Set(context.Context, uuid.UUID, int) {}

func (noopCreditCache) Invalidate(context.Context, uuid.UUID) {}
