package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	appstock "github.com/resto/backend/internal/application/stock"
	"github.com/resto/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisAssignmentCache caches product fallback chains in Redis. Suitable
// for deployments running several backend instances against one database,
// where every instance must observe chain invalidations.
type RedisAssignmentCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
	logger    *zap.Logger
}

// NewRedisAssignmentCache creates a Redis-backed assignment chain cache
// and verifies the connection.
func NewRedisAssignmentCache(cfg config.RedisConfig, logger *zap.Logger) (*RedisAssignmentCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisAssignmentCacheWithClient(client, logger), nil
}

// NewRedisAssignmentCacheWithClient creates a cache with an existing Redis
// client. Useful for testing or when sharing a client across components.
func NewRedisAssignmentCacheWithClient(client *redis.Client, logger *zap.Logger) *RedisAssignmentCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisAssignmentCache{
		client:    client,
		keyPrefix: "stock:chain:",
		ttl:       defaultChainTTL,
		logger:    logger,
	}
}

func (c *RedisAssignmentCache) key(productID uuid.UUID) string {
	return c.keyPrefix + productID.String()
}

// GetProductChain returns the cached chain and whether it was present
func (c *RedisAssignmentCache) GetProductChain(ctx context.Context, productID uuid.UUID) ([]appstock.AssignmentResponse, bool) {
	payload, err := c.client.Get(ctx, c.key(productID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("failed to read assignment chain from Redis",
				zap.String("product_id", productID.String()),
				zap.Error(err))
		}
		return nil, false
	}

	var chain []appstock.AssignmentResponse
	if err := json.Unmarshal(payload, &chain); err != nil {
		c.logger.Warn("corrupt assignment chain entry, dropping",
			zap.String("product_id", productID.String()),
			zap.Error(err))
		c.client.Del(ctx, c.key(productID))
		return nil, false
	}
	return chain, true
}

// SetProductChain stores the chain for a product
func (c *RedisAssignmentCache) SetProductChain(ctx context.Context, productID uuid.UUID, chain []appstock.AssignmentResponse) {
	payload, err := json.Marshal(chain)
	if err != nil {
		c.logger.Warn("failed to marshal assignment chain",
			zap.String("product_id", productID.String()),
			zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, c.key(productID), payload, c.ttl).Err(); err != nil {
		c.logger.Warn("failed to cache assignment chain",
			zap.String("product_id", productID.String()),
			zap.Error(err))
	}
}

// InvalidateProduct drops the cached chain for a product
func (c *RedisAssignmentCache) InvalidateProduct(ctx context.Context, productID uuid.UUID) {
	if err := c.client.Del(ctx, c.key(productID)).Err(); err != nil {
		c.logger.Warn("failed to invalidate assignment chain",
			zap.String("product_id", productID.String()),
			zap.Error(err))
	}
}

// Close closes the Redis client
func (c *RedisAssignmentCache) Close() error {
	return c.client.Close()
}

var _ appstock.AssignmentCache = (*RedisAssignmentCache)(nil)
