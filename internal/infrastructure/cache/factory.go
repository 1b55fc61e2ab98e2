package cache

import (
	appstock "github.com/resto/backend/internal/application/stock"
	"github.com/resto/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// NewAssignmentCache creates an assignment chain cache based on configuration.
// When Redis is enabled it is tried first; on connection failure the cache
// falls back to the in-process implementation with a warning, since a cold
// cache only costs an extra repository read.
func NewAssignmentCache(cfg config.RedisConfig, logger *zap.Logger) appstock.AssignmentCache {
	if cfg.Enabled {
		redisCache, err := NewRedisAssignmentCache(cfg, logger)
		if err == nil {
			logger.Info("using Redis assignment chain cache", zap.String("addr", cfg.Addr()))
			return redisCache
		}
		logger.Warn("Redis unavailable, falling back to in-memory assignment chain cache",
			zap.Error(err))
	}
	return NewInMemoryAssignmentCache(WithInMemoryLogger(logger))
}
