package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	appstock "github.com/resto/backend/internal/application/stock"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultChainTTL        = 30 * time.Second
	defaultCleanupInterval = 30 * time.Second
)

// InMemoryAssignmentCache caches product fallback chains in process memory.
// Suitable for single-instance deployments; multi-terminal setups sharing
// one backend still see consistent chains because every pool mutation
// invalidates the product entry.
type InMemoryAssignmentCache struct {
	chains  sync.Map // map[string]*chainEntry
	ttl     time.Duration
	logger  *zap.Logger
	stopCh  chan struct{}
	stopped int32

	// stats for monitoring
	hits   int64
	misses int64
}

type chainEntry struct {
	chain     []appstock.AssignmentResponse
	expiresAt time.Time
}

func (e *chainEntry) isExpired() bool {
	return time.Now().After(e.expiresAt)
}

// InMemoryAssignmentCacheOption is a functional option for configuring the cache
type InMemoryAssignmentCacheOption func(*InMemoryAssignmentCache)

// WithChainTTL sets how long a cached chain stays valid
func WithChainTTL(ttl time.Duration) InMemoryAssignmentCacheOption {
	return func(c *InMemoryAssignmentCache) {
		c.ttl = ttl
	}
}

// WithInMemoryLogger sets the logger for the cache
func WithInMemoryLogger(logger *zap.Logger) InMemoryAssignmentCacheOption {
	return func(c *InMemoryAssignmentCache) {
		c.logger = logger
	}
}

// NewInMemoryAssignmentCache creates a new in-memory assignment chain cache
func NewInMemoryAssignmentCache(opts ...InMemoryAssignmentCacheOption) *InMemoryAssignmentCache {
	cache := &InMemoryAssignmentCache{
		ttl:    defaultChainTTL,
		logger: zap.NewNop(),
		stopCh: make(chan struct{}),
	}

	for _, opt := range opts {
		opt(cache)
	}

	go cache.cleanupExpired()

	return cache
}

func chainKey(productID uuid.UUID) string {
	return "chain:" + productID.String()
}

// GetProductChain returns the cached chain and whether it was present
func (c *InMemoryAssignmentCache) GetProductChain(_ context.Context, productID uuid.UUID) ([]appstock.AssignmentResponse, bool) {
	key := chainKey(productID)

	if value, ok := c.chains.Load(key); ok {
		entry := value.(*chainEntry)
		if !entry.isExpired() {
			atomic.AddInt64(&c.hits, 1)
			return entry.chain, true
		}
		c.chains.Delete(key)
	}

	atomic.AddInt64(&c.misses, 1)
	return nil, false
}

// SetProductChain stores the chain for a product
func (c *InMemoryAssignmentCache) SetProductChain(_ context.Context, productID uuid.UUID, chain []appstock.AssignmentResponse) {
	c.chains.Store(chainKey(productID), &chainEntry{
		chain:     chain,
		expiresAt: time.Now().Add(c.ttl),
	})
}

// InvalidateProduct drops the cached chain for a product
func (c *InMemoryAssignmentCache) InvalidateProduct(_ context.Context, productID uuid.UUID) {
	c.chains.Delete(chainKey(productID))
	c.logger.Debug("invalidated assignment chain",
		zap.String("product_id", productID.String()))
}

// Close stops the background cleanup goroutine
func (c *InMemoryAssignmentCache) Close() error {
	if atomic.CompareAndSwapInt32(&c.stopped, 0, 1) {
		close(c.stopCh)
	}
	return nil
}

// Stats returns cache hit and miss counters
func (c *InMemoryAssignmentCache) Stats() (hits, misses int64) {
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}

func (c *InMemoryAssignmentCache) cleanupExpired() {
	ticker := time.NewTicker(defaultCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.doCleanup()
		}
	}
}

func (c *InMemoryAssignmentCache) doCleanup() {
	var removed int
	c.chains.Range(func(key, value any) bool {
		if value.(*chainEntry).isExpired() {
			c.chains.Delete(key)
			removed++
		}
		return true
	})
	if removed > 0 {
		c.logger.Debug("cleaned up expired chain entries", zap.Int("removed", removed))
	}
}

var _ appstock.AssignmentCache = (*InMemoryAssignmentCache)(nil)
