package stock

import (
	"context"

	"github.com/resto/backend/internal/domain/shared"
	"github.com/resto/backend/internal/domain/stock"
	"go.uber.org/zap"
)

// CacheInvalidationHandler drops cached assignment chains whenever an
// allocation, reversal or replenishment moves stock for a product
type CacheInvalidationHandler struct {
	cache  AssignmentCache
	logger *zap.Logger
}

// NewCacheInvalidationHandler creates a new CacheInvalidationHandler
func NewCacheInvalidationHandler(cache AssignmentCache, logger *zap.Logger) *CacheInvalidationHandler {
	return &CacheInvalidationHandler{cache: cache, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *CacheInvalidationHandler) EventTypes() []string {
	return []string{
		stock.EventStockAllocated,
		stock.EventStockReversed,
		stock.EventStockReplenished,
	}
}

// Handle invalidates the product's cached chain
func (h *CacheInvalidationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *stock.StockAllocatedEvent:
		h.cache.InvalidateProduct(ctx, e.ProductID)
	case *stock.StockReversedEvent:
		h.cache.InvalidateProduct(ctx, e.ProductID)
	case *stock.StockReplenishedEvent:
		h.cache.InvalidateProduct(ctx, e.ProductID)
	default:
		h.logger.Debug("ignoring event without product scope",
			zap.String("event_type", event.EventType()),
		)
	}
	return nil
}

// Ensure CacheInvalidationHandler implements shared.EventHandler
var _ shared.EventHandler = (*CacheInvalidationHandler)(nil)
