package event

import (
	"context"

	"github.com/resto/backend/internal/domain/ordering"
	"github.com/resto/backend/internal/domain/payments"
	"github.com/resto/backend/internal/domain/shared"
	"github.com/resto/backend/internal/domain/stock"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BusinessMetrics receives counters for notable domain activity. The
// telemetry layer implements it, so this handler never touches the OTEL
// SDK directly.
type BusinessMetrics interface {
	RecordOrderOpened(ctx context.Context)
	RecordOrderCancelled(ctx context.Context)
	RecordOrderAmount(ctx context.Context, amount decimal.Decimal)
	RecordPayment(ctx context.Context, method, status string)
	RecordAllocation(ctx context.Context, productID string)
}

// MetricsHandler projects domain events onto business metrics. Recording
// never fails the publishing transaction; a metric is worth less than a
// committed order.
type MetricsHandler struct {
	metrics BusinessMetrics
	logger  *zap.Logger
}

// NewMetricsHandler creates a MetricsHandler.
func NewMetricsHandler(metrics BusinessMetrics, logger *zap.Logger) *MetricsHandler {
	return &MetricsHandler{metrics: metrics, logger: logger}
}

// EventTypes returns the event types this handler is interested in.
func (h *MetricsHandler) EventTypes() []string {
	return []string{
		ordering.EventOrderOpened,
		ordering.EventOrderCompleted,
		ordering.EventOrderCancelled,
		payments.EventPaymentRegistered,
		payments.EventPaymentVoided,
		stock.EventStockAllocated,
	}
}

// Handle records the metric matching the event.
func (h *MetricsHandler) Handle(ctx context.Context, e shared.DomainEvent) error {
	switch ev := e.(type) {
	case *ordering.OrderOpenedEvent:
		h.metrics.RecordOrderOpened(ctx)
	case *ordering.OrderCompletedEvent:
		h.metrics.RecordOrderAmount(ctx, ev.TotalAmount)
	case *ordering.OrderCancelledEvent:
		h.metrics.RecordOrderCancelled(ctx)
	case *payments.PaymentRegisteredEvent:
		h.metrics.RecordPayment(ctx, string(ev.Method), "registered")
	case *payments.PaymentVoidedEvent:
		// the void event carries no method, the status label is enough
		h.metrics.RecordPayment(ctx, "", "voided")
	case *stock.StockAllocatedEvent:
		h.metrics.RecordAllocation(ctx, ev.ProductID.String())
	default:
		h.logger.Debug("no metrics projection for event",
			zap.String("event_type", e.EventType()),
		)
	}
	return nil
}

var _ shared.EventHandler = (*MetricsHandler)(nil)
