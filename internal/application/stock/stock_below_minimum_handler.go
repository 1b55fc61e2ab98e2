package stock

import (
	"context"
	"fmt"

	"github.com/resto/backend/internal/domain/shared"
	"github.com/resto/backend/internal/domain/stock"
	"go.uber.org/zap"
)

// StockBelowMinimumHandler reacts to pools crossing their alert threshold.
// The threshold is informational: allocation already went through, this
// handler only raises the alarm for replenishment.
type StockBelowMinimumHandler struct {
	logger   *zap.Logger
	notifier StockAlertNotifier
}

// StockAlertNotifier is the interface for sending low-stock alerts.
// Implementations can support different channels (in-app, email, SMS).
type StockAlertNotifier interface {
	// SendAlert sends a low-stock alert
	SendAlert(ctx context.Context, alert StockAlert) error
}

// StockAlert represents a low-stock alert
type StockAlert struct {
	ProductID string `json:"product_id"`
	StationID string `json:"station_id"`
	Stock     string `json:"stock"`
	MinStock  string `json:"min_stock"`
	AlertType string `json:"alert_type"` // "low_stock", "out_of_stock"
}

// NewStockBelowMinimumHandler creates a new handler for low-stock events
func NewStockBelowMinimumHandler(logger *zap.Logger) *StockBelowMinimumHandler {
	return &StockBelowMinimumHandler{logger: logger}
}

// WithNotifier sets the notifier for sending alerts
func (h *StockBelowMinimumHandler) WithNotifier(notifier StockAlertNotifier) *StockBelowMinimumHandler {
	h.notifier = notifier
	return h
}

// EventTypes returns the event types this handler is interested in
func (h *StockBelowMinimumHandler) EventTypes() []string {
	return []string{stock.EventStockBelowMinimum}
}

// Handle processes a StockBelowMinimumEvent
func (h *StockBelowMinimumHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	belowEvent, ok := event.(*stock.StockBelowMinimumEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", stock.EventStockBelowMinimum),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			stock.EventStockBelowMinimum, event.EventType())
	}

	h.logger.Warn("stock below minimum detected",
		zap.String("product_id", belowEvent.ProductID.String()),
		zap.String("station_id", belowEvent.StationID.String()),
		zap.String("stock", belowEvent.Stock.String()),
		zap.String("min_stock", belowEvent.MinStock.String()),
	)

	alertType := "low_stock"
	if !belowEvent.Stock.IsPositive() {
		alertType = "out_of_stock"
	}

	if h.notifier != nil {
		alert := StockAlert{
			ProductID: belowEvent.ProductID.String(),
			StationID: belowEvent.StationID.String(),
			Stock:     belowEvent.Stock.String(),
			MinStock:  belowEvent.MinStock.String(),
			AlertType: alertType,
		}
		if err := h.notifier.SendAlert(ctx, alert); err != nil {
			h.logger.Error("failed to send stock alert",
				zap.String("product_id", alert.ProductID),
				zap.Error(err),
			)
			// notification failure does not fail the event handling
		}
	}

	return nil
}

// Ensure StockBelowMinimumHandler implements shared.EventHandler
var _ shared.EventHandler = (*StockBelowMinimumHandler)(nil)

// LoggingStockAlertNotifier logs alerts instead of sending them.
// Useful for development and testing.
type LoggingStockAlertNotifier struct {
	logger *zap.Logger
}

// NewLoggingStockAlertNotifier creates a new logging notifier
func NewLoggingStockAlertNotifier(logger *zap.Logger) *LoggingStockAlertNotifier {
	return &LoggingStockAlertNotifier{logger: logger}
}

// SendAlert logs the stock alert
func (n *LoggingStockAlertNotifier) SendAlert(_ context.Context, alert StockAlert) error {
	n.logger.Warn("STOCK ALERT",
		zap.String("type", alert.AlertType),
		zap.String("product_id", alert.ProductID),
		zap.String("station_id", alert.StationID),
		zap.String("stock", alert.Stock),
		zap.String("min_stock", alert.MinStock),
	)
	return nil
}

// Ensure LoggingStockAlertNotifier implements StockAlertNotifier
var _ StockAlertNotifier = (*LoggingStockAlertNotifier)(nil)
