// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// PosMetrics provides business metrics for the point-of-sale backend.
// It tracks order activity, payments and stock pool health.
type PosMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counter metrics (monotonically increasing)
	orderOpenedTotal    *Counter
	orderCancelledTotal *Counter
	orderAmountTotal    *Counter
	paymentTotal        *Counter
	allocationTotal     *Counter
	shortfallTotal      *Counter

	// Gauge metrics (point-in-time values)
	poolsBelowMinimum *Gauge

	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	stockProvider StockMetricsProvider
}

// StockMetricsProvider provides stock pool data for periodic metrics
// collection. The interface lets the telemetry layer query pool health
// without depending on the stock domain directly.
type StockMetricsProvider interface {
	// GetBelowMinimumCount returns the number of active pools under their
	// alert threshold
	GetBelowMinimumCount(ctx context.Context) (int64, error)
}

// PosMetricsConfig holds configuration for POS metrics.
type PosMetricsConfig struct {
	Meter           metric.Meter
	Logger          *zap.Logger
	CollectInterval time.Duration // Default: 1 minute
	StockProvider   StockMetricsProvider
}

// NewPosMetrics creates a new PosMetrics instance.
func NewPosMetrics(cfg PosMetricsConfig) (*PosMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	pm := &PosMetrics{
		meter:         cfg.Meter,
		logger:        logger,
		stopChan:      make(chan struct{}),
		stockProvider: cfg.StockProvider,
	}

	var err error

	pm.orderOpenedTotal, err = NewCounter(
		cfg.Meter,
		"resto_order_opened_total",
		"Total number of orders opened",
		"{orders}",
	)
	if err != nil {
		return nil, err
	}

	pm.orderCancelledTotal, err = NewCounter(
		cfg.Meter,
		"resto_order_cancelled_total",
		"Total number of orders cancelled",
		"{orders}",
	)
	if err != nil {
		return nil, err
	}

	pm.orderAmountTotal, err = NewCounter(
		cfg.Meter,
		"resto_order_amount_total",
		"Total completed order amount in cents",
		"{cents}",
	)
	if err != nil {
		return nil, err
	}

	pm.paymentTotal, err = NewCounter(
		cfg.Meter,
		"resto_payment_total",
		"Total number of payment registrations",
		"{payments}",
	)
	if err != nil {
		return nil, err
	}

	pm.allocationTotal, err = NewCounter(
		cfg.Meter,
		"resto_stock_allocation_total",
		"Total number of stock allocations",
		"{allocations}",
	)
	if err != nil {
		return nil, err
	}

	pm.shortfallTotal, err = NewCounter(
		cfg.Meter,
		"resto_stock_shortfall_total",
		"Total number of allocations rejected for insufficient stock",
		"{allocations}",
	)
	if err != nil {
		return nil, err
	}

	pm.poolsBelowMinimum, err = NewGauge(
		cfg.Meter,
		"resto_stock_pools_below_minimum",
		"Number of active stock pools under their alert threshold",
		"{pools}",
	)
	if err != nil {
		return nil, err
	}

	return pm, nil
}

// RecordOrderOpened records an order being opened.
func (pm *PosMetrics) RecordOrderOpened(ctx context.Context) {
	pm.orderOpenedTotal.Inc(ctx)
}

// RecordOrderCancelled records an order cancellation.
func (pm *PosMetrics) RecordOrderCancelled(ctx context.Context) {
	pm.orderCancelledTotal.Inc(ctx)
}

// RecordOrderAmount records a completed order's total.
func (pm *PosMetrics) RecordOrderAmount(ctx context.Context, amount decimal.Decimal) {
	cents := amount.Mul(decimal.NewFromInt(100)).IntPart()
	pm.orderAmountTotal.Add(ctx, cents)
}

// RecordPayment records a payment registration or void.
func (pm *PosMetrics) RecordPayment(ctx context.Context, method, status string) {
	pm.paymentTotal.Inc(ctx,
		AttrPaymentMethod.String(method),
		AttrPaymentStatus.String(status),
	)
}

// RecordAllocation records a successful stock allocation.
func (pm *PosMetrics) RecordAllocation(ctx context.Context, productID string) {
	pm.allocationTotal.Inc(ctx, AttrProductID.String(productID))
}

// RecordShortfall records an allocation rejected for insufficient stock.
func (pm *PosMetrics) RecordShortfall(ctx context.Context, productID string) {
	pm.shortfallTotal.Inc(ctx, AttrProductID.String(productID))
}

// RecordPoolsBelowMinimum records the current count of pools under threshold.
func (pm *PosMetrics) RecordPoolsBelowMinimum(ctx context.Context, count int64) {
	pm.poolsBelowMinimum.Record(ctx, count)
}

// StartPeriodicCollection starts periodic collection of gauge metrics.
// Non-blocking; use Stop() to stop collection.
func (pm *PosMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration) {
	pm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = time.Minute
		}
		go pm.runPeriodicCollection(ctx, interval)
	})
}

func (pm *PosMetrics) runPeriodicCollection(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	pm.collectStockMetrics(ctx)

	for {
		select {
		case <-pm.stopChan:
			pm.logger.Info("Stopping periodic POS metrics collection")
			return
		case <-ctx.Done():
			pm.logger.Info("Context cancelled, stopping periodic POS metrics collection")
			return
		case <-ticker.C:
			pm.collectStockMetrics(ctx)
		}
	}
}

func (pm *PosMetrics) collectStockMetrics(ctx context.Context) {
	if pm.stockProvider == nil {
		pm.logger.Debug("No stock provider configured, skipping stock metrics collection")
		return
	}

	count, err := pm.stockProvider.GetBelowMinimumCount(ctx)
	if err != nil {
		pm.logger.Warn("Failed to get below-minimum pool count", zap.Error(err))
		return
	}
	pm.RecordPoolsBelowMinimum(ctx, count)
}

// Stop stops the periodic collection.
func (pm *PosMetrics) Stop() {
	pm.stopOnce.Do(func() {
		close(pm.stopChan)
	})
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewPosMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
