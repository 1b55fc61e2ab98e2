package stock

import (
	"time"

	"github.com/google/uuid"
	"github.com/resto/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// StockAssignment is one (product, station) stock pool. A product can hold
// several assignments, one per station; together they form the
// priority-ordered fallback chain the allocator walks. Stock is moved only
// by the allocation engine's atomic decrement/increment, never set directly
// from elsewhere.
type StockAssignment struct {
	shared.BaseAggregateRoot
	ProductID uuid.UUID `gorm:"type:uuid;index:idx_stock_assignment_product"`
	StationID uuid.UUID `gorm:"type:uuid;index:idx_stock_assignment_station"`
	// Stock has two fractional digits; it goes negative only for products
	// that allow it
	Stock    decimal.Decimal `gorm:"type:decimal(12,2)"`
	MinStock decimal.Decimal `gorm:"type:decimal(12,2)"`
	// Priority orders the fallback chain, lower is consumed first
	Priority int
	IsActive bool `gorm:"default:true"`
}

// TableName returns the table name for GORM
func (StockAssignment) TableName() string {
	return "product_stock_assignments"
}

// NewStockAssignment creates a stock pool for a product at a station
func NewStockAssignment(productID, stationID uuid.UUID, stock, minStock decimal.Decimal, priority int) (*StockAssignment, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID is required")
	}
	if stationID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_STATION", "Station ID is required")
	}
	if minStock.IsNegative() {
		return nil, shared.NewDomainError("INVALID_MIN_STOCK", "Minimum stock cannot be negative")
	}
	if priority < 0 {
		return nil, shared.NewDomainError("INVALID_PRIORITY", "Priority cannot be negative")
	}

	return &StockAssignment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProductID:         productID,
		StationID:         stationID,
		Stock:             stock.Round(2),
		MinStock:          minStock.Round(2),
		Priority:          priority,
		IsActive:          true,
	}, nil
}

// Deduct removes quantity from the pool. The min-stock threshold is an
// alerting line, not a floor, so deduction may cross it; going below zero
// is allowed because the allocator only sends a below-zero remainder here
// for products with negative stock enabled.
func (a *StockAssignment) Deduct(quantity decimal.Decimal) error {
	if !quantity.IsPositive() {
		return shared.NewDomainError("INVALID_QUANTITY", "Deduction quantity must be positive")
	}
	a.Stock = a.Stock.Sub(quantity)
	a.UpdatedAt = time.Now()

	if a.IsBelowMinimum() {
		a.AddDomainEvent(NewStockBelowMinimumEvent(a))
	}
	return nil
}

// Restore puts a previously deducted quantity back
func (a *StockAssignment) Restore(quantity decimal.Decimal) error {
	if !quantity.IsPositive() {
		return shared.NewDomainError("INVALID_QUANTITY", "Restore quantity must be positive")
	}
	a.Stock = a.Stock.Add(quantity)
	a.UpdatedAt = time.Now()
	return nil
}

// Replenish adds received stock to the pool
func (a *StockAssignment) Replenish(quantity decimal.Decimal) error {
	if !quantity.IsPositive() {
		return shared.NewDomainError("INVALID_QUANTITY", "Replenish quantity must be positive")
	}
	a.Stock = a.Stock.Add(quantity)
	a.UpdatedAt = time.Now()
	a.AddDomainEvent(NewStockReplenishedEvent(a, quantity))
	return nil
}

// SetMinStock updates the alerting threshold
func (a *StockAssignment) SetMinStock(minStock decimal.Decimal) error {
	if minStock.IsNegative() {
		return shared.NewDomainError("INVALID_MIN_STOCK", "Minimum stock cannot be negative")
	}
	a.MinStock = minStock.Round(2)
	a.UpdatedAt = time.Now()
	return nil
}

// SetPriority changes the position in the fallback chain
func (a *StockAssignment) SetPriority(priority int) error {
	if priority < 0 {
		return shared.NewDomainError("INVALID_PRIORITY", "Priority cannot be negative")
	}
	a.Priority = priority
	a.UpdatedAt = time.Now()
	return nil
}

// Activate puts the pool back into the fallback chain
func (a *StockAssignment) Activate() {
	a.IsActive = true
	a.UpdatedAt = time.Now()
}

// Deactivate removes the pool from the fallback chain. Existing ledgers
// still reverse against it.
func (a *StockAssignment) Deactivate() {
	a.IsActive = false
	a.UpdatedAt = time.Now()
}

// IsBelowMinimum reports whether stock fell under the alert threshold
func (a *StockAssignment) IsBelowMinimum() bool {
	return a.Stock.LessThan(a.MinStock)
}
