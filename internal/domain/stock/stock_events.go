package stock

import (
	"github.com/google/uuid"
	"github.com/resto/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const (
	EventStockAllocated    = "stock.allocated"
	EventStockReversed     = "stock.reversed"
	EventStockBelowMinimum = "stock.below_minimum"
	EventStockReplenished  = "stock.replenished"
)

// StockAllocatedEvent fires after a ledger's deductions are committed
type StockAllocatedEvent struct {
	shared.BaseDomainEvent
	ProductID   uuid.UUID       `json:"product_id"`
	OrderID     uuid.UUID       `json:"order_id"`
	OrderItemID uuid.UUID       `json:"order_item_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	Stations    int             `json:"stations"`
}

// NewStockAllocatedEvent creates a StockAllocatedEvent
func NewStockAllocatedEvent(ledger *AllocationLedger) *StockAllocatedEvent {
	return &StockAllocatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventStockAllocated, "AllocationLedger", ledger.ID),
		ProductID:       ledger.ProductID,
		OrderID:         ledger.OrderID,
		OrderItemID:     ledger.OrderItemID,
		Quantity:        ledger.Quantity,
		Stations:        len(ledger.Entries),
	}
}

// StockReversedEvent fires after a ledger's deductions are restored
type StockReversedEvent struct {
	shared.BaseDomainEvent
	ProductID   uuid.UUID       `json:"product_id"`
	OrderID     uuid.UUID       `json:"order_id"`
	OrderItemID uuid.UUID       `json:"order_item_id"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// NewStockReversedEvent creates a StockReversedEvent
func NewStockReversedEvent(ledger *AllocationLedger) *StockReversedEvent {
	return &StockReversedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventStockReversed, "AllocationLedger", ledger.ID),
		ProductID:       ledger.ProductID,
		OrderID:         ledger.OrderID,
		OrderItemID:     ledger.OrderItemID,
		Quantity:        ledger.Quantity,
	}
}

// StockBelowMinimumEvent fires when a deduction pushes a pool under its
// alert threshold. Purely informational, allocation is never blocked by it.
type StockBelowMinimumEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID       `json:"product_id"`
	StationID uuid.UUID       `json:"station_id"`
	Stock     decimal.Decimal `json:"stock"`
	MinStock  decimal.Decimal `json:"min_stock"`
}

// NewStockBelowMinimumEvent creates a StockBelowMinimumEvent
func NewStockBelowMinimumEvent(a *StockAssignment) *StockBelowMinimumEvent {
	return &StockBelowMinimumEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventStockBelowMinimum, "StockAssignment", a.ID),
		ProductID:       a.ProductID,
		StationID:       a.StationID,
		Stock:           a.Stock,
		MinStock:        a.MinStock,
	}
}

// StockReplenishedEvent fires when a pool receives stock
type StockReplenishedEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID       `json:"product_id"`
	StationID uuid.UUID       `json:"station_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	Stock     decimal.Decimal `json:"stock"`
}

// NewStockReplenishedEvent creates a StockReplenishedEvent
func NewStockReplenishedEvent(a *StockAssignment, quantity decimal.Decimal) *StockReplenishedEvent {
	return &StockReplenishedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventStockReplenished, "StockAssignment", a.ID),
		ProductID:       a.ProductID,
		StationID:       a.StationID,
		Quantity:        quantity,
		Stock:           a.Stock,
	}
}
