package stock

import (
	"time"

	"github.com/google/uuid"
	"github.com/resto/backend/internal/domain/stock"
	"github.com/shopspring/decimal"
)

// CreateAssignmentRequest creates a stock pool for a product at a station
type CreateAssignmentRequest struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	StationID uuid.UUID       `json:"station_id" binding:"required"`
	Stock     decimal.Decimal `json:"stock"`
	MinStock  decimal.Decimal `json:"min_stock"`
	Priority  int             `json:"priority"`
}

// AdjustAssignmentRequest edits a pool's threshold, priority or activity
type AdjustAssignmentRequest struct {
	MinStock *decimal.Decimal `json:"min_stock"`
	Priority *int             `json:"priority"`
	IsActive *bool            `json:"is_active"`
}

// ReplenishRequest adds received stock to a pool
type ReplenishRequest struct {
	Quantity decimal.Decimal `json:"quantity" binding:"required"`
}

// AssignmentResponse is the API shape of a stock pool
type AssignmentResponse struct {
	ID           uuid.UUID       `json:"id"`
	ProductID    uuid.UUID       `json:"product_id"`
	StationID    uuid.UUID       `json:"station_id"`
	Stock        decimal.Decimal `json:"stock"`
	MinStock     decimal.Decimal `json:"min_stock"`
	Priority     int             `json:"priority"`
	IsActive     bool            `json:"is_active"`
	BelowMinimum bool            `json:"below_minimum"`
}

// LedgerEntryResponse is the API shape of one recorded deduction
type LedgerEntryResponse struct {
	StationID uuid.UUID       `json:"station_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// LedgerResponse is the API shape of an allocation ledger
type LedgerResponse struct {
	ID          uuid.UUID             `json:"id"`
	OrderID     uuid.UUID             `json:"order_id"`
	OrderItemID uuid.UUID             `json:"order_item_id"`
	ProductID   uuid.UUID             `json:"product_id"`
	Quantity    decimal.Decimal       `json:"quantity"`
	Status      string                `json:"status"`
	Entries     []LedgerEntryResponse `json:"entries"`
	ReversedAt  *time.Time            `json:"reversed_at,omitempty"`
}

// ToAssignmentResponse maps a stock pool to its API shape
func ToAssignmentResponse(a *stock.StockAssignment) AssignmentResponse {
	return AssignmentResponse{
		ID:           a.ID,
		ProductID:    a.ProductID,
		StationID:    a.StationID,
		Stock:        a.Stock,
		MinStock:     a.MinStock,
		Priority:     a.Priority,
		IsActive:     a.IsActive,
		BelowMinimum: a.IsBelowMinimum(),
	}
}

// ToLedgerResponse maps an allocation ledger to its API shape
func ToLedgerResponse(l *stock.AllocationLedger) LedgerResponse {
	entries := make([]LedgerEntryResponse, 0, len(l.Entries))
	for idx := range l.Entries {
		entries = append(entries, LedgerEntryResponse{
			StationID: l.Entries[idx].StationID,
			Quantity:  l.Entries[idx].Quantity,
		})
	}
	return LedgerResponse{
		ID:          l.ID,
		OrderID:     l.OrderID,
		OrderItemID: l.OrderItemID,
		ProductID:   l.ProductID,
		Quantity:    l.Quantity,
		Status:      string(l.Status),
		Entries:     entries,
		ReversedAt:  l.ReversedAt,
	}
}
