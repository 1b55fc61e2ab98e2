package ordering

import (
	"context"

	"github.com/google/uuid"
	"github.com/resto/backend/internal/domain/shared"
)

// OrderRepository is the persistence port for the Order aggregate
type OrderRepository interface {
	// FindByID loads an order with its items and persons
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByOrderNumber loads an order by its human-facing number
	FindByOrderNumber(ctx context.Context, orderNumber string) (*Order, error)

	// FindAll lists orders matching the filter
	FindAll(ctx context.Context, filter OrderFilter) (*shared.Paginated[Order], error)

	// Save inserts a new order
	Save(ctx context.Context, order *Order) error

	// SaveWithVersion commits a mutation only when the stored version still
	// equals order.Version, then bumps it by one. Returns
	// shared.ErrStaleVersion when another writer got there first; callers
	// reload and retry or surface a conflict.
	SaveWithVersion(ctx context.Context, order *Order) error

	// GenerateOrderNumber issues the next sequential number for the year
	GenerateOrderNumber(ctx context.Context) (string, error)

	// CountByStatus returns order counts grouped by status
	CountByStatus(ctx context.Context) (map[OrderStatus]int64, error)
}

// OrderFilter narrows order listings
type OrderFilter struct {
	shared.Filter
	Status      *OrderStatus
	TableNumber *string
	WaiterID    *uuid.UUID
	OpenOnly    bool
}

// CancellationLogRepository persists the immutable cancellation audit trail
type CancellationLogRepository interface {
	// Save inserts a log entry. Logs are never updated or deleted.
	Save(ctx context.Context, log *OrderCancellationLog) error

	// FindByOrderID returns all cancellation entries for an order
	FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]OrderCancellationLog, error)
}
