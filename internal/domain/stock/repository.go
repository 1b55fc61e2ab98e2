package stock

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockAssignmentRepository is the persistence port for stock pools
type StockAssignmentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*StockAssignment, error)

	// FindByProduct returns all pools for a product, active or not
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]*StockAssignment, error)

	// FindActiveByProduct returns the active fallback chain ordered by
	// priority ascending, creation time breaking ties
	FindActiveByProduct(ctx context.Context, productID uuid.UUID) ([]*StockAssignment, error)

	// FindByStation returns all pools held at a station
	FindByStation(ctx context.Context, stationID uuid.UUID) ([]*StockAssignment, error)

	// FindBelowMinimum returns active pools under their alert threshold
	FindBelowMinimum(ctx context.Context) ([]*StockAssignment, error)

	Save(ctx context.Context, assignment *StockAssignment) error
	Update(ctx context.Context, assignment *StockAssignment) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// AllocationLedgerRepository persists allocation ledgers
type AllocationLedgerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*AllocationLedger, error)

	// FindByOrderItem returns the item's ledger, shared.ErrNotFound if none
	FindByOrderItem(ctx context.Context, orderItemID uuid.UUID) (*AllocationLedger, error)

	// FindActiveByOrder returns every non-reversed ledger of an order
	FindActiveByOrder(ctx context.Context, orderID uuid.UUID) ([]*AllocationLedger, error)

	Save(ctx context.Context, ledger *AllocationLedger) error
	Update(ctx context.Context, ledger *AllocationLedger) error
}

// ProductPolicy is the slice of the catalog the allocator needs
type ProductPolicy struct {
	ProductID          uuid.UUID
	TrackInventory     bool
	AllowNegativeStock bool
}

// ProductPolicyProvider resolves allocation policy for a product.
// Implemented by the catalog so the allocator never imports it.
type ProductPolicyProvider interface {
	PolicyFor(ctx context.Context, productID uuid.UUID) (ProductPolicy, error)
}

// AllocationService is the engine port. Implementations run each call as
// one atomic unit: row locks on the touched pools, deductions (or
// restores) and the ledger write commit together or not at all.
type AllocationService interface {
	// Allocate satisfies quantity for an order item across the product's
	// pools and persists the resulting ledger. A product that does not
	// track inventory yields an empty ledger and touches nothing.
	Allocate(ctx context.Context, orderID, orderItemID, productID uuid.UUID, quantity decimal.Decimal) (*AllocationLedger, error)

	// Reverse restores exactly the recorded deductions of a ledger and
	// marks it REVERSED. Reversing an already reversed ledger fails.
	Reverse(ctx context.Context, ledger *AllocationLedger) error
}
