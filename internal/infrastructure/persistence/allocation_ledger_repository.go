package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/resto/backend/internal/domain/shared"
	"github.com/resto/backend/internal/domain/stock"
	"gorm.io/gorm"
)

// GormAllocationLedgerRepository implements AllocationLedgerRepository using GORM
type GormAllocationLedgerRepository struct {
	db *gorm.DB
}

// NewGormAllocationLedgerRepository creates a new GormAllocationLedgerRepository
func NewGormAllocationLedgerRepository(db *gorm.DB) *GormAllocationLedgerRepository {
	return &GormAllocationLedgerRepository{db: db}
}

// FindByID finds a ledger with its entries
func (r *GormAllocationLedgerRepository) FindByID(ctx context.Context, id uuid.UUID) (*stock.AllocationLedger, error) {
	var ledger stock.AllocationLedger
	if err := r.db.WithContext(ctx).
		Preload("Entries").
		First(&ledger, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &ledger, nil
}

// FindByOrderItem returns the item's ledger, shared.ErrNotFound if none
func (r *GormAllocationLedgerRepository) FindByOrderItem(ctx context.Context, orderItemID uuid.UUID) (*stock.AllocationLedger, error) {
	var ledger stock.AllocationLedger
	if err := r.db.WithContext(ctx).
		Preload("Entries").
		Where("order_item_id = ?", orderItemID).
		First(&ledger).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &ledger, nil
}

// FindActiveByOrder returns every non-reversed ledger of an order
func (r *GormAllocationLedgerRepository) FindActiveByOrder(ctx context.Context, orderID uuid.UUID) ([]*stock.AllocationLedger, error) {
	var ledgers []*stock.AllocationLedger
	if err := r.db.WithContext(ctx).
		Preload("Entries").
		Where("order_id = ? AND status <> ?", orderID, stock.LedgerStatusReversed).
		Find(&ledgers).Error; err != nil {
		return nil, err
	}
	return ledgers, nil
}

// Save inserts a ledger together with its entries
func (r *GormAllocationLedgerRepository) Save(ctx context.Context, ledger *stock.AllocationLedger) error {
	return r.db.WithContext(ctx).Create(ledger).Error
}

// Update persists a status change. Entries are frozen at allocation time,
// so only the ledger row is written.
func (r *GormAllocationLedgerRepository) Update(ctx context.Context, ledger *stock.AllocationLedger) error {
	result := r.db.WithContext(ctx).
		Model(&stock.AllocationLedger{}).
		Where("id = ?", ledger.ID).
		Updates(map[string]interface{}{
			"status":      ledger.Status,
			"reversed_at": ledger.ReversedAt,
			"updated_at":  ledger.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormAllocationLedgerRepository implements AllocationLedgerRepository
var _ stock.AllocationLedgerRepository = (*GormAllocationLedgerRepository)(nil)
