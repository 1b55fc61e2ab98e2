package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/resto/backend/internal/domain/shared"
	"github.com/resto/backend/internal/domain/stock"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormAllocationEngine implements AllocationService on top of Postgres row
// locks. Each call runs as one transaction: the product's chain rows are
// locked FOR UPDATE, the plan is computed against the locked snapshot and
// the deductions plus the ledger commit together. Two waiters racing for
// the last portion serialize on the row locks, so stock never goes below
// zero unless the product allows it.
type GormAllocationEngine struct {
	db       *gorm.DB
	policies stock.ProductPolicyProvider
}

// NewGormAllocationEngine creates a new GormAllocationEngine
func NewGormAllocationEngine(db *gorm.DB, policies stock.ProductPolicyProvider) *GormAllocationEngine {
	return &GormAllocationEngine{db: db, policies: policies}
}

// Allocate satisfies quantity for an order item across the product's pools
// and persists the resulting ledger. Re-allocating an item whose ledger is
// still active returns the existing ledger, so a retried send never deducts
// twice.
//
// The allocation event and any below-minimum alerts are staged on the
// returned ledger; callers publish them once their own transaction commits.
func (e *GormAllocationEngine) Allocate(ctx context.Context, orderID, orderItemID, productID uuid.UUID, quantity decimal.Decimal) (*stock.AllocationLedger, error) {
	var ledger *stock.AllocationLedger

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ledgerRepo := NewGormAllocationLedgerRepository(tx)

		existing, err := ledgerRepo.FindByOrderItem(ctx, orderItemID)
		if err == nil && !existing.IsReversed() {
			ledger = existing
			return nil
		}
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return err
		}

		policy, err := e.policies.PolicyFor(ctx, productID)
		if err != nil {
			return err
		}
		if !policy.TrackInventory {
			ledger = stock.NewEmptyLedger(orderID, orderItemID, productID, quantity)
			return ledgerRepo.Save(ctx, ledger)
		}

		var pools []*stock.StockAssignment
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("product_id = ? AND is_active = ?", productID, true).
			Order("priority ASC, created_at ASC").
			Find(&pools).Error; err != nil {
			return err
		}

		plan, err := stock.Plan(productID, pools, quantity, policy.AllowNegativeStock)
		if err != nil {
			return err
		}

		poolsByID := make(map[uuid.UUID]*stock.StockAssignment, len(pools))
		for _, pool := range pools {
			poolsByID[pool.ID] = pool
		}

		now := time.Now()
		for _, d := range plan {
			result := tx.Model(&stock.StockAssignment{}).
				Where("id = ?", d.AssignmentID).
				Updates(map[string]interface{}{
					"stock":      gorm.Expr("stock - ?", d.Quantity),
					"updated_at": now,
				})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("stock assignment %s vanished during allocation", d.AssignmentID)
			}
			// Mirror the decrement on the locked snapshot; the row lock
			// guarantees it matches the committed value. Deduct stages a
			// below-minimum event when the pool crosses its threshold.
			if pool := poolsByID[d.AssignmentID]; pool != nil {
				if err := pool.Deduct(d.Quantity); err != nil {
					return err
				}
			}
		}

		ledger = stock.NewAllocationLedger(orderID, orderItemID, productID, quantity, plan)
		ledger.AddDomainEvent(stock.NewStockAllocatedEvent(ledger))
		for _, pool := range pools {
			for _, event := range pool.GetDomainEvents() {
				ledger.AddDomainEvent(event)
			}
			pool.ClearDomainEvents()
		}
		return ledgerRepo.Save(ctx, ledger)
	})
	if err != nil {
		return nil, err
	}
	return ledger, nil
}

// Reverse restores exactly the recorded deductions of a ledger and marks it
// REVERSED. The restore goes to the entries' original stations even when
// priorities or activity flags changed since allocation. The reversal event
// is staged on the ledger for the caller to publish after commit.
func (e *GormAllocationEngine) Reverse(ctx context.Context, ledger *stock.AllocationLedger) error {
	if err := ledger.MarkReversed(); err != nil {
		return err
	}
	ledger.AddDomainEvent(stock.NewStockReversedEvent(ledger))

	return e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		for idx := range ledger.Entries {
			entry := &ledger.Entries[idx]
			result := tx.Model(&stock.StockAssignment{}).
				Where("id = ?", entry.AssignmentID).
				Updates(map[string]interface{}{
					"stock":      gorm.Expr("stock + ?", entry.Quantity),
					"updated_at": now,
				})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("stock assignment %s vanished during reversal", entry.AssignmentID)
			}
		}
		return NewGormAllocationLedgerRepository(tx).Update(ctx, ledger)
	})
}

// Ensure GormAllocationEngine implements AllocationService
var _ stock.AllocationService = (*GormAllocationEngine)(nil)
