package stock

import (
	"time"

	"github.com/google/uuid"
	"github.com/resto/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// LedgerStatus tracks whether a ledger's deductions are live or undone
type LedgerStatus string

const (
	LedgerStatusActive   LedgerStatus = "ACTIVE"
	LedgerStatusReversed LedgerStatus = "REVERSED"
)

// AllocationEntry records one station deduction inside a ledger.
// Station and amount are frozen at allocation time so reversal restores
// exactly what was taken even after priorities or activity flags change.
type AllocationEntry struct {
	shared.BaseEntity
	LedgerID     uuid.UUID       `gorm:"type:uuid;index"`
	AssignmentID uuid.UUID       `gorm:"type:uuid"`
	StationID    uuid.UUID       `gorm:"type:uuid"`
	Quantity     decimal.Decimal `gorm:"type:decimal(12,2)"`
}

// TableName returns the table name for GORM
func (AllocationEntry) TableName() string {
	return "allocation_entries"
}

// AllocationLedger is the persisted record of the deductions made to satisfy
// one order item's stock request. Each item carries at most one ledger; an
// empty ledger (no entries) marks a product that does not track inventory.
type AllocationLedger struct {
	shared.BaseAggregateRoot
	OrderID     uuid.UUID         `gorm:"type:uuid;index"`
	OrderItemID uuid.UUID         `gorm:"type:uuid;uniqueIndex:idx_ledger_order_item"`
	ProductID   uuid.UUID         `gorm:"type:uuid;index"`
	Quantity    decimal.Decimal   `gorm:"type:decimal(12,2)"`
	Status      LedgerStatus
	Entries     []AllocationEntry `gorm:"foreignKey:LedgerID;references:ID"`
	ReversedAt  *time.Time
}

// TableName returns the table name for GORM
func (AllocationLedger) TableName() string {
	return "allocation_ledgers"
}

// NewAllocationLedger records the deductions planned for one order item
func NewAllocationLedger(orderID, orderItemID, productID uuid.UUID, quantity decimal.Decimal, deductions []PlannedDeduction) *AllocationLedger {
	ledger := &AllocationLedger{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderID:           orderID,
		OrderItemID:       orderItemID,
		ProductID:         productID,
		Quantity:          quantity,
		Status:            LedgerStatusActive,
		Entries:           make([]AllocationEntry, 0, len(deductions)),
	}
	for _, d := range deductions {
		ledger.Entries = append(ledger.Entries, AllocationEntry{
			BaseEntity:   shared.NewBaseEntity(),
			LedgerID:     ledger.ID,
			AssignmentID: d.AssignmentID,
			StationID:    d.StationID,
			Quantity:     d.Quantity,
		})
	}
	return ledger
}

// NewEmptyLedger marks an item whose product does not track inventory
func NewEmptyLedger(orderID, orderItemID, productID uuid.UUID, quantity decimal.Decimal) *AllocationLedger {
	return NewAllocationLedger(orderID, orderItemID, productID, quantity, nil)
}

// IsEmpty reports whether the ledger holds no deductions
func (l *AllocationLedger) IsEmpty() bool {
	return len(l.Entries) == 0
}

// IsReversed reports whether the deductions were already undone
func (l *AllocationLedger) IsReversed() bool {
	return l.Status == LedgerStatusReversed
}

// AllocatedTotal sums the recorded deductions
func (l *AllocationLedger) AllocatedTotal() decimal.Decimal {
	total := decimal.Zero
	for idx := range l.Entries {
		total = total.Add(l.Entries[idx].Quantity)
	}
	return total
}

// MarkReversed flips the ledger to REVERSED. Reversing twice is an error so
// a retried cancellation never double-credits a station.
func (l *AllocationLedger) MarkReversed() error {
	if l.Status == LedgerStatusReversed {
		return shared.NewDomainError("LEDGER_ALREADY_REVERSED", "Allocation ledger was already reversed")
	}
	now := time.Now()
	l.Status = LedgerStatusReversed
	l.ReversedAt = &now
	l.UpdatedAt = now
	return nil
}
