package ordering

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/resto/backend/internal/domain/shared"
	"github.com/resto/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// ItemStatus represents the preparation lifecycle of one order line
type ItemStatus string

const (
	ItemStatusPending   ItemStatus = "PENDING"
	ItemStatusPreparing ItemStatus = "PREPARING"
	ItemStatusReady     ItemStatus = "READY"
	ItemStatusServed    ItemStatus = "SERVED"
	ItemStatusCancelled ItemStatus = "CANCELLED"
)

// IsValid checks if the status is a valid ItemStatus
func (s ItemStatus) IsValid() bool {
	switch s {
	case ItemStatusPending, ItemStatusPreparing, ItemStatusReady, ItemStatusServed, ItemStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of ItemStatus
func (s ItemStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the item status can move to the target status
func (s ItemStatus) CanTransitionTo(target ItemStatus) bool {
	if s == ItemStatusServed || s == ItemStatusCancelled {
		return false
	}
	if target == ItemStatusCancelled {
		return true
	}
	switch s {
	case ItemStatusPending:
		return target == ItemStatusPreparing
	case ItemStatusPreparing:
		return target == ItemStatusReady
	case ItemStatusReady:
		return target == ItemStatusServed
	}
	return false
}

// KitchenStatus tracks an item through the kitchen display pipeline,
// independently of the commercial item status
type KitchenStatus string

const (
	// KitchenStatusQueued means the item exists but was not sent yet
	KitchenStatusQueued     KitchenStatus = "QUEUED"
	KitchenStatusSent       KitchenStatus = "SENT"
	KitchenStatusInProgress KitchenStatus = "IN_PROGRESS"
	KitchenStatusDone       KitchenStatus = "DONE"
)

// IsValid checks if the status is a valid KitchenStatus
func (s KitchenStatus) IsValid() bool {
	switch s {
	case KitchenStatusQueued, KitchenStatusSent, KitchenStatusInProgress, KitchenStatusDone:
		return true
	}
	return false
}

// String returns the string representation of KitchenStatus
func (s KitchenStatus) String() string {
	return string(s)
}

// OrderItem is one product line on an order. ProductName and UnitPrice are
// captured at ordering time so later catalog edits never change a ticket.
type OrderItem struct {
	shared.BaseEntity
	OrderID             uuid.UUID `gorm:"type:uuid;index"`
	ProductID           uuid.UUID `gorm:"type:uuid;index"`
	ProductName         string
	StationID           *uuid.UUID `gorm:"type:uuid"`
	PreparedByStationID *uuid.UUID `gorm:"type:uuid"`
	PersonID            *uuid.UUID `gorm:"type:uuid"`
	SharedByTable       bool
	Quantity            decimal.Decimal `gorm:"type:decimal(10,3)"`
	UnitPrice           decimal.Decimal `gorm:"type:decimal(15,2)"`
	Discount            decimal.Decimal `gorm:"type:decimal(15,2)"`
	Status              ItemStatus
	KitchenStatus       KitchenStatus
	SentAt              *time.Time
	PreparedAt          *time.Time
	CancelledAt         *time.Time
}

// TableName returns the table name for GORM
func (OrderItem) TableName() string {
	return "order_items"
}

// NewOrderItem creates an order line
func NewOrderItem(orderID, productID uuid.UUID, productName string, stationID *uuid.UUID, quantity decimal.Decimal, unitPrice valueobject.Money, discount valueobject.Money) (*OrderItem, error) {
	if productName == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product name cannot be empty")
	}
	if !quantity.IsPositive() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if discount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot be negative")
	}
	gross := unitPrice.Amount().Mul(quantity)
	if discount.Amount().GreaterThan(gross) {
		return nil, shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot exceed the line amount")
	}

	return &OrderItem{
		BaseEntity:    shared.NewBaseEntity(),
		OrderID:       orderID,
		ProductID:     productID,
		ProductName:   productName,
		StationID:     stationID,
		Quantity:      quantity,
		UnitPrice:     unitPrice.Amount(),
		Discount:      discount.Amount(),
		Status:        ItemStatusPending,
		KitchenStatus: KitchenStatusQueued,
	}, nil
}

// Amount returns quantity * unit price - discount
func (i *OrderItem) Amount() decimal.Decimal {
	return i.Quantity.Mul(i.UnitPrice).Sub(i.Discount)
}

// AmountMoney returns the line amount as Money
func (i *OrderItem) AmountMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(i.Amount())
}

// IsActive returns true unless the item is cancelled
func (i *OrderItem) IsActive() bool {
	return i.Status != ItemStatusCancelled
}

// AssignToPerson attributes the line to a diner; sharedItem marks lines
// split across the whole table
func (i *OrderItem) AssignToPerson(personID uuid.UUID, sharedItem bool) {
	i.PersonID = &personID
	i.SharedByTable = sharedItem
	i.UpdatedAt = time.Now()
}

// markSent stamps the kitchen send
func (i *OrderItem) markSent(at time.Time) {
	i.KitchenStatus = KitchenStatusSent
	i.SentAt = &at
	i.UpdatedAt = at
}

// markInProgress records the station picking up the item
func (i *OrderItem) markInProgress() error {
	if !i.IsActive() {
		return shared.NewDomainError("INVALID_STATE", "Item is cancelled")
	}
	if i.KitchenStatus != KitchenStatusSent {
		return shared.NewDomainError("INVALID_KITCHEN_STATE",
			fmt.Sprintf("Item kitchen status is %s, expected %s", i.KitchenStatus, KitchenStatusSent))
	}
	i.KitchenStatus = KitchenStatusInProgress
	if i.Status == ItemStatusPending {
		i.Status = ItemStatusPreparing
	}
	i.UpdatedAt = time.Now()
	return nil
}

// markReady records completion by the kitchen, optionally attributing the
// preparing station
func (i *OrderItem) markReady(preparedBy *uuid.UUID) error {
	if !i.IsActive() {
		return shared.NewDomainError("INVALID_STATE", "Item is cancelled")
	}
	if i.KitchenStatus != KitchenStatusInProgress {
		return shared.NewDomainError("INVALID_KITCHEN_STATE",
			fmt.Sprintf("Item kitchen status is %s, expected %s", i.KitchenStatus, KitchenStatusInProgress))
	}
	now := time.Now()
	i.KitchenStatus = KitchenStatusDone
	i.Status = ItemStatusReady
	i.PreparedAt = &now
	if preparedBy != nil {
		i.PreparedByStationID = preparedBy
	}
	i.UpdatedAt = now
	return nil
}

// advanceTo validates and applies a step on the item status pipeline
func (i *OrderItem) advanceTo(target ItemStatus) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Unknown item status %s", target))
	}
	if !i.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_ITEM_TRANSITION",
			fmt.Sprintf("Invalid item transition from %s to %s", i.Status, target))
	}
	i.Status = target
	i.UpdatedAt = time.Now()
	return nil
}

// cancel marks the line cancelled
func (i *OrderItem) cancel(at time.Time) {
	i.Status = ItemStatusCancelled
	i.CancelledAt = &at
	i.UpdatedAt = at
}
