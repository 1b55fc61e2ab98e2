package ordering

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/resto/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CancelledProductSnapshot captures one line as it was at cancellation time.
// The log must stay readable after products or the order itself are edited
// or purged, so everything is denormalized into the snapshot.
type CancelledProductSnapshot struct {
	ItemID      uuid.UUID       `json:"item_id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Discount    decimal.Decimal `json:"discount"`
	ItemStatus  ItemStatus      `json:"item_status"`
	StationID   *uuid.UUID      `json:"station_id,omitempty"`
}

// ProductSnapshotList is stored as a JSONB column
type ProductSnapshotList []CancelledProductSnapshot

// Value implements driver.Valuer for JSONB storage
func (l ProductSnapshotList) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal([]CancelledProductSnapshot{})
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner for JSONB storage
func (l *ProductSnapshotList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into ProductSnapshotList", value)
	}
	return json.Unmarshal(data, l)
}

// OrderCancellationLog is the immutable audit record written whenever an
// order or an individual item is cancelled. It has a constructor and no
// mutators; repositories only insert it.
type OrderCancellationLog struct {
	shared.BaseEntity
	OrderID      uuid.UUID           `gorm:"type:uuid;index"`
	OrderNumber  string
	Scope        CancellationScope
	Reason       string
	CancelledBy  *uuid.UUID          `gorm:"type:uuid"`
	SupervisorID *uuid.UUID          `gorm:"type:uuid"`
	Products     ProductSnapshotList `gorm:"type:jsonb"`
	TotalAmount  decimal.Decimal     `gorm:"type:decimal(15,2)"`
	CancelledAt  time.Time
}

// CancellationScope tells whether a whole order or a single item was cancelled
type CancellationScope string

const (
	CancellationScopeOrder CancellationScope = "ORDER"
	CancellationScopeItem  CancellationScope = "ITEM"
)

// TableName returns the table name for GORM
func (OrderCancellationLog) TableName() string {
	return "order_cancellation_logs"
}

// NewOrderCancellationLog records the cancellation of a whole order
func NewOrderCancellationLog(order *Order, reason string, cancelledBy *uuid.UUID) (*OrderCancellationLog, error) {
	if reason == "" {
		return nil, shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}

	snapshots := make(ProductSnapshotList, 0, len(order.Items))
	total := decimal.Zero
	for idx := range order.Items {
		item := &order.Items[idx]
		snapshots = append(snapshots, snapshotItem(item))
		total = total.Add(item.Amount())
	}

	return &OrderCancellationLog{
		BaseEntity:  shared.NewBaseEntity(),
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Scope:       CancellationScopeOrder,
		Reason:      reason,
		CancelledBy: cancelledBy,
		Products:    snapshots,
		TotalAmount: total,
		CancelledAt: time.Now(),
	}, nil
}

// ApproveBy records the supervisor who signed off on the cancellation.
// It must be set before the log is saved; saved logs are immutable.
func (l *OrderCancellationLog) ApproveBy(supervisorID uuid.UUID) {
	l.SupervisorID = &supervisorID
}

// NewItemCancellationLog records the cancellation of a single line
func NewItemCancellationLog(order *Order, item *OrderItem, reason string, cancelledBy *uuid.UUID) (*OrderCancellationLog, error) {
	if reason == "" {
		return nil, shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}
	if item == nil {
		return nil, shared.ErrNotFound
	}

	return &OrderCancellationLog{
		BaseEntity:  shared.NewBaseEntity(),
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Scope:       CancellationScopeItem,
		Reason:      reason,
		CancelledBy: cancelledBy,
		Products:    ProductSnapshotList{snapshotItem(item)},
		TotalAmount: item.Amount(),
		CancelledAt: time.Now(),
	}, nil
}

func snapshotItem(item *OrderItem) CancelledProductSnapshot {
	return CancelledProductSnapshot{
		ItemID:      item.ID,
		ProductID:   item.ProductID,
		ProductName: item.ProductName,
		Quantity:    item.Quantity,
		UnitPrice:   item.UnitPrice,
		Discount:    item.Discount,
		ItemStatus:  item.Status,
		StationID:   item.StationID,
	}
}
