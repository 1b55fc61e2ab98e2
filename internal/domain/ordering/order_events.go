package ordering

import (
	"github.com/google/uuid"
	"github.com/resto/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const (
	EventOrderOpened        = "order.opened"
	EventOrderItemAdded     = "order.item_added"
	EventOrderSentToKitchen = "order.sent_to_kitchen"
	EventOrderPreparing     = "order.preparing"
	EventOrderReady         = "order.ready"
	EventOrderBillRequested = "order.bill_requested"
	EventOrderServed        = "order.served"
	EventOrderCompleted     = "order.completed"
	EventOrderCancelled     = "order.cancelled"
	EventOrderItemCancelled = "order.item_cancelled"
)

const orderAggregateType = "Order"

// OrderOpenedEvent fires when a new order is opened
type OrderOpenedEvent struct {
	shared.BaseDomainEvent
	OrderNumber string `json:"order_number"`
	TableNumber string `json:"table_number,omitempty"`
}

// NewOrderOpenedEvent creates an OrderOpenedEvent
func NewOrderOpenedEvent(order *Order) *OrderOpenedEvent {
	return &OrderOpenedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventOrderOpened, orderAggregateType, order.ID),
		OrderNumber:     order.OrderNumber,
		TableNumber:     order.TableNumber,
	}
}

// OrderItemAddedEvent fires when a line is added to an order
type OrderItemAddedEvent struct {
	shared.BaseDomainEvent
	OrderNumber string          `json:"order_number"`
	ItemID      uuid.UUID       `json:"item_id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// NewOrderItemAddedEvent creates an OrderItemAddedEvent
func NewOrderItemAddedEvent(order *Order, item *OrderItem) *OrderItemAddedEvent {
	return &OrderItemAddedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventOrderItemAdded, orderAggregateType, order.ID),
		OrderNumber:     order.OrderNumber,
		ItemID:          item.ID,
		ProductID:       item.ProductID,
		ProductName:     item.ProductName,
		Quantity:        item.Quantity,
	}
}

// OrderSentToKitchenEvent fires when the order is routed to the kitchen.
// Stock allocation may subscribe to it depending on the configured trigger.
type OrderSentToKitchenEvent struct {
	shared.BaseDomainEvent
	OrderNumber string `json:"order_number"`
	ItemCount   int    `json:"item_count"`
}

// NewOrderSentToKitchenEvent creates an OrderSentToKitchenEvent
func NewOrderSentToKitchenEvent(order *Order) *OrderSentToKitchenEvent {
	return &OrderSentToKitchenEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventOrderSentToKitchen, orderAggregateType, order.ID),
		OrderNumber:     order.OrderNumber,
		ItemCount:       len(order.ActiveItems()),
	}
}

// OrderPreparingEvent fires when the first item goes in progress
type OrderPreparingEvent struct {
	shared.BaseDomainEvent
	OrderNumber string `json:"order_number"`
}

// NewOrderPreparingEvent creates an OrderPreparingEvent
func NewOrderPreparingEvent(order *Order) *OrderPreparingEvent {
	return &OrderPreparingEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventOrderPreparing, orderAggregateType, order.ID),
		OrderNumber:     order.OrderNumber,
	}
}

// OrderReadyEvent fires when every active item is finished
type OrderReadyEvent struct {
	shared.BaseDomainEvent
	OrderNumber string `json:"order_number"`
}

// NewOrderReadyEvent creates an OrderReadyEvent
func NewOrderReadyEvent(order *Order) *OrderReadyEvent {
	return &OrderReadyEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventOrderReady, orderAggregateType, order.ID),
		OrderNumber:     order.OrderNumber,
	}
}

// OrderBillRequestedEvent fires when a cashier requests the bill
type OrderBillRequestedEvent struct {
	shared.BaseDomainEvent
	OrderNumber string          `json:"order_number"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// NewOrderBillRequestedEvent creates an OrderBillRequestedEvent
func NewOrderBillRequestedEvent(order *Order) *OrderBillRequestedEvent {
	return &OrderBillRequestedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventOrderBillRequested, orderAggregateType, order.ID),
		OrderNumber:     order.OrderNumber,
		TotalAmount:     order.TotalAmount,
	}
}

// OrderServedEvent fires when the order is fully paid and served
type OrderServedEvent struct {
	shared.BaseDomainEvent
	OrderNumber string `json:"order_number"`
}

// NewOrderServedEvent creates an OrderServedEvent
func NewOrderServedEvent(order *Order) *OrderServedEvent {
	return &OrderServedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventOrderServed, orderAggregateType, order.ID),
		OrderNumber:     order.OrderNumber,
	}
}

// OrderCompletedEvent fires when the order is closed
type OrderCompletedEvent struct {
	shared.BaseDomainEvent
	OrderNumber string          `json:"order_number"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// NewOrderCompletedEvent creates an OrderCompletedEvent
func NewOrderCompletedEvent(order *Order) *OrderCompletedEvent {
	return &OrderCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventOrderCompleted, orderAggregateType, order.ID),
		OrderNumber:     order.OrderNumber,
		TotalAmount:     order.TotalAmount,
	}
}

// OrderCancelledEvent fires when a whole order is cancelled
type OrderCancelledEvent struct {
	shared.BaseDomainEvent
	OrderNumber string `json:"order_number"`
	Reason      string `json:"reason"`
}

// NewOrderCancelledEvent creates an OrderCancelledEvent
func NewOrderCancelledEvent(order *Order, reason string) *OrderCancelledEvent {
	return &OrderCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventOrderCancelled, orderAggregateType, order.ID),
		OrderNumber:     order.OrderNumber,
		Reason:          reason,
	}
}

// OrderItemCancelledEvent fires when a single line is cancelled
type OrderItemCancelledEvent struct {
	shared.BaseDomainEvent
	OrderNumber string    `json:"order_number"`
	ItemID      uuid.UUID `json:"item_id"`
	ProductID   uuid.UUID `json:"product_id"`
	Reason      string    `json:"reason"`
}

// NewOrderItemCancelledEvent creates an OrderItemCancelledEvent
func NewOrderItemCancelledEvent(order *Order, item *OrderItem, reason string) *OrderItemCancelledEvent {
	return &OrderItemCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventOrderItemCancelled, orderAggregateType, order.ID),
		OrderNumber:     order.OrderNumber,
		ItemID:          item.ID,
		ProductID:       item.ProductID,
		Reason:          reason,
	}
}
