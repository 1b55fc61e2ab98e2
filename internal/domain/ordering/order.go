package ordering

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/resto/backend/internal/domain/shared"
	"github.com/resto/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the lifecycle status of an order
type OrderStatus string

const (
	OrderStatusPending       OrderStatus = "PENDING"
	OrderStatusSentToKitchen OrderStatus = "SENT_TO_KITCHEN"
	OrderStatusPreparing     OrderStatus = "PREPARING"
	OrderStatusReady         OrderStatus = "READY"
	OrderStatusReadyToPay    OrderStatus = "READY_TO_PAY"
	OrderStatusServed        OrderStatus = "SERVED"
	OrderStatusCompleted     OrderStatus = "COMPLETED"
	OrderStatusCancelled     OrderStatus = "CANCELLED"
)

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusSentToKitchen, OrderStatusPreparing,
		OrderStatusReady, OrderStatusReadyToPay, OrderStatusServed,
		OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// IsTerminal returns true for states from which no transition is possible
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// CanTransitionTo checks if the status can transition to the target status.
// READY_TO_PAY is reachable early (before READY) because a bill may be
// requested within the configured completeness tolerance. SERVED can fall
// back to READY_TO_PAY when a payment that completed the order is voided.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	if s.IsTerminal() {
		return false
	}
	if target == OrderStatusCancelled {
		return true
	}
	switch s {
	case OrderStatusPending:
		return target == OrderStatusSentToKitchen
	case OrderStatusSentToKitchen:
		return target == OrderStatusPreparing || target == OrderStatusReadyToPay
	case OrderStatusPreparing:
		return target == OrderStatusReady || target == OrderStatusReadyToPay
	case OrderStatusReady:
		return target == OrderStatusReadyToPay
	case OrderStatusReadyToPay:
		return target == OrderStatusServed
	case OrderStatusServed:
		return target == OrderStatusCompleted || target == OrderStatusReadyToPay
	}
	return false
}

// InvalidTransitionError reports a state change that is not permitted from
// the current status. It carries both states so callers can surface a
// precise message to the operator.
type InvalidTransitionError struct {
	From OrderStatus
	To   OrderStatus
}

// Error implements the error interface
func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid order transition from %s to %s", e.From, e.To)
}

// newTransitionError builds an InvalidTransitionError for the given states
func newTransitionError(from, to OrderStatus) error {
	return &InvalidTransitionError{From: from, To: to}
}

// Order is the aggregate root for one customer visit/ticket.
// All mutations go through this aggregate; persistence commits them with a
// compare-and-swap on Version so concurrent waiters, kitchen stations and
// cashiers never overwrite each other silently.
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber string
	Status      OrderStatus
	TableNumber string
	CustomerID  *uuid.UUID
	WaiterID    *uuid.UUID
	TotalAmount decimal.Decimal
	Notes       string
	Items       []OrderItem `gorm:"foreignKey:OrderID;references:ID"`
	Persons     []Person    `gorm:"foreignKey:OrderID;references:ID"`
	OpenedAt    time.Time
	ClosedAt    *time.Time
	CancelledAt *time.Time
	CancelReason string
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// NewOrder opens a new order (ticket)
func NewOrder(orderNumber string) (*Order, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if len(orderNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot exceed 50 characters")
	}

	order := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       orderNumber,
		Status:            OrderStatusPending,
		TotalAmount:       decimal.Zero,
		Items:             make([]OrderItem, 0),
		Persons:           make([]Person, 0),
		OpenedAt:          time.Now(),
	}

	order.AddDomainEvent(NewOrderOpenedEvent(order))

	return order, nil
}

// AssignTable sets the table reference
func (o *Order) AssignTable(tableNumber string) {
	o.TableNumber = tableNumber
	o.UpdatedAt = time.Now()
}

// AssignWaiter sets the owning staff user
func (o *Order) AssignWaiter(waiterID uuid.UUID) {
	o.WaiterID = &waiterID
	o.UpdatedAt = time.Now()
}

// AssignCustomer sets the customer reference
func (o *Order) AssignCustomer(customerID uuid.UUID) {
	o.CustomerID = &customerID
	o.UpdatedAt = time.Now()
}

// SetNotes sets the free-text notes
func (o *Order) SetNotes(notes string) {
	o.Notes = notes
	o.UpdatedAt = time.Now()
}

// CanAcceptItems returns true while new lines may still be added.
// Items can be added up to the moment the bill is requested.
func (o *Order) CanAcceptItems() bool {
	switch o.Status {
	case OrderStatusPending, OrderStatusSentToKitchen, OrderStatusPreparing, OrderStatusReady:
		return true
	}
	return false
}

// AddItem adds a product line to the order
func (o *Order) AddItem(productID uuid.UUID, productName string, stationID *uuid.UUID, quantity decimal.Decimal, unitPrice valueobject.Money, discount valueobject.Money) (*OrderItem, error) {
	if !o.CanAcceptItems() {
		return nil, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot add items to order in %s status", o.Status))
	}

	item, err := NewOrderItem(o.ID, productID, productName, stationID, quantity, unitPrice, discount)
	if err != nil {
		return nil, err
	}

	o.Items = append(o.Items, *item)
	o.recalculateTotal()
	o.UpdatedAt = time.Now()

	o.AddDomainEvent(NewOrderItemAddedEvent(o, item))

	return item, nil
}

// RemoveItem removes a line that has not yet been sent to the kitchen
func (o *Order) RemoveItem(itemID uuid.UUID) error {
	for idx := range o.Items {
		if o.Items[idx].ID != itemID {
			continue
		}
		if o.Items[idx].KitchenStatus != KitchenStatusQueued {
			return shared.NewDomainError("ITEM_ALREADY_SENT", "Cannot remove an item that was sent to the kitchen; cancel it instead")
		}
		o.Items = append(o.Items[:idx], o.Items[idx+1:]...)
		o.recalculateTotal()
		o.UpdatedAt = time.Now()
		return nil
	}
	return shared.ErrNotFound
}

// AttachPerson registers a diner on the order for bill splitting
func (o *Order) AttachPerson(name string) (*Person, error) {
	if o.Status.IsTerminal() {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot attach a person to a closed order")
	}
	person, err := NewPerson(o.ID, name)
	if err != nil {
		return nil, err
	}
	o.Persons = append(o.Persons, *person)
	o.UpdatedAt = time.Now()
	return person, nil
}

// AssignItemToPerson attributes a line to a diner for split billing
func (o *Order) AssignItemToPerson(itemID, personID uuid.UUID, sharedItem bool) error {
	item := o.GetItem(itemID)
	if item == nil {
		return shared.ErrNotFound
	}
	found := false
	for idx := range o.Persons {
		if o.Persons[idx].ID == personID {
			found = true
			break
		}
	}
	if !found {
		return shared.NewDomainError("PERSON_NOT_FOUND", "Person is not attached to this order")
	}
	item.AssignToPerson(personID, sharedItem)
	o.UpdatedAt = time.Now()
	return nil
}

// SendToKitchen transitions PENDING -> SENT_TO_KITCHEN.
// Requires at least one active item with a resolved station; every eligible
// item is stamped SENT with its sent_at timestamp.
func (o *Order) SendToKitchen() error {
	if !o.Status.CanTransitionTo(OrderStatusSentToKitchen) {
		return newTransitionError(o.Status, OrderStatusSentToKitchen)
	}

	eligible := 0
	for idx := range o.Items {
		if o.Items[idx].IsActive() && o.Items[idx].StationID != nil {
			eligible++
		}
	}
	if eligible == 0 {
		return shared.NewDomainError("NO_ROUTABLE_ITEMS", "Order has no active items with a station assignment")
	}

	now := time.Now()
	for idx := range o.Items {
		if o.Items[idx].IsActive() && o.Items[idx].StationID != nil && o.Items[idx].KitchenStatus == KitchenStatusQueued {
			o.Items[idx].markSent(now)
		}
	}

	o.Status = OrderStatusSentToKitchen
	o.UpdatedAt = now

	o.AddDomainEvent(NewOrderSentToKitchenEvent(o))

	return nil
}

// MarkItemInProgress records that a station started preparing an item.
// The first in-progress item moves the order SENT_TO_KITCHEN -> PREPARING.
func (o *Order) MarkItemInProgress(itemID uuid.UUID) error {
	item := o.GetItem(itemID)
	if item == nil {
		return shared.ErrNotFound
	}

	if err := item.markInProgress(); err != nil {
		return err
	}

	if o.Status == OrderStatusSentToKitchen {
		o.Status = OrderStatusPreparing
		o.AddDomainEvent(NewOrderPreparingEvent(o))
	}
	o.UpdatedAt = time.Now()

	return nil
}

// MarkItemReady records that a station finished an item. A ready item that
// was never explicitly marked in progress passes through PREPARING first,
// which also advances the order out of SENT_TO_KITCHEN. When every
// non-cancelled item is READY or SERVED the order becomes READY.
func (o *Order) MarkItemReady(itemID uuid.UUID, preparedBy *uuid.UUID) error {
	item := o.GetItem(itemID)
	if item == nil {
		return shared.ErrNotFound
	}

	if item.KitchenStatus == KitchenStatusSent {
		if err := item.markInProgress(); err != nil {
			return err
		}
		if o.Status == OrderStatusSentToKitchen {
			o.Status = OrderStatusPreparing
			o.AddDomainEvent(NewOrderPreparingEvent(o))
		}
	}

	if err := item.markReady(preparedBy); err != nil {
		return err
	}

	if o.Status == OrderStatusPreparing && o.allItemsFinished() {
		o.Status = OrderStatusReady
		o.AddDomainEvent(NewOrderReadyEvent(o))
	}
	o.UpdatedAt = time.Now()

	return nil
}

// AdvanceItemStatus moves an item one step along its own pipeline
// (PENDING -> PREPARING -> READY -> SERVED)
func (o *Order) AdvanceItemStatus(itemID uuid.UUID, target ItemStatus) error {
	item := o.GetItem(itemID)
	if item == nil {
		return shared.ErrNotFound
	}

	if err := item.advanceTo(target); err != nil {
		return err
	}

	if o.Status == OrderStatusPreparing && o.allItemsFinished() {
		o.Status = OrderStatusReady
		o.AddDomainEvent(NewOrderReadyEvent(o))
	}
	o.UpdatedAt = time.Now()

	return nil
}

// RequestBill is the explicit cashier transition to READY_TO_PAY.
// From READY it always succeeds; earlier it succeeds only while the
// fraction of unfinished items stays within the given tolerance.
func (o *Order) RequestBill(tolerance decimal.Decimal) error {
	if !o.Status.CanTransitionTo(OrderStatusReadyToPay) {
		return newTransitionError(o.Status, OrderStatusReadyToPay)
	}
	if len(o.ActiveItems()) == 0 {
		return shared.NewDomainError("NO_ITEMS", "Cannot request a bill for an empty order")
	}

	if o.Status != OrderStatusReady {
		if o.unfinishedFraction().GreaterThan(tolerance) {
			return shared.NewDomainError("ITEMS_UNFINISHED",
				fmt.Sprintf("Unfinished item fraction %s exceeds tolerance %s", o.unfinishedFraction().String(), tolerance.String()))
		}
	}

	o.Status = OrderStatusReadyToPay
	o.UpdatedAt = time.Now()

	o.AddDomainEvent(NewOrderBillRequestedEvent(o))

	return nil
}

// MarkServed transitions READY_TO_PAY -> SERVED once the order is fully
// paid. The payment check belongs to the payment ledger; this method only
// enforces the state machine.
func (o *Order) MarkServed() error {
	if !o.Status.CanTransitionTo(OrderStatusServed) {
		return newTransitionError(o.Status, OrderStatusServed)
	}

	o.Status = OrderStatusServed
	o.UpdatedAt = time.Now()

	o.AddDomainEvent(NewOrderServedEvent(o))

	return nil
}

// RevertToReadyToPay undoes SERVED when a voided payment breaks the
// fully-paid condition
func (o *Order) RevertToReadyToPay() error {
	if o.Status != OrderStatusServed {
		return newTransitionError(o.Status, OrderStatusReadyToPay)
	}

	o.Status = OrderStatusReadyToPay
	o.UpdatedAt = time.Now()

	o.AddDomainEvent(NewOrderBillRequestedEvent(o))

	return nil
}

// Close transitions SERVED -> COMPLETED and stamps closed_at
func (o *Order) Close() error {
	if !o.Status.CanTransitionTo(OrderStatusCompleted) {
		return newTransitionError(o.Status, OrderStatusCompleted)
	}

	now := time.Now()
	o.Status = OrderStatusCompleted
	o.ClosedAt = &now
	o.UpdatedAt = now

	o.AddDomainEvent(NewOrderCompletedEvent(o))

	return nil
}

// Cancel cancels the order from any non-terminal state.
// Requires a reason; every remaining active item is cancelled with it.
func (o *Order) Cancel(reason string) error {
	if !o.Status.CanTransitionTo(OrderStatusCancelled) {
		return newTransitionError(o.Status, OrderStatusCancelled)
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}

	now := time.Now()
	for idx := range o.Items {
		if o.Items[idx].Status != ItemStatusCancelled {
			o.Items[idx].cancel(now)
		}
	}

	o.Status = OrderStatusCancelled
	o.CancelledAt = &now
	o.CancelReason = reason
	o.UpdatedAt = now

	o.AddDomainEvent(NewOrderCancelledEvent(o, reason))

	return nil
}

// CancelItem cancels a single line without touching the order status
func (o *Order) CancelItem(itemID uuid.UUID, reason string) error {
	if o.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", "Cannot cancel items on a closed order")
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}

	item := o.GetItem(itemID)
	if item == nil {
		return shared.ErrNotFound
	}
	if item.Status == ItemStatusCancelled {
		return shared.NewDomainError("INVALID_STATE", "Item is already cancelled")
	}

	item.cancel(time.Now())
	o.recalculateTotal()
	o.UpdatedAt = time.Now()

	o.AddDomainEvent(NewOrderItemCancelledEvent(o, item, reason))

	return nil
}

// recalculateTotal sums the active item amounts
func (o *Order) recalculateTotal() {
	total := decimal.Zero
	for idx := range o.Items {
		if o.Items[idx].Status != ItemStatusCancelled {
			total = total.Add(o.Items[idx].Amount())
		}
	}
	o.TotalAmount = total
}

// allItemsFinished reports whether every non-cancelled item is READY or SERVED
func (o *Order) allItemsFinished() bool {
	active := 0
	for idx := range o.Items {
		item := &o.Items[idx]
		if item.Status == ItemStatusCancelled {
			continue
		}
		active++
		if item.Status != ItemStatusReady && item.Status != ItemStatusServed {
			return false
		}
	}
	return active > 0
}

// unfinishedFraction returns the fraction of active items not yet READY/SERVED
func (o *Order) unfinishedFraction() decimal.Decimal {
	active := 0
	unfinished := 0
	for idx := range o.Items {
		item := &o.Items[idx]
		if item.Status == ItemStatusCancelled {
			continue
		}
		active++
		if item.Status != ItemStatusReady && item.Status != ItemStatusServed {
			unfinished++
		}
	}
	if active == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(unfinished)).Div(decimal.NewFromInt(int64(active)))
}

// GetTotalAmountMoney returns the order total as Money
func (o *Order) GetTotalAmountMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(o.TotalAmount)
}

// GetItem returns an item by its ID
func (o *Order) GetItem(itemID uuid.UUID) *OrderItem {
	for idx := range o.Items {
		if o.Items[idx].ID == itemID {
			return &o.Items[idx]
		}
	}
	return nil
}

// ActiveItems returns the non-cancelled items
func (o *Order) ActiveItems() []*OrderItem {
	active := make([]*OrderItem, 0, len(o.Items))
	for idx := range o.Items {
		if o.Items[idx].Status != ItemStatusCancelled {
			active = append(active, &o.Items[idx])
		}
	}
	return active
}

// IsTerminal returns true if the order is completed or cancelled
func (o *Order) IsTerminal() bool {
	return o.Status.IsTerminal()
}
