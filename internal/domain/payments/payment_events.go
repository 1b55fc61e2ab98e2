package payments

import (
	"github.com/google/uuid"
	"github.com/resto/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const (
	EventPaymentRegistered = "payment.registered"
	EventPaymentVoided     = "payment.voided"
)

const paymentAggregateType = "Payment"

// PaymentRegisteredEvent fires when a tender is registered
type PaymentRegisteredEvent struct {
	shared.BaseDomainEvent
	OrderID  uuid.UUID       `json:"order_id"`
	Amount   decimal.Decimal `json:"amount"`
	Method   PaymentMethod   `json:"method"`
	IsShared bool            `json:"is_shared"`
}

// NewPaymentRegisteredEvent creates a PaymentRegisteredEvent
func NewPaymentRegisteredEvent(payment *Payment) *PaymentRegisteredEvent {
	return &PaymentRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventPaymentRegistered, paymentAggregateType, payment.ID),
		OrderID:         payment.OrderID,
		Amount:          payment.Amount,
		Method:          payment.Method,
		IsShared:        payment.IsShared,
	}
}

// PaymentVoidedEvent fires when a payment is voided
type PaymentVoidedEvent struct {
	shared.BaseDomainEvent
	OrderID uuid.UUID       `json:"order_id"`
	Amount  decimal.Decimal `json:"amount"`
	Reason  string          `json:"reason"`
}

// NewPaymentVoidedEvent creates a PaymentVoidedEvent
func NewPaymentVoidedEvent(payment *Payment, reason string) *PaymentVoidedEvent {
	return &PaymentVoidedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventPaymentVoided, paymentAggregateType, payment.ID),
		OrderID:         payment.OrderID,
		Amount:          payment.Amount,
		Reason:          reason,
	}
}
