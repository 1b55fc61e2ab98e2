package payments

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/resto/backend/internal/domain/shared"
	"github.com/resto/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// PaymentMethod is the tender type
type PaymentMethod string

const (
	PaymentMethodCash    PaymentMethod = "CASH"
	PaymentMethodCard    PaymentMethod = "CARD"
	PaymentMethodMobile  PaymentMethod = "MOBILE"
	PaymentMethodVoucher PaymentMethod = "VOUCHER"
)

// IsValid checks if the method is a valid PaymentMethod
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodMobile, PaymentMethodVoucher:
		return true
	}
	return false
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// PaymentStatus is the settlement status of a payment
type PaymentStatus string

const (
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	// PaymentStatusVoided marks a reverted payment. Voided rows stay in the
	// ledger forever; nothing is ever deleted.
	PaymentStatusVoided PaymentStatus = "VOIDED"
)

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// SplitMismatchError reports shared-payment splits that do not sum to the
// payment amount
type SplitMismatchError struct {
	PaymentAmount decimal.Decimal
	SplitTotal    decimal.Decimal
}

// Error implements the error interface
func (e *SplitMismatchError) Error() string {
	return fmt.Sprintf("split amounts sum to %s, payment amount is %s",
		e.SplitTotal.String(), e.PaymentAmount.String())
}

// SplitPayment attributes a share of a shared payment to one diner
type SplitPayment struct {
	shared.BaseEntity
	PaymentID uuid.UUID       `gorm:"type:uuid;index"`
	PersonID  *uuid.UUID      `gorm:"type:uuid"`
	Label     string
	Amount    decimal.Decimal `gorm:"type:decimal(15,2)"`
}

// TableName returns the table name for GORM
func (SplitPayment) TableName() string {
	return "split_payments"
}

// SplitInput is the caller-facing shape of one split share
type SplitInput struct {
	PersonID *uuid.UUID
	Label    string
	Amount   decimal.Decimal
}

// Payment is one tender registered against an order. A shared payment
// carries SplitPayment children that account for every cent of it.
type Payment struct {
	shared.BaseAggregateRoot
	OrderID    uuid.UUID       `gorm:"type:uuid;index"`
	Amount     decimal.Decimal `gorm:"type:decimal(15,2)"`
	Method     PaymentMethod
	Status     PaymentStatus
	IsShared   bool
	Splits     []SplitPayment `gorm:"foreignKey:PaymentID;references:ID"`
	ReceivedBy *uuid.UUID     `gorm:"type:uuid"`
	Reference  string
	PaidAt     time.Time
	VoidedAt   *time.Time
	VoidReason string
}

// TableName returns the table name for GORM
func (Payment) TableName() string {
	return "payments"
}

// NewPayment registers a tender against an order. Shared payments require
// splits whose amounts sum exactly to the payment amount.
func NewPayment(orderID uuid.UUID, amount valueobject.Money, method PaymentMethod, isShared bool, splits []SplitInput, receivedBy *uuid.UUID) (*Payment, error) {
	if orderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Order ID is required")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_METHOD", fmt.Sprintf("Unknown payment method %s", method))
	}

	payment := &Payment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderID:           orderID,
		Amount:            amount.Amount(),
		Method:            method,
		Status:            PaymentStatusCompleted,
		IsShared:          isShared,
		ReceivedBy:        receivedBy,
		PaidAt:            time.Now(),
	}

	if isShared {
		if len(splits) == 0 {
			return nil, shared.NewDomainError("MISSING_SPLITS", "Shared payments require at least one split")
		}
		splitTotal := decimal.Zero
		for _, s := range splits {
			if !s.Amount.IsPositive() {
				return nil, shared.NewDomainError("INVALID_SPLIT", "Split amounts must be positive")
			}
			splitTotal = splitTotal.Add(s.Amount)
		}
		if !splitTotal.Equal(payment.Amount) {
			return nil, &SplitMismatchError{PaymentAmount: payment.Amount, SplitTotal: splitTotal}
		}
		for _, s := range splits {
			payment.Splits = append(payment.Splits, SplitPayment{
				BaseEntity: shared.NewBaseEntity(),
				PaymentID:  payment.ID,
				PersonID:   s.PersonID,
				Label:      s.Label,
				Amount:     s.Amount,
			})
		}
	} else if len(splits) > 0 {
		return nil, shared.NewDomainError("UNEXPECTED_SPLITS", "Splits are only valid on shared payments")
	}

	payment.AddDomainEvent(NewPaymentRegisteredEvent(payment))

	return payment, nil
}

// SetReference attaches an external reference (card authorization, mobile
// transaction id)
func (p *Payment) SetReference(reference string) {
	p.Reference = reference
	p.UpdatedAt = time.Now()
}

// IsVoided reports whether the payment was voided
func (p *Payment) IsVoided() bool {
	return p.Status == PaymentStatusVoided
}

// AmountMoney returns the payment amount as Money
func (p *Payment) AmountMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(p.Amount)
}

// Void marks the payment voided. Voiding is soft and final; a voided
// payment no longer counts toward the paid total.
func (p *Payment) Void(reason string) error {
	if p.Status == PaymentStatusVoided {
		return shared.NewDomainError("ALREADY_VOIDED", "Payment is already voided")
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Void reason is required")
	}

	now := time.Now()
	p.Status = PaymentStatusVoided
	p.VoidedAt = &now
	p.VoidReason = reason
	p.UpdatedAt = now

	p.AddDomainEvent(NewPaymentVoidedEvent(p, reason))

	return nil
}
