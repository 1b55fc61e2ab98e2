package payments

import (
	"time"

	"github.com/google/uuid"
	"github.com/resto/backend/internal/domain/payments"
	"github.com/shopspring/decimal"
)

// SplitRequest is one diner's share of a shared payment
type SplitRequest struct {
	PersonID *uuid.UUID      `json:"person_id"`
	Label    string          `json:"label"`
	Amount   decimal.Decimal `json:"amount" binding:"required,gt=0"`
}

// RegisterPaymentRequest registers a tender against an order
type RegisterPaymentRequest struct {
	Amount     decimal.Decimal `json:"amount" binding:"required,gt=0"`
	Method     string          `json:"method" binding:"required,payment_method"`
	IsShared   bool            `json:"is_shared"`
	Splits     []SplitRequest  `json:"splits"`
	ReceivedBy *uuid.UUID      `json:"received_by"`
	Reference  string          `json:"reference"`
}

// VoidPaymentRequest voids a registered payment
type VoidPaymentRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// SplitResponse is the API shape of one split share
type SplitResponse struct {
	ID       uuid.UUID       `json:"id"`
	PersonID *uuid.UUID      `json:"person_id,omitempty"`
	Label    string          `json:"label,omitempty"`
	Amount   decimal.Decimal `json:"amount"`
}

// PaymentResponse is the API shape of a payment
type PaymentResponse struct {
	ID         uuid.UUID       `json:"id"`
	OrderID    uuid.UUID       `json:"order_id"`
	Amount     decimal.Decimal `json:"amount"`
	Method     string          `json:"method"`
	Status     string          `json:"status"`
	IsShared   bool            `json:"is_shared"`
	Splits     []SplitResponse `json:"splits,omitempty"`
	Reference  string          `json:"reference,omitempty"`
	PaidAt     time.Time       `json:"paid_at"`
	VoidedAt   *time.Time      `json:"voided_at,omitempty"`
	VoidReason string          `json:"void_reason,omitempty"`
}

// BalanceResponse summarizes an order's reconciliation state
type BalanceResponse struct {
	OrderID     uuid.UUID       `json:"order_id"`
	OrderTotal  decimal.Decimal `json:"order_total"`
	PaidTotal   decimal.Decimal `json:"paid_total"`
	Balance     decimal.Decimal `json:"balance"`
	Change      decimal.Decimal `json:"change"`
	FullyPaid   bool            `json:"fully_paid"`
	Overpaid    bool            `json:"overpaid"`
	OrderStatus string          `json:"order_status"`
}

// ToPaymentResponse maps a payment aggregate to its API shape
func ToPaymentResponse(payment *payments.Payment) PaymentResponse {
	splits := make([]SplitResponse, 0, len(payment.Splits))
	for idx := range payment.Splits {
		s := &payment.Splits[idx]
		splits = append(splits, SplitResponse{
			ID:       s.ID,
			PersonID: s.PersonID,
			Label:    s.Label,
			Amount:   s.Amount,
		})
	}

	return PaymentResponse{
		ID:         payment.ID,
		OrderID:    payment.OrderID,
		Amount:     payment.Amount,
		Method:     payment.Method.String(),
		Status:     payment.Status.String(),
		IsShared:   payment.IsShared,
		Splits:     splits,
		Reference:  payment.Reference,
		PaidAt:     payment.PaidAt,
		VoidedAt:   payment.VoidedAt,
		VoidReason: payment.VoidReason,
	}
}
