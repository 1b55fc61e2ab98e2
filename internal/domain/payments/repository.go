package payments

import (
	"context"

	"github.com/google/uuid"
)

// PaymentRepository is the persistence port for the payment ledger
type PaymentRepository interface {
	// FindByID loads a payment with its splits
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)

	// FindByOrderID returns every payment ever registered on the order,
	// voided rows included, ordered by paid_at
	FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]*Payment, error)

	// Save inserts a payment with its splits
	Save(ctx context.Context, payment *Payment) error

	// Update persists a status change (void)
	Update(ctx context.Context, payment *Payment) error
}
