package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/resto/backend/internal/domain/payments"
	"github.com/resto/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormPaymentRepository implements PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByID finds a payment with its splits
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*payments.Payment, error) {
	var payment payments.Payment
	if err := r.db.WithContext(ctx).
		Preload("Splits").
		First(&payment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &payment, nil
}

// FindByOrderID returns every payment registered on the order, voided rows
// included, ordered by paid_at. Reconciliation needs the full history.
func (r *GormPaymentRepository) FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]*payments.Payment, error) {
	var rows []*payments.Payment
	if err := r.db.WithContext(ctx).
		Preload("Splits").
		Where("order_id = ?", orderID).
		Order("paid_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Save inserts a payment together with its splits
func (r *GormPaymentRepository) Save(ctx context.Context, payment *payments.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

// Update persists a status change. Splits never change after insert, so
// only the payment row is written.
func (r *GormPaymentRepository) Update(ctx context.Context, payment *payments.Payment) error {
	result := r.db.WithContext(ctx).
		Model(&payments.Payment{}).
		Where("id = ?", payment.ID).
		Updates(map[string]interface{}{
			"status":      payment.Status,
			"voided_at":   payment.VoidedAt,
			"void_reason": payment.VoidReason,
			"updated_at":  payment.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormPaymentRepository implements PaymentRepository
var _ payments.PaymentRepository = (*GormPaymentRepository)(nil)
