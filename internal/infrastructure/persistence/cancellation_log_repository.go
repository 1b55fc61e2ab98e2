package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/resto/backend/internal/domain/ordering"
	"gorm.io/gorm"
)

// GormCancellationLogRepository implements CancellationLogRepository using GORM.
// Log entries are append-only; there is deliberately no update or delete.
type GormCancellationLogRepository struct {
	db *gorm.DB
}

// NewGormCancellationLogRepository creates a new GormCancellationLogRepository
func NewGormCancellationLogRepository(db *gorm.DB) *GormCancellationLogRepository {
	return &GormCancellationLogRepository{db: db}
}

// Save inserts a cancellation log entry
func (r *GormCancellationLogRepository) Save(ctx context.Context, log *ordering.OrderCancellationLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// FindByOrderID returns all cancellation entries for an order, oldest first
func (r *GormCancellationLogRepository) FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]ordering.OrderCancellationLog, error) {
	var logs []ordering.OrderCancellationLog
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("cancelled_at ASC").
		Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

// Ensure GormCancellationLogRepository implements CancellationLogRepository
var _ ordering.CancellationLogRepository = (*GormCancellationLogRepository)(nil)
