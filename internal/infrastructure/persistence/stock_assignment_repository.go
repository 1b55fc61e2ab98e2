package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/resto/backend/internal/domain/shared"
	"github.com/resto/backend/internal/domain/stock"
	"gorm.io/gorm"
)

// GormStockAssignmentRepository implements StockAssignmentRepository using GORM
type GormStockAssignmentRepository struct {
	db *gorm.DB
}

// NewGormStockAssignmentRepository creates a new GormStockAssignmentRepository
func NewGormStockAssignmentRepository(db *gorm.DB) *GormStockAssignmentRepository {
	return &GormStockAssignmentRepository{db: db}
}

// FindByID finds a stock assignment by its ID
func (r *GormStockAssignmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*stock.StockAssignment, error) {
	var assignment stock.StockAssignment
	if err := r.db.WithContext(ctx).
		First(&assignment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &assignment, nil
}

// FindByProduct returns all pools for a product, active or not
func (r *GormStockAssignmentRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]*stock.StockAssignment, error) {
	var assignments []*stock.StockAssignment
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("priority ASC, created_at ASC").
		Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

// FindActiveByProduct returns the active fallback chain ordered by priority
// ascending, creation time breaking ties
func (r *GormStockAssignmentRepository) FindActiveByProduct(ctx context.Context, productID uuid.UUID) ([]*stock.StockAssignment, error) {
	var assignments []*stock.StockAssignment
	if err := r.db.WithContext(ctx).
		Where("product_id = ? AND is_active = ?", productID, true).
		Order("priority ASC, created_at ASC").
		Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

// FindByStation returns all pools held at a station
func (r *GormStockAssignmentRepository) FindByStation(ctx context.Context, stationID uuid.UUID) ([]*stock.StockAssignment, error) {
	var assignments []*stock.StockAssignment
	if err := r.db.WithContext(ctx).
		Where("station_id = ?", stationID).
		Order("priority ASC, created_at ASC").
		Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

// FindBelowMinimum returns active pools under their alert threshold
func (r *GormStockAssignmentRepository) FindBelowMinimum(ctx context.Context) ([]*stock.StockAssignment, error) {
	var assignments []*stock.StockAssignment
	if err := r.db.WithContext(ctx).
		Where("is_active = ? AND stock < min_stock", true).
		Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

// Save inserts a stock assignment
func (r *GormStockAssignmentRepository) Save(ctx context.Context, assignment *stock.StockAssignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

// Update persists changes to a stock assignment
func (r *GormStockAssignmentRepository) Update(ctx context.Context, assignment *stock.StockAssignment) error {
	result := r.db.WithContext(ctx).Save(assignment)
	if result.Error != nil {
		return result.Error
	}
	return nil
}

// Delete removes a stock assignment
func (r *GormStockAssignmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&stock.StockAssignment{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormStockAssignmentRepository implements StockAssignmentRepository
var _ stock.StockAssignmentRepository = (*GormStockAssignmentRepository)(nil)
