package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/resto/backend/internal/domain/catalog"
	"github.com/resto/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormStationRepository implements StationRepository using GORM
type GormStationRepository struct {
	db *gorm.DB
}

// NewGormStationRepository creates a new GormStationRepository
func NewGormStationRepository(db *gorm.DB) *GormStationRepository {
	return &GormStationRepository{db: db}
}

// FindByID finds a station by its ID
func (r *GormStationRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Station, error) {
	var station catalog.Station
	if err := r.db.WithContext(ctx).
		First(&station, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &station, nil
}

// FindByCode finds a station by its code
func (r *GormStationRepository) FindByCode(ctx context.Context, code string) (*catalog.Station, error) {
	var station catalog.Station
	if err := r.db.WithContext(ctx).
		Where("code = ?", code).
		First(&station).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &station, nil
}

// FindAll lists stations, optionally restricted to active ones
func (r *GormStationRepository) FindAll(ctx context.Context, activeOnly bool) ([]*catalog.Station, error) {
	query := r.db.WithContext(ctx).Order("code ASC")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var stations []*catalog.Station
	if err := query.Find(&stations).Error; err != nil {
		return nil, err
	}
	return stations, nil
}

// Save inserts a station
func (r *GormStationRepository) Save(ctx context.Context, station *catalog.Station) error {
	return r.db.WithContext(ctx).Create(station).Error
}

// Update persists changes to a station
func (r *GormStationRepository) Update(ctx context.Context, station *catalog.Station) error {
	return r.db.WithContext(ctx).Save(station).Error
}

// Ensure GormStationRepository implements StationRepository
var _ catalog.StationRepository = (*GormStationRepository)(nil)
