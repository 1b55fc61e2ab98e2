package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/resto/backend/internal/domain/shared"
)

// ProductRepository is the persistence port for menu products
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindByCode(ctx context.Context, code string) (*Product, error)
	FindAll(ctx context.Context, filter ProductFilter) (*shared.Paginated[Product], error)
	Save(ctx context.Context, product *Product) error
	Update(ctx context.Context, product *Product) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProductFilter narrows product listings
type ProductFilter struct {
	shared.Filter
	CategoryID *uuid.UUID
	Status     *ProductStatus
	Search     string
}

// StationRepository is the persistence port for stations
type StationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Station, error)
	FindByCode(ctx context.Context, code string) (*Station, error)
	FindAll(ctx context.Context, activeOnly bool) ([]*Station, error)
	Save(ctx context.Context, station *Station) error
	Update(ctx context.Context, station *Station) error
}

// CategoryRepository is the persistence port for menu categories
type CategoryRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Category, error)
	FindAll(ctx context.Context, activeOnly bool) ([]*Category, error)
	Save(ctx context.Context, category *Category) error
	Update(ctx context.Context, category *Category) error
	Delete(ctx context.Context, id uuid.UUID) error
}
