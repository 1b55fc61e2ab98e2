package catalog

import (
	"github.com/google/uuid"
	"github.com/resto/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// CreateProductRequest creates a menu product
type CreateProductRequest struct {
	Code               string          `json:"code" binding:"required"`
	Name               string          `json:"name" binding:"required"`
	Description        string          `json:"description"`
	Price              decimal.Decimal `json:"price"`
	CategoryID         *uuid.UUID      `json:"category_id"`
	DefaultStationID   *uuid.UUID      `json:"default_station_id"`
	TrackInventory     bool            `json:"track_inventory"`
	AllowNegativeStock bool            `json:"allow_negative_stock"`
}

// UpdateProductRequest edits a menu product
type UpdateProductRequest struct {
	Name             string           `json:"name" binding:"required"`
	Description      string           `json:"description"`
	Price            *decimal.Decimal `json:"price"`
	CategoryID       *uuid.UUID       `json:"category_id"`
	DefaultStationID *uuid.UUID       `json:"default_station_id"`
}

// CreateStationRequest creates a preparation station
type CreateStationRequest struct {
	Code string `json:"code" binding:"required"`
	Name string `json:"name" binding:"required"`
}

// CreateCategoryRequest creates a menu category
type CreateCategoryRequest struct {
	Name      string `json:"name" binding:"required"`
	SortOrder int    `json:"sort_order"`
}

// ProductResponse is the API shape of a menu product
type ProductResponse struct {
	ID                 uuid.UUID       `json:"id"`
	Code               string          `json:"code"`
	Name               string          `json:"name"`
	Description        string          `json:"description,omitempty"`
	Price              decimal.Decimal `json:"price"`
	CategoryID         *uuid.UUID      `json:"category_id,omitempty"`
	DefaultStationID   *uuid.UUID      `json:"default_station_id,omitempty"`
	TrackInventory     bool            `json:"track_inventory"`
	AllowNegativeStock bool            `json:"allow_negative_stock"`
	Status             string          `json:"status"`
}

// StationResponse is the API shape of a station
type StationResponse struct {
	ID       uuid.UUID `json:"id"`
	Code     string    `json:"code"`
	Name     string    `json:"name"`
	IsActive bool      `json:"is_active"`
}

// CategoryResponse is the API shape of a menu category
type CategoryResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	SortOrder int       `json:"sort_order"`
	IsActive  bool      `json:"is_active"`
}

// ProductListFilter filters product listings
type ProductListFilter struct {
	Page       int        `form:"page"`
	PageSize   int        `form:"page_size"`
	CategoryID *uuid.UUID `form:"category_id"`
	Status     *string    `form:"status"`
	Search     string     `form:"search"`
}

// ToProductResponse maps a product to its API shape
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:                 p.ID,
		Code:               p.Code,
		Name:               p.Name,
		Description:        p.Description,
		Price:              p.Price,
		CategoryID:         p.CategoryID,
		DefaultStationID:   p.DefaultStationID,
		TrackInventory:     p.TrackInventory,
		AllowNegativeStock: p.AllowNegativeStock,
		Status:             string(p.Status),
	}
}

// ToStationResponse maps a station to its API shape
func ToStationResponse(s *catalog.Station) StationResponse {
	return StationResponse{
		ID:       s.ID,
		Code:     s.Code,
		Name:     s.Name,
		IsActive: s.IsActive,
	}
}

// ToCategoryResponse maps a category to its API shape
func ToCategoryResponse(c *catalog.Category) CategoryResponse {
	return CategoryResponse{
		ID:        c.ID,
		Name:      c.Name,
		SortOrder: c.SortOrder,
		IsActive:  c.IsActive,
	}
}
