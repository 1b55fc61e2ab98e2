package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/resto/backend/internal/domain/shared"
	"github.com/resto/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// ProductStatus represents the status of a menu product
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
	// ProductStatusRetired marks items removed from the menu for good;
	// old tickets still reference them
	ProductStatusRetired ProductStatus = "retired"
)

// Product is a menu item. It is the aggregate root for catalog operations.
// TrackInventory and AllowNegativeStock drive the allocation engine: an
// untracked product never touches stock, and a tracked one may only go
// below zero when negative stock is allowed.
type Product struct {
	shared.BaseAggregateRoot
	Code               string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_product_code"`
	Name               string          `gorm:"type:varchar(200);not null"`
	Description        string          `gorm:"type:text"`
	CategoryID         *uuid.UUID      `gorm:"type:uuid;index"`
	Price              decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	TrackInventory     bool            `gorm:"not null;default:false"`
	AllowNegativeStock bool            `gorm:"not null;default:false"`
	// DefaultStationID routes new order lines to a kitchen station
	DefaultStationID *uuid.UUID    `gorm:"type:uuid"`
	Status           ProductStatus `gorm:"type:varchar(20);not null;default:'active'"`
	SortOrder        int           `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new menu product
func NewProduct(code, name string, price valueobject.Money) (*Product, error) {
	if err := validateProductCode(code); err != nil {
		return nil, err
	}
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}

	product := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              strings.ToUpper(code),
		Name:              name,
		Price:             price.Amount(),
		Status:            ProductStatusActive,
	}

	product.AddDomainEvent(NewProductCreatedEvent(product))

	return product, nil
}

// Update updates the product's basic information
func (p *Product) Update(name, description string) error {
	if err := validateProductName(name); err != nil {
		return err
	}

	p.Name = name
	p.Description = description
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductUpdatedEvent(p))

	return nil
}

// SetPrice changes the menu price. Open orders keep the price captured on
// their lines.
func (p *Product) SetPrice(price valueobject.Money) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}

	p.Price = price.Amount()
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductUpdatedEvent(p))

	return nil
}

// PriceMoney returns the menu price as Money
func (p *Product) PriceMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(p.Price)
}

// SetCategory sets the product category
func (p *Product) SetCategory(categoryID *uuid.UUID) {
	p.CategoryID = categoryID
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// SetDefaultStation sets the kitchen station new lines are routed to
func (p *Product) SetDefaultStation(stationID *uuid.UUID) {
	p.DefaultStationID = stationID
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// EnableInventoryTracking turns on stock allocation for the product
func (p *Product) EnableInventoryTracking(allowNegative bool) {
	p.TrackInventory = true
	p.AllowNegativeStock = allowNegative
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// DisableInventoryTracking turns off stock allocation. Existing ledgers
// remain reversible.
func (p *Product) DisableInventoryTracking() {
	p.TrackInventory = false
	p.AllowNegativeStock = false
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// SetSortOrder sets the menu display order
func (p *Product) SetSortOrder(order int) {
	p.SortOrder = order
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// Activate puts the product on the menu
func (p *Product) Activate() error {
	if p.Status == ProductStatusRetired {
		return shared.NewDomainError("PRODUCT_RETIRED", "Retired products cannot be reactivated")
	}

	p.Status = ProductStatusActive
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// Deactivate takes the product off the menu temporarily
func (p *Product) Deactivate() {
	p.Status = ProductStatusInactive
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// Retire removes the product from the menu permanently
func (p *Product) Retire() {
	p.Status = ProductStatusRetired
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductRetiredEvent(p))
}

// IsOrderable reports whether new order lines may reference the product
func (p *Product) IsOrderable() bool {
	return p.Status == ProductStatusActive
}

func validateProductCode(code string) error {
	if code == "" {
		return shared.NewDomainError("INVALID_CODE", "Product code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewDomainError("INVALID_CODE", "Product code cannot exceed 50 characters")
	}
	return nil
}

func validateProductName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	return nil
}
