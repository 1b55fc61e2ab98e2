package catalog

import (
	"github.com/resto/backend/internal/domain/shared"
)

const (
	EventProductCreated = "catalog.product_created"
	EventProductUpdated = "catalog.product_updated"
	EventProductRetired = "catalog.product_retired"
)

// ProductCreatedEvent fires when a product joins the menu
type ProductCreatedEvent struct {
	shared.BaseDomainEvent
	Code string `json:"code"`
	Name string `json:"name"`
}

// NewProductCreatedEvent creates a ProductCreatedEvent
func NewProductCreatedEvent(product *Product) *ProductCreatedEvent {
	return &ProductCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventProductCreated, "Product", product.ID),
		Code:            product.Code,
		Name:            product.Name,
	}
}

// ProductUpdatedEvent fires on edits to a product
type ProductUpdatedEvent struct {
	shared.BaseDomainEvent
	Code string `json:"code"`
	Name string `json:"name"`
}

// NewProductUpdatedEvent creates a ProductUpdatedEvent
func NewProductUpdatedEvent(product *Product) *ProductUpdatedEvent {
	return &ProductUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventProductUpdated, "Product", product.ID),
		Code:            product.Code,
		Name:            product.Name,
	}
}

// ProductRetiredEvent fires when a product leaves the menu permanently
type ProductRetiredEvent struct {
	shared.BaseDomainEvent
	Code string `json:"code"`
}

// NewProductRetiredEvent creates a ProductRetiredEvent
func NewProductRetiredEvent(product *Product) *ProductRetiredEvent {
	return &ProductRetiredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventProductRetired, "Product", product.ID),
		Code:            product.Code,
	}
}
