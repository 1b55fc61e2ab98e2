package ordering

import (
	"github.com/google/uuid"
	"github.com/resto/backend/internal/domain/shared"
)

// Person is a diner attached to an order so a bill can be split by seat.
// The name is a free label ("Seat 1", "Anna"); no customer account needed.
type Person struct {
	shared.BaseEntity
	OrderID uuid.UUID `gorm:"type:uuid;index"`
	Name    string
}

// TableName returns the table name for GORM
func (Person) TableName() string {
	return "order_persons"
}

// NewPerson creates a diner record for an order
func NewPerson(orderID uuid.UUID, name string) (*Person, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Person name cannot be empty")
	}
	if len(name) > 100 {
		return nil, shared.NewDomainError("INVALID_NAME", "Person name cannot exceed 100 characters")
	}
	return &Person{
		BaseEntity: shared.NewBaseEntity(),
		OrderID:    orderID,
		Name:       name,
	}, nil
}
