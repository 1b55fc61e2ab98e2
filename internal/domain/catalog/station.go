package catalog

import (
	"strings"

	"github.com/resto/backend/internal/domain/shared"
)

// Station is a kitchen or bar preparation point. Order lines are routed to
// stations, and each station can hold its own stock pools.
type Station struct {
	shared.BaseAggregateRoot
	Code     string `gorm:"type:varchar(50);not null;uniqueIndex:idx_station_code"`
	Name     string `gorm:"type:varchar(100);not null"`
	IsActive bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Station) TableName() string {
	return "stations"
}

// NewStation creates a preparation station
func NewStation(code, name string) (*Station, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Station code cannot be empty")
	}
	if len(code) > 50 {
		return nil, shared.NewDomainError("INVALID_CODE", "Station code cannot exceed 50 characters")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Station name cannot be empty")
	}
	if len(name) > 100 {
		return nil, shared.NewDomainError("INVALID_NAME", "Station name cannot exceed 100 characters")
	}

	return &Station{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              strings.ToUpper(code),
		Name:              name,
		IsActive:          true,
	}, nil
}

// Rename changes the display name
func (s *Station) Rename(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Station name cannot be empty")
	}
	s.Name = name
	s.Touch()
	s.IncrementVersion()
	return nil
}

// Activate brings the station back into service
func (s *Station) Activate() {
	s.IsActive = true
	s.Touch()
	s.IncrementVersion()
}

// Deactivate takes the station out of service. Its stock pools stop
// receiving allocations once marked inactive too.
func (s *Station) Deactivate() {
	s.IsActive = false
	s.Touch()
	s.IncrementVersion()
}
