package ordering

import (
	"time"

	"github.com/google/uuid"
	"github.com/resto/backend/internal/domain/ordering"
	"github.com/shopspring/decimal"
)

// OpenOrderRequest opens a new order
type OpenOrderRequest struct {
	TableNumber string     `json:"table_number"`
	CustomerID  *uuid.UUID `json:"customer_id"`
	WaiterID    *uuid.UUID `json:"waiter_id"`
	Notes       string     `json:"notes"`
}

// AddItemRequest adds a product line to an order
type AddItemRequest struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
	Discount  decimal.Decimal `json:"discount"`
	// StationID overrides the product's default routing
	StationID *uuid.UUID `json:"station_id"`
	PersonID  *uuid.UUID `json:"person_id"`
	Shared    bool       `json:"shared"`
}

// AttachPersonRequest adds a diner to an order
type AttachPersonRequest struct {
	Name string `json:"name" binding:"required"`
}

// CancelOrderRequest cancels a whole order
type CancelOrderRequest struct {
	Reason       string     `json:"reason" binding:"required"`
	ActingUserID *uuid.UUID `json:"acting_user_id"`
	SupervisorID *uuid.UUID `json:"supervisor_id"`
}

// CancelItemRequest cancels a single line
type CancelItemRequest struct {
	Reason       string     `json:"reason" binding:"required"`
	ActingUserID *uuid.UUID `json:"acting_user_id"`
}

// OrderItemResponse is the API shape of one order line
type OrderItemResponse struct {
	ID                  uuid.UUID       `json:"id"`
	ProductID           uuid.UUID       `json:"product_id"`
	ProductName         string          `json:"product_name"`
	StationID           *uuid.UUID      `json:"station_id,omitempty"`
	PreparedByStationID *uuid.UUID      `json:"prepared_by_station_id,omitempty"`
	PersonID            *uuid.UUID      `json:"person_id,omitempty"`
	Shared              bool            `json:"shared"`
	Quantity            decimal.Decimal `json:"quantity"`
	UnitPrice           decimal.Decimal `json:"unit_price"`
	Discount            decimal.Decimal `json:"discount"`
	Amount              decimal.Decimal `json:"amount"`
	Status              string          `json:"status"`
	KitchenStatus       string          `json:"kitchen_status"`
	SentAt              *time.Time      `json:"sent_at,omitempty"`
	PreparedAt          *time.Time      `json:"prepared_at,omitempty"`
}

// PersonResponse is the API shape of a diner
type PersonResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// OrderResponse is the API shape of an order
type OrderResponse struct {
	ID           uuid.UUID           `json:"id"`
	OrderNumber  string              `json:"order_number"`
	Status       string              `json:"status"`
	TableNumber  string              `json:"table_number,omitempty"`
	CustomerID   *uuid.UUID          `json:"customer_id,omitempty"`
	WaiterID     *uuid.UUID          `json:"waiter_id,omitempty"`
	TotalAmount  decimal.Decimal     `json:"total_amount"`
	Notes        string              `json:"notes,omitempty"`
	Items        []OrderItemResponse `json:"items"`
	Persons      []PersonResponse    `json:"persons"`
	Version      int                 `json:"version"`
	OpenedAt     time.Time           `json:"opened_at"`
	ClosedAt     *time.Time          `json:"closed_at,omitempty"`
	CancelledAt  *time.Time          `json:"cancelled_at,omitempty"`
	CancelReason string              `json:"cancel_reason,omitempty"`
}

// OrderListFilter filters order listings
type OrderListFilter struct {
	Page        int     `form:"page"`
	PageSize    int     `form:"page_size"`
	Status      *string `form:"status"`
	TableNumber *string `form:"table_number"`
	OpenOnly    bool    `form:"open_only"`
}

// ToOrderResponse maps an order aggregate to its API shape
func ToOrderResponse(order *ordering.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(order.Items))
	for idx := range order.Items {
		items = append(items, ToOrderItemResponse(&order.Items[idx]))
	}
	persons := make([]PersonResponse, 0, len(order.Persons))
	for idx := range order.Persons {
		persons = append(persons, PersonResponse{ID: order.Persons[idx].ID, Name: order.Persons[idx].Name})
	}

	return OrderResponse{
		ID:           order.ID,
		OrderNumber:  order.OrderNumber,
		Status:       order.Status.String(),
		TableNumber:  order.TableNumber,
		CustomerID:   order.CustomerID,
		WaiterID:     order.WaiterID,
		TotalAmount:  order.TotalAmount,
		Notes:        order.Notes,
		Items:        items,
		Persons:      persons,
		Version:      order.Version,
		OpenedAt:     order.OpenedAt,
		ClosedAt:     order.ClosedAt,
		CancelledAt:  order.CancelledAt,
		CancelReason: order.CancelReason,
	}
}

// ToOrderItemResponse maps an order item to its API shape
func ToOrderItemResponse(item *ordering.OrderItem) OrderItemResponse {
	return OrderItemResponse{
		ID:                  item.ID,
		ProductID:           item.ProductID,
		ProductName:         item.ProductName,
		StationID:           item.StationID,
		PreparedByStationID: item.PreparedByStationID,
		PersonID:            item.PersonID,
		Shared:              item.SharedByTable,
		Quantity:            item.Quantity,
		UnitPrice:           item.UnitPrice,
		Discount:            item.Discount,
		Amount:              item.Amount(),
		Status:              item.Status.String(),
		KitchenStatus:       item.KitchenStatus.String(),
		SentAt:              item.SentAt,
		PreparedAt:          item.PreparedAt,
	}
}
