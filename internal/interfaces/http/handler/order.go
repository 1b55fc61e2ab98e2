package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appordering "github.com/resto/backend/internal/application/ordering"
	"github.com/resto/backend/internal/domain/ordering"
)

// OrderHandler handles order lifecycle HTTP requests
type OrderHandler struct {
	BaseHandler
	orderService        *appordering.OrderService
	cancellationService *appordering.CancellationService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService *appordering.OrderService, cancellationService *appordering.CancellationService) *OrderHandler {
	return &OrderHandler{
		orderService:        orderService,
		cancellationService: cancellationService,
	}
}

// advanceItemRequest selects the target preparation status for an item
type advanceItemRequest struct {
	Status string `json:"status" binding:"required"`
}

// markReadyRequest optionally records who finished preparing the item
type markReadyRequest struct {
	PreparedBy *uuid.UUID `json:"prepared_by"`
}

// Open godoc
// @Summary Open a new order
// @Description Opens a dine-in order for a table with an empty item list
// @Tags orders
// @Accept json
// @Produce json
// @Param request body ordering.OpenOrderRequest true "Order details"
// @Success 201 {object} dto.Response{data=ordering.OrderResponse}
// @Failure 400 {object} dto.Response
// @Router /api/v1/orders [post]
func (h *OrderHandler) Open(c *gin.Context) {
	var req appordering.OpenOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	resp, err := h.orderService.Open(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, resp)
}

// GetByID godoc
// @Summary Get order by ID
// @Tags orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} dto.Response{data=ordering.OrderResponse}
// @Failure 404 {object} dto.Response
// @Router /api/v1/orders/{id} [get]
func (h *OrderHandler) GetByID(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	resp, err := h.orderService.GetByID(c.Request.Context(), orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// GetByOrderNumber godoc
// @Summary Get order by order number
// @Tags orders
// @Produce json
// @Param number path string true "Order number"
// @Success 200 {object} dto.Response{data=ordering.OrderResponse}
// @Failure 404 {object} dto.Response
// @Router /api/v1/orders/number/{number} [get]
func (h *OrderHandler) GetByOrderNumber(c *gin.Context) {
	number := c.Param("number")
	if number == "" {
		h.BadRequest(c, "Order number is required")
		return
	}

	resp, err := h.orderService.GetByOrderNumber(c.Request.Context(), number)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// List godoc
// @Summary List orders
// @Description Lists orders filtered by status, table, or open-ness
// @Tags orders
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Param status query string false "Order status"
// @Param table_number query string false "Table number"
// @Param open_only query bool false "Only non-terminal orders"
// @Success 200 {object} dto.Response{data=[]ordering.OrderResponse}
// @Router /api/v1/orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	var filter appordering.OrderListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	orders, total, err := h.orderService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, orders, total, filter.Page, filter.PageSize)
}

// AddItem godoc
// @Summary Add an item to an order
// @Description Adds a product line to a pending or in-kitchen order
// @Tags orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param request body ordering.AddItemRequest true "Item details"
// @Success 200 {object} dto.Response{data=ordering.OrderResponse}
// @Failure 409 {object} dto.Response
// @Failure 422 {object} dto.Response
// @Router /api/v1/orders/{id}/items [post]
func (h *OrderHandler) AddItem(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	var req appordering.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	resp, err := h.orderService.AddItem(c.Request.Context(), orderID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// AttachPerson godoc
// @Summary Attach a named diner to an order
// @Tags orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param request body ordering.AttachPersonRequest true "Person details"
// @Success 200 {object} dto.Response{data=ordering.OrderResponse}
// @Router /api/v1/orders/{id}/persons [post]
func (h *OrderHandler) AttachPerson(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	var req appordering.AttachPersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	resp, err := h.orderService.AttachPerson(c.Request.Context(), orderID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// SendToKitchen godoc
// @Summary Send an order to the kitchen
// @Description Dispatches all pending items and triggers stock allocation
// @Tags orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} dto.Response{data=ordering.OrderResponse}
// @Failure 409 {object} dto.Response
// @Failure 422 {object} dto.Response
// @Router /api/v1/orders/{id}/send [post]
func (h *OrderHandler) SendToKitchen(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	resp, err := h.orderService.SendToKitchen(c.Request.Context(), orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// MarkItemInProgress godoc
// @Summary Mark an item as being prepared
// @Tags orders
// @Produce json
// @Param id path string true "Order ID"
// @Param itemId path string true "Item ID"
// @Success 200 {object} dto.Response{data=ordering.OrderResponse}
// @Failure 409 {object} dto.Response
// @Router /api/v1/orders/{id}/items/{itemId}/start [post]
func (h *OrderHandler) MarkItemInProgress(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}
	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		h.BadRequest(c, "Invalid item ID")
		return
	}

	resp, err := h.orderService.MarkItemInProgress(c.Request.Context(), orderID, itemID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// MarkItemReady godoc
// @Summary Mark an item as ready to serve
// @Tags orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param itemId path string true "Item ID"
// @Success 200 {object} dto.Response{data=ordering.OrderResponse}
// @Failure 409 {object} dto.Response
// @Router /api/v1/orders/{id}/items/{itemId}/ready [post]
func (h *OrderHandler) MarkItemReady(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}
	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		h.BadRequest(c, "Invalid item ID")
		return
	}

	// Body is optional, an empty post marks the item ready anonymously
	var req markReadyRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BadRequest(c, "Invalid request: "+err.Error())
			return
		}
	}

	resp, err := h.orderService.MarkItemReady(c.Request.Context(), orderID, itemID, req.PreparedBy)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// AdvanceItemStatus godoc
// @Summary Advance an item to a target preparation status
// @Tags orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param itemId path string true "Item ID"
// @Param request body advanceItemRequest true "Target status"
// @Success 200 {object} dto.Response{data=ordering.OrderResponse}
// @Failure 409 {object} dto.Response
// @Router /api/v1/orders/{id}/items/{itemId}/status [put]
func (h *OrderHandler) AdvanceItemStatus(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}
	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		h.BadRequest(c, "Invalid item ID")
		return
	}

	var req advanceItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	target := ordering.ItemStatus(req.Status)
	if !target.IsValid() {
		h.BadRequest(c, "Unknown item status: "+req.Status)
		return
	}

	resp, err := h.orderService.AdvanceItemStatus(c.Request.Context(), orderID, itemID, target)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// RequestBill godoc
// @Summary Request the bill for an order
// @Description Moves the order to the payable state once enough items are served
// @Tags orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} dto.Response{data=ordering.OrderResponse}
// @Failure 409 {object} dto.Response
// @Router /api/v1/orders/{id}/bill [post]
func (h *OrderHandler) RequestBill(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	resp, err := h.orderService.RequestBill(c.Request.Context(), orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// CloseOrder godoc
// @Summary Close a fully paid order
// @Tags orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} dto.Response{data=ordering.OrderResponse}
// @Failure 409 {object} dto.Response
// @Failure 422 {object} dto.Response
// @Router /api/v1/orders/{id}/close [post]
func (h *OrderHandler) CloseOrder(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	resp, err := h.orderService.CloseOrder(c.Request.Context(), orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// CancelOrder godoc
// @Summary Cancel an entire order
// @Description Cancels the order, reverses stock, and records an audit entry
// @Tags orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param request body ordering.CancelOrderRequest true "Cancellation details"
// @Success 200 {object} dto.Response{data=ordering.OrderResponse}
// @Failure 409 {object} dto.Response
// @Router /api/v1/orders/{id}/cancel [post]
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	var req appordering.CancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	resp, err := h.cancellationService.CancelOrder(c.Request.Context(), orderID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// CancelItem godoc
// @Summary Cancel a single order item
// @Tags orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param itemId path string true "Item ID"
// @Param request body ordering.CancelItemRequest true "Cancellation details"
// @Success 200 {object} dto.Response{data=ordering.OrderResponse}
// @Failure 409 {object} dto.Response
// @Router /api/v1/orders/{id}/items/{itemId}/cancel [post]
func (h *OrderHandler) CancelItem(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}
	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		h.BadRequest(c, "Invalid item ID")
		return
	}

	var req appordering.CancelItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	resp, err := h.cancellationService.CancelItem(c.Request.Context(), orderID, itemID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// CancellationHistory godoc
// @Summary List cancellation audit entries for an order
// @Tags orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} dto.Response
// @Router /api/v1/orders/{id}/cancellations [get]
func (h *OrderHandler) CancellationHistory(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	logs, err := h.cancellationService.GetCancellationHistory(c.Request.Context(), orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, logs)
}
