package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appstock "github.com/resto/backend/internal/application/stock"
)

// StockHandler handles station stock assignment HTTP requests
type StockHandler struct {
	BaseHandler
	stockService *appstock.StockService
}

// NewStockHandler creates a new stock handler
func NewStockHandler(stockService *appstock.StockService) *StockHandler {
	return &StockHandler{stockService: stockService}
}

// CreateAssignment godoc
// @Summary Assign a product to a station
// @Description Creates a station assignment holding stock for one product
// @Tags stock
// @Accept json
// @Produce json
// @Param request body stock.CreateAssignmentRequest true "Assignment details"
// @Success 201 {object} dto.Response{data=stock.AssignmentResponse}
// @Failure 409 {object} dto.Response
// @Router /api/v1/stock/assignments [post]
func (h *StockHandler) CreateAssignment(c *gin.Context) {
	var req appstock.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	resp, err := h.stockService.CreateAssignment(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, resp)
}

// AdjustAssignment godoc
// @Summary Adjust an assignment's threshold, priority, or active flag
// @Tags stock
// @Accept json
// @Produce json
// @Param id path string true "Assignment ID"
// @Param request body stock.AdjustAssignmentRequest true "Fields to adjust"
// @Success 200 {object} dto.Response{data=stock.AssignmentResponse}
// @Failure 404 {object} dto.Response
// @Router /api/v1/stock/assignments/{id} [patch]
func (h *StockHandler) AdjustAssignment(c *gin.Context) {
	assignmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid assignment ID")
		return
	}

	var req appstock.AdjustAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	resp, err := h.stockService.AdjustAssignment(c.Request.Context(), assignmentID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// Replenish godoc
// @Summary Add stock to a station assignment
// @Tags stock
// @Accept json
// @Produce json
// @Param id path string true "Assignment ID"
// @Param request body stock.ReplenishRequest true "Quantity to add"
// @Success 200 {object} dto.Response{data=stock.AssignmentResponse}
// @Failure 404 {object} dto.Response
// @Router /api/v1/stock/assignments/{id}/replenish [post]
func (h *StockHandler) Replenish(c *gin.Context) {
	assignmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid assignment ID")
		return
	}

	var req appstock.ReplenishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	resp, err := h.stockService.Replenish(c.Request.Context(), assignmentID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// GetProductChain godoc
// @Summary Get the allocation chain for a product
// @Description Lists the product's station assignments in allocation priority order
// @Tags stock
// @Produce json
// @Param productId path string true "Product ID"
// @Success 200 {object} dto.Response{data=[]stock.AssignmentResponse}
// @Router /api/v1/stock/products/{productId}/chain [get]
func (h *StockHandler) GetProductChain(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	chain, err := h.stockService.GetProductChain(c.Request.Context(), productID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, chain)
}

// ListByStation godoc
// @Summary List assignments held by a station
// @Tags stock
// @Produce json
// @Param stationId path string true "Station ID"
// @Success 200 {object} dto.Response{data=[]stock.AssignmentResponse}
// @Router /api/v1/stock/stations/{stationId}/assignments [get]
func (h *StockHandler) ListByStation(c *gin.Context) {
	stationID, err := uuid.Parse(c.Param("stationId"))
	if err != nil {
		h.BadRequest(c, "Invalid station ID")
		return
	}

	list, err := h.stockService.ListByStation(c.Request.Context(), stationID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, list)
}

// ListBelowMinimum godoc
// @Summary List assignments that fell below their minimum stock
// @Tags stock
// @Produce json
// @Success 200 {object} dto.Response{data=[]stock.AssignmentResponse}
// @Router /api/v1/stock/below-minimum [get]
func (h *StockHandler) ListBelowMinimum(c *gin.Context) {
	list, err := h.stockService.ListBelowMinimum(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, list)
}

// GetLedgerForItem godoc
// @Summary Get the allocation ledger entry for an order item
// @Tags stock
// @Produce json
// @Param itemId path string true "Order item ID"
// @Success 200 {object} dto.Response{data=stock.LedgerResponse}
// @Failure 404 {object} dto.Response
// @Router /api/v1/stock/ledgers/items/{itemId} [get]
func (h *StockHandler) GetLedgerForItem(c *gin.Context) {
	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		h.BadRequest(c, "Invalid item ID")
		return
	}

	ledger, err := h.stockService.GetLedgerForItem(c.Request.Context(), itemID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, ledger)
}

// GetLedgersForOrder godoc
// @Summary Get all allocation ledger entries for an order
// @Tags stock
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} dto.Response{data=[]stock.LedgerResponse}
// @Router /api/v1/stock/ledgers/orders/{id} [get]
func (h *StockHandler) GetLedgersForOrder(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	ledgers, err := h.stockService.GetLedgersForOrder(c.Request.Context(), orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, ledgers)
}
