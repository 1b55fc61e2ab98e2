package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apppayments "github.com/resto/backend/internal/application/payments"
)

// PaymentHandler handles payment reconciliation HTTP requests
type PaymentHandler struct {
	BaseHandler
	paymentService *apppayments.PaymentService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService *apppayments.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// paymentResult pairs a payment with the order balance after it was applied
type paymentResult struct {
	Payment *apppayments.PaymentResponse `json:"payment"`
	Balance *apppayments.BalanceResponse `json:"balance"`
}

// Register godoc
// @Summary Register a payment against an order
// @Description Records a payment, validates split attribution, and reports the running balance
// @Tags payments
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param request body payments.RegisterPaymentRequest true "Payment details"
// @Success 201 {object} dto.Response
// @Failure 409 {object} dto.Response
// @Failure 422 {object} dto.Response
// @Router /api/v1/orders/{id}/payments [post]
func (h *PaymentHandler) Register(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	var req apppayments.RegisterPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	payment, balance, err := h.paymentService.RegisterPayment(c.Request.Context(), orderID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, paymentResult{Payment: payment, Balance: balance})
}

// Void godoc
// @Summary Void a registered payment
// @Description Reverses a payment and rolls the order back from the completed state if needed
// @Tags payments
// @Accept json
// @Produce json
// @Param id path string true "Payment ID"
// @Param request body payments.VoidPaymentRequest true "Void reason"
// @Success 200 {object} dto.Response
// @Failure 409 {object} dto.Response
// @Router /api/v1/payments/{id}/void [post]
func (h *PaymentHandler) Void(c *gin.Context) {
	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID")
		return
	}

	var req apppayments.VoidPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	payment, balance, err := h.paymentService.VoidPayment(c.Request.Context(), paymentID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, paymentResult{Payment: payment, Balance: balance})
}

// Balance godoc
// @Summary Get the payment balance for an order
// @Tags payments
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} dto.Response{data=payments.BalanceResponse}
// @Failure 404 {object} dto.Response
// @Router /api/v1/orders/{id}/balance [get]
func (h *PaymentHandler) Balance(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	balance, err := h.paymentService.GetOrderBalance(c.Request.Context(), orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, balance)
}

// ListByOrder godoc
// @Summary List payments registered against an order
// @Tags payments
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} dto.Response{data=[]payments.PaymentResponse}
// @Router /api/v1/orders/{id}/payments [get]
func (h *PaymentHandler) ListByOrder(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	list, err := h.paymentService.ListByOrder(c.Request.Context(), orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, list)
}
