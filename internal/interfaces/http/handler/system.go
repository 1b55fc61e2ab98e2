package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/resto/backend/internal/domain/ordering"
)

// SystemHandler handles health and operational status requests
type SystemHandler struct {
	BaseHandler
	db        *gorm.DB
	orderRepo ordering.OrderRepository
	version   string
	startTime time.Time
}

// NewSystemHandler creates a new system handler
func NewSystemHandler(db *gorm.DB, orderRepo ordering.OrderRepository, version string) *SystemHandler {
	return &SystemHandler{
		db:        db,
		orderRepo: orderRepo,
		version:   version,
		startTime: time.Now(),
	}
}

// Health godoc
// @Summary Health check
// @Description Reports service liveness and database connectivity
// @Tags system
// @Produce json
// @Success 200 {object} dto.Response
// @Failure 503 {object} dto.Response
// @Router /health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	status := "healthy"
	dbStatus := "up"

	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		status = "degraded"
		dbStatus = "down"
	}

	payload := gin.H{
		"status":   status,
		"database": dbStatus,
		"time":     time.Now().UTC(),
	}

	if status != "healthy" {
		c.JSON(http.StatusServiceUnavailable, payload)
		return
	}
	h.Success(c, payload)
}

// Info godoc
// @Summary Service information
// @Tags system
// @Produce json
// @Success 200 {object} dto.Response
// @Router /api/v1/system/info [get]
func (h *SystemHandler) Info(c *gin.Context) {
	h.Success(c, gin.H{
		"service": "resto-backend",
		"version": h.version,
		"uptime":  time.Since(h.startTime).Round(time.Second).String(),
	})
}

// Stats godoc
// @Summary Order counts grouped by status
// @Description Snapshot of the floor, how many orders sit in each lifecycle state
// @Tags system
// @Produce json
// @Success 200 {object} dto.Response
// @Router /api/v1/system/stats [get]
func (h *SystemHandler) Stats(c *gin.Context) {
	counts, err := h.orderRepo.CountByStatus(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	byStatus := make(map[string]int64, len(counts))
	for status, n := range counts {
		byStatus[status.String()] = n
	}

	h.Success(c, gin.H{"orders_by_status": byStatus})
}
