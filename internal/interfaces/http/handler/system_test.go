package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/resto/backend/internal/domain/ordering"
)

func setupSystemTestRouter(t *testing.T) (*gin.Engine, *MockOrderRepository) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	handler := NewSystemHandler(db, orderRepo, "test")

	router := gin.New()
	router.GET("/health", handler.Health)
	router.GET("/system/info", handler.Info)
	router.GET("/system/stats", handler.Stats)
	return router, orderRepo
}

func TestSystemHandler_Health(t *testing.T) {
	router, _ := setupSystemTestRouter(t)

	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	data := response["data"].(map[string]interface{})
	assert.Equal(t, "healthy", data["status"])
	assert.Equal(t, "up", data["database"])
}

func TestSystemHandler_Info(t *testing.T) {
	router, _ := setupSystemTestRouter(t)

	req, _ := http.NewRequest(http.MethodGet, "/system/info", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	data := response["data"].(map[string]interface{})
	assert.Equal(t, "resto-backend", data["service"])
	assert.Equal(t, "test", data["version"])
}

func TestSystemHandler_Stats(t *testing.T) {
	router, orderRepo := setupSystemTestRouter(t)

	orderRepo.On("CountByStatus", mock.Anything).Return(map[ordering.OrderStatus]int64{
		ordering.OrderStatusPending:   3,
		ordering.OrderStatusPreparing: 2,
	}, nil)

	req, _ := http.NewRequest(http.MethodGet, "/system/stats", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	data := response["data"].(map[string]interface{})
	byStatus := data["orders_by_status"].(map[string]interface{})
	assert.Equal(t, float64(3), byStatus["PENDING"])
	assert.Equal(t, float64(2), byStatus["PREPARING"])

	orderRepo.AssertExpectations(t)
}
