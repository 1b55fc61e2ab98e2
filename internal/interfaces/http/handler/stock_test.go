package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	appstock "github.com/resto/backend/internal/application/stock"
	"github.com/resto/backend/internal/domain/shared"
	"github.com/resto/backend/internal/domain/stock"
)

type stockTestEnv struct {
	router         *gin.Engine
	assignmentRepo *MockStockAssignmentRepository
	ledgerRepo     *MockAllocationLedgerRepository
	handler        *StockHandler
}

func setupStockTestRouter() *stockTestEnv {
	gin.SetMode(gin.TestMode)

	env := &stockTestEnv{
		assignmentRepo: new(MockStockAssignmentRepository),
		ledgerRepo:     new(MockAllocationLedgerRepository),
	}
	service := appstock.NewStockService(env.assignmentRepo, env.ledgerRepo)
	env.handler = NewStockHandler(service)
	env.router = gin.New()
	return env
}

func createTestAssignment(productID, stationID uuid.UUID, stockQty, minStock int64, priority int) *stock.StockAssignment {
	assignment, err := stock.NewStockAssignment(productID, stationID,
		decimal.NewFromInt(stockQty), decimal.NewFromInt(minStock), priority)
	if err != nil {
		panic(err)
	}
	assignment.ClearDomainEvents()
	return assignment
}

func TestStockHandler_CreateAssignment(t *testing.T) {
	t.Run("should create assignment", func(t *testing.T) {
		env := setupStockTestRouter()
		env.router.POST("/stock/assignments", env.handler.CreateAssignment)

		productID := uuid.New()
		stationID := uuid.New()

		env.assignmentRepo.On("FindByProduct", mock.Anything, productID).
			Return([]*stock.StockAssignment{}, nil)
		env.assignmentRepo.On("Save", mock.Anything, mock.AnythingOfType("*stock.StockAssignment")).
			Return(nil)

		reqBody := appstock.CreateAssignmentRequest{
			ProductID: productID,
			StationID: stationID,
			Stock:     decimal.NewFromInt(40),
			MinStock:  decimal.NewFromInt(5),
			Priority:  1,
		}
		body, _ := json.Marshal(reqBody)

		req, _ := http.NewRequest(http.MethodPost, "/stock/assignments", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		env.assignmentRepo.AssertExpectations(t)
	})

	t.Run("should reject duplicate pool at the same station", func(t *testing.T) {
		env := setupStockTestRouter()
		env.router.POST("/stock/assignments", env.handler.CreateAssignment)

		productID := uuid.New()
		stationID := uuid.New()
		existing := createTestAssignment(productID, stationID, 10, 2, 1)

		env.assignmentRepo.On("FindByProduct", mock.Anything, productID).
			Return([]*stock.StockAssignment{existing}, nil)

		reqBody := appstock.CreateAssignmentRequest{
			ProductID: productID,
			StationID: stationID,
			Stock:     decimal.NewFromInt(10),
		}
		body, _ := json.Marshal(reqBody)

		req, _ := http.NewRequest(http.MethodPost, "/stock/assignments", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("should require product and station", func(t *testing.T) {
		env := setupStockTestRouter()
		env.router.POST("/stock/assignments", env.handler.CreateAssignment)

		req, _ := http.NewRequest(http.MethodPost, "/stock/assignments", bytes.NewBufferString("{}"))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestStockHandler_AdjustAssignment(t *testing.T) {
	env := setupStockTestRouter()
	env.router.PATCH("/stock/assignments/:id", env.handler.AdjustAssignment)

	assignment := createTestAssignment(uuid.New(), uuid.New(), 20, 2, 1)

	env.assignmentRepo.On("FindByID", mock.Anything, assignment.ID).Return(assignment, nil)
	env.assignmentRepo.On("Update", mock.Anything, assignment).Return(nil)

	newPriority := 3
	reqBody := appstock.AdjustAssignmentRequest{Priority: &newPriority}
	body, _ := json.Marshal(reqBody)

	req, _ := http.NewRequest(http.MethodPatch, "/stock/assignments/"+assignment.ID.String(), bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	data := response["data"].(map[string]interface{})
	assert.Equal(t, float64(3), data["priority"])
	env.assignmentRepo.AssertExpectations(t)
}

func TestStockHandler_Replenish(t *testing.T) {
	t.Run("should add received stock", func(t *testing.T) {
		env := setupStockTestRouter()
		env.router.POST("/stock/assignments/:id/replenish", env.handler.Replenish)

		assignment := createTestAssignment(uuid.New(), uuid.New(), 4, 2, 1)

		env.assignmentRepo.On("FindByID", mock.Anything, assignment.ID).Return(assignment, nil)
		env.assignmentRepo.On("Update", mock.Anything, assignment).Return(nil)

		reqBody := appstock.ReplenishRequest{Quantity: decimal.NewFromInt(30)}
		body, _ := json.Marshal(reqBody)

		req, _ := http.NewRequest(http.MethodPost, "/stock/assignments/"+assignment.ID.String()+"/replenish", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		data := response["data"].(map[string]interface{})
		assert.Equal(t, "34", data["stock"])
	})

	t.Run("should return 404 for unknown assignment", func(t *testing.T) {
		env := setupStockTestRouter()
		env.router.POST("/stock/assignments/:id/replenish", env.handler.Replenish)

		assignmentID := uuid.New()
		env.assignmentRepo.On("FindByID", mock.Anything, assignmentID).
			Return(nil, shared.ErrNotFound)

		reqBody := appstock.ReplenishRequest{Quantity: decimal.NewFromInt(5)}
		body, _ := json.Marshal(reqBody)

		req, _ := http.NewRequest(http.MethodPost, "/stock/assignments/"+assignmentID.String()+"/replenish", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestStockHandler_GetProductChain(t *testing.T) {
	env := setupStockTestRouter()
	env.router.GET("/stock/products/:productId/chain", env.handler.GetProductChain)

	productID := uuid.New()
	chain := []*stock.StockAssignment{
		createTestAssignment(productID, uuid.New(), 10, 2, 1),
		createTestAssignment(productID, uuid.New(), 30, 5, 2),
	}

	env.assignmentRepo.On("FindActiveByProduct", mock.Anything, productID).Return(chain, nil)

	req, _ := http.NewRequest(http.MethodGet, "/stock/products/"+productID.String()+"/chain", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	data := response["data"].([]interface{})
	assert.Len(t, data, 2)
	first := data[0].(map[string]interface{})
	assert.Equal(t, float64(1), first["priority"])
}

func TestStockHandler_ListBelowMinimum(t *testing.T) {
	env := setupStockTestRouter()
	env.router.GET("/stock/below-minimum", env.handler.ListBelowMinimum)

	low := createTestAssignment(uuid.New(), uuid.New(), 1, 5, 1)
	env.assignmentRepo.On("FindBelowMinimum", mock.Anything).
		Return([]*stock.StockAssignment{low}, nil)

	req, _ := http.NewRequest(http.MethodGet, "/stock/below-minimum", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	data := response["data"].([]interface{})
	require.Len(t, data, 1)
	assert.True(t, data[0].(map[string]interface{})["below_minimum"].(bool))
}

func TestStockHandler_GetLedgerForItem(t *testing.T) {
	t.Run("should return 404 when the item was never allocated", func(t *testing.T) {
		env := setupStockTestRouter()
		env.router.GET("/stock/ledgers/items/:itemId", env.handler.GetLedgerForItem)

		itemID := uuid.New()
		env.ledgerRepo.On("FindByOrderItem", mock.Anything, itemID).
			Return(nil, shared.ErrNotFound)

		req, _ := http.NewRequest(http.MethodGet, "/stock/ledgers/items/"+itemID.String(), nil)
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestStockHandler_GetLedgersForOrder(t *testing.T) {
	env := setupStockTestRouter()
	env.router.GET("/stock/ledgers/orders/:id", env.handler.GetLedgersForOrder)

	orderID := uuid.New()
	env.ledgerRepo.On("FindActiveByOrder", mock.Anything, orderID).
		Return([]*stock.AllocationLedger{}, nil)

	req, _ := http.NewRequest(http.MethodGet, "/stock/ledgers/orders/"+orderID.String(), nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	env.ledgerRepo.AssertExpectations(t)
}
