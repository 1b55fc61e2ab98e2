package integration

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	appordering "github.com/resto/backend/internal/application/ordering"
	apppayments "github.com/resto/backend/internal/application/payments"
	"github.com/resto/backend/internal/domain/catalog"
	"github.com/resto/backend/internal/domain/ordering"
	"github.com/resto/backend/internal/domain/shared/valueobject"
	"github.com/resto/backend/internal/domain/stock"
	"github.com/resto/backend/internal/infrastructure/persistence"
)

// posFixture wires the application services against a real database the way
// cmd/server does, minus HTTP and telemetry.
type posFixture struct {
	db             *gorm.DB
	orderService   *appordering.OrderService
	paymentService *apppayments.PaymentService
	cancelService  *appordering.CancellationService
	assignmentRepo *persistence.GormStockAssignmentRepository
	ledgerRepo     *persistence.GormAllocationLedgerRepository
	productRepo    *persistence.GormProductRepository
	stationRepo    *persistence.GormStationRepository
}

func newPosFixture(t *testing.T, testDB *TestDB, cfg appordering.OrderServiceConfig) *posFixture {
	t.Helper()

	orderRepo := persistence.NewGormOrderRepository(testDB.DB)
	productRepo := persistence.NewGormProductRepository(testDB.DB)
	paymentRepo := persistence.NewGormPaymentRepository(testDB.DB)
	txScope := persistence.NewGormTransactionScope(testDB.DB)

	return &posFixture{
		db:             testDB.DB,
		orderService:   appordering.NewOrderService(orderRepo, productRepo, txScope, cfg),
		paymentService: apppayments.NewPaymentService(paymentRepo, txScope),
		cancelService:  appordering.NewCancellationService(txScope),
		assignmentRepo: persistence.NewGormStockAssignmentRepository(testDB.DB),
		ledgerRepo:     persistence.NewGormAllocationLedgerRepository(testDB.DB),
		productRepo:    productRepo,
		stationRepo:    persistence.NewGormStationRepository(testDB.DB),
	}
}

// seedTrackedProduct creates a station, an inventory-tracked product and a
// stock pool binding them, and returns the product and station.
func (f *posFixture) seedTrackedProduct(t *testing.T, code string, price float64, stockQty float64) (*catalog.Product, *catalog.Station) {
	t.Helper()
	ctx := context.Background()

	station, err := catalog.NewStation("ST-"+code, "Station "+code)
	require.NoError(t, err)
	require.NoError(t, f.stationRepo.Save(ctx, station))

	product, err := catalog.NewProduct(code, "Product "+code, valueobject.NewMoneyUSDFromFloat(price))
	require.NoError(t, err)
	product.EnableInventoryTracking(false)
	product.SetDefaultStation(&station.ID)
	require.NoError(t, f.productRepo.Save(ctx, product))

	assignment, err := stock.NewStockAssignment(product.ID, station.ID,
		decimal.NewFromFloat(stockQty), decimal.Zero, 0)
	require.NoError(t, err)
	require.NoError(t, f.assignmentRepo.Save(ctx, assignment))

	return product, station
}

// TestOrderLifecycle_EndToEnd drives one ticket through the whole lifecycle:
// open, add item, send to kitchen, prepare, bill, pay and close. Stock is
// allocated when the kitchen finishes the item and the payment completing
// the balance moves the order to SERVED.
func TestOrderLifecycle_EndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := NewTestDB(t)
	f := newPosFixture(t, testDB, appordering.OrderServiceConfig{
		AllocationTrigger: appordering.TriggerItemReady,
		BillTolerance:     decimal.Zero,
	})
	ctx := context.Background()

	product, station := f.seedTrackedProduct(t, "PIZZA", 12.50, 10)

	// Open
	order, err := f.orderService.Open(ctx, appordering.OpenOrderRequest{TableNumber: "7"})
	require.NoError(t, err)
	assert.Equal(t, string(ordering.OrderStatusPending), order.Status)
	assert.Contains(t, order.OrderNumber, "POS-")

	// Add two pizzas
	order, err = f.orderService.AddItem(ctx, order.ID, appordering.AddItemRequest{
		ProductID: product.ID,
		Quantity:  decimal.NewFromInt(2),
	})
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	item := order.Items[0]
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(25)))

	// Send to kitchen
	order, err = f.orderService.SendToKitchen(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, string(ordering.OrderStatusSentToKitchen), order.Status)

	// No allocation before the item is ready with the item_ready trigger
	pools, err := f.assignmentRepo.FindByProduct(ctx, product.ID)
	require.NoError(t, err)
	require.Len(t, pools, 1)
	assert.True(t, pools[0].Stock.Equal(decimal.NewFromInt(10)))

	// Station picks it up
	order, err = f.orderService.MarkItemInProgress(ctx, order.ID, item.ID)
	require.NoError(t, err)
	assert.Equal(t, string(ordering.OrderStatusPreparing), order.Status)

	// Kitchen finishes; allocation happens in the same transaction
	order, err = f.orderService.MarkItemReady(ctx, order.ID, item.ID, &station.ID)
	require.NoError(t, err)
	assert.Equal(t, string(ordering.OrderStatusReady), order.Status)

	pools, err = f.assignmentRepo.FindByProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.True(t, pools[0].Stock.Equal(decimal.NewFromInt(8)), "stock should drop by the ordered quantity")

	ledger, err := f.ledgerRepo.FindByOrderItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, stock.LedgerStatusActive, ledger.Status)
	assert.True(t, ledger.AllocatedTotal().Equal(decimal.NewFromInt(2)))

	// Bill
	order, err = f.orderService.RequestBill(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, string(ordering.OrderStatusReadyToPay), order.Status)

	// Full payment settles the order
	payment, balance, err := f.paymentService.RegisterPayment(ctx, order.ID, apppayments.RegisterPaymentRequest{
		Amount: decimal.NewFromInt(25),
		Method: "CASH",
	})
	require.NoError(t, err)
	assert.Equal(t, "CASH", payment.Method)
	assert.True(t, balance.FullyPaid)
	assert.True(t, balance.Balance.IsZero())
	assert.Equal(t, string(ordering.OrderStatusServed), balance.OrderStatus)

	// Close
	order, err = f.orderService.CloseOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, string(ordering.OrderStatusCompleted), order.Status)
	require.NotNil(t, order.ClosedAt)

	// Terminal orders accept no further mutations
	_, err = f.orderService.AddItem(ctx, order.ID, appordering.AddItemRequest{
		ProductID: product.ID,
		Quantity:  decimal.NewFromInt(1),
	})
	assert.Error(t, err)
}

// TestOrderLifecycle_AllocationAtSendToKitchen verifies the alternative
// trigger: every routed item allocates when the order is sent.
func TestOrderLifecycle_AllocationAtSendToKitchen(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := NewTestDB(t)
	f := newPosFixture(t, testDB, appordering.OrderServiceConfig{
		AllocationTrigger: appordering.TriggerSendToKitchen,
		BillTolerance:     decimal.Zero,
	})
	ctx := context.Background()

	product, _ := f.seedTrackedProduct(t, "BURGER", 9.00, 5)

	order, err := f.orderService.Open(ctx, appordering.OpenOrderRequest{})
	require.NoError(t, err)
	order, err = f.orderService.AddItem(ctx, order.ID, appordering.AddItemRequest{
		ProductID: product.ID,
		Quantity:  decimal.NewFromInt(3),
	})
	require.NoError(t, err)

	_, err = f.orderService.SendToKitchen(ctx, order.ID)
	require.NoError(t, err)

	pools, err := f.assignmentRepo.FindByProduct(ctx, product.ID)
	require.NoError(t, err)
	require.Len(t, pools, 1)
	assert.True(t, pools[0].Stock.Equal(decimal.NewFromInt(2)))

	// A re-send attempt must not deduct twice: the item already holds an
	// active ledger.
	ledger, err := f.ledgerRepo.FindByOrderItem(ctx, order.Items[0].ID)
	require.NoError(t, err)
	assert.True(t, ledger.AllocatedTotal().Equal(decimal.NewFromInt(3)))
}

// TestOrderLifecycle_BillToleranceGate exercises the early-bill rule: a bill
// before the kitchen finishes is only allowed within the configured fraction
// of unfinished items.
func TestOrderLifecycle_BillToleranceGate(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := NewTestDB(t)

	t.Run("zero tolerance rejects early bill", func(t *testing.T) {
		f := newPosFixture(t, testDB, appordering.OrderServiceConfig{
			AllocationTrigger: appordering.TriggerItemReady,
			BillTolerance:     decimal.Zero,
		})
		ctx := context.Background()
		product, _ := f.seedTrackedProduct(t, "SOUP", 4.00, 20)

		order, err := f.orderService.Open(ctx, appordering.OpenOrderRequest{})
		require.NoError(t, err)
		order, err = f.orderService.AddItem(ctx, order.ID, appordering.AddItemRequest{
			ProductID: product.ID,
			Quantity:  decimal.NewFromInt(1),
		})
		require.NoError(t, err)
		_, err = f.orderService.SendToKitchen(ctx, order.ID)
		require.NoError(t, err)

		_, err = f.orderService.RequestBill(ctx, order.ID)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "tolerance")
	})

	t.Run("full tolerance allows early bill", func(t *testing.T) {
		f := newPosFixture(t, testDB, appordering.OrderServiceConfig{
			AllocationTrigger: appordering.TriggerItemReady,
			BillTolerance:     decimal.NewFromInt(1),
		})
		ctx := context.Background()
		product, _ := f.seedTrackedProduct(t, "SALAD", 6.00, 20)

		order, err := f.orderService.Open(ctx, appordering.OpenOrderRequest{})
		require.NoError(t, err)
		order, err = f.orderService.AddItem(ctx, order.ID, appordering.AddItemRequest{
			ProductID: product.ID,
			Quantity:  decimal.NewFromInt(1),
		})
		require.NoError(t, err)
		_, err = f.orderService.SendToKitchen(ctx, order.ID)
		require.NoError(t, err)

		billed, err := f.orderService.RequestBill(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, string(ordering.OrderStatusReadyToPay), billed.Status)
	})
}
