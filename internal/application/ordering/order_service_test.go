package ordering

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/resto/backend/internal/domain/catalog"
	"github.com/resto/backend/internal/domain/ordering"
	"github.com/resto/backend/internal/domain/shared"
	"github.com/resto/backend/internal/domain/shared/valueobject"
	"github.com/resto/backend/internal/domain/stock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type serviceFixture struct {
	orderRepo   *fakeOrderRepo
	productRepo *fakeProductRepo
	paymentRepo *fakePaymentRepo
	logRepo     *fakeLogRepo
	ledgerRepo  *fakeLedgerRepo
	allocator   *fakeAllocator
	service     *OrderService
}

func newFixture(t *testing.T, cfg OrderServiceConfig) *serviceFixture {
	t.Helper()
	orderRepo := newFakeOrderRepo()
	productRepo := newFakeProductRepo()
	paymentRepo := newFakePaymentRepo()
	logRepo := &fakeLogRepo{}
	ledgerRepo := newFakeLedgerRepo()
	allocator := newFakeAllocator(ledgerRepo)
	scope := NewNoOpTransactionScope(orderRepo, logRepo, paymentRepo, ledgerRepo, allocator)

	return &serviceFixture{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		paymentRepo: paymentRepo,
		logRepo:     logRepo,
		ledgerRepo:  ledgerRepo,
		allocator:   allocator,
		service:     NewOrderService(orderRepo, productRepo, scope, cfg),
	}
}

// newTrackedProduct registers a product with one stock pool
func (f *serviceFixture) newTrackedProduct(t *testing.T, code, name, priceStr string, stockStr string, allowNegative bool) (*catalog.Product, *stock.StockAssignment) {
	t.Helper()
	price, err := valueobject.NewMoneyUSDFromString(priceStr)
	require.NoError(t, err)
	product, err := catalog.NewProduct(code, name, price)
	require.NoError(t, err)
	product.EnableInventoryTracking(allowNegative)
	station := uuid.New()
	product.SetDefaultStation(&station)
	f.productRepo.add(product)

	pool, err := stock.NewStockAssignment(product.ID, station, decimal.RequireFromString(stockStr), decimal.Zero, 1)
	require.NoError(t, err)
	f.allocator.addPool(pool)
	f.allocator.setPolicy(stock.ProductPolicy{
		ProductID:          product.ID,
		TrackInventory:     true,
		AllowNegativeStock: allowNegative,
	})
	return product, pool
}

func (f *serviceFixture) openWithItem(t *testing.T, product *catalog.Product, qty int64) (uuid.UUID, uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	order, err := f.service.Open(ctx, OpenOrderRequest{TableNumber: "12"})
	require.NoError(t, err)
	withItem, err := f.service.AddItem(ctx, order.ID, AddItemRequest{
		ProductID: product.ID,
		Quantity:  decimal.NewFromInt(qty),
	})
	require.NoError(t, err)
	return order.ID, withItem.Items[0].ID
}

func TestOrderServiceOpen(t *testing.T) {
	f := newFixture(t, DefaultOrderServiceConfig())
	ctx := context.Background()

	order, err := f.service.Open(ctx, OpenOrderRequest{TableNumber: "7", Notes: "window seat"})
	require.NoError(t, err)

	assert.Equal(t, "POS-2026-00001", order.OrderNumber)
	assert.Equal(t, "PENDING", order.Status)
	assert.Equal(t, "7", order.TableNumber)
	assert.Equal(t, 1, order.Version)

	second, err := f.service.Open(ctx, OpenOrderRequest{})
	require.NoError(t, err)
	assert.Equal(t, "POS-2026-00002", second.OrderNumber)
}

func TestOrderServiceAddItem(t *testing.T) {
	f := newFixture(t, DefaultOrderServiceConfig())
	ctx := context.Background()
	product, _ := f.newTrackedProduct(t, "PIZZA-01", "Margherita", "12.50", "10", false)

	order, err := f.service.Open(ctx, OpenOrderRequest{})
	require.NoError(t, err)

	updated, err := f.service.AddItem(ctx, order.ID, AddItemRequest{
		ProductID: product.ID,
		Quantity:  decimal.NewFromInt(2),
	})
	require.NoError(t, err)

	require.Len(t, updated.Items, 1)
	assert.Equal(t, "Margherita", updated.Items[0].ProductName)
	assert.Equal(t, product.DefaultStationID, updated.Items[0].StationID)
	assert.True(t, updated.TotalAmount.Equal(decimal.RequireFromString("25.00")))
	assert.Equal(t, 2, updated.Version)

	t.Run("rejects retired products", func(t *testing.T) {
		product.Retire()
		_, err := f.service.AddItem(ctx, order.ID, AddItemRequest{
			ProductID: product.ID,
			Quantity:  decimal.NewFromInt(1),
		})
		assert.Error(t, err)
	})
}

func TestOrderServiceAllocatesOnItemReady(t *testing.T) {
	f := newFixture(t, DefaultOrderServiceConfig())
	ctx := context.Background()
	product, pool := f.newTrackedProduct(t, "BEER-01", "Pale Ale", "6.00", "10", false)
	orderID, itemID := f.openWithItem(t, product, 3)

	_, err := f.service.SendToKitchen(ctx, orderID)
	require.NoError(t, err)
	// send trigger is off, nothing allocated yet
	assert.True(t, pool.Stock.Equal(decimal.RequireFromString("10")))

	ready, err := f.service.MarkItemReady(ctx, orderID, itemID, nil)
	require.NoError(t, err)

	assert.Equal(t, "READY", ready.Status)
	assert.True(t, pool.Stock.Equal(decimal.RequireFromString("7")))

	ledger, err := f.ledgerRepo.FindByOrderItem(ctx, itemID)
	require.NoError(t, err)
	assert.True(t, ledger.AllocatedTotal().Equal(decimal.RequireFromString("3")))
}

func TestOrderServiceAllocatesOnSendToKitchen(t *testing.T) {
	cfg := DefaultOrderServiceConfig()
	cfg.AllocationTrigger = TriggerSendToKitchen
	f := newFixture(t, cfg)
	ctx := context.Background()
	product, pool := f.newTrackedProduct(t, "BEER-01", "Pale Ale", "6.00", "10", false)
	orderID, itemID := f.openWithItem(t, product, 4)

	_, err := f.service.SendToKitchen(ctx, orderID)
	require.NoError(t, err)

	assert.True(t, pool.Stock.Equal(decimal.RequireFromString("6")))

	// the later ready step must not allocate a second time
	_, err = f.service.MarkItemReady(ctx, orderID, itemID, nil)
	require.NoError(t, err)
	assert.True(t, pool.Stock.Equal(decimal.RequireFromString("6")))
}

func TestOrderServiceInsufficientStock(t *testing.T) {
	f := newFixture(t, DefaultOrderServiceConfig())
	ctx := context.Background()
	product, pool := f.newTrackedProduct(t, "BEER-01", "Pale Ale", "6.00", "2", false)
	orderID, itemID := f.openWithItem(t, product, 5)

	_, err := f.service.SendToKitchen(ctx, orderID)
	require.NoError(t, err)

	_, err = f.service.MarkItemReady(ctx, orderID, itemID, nil)

	var insufficientErr *stock.InsufficientStockError
	require.ErrorAs(t, err, &insufficientErr)
	assert.True(t, insufficientErr.Shortfall.Equal(decimal.RequireFromString("3")))

	// nothing deducted, order untouched in the store
	assert.True(t, pool.Stock.Equal(decimal.RequireFromString("2")))
	stored, err := f.service.GetByID(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, "SENT_TO_KITCHEN", stored.Status)
}

func TestOrderServiceStaleVersion(t *testing.T) {
	f := newFixture(t, DefaultOrderServiceConfig())
	ctx := context.Background()
	product, _ := f.newTrackedProduct(t, "PIZZA-01", "Margherita", "12.50", "10", false)
	orderID, _ := f.openWithItem(t, product, 1)

	// a concurrent writer commits between our read and our write
	f.orderRepo.failCAS = 1

	_, err := f.service.SendToKitchen(ctx, orderID)
	assert.True(t, errors.Is(err, shared.ErrStaleVersion))

	// caller reloads and retries
	_, err = f.service.SendToKitchen(ctx, orderID)
	require.NoError(t, err)
}

func TestOrderServiceRequestBill(t *testing.T) {
	cfg := DefaultOrderServiceConfig()
	cfg.BillTolerance = decimal.RequireFromString("0.5")
	f := newFixture(t, cfg)
	ctx := context.Background()
	product, _ := f.newTrackedProduct(t, "PIZZA-01", "Margherita", "12.50", "10", false)

	orderID, itemID := f.openWithItem(t, product, 1)
	_, err := f.service.AddItem(ctx, orderID, AddItemRequest{ProductID: product.ID, Quantity: decimal.NewFromInt(1)})
	require.NoError(t, err)

	_, err = f.service.SendToKitchen(ctx, orderID)
	require.NoError(t, err)
	_, err = f.service.MarkItemReady(ctx, orderID, itemID, nil)
	require.NoError(t, err)

	// 1 of 2 unfinished, within the 0.5 tolerance
	billed, err := f.service.RequestBill(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, "READY_TO_PAY", billed.Status)
}

func TestOrderServiceFullLifecycle(t *testing.T) {
	f := newFixture(t, DefaultOrderServiceConfig())
	ctx := context.Background()
	product, _ := f.newTrackedProduct(t, "PIZZA-01", "Margherita", "12.50", "10", false)
	orderID, itemID := f.openWithItem(t, product, 2)

	_, err := f.service.SendToKitchen(ctx, orderID)
	require.NoError(t, err)
	_, err = f.service.MarkItemInProgress(ctx, orderID, itemID)
	require.NoError(t, err)
	_, err = f.service.MarkItemReady(ctx, orderID, itemID, nil)
	require.NoError(t, err)
	_, err = f.service.RequestBill(ctx, orderID)
	require.NoError(t, err)

	// settle out of band, then serve and close
	order, err := f.orderRepo.FindByID(ctx, orderID)
	require.NoError(t, err)
	require.NoError(t, order.MarkServed())
	require.NoError(t, f.orderRepo.SaveWithVersion(ctx, order))

	closed, err := f.service.CloseOrder(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, "COMPLETED", closed.Status)
	assert.NotNil(t, closed.ClosedAt)

	t.Run("closed orders reject mutation", func(t *testing.T) {
		_, err := f.service.SendToKitchen(ctx, orderID)
		var transitionErr *ordering.InvalidTransitionError
		assert.ErrorAs(t, err, &transitionErr)
	})
}

func TestOrderServiceUntrackedProductSkipsAllocation(t *testing.T) {
	f := newFixture(t, DefaultOrderServiceConfig())
	ctx := context.Background()

	price, err := valueobject.NewMoneyUSDFromString("2.00")
	require.NoError(t, err)
	product, err := catalog.NewProduct("WATER-01", "Still Water", price)
	require.NoError(t, err)
	station := uuid.New()
	product.SetDefaultStation(&station)
	f.productRepo.add(product)
	f.allocator.setPolicy(stock.ProductPolicy{ProductID: product.ID, TrackInventory: false})

	orderID, itemID := f.openWithItem(t, product, 2)
	_, err = f.service.SendToKitchen(ctx, orderID)
	require.NoError(t, err)
	_, err = f.service.MarkItemReady(ctx, orderID, itemID, nil)
	require.NoError(t, err)

	ledger, err := f.ledgerRepo.FindByOrderItem(ctx, itemID)
	require.NoError(t, err)
	assert.True(t, ledger.IsEmpty())
}

func TestOrderServiceAdvanceItemStatusAllocatesOnReady(t *testing.T) {
	f := newFixture(t, DefaultOrderServiceConfig())
	ctx := context.Background()
	product, pool := f.newTrackedProduct(t, "BEER-01", "Pale Ale", "6.00", "10", false)
	orderID, itemID := f.openWithItem(t, product, 3)

	_, err := f.service.SendToKitchen(ctx, orderID)
	require.NoError(t, err)

	// drive the item through the generic pipeline instead of the kitchen
	// endpoints; reaching READY must still allocate
	_, err = f.service.AdvanceItemStatus(ctx, orderID, itemID, ordering.ItemStatusPreparing)
	require.NoError(t, err)
	assert.True(t, pool.Stock.Equal(decimal.RequireFromString("10")))

	advanced, err := f.service.AdvanceItemStatus(ctx, orderID, itemID, ordering.ItemStatusReady)
	require.NoError(t, err)

	assert.Equal(t, "READY", advanced.Status)
	assert.True(t, pool.Stock.Equal(decimal.RequireFromString("7")))

	ledger, err := f.ledgerRepo.FindByOrderItem(ctx, itemID)
	require.NoError(t, err)
	assert.True(t, ledger.AllocatedTotal().Equal(decimal.RequireFromString("3")))
}

func TestOrderServicePublishesAllocationEvents(t *testing.T) {
	f := newFixture(t, DefaultOrderServiceConfig())
	publisher := &capturingPublisher{}
	f.service.SetEventPublisher(publisher)
	ctx := context.Background()

	product, pool := f.newTrackedProduct(t, "BEER-01", "Pale Ale", "6.00", "10", false)
	require.NoError(t, pool.SetMinStock(decimal.RequireFromString("8")))
	orderID, itemID := f.openWithItem(t, product, 3)

	_, err := f.service.SendToKitchen(ctx, orderID)
	require.NoError(t, err)
	_, err = f.service.MarkItemReady(ctx, orderID, itemID, nil)
	require.NoError(t, err)

	types := publisher.eventTypes()
	assert.Contains(t, types, stock.EventStockAllocated)
	// 10 - 3 = 7 crosses the min-stock line of 8
	assert.Contains(t, types, stock.EventStockBelowMinimum)

	var allocated *stock.StockAllocatedEvent
	for _, event := range publisher.events {
		if e, ok := event.(*stock.StockAllocatedEvent); ok {
			allocated = e
		}
	}
	require.NotNil(t, allocated)
	assert.Equal(t, orderID, allocated.OrderID)
	assert.Equal(t, itemID, allocated.OrderItemID)
	assert.Equal(t, product.ID, allocated.ProductID)
}
