package ordering

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/resto/backend/internal/domain/ordering"
	"github.com/resto/backend/internal/domain/payments"
	"github.com/resto/backend/internal/domain/shared/valueobject"
	"github.com/resto/backend/internal/domain/stock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCancellationFixture(t *testing.T) (*serviceFixture, *CancellationService) {
	t.Helper()
	f := newFixture(t, DefaultOrderServiceConfig())
	scope := NewNoOpTransactionScope(f.orderRepo, f.logRepo, f.paymentRepo, f.ledgerRepo, f.allocator)
	return f, NewCancellationService(scope)
}

// billedOrderWithStock builds an order whose item was allocated and paid
func billedOrderWithStock(t *testing.T, f *serviceFixture) (orderID, itemID uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	product, _ := f.newTrackedProduct(t, "BEER-01", "Pale Ale", "6.00", "10", false)
	orderID, itemID = f.openWithItem(t, product, 3)

	_, err := f.service.SendToKitchen(ctx, orderID)
	require.NoError(t, err)
	_, err = f.service.MarkItemReady(ctx, orderID, itemID, nil)
	require.NoError(t, err)
	_, err = f.service.RequestBill(ctx, orderID)
	require.NoError(t, err)

	amount, err := valueobject.NewMoneyUSDFromString("18.00")
	require.NoError(t, err)
	payment, err := payments.NewPayment(orderID, amount, payments.PaymentMethodCash, false, nil, nil)
	require.NoError(t, err)
	require.NoError(t, f.paymentRepo.Save(ctx, payment))

	return orderID, itemID
}

func TestCancelOrder(t *testing.T) {
	f, cancelSvc := newCancellationFixture(t)
	ctx := context.Background()
	orderID, itemID := billedOrderWithStock(t, f)

	staff := uuid.New()
	supervisor := uuid.New()
	cancelled, err := cancelSvc.CancelOrder(ctx, orderID, CancelOrderRequest{
		Reason:       "table walked out",
		ActingUserID: &staff,
		SupervisorID: &supervisor,
	})
	require.NoError(t, err)

	assert.Equal(t, "CANCELLED", cancelled.Status)
	assert.Equal(t, "table walked out", cancelled.CancelReason)

	t.Run("stock restored exactly", func(t *testing.T) {
		assert.True(t, f.allocator.pools[0].Stock.Equal(decimal.RequireFromString("10")))
		ledger, err := f.ledgerRepo.FindByOrderItem(ctx, itemID)
		require.NoError(t, err)
		assert.True(t, ledger.IsReversed())
	})

	t.Run("payments voided, never deleted", func(t *testing.T) {
		ledger, err := f.paymentRepo.FindByOrderID(ctx, orderID)
		require.NoError(t, err)
		require.Len(t, ledger, 1)
		assert.True(t, ledger[0].IsVoided())
	})

	t.Run("audit log snapshot written", func(t *testing.T) {
		logs, err := f.logRepo.FindByOrderID(ctx, orderID)
		require.NoError(t, err)
		require.Len(t, logs, 1)
		assert.Equal(t, ordering.CancellationScopeOrder, logs[0].Scope)
		assert.Equal(t, &staff, logs[0].CancelledBy)
		assert.Equal(t, &supervisor, logs[0].SupervisorID)
		require.Len(t, logs[0].Products, 1)
		assert.Equal(t, "Pale Ale", logs[0].Products[0].ProductName)
	})

	t.Run("cancelling again fails", func(t *testing.T) {
		_, err := cancelSvc.CancelOrder(ctx, orderID, CancelOrderRequest{Reason: "again"})
		assert.Error(t, err)
	})
}

func TestCancelOrderRetriesOnStaleVersion(t *testing.T) {
	f, cancelSvc := newCancellationFixture(t)
	ctx := context.Background()
	orderID, _ := billedOrderWithStock(t, f)

	f.orderRepo.failCAS = 1

	cancelled, err := cancelSvc.CancelOrder(ctx, orderID, CancelOrderRequest{Reason: "kitchen closed"})
	require.NoError(t, err)
	assert.Equal(t, "CANCELLED", cancelled.Status)

	// the retried compensation must not double-credit the pool
	assert.True(t, f.allocator.pools[0].Stock.Equal(decimal.RequireFromString("10")))
}

func TestCancelOrderGivesUpAfterRetries(t *testing.T) {
	f, cancelSvc := newCancellationFixture(t)
	ctx := context.Background()
	orderID, _ := billedOrderWithStock(t, f)

	f.orderRepo.failCAS = defaultStaleRetryLimit + 1

	_, err := cancelSvc.CancelOrder(ctx, orderID, CancelOrderRequest{Reason: "conflict storm"})
	assert.Error(t, err)
}

func TestCancelItem(t *testing.T) {
	f, cancelSvc := newCancellationFixture(t)
	ctx := context.Background()
	product, pool := f.newTrackedProduct(t, "BEER-01", "Pale Ale", "6.00", "10", false)
	orderID, itemID := f.openWithItem(t, product, 2)
	keep, err := f.service.AddItem(ctx, orderID, AddItemRequest{ProductID: product.ID, Quantity: decimal.NewFromInt(1)})
	require.NoError(t, err)
	keepItemID := keep.Items[1].ID

	_, err = f.service.SendToKitchen(ctx, orderID)
	require.NoError(t, err)
	_, err = f.service.MarkItemReady(ctx, orderID, itemID, nil)
	require.NoError(t, err)
	require.True(t, pool.Stock.Equal(decimal.RequireFromString("8")))

	updated, err := cancelSvc.CancelItem(ctx, orderID, itemID, CancelItemRequest{Reason: "wrong pour"})
	require.NoError(t, err)

	t.Run("only the item flips, order stays open", func(t *testing.T) {
		assert.Equal(t, "PREPARING", updated.Status)
		for _, item := range updated.Items {
			if item.ID == itemID {
				assert.Equal(t, "CANCELLED", item.Status)
			}
			if item.ID == keepItemID {
				assert.Equal(t, "PENDING", item.Status)
			}
		}
	})

	t.Run("its allocation reversed", func(t *testing.T) {
		assert.True(t, pool.Stock.Equal(decimal.RequireFromString("10")))
	})

	t.Run("item-scoped audit entry", func(t *testing.T) {
		logs, err := f.logRepo.FindByOrderID(ctx, orderID)
		require.NoError(t, err)
		require.Len(t, logs, 1)
		assert.Equal(t, ordering.CancellationScopeItem, logs[0].Scope)
	})

	t.Run("total recalculated", func(t *testing.T) {
		assert.True(t, updated.TotalAmount.Equal(decimal.RequireFromString("6.00")))
	})
}

func TestCancelItemWithoutLedger(t *testing.T) {
	f, cancelSvc := newCancellationFixture(t)
	ctx := context.Background()
	product, _ := f.newTrackedProduct(t, "PIZZA-01", "Margherita", "12.50", "10", false)
	orderID, itemID := f.openWithItem(t, product, 1)

	// never sent, never allocated
	updated, err := cancelSvc.CancelItem(ctx, orderID, itemID, CancelItemRequest{Reason: "changed mind"})
	require.NoError(t, err)
	assert.Equal(t, "PENDING", updated.Status)
}

func TestCancelOrderPublishesReversalEvents(t *testing.T) {
	f, cancelSvc := newCancellationFixture(t)
	publisher := &capturingPublisher{}
	cancelSvc.SetEventPublisher(publisher)
	ctx := context.Background()
	orderID, _ := billedOrderWithStock(t, f)

	_, err := cancelSvc.CancelOrder(ctx, orderID, CancelOrderRequest{Reason: "kitchen fire drill"})
	require.NoError(t, err)

	assert.Contains(t, publisher.eventTypes(), stock.EventStockReversed)
}
