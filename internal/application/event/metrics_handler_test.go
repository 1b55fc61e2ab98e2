package event

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
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockBusinessMetrics struct {
	mock.Mock
}

var _ BusinessMetrics = (*MockBusinessMetrics)(nil)

func (m *MockBusinessMetrics) RecordOrderOpened(ctx context.Context) {
	m.Called(ctx)
}

func (m *MockBusinessMetrics) RecordOrderCancelled(ctx context.Context) {
	m.Called(ctx)
}

func (m *MockBusinessMetrics) RecordOrderAmount(ctx context.Context, amount decimal.Decimal) {
	m.Called(ctx, amount)
}

func (m *MockBusinessMetrics) RecordPayment(ctx context.Context, method, status string) {
	m.Called(ctx, method, status)
}

func (m *MockBusinessMetrics) RecordAllocation(ctx context.Context, productID string) {
	m.Called(ctx, productID)
}

func TestMetricsHandler_EventTypes(t *testing.T) {
	h := NewMetricsHandler(&MockBusinessMetrics{}, zap.NewNop())

	types := h.EventTypes()

	assert.Contains(t, types, ordering.EventOrderOpened)
	assert.Contains(t, types, ordering.EventOrderCompleted)
	assert.Contains(t, types, ordering.EventOrderCancelled)
	assert.Contains(t, types, payments.EventPaymentRegistered)
	assert.Contains(t, types, payments.EventPaymentVoided)
	assert.Contains(t, types, stock.EventStockAllocated)
}

func TestMetricsHandler_Handle(t *testing.T) {
	ctx := context.Background()

	order, err := ordering.NewOrder("ORD-20250101-0001")
	require.NoError(t, err)

	t.Run("order opened increments counter", func(t *testing.T) {
		metrics := new(MockBusinessMetrics)
		metrics.On("RecordOrderOpened", ctx).Once()
		h := NewMetricsHandler(metrics, zap.NewNop())

		err := h.Handle(ctx, ordering.NewOrderOpenedEvent(order))

		require.NoError(t, err)
		metrics.AssertExpectations(t)
	})

	t.Run("order completed records total amount", func(t *testing.T) {
		metrics := new(MockBusinessMetrics)
		metrics.On("RecordOrderAmount", ctx, mock.Anything).Once()
		h := NewMetricsHandler(metrics, zap.NewNop())

		err := h.Handle(ctx, ordering.NewOrderCompletedEvent(order))

		require.NoError(t, err)
		metrics.AssertExpectations(t)
	})

	t.Run("order cancelled increments counter", func(t *testing.T) {
		metrics := new(MockBusinessMetrics)
		metrics.On("RecordOrderCancelled", ctx).Once()
		h := NewMetricsHandler(metrics, zap.NewNop())

		err := h.Handle(ctx, ordering.NewOrderCancelledEvent(order, "customer left"))

		require.NoError(t, err)
		metrics.AssertExpectations(t)
	})

	t.Run("payment registered records method and status", func(t *testing.T) {
		payment, err := payments.NewPayment(uuid.New(), valueobject.NewMoneyUSDFromFloat(25),
			payments.PaymentMethodCard, false, nil, nil)
		require.NoError(t, err)

		metrics := new(MockBusinessMetrics)
		metrics.On("RecordPayment", ctx, "CARD", "registered").Once()
		h := NewMetricsHandler(metrics, zap.NewNop())

		err = h.Handle(ctx, payments.NewPaymentRegisteredEvent(payment))

		require.NoError(t, err)
		metrics.AssertExpectations(t)
	})

	t.Run("payment voided records status without method", func(t *testing.T) {
		payment, err := payments.NewPayment(uuid.New(), valueobject.NewMoneyUSDFromFloat(25),
			payments.PaymentMethodCash, false, nil, nil)
		require.NoError(t, err)

		metrics := new(MockBusinessMetrics)
		metrics.On("RecordPayment", ctx, "", "voided").Once()
		h := NewMetricsHandler(metrics, zap.NewNop())

		err = h.Handle(ctx, payments.NewPaymentVoidedEvent(payment, "wrong table"))

		require.NoError(t, err)
		metrics.AssertExpectations(t)
	})

	t.Run("stock allocated records product", func(t *testing.T) {
		productID := uuid.New()
		ledger := stock.NewAllocationLedger(uuid.New(), uuid.New(), productID,
			decimal.NewFromInt(2), nil)

		metrics := new(MockBusinessMetrics)
		metrics.On("RecordAllocation", ctx, productID.String()).Once()
		h := NewMetricsHandler(metrics, zap.NewNop())

		err := h.Handle(ctx, stock.NewStockAllocatedEvent(ledger))

		require.NoError(t, err)
		metrics.AssertExpectations(t)
	})

	t.Run("unrelated event is ignored", func(t *testing.T) {
		metrics := new(MockBusinessMetrics)
		h := NewMetricsHandler(metrics, zap.NewNop())

		err := h.Handle(ctx, ordering.NewOrderBillRequestedEvent(order))

		require.NoError(t, err)
		metrics.AssertExpectations(t)
	})
}
