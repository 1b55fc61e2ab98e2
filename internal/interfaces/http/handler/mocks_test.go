package handler

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/resto/backend/internal/domain/catalog"
	"github.com/resto/backend/internal/domain/ordering"
	"github.com/resto/backend/internal/domain/payments"
	"github.com/resto/backend/internal/domain/shared"
	"github.com/resto/backend/internal/domain/stock"
)

// MockOrderRepository implements ordering.OrderRepository for testing
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*ordering.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ordering.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*ordering.Order, error) {
	args := m.Called(ctx, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ordering.Order), args.Error(1)
}

func (m *MockOrderRepository) FindAll(ctx context.Context, filter ordering.OrderFilter) (*shared.Paginated[ordering.Order], error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[ordering.Order]), args.Error(1)
}

func (m *MockOrderRepository) Save(ctx context.Context, order *ordering.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) SaveWithVersion(ctx context.Context, order *ordering.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) GenerateOrderNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockOrderRepository) CountByStatus(ctx context.Context) (map[ordering.OrderStatus]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[ordering.OrderStatus]int64), args.Error(1)
}

var _ ordering.OrderRepository = (*MockOrderRepository)(nil)

// MockCancellationLogRepository implements ordering.CancellationLogRepository for testing
type MockCancellationLogRepository struct {
	mock.Mock
}

func (m *MockCancellationLogRepository) Save(ctx context.Context, log *ordering.OrderCancellationLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockCancellationLogRepository) FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]ordering.OrderCancellationLog, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ordering.OrderCancellationLog), args.Error(1)
}

var _ ordering.CancellationLogRepository = (*MockCancellationLogRepository)(nil)

// MockPaymentRepository implements payments.PaymentRepository for testing
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*payments.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payments.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]*payments.Payment, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*payments.Payment), args.Error(1)
}

func (m *MockPaymentRepository) Save(ctx context.Context, payment *payments.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) Update(ctx context.Context, payment *payments.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

var _ payments.PaymentRepository = (*MockPaymentRepository)(nil)

// MockStockAssignmentRepository implements stock.StockAssignmentRepository for testing
type MockStockAssignmentRepository struct {
	mock.Mock
}

func (m *MockStockAssignmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*stock.StockAssignment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stock.StockAssignment), args.Error(1)
}

func (m *MockStockAssignmentRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]*stock.StockAssignment, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*stock.StockAssignment), args.Error(1)
}

func (m *MockStockAssignmentRepository) FindActiveByProduct(ctx context.Context, productID uuid.UUID) ([]*stock.StockAssignment, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*stock.StockAssignment), args.Error(1)
}

func (m *MockStockAssignmentRepository) FindByStation(ctx context.Context, stationID uuid.UUID) ([]*stock.StockAssignment, error) {
	args := m.Called(ctx, stationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*stock.StockAssignment), args.Error(1)
}

func (m *MockStockAssignmentRepository) FindBelowMinimum(ctx context.Context) ([]*stock.StockAssignment, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*stock.StockAssignment), args.Error(1)
}

func (m *MockStockAssignmentRepository) Save(ctx context.Context, assignment *stock.StockAssignment) error {
	args := m.Called(ctx, assignment)
	return args.Error(0)
}

func (m *MockStockAssignmentRepository) Update(ctx context.Context, assignment *stock.StockAssignment) error {
	args := m.Called(ctx, assignment)
	return args.Error(0)
}

func (m *MockStockAssignmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

var _ stock.StockAssignmentRepository = (*MockStockAssignmentRepository)(nil)

// MockAllocationLedgerRepository implements stock.AllocationLedgerRepository for testing
type MockAllocationLedgerRepository struct {
	mock.Mock
}

func (m *MockAllocationLedgerRepository) FindByID(ctx context.Context, id uuid.UUID) (*stock.AllocationLedger, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stock.AllocationLedger), args.Error(1)
}

func (m *MockAllocationLedgerRepository) FindByOrderItem(ctx context.Context, orderItemID uuid.UUID) (*stock.AllocationLedger, error) {
	args := m.Called(ctx, orderItemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stock.AllocationLedger), args.Error(1)
}

func (m *MockAllocationLedgerRepository) FindActiveByOrder(ctx context.Context, orderID uuid.UUID) ([]*stock.AllocationLedger, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*stock.AllocationLedger), args.Error(1)
}

func (m *MockAllocationLedgerRepository) Save(ctx context.Context, ledger *stock.AllocationLedger) error {
	args := m.Called(ctx, ledger)
	return args.Error(0)
}

func (m *MockAllocationLedgerRepository) Update(ctx context.Context, ledger *stock.AllocationLedger) error {
	args := m.Called(ctx, ledger)
	return args.Error(0)
}

var _ stock.AllocationLedgerRepository = (*MockAllocationLedgerRepository)(nil)

// MockAllocationService implements stock.AllocationService for testing
type MockAllocationService struct {
	mock.Mock
}

func (m *MockAllocationService) Allocate(ctx context.Context, orderID, orderItemID, productID uuid.UUID, quantity decimal.Decimal) (*stock.AllocationLedger, error) {
	args := m.Called(ctx, orderID, orderItemID, productID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stock.AllocationLedger), args.Error(1)
}

func (m *MockAllocationService) Reverse(ctx context.Context, ledger *stock.AllocationLedger) error {
	args := m.Called(ctx, ledger)
	return args.Error(0)
}

var _ stock.AllocationService = (*MockAllocationService)(nil)

// MockProductRepository implements catalog.ProductRepository for testing
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByCode(ctx context.Context, code string) (*catalog.Product, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context, filter catalog.ProductFilter) (*shared.Paginated[catalog.Product], error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[catalog.Product]), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Update(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

var _ catalog.ProductRepository = (*MockProductRepository)(nil)

// MockStationRepository implements catalog.StationRepository for testing
type MockStationRepository struct {
	mock.Mock
}

func (m *MockStationRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Station, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Station), args.Error(1)
}

func (m *MockStationRepository) FindByCode(ctx context.Context, code string) (*catalog.Station, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Station), args.Error(1)
}

func (m *MockStationRepository) FindAll(ctx context.Context, activeOnly bool) ([]*catalog.Station, error) {
	args := m.Called(ctx, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*catalog.Station), args.Error(1)
}

func (m *MockStationRepository) Save(ctx context.Context, station *catalog.Station) error {
	args := m.Called(ctx, station)
	return args.Error(0)
}

func (m *MockStationRepository) Update(ctx context.Context, station *catalog.Station) error {
	args := m.Called(ctx, station)
	return args.Error(0)
}

var _ catalog.StationRepository = (*MockStationRepository)(nil)

// MockCategoryRepository implements catalog.CategoryRepository for testing
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Category), args.Error(1)
}

func (m *MockCategoryRepository) FindAll(ctx context.Context, activeOnly bool) ([]*catalog.Category, error) {
	args := m.Called(ctx, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*catalog.Category), args.Error(1)
}

func (m *MockCategoryRepository) Save(ctx context.Context, category *catalog.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) Update(ctx context.Context, category *catalog.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

var _ catalog.CategoryRepository = (*MockCategoryRepository)(nil)
