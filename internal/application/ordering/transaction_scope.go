package ordering

import (
	"context"

	"github.com/resto/backend/internal/domain/ordering"
	"github.com/resto/backend/internal/domain/payments"
	"github.com/resto/backend/internal/domain/stock"
)

// TransactionScope provides transactional access to the repositories an
// order mutation touches. Everything executed within one scope commits or
// rolls back atomically, which is what lets a stale-version failure leave
// no partial stock or payment side effects behind.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the order-side repositories
// within a transaction. All of them share the same underlying database
// transaction.
//
// Aggregate boundary notes:
//   - OrderRepo: Repository for the Order aggregate root. Items and persons
//     are child entities persisted through the aggregate.
//   - LedgerRepo and Allocator: stock allocation runs inside the order's
//     transaction so ledger writes, pool decrements and the order's version
//     bump are one atomic unit.
//   - PaymentRepo: used by cancellation to void the order's payments in the
//     same transaction.
//   - CancellationLogRepo: append-only audit log.
type TransactionalRepositories interface {
	// OrderRepo returns the order repository scoped to the current transaction
	OrderRepo() ordering.OrderRepository
	// CancellationLogRepo returns the cancellation log repository scoped to the current transaction
	CancellationLogRepo() ordering.CancellationLogRepository
	// PaymentRepo returns the payment repository scoped to the current transaction
	PaymentRepo() payments.PaymentRepository
	// LedgerRepo returns the allocation ledger repository scoped to the current transaction
	LedgerRepo() stock.AllocationLedgerRepository
	// Allocator returns the allocation engine bound to the current transaction
	Allocator() stock.AllocationService
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. Useful for testing with in-memory repositories.
type NoOpTransactionScope struct {
	orderRepo   ordering.OrderRepository
	logRepo     ordering.CancellationLogRepository
	paymentRepo payments.PaymentRepository
	ledgerRepo  stock.AllocationLedgerRepository
	allocator   stock.AllocationService
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	orderRepo ordering.OrderRepository,
	logRepo ordering.CancellationLogRepository,
	paymentRepo payments.PaymentRepository,
	ledgerRepo stock.AllocationLedgerRepository,
	allocator stock.AllocationService,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		orderRepo:   orderRepo,
		logRepo:     logRepo,
		paymentRepo: paymentRepo,
		ledgerRepo:  ledgerRepo,
		allocator:   allocator,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// OrderRepo returns the order repository.
func (s *NoOpTransactionScope) OrderRepo() ordering.OrderRepository {
	return s.orderRepo
}

// CancellationLogRepo returns the cancellation log repository.
func (s *NoOpTransactionScope) CancellationLogRepo() ordering.CancellationLogRepository {
	return s.logRepo
}

// PaymentRepo returns the payment repository.
func (s *NoOpTransactionScope) PaymentRepo() payments.PaymentRepository {
	return s.paymentRepo
}

// LedgerRepo returns the allocation ledger repository.
func (s *NoOpTransactionScope) LedgerRepo() stock.AllocationLedgerRepository {
	return s.ledgerRepo
}

// Allocator returns the allocation engine.
func (s *NoOpTransactionScope) Allocator() stock.AllocationService {
	return s.allocator
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
