package persistence

import (
	"context"

	appordering "github.com/resto/backend/internal/application/ordering"
	"github.com/resto/backend/internal/domain/ordering"
	"github.com/resto/backend/internal/domain/payments"
	"github.com/resto/backend/internal/domain/stock"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// Everything an order mutation touches, including the allocation engine,
// binds to the same database transaction, so a failed stock deduction rolls
// the status change back with it.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appordering.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormTransactionalRepositories{tx: tx}
		return fn(repos)
	})
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// OrderRepo returns the order repository scoped to the current transaction.
func (r *gormTransactionalRepositories) OrderRepo() ordering.OrderRepository {
	return NewGormOrderRepository(r.tx)
}

// CancellationLogRepo returns the cancellation log repository scoped to the current transaction.
func (r *gormTransactionalRepositories) CancellationLogRepo() ordering.CancellationLogRepository {
	return NewGormCancellationLogRepository(r.tx)
}

// PaymentRepo returns the payment repository scoped to the current transaction.
func (r *gormTransactionalRepositories) PaymentRepo() payments.PaymentRepository {
	return NewGormPaymentRepository(r.tx)
}

// LedgerRepo returns the allocation ledger repository scoped to the current transaction.
func (r *gormTransactionalRepositories) LedgerRepo() stock.AllocationLedgerRepository {
	return NewGormAllocationLedgerRepository(r.tx)
}

// Allocator returns the allocation engine bound to the current transaction.
func (r *gormTransactionalRepositories) Allocator() stock.AllocationService {
	return NewGormAllocationEngine(r.tx, NewGormProductRepository(r.tx))
}

// Ensure GormTransactionScope implements TransactionScope
var _ appordering.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ appordering.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
