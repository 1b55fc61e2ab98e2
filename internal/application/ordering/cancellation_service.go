package ordering

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/resto/backend/internal/domain/ordering"
	"github.com/resto/backend/internal/domain/shared"
	"github.com/resto/backend/internal/domain/stock"
)

// defaultStaleRetryLimit bounds the reload-and-retry loop on version conflicts
const defaultStaleRetryLimit = 3

// CancellationService performs compensating rollback for orders and items:
// reverse the recorded stock ledgers, void the payments, write the audit
// log and flip the status, all in one transaction guarded by the order's
// version. On a stale version the whole sequence is retried against the
// reloaded order, never replayed blindly.
type CancellationService struct {
	txScope        TransactionScope
	eventPublisher shared.EventPublisher
	retryLimit     int
}

// NewCancellationService creates a new CancellationService
func NewCancellationService(txScope TransactionScope) *CancellationService {
	return &CancellationService{txScope: txScope, retryLimit: defaultStaleRetryLimit}
}

// SetStaleRetryLimit overrides the retry budget for version conflicts.
// Values below one are ignored.
func (s *CancellationService) SetStaleRetryLimit(limit int) {
	if limit >= 1 {
		s.retryLimit = limit
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *CancellationService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// CancelOrder cancels a whole order with full compensation
func (s *CancellationService) CancelOrder(ctx context.Context, orderID uuid.UUID, req CancelOrderRequest) (*OrderResponse, error) {
	var order *ordering.Order
	var reversed []*stock.AllocationLedger

	var err error
	for attempt := 0; attempt < s.retryLimit; attempt++ {
		err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
			var err error
			order, err = repos.OrderRepo().FindByID(ctx, orderID)
			if err != nil {
				return err
			}
			if order.IsTerminal() {
				return shared.NewDomainError("INVALID_STATE", "Order is already closed")
			}

			// reverse every live ledger before the items flip to cancelled
			ledgers, err := repos.LedgerRepo().FindActiveByOrder(ctx, order.ID)
			if err != nil {
				return err
			}
			reversed = reversed[:0]
			for _, ledger := range ledgers {
				if err := repos.Allocator().Reverse(ctx, ledger); err != nil {
					return err
				}
				reversed = append(reversed, ledger)
			}

			// void what was paid; voided rows stay queryable forever
			ledger, err := repos.PaymentRepo().FindByOrderID(ctx, order.ID)
			if err != nil {
				return err
			}
			for _, payment := range ledger {
				if payment.IsVoided() {
					continue
				}
				if err := payment.Void("order cancelled: " + req.Reason); err != nil {
					return err
				}
				if err := repos.PaymentRepo().Update(ctx, payment); err != nil {
					return err
				}
			}

			log, err := ordering.NewOrderCancellationLog(order, req.Reason, req.ActingUserID)
			if err != nil {
				return err
			}
			if req.SupervisorID != nil {
				log.ApproveBy(*req.SupervisorID)
			}
			if err := repos.CancellationLogRepo().Save(ctx, log); err != nil {
				return err
			}

			if err := order.Cancel(req.Reason); err != nil {
				return err
			}
			return repos.OrderRepo().SaveWithVersion(ctx, order)
		})

		if !errors.Is(err, shared.ErrStaleVersion) {
			break
		}
	}
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, order)
	s.publishLedgerEvents(ctx, reversed...)

	response := ToOrderResponse(order)
	return &response, nil
}

// CancelItem cancels a single line: its ledger is reversed and logged, but
// the order itself stays in its current status
func (s *CancellationService) CancelItem(ctx context.Context, orderID, itemID uuid.UUID, req CancelItemRequest) (*OrderResponse, error) {
	var order *ordering.Order
	var reversed *stock.AllocationLedger

	var err error
	for attempt := 0; attempt < s.retryLimit; attempt++ {
		err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
			var err error
			order, err = repos.OrderRepo().FindByID(ctx, orderID)
			if err != nil {
				return err
			}

			item := order.GetItem(itemID)
			if item == nil {
				return shared.ErrNotFound
			}

			ledger, err := repos.LedgerRepo().FindByOrderItem(ctx, itemID)
			if err != nil && !errors.Is(err, shared.ErrNotFound) {
				return err
			}
			reversed = nil
			if ledger != nil && !ledger.IsReversed() {
				if err := repos.Allocator().Reverse(ctx, ledger); err != nil {
					return err
				}
				reversed = ledger
			}

			log, err := ordering.NewItemCancellationLog(order, item, req.Reason, req.ActingUserID)
			if err != nil {
				return err
			}
			if err := repos.CancellationLogRepo().Save(ctx, log); err != nil {
				return err
			}

			if err := order.CancelItem(itemID, req.Reason); err != nil {
				return err
			}
			return repos.OrderRepo().SaveWithVersion(ctx, order)
		})

		if !errors.Is(err, shared.ErrStaleVersion) {
			break
		}
	}
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, order)
	s.publishLedgerEvents(ctx, reversed)

	response := ToOrderResponse(order)
	return &response, nil
}

// GetCancellationHistory returns the audit entries of an order
func (s *CancellationService) GetCancellationHistory(ctx context.Context, orderID uuid.UUID) ([]ordering.OrderCancellationLog, error) {
	var logs []ordering.OrderCancellationLog
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		logs, err = repos.CancellationLogRepo().FindByOrderID(ctx, orderID)
		return err
	})
	return logs, err
}

func (s *CancellationService) publishEvents(ctx context.Context, order *ordering.Order) {
	if s.eventPublisher == nil || order == nil {
		return
	}
	for _, event := range order.GetDomainEvents() {
		_ = s.eventPublisher.Publish(ctx, event)
	}
	order.ClearDomainEvents()
}

// publishLedgerEvents drains the reversal events the allocation engine
// staged on each ledger, after the cancellation committed
func (s *CancellationService) publishLedgerEvents(ctx context.Context, ledgers ...*stock.AllocationLedger) {
	if s.eventPublisher == nil {
		return
	}
	for _, ledger := range ledgers {
		if ledger == nil {
			continue
		}
		for _, event := range ledger.GetDomainEvents() {
			_ = s.eventPublisher.Publish(ctx, event)
		}
		ledger.ClearDomainEvents()
	}
}
