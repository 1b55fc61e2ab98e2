package payments

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	appordering "github.com/resto/backend/internal/application/ordering"
	"github.com/resto/backend/internal/domain/ordering"
	"github.com/resto/backend/internal/domain/payments"
	"github.com/resto/backend/internal/domain/shared"
	"github.com/resto/backend/internal/domain/shared/valueobject"
	"github.com/resto/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/trace"
)

// PaymentService keeps the payment ledger and the order status consistent:
// a registration that covers the bill serves the order, and a void that
// breaks the fully-paid condition pushes a served order back to
// READY_TO_PAY. Both sides commit in one transaction through the order's
// version check.
type PaymentService struct {
	paymentRepo    payments.PaymentRepository
	txScope        appordering.TransactionScope
	eventPublisher shared.EventPublisher
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(paymentRepo payments.PaymentRepository, txScope appordering.TransactionScope) *PaymentService {
	return &PaymentService{
		paymentRepo: paymentRepo,
		txScope:     txScope,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *PaymentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// RegisterPayment records a tender against an order. Shared payments must
// carry splits summing exactly to the amount. Overpayment is accepted and
// reported back through the balance.
func (s *PaymentService) RegisterPayment(ctx context.Context, orderID uuid.UUID, req RegisterPaymentRequest) (_ *PaymentResponse, _ *BalanceResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "register",
		telemetry.WithAttribute(telemetry.SpanAttrOrderID, orderID),
		telemetry.WithAttribute(telemetry.SpanAttrPaymentMethod, req.Method),
		telemetry.WithAttribute(telemetry.SpanAttrAmount, req.Amount))
	defer func() { endSpan(span, err) }()

	method := payments.PaymentMethod(req.Method)
	if !method.IsValid() {
		return nil, nil, shared.NewDomainError("INVALID_METHOD", fmt.Sprintf("Unknown payment method %s", req.Method))
	}

	splits := make([]payments.SplitInput, 0, len(req.Splits))
	for _, sp := range req.Splits {
		splits = append(splits, payments.SplitInput{
			PersonID: sp.PersonID,
			Label:    sp.Label,
			Amount:   sp.Amount,
		})
	}

	var payment *payments.Payment
	var balance BalanceResponse
	err = s.txScope.Execute(ctx, func(repos appordering.TransactionalRepositories) error {
		order, err := repos.OrderRepo().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if order.Status != ordering.OrderStatusReadyToPay && order.Status != ordering.OrderStatusServed {
			return shared.NewDomainError("INVALID_STATE",
				fmt.Sprintf("Payments can only be registered while the order awaits settlement, status is %s", order.Status))
		}

		payment, err = payments.NewPayment(orderID, valueobject.NewMoneyUSD(req.Amount), method, req.IsShared, splits, req.ReceivedBy)
		if err != nil {
			return err
		}
		if req.Reference != "" {
			payment.SetReference(req.Reference)
		}

		if err := repos.PaymentRepo().Save(ctx, payment); err != nil {
			return err
		}

		ledger, err := repos.PaymentRepo().FindByOrderID(ctx, orderID)
		if err != nil {
			return err
		}
		r := payments.Reconcile(order.TotalAmount, ledger)

		if r.IsFullyPaid() && order.Status == ordering.OrderStatusReadyToPay {
			if err := order.MarkServed(); err != nil {
				return err
			}
		}
		// A partial payment changes the order's settlement state too, so
		// every registration commits through the version check. A writer
		// holding the pre-payment version gets ErrStaleVersion instead of
		// committing over a live payment.
		if err := repos.OrderRepo().SaveWithVersion(ctx, order); err != nil {
			return err
		}

		balance = toBalanceResponse(order, r)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	if balance.FullyPaid {
		telemetry.AddEvent(span, "order.fully_paid",
			telemetry.SpanAttrOrderStatus, balance.OrderStatus,
			"paid_total", balance.PaidTotal)
	}
	s.publishEvents(ctx, payment)

	response := ToPaymentResponse(payment)
	return &response, &balance, nil
}

// VoidPayment voids a payment. The row is kept forever; only its status
// changes. If the void breaks the fully-paid condition of a served order
// the order reverts to READY_TO_PAY through the same version-checked write.
func (s *PaymentService) VoidPayment(ctx context.Context, paymentID uuid.UUID, req VoidPaymentRequest) (_ *PaymentResponse, _ *BalanceResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "void",
		telemetry.WithAttribute(telemetry.SpanAttrPaymentID, paymentID))
	defer func() { endSpan(span, err) }()

	var payment *payments.Payment
	var balance BalanceResponse
	err = s.txScope.Execute(ctx, func(repos appordering.TransactionalRepositories) error {
		var err error
		payment, err = s.findPayment(ctx, repos, paymentID)
		if err != nil {
			return err
		}

		order, err := repos.OrderRepo().FindByID(ctx, payment.OrderID)
		if err != nil {
			return err
		}

		if err := payment.Void(req.Reason); err != nil {
			return err
		}
		if err := repos.PaymentRepo().Update(ctx, payment); err != nil {
			return err
		}

		ledger, err := repos.PaymentRepo().FindByOrderID(ctx, order.ID)
		if err != nil {
			return err
		}
		r := payments.Reconcile(order.TotalAmount, ledger)

		if !r.IsFullyPaid() && order.Status == ordering.OrderStatusServed {
			if err := order.RevertToReadyToPay(); err != nil {
				return err
			}
		}
		// Voids always bump the order version, status change or not, so no
		// concurrent writer can commit against the pre-void ledger state.
		if err := repos.OrderRepo().SaveWithVersion(ctx, order); err != nil {
			return err
		}

		balance = toBalanceResponse(order, r)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.publishEvents(ctx, payment)

	response := ToPaymentResponse(payment)
	return &response, &balance, nil
}

// endSpan closes an operation span, recording the outcome first.
func endSpan(span trace.Span, err error) {
	if err != nil {
		telemetry.RecordError(span, err)
	} else {
		telemetry.SetOK(span)
	}
	span.End()
}

// GetOrderBalance reconciles an order against its ledger
func (s *PaymentService) GetOrderBalance(ctx context.Context, orderID uuid.UUID) (*BalanceResponse, error) {
	var balance BalanceResponse
	err := s.txScope.Execute(ctx, func(repos appordering.TransactionalRepositories) error {
		order, err := repos.OrderRepo().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		ledger, err := repos.PaymentRepo().FindByOrderID(ctx, orderID)
		if err != nil {
			return err
		}
		balance = toBalanceResponse(order, payments.Reconcile(order.TotalAmount, ledger))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &balance, nil
}

// IsFullyPaid reports whether the order's non-voided payments cover its total
func (s *PaymentService) IsFullyPaid(ctx context.Context, orderID uuid.UUID) (bool, error) {
	balance, err := s.GetOrderBalance(ctx, orderID)
	if err != nil {
		return false, err
	}
	return balance.FullyPaid, nil
}

// ListByOrder returns every payment of an order, voided rows included
func (s *PaymentService) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]PaymentResponse, error) {
	ledger, err := s.paymentRepo.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	responses := make([]PaymentResponse, 0, len(ledger))
	for _, p := range ledger {
		responses = append(responses, ToPaymentResponse(p))
	}
	return responses, nil
}

func (s *PaymentService) findPayment(ctx context.Context, repos appordering.TransactionalRepositories, paymentID uuid.UUID) (*payments.Payment, error) {
	return repos.PaymentRepo().FindByID(ctx, paymentID)
}

func toBalanceResponse(order *ordering.Order, r payments.Reconciliation) BalanceResponse {
	return BalanceResponse{
		OrderID:     order.ID,
		OrderTotal:  r.OrderTotal,
		PaidTotal:   r.PaidTotal,
		Balance:     r.Balance(),
		Change:      r.Change(),
		FullyPaid:   r.IsFullyPaid(),
		Overpaid:    r.IsOverpaid(),
		OrderStatus: order.Status.String(),
	}
}

func (s *PaymentService) publishEvents(ctx context.Context, payment *payments.Payment) {
	if s.eventPublisher == nil || payment == nil {
		return
	}
	for _, event := range payment.GetDomainEvents() {
		_ = s.eventPublisher.Publish(ctx, event)
	}
	payment.ClearDomainEvents()
}
