package ordering

import (
	"context"

	"github.com/google/uuid"
	"github.com/resto/backend/internal/domain/catalog"
	"github.com/resto/backend/internal/domain/ordering"
	"github.com/resto/backend/internal/domain/shared"
	"github.com/resto/backend/internal/domain/shared/valueobject"
	"github.com/resto/backend/internal/domain/stock"
	"github.com/resto/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/trace"
)

// AllocationTrigger selects the lifecycle point at which an order item's
// stock is allocated. Exactly one allocation happens per item regardless of
// the trigger; the ledger it produces is what cancellation reverses.
type AllocationTrigger string

const (
	// TriggerItemReady allocates when the kitchen marks the item ready
	TriggerItemReady AllocationTrigger = "item_ready"
	// TriggerSendToKitchen allocates when the order is sent to the kitchen
	TriggerSendToKitchen AllocationTrigger = "send_to_kitchen"
)

// IsValid checks if the trigger is a known AllocationTrigger
func (t AllocationTrigger) IsValid() bool {
	return t == TriggerItemReady || t == TriggerSendToKitchen
}

// OrderServiceConfig carries the tunables of the order workflow
type OrderServiceConfig struct {
	AllocationTrigger AllocationTrigger
	// BillTolerance is the fraction of unfinished items (0..1) a cashier
	// may bill past before the order reaches READY
	BillTolerance decimal.Decimal
}

// DefaultOrderServiceConfig allocates at kitchen completion and requires
// every item finished before an early bill
func DefaultOrderServiceConfig() OrderServiceConfig {
	return OrderServiceConfig{
		AllocationTrigger: TriggerItemReady,
		BillTolerance:     decimal.Zero,
	}
}

// OrderService handles the order lifecycle. Every mutation loads the
// aggregate, applies the change and commits it with a version check inside
// one transaction, so concurrent waiters, stations and cashiers conflict
// loudly instead of overwriting each other.
type OrderService struct {
	orderRepo      ordering.OrderRepository
	productRepo    catalog.ProductRepository
	txScope        TransactionScope
	eventPublisher shared.EventPublisher
	cfg            OrderServiceConfig
}

// NewOrderService creates a new OrderService
func NewOrderService(orderRepo ordering.OrderRepository, productRepo catalog.ProductRepository, txScope TransactionScope, cfg OrderServiceConfig) *OrderService {
	if !cfg.AllocationTrigger.IsValid() {
		cfg.AllocationTrigger = TriggerItemReady
	}
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		txScope:     txScope,
		cfg:         cfg,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *OrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Open opens a new order
func (s *OrderService) Open(ctx context.Context, req OpenOrderRequest) (_ *OrderResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "open",
		telemetry.WithAttribute(telemetry.SpanAttrTableNumber, req.TableNumber))
	defer func() { endSpan(span, err) }()

	orderNumber, err := s.orderRepo.GenerateOrderNumber(ctx)
	if err != nil {
		return nil, err
	}

	order, err := ordering.NewOrder(orderNumber)
	if err != nil {
		return nil, err
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrOrderID, order.ID,
		telemetry.SpanAttrOrderNumber, orderNumber)

	if req.TableNumber != "" {
		order.AssignTable(req.TableNumber)
	}
	if req.WaiterID != nil {
		order.AssignWaiter(*req.WaiterID)
	}
	if req.CustomerID != nil {
		order.AssignCustomer(*req.CustomerID)
	}
	if req.Notes != "" {
		order.SetNotes(req.Notes)
	}

	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, order)

	response := ToOrderResponse(order)
	return &response, nil
}

// GetByID retrieves an order by ID
func (s *OrderService) GetByID(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(order)
	return &response, nil
}

// GetByOrderNumber retrieves an order by its number
func (s *OrderService) GetByOrderNumber(ctx context.Context, orderNumber string) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByOrderNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(order)
	return &response, nil
}

// List retrieves orders with filtering and pagination
func (s *OrderService) List(ctx context.Context, filter OrderListFilter) ([]OrderResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	domainFilter := ordering.OrderFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  "opened_at",
			OrderDir: "desc",
		},
		OpenOnly: filter.OpenOnly,
	}
	if filter.Status != nil {
		status := ordering.OrderStatus(*filter.Status)
		domainFilter.Status = &status
	}
	if filter.TableNumber != nil {
		domainFilter.TableNumber = filter.TableNumber
	}

	page, err := s.orderRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]OrderResponse, 0, len(page.Items))
	for idx := range page.Items {
		responses = append(responses, ToOrderResponse(&page.Items[idx]))
	}
	return responses, page.Total, nil
}

// AddItem adds a product line to an order. The product's name and current
// price are captured onto the line; the station comes from the request or
// falls back to the product's default routing.
func (s *OrderService) AddItem(ctx context.Context, orderID uuid.UUID, req AddItemRequest) (*OrderResponse, error) {
	product, err := s.productRepo.FindByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.IsOrderable() {
		return nil, shared.NewDomainError("PRODUCT_NOT_ORDERABLE", "Product is not on the menu")
	}

	stationID := req.StationID
	if stationID == nil {
		stationID = product.DefaultStationID
	}

	var order *ordering.Order
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		order, err = repos.OrderRepo().FindByID(ctx, orderID)
		if err != nil {
			return err
		}

		item, err := order.AddItem(
			product.ID,
			product.Name,
			stationID,
			req.Quantity,
			product.PriceMoney(),
			valueobject.NewMoneyUSD(req.Discount),
		)
		if err != nil {
			return err
		}
		if req.PersonID != nil {
			item.AssignToPerson(*req.PersonID, req.Shared)
		}

		return repos.OrderRepo().SaveWithVersion(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, order)

	response := ToOrderResponse(order)
	return &response, nil
}

// AttachPerson registers a diner on the order
func (s *OrderService) AttachPerson(ctx context.Context, orderID uuid.UUID, req AttachPersonRequest) (*OrderResponse, error) {
	var order *ordering.Order
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		order, err = repos.OrderRepo().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if _, err := order.AttachPerson(req.Name); err != nil {
			return err
		}
		return repos.OrderRepo().SaveWithVersion(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	response := ToOrderResponse(order)
	return &response, nil
}

// SendToKitchen routes the order to the kitchen. When allocation is
// configured at this trigger every routed item's stock is allocated in the
// same transaction as the status change.
func (s *OrderService) SendToKitchen(ctx context.Context, orderID uuid.UUID) (_ *OrderResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "send_to_kitchen",
		telemetry.WithAttribute(telemetry.SpanAttrOrderID, orderID))
	defer func() { endSpan(span, err) }()

	var order *ordering.Order
	var ledgers []*stock.AllocationLedger
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		order, err = repos.OrderRepo().FindByID(ctx, orderID)
		if err != nil {
			return err
		}

		if err := order.SendToKitchen(); err != nil {
			return err
		}

		if s.cfg.AllocationTrigger == TriggerSendToKitchen {
			for _, item := range order.ActiveItems() {
				ledger, err := repos.Allocator().Allocate(ctx, order.ID, item.ID, item.ProductID, item.Quantity)
				if err != nil {
					return err
				}
				ledgers = append(ledgers, ledger)
			}
		}

		return repos.OrderRepo().SaveWithVersion(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrOrderStatus, string(order.Status))

	s.publishEvents(ctx, order)
	s.publishLedgerEvents(ctx, ledgers...)

	response := ToOrderResponse(order)
	return &response, nil
}

// MarkItemInProgress records a station picking up an item
func (s *OrderService) MarkItemInProgress(ctx context.Context, orderID, itemID uuid.UUID) (*OrderResponse, error) {
	var order *ordering.Order
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		order, err = repos.OrderRepo().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if err := order.MarkItemInProgress(itemID); err != nil {
			return err
		}
		return repos.OrderRepo().SaveWithVersion(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, order)

	response := ToOrderResponse(order)
	return &response, nil
}

// MarkItemReady records kitchen completion of an item. When allocation is
// configured at this trigger the item's stock is allocated atomically with
// the status change and the order's version bump.
func (s *OrderService) MarkItemReady(ctx context.Context, orderID, itemID uuid.UUID, preparedBy *uuid.UUID) (*OrderResponse, error) {
	var order *ordering.Order
	var ledger *stock.AllocationLedger
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		order, err = repos.OrderRepo().FindByID(ctx, orderID)
		if err != nil {
			return err
		}

		if err := order.MarkItemReady(itemID, preparedBy); err != nil {
			return err
		}

		if s.cfg.AllocationTrigger == TriggerItemReady {
			item := order.GetItem(itemID)
			if ledger, err = repos.Allocator().Allocate(ctx, order.ID, item.ID, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}

		return repos.OrderRepo().SaveWithVersion(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, order)
	s.publishLedgerEvents(ctx, ledger)

	response := ToOrderResponse(order)
	return &response, nil
}

// AdvanceItemStatus moves an item along its pipeline, e.g. READY to SERVED.
// Reaching READY through this path honors the allocation trigger the same
// way MarkItemReady does, so an item never becomes READY without its ledger.
func (s *OrderService) AdvanceItemStatus(ctx context.Context, orderID, itemID uuid.UUID, target ordering.ItemStatus) (*OrderResponse, error) {
	var order *ordering.Order
	var ledger *stock.AllocationLedger
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		order, err = repos.OrderRepo().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if err := order.AdvanceItemStatus(itemID, target); err != nil {
			return err
		}

		if target == ordering.ItemStatusReady && s.cfg.AllocationTrigger == TriggerItemReady {
			item := order.GetItem(itemID)
			if ledger, err = repos.Allocator().Allocate(ctx, order.ID, item.ID, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}

		return repos.OrderRepo().SaveWithVersion(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, order)
	s.publishLedgerEvents(ctx, ledger)

	response := ToOrderResponse(order)
	return &response, nil
}

// RequestBill transitions the order to READY_TO_PAY under the configured
// completeness tolerance
func (s *OrderService) RequestBill(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	var order *ordering.Order
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		order, err = repos.OrderRepo().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if err := order.RequestBill(s.cfg.BillTolerance); err != nil {
			return err
		}
		return repos.OrderRepo().SaveWithVersion(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, order)

	response := ToOrderResponse(order)
	return &response, nil
}

// CloseOrder completes a served order
func (s *OrderService) CloseOrder(ctx context.Context, orderID uuid.UUID) (_ *OrderResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "close",
		telemetry.WithAttribute(telemetry.SpanAttrOrderID, orderID))
	defer func() { endSpan(span, err) }()

	var order *ordering.Order
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		order, err = repos.OrderRepo().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if err := order.Close(); err != nil {
			return err
		}
		return repos.OrderRepo().SaveWithVersion(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, order)

	response := ToOrderResponse(order)
	return &response, nil
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

// publishEvents drains the aggregate's pending events after a successful
// commit. Publishing is best-effort; handlers run out of band.
func (s *OrderService) publishEvents(ctx context.Context, order *ordering.Order) {
	if s.eventPublisher == nil || order == nil {
		return
	}
	for _, event := range order.GetDomainEvents() {
		_ = s.eventPublisher.Publish(ctx, event)
	}
	order.ClearDomainEvents()
}

// publishLedgerEvents drains the stock events the allocation engine staged
// on each ledger, after the enclosing transaction committed
func (s *OrderService) publishLedgerEvents(ctx context.Context, ledgers ...*stock.AllocationLedger) {
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
