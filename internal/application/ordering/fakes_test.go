package ordering

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/resto/backend/internal/domain/catalog"
	"github.com/resto/backend/internal/domain/ordering"
	"github.com/resto/backend/internal/domain/payments"
	"github.com/resto/backend/internal/domain/shared"
	"github.com/resto/backend/internal/domain/stock"
	"github.com/shopspring/decimal"
)

// fakeOrderRepo is an in-memory order store with real compare-and-swap
// semantics. FindByID hands out clones so a failed mutation never leaks
// into the store, mirroring transactional rollback.
type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*ordering.Order
	seq    int
	// failCAS makes the next N SaveWithVersion calls report a stale version
	failCAS int
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[uuid.UUID]*ordering.Order)}
}

func cloneOrder(o *ordering.Order) *ordering.Order {
	clone := *o
	clone.Items = append([]ordering.OrderItem(nil), o.Items...)
	clone.Persons = append([]ordering.Person(nil), o.Persons...)
	clone.ClearDomainEvents()
	return &clone
}

func (r *fakeOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*ordering.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return cloneOrder(order), nil
}

func (r *fakeOrderRepo) FindByOrderNumber(_ context.Context, orderNumber string) (*ordering.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, order := range r.orders {
		if order.OrderNumber == orderNumber {
			return cloneOrder(order), nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeOrderRepo) FindAll(_ context.Context, filter ordering.OrderFilter) (*shared.Paginated[ordering.Order], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := make([]ordering.Order, 0, len(r.orders))
	for _, order := range r.orders {
		if filter.Status != nil && order.Status != *filter.Status {
			continue
		}
		if filter.OpenOnly && order.IsTerminal() {
			continue
		}
		items = append(items, *cloneOrder(order))
	}
	page := shared.NewPaginated(items, int64(len(items)), 1, 20)
	return &page, nil
}

func (r *fakeOrderRepo) Save(_ context.Context, order *ordering.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.orders[order.ID]; exists {
		return shared.ErrAlreadyExists
	}
	r.orders[order.ID] = cloneOrder(order)
	return nil
}

func (r *fakeOrderRepo) SaveWithVersion(_ context.Context, order *ordering.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCAS > 0 {
		r.failCAS--
		return shared.ErrStaleVersion
	}
	stored, ok := r.orders[order.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if stored.Version != order.Version {
		return shared.ErrStaleVersion
	}
	order.IncrementVersion()
	r.orders[order.ID] = cloneOrder(order)
	return nil
}

func (r *fakeOrderRepo) GenerateOrderNumber(_ context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	return fmt.Sprintf("POS-2026-%05d", r.seq), nil
}

func (r *fakeOrderRepo) CountByStatus(_ context.Context) (map[ordering.OrderStatus]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[ordering.OrderStatus]int64)
	for _, order := range r.orders {
		counts[order.Status]++
	}
	return counts, nil
}

// bumpVersion simulates a concurrent writer committing between a read and
// a conditional write
func (r *fakeOrderRepo) bumpVersion(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[id].IncrementVersion()
}

var _ ordering.OrderRepository = (*fakeOrderRepo)(nil)

// fakeLogRepo is an in-memory append-only cancellation log
type fakeLogRepo struct {
	mu   sync.Mutex
	logs []ordering.OrderCancellationLog
}

func (r *fakeLogRepo) Save(_ context.Context, log *ordering.OrderCancellationLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, *log)
	return nil
}

func (r *fakeLogRepo) FindByOrderID(_ context.Context, orderID uuid.UUID) ([]ordering.OrderCancellationLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []ordering.OrderCancellationLog
	for _, log := range r.logs {
		if log.OrderID == orderID {
			result = append(result, log)
		}
	}
	return result, nil
}

var _ ordering.CancellationLogRepository = (*fakeLogRepo)(nil)

// fakePaymentRepo is an in-memory payment ledger
type fakePaymentRepo struct {
	mu       sync.Mutex
	payments map[uuid.UUID]*payments.Payment
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{payments: make(map[uuid.UUID]*payments.Payment)}
}

func (r *fakePaymentRepo) FindByID(_ context.Context, id uuid.UUID) (*payments.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return p, nil
}

func (r *fakePaymentRepo) FindByOrderID(_ context.Context, orderID uuid.UUID) ([]*payments.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*payments.Payment
	for _, p := range r.payments {
		if p.OrderID == orderID {
			result = append(result, p)
		}
	}
	return result, nil
}

func (r *fakePaymentRepo) Save(_ context.Context, payment *payments.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payments[payment.ID] = payment
	return nil
}

func (r *fakePaymentRepo) Update(_ context.Context, payment *payments.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.payments[payment.ID]; !ok {
		return shared.ErrNotFound
	}
	r.payments[payment.ID] = payment
	return nil
}

var _ payments.PaymentRepository = (*fakePaymentRepo)(nil)

// fakeLedgerRepo is an in-memory allocation ledger store
type fakeLedgerRepo struct {
	mu      sync.Mutex
	ledgers map[uuid.UUID]*stock.AllocationLedger
}

func newFakeLedgerRepo() *fakeLedgerRepo {
	return &fakeLedgerRepo{ledgers: make(map[uuid.UUID]*stock.AllocationLedger)}
}

func (r *fakeLedgerRepo) FindByID(_ context.Context, id uuid.UUID) (*stock.AllocationLedger, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.ledgers[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return l, nil
}

func (r *fakeLedgerRepo) FindByOrderItem(_ context.Context, orderItemID uuid.UUID) (*stock.AllocationLedger, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.ledgers {
		if l.OrderItemID == orderItemID {
			return l, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeLedgerRepo) FindActiveByOrder(_ context.Context, orderID uuid.UUID) ([]*stock.AllocationLedger, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*stock.AllocationLedger
	for _, l := range r.ledgers {
		if l.OrderID == orderID && !l.IsReversed() {
			result = append(result, l)
		}
	}
	return result, nil
}

func (r *fakeLedgerRepo) Save(_ context.Context, ledger *stock.AllocationLedger) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ledgers[ledger.ID] = ledger
	return nil
}

func (r *fakeLedgerRepo) Update(_ context.Context, ledger *stock.AllocationLedger) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ledgers[ledger.ID] = ledger
	return nil
}

var _ stock.AllocationLedgerRepository = (*fakeLedgerRepo)(nil)

// fakeAllocator runs the real planning algorithm against in-memory pools,
// mirroring the persistence-backed engine
type fakeAllocator struct {
	mu       sync.Mutex
	pools    []*stock.StockAssignment
	policies map[uuid.UUID]stock.ProductPolicy
	ledgers  *fakeLedgerRepo
}

func newFakeAllocator(ledgers *fakeLedgerRepo) *fakeAllocator {
	return &fakeAllocator{
		policies: make(map[uuid.UUID]stock.ProductPolicy),
		ledgers:  ledgers,
	}
}

func (a *fakeAllocator) addPool(pool *stock.StockAssignment) {
	a.pools = append(a.pools, pool)
}

func (a *fakeAllocator) setPolicy(policy stock.ProductPolicy) {
	a.policies[policy.ProductID] = policy
}

func (a *fakeAllocator) Allocate(ctx context.Context, orderID, orderItemID, productID uuid.UUID, quantity decimal.Decimal) (*stock.AllocationLedger, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if existing, err := a.ledgers.FindByOrderItem(ctx, orderItemID); err == nil && !existing.IsReversed() {
		return existing, nil
	}

	policy, ok := a.policies[productID]
	if !ok {
		policy = stock.ProductPolicy{ProductID: productID, TrackInventory: true}
	}
	if !policy.TrackInventory {
		ledger := stock.NewEmptyLedger(orderID, orderItemID, productID, quantity)
		return ledger, a.ledgers.Save(ctx, ledger)
	}

	plan, err := stock.Plan(productID, a.pools, quantity, policy.AllowNegativeStock)
	if err != nil {
		return nil, err
	}
	var staged []shared.DomainEvent
	for _, d := range plan {
		for _, pool := range a.pools {
			if pool.ID == d.AssignmentID {
				if err := pool.Deduct(d.Quantity); err != nil {
					return nil, err
				}
				staged = append(staged, pool.GetDomainEvents()...)
				pool.ClearDomainEvents()
				break
			}
		}
	}

	ledger := stock.NewAllocationLedger(orderID, orderItemID, productID, quantity, plan)
	ledger.AddDomainEvent(stock.NewStockAllocatedEvent(ledger))
	for _, event := range staged {
		ledger.AddDomainEvent(event)
	}
	return ledger, a.ledgers.Save(ctx, ledger)
}

func (a *fakeAllocator) Reverse(ctx context.Context, ledger *stock.AllocationLedger) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := ledger.MarkReversed(); err != nil {
		return err
	}
	ledger.AddDomainEvent(stock.NewStockReversedEvent(ledger))
	for idx := range ledger.Entries {
		entry := &ledger.Entries[idx]
		for _, pool := range a.pools {
			if pool.ID == entry.AssignmentID {
				if err := pool.Restore(entry.Quantity); err != nil {
					return err
				}
				break
			}
		}
	}
	return a.ledgers.Update(ctx, ledger)
}

var _ stock.AllocationService = (*fakeAllocator)(nil)

// capturingPublisher records published events in arrival order
type capturingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (p *capturingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *capturingPublisher) eventTypes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, 0, len(p.events))
	for _, event := range p.events {
		types = append(types, event.EventType())
	}
	return types
}

var _ shared.EventPublisher = (*capturingPublisher)(nil)

// fakeProductRepo is an in-memory product catalog
type fakeProductRepo struct {
	mu       sync.Mutex
	products map[uuid.UUID]*catalog.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[uuid.UUID]*catalog.Product)}
}

func (r *fakeProductRepo) add(product *catalog.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[product.ID] = product
}

func (r *fakeProductRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return p, nil
}

func (r *fakeProductRepo) FindByCode(_ context.Context, code string) (*catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.Code == code {
			return p, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeProductRepo) FindAll(_ context.Context, _ catalog.ProductFilter) (*shared.Paginated[catalog.Product], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := make([]catalog.Product, 0, len(r.products))
	for _, p := range r.products {
		items = append(items, *p)
	}
	page := shared.NewPaginated(items, int64(len(items)), 1, 50)
	return &page, nil
}

func (r *fakeProductRepo) Save(_ context.Context, product *catalog.Product) error {
	r.add(product)
	return nil
}

func (r *fakeProductRepo) Update(_ context.Context, product *catalog.Product) error {
	r.add(product)
	return nil
}

func (r *fakeProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.products, id)
	return nil
}

var _ catalog.ProductRepository = (*fakeProductRepo)(nil)
