package stock

import (
	"context"

	"github.com/google/uuid"
	"github.com/resto/backend/internal/domain/shared"
	"github.com/resto/backend/internal/domain/stock"
)

// AssignmentCache caches a product's active fallback chain for the menu and
// kitchen views. Mutations to any pool of the product invalidate the entry;
// a miss falls through to the repository.
type AssignmentCache interface {
	// GetProductChain returns the cached chain and whether it was present
	GetProductChain(ctx context.Context, productID uuid.UUID) ([]AssignmentResponse, bool)
	// SetProductChain stores the chain for a product
	SetProductChain(ctx context.Context, productID uuid.UUID, chain []AssignmentResponse)
	// InvalidateProduct drops the cached chain for a product
	InvalidateProduct(ctx context.Context, productID uuid.UUID)
}

// StockService manages stock pools and exposes allocation ledgers.
// Pool quantities themselves move only through the allocation engine;
// this service covers inventory management: creating pools, thresholds,
// priorities, activity flags and replenishment.
type StockService struct {
	assignmentRepo stock.StockAssignmentRepository
	ledgerRepo     stock.AllocationLedgerRepository
	cache          AssignmentCache
	eventPublisher shared.EventPublisher
}

// NewStockService creates a new StockService
func NewStockService(assignmentRepo stock.StockAssignmentRepository, ledgerRepo stock.AllocationLedgerRepository) *StockService {
	return &StockService{
		assignmentRepo: assignmentRepo,
		ledgerRepo:     ledgerRepo,
	}
}

// SetCache sets the assignment chain cache
func (s *StockService) SetCache(cache AssignmentCache) {
	s.cache = cache
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *StockService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// CreateAssignment creates a stock pool. A product holds at most one pool
// per station.
func (s *StockService) CreateAssignment(ctx context.Context, req CreateAssignmentRequest) (*AssignmentResponse, error) {
	existing, err := s.assignmentRepo.FindByProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	for _, a := range existing {
		if a.StationID == req.StationID {
			return nil, shared.NewDomainError("ASSIGNMENT_EXISTS", "Product already has a stock pool at this station")
		}
	}

	assignment, err := stock.NewStockAssignment(req.ProductID, req.StationID, req.Stock, req.MinStock, req.Priority)
	if err != nil {
		return nil, err
	}

	if err := s.assignmentRepo.Save(ctx, assignment); err != nil {
		return nil, err
	}

	s.invalidate(ctx, req.ProductID)

	response := ToAssignmentResponse(assignment)
	return &response, nil
}

// AdjustAssignment edits threshold, priority or activity of a pool
func (s *StockService) AdjustAssignment(ctx context.Context, assignmentID uuid.UUID, req AdjustAssignmentRequest) (*AssignmentResponse, error) {
	assignment, err := s.assignmentRepo.FindByID(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	if req.MinStock != nil {
		if err := assignment.SetMinStock(*req.MinStock); err != nil {
			return nil, err
		}
	}
	if req.Priority != nil {
		if err := assignment.SetPriority(*req.Priority); err != nil {
			return nil, err
		}
	}
	if req.IsActive != nil {
		if *req.IsActive {
			assignment.Activate()
		} else {
			assignment.Deactivate()
		}
	}

	if err := s.assignmentRepo.Update(ctx, assignment); err != nil {
		return nil, err
	}

	s.invalidate(ctx, assignment.ProductID)

	response := ToAssignmentResponse(assignment)
	return &response, nil
}

// Replenish adds received stock to a pool
func (s *StockService) Replenish(ctx context.Context, assignmentID uuid.UUID, req ReplenishRequest) (*AssignmentResponse, error) {
	assignment, err := s.assignmentRepo.FindByID(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	if err := assignment.Replenish(req.Quantity); err != nil {
		return nil, err
	}
	if err := s.assignmentRepo.Update(ctx, assignment); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, assignment)
	s.invalidate(ctx, assignment.ProductID)

	response := ToAssignmentResponse(assignment)
	return &response, nil
}

// GetProductChain returns the active fallback chain of a product in
// allocation order, served from cache when warm
func (s *StockService) GetProductChain(ctx context.Context, productID uuid.UUID) ([]AssignmentResponse, error) {
	if s.cache != nil {
		if chain, ok := s.cache.GetProductChain(ctx, productID); ok {
			return chain, nil
		}
	}

	assignments, err := s.assignmentRepo.FindActiveByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	chain := make([]AssignmentResponse, 0, len(assignments))
	for _, a := range assignments {
		chain = append(chain, ToAssignmentResponse(a))
	}

	if s.cache != nil {
		s.cache.SetProductChain(ctx, productID, chain)
	}
	return chain, nil
}

// ListByStation returns every pool held at a station
func (s *StockService) ListByStation(ctx context.Context, stationID uuid.UUID) ([]AssignmentResponse, error) {
	assignments, err := s.assignmentRepo.FindByStation(ctx, stationID)
	if err != nil {
		return nil, err
	}
	responses := make([]AssignmentResponse, 0, len(assignments))
	for _, a := range assignments {
		responses = append(responses, ToAssignmentResponse(a))
	}
	return responses, nil
}

// ListBelowMinimum returns active pools under their alert threshold
func (s *StockService) ListBelowMinimum(ctx context.Context) ([]AssignmentResponse, error) {
	assignments, err := s.assignmentRepo.FindBelowMinimum(ctx)
	if err != nil {
		return nil, err
	}
	responses := make([]AssignmentResponse, 0, len(assignments))
	for _, a := range assignments {
		responses = append(responses, ToAssignmentResponse(a))
	}
	return responses, nil
}

// GetLedgerForItem returns the allocation ledger of an order item
func (s *StockService) GetLedgerForItem(ctx context.Context, orderItemID uuid.UUID) (*LedgerResponse, error) {
	ledger, err := s.ledgerRepo.FindByOrderItem(ctx, orderItemID)
	if err != nil {
		return nil, err
	}
	response := ToLedgerResponse(ledger)
	return &response, nil
}

// GetLedgersForOrder returns the live ledgers of an order
func (s *StockService) GetLedgersForOrder(ctx context.Context, orderID uuid.UUID) ([]LedgerResponse, error) {
	ledgers, err := s.ledgerRepo.FindActiveByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	responses := make([]LedgerResponse, 0, len(ledgers))
	for _, l := range ledgers {
		responses = append(responses, ToLedgerResponse(l))
	}
	return responses, nil
}

func (s *StockService) invalidate(ctx context.Context, productID uuid.UUID) {
	if s.cache != nil {
		s.cache.InvalidateProduct(ctx, productID)
	}
}

func (s *StockService) publishEvents(ctx context.Context, assignment *stock.StockAssignment) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range assignment.GetDomainEvents() {
		_ = s.eventPublisher.Publish(ctx, event)
	}
	assignment.ClearDomainEvents()
}
