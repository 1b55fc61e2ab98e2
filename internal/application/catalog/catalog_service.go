package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/resto/backend/internal/domain/catalog"
	"github.com/resto/backend/internal/domain/shared"
	"github.com/resto/backend/internal/domain/shared/valueobject"
)

// CatalogService manages the menu: products, categories and stations
type CatalogService struct {
	productRepo    catalog.ProductRepository
	stationRepo    catalog.StationRepository
	categoryRepo   catalog.CategoryRepository
	eventPublisher shared.EventPublisher
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(productRepo catalog.ProductRepository, stationRepo catalog.StationRepository, categoryRepo catalog.CategoryRepository) *CatalogService {
	return &CatalogService{
		productRepo:  productRepo,
		stationRepo:  stationRepo,
		categoryRepo: categoryRepo,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *CatalogService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// CreateProduct adds a product to the menu
func (s *CatalogService) CreateProduct(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	product, err := catalog.NewProduct(req.Code, req.Name, valueobject.NewMoneyUSD(req.Price))
	if err != nil {
		return nil, err
	}

	if req.Description != "" {
		if err := product.Update(req.Name, req.Description); err != nil {
			return nil, err
		}
	}
	if req.CategoryID != nil {
		product.SetCategory(req.CategoryID)
	}
	if req.DefaultStationID != nil {
		product.SetDefaultStation(req.DefaultStationID)
	}
	if req.TrackInventory {
		product.EnableInventoryTracking(req.AllowNegativeStock)
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	s.publishProductEvents(ctx, product)

	response := ToProductResponse(product)
	return &response, nil
}

// UpdateProduct edits a menu product
func (s *CatalogService) UpdateProduct(ctx context.Context, productID uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	if err := product.Update(req.Name, req.Description); err != nil {
		return nil, err
	}
	if req.Price != nil {
		if err := product.SetPrice(valueobject.NewMoneyUSD(*req.Price)); err != nil {
			return nil, err
		}
	}
	if req.CategoryID != nil {
		product.SetCategory(req.CategoryID)
	}
	if req.DefaultStationID != nil {
		product.SetDefaultStation(req.DefaultStationID)
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	s.publishProductEvents(ctx, product)

	response := ToProductResponse(product)
	return &response, nil
}

// SetInventoryTracking toggles stock allocation for a product
func (s *CatalogService) SetInventoryTracking(ctx context.Context, productID uuid.UUID, track, allowNegative bool) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	if track {
		product.EnableInventoryTracking(allowNegative)
	} else {
		product.DisableInventoryTracking()
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// RetireProduct removes a product from the menu permanently
func (s *CatalogService) RetireProduct(ctx context.Context, productID uuid.UUID) error {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return err
	}

	product.Retire()

	if err := s.productRepo.Update(ctx, product); err != nil {
		return err
	}

	s.publishProductEvents(ctx, product)
	return nil
}

// GetProduct retrieves a product by ID
func (s *CatalogService) GetProduct(ctx context.Context, productID uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

// ListProducts retrieves products with filtering and pagination
func (s *CatalogService) ListProducts(ctx context.Context, filter ProductListFilter) ([]ProductResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 50
	}

	domainFilter := catalog.ProductFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  "sort_order",
			OrderDir: "asc",
		},
		CategoryID: filter.CategoryID,
		Search:     filter.Search,
	}
	if filter.Status != nil {
		status := catalog.ProductStatus(*filter.Status)
		domainFilter.Status = &status
	}

	page, err := s.productRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]ProductResponse, 0, len(page.Items))
	for idx := range page.Items {
		responses = append(responses, ToProductResponse(&page.Items[idx]))
	}
	return responses, page.Total, nil
}

// CreateStation creates a preparation station
func (s *CatalogService) CreateStation(ctx context.Context, req CreateStationRequest) (*StationResponse, error) {
	station, err := catalog.NewStation(req.Code, req.Name)
	if err != nil {
		return nil, err
	}

	if err := s.stationRepo.Save(ctx, station); err != nil {
		return nil, err
	}

	response := ToStationResponse(station)
	return &response, nil
}

// SetStationActive toggles a station in or out of service
func (s *CatalogService) SetStationActive(ctx context.Context, stationID uuid.UUID, active bool) (*StationResponse, error) {
	station, err := s.stationRepo.FindByID(ctx, stationID)
	if err != nil {
		return nil, err
	}

	if active {
		station.Activate()
	} else {
		station.Deactivate()
	}

	if err := s.stationRepo.Update(ctx, station); err != nil {
		return nil, err
	}

	response := ToStationResponse(station)
	return &response, nil
}

// ListStations lists stations
func (s *CatalogService) ListStations(ctx context.Context, activeOnly bool) ([]StationResponse, error) {
	stations, err := s.stationRepo.FindAll(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	responses := make([]StationResponse, 0, len(stations))
	for _, st := range stations {
		responses = append(responses, ToStationResponse(st))
	}
	return responses, nil
}

// CreateCategory creates a menu category
func (s *CatalogService) CreateCategory(ctx context.Context, req CreateCategoryRequest) (*CategoryResponse, error) {
	category, err := catalog.NewCategory(req.Name)
	if err != nil {
		return nil, err
	}
	category.SetSortOrder(req.SortOrder)

	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, err
	}

	response := ToCategoryResponse(category)
	return &response, nil
}

// ListCategories lists menu categories
func (s *CatalogService) ListCategories(ctx context.Context, activeOnly bool) ([]CategoryResponse, error) {
	categories, err := s.categoryRepo.FindAll(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	responses := make([]CategoryResponse, 0, len(categories))
	for _, c := range categories {
		responses = append(responses, ToCategoryResponse(c))
	}
	return responses, nil
}

func (s *CatalogService) publishProductEvents(ctx context.Context, product *catalog.Product) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range product.GetDomainEvents() {
		_ = s.eventPublisher.Publish(ctx, event)
	}
	product.ClearDomainEvents()
}
