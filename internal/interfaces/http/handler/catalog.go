package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appcatalog "github.com/resto/backend/internal/application/catalog"
)

// CatalogHandler handles product, station, and category HTTP requests
type CatalogHandler struct {
	BaseHandler
	catalogService *appcatalog.CatalogService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogService *appcatalog.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// inventoryTrackingRequest toggles stock tracking for a product
type inventoryTrackingRequest struct {
	TrackInventory bool `json:"track_inventory"`
	AllowNegative  bool `json:"allow_negative"`
}

// stationActiveRequest toggles whether a station accepts allocations
type stationActiveRequest struct {
	Active bool `json:"active"`
}

// CreateProduct godoc
// @Summary Create a menu product
// @Tags catalog
// @Accept json
// @Produce json
// @Param request body catalog.CreateProductRequest true "Product details"
// @Success 201 {object} dto.Response{data=catalog.ProductResponse}
// @Failure 409 {object} dto.Response
// @Router /api/v1/products [post]
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req appcatalog.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	resp, err := h.catalogService.CreateProduct(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, resp)
}

// UpdateProduct godoc
// @Summary Update a menu product
// @Tags catalog
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param request body catalog.UpdateProductRequest true "Fields to update"
// @Success 200 {object} dto.Response{data=catalog.ProductResponse}
// @Failure 404 {object} dto.Response
// @Router /api/v1/products/{id} [put]
func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	var req appcatalog.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	resp, err := h.catalogService.UpdateProduct(c.Request.Context(), productID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// SetInventoryTracking godoc
// @Summary Toggle inventory tracking for a product
// @Tags catalog
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param request body inventoryTrackingRequest true "Tracking flags"
// @Success 200 {object} dto.Response{data=catalog.ProductResponse}
// @Failure 404 {object} dto.Response
// @Router /api/v1/products/{id}/inventory-tracking [put]
func (h *CatalogHandler) SetInventoryTracking(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	var req inventoryTrackingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	resp, err := h.catalogService.SetInventoryTracking(c.Request.Context(), productID, req.TrackInventory, req.AllowNegative)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// RetireProduct godoc
// @Summary Retire a product from the menu
// @Tags catalog
// @Produce json
// @Param id path string true "Product ID"
// @Success 204
// @Failure 404 {object} dto.Response
// @Router /api/v1/products/{id} [delete]
func (h *CatalogHandler) RetireProduct(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	if err := h.catalogService.RetireProduct(c.Request.Context(), productID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// GetProduct godoc
// @Summary Get a product by ID
// @Tags catalog
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} dto.Response{data=catalog.ProductResponse}
// @Failure 404 {object} dto.Response
// @Router /api/v1/products/{id} [get]
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	resp, err := h.catalogService.GetProduct(c.Request.Context(), productID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// ListProducts godoc
// @Summary List menu products
// @Tags catalog
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Param category_id query string false "Category filter"
// @Param active_only query bool false "Only active products"
// @Success 200 {object} dto.Response{data=[]catalog.ProductResponse}
// @Router /api/v1/products [get]
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	var filter appcatalog.ProductListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	products, total, err := h.catalogService.ListProducts(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, products, total, filter.Page, filter.PageSize)
}

// CreateStation godoc
// @Summary Create a preparation station
// @Tags catalog
// @Accept json
// @Produce json
// @Param request body catalog.CreateStationRequest true "Station details"
// @Success 201 {object} dto.Response{data=catalog.StationResponse}
// @Failure 409 {object} dto.Response
// @Router /api/v1/stations [post]
func (h *CatalogHandler) CreateStation(c *gin.Context) {
	var req appcatalog.CreateStationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	resp, err := h.catalogService.CreateStation(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, resp)
}

// SetStationActive godoc
// @Summary Activate or deactivate a station
// @Tags catalog
// @Accept json
// @Produce json
// @Param id path string true "Station ID"
// @Param request body stationActiveRequest true "Active flag"
// @Success 200 {object} dto.Response{data=catalog.StationResponse}
// @Failure 404 {object} dto.Response
// @Router /api/v1/stations/{id}/active [put]
func (h *CatalogHandler) SetStationActive(c *gin.Context) {
	stationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid station ID")
		return
	}

	var req stationActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	resp, err := h.catalogService.SetStationActive(c.Request.Context(), stationID, req.Active)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// ListStations godoc
// @Summary List preparation stations
// @Tags catalog
// @Produce json
// @Param active_only query bool false "Only active stations"
// @Success 200 {object} dto.Response{data=[]catalog.StationResponse}
// @Router /api/v1/stations [get]
func (h *CatalogHandler) ListStations(c *gin.Context) {
	activeOnly := c.Query("active_only") == "true"

	stations, err := h.catalogService.ListStations(c.Request.Context(), activeOnly)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, stations)
}

// CreateCategory godoc
// @Summary Create a menu category
// @Tags catalog
// @Accept json
// @Produce json
// @Param request body catalog.CreateCategoryRequest true "Category details"
// @Success 201 {object} dto.Response{data=catalog.CategoryResponse}
// @Failure 409 {object} dto.Response
// @Router /api/v1/categories [post]
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req appcatalog.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	resp, err := h.catalogService.CreateCategory(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, resp)
}

// ListCategories godoc
// @Summary List menu categories
// @Tags catalog
// @Produce json
// @Param active_only query bool false "Only active categories"
// @Success 200 {object} dto.Response{data=[]catalog.CategoryResponse}
// @Router /api/v1/categories [get]
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	activeOnly := c.Query("active_only") == "true"

	categories, err := h.catalogService.ListCategories(c.Request.Context(), activeOnly)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, categories)
}
