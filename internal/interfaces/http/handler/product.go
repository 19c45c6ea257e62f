package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	catalogapp "github.com/ppm/backend/internal/application/catalog"
	"github.com/ppm/backend/internal/domain/catalog"
	"github.com/ppm/backend/internal/domain/catmapping"
)

// ProductHandler handles product API endpoints, including the per-target
// category mapping surface
type ProductHandler struct {
	BaseHandler
	products *catalogapp.ProductService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(products *catalogapp.ProductService) *ProductHandler {
	return &ProductHandler{products: products}
}

// CreateProductRequest represents a request to create a product
type CreateProductRequest struct {
	SKU         string  `json:"sku" binding:"required,min=1,max=100"`
	Name        string  `json:"name" binding:"required,min=1,max=255"`
	Description string  `json:"description" binding:"max=10000"`
	Price       float64 `json:"price" binding:"min=0"`
}

// UpdateProductRequest represents a request to update a product
type UpdateProductRequest struct {
	Name        string  `json:"name" binding:"required,min=1,max=255"`
	Description string  `json:"description" binding:"max=10000"`
	Price       float64 `json:"price" binding:"min=0"`
}

// CategorySelectionRequest replaces a product's category selection for one
// target key
type CategorySelectionRequest struct {
	Selected []int64 `json:"selected" binding:"required"`
	Primary  *int64  `json:"primary"`
}

// ProductResponse represents a product in responses
type ProductResponse struct {
	ID          int64  `json:"id"`
	SKU         string `json:"sku"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Price       string `json:"price"`
	Quantity    string `json:"quantity"`
	Active      bool   `json:"active"`
}

func toProductResponse(product *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:          product.ID,
		SKU:         product.SKU,
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price.StringFixed(2),
		Quantity:    product.Quantity.String(),
		Active:      product.Active,
	}
}

// RegisterRoutes registers product routes
func (h *ProductHandler) RegisterRoutes(rg *gin.RouterGroup) {
	products := rg.Group("/catalog/products")
	{
		products.POST("", h.Create)
		products.GET("/:id", h.Get)
		products.PUT("/:id", h.Update)
		products.POST("/:id/resync", h.Resync)
		products.GET("/:id/category-mappings/:target", h.GetCategoryMapping)
		products.PUT("/:id/category-mappings/:target", h.SetCategorySelection)
	}
}

// Create creates a new product
func (h *ProductHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "invalid tenant ID")
		return
	}

	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	product, err := h.products.CreateProduct(c.Request.Context(), tenantID,
		req.SKU, req.Name, req.Description, decimal.NewFromFloat(req.Price))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toProductResponse(product))
}

// Get returns one product
func (h *ProductHandler) Get(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "invalid tenant ID")
		return
	}
	id, err := getIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid product ID")
		return
	}

	product, err := h.products.GetProduct(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toProductResponse(product))
}

// Update changes a product's descriptive fields
func (h *ProductHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "invalid tenant ID")
		return
	}
	id, err := getIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid product ID")
		return
	}

	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	product, err := h.products.UpdateProduct(c.Request.Context(), tenantID, id,
		req.Name, req.Description, decimal.NewFromFloat(req.Price))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toProductResponse(product))
}

// Resync re-announces a product to all active targets
func (h *ProductHandler) Resync(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "invalid tenant ID")
		return
	}
	id, err := getIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid product ID")
		return
	}

	if err := h.products.ResyncProduct(c.Request.Context(), tenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Accepted(c, gin.H{"product_id": id})
}

// GetCategoryMapping returns the product's canonical category mapping for
// one target key, the empty structure when none is stored yet
func (h *ProductHandler) GetCategoryMapping(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "invalid tenant ID")
		return
	}
	id, err := getIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid product ID")
		return
	}

	mapping, err := h.products.GetCategoryMapping(c.Request.Context(), tenantID, id, c.Param("target"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, mapping)
}

// SetCategorySelection replaces the product's category selection for one
// target key and returns the resulting canonical mapping
func (h *ProductHandler) SetCategorySelection(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "invalid tenant ID")
		return
	}
	id, err := getIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid product ID")
		return
	}

	var req CategorySelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	var mapping *catmapping.CategoryMapping
	mapping, err = h.products.SetCategorySelection(c.Request.Context(), tenantID, id,
		c.Param("target"), req.Selected, req.Primary)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, mapping)
}
