package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	catalogapp "github.com/ppm/backend/internal/application/catalog"
	syncapp "github.com/ppm/backend/internal/application/sync"
	"github.com/ppm/backend/internal/domain/catalog"
)

// bulkDeleteTimeout bounds a detached bulk delete run
const bulkDeleteTimeout = 10 * time.Minute

// CategoryHandler handles category API endpoints
type CategoryHandler struct {
	BaseHandler
	categories *catalogapp.CategoryService
	bulk       *syncapp.CategoryBulkService
	logger     *zap.Logger
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categories *catalogapp.CategoryService, bulk *syncapp.CategoryBulkService,
	logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{
		categories: categories,
		bulk:       bulk,
		logger:     logger,
	}
}

// CreateCategoryRequest represents a request to create a category
type CreateCategoryRequest struct {
	Code     string `json:"code" binding:"required,min=1,max=100"`
	Name     string `json:"name" binding:"required,min=1,max=255"`
	ParentID *int64 `json:"parent_id"`
}

// RenameCategoryRequest represents a request to rename a category
type RenameCategoryRequest struct {
	Name string `json:"name" binding:"required,min=1,max=255"`
}

// CategoryResponse represents a category in responses
type CategoryResponse struct {
	ID       int64  `json:"id"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	ParentID *int64 `json:"parent_id,omitempty"`
	Active   bool   `json:"active"`
}

// BulkDeleteResponse carries the job handle for a started bulk delete
type BulkDeleteResponse struct {
	JobID string `json:"job_id"`
}

func toCategoryResponse(category *catalog.Category) CategoryResponse {
	return CategoryResponse{
		ID:       category.ID,
		Code:     category.Code,
		Name:     category.Name,
		ParentID: category.ParentID,
		Active:   category.Active,
	}
}

// RegisterRoutes registers category routes
func (h *CategoryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	categories := rg.Group("/catalog/categories")
	{
		categories.POST("", h.Create)
		categories.GET("", h.List)
		categories.GET("/:id", h.Get)
		categories.PUT("/:id", h.Rename)
		categories.DELETE("/:id", h.Delete)
		categories.POST("/:id/bulk-delete", h.BulkDelete)
		categories.POST("/:id/resync", h.Resync)
	}
}

// Create creates a new category
func (h *CategoryHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "invalid tenant ID")
		return
	}

	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	category, err := h.categories.CreateCategory(c.Request.Context(), tenantID, req.Code, req.Name, req.ParentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toCategoryResponse(category))
}

// List returns all categories of the tenant
func (h *CategoryHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "invalid tenant ID")
		return
	}

	categories, err := h.categories.ListCategories(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]CategoryResponse, 0, len(categories))
	for i := range categories {
		responses = append(responses, toCategoryResponse(&categories[i]))
	}
	h.Success(c, responses)
}

// Get returns one category
func (h *CategoryHandler) Get(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "invalid tenant ID")
		return
	}
	id, err := getIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid category ID")
		return
	}

	category, err := h.categories.GetCategory(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toCategoryResponse(category))
}

// Rename changes a category's display name
func (h *CategoryHandler) Rename(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "invalid tenant ID")
		return
	}
	id, err := getIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid category ID")
		return
	}

	var req RenameCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	category, err := h.categories.RenameCategory(c.Request.Context(), tenantID, id, req.Name)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toCategoryResponse(category))
}

// Delete removes a single childless category
func (h *CategoryHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "invalid tenant ID")
		return
	}
	id, err := getIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid category ID")
		return
	}

	if err := h.categories.DeleteCategory(c.Request.Context(), tenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// BulkDelete starts a background subtree delete and returns the job ID the
// caller can poll immediately
func (h *CategoryHandler) BulkDelete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "invalid tenant ID")
		return
	}
	id, err := getIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid category ID")
		return
	}

	jobID := uuid.New()
	go func() {
		// Detached from the request context; the job outlives the response
		ctx, cancel := context.WithTimeout(context.Background(), bulkDeleteTimeout)
		defer cancel()
		if err := h.bulk.BulkDelete(ctx, tenantID, id, jobID); err != nil {
			h.logger.Error("bulk category delete failed",
				zap.String("job_id", jobID.String()),
				zap.Int64("root_id", id),
				zap.Error(err),
			)
		}
	}()

	h.Accepted(c, BulkDeleteResponse{JobID: jobID.String()})
}

// Resync re-announces a category to all active targets
func (h *CategoryHandler) Resync(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "invalid tenant ID")
		return
	}
	id, err := getIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid category ID")
		return
	}

	if err := h.categories.ResyncCategory(c.Request.Context(), tenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Accepted(c, gin.H{"category_id": id})
}
