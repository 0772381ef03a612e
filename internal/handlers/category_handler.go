package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/lms-service/internal/repositories"
	"github.com/SAP-F-2025/lms-service/internal/services"
	"github.com/SAP-F-2025/lms-service/internal/utils"
)

type CategoryHandler struct {
	BaseHandler
	catalogService services.CatalogService
}

func NewCategoryHandler(catalogService services.CatalogService, logger utils.Logger) *CategoryHandler {
	return &CategoryHandler{
		BaseHandler:    NewBaseHandler(logger),
		catalogService: catalogService,
	}
}

// ListCategories lists categories
// @Summary List categories
// @Tags categories
// @Produce json
// @Param search query string false "Name search"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} services.CategoryListResponse
// @Router /lms/categories [get]
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	filters := repositories.CategoryFilters{
		Search: c.Query("search"),
		Limit:  h.parseIntQuery(c, "limit", 0),
		Offset: h.parseIntQuery(c, "offset", 0),
	}

	resp, err := h.catalogService.ListCategories(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetCategory retrieves a category by ID
// @Summary Get category
// @Tags categories
// @Produce json
// @Param id path int true "Category ID"
// @Success 200 {object} models.Category
// @Failure 404 {object} ErrorResponse
// @Router /lms/categories/{id} [get]
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	category, err := h.catalogService.GetCategory(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, category)
}

// CreateCategory creates a category
// @Summary Create category
// @Description Admins and instructors only
// @Tags categories
// @Accept json
// @Produce json
// @Param category body services.CategoryRequest true "Category data"
// @Success 201 {object} models.Category
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /lms/categories [post]
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req services.CategoryRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Creating category", "name", req.Name)

	category, err := h.catalogService.CreateCategory(c.Request.Context(), h.actor(c), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, category)
}

// UpdateCategory replaces a category's name and description
// @Summary Update category
// @Tags categories
// @Accept json
// @Produce json
// @Param id path int true "Category ID"
// @Param category body services.CategoryRequest true "Category data"
// @Success 200 {object} models.Category
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /lms/categories/{id} [put]
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.CategoryRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Updating category", "category_id", id)

	category, err := h.catalogService.UpdateCategory(c.Request.Context(), h.actor(c), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, category)
}

// DeleteCategory deletes a category; its courses keep existing uncategorized
// @Summary Delete category
// @Tags categories
// @Param id path int true "Category ID"
// @Success 204
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /lms/categories/{id} [delete]
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	h.LogRequest(c, "Deleting category", "category_id", id)

	if err := h.catalogService.DeleteCategory(c.Request.Context(), h.actor(c), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
