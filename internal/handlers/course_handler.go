package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/lms-service/internal/repositories"
	"github.com/SAP-F-2025/lms-service/internal/services"
	"github.com/SAP-F-2025/lms-service/internal/utils"
	"github.com/SAP-F-2025/lms-service/internal/validator"
)

type CourseHandler struct {
	BaseHandler
	catalogService services.CatalogService
}

func NewCourseHandler(catalogService services.CatalogService, logger utils.Logger) *CourseHandler {
	return &CourseHandler{
		BaseHandler:    NewBaseHandler(logger),
		catalogService: catalogService,
	}
}

// ListCourses lists the courses visible to the caller
// @Summary List courses
// @Description Admins see every course, instructors their own plus published ones, students published ones
// @Tags courses
// @Produce json
// @Param search query string false "Search title, description or category name"
// @Param category query int false "Category ID"
// @Param is_published query bool false "Published filter"
// @Param ordering query string false "created_at, -created_at, title or -title"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} services.CourseListResponse
// @Failure 401 {object} ErrorResponse
// @Router /lms/courses [get]
func (h *CourseHandler) ListCourses(c *gin.Context) {
	resp, err := h.catalogService.ListCourses(c.Request.Context(), h.actor(c), h.parseCourseFilters(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// MyCourses lists owned courses for instructors and enrolled courses for students
// @Summary My courses
// @Tags courses
// @Produce json
// @Success 200 {object} services.CourseListResponse
// @Router /lms/courses/my_courses [get]
func (h *CourseHandler) MyCourses(c *gin.Context) {
	resp, err := h.catalogService.MyCourses(c.Request.Context(), h.actor(c), h.parseCourseFilters(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetCourse retrieves a course by ID
// @Summary Get course
// @Tags courses
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} models.Course
// @Failure 404 {object} ErrorResponse
// @Router /lms/courses/{id} [get]
func (h *CourseHandler) GetCourse(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	course, err := h.catalogService.GetCourse(c.Request.Context(), h.actor(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, course)
}

// CreateCourse creates a course owned by the caller
// @Summary Create course
// @Tags courses
// @Accept json
// @Produce json
// @Param course body services.CreateCourseRequest true "Course data"
// @Success 201 {object} models.Course
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /lms/courses [post]
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	var req services.CreateCourseRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Creating course", "title", req.Title)

	course, err := h.catalogService.CreateCourse(c.Request.Context(), h.actor(c), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, course)
}

// UpdateCourse updates the given course fields
// @Summary Update course
// @Description Owner or admin only; the instructor never changes
// @Tags courses
// @Accept json
// @Produce json
// @Param id path int true "Course ID"
// @Param course body services.UpdateCourseRequest true "Fields to change"
// @Success 200 {object} models.Course
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /lms/courses/{id} [patch]
func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateCourseRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Updating course", "course_id", id)

	course, err := h.catalogService.UpdateCourse(c.Request.Context(), h.actor(c), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, course)
}

// PublishCourse sets the published flag; an empty body publishes
// @Summary Publish course
// @Tags courses
// @Accept json
// @Produce json
// @Param id path int true "Course ID"
// @Param request body validator.PublishRequest false "Published flag"
// @Success 200 {object} models.Course
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /lms/courses/{id}/publish [post]
func (h *CourseHandler) PublishCourse(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req validator.PublishRequest
	if c.Request.ContentLength > 0 && !h.bindJSON(c, &req) {
		return
	}
	published := true
	if req.IsPublished != nil {
		published = *req.IsPublished
	}

	h.LogRequest(c, "Publishing course", "course_id", id, "published", published)

	course, err := h.catalogService.PublishCourse(c.Request.Context(), h.actor(c), id, published)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, course)
}

// DeleteCourse deletes a course and its enrollments
// @Summary Delete course
// @Tags courses
// @Param id path int true "Course ID"
// @Success 204
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /lms/courses/{id} [delete]
func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	h.LogRequest(c, "Deleting course", "course_id", id)

	if err := h.catalogService.DeleteCourse(c.Request.Context(), h.actor(c), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *CourseHandler) parseCourseFilters(c *gin.Context) repositories.CourseFilters {
	filters := repositories.CourseFilters{
		Search:     c.Query("search"),
		CategoryID: h.parseUintQueryPtr(c, "category"),
		Published:  h.parseBoolQueryPtr(c, "is_published"),
		Limit:      h.parseIntQuery(c, "limit", 0),
		Offset:     h.parseIntQuery(c, "offset", 0),
	}

	if ordering := c.Query("ordering"); ordering != "" {
		filters.SortOrder = "asc"
		if ordering[0] == '-' {
			filters.SortOrder = "desc"
			ordering = ordering[1:]
		}
		filters.SortBy = ordering
	}

	return filters
}
