package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/lms-service/internal/repositories"
	"github.com/SAP-F-2025/lms-service/internal/services"
	"github.com/SAP-F-2025/lms-service/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type EnrollmentHandler struct {
	BaseHandler
	enrollmentService services.EnrollmentService
	exportService     services.ExportService
}

func NewEnrollmentHandler(
	enrollmentService services.EnrollmentService,
	exportService services.ExportService,
	logger utils.Logger,
) *EnrollmentHandler {
	return &EnrollmentHandler{
		BaseHandler:       NewBaseHandler(logger),
		enrollmentService: enrollmentService,
		exportService:     exportService,
	}
}

// ListEnrollments lists the enrollments visible to the caller
// @Summary List enrollments
// @Description Students see their own, instructors those on their courses, admins all
// @Tags enrollments
// @Produce json
// @Param course query int false "Course ID"
// @Param completed query bool false "Completion filter"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} services.EnrollmentListResponse
// @Router /lms/enrollments [get]
func (h *EnrollmentHandler) ListEnrollments(c *gin.Context) {
	resp, err := h.enrollmentService.List(c.Request.Context(), h.actor(c), h.parseEnrollmentFilters(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// MyEnrollments lists the caller's own enrollments as a student
// @Summary My enrollments
// @Tags enrollments
// @Produce json
// @Success 200 {object} services.EnrollmentListResponse
// @Router /lms/enrollments/my_enrollments [get]
func (h *EnrollmentHandler) MyEnrollments(c *gin.Context) {
	resp, err := h.enrollmentService.MyEnrollments(c.Request.Context(), h.actor(c), h.parseEnrollmentFilters(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetEnrollment retrieves an enrollment by ID
// @Summary Get enrollment
// @Tags enrollments
// @Produce json
// @Param id path int true "Enrollment ID"
// @Success 200 {object} models.Enrollment
// @Failure 404 {object} ErrorResponse
// @Router /lms/enrollments/{id} [get]
func (h *EnrollmentHandler) GetEnrollment(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	enrollment, err := h.enrollmentService.Get(c.Request.Context(), h.actor(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, enrollment)
}

// CreateEnrollment enrolls the caller in a course
// @Summary Enroll
// @Tags enrollments
// @Accept json
// @Produce json
// @Param enrollment body services.CreateEnrollmentRequest true "Course to enroll in"
// @Success 201 {object} models.Enrollment
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /lms/enrollments [post]
func (h *EnrollmentHandler) CreateEnrollment(c *gin.Context) {
	var req services.CreateEnrollmentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Creating enrollment", "course_id", req.CourseID)

	enrollment, err := h.enrollmentService.Create(c.Request.Context(), h.actor(c), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, enrollment)
}

// UpdateEnrollment records progress or completion
// @Summary Update enrollment
// @Tags enrollments
// @Accept json
// @Produce json
// @Param id path int true "Enrollment ID"
// @Param enrollment body services.UpdateEnrollmentRequest true "Progress fields"
// @Success 200 {object} models.Enrollment
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /lms/enrollments/{id} [patch]
func (h *EnrollmentHandler) UpdateEnrollment(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateEnrollmentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Updating enrollment", "enrollment_id", id)

	enrollment, err := h.enrollmentService.UpdateProgress(c.Request.Context(), h.actor(c), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, enrollment)
}

// DeleteEnrollment removes an enrollment
// @Summary Unenroll
// @Tags enrollments
// @Param id path int true "Enrollment ID"
// @Success 204
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /lms/enrollments/{id} [delete]
func (h *EnrollmentHandler) DeleteEnrollment(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	h.LogRequest(c, "Deleting enrollment", "enrollment_id", id)

	if err := h.enrollmentService.Delete(c.Request.Context(), h.actor(c), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ExportEnrollments downloads the visible enrollments as a spreadsheet
// @Summary Export enrollments
// @Tags enrollments
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file
// @Failure 403 {object} ErrorResponse
// @Router /lms/enrollments/export [get]
func (h *EnrollmentHandler) ExportEnrollments(c *gin.Context) {
	h.LogRequest(c, "Exporting enrollments")

	// buffered so a failure can still be reported as JSON
	var buf bytes.Buffer
	if err := h.exportService.ExportEnrollments(c.Request.Context(), h.actor(c), &buf); err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("enrollments-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *EnrollmentHandler) parseEnrollmentFilters(c *gin.Context) repositories.EnrollmentFilters {
	filters := repositories.EnrollmentFilters{
		CourseID:  h.parseUintQueryPtr(c, "course"),
		Completed: h.parseBoolQueryPtr(c, "completed"),
		Limit:     h.parseIntQuery(c, "limit", 0),
		Offset:    h.parseIntQuery(c, "offset", 0),
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
