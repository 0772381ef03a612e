package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/policy"
	"github.com/SAP-F-2025/lms-service/internal/services"
	"github.com/SAP-F-2025/lms-service/internal/utils"
)

type ErrorResponse = models.ErrorResponse
type SuccessResponse = models.SuccessResponse

// BaseHandler carries what every handler needs: a logger, request parsing
// and the mapping from service errors to HTTP responses
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	if userID := c.GetString("user_id"); userID != "" {
		args = append(args, "user_id", userID)
	}
	utils.FromContext(c, h.logger).Info(msg, args...)
}

func (h *BaseHandler) LogError(c *gin.Context, msg string, err error, args ...any) {
	args = append(args, "error", err)
	utils.FromContext(c, h.logger).Error(msg, args...)
}

// actor returns the authenticated caller, or nil for anonymous requests
func (h *BaseHandler) actor(c *gin.Context) *policy.Actor {
	user, err := GetUserFromContext(c)
	if err != nil {
		return nil
	}
	return policy.ActorFromUser(user)
}

func (h *BaseHandler) bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "invalid_payload", "Invalid request payload", err.Error())
		return false
	}
	return true
}

func (h *BaseHandler) parseIDParam(c *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 32)
	if err != nil || id == 0 {
		h.errorResponse(c, http.StatusBadRequest, "invalid_id", "Invalid "+param, c.Param(param))
		return 0, false
	}
	return uint(id), true
}

func (h *BaseHandler) parseIntQuery(c *gin.Context, param string, defaultValue int) int {
	valueStr := c.Query(param)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func (h *BaseHandler) parseUintQueryPtr(c *gin.Context, param string) *uint {
	value, err := strconv.ParseUint(c.Query(param), 10, 32)
	if err != nil {
		return nil
	}
	v := uint(value)
	return &v
}

func (h *BaseHandler) parseBoolQueryPtr(c *gin.Context, param string) *bool {
	value, err := strconv.ParseBool(c.Query(param))
	if err != nil {
		return nil
	}
	return &value
}

func (h *BaseHandler) errorResponse(c *gin.Context, status int, code, message string, details interface{}) {
	c.JSON(status, ErrorResponse{
		Error:     http.StatusText(status),
		Message:   message,
		Code:      code,
		Details:   details,
		Timestamp: time.Now().UTC(),
		Path:      c.Request.URL.Path,
	})
}

func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	// Conflict first: it also matches the validation kind
	var conflictError *services.ConflictError
	if errors.As(err, &conflictError) {
		h.errorResponse(c, http.StatusConflict, "conflict", conflictError.Message, nil)
		return
	}

	var fieldErrors services.ValidationErrors
	if errors.As(err, &fieldErrors) {
		resp := ErrorResponse{
			Error:     http.StatusText(http.StatusBadRequest),
			Message:   "Validation failed",
			Code:      "validation_error",
			Timestamp: time.Now().UTC(),
			Path:      c.Request.URL.Path,
		}
		for _, fe := range fieldErrors {
			item := models.ValidationErrorResponse{Field: fe.Field, Message: fe.Message, Code: fe.Rule}
			if fe.Value != nil {
				item.Value = fmt.Sprint(fe.Value)
			}
			resp.ValidationErrors = append(resp.ValidationErrors, item)
		}
		c.JSON(http.StatusBadRequest, resp)
		return
	}

	var validationError *services.ValidationError
	if errors.As(err, &validationError) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:     http.StatusText(http.StatusBadRequest),
			Message:   validationError.Message,
			Code:      "validation_error",
			Timestamp: time.Now().UTC(),
			Path:      c.Request.URL.Path,
			ValidationErrors: []models.ValidationErrorResponse{
				{Field: validationError.Field, Message: validationError.Message, Code: "invalid"},
			},
		})
		return
	}

	var permissionError *services.PermissionError
	if errors.As(err, &permissionError) {
		h.errorResponse(c, http.StatusForbidden, "permission_denied", "Access denied", map[string]interface{}{
			"resource": permissionError.Resource,
			"action":   permissionError.Action,
			"reason":   permissionError.Reason,
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrAuthentication):
		h.errorResponse(c, http.StatusUnauthorized, "authentication_failed", err.Error(), nil)
	case errors.Is(err, services.ErrNotFound):
		h.errorResponse(c, http.StatusNotFound, "not_found", err.Error(), nil)
	case errors.Is(err, services.ErrValidation):
		h.errorResponse(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, services.ErrEmailDelivery):
		h.LogError(c, "Email delivery failed", err)
		h.errorResponse(c, http.StatusBadGateway, "email_delivery_failed", "Could not send email", nil)
	default:
		h.LogError(c, "Unhandled service error", err)
		h.errorResponse(c, http.StatusInternalServerError, "internal_error", "Internal server error", nil)
	}
}
