package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/services"
	"github.com/SAP-F-2025/lms-service/internal/utils"
	"github.com/SAP-F-2025/lms-service/internal/validator"
)

func TestHealthAndMetrics(t *testing.T) {
	srv := newTestServer(t, testAuthConfig())

	w := srv.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decode[map[string]string](t, w)["status"])

	w = srv.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestCommonHeaders(t *testing.T) {
	srv := newTestServer(t, testAuthConfig())

	t.Run("request id is generated", func(t *testing.T) {
		w := srv.do(t, http.MethodGet, "/health", "", nil)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
		assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
		assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	})

	t.Run("request id is echoed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("X-Request-ID", "req-123")
		w := httptest.NewRecorder()
		srv.router.ServeHTTP(w, req)
		assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))
	})

	t.Run("cors preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/auth/login", nil)
		req.Header.Set("Origin", "http://frontend.test")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		w := httptest.NewRecorder()
		srv.router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestRequireRoleMiddleware(t *testing.T) {
	am := NewJWTAuthMiddleware(nil)

	tests := []struct {
		name   string
		user   *models.User
		status int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"student", &models.User{ID: "s", Role: models.RoleStudent}, http.StatusForbidden},
		{"instructor", &models.User{ID: "i", Role: models.RoleInstructor}, http.StatusOK},
		{"admin", &models.User{ID: "a", Role: models.RoleAdmin}, http.StatusOK},
		{"superuser student", &models.User{ID: "su", Role: models.RoleStudent, IsSuperuser: true}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/", func(c *gin.Context) {
				if tt.user != nil {
					setUser(c, tt.user)
				}
				c.Next()
			}, am.RequireRoleMiddleware(models.RoleInstructor), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestHandleServiceError(t *testing.T) {
	h := NewBaseHandler(utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"conflict before validation", services.NewConflictError("already enrolled in this course"), http.StatusConflict, "conflict"},
		{"field errors", fmt.Errorf("%w: %w", services.ErrValidation, validator.ValidationErrors{{Field: "role", Message: "cannot register as admin"}}), http.StatusBadRequest, "validation_error"},
		{"business rule", services.NewValidationError("token", "invalid token"), http.StatusBadRequest, "validation_error"},
		{"authentication", services.NewAuthenticationError("invalid credentials"), http.StatusUnauthorized, "authentication_failed"},
		{"permission", services.NewPermissionError("u", "course", "update", "not owner"), http.StatusForbidden, "permission_denied"},
		{"not found", services.NewNotFoundError("course", 1), http.StatusNotFound, "not_found"},
		{"email", fmt.Errorf("%w: smtp down", services.ErrEmailDelivery), http.StatusBadGateway, "email_delivery_failed"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)

			h.handleServiceError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			resp := decode[models.ErrorResponse](t, w)
			assert.Equal(t, tt.code, resp.Code)
			assert.Equal(t, "/x", resp.Path)
			assert.NotContains(t, w.Body.String(), "boom")
		})
	}
}
