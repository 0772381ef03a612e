package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/lms-service/internal/config"
	"github.com/SAP-F-2025/lms-service/internal/models"
)

func TestRegisterEndpoint(t *testing.T) {
	srv := newTestServer(t, testAuthConfig())

	t.Run("returns token pair and user", func(t *testing.T) {
		w := srv.do(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
			"email":    "stu@example.com",
			"password": "password123",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		resp := decode[models.AuthResponse](t, w)
		assert.NotEmpty(t, resp.Access)
		assert.NotEmpty(t, resp.Refresh)
		require.NotNil(t, resp.User)
		assert.Equal(t, models.RoleStudent, resp.User.Role)
		assert.NotContains(t, w.Body.String(), "password")
	})

	tests := []struct {
		name  string
		body  gin.H
		field string
	}{
		{"admin role", gin.H{"email": "a@example.com", "password": "password123", "role": "admin"}, "role"},
		{"duplicate email", gin.H{"email": "stu@example.com", "password": "password123"}, "email"},
		{"short password", gin.H{"email": "b@example.com", "password": "short"}, "password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := srv.do(t, http.MethodPost, "/api/v1/auth/register", "", tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

			resp := decode[models.ErrorResponse](t, w)
			require.NotEmpty(t, resp.ValidationErrors)
			assert.Equal(t, tt.field, resp.ValidationErrors[0].Field)
		})
	}

	t.Run("malformed json", func(t *testing.T) {
		w := srv.do(t, http.MethodPost, "/api/v1/auth/register", "", "not an object")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestLoginEndpoint(t *testing.T) {
	srv := newTestServer(t, testAuthConfig())
	srv.register(t, "stu@example.com", models.RoleStudent)

	tests := []struct {
		name     string
		email    string
		password string
		status   int
	}{
		{"valid", "stu@example.com", "password123", http.StatusOK},
		{"wrong password", "stu@example.com", "nope-nope", http.StatusUnauthorized},
		{"unknown email", "ghost@example.com", "password123", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := srv.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": tt.email, "password": tt.password})
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			if tt.status == http.StatusUnauthorized {
				assert.Equal(t, "invalid credentials", decode[models.ErrorResponse](t, w).Message)
			}
		})
	}
}

func TestLoginRateLimit(t *testing.T) {
	cfg := testAuthConfig()
	cfg.LoginRateLimit = 2
	srv := newTestServer(t, cfg)

	body := gin.H{"email": "ghost@example.com", "password": "password123"}
	for i := 0; i < 2; i++ {
		w := srv.do(t, http.MethodPost, "/api/v1/auth/login", "", body)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}

	w := srv.do(t, http.MethodPost, "/api/v1/auth/login", "", body)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Equal(t, "rate_limited", decode[models.ErrorResponse](t, w).Code)

	// other routes keep their own budget
	w = srv.do(t, http.MethodPost, "/api/v1/auth/forgot-password", "", gin.H{"email": "ghost@example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginWithoutRedisIsNotLimited(t *testing.T) {
	cfg := config.AuthConfig{LoginRateLimit: 1, ResetRateLimit: 1, RateLimitWindow: time.Minute}
	srv := newTestServer(t, cfg)
	srv.redis.Close()

	body := gin.H{"email": "ghost@example.com", "password": "password123"}
	for i := 0; i < 3; i++ {
		w := srv.do(t, http.MethodPost, "/api/v1/auth/login", "", body)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}
}

func TestProfileEndpoints(t *testing.T) {
	srv := newTestServer(t, testAuthConfig())
	token := srv.register(t, "stu@example.com", models.RoleStudent)

	t.Run("requires token", func(t *testing.T) {
		w := srv.do(t, http.MethodGet, "/api/v1/auth/profile", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		w = srv.do(t, http.MethodGet, "/api/v1/auth/profile", "garbage", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("get", func(t *testing.T) {
		w := srv.do(t, http.MethodGet, "/api/v1/auth/profile", token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "stu@example.com", decode[models.User](t, w).Email)
	})

	t.Run("patch keeps role", func(t *testing.T) {
		w := srv.do(t, http.MethodPatch, "/api/v1/auth/profile", token, gin.H{
			"first_name": "Grace",
			"theme":      "dark",
			"role":       "admin",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		user := decode[models.User](t, w)
		assert.Equal(t, "Grace", user.FirstName)
		assert.Equal(t, models.ThemeDark, user.Theme)
		assert.Equal(t, models.RoleStudent, user.Role)
	})

	t.Run("put validates", func(t *testing.T) {
		w := srv.do(t, http.MethodPut, "/api/v1/auth/profile", token, gin.H{"theme": "neon"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestPasswordResetEndpoints(t *testing.T) {
	srv := newTestServer(t, testAuthConfig())
	srv.register(t, "stu@example.com", models.RoleStudent)

	w := srv.do(t, http.MethodPost, "/api/v1/auth/forgot-password", "", gin.H{"email": "nobody@example.com"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "email", decode[models.ErrorResponse](t, w).ValidationErrors[0].Field)

	w = srv.do(t, http.MethodPost, "/api/v1/auth/forgot-password", "", gin.H{"email": "stu@example.com"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Reset link sent to email", decode[models.SuccessResponse](t, w).Message)

	token := srv.mailer.resetToken(t)
	reset := gin.H{"token": token, "password": "brand-new-pass"}

	w = srv.do(t, http.MethodPost, "/api/v1/auth/reset-password", "", reset)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Password reset successfully", decode[models.SuccessResponse](t, w).Message)

	w = srv.do(t, http.MethodPost, "/api/v1/auth/reset-password", "", reset)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = srv.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "stu@example.com", "password": "password123"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = srv.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "stu@example.com", "password": "brand-new-pass"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRefreshAndLogoutEndpoints(t *testing.T) {
	srv := newTestServer(t, testAuthConfig())

	w := srv.do(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{"email": "stu@example.com", "password": "password123"})
	require.Equal(t, http.StatusCreated, w.Code)
	refresh := decode[models.AuthResponse](t, w).Refresh

	w = srv.do(t, http.MethodPost, "/api/v1/auth/token/refresh", "", gin.H{"refresh": refresh})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	pair := decode[models.TokenResponse](t, w)
	assert.NotEmpty(t, pair.Access)
	assert.Positive(t, pair.ExpiresIn)

	// rotated out
	w = srv.do(t, http.MethodPost, "/api/v1/auth/token/refresh", "", gin.H{"refresh": refresh})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = srv.do(t, http.MethodPost, "/api/v1/auth/logout", "", gin.H{"refresh": pair.Refresh})
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = srv.do(t, http.MethodPost, "/api/v1/auth/token/refresh", "", gin.H{"refresh": pair.Refresh})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
