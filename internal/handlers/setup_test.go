package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/SAP-F-2025/lms-service/internal/cache"
	"github.com/SAP-F-2025/lms-service/internal/config"
	"github.com/SAP-F-2025/lms-service/internal/events/eventstest"
	"github.com/SAP-F-2025/lms-service/internal/mail"
	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/lms-service/internal/security"
	"github.com/SAP-F-2025/lms-service/internal/services"
	"github.com/SAP-F-2025/lms-service/internal/utils"
	"github.com/SAP-F-2025/lms-service/internal/validator"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []mail.Message
}

func (m *recordingMailer) Send(ctx context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func (m *recordingMailer) resetToken(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sent, "no mail sent")
	body := m.sent[len(m.sent)-1].Body
	idx := strings.LastIndex(body, "/reset-password/")
	require.GreaterOrEqual(t, idx, 0)
	return body[idx+len("/reset-password/"):]
}

type testServer struct {
	router  *gin.Engine
	manager services.ServiceManager
	mailer  *recordingMailer
	redis   *miniredis.Miniredis
}

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		LoginRateLimit:  100,
		ResetRateLimit:  100,
		RateLimitWindow: time.Minute,
	}
}

func newTestServer(t *testing.T, authConfig config.AuthConfig) *testServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, postgres.AutoMigrate(db))

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cacheManager := cache.NewCacheManager(client)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	mailer := &recordingMailer{}
	manager := services.NewDefaultServiceManager(services.Dependencies{
		DB:        db,
		Repo:      postgres.NewPostgreSQLRepository(postgres.RepositoryConfig{DB: db, RedisClient: client}),
		Logger:    log,
		Validator: validator.New(),
		Hasher:    security.NewPasswordHasherWithCost(bcrypt.MinCost),
		Tokens: security.NewTokenManager(security.TokenConfig{
			Issuer:     "lms-test",
			AccessTTL:  15 * time.Minute,
			RefreshTTL: time.Hour,
			SigningKey: []byte("test-signing-key"),
		}),
		Mailer:    mailer,
		Publisher: eventstest.NewPublisher(log),
		Cache:     cacheManager,
	}, "http://frontend.test", 24*time.Hour)
	require.NoError(t, manager.Initialize(context.Background()))

	handlerLogger := utils.NewSlogLogger(log)
	router := gin.New()
	SetupMiddleware(router, handlerLogger, nil)
	NewHandlerManager(manager, handlerLogger, cache.NewRateLimiter(cacheManager), authConfig).SetupRoutes(router)

	return &testServer{router: router, manager: manager, mailer: mailer, redis: mr}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// register signs up through the API and returns the access token
func (s *testServer) register(t *testing.T, email string, role models.UserRole) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"email":      email,
		"password":   "password123",
		"first_name": "Test",
		"last_name":  string(role),
		"role":       role,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[models.AuthResponse](t, w).Access
}

// admin creates a superuser and logs in through the API
func (s *testServer) admin(t *testing.T, email string) string {
	t.Helper()
	_, err := s.manager.Auth().CreateAdmin(context.Background(), email, "password123", "Ada", "Admin")
	require.NoError(t, err)

	w := s.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": email, "password": "password123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decode[models.AuthResponse](t, w).Access
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}
