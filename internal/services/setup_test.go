package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/SAP-F-2025/lms-service/internal/cache"
	"github.com/SAP-F-2025/lms-service/internal/events/eventstest"
	"github.com/SAP-F-2025/lms-service/internal/mail"
	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/policy"
	"github.com/SAP-F-2025/lms-service/internal/repositories"
	"github.com/SAP-F-2025/lms-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/lms-service/internal/security"
	"github.com/SAP-F-2025/lms-service/internal/validator"
)

const testFrontendURL = "http://frontend.test"

// recordingMailer keeps sent messages in memory
type recordingMailer struct {
	mu   sync.Mutex
	sent []mail.Message
	err  error
}

func (m *recordingMailer) Send(ctx context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *recordingMailer) last(t *testing.T) mail.Message {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sent, "no mail sent")
	return m.sent[len(m.sent)-1]
}

// resetToken extracts the raw token from the last reset link
func (m *recordingMailer) resetToken(t *testing.T) string {
	t.Helper()
	body := m.last(t).Body
	idx := strings.LastIndex(body, "/reset-password/")
	require.GreaterOrEqual(t, idx, 0, "reset link missing from %q", body)
	return body[idx+len("/reset-password/"):]
}

type testEnv struct {
	db        *gorm.DB
	repo      repositories.Repository
	redis     *miniredis.Miniredis
	publisher *eventstest.Publisher
	mailer    *recordingMailer
	manager   ServiceManager

	auth       AuthService
	catalog    CatalogService
	enrollment EnrollmentService
	dashboard  DashboardService
	export     ExportService
}

func newTestEnv(t *testing.T) *testEnv {
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
	repo := postgres.NewPostgreSQLRepository(postgres.RepositoryConfig{DB: db, RedisClient: client})

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	publisher := eventstest.NewPublisher(log)
	mailer := &recordingMailer{}

	manager := NewDefaultServiceManager(Dependencies{
		DB:        db,
		Repo:      repo,
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
		Publisher: publisher,
		Cache:     cache.NewCacheManager(client),
	}, testFrontendURL, 24*time.Hour)
	require.NoError(t, manager.Initialize(context.Background()))

	return &testEnv{
		db:         db,
		repo:       repo,
		redis:      mr,
		publisher:  publisher,
		mailer:     mailer,
		manager:    manager,
		auth:       manager.Auth(),
		catalog:    manager.Catalog(),
		enrollment: manager.Enrollment(),
		dashboard:  manager.Dashboard(),
		export:     manager.Export(),
	}
}

// register creates an account through the auth service and returns its actor
func (e *testEnv) register(t *testing.T, email string, role models.UserRole) *policy.Actor {
	t.Helper()
	resp, err := e.auth.Register(context.Background(), &RegisterRequest{
		Email:     email,
		Password:  "password123",
		FirstName: "Test",
		LastName:  string(role),
		Role:      role,
	})
	require.NoError(t, err)
	return policy.ActorFromUser(resp.User)
}

// admin creates a superuser directly in the store
func (e *testEnv) admin(t *testing.T, email string) *policy.Actor {
	t.Helper()
	u, err := e.auth.CreateAdmin(context.Background(), email, "password123", "Ada", "Admin")
	require.NoError(t, err)
	return policy.ActorFromUser(u)
}

func (e *testEnv) course(t *testing.T, actor *policy.Actor, title string, published bool) *models.Course {
	t.Helper()
	c, err := e.catalog.CreateCourse(context.Background(), actor, &CreateCourseRequest{
		Title:       title,
		Description: title + " description",
		IsPublished: published,
	})
	require.NoError(t, err)
	return c
}

func (e *testEnv) enroll(t *testing.T, actor *policy.Actor, course *models.Course) *models.Enrollment {
	t.Helper()
	en, err := e.enrollment.Create(context.Background(), actor, &CreateEnrollmentRequest{CourseID: course.ID})
	require.NoError(t, err)
	return en
}

func courseTitles(courses []*models.Course) []string {
	out := make([]string, 0, len(courses))
	for _, c := range courses {
		out = append(out, c.Title)
	}
	return out
}
