package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/lms-service/internal/cache"
	"github.com/SAP-F-2025/lms-service/internal/events"
	"github.com/SAP-F-2025/lms-service/internal/mail"
	"github.com/SAP-F-2025/lms-service/internal/repositories"
	"github.com/SAP-F-2025/lms-service/internal/security"
	"github.com/SAP-F-2025/lms-service/internal/validator"
)

// Dependencies are the collaborators shared by all services
type Dependencies struct {
	DB        *gorm.DB
	Repo      repositories.Repository
	Logger    *slog.Logger
	Validator *validator.Validator

	Hasher    *security.PasswordHasher
	Tokens    *security.TokenManager
	Mailer    mail.Sender
	Publisher events.Publisher
	Cache     *cache.CacheManager
}

// ServiceManagerConfig holds configuration for the service manager
type ServiceManagerConfig struct {
	FrontendURL   string
	ResetTokenTTL time.Duration

	// Service-specific configurations
	Auth       ServiceConfig
	Catalog    ServiceConfig
	Enrollment ServiceConfig
	Dashboard  ServiceConfig
	Export     ServiceConfig
}

type ServiceConfig struct {
	Enabled bool
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	deps   Dependencies
	logger *slog.Logger
	config ServiceManagerConfig

	// Service instances
	authService       AuthService
	catalogService    CatalogService
	enrollmentService EnrollmentService
	dashboardService  DashboardService
	exportService     ExportService

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies
func NewServiceManager(deps Dependencies, config ServiceManagerConfig) ServiceManager {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Validator == nil {
		deps.Validator = validator.New()
	}
	if deps.Hasher == nil {
		deps.Hasher = security.NewPasswordHasher()
	}
	if deps.Mailer == nil {
		deps.Mailer = mail.NewLogSender(deps.Logger)
	}
	if deps.Cache == nil {
		deps.Cache = cache.NewCacheManager(nil)
	}
	return &serviceManager{
		deps:   deps,
		logger: deps.Logger,
		config: config,
	}
}

// NewDefaultServiceManager enables every service
func NewDefaultServiceManager(deps Dependencies, frontendURL string, resetTokenTTL time.Duration) ServiceManager {
	config := ServiceManagerConfig{
		FrontendURL:   frontendURL,
		ResetTokenTTL: resetTokenTTL,
		Auth:          ServiceConfig{Enabled: true},
		Catalog:       ServiceConfig{Enabled: true},
		Enrollment:    ServiceConfig{Enabled: true},
		Dashboard:     ServiceConfig{Enabled: true},
		Export:        ServiceConfig{Enabled: true},
	}
	return NewServiceManager(deps, config)
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.logger.Info("Initializing service manager")

	if err := sm.initializeServices(); err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully")

	return nil
}

func (sm *serviceManager) initializeServices() error {
	d := sm.deps
	if d.DB == nil || d.Repo == nil {
		return fmt.Errorf("database and repository are required")
	}

	if sm.config.Auth.Enabled {
		if d.Tokens == nil {
			return fmt.Errorf("auth service requires a token manager")
		}
		sm.authService = NewAuthService(d.Repo, d.DB, d.Logger, d.Validator, AuthServiceConfig{
			Hasher:        d.Hasher,
			Tokens:        d.Tokens,
			Mailer:        d.Mailer,
			Publisher:     d.Publisher,
			FrontendURL:   sm.config.FrontendURL,
			ResetTokenTTL: sm.config.ResetTokenTTL,
		})
		sm.logger.Info("Auth service initialized")
	}

	if sm.config.Catalog.Enabled {
		sm.catalogService = NewCatalogService(d.Repo, d.DB, d.Logger, d.Validator, d.Publisher)
		sm.logger.Info("Catalog service initialized")
	}

	if sm.config.Enrollment.Enabled {
		sm.enrollmentService = NewEnrollmentService(d.Repo, d.DB, d.Logger, d.Validator, d.Publisher)
		sm.logger.Info("Enrollment service initialized")
	}

	if sm.config.Dashboard.Enabled {
		sm.dashboardService = NewDashboardService(d.Repo, d.DB, d.Logger, d.Cache)
		sm.logger.Info("Dashboard service initialized")
	}

	if sm.config.Export.Enabled {
		sm.exportService = NewExportService(d.Repo, d.Logger)
		sm.logger.Info("Export service initialized")
	}

	return nil
}

// Service getters
func (sm *serviceManager) Auth() AuthService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	if sm.authService != nil {
		return sm.authService
	}

	panic("auth service not enabled or not initialized")
}

func (sm *serviceManager) Catalog() CatalogService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	if sm.catalogService != nil {
		return sm.catalogService
	}

	panic("catalog service not enabled or not initialized")
}

func (sm *serviceManager) Enrollment() EnrollmentService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	if sm.enrollmentService != nil {
		return sm.enrollmentService
	}

	panic("enrollment service not enabled or not initialized")
}

func (sm *serviceManager) Dashboard() DashboardService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	if sm.dashboardService != nil {
		return sm.dashboardService
	}

	panic("dashboard service not enabled or not initialized")
}

func (sm *serviceManager) Export() ExportService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	if sm.exportService != nil {
		return sm.exportService
	}

	panic("export service not enabled or not initialized")
}

// Health and lifecycle
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}
	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if err := sm.deps.Repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}
	return nil
}

// Shutdown closes the event publisher. The repository is owned by the
// caller and closed separately.
func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("Shutting down service manager")

	if sm.deps.Publisher != nil {
		if err := sm.deps.Publisher.Close(); err != nil {
			sm.logger.Error("Failed to close event publisher", "error", err)
		}
	}

	sm.shutdown = true
	sm.logger.Info("Service manager shut down completed")

	return nil
}
