package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/lms-service/internal/cache"
	"github.com/SAP-F-2025/lms-service/internal/config"
	"github.com/SAP-F-2025/lms-service/internal/events"
	"github.com/SAP-F-2025/lms-service/internal/mail"
	"github.com/SAP-F-2025/lms-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/lms-service/internal/security"
	"github.com/SAP-F-2025/lms-service/internal/services"
	"github.com/SAP-F-2025/lms-service/internal/validator"
	"github.com/SAP-F-2025/lms-service/pkg"
)

// app holds the long lived resources shared by the commands
type app struct {
	cfg            *config.Config
	logger         *slog.Logger
	db             *gorm.DB
	redisClient    *redis.Client
	cacheManager   *cache.CacheManager
	serviceManager services.ServiceManager
}

func newLogger(cfg *config.Config) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
}

// newApp connects to the database and redis and initializes every service
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger := newLogger(cfg)

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		return nil, err
	}

	// Redis is optional; caching and rate limiting degrade to no-ops
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = pkg.NewRedisClient(cfg)
		if err != nil {
			logger.Warn("Failed to initialize Redis, continuing without it", "error", err)
			redisClient = nil
		}
	}

	repoManager := postgres.NewRepositoryManager(postgres.RepositoryConfig{
		DB:          db,
		RedisClient: redisClient,
	})
	if err := repoManager.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize repositories: %w", err)
	}

	publisher, err := events.NewPublisher(cfg.KafkaBrokers, cfg.EventsTopicBase, logger)
	if err != nil {
		return nil, err
	}

	cacheManager := cache.NewCacheManager(redisClient)
	serviceManager := services.NewDefaultServiceManager(services.Dependencies{
		DB:        db,
		Repo:      repoManager.GetRepository(),
		Logger:    logger,
		Validator: validator.New(),
		Hasher:    security.NewPasswordHasher(),
		Tokens: security.NewTokenManager(security.TokenConfig{
			Issuer:     cfg.Auth.Issuer,
			AccessTTL:  cfg.Auth.AccessTTL,
			RefreshTTL: cfg.Auth.RefreshTTL,
			SigningKey: []byte(cfg.Auth.JWTSecret),
		}),
		Mailer:    mail.NewSender(cfg.Mail, logger),
		Publisher: publisher,
		Cache:     cacheManager,
	}, cfg.FrontendURL, cfg.Auth.ResetTokenTTL)
	if err := serviceManager.Initialize(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	return &app{
		cfg:            cfg,
		logger:         logger,
		db:             db,
		redisClient:    redisClient,
		cacheManager:   cacheManager,
		serviceManager: serviceManager,
	}, nil
}

// close releases the services, then the database and redis connections
func (a *app) close(ctx context.Context) {
	if err := a.serviceManager.Shutdown(ctx); err != nil {
		a.logger.Error("Failed to shutdown services", "error", err)
	}
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	if a.redisClient != nil {
		_ = a.redisClient.Close()
	}
}
