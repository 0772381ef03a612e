package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/SAP-F-2025/lms-service/internal/cache"
	"github.com/SAP-F-2025/lms-service/internal/handlers"
	"github.com/SAP-F-2025/lms-service/internal/metrics"
	"github.com/SAP-F-2025/lms-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/lms-service/internal/utils"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Run: func(cmd *cobra.Command, args []string) {
		autoMigrate, _ := cmd.Flags().GetBool("migrate")
		if err := serve(autoMigrate); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	},
}

func serve(autoMigrate bool) error {
	a, err := newApp(context.Background())
	if err != nil {
		return err
	}
	cfg := a.cfg
	logger := utils.NewSlogLogger(a.logger)

	if autoMigrate {
		if err := postgres.AutoMigrate(a.db); err != nil {
			return err
		}
		logger.Info("Database schema migrated")
	}

	metrics.MustRegister("lms-service")

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handlers.SetupMiddleware(router, logger, cfg.CORSOrigins)

	handlerManager := handlers.NewHandlerManager(a.serviceManager, logger, cache.NewRateLimiter(a.cacheManager), cfg.Auth)
	handlerManager.SetupRoutes(router)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting server", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}
	a.close(ctx)

	logger.Info("Server exited")
	return nil
}

func init() {
	serveCmd.Flags().Bool("migrate", false, "Run schema migrations before serving")
	rootCmd.AddCommand(serveCmd)
}
