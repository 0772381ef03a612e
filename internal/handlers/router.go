package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/SAP-F-2025/lms-service/internal/cache"
	"github.com/SAP-F-2025/lms-service/internal/config"
	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/services"
	"github.com/SAP-F-2025/lms-service/internal/utils"
)

const serviceName = "lms-service"

type HandlerManager struct {
	authHandler       *AuthHandler
	categoryHandler   *CategoryHandler
	courseHandler     *CourseHandler
	enrollmentHandler *EnrollmentHandler
	dashboardHandler  *DashboardHandler
	authMiddleware    *JWTAuthMiddleware

	serviceManager services.ServiceManager
	limiter        *cache.RateLimiter
	authConfig     config.AuthConfig
	logger         utils.Logger
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	logger utils.Logger,
	limiter *cache.RateLimiter,
	authConfig config.AuthConfig,
) *HandlerManager {
	return &HandlerManager{
		authHandler:       NewAuthHandler(serviceManager.Auth(), logger),
		categoryHandler:   NewCategoryHandler(serviceManager.Catalog(), logger),
		courseHandler:     NewCourseHandler(serviceManager.Catalog(), logger),
		enrollmentHandler: NewEnrollmentHandler(serviceManager.Enrollment(), serviceManager.Export(), logger),
		dashboardHandler:  NewDashboardHandler(serviceManager.Dashboard(), logger),
		authMiddleware:    NewJWTAuthMiddleware(serviceManager.Auth()),
		serviceManager:    serviceManager,
		limiter:           limiter,
		authConfig:        authConfig,
		logger:            logger,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	requireAuth := hm.authMiddleware.AuthMiddleware()
	catalogManagers := hm.authMiddleware.RequireRoleMiddleware(models.RoleInstructor, models.RoleAdmin)
	window := hm.authConfig.RateLimitWindow

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", hm.authHandler.Register)
			auth.POST("/login", RateLimitMiddleware(hm.limiter, "login", hm.authConfig.LoginRateLimit, window, hm.logger), hm.authHandler.Login)
			auth.POST("/forgot-password", RateLimitMiddleware(hm.limiter, "forgot_password", hm.authConfig.ResetRateLimit, window, hm.logger), hm.authHandler.ForgotPassword)
			auth.POST("/reset-password", hm.authHandler.ResetPassword)
			auth.POST("/token/refresh", hm.authHandler.RefreshToken)
			auth.POST("/logout", hm.authHandler.Logout)

			auth.GET("/profile", requireAuth, hm.authHandler.GetProfile)
			auth.PUT("/profile", requireAuth, hm.authHandler.UpdateProfile)
			auth.PATCH("/profile", requireAuth, hm.authHandler.UpdateProfile)
		}

		lms := v1.Group("/lms")
		lms.Use(requireAuth)
		{
			categories := lms.Group("/categories")
			{
				categories.GET("", hm.categoryHandler.ListCategories)
				categories.GET("/:id", hm.categoryHandler.GetCategory)
				categories.POST("", catalogManagers, hm.categoryHandler.CreateCategory)
				categories.PUT("/:id", catalogManagers, hm.categoryHandler.UpdateCategory)
				categories.PATCH("/:id", catalogManagers, hm.categoryHandler.UpdateCategory)
				categories.DELETE("/:id", catalogManagers, hm.categoryHandler.DeleteCategory)
			}

			courses := lms.Group("/courses")
			{
				courses.GET("", hm.courseHandler.ListCourses)
				courses.GET("/my_courses", hm.courseHandler.MyCourses)
				courses.GET("/:id", hm.courseHandler.GetCourse)
				courses.POST("", catalogManagers, hm.courseHandler.CreateCourse)
				courses.PUT("/:id", catalogManagers, hm.courseHandler.UpdateCourse)
				courses.PATCH("/:id", catalogManagers, hm.courseHandler.UpdateCourse)
				courses.POST("/:id/publish", catalogManagers, hm.courseHandler.PublishCourse)
				courses.DELETE("/:id", catalogManagers, hm.courseHandler.DeleteCourse)
			}

			enrollments := lms.Group("/enrollments")
			{
				enrollments.GET("", hm.enrollmentHandler.ListEnrollments)
				enrollments.GET("/my_enrollments", hm.enrollmentHandler.MyEnrollments)
				enrollments.GET("/export", catalogManagers, hm.enrollmentHandler.ExportEnrollments)
				enrollments.GET("/:id", hm.enrollmentHandler.GetEnrollment)
				enrollments.POST("", hm.enrollmentHandler.CreateEnrollment)
				enrollments.PUT("/:id", hm.enrollmentHandler.UpdateEnrollment)
				enrollments.PATCH("/:id", hm.enrollmentHandler.UpdateEnrollment)
				enrollments.DELETE("/:id", hm.enrollmentHandler.DeleteEnrollment)
			}

			lms.GET("/dashboard/stats", hm.dashboardHandler.GetDashboardStats)
		}
	}

	router.GET("/health", hm.health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func (hm *HandlerManager) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if err := hm.serviceManager.HealthCheck(ctx); err != nil {
		utils.FromContext(c, hm.logger).Error("Health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unhealthy",
			"service": serviceName,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": serviceName,
	})
}
