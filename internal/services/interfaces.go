package services

import (
	"context"
	"io"

	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/policy"
	"github.com/SAP-F-2025/lms-service/internal/repositories"
	"github.com/SAP-F-2025/lms-service/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use business validator types
type RegisterRequest = validator.RegisterRequest
type LoginRequest = validator.LoginRequest
type ForgotPasswordRequest = validator.ForgotPasswordRequest
type ResetPasswordRequest = validator.ResetPasswordRequest
type RefreshRequest = validator.RefreshRequest
type ProfileUpdateRequest = validator.ProfileUpdateRequest

type CategoryRequest = validator.CategoryRequest
type CreateCourseRequest = validator.CourseCreateRequest
type UpdateCourseRequest = validator.CourseUpdateRequest
type CreateEnrollmentRequest = validator.EnrollmentCreateRequest
type UpdateEnrollmentRequest = validator.EnrollmentUpdateRequest

type CategoryListResponse struct {
	Categories []*models.Category `json:"categories"`
	Total      int64              `json:"total"`
}

type CourseListResponse struct {
	Courses []*models.Course `json:"courses"`
	Total   int64            `json:"total"`
	Limit   int              `json:"limit"`
	Offset  int              `json:"offset"`
}

type EnrollmentListResponse struct {
	Enrollments []*models.Enrollment `json:"enrollments"`
	Total       int64                `json:"total"`
	Limit       int                  `json:"limit"`
	Offset      int                  `json:"offset"`
}

// ===== SERVICE INTERFACES =====

type AuthService interface {
	// Account lifecycle
	Register(ctx context.Context, req *RegisterRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req *LoginRequest) (*models.AuthResponse, error)
	CreateAdmin(ctx context.Context, email, password, firstName, lastName string) (*models.User, error)

	// Password reset
	RequestPasswordReset(ctx context.Context, req *ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, req *ResetPasswordRequest) error

	// Sessions
	RefreshToken(ctx context.Context, req *RefreshRequest) (*models.TokenResponse, error)
	Logout(ctx context.Context, req *RefreshRequest) error
	Authenticate(ctx context.Context, accessToken string) (*models.User, error)

	// Profile
	GetProfile(ctx context.Context, actor *policy.Actor) (*models.User, error)
	UpdateProfile(ctx context.Context, actor *policy.Actor, req *ProfileUpdateRequest) (*models.User, error)
}

type CatalogService interface {
	// Categories
	ListCategories(ctx context.Context, filters repositories.CategoryFilters) (*CategoryListResponse, error)
	GetCategory(ctx context.Context, id uint) (*models.Category, error)
	CreateCategory(ctx context.Context, actor *policy.Actor, req *CategoryRequest) (*models.Category, error)
	UpdateCategory(ctx context.Context, actor *policy.Actor, id uint, req *CategoryRequest) (*models.Category, error)
	DeleteCategory(ctx context.Context, actor *policy.Actor, id uint) error

	// Courses
	ListCourses(ctx context.Context, actor *policy.Actor, filters repositories.CourseFilters) (*CourseListResponse, error)
	MyCourses(ctx context.Context, actor *policy.Actor, filters repositories.CourseFilters) (*CourseListResponse, error)
	GetCourse(ctx context.Context, actor *policy.Actor, id uint) (*models.Course, error)
	CreateCourse(ctx context.Context, actor *policy.Actor, req *CreateCourseRequest) (*models.Course, error)
	UpdateCourse(ctx context.Context, actor *policy.Actor, id uint, req *UpdateCourseRequest) (*models.Course, error)
	PublishCourse(ctx context.Context, actor *policy.Actor, id uint, published bool) (*models.Course, error)
	DeleteCourse(ctx context.Context, actor *policy.Actor, id uint) error
}

type EnrollmentService interface {
	List(ctx context.Context, actor *policy.Actor, filters repositories.EnrollmentFilters) (*EnrollmentListResponse, error)
	MyEnrollments(ctx context.Context, actor *policy.Actor, filters repositories.EnrollmentFilters) (*EnrollmentListResponse, error)
	Get(ctx context.Context, actor *policy.Actor, id uint) (*models.Enrollment, error)
	Create(ctx context.Context, actor *policy.Actor, req *CreateEnrollmentRequest) (*models.Enrollment, error)
	UpdateProgress(ctx context.Context, actor *policy.Actor, id uint, req *UpdateEnrollmentRequest) (*models.Enrollment, error)
	Delete(ctx context.Context, actor *policy.Actor, id uint) error
}

// DashboardService returns one of *models.AdminStats, *models.InstructorStats
// or *models.StudentStats depending on the actor
type DashboardService interface {
	Stats(ctx context.Context, actor *policy.Actor) (interface{}, error)
}

type ExportService interface {
	// ExportEnrollments writes an xlsx workbook of the enrollments visible to actor
	ExportEnrollments(ctx context.Context, actor *policy.Actor, w io.Writer) error
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	// Core service getters
	Auth() AuthService
	Catalog() CatalogService
	Enrollment() EnrollmentService
	Dashboard() DashboardService
	Export() ExportService

	// Health and lifecycle
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
