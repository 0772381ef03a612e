package validator

import "github.com/SAP-F-2025/lms-service/internal/models"

// ===== AUTH =====

type RegisterRequest struct {
	Email     string          `json:"email" validate:"required,email,max=255"`
	Password  string          `json:"password" validate:"required,password"`
	FirstName string          `json:"first_name" validate:"max=150"`
	LastName  string          `json:"last_name" validate:"max=150"`
	Role      models.UserRole `json:"role" validate:"omitempty,not_admin_role,user_role"`
	Theme     models.Theme    `json:"theme" validate:"omitempty,theme"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,password"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

// ProfileUpdateRequest carries the self-editable profile fields. Nil fields
// are left unchanged.
type ProfileUpdateRequest struct {
	FirstName      *string                `json:"first_name" validate:"omitempty,max=150"`
	LastName       *string                `json:"last_name" validate:"omitempty,max=150"`
	Theme          *models.Theme          `json:"theme" validate:"omitempty,theme"`
	Bio            *string                `json:"bio" validate:"omitempty,max=2000"`
	ProfilePicture *string                `json:"profile_picture" validate:"omitempty,url,max=500"`
	Metadata       map[string]interface{} `json:"metadata"`
}

// ===== CATALOG =====

type CategoryRequest struct {
	Name        string `json:"name" validate:"required,category_name"`
	Description string `json:"description" validate:"max=2000"`
}

type CourseCreateRequest struct {
	Title         string  `json:"title" validate:"required,course_title"`
	Description   string  `json:"description" validate:"max=10000"`
	CategoryID    *uint   `json:"category"`
	Thumbnail     *string `json:"thumbnail" validate:"omitempty,url,max=500"`
	DurationHours int     `json:"duration_hours" validate:"gte=0,lte=10000"`
	IsPublished   bool    `json:"is_published"`
}

// CourseUpdateRequest has no instructor field; ownership never changes
type CourseUpdateRequest struct {
	Title         *string `json:"title" validate:"omitempty,course_title"`
	Description   *string `json:"description" validate:"omitempty,max=10000"`
	CategoryID    *uint   `json:"category"`
	Thumbnail     *string `json:"thumbnail" validate:"omitempty,url,max=500"`
	DurationHours *int    `json:"duration_hours" validate:"omitempty,gte=0,lte=10000"`
	IsPublished   *bool   `json:"is_published"`
}

type PublishRequest struct {
	IsPublished *bool `json:"is_published"`
}

// ===== ENROLLMENT =====

// EnrollmentCreateRequest names only the course; the student is the caller
type EnrollmentCreateRequest struct {
	CourseID uint `json:"course" validate:"required"`
}

type EnrollmentUpdateRequest struct {
	Progress  *float64 `json:"progress" validate:"omitempty,gte=0,lte=100"`
	Completed *bool    `json:"completed"`
}
