package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/lms-service/internal/models"
)

// DashboardRepository interface for dashboard aggregate counts
type DashboardRepository interface {
	// Platform-wide
	CountUsers(ctx context.Context, tx *gorm.DB) (int64, error)
	CountCourses(ctx context.Context, tx *gorm.DB) (int64, error)
	CountEnrollments(ctx context.Context, tx *gorm.DB) (int64, error)
	CountAdmins(ctx context.Context, tx *gorm.DB) (int64, error)
	CountUsersByRole(ctx context.Context, tx *gorm.DB, role models.UserRole) (int64, error)

	// Instructor scope
	CountCoursesByInstructor(ctx context.Context, tx *gorm.DB, instructorID string) (int64, error)
	CountStudentsByInstructor(ctx context.Context, tx *gorm.DB, instructorID string) (int64, error)
	CountEnrollmentsByInstructor(ctx context.Context, tx *gorm.DB, instructorID string) (int64, error)

	// Student scope; completed nil counts all
	CountEnrollmentsByStudent(ctx context.Context, tx *gorm.DB, studentID string, completed *bool) (int64, error)
}
