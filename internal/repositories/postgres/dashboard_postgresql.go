package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/repositories"
)

type dashboardRepository struct {
	db *gorm.DB
}

func NewDashboardRepository(db *gorm.DB) repositories.DashboardRepository {
	return &dashboardRepository{db: db}
}

func (r *dashboardRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// ===== PLATFORM STATS =====

func (r *dashboardRepository) CountUsers(ctx context.Context, tx *gorm.DB) (int64, error) {
	var count int64
	if err := r.getDB(tx).WithContext(ctx).
		Model(&models.User{}).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

func (r *dashboardRepository) CountCourses(ctx context.Context, tx *gorm.DB) (int64, error) {
	var count int64
	if err := r.getDB(tx).WithContext(ctx).
		Model(&models.Course{}).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count courses: %w", err)
	}
	return count, nil
}

func (r *dashboardRepository) CountEnrollments(ctx context.Context, tx *gorm.DB) (int64, error) {
	var count int64
	if err := r.getDB(tx).WithContext(ctx).
		Model(&models.Enrollment{}).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count enrollments: %w", err)
	}
	return count, nil
}

// CountAdmins counts users with the admin role or the superuser flag
func (r *dashboardRepository) CountAdmins(ctx context.Context, tx *gorm.DB) (int64, error) {
	var count int64
	if err := r.getDB(tx).WithContext(ctx).
		Model(&models.User{}).
		Where("role = ? OR is_superuser = ?", models.RoleAdmin, true).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count admins: %w", err)
	}
	return count, nil
}

func (r *dashboardRepository) CountUsersByRole(ctx context.Context, tx *gorm.DB, role models.UserRole) (int64, error) {
	var count int64
	if err := r.getDB(tx).WithContext(ctx).
		Model(&models.User{}).
		Where("role = ?", role).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count %s users: %w", role, err)
	}
	return count, nil
}

// ===== INSTRUCTOR STATS =====

func (r *dashboardRepository) CountCoursesByInstructor(ctx context.Context, tx *gorm.DB, instructorID string) (int64, error) {
	var count int64
	if err := r.getDB(tx).WithContext(ctx).
		Model(&models.Course{}).
		Where("instructor_id = ?", instructorID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count instructor courses: %w", err)
	}
	return count, nil
}

// CountStudentsByInstructor counts distinct students across the instructor's courses
func (r *dashboardRepository) CountStudentsByInstructor(ctx context.Context, tx *gorm.DB, instructorID string) (int64, error) {
	var count int64
	if err := r.getDB(tx).WithContext(ctx).
		Model(&models.Enrollment{}).
		Joins("JOIN courses ON courses.id = enrollments.course_id").
		Where("courses.instructor_id = ?", instructorID).
		Distinct("enrollments.student_id").
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count instructor students: %w", err)
	}
	return count, nil
}

func (r *dashboardRepository) CountEnrollmentsByInstructor(ctx context.Context, tx *gorm.DB, instructorID string) (int64, error) {
	var count int64
	if err := r.getDB(tx).WithContext(ctx).
		Model(&models.Enrollment{}).
		Joins("JOIN courses ON courses.id = enrollments.course_id").
		Where("courses.instructor_id = ?", instructorID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count instructor enrollments: %w", err)
	}
	return count, nil
}

// ===== STUDENT STATS =====

func (r *dashboardRepository) CountEnrollmentsByStudent(ctx context.Context, tx *gorm.DB, studentID string, completed *bool) (int64, error) {
	query := r.getDB(tx).WithContext(ctx).
		Model(&models.Enrollment{}).
		Where("student_id = ?", studentID)
	if completed != nil {
		query = query.Where("completed = ?", *completed)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count student enrollments: %w", err)
	}
	return count, nil
}
