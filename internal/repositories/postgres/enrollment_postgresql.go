package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/lms-service/internal/cache"
	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/policy"
	"github.com/SAP-F-2025/lms-service/internal/repositories"
)

var enrollmentSortColumns = map[string]bool{
	"enrolled_at": true,
	"progress":    true,
}

type EnrollmentPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewEnrollmentPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.EnrollmentRepository {
	return &EnrollmentPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (e *EnrollmentPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return e.db
}

// Create inserts the enrollment. The (student, course) unique index turns a
// racing duplicate into ErrDuplicate.
func (e *EnrollmentPostgreSQL) Create(ctx context.Context, tx *gorm.DB, enrollment *models.Enrollment) error {
	if err := e.getDB(tx).WithContext(ctx).Omit("Student", "Course").Create(enrollment).Error; err != nil {
		if repositories.IsDuplicateError(err) {
			return fmt.Errorf("already enrolled: %w", repositories.ErrDuplicate)
		}
		return fmt.Errorf("failed to create enrollment: %w", err)
	}

	cache.InvalidateCourseCache(ctx, e.cacheManager, enrollment.CourseID)
	return nil
}

func (e *EnrollmentPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	if err := e.getDB(tx).WithContext(ctx).
		Preload("Student").
		Preload("Course").
		First(&enrollment, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get enrollment: %w", err)
	}

	e.helpers.FillEnrollmentComputed([]*models.Enrollment{&enrollment})
	return &enrollment, nil
}

func (e *EnrollmentPostgreSQL) Exists(ctx context.Context, tx *gorm.DB, studentID string, courseID uint) (bool, error) {
	var count int64
	if err := e.getDB(tx).WithContext(ctx).
		Model(&models.Enrollment{}).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check enrollment: %w", err)
	}
	return count > 0, nil
}

func (e *EnrollmentPostgreSQL) UpdateProgress(ctx context.Context, tx *gorm.DB, id uint, progress float64, completed bool) error {
	result := e.getDB(tx).WithContext(ctx).Model(&models.Enrollment{}).Where("id = ?", id).Updates(map[string]interface{}{
		"progress":   progress,
		"completed":  completed,
		"updated_at": time.Now(),
	})
	if result.Error != nil {
		return fmt.Errorf("failed to update enrollment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("failed to update enrollment: %w", repositories.ErrNotFound)
	}

	cache.InvalidateStats(ctx, e.cacheManager)
	return nil
}

func (e *EnrollmentPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := e.getDB(tx).WithContext(ctx)

	var enrollment models.Enrollment
	if err := db.Select("id", "course_id").First(&enrollment, id).Error; err != nil {
		return fmt.Errorf("failed to get enrollment: %w", err)
	}
	if err := db.Delete(&models.Enrollment{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete enrollment: %w", err)
	}

	cache.InvalidateCourseCache(ctx, e.cacheManager, enrollment.CourseID)
	return nil
}

// List retrieves enrollments visible under scope with filters and pagination
func (e *EnrollmentPostgreSQL) List(ctx context.Context, tx *gorm.DB, scope policy.EnrollmentScope, filters repositories.EnrollmentFilters) ([]*models.Enrollment, int64, error) {
	build := func() *gorm.DB {
		query := e.getDB(tx).WithContext(ctx).Model(&models.Enrollment{})
		query = e.helpers.ApplyEnrollmentScope(query, scope)
		if filters.CourseID != nil {
			query = query.Where("enrollments.course_id = ?", *filters.CourseID)
		}
		if filters.Completed != nil {
			query = query.Where("enrollments.completed = ?", *filters.Completed)
		}
		return query
	}

	var total int64
	if err := build().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count enrollments: %w", err)
	}

	query := build().Preload("Student").Preload("Course")
	query = e.helpers.ApplyPaginationAndSort(query, "enrollments", enrollmentSortColumns, "enrolled_at", filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	var enrollments []*models.Enrollment
	if err := query.Find(&enrollments).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list enrollments: %w", err)
	}

	e.helpers.FillEnrollmentComputed(enrollments)
	return enrollments, total, nil
}
