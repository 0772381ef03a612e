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

var courseSortColumns = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"title":      true,
}

type CoursePostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewCoursePostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.CourseRepository {
	return &CoursePostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (c *CoursePostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return c.db
}

func (c *CoursePostgreSQL) Create(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	if err := c.getDB(tx).WithContext(ctx).Omit("Category", "Instructor").Create(course).Error; err != nil {
		return fmt.Errorf("failed to create course: %w", err)
	}
	cache.InvalidateStats(ctx, c.cacheManager)
	return nil
}

// GetByID retrieves a course with computed fields. Reads outside a
// transaction go through the cache.
func (c *CoursePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error) {
	load := func() (*models.Course, error) {
		db := c.getDB(tx)
		var course models.Course
		if err := db.WithContext(ctx).
			Preload("Instructor").
			Preload("Category").
			First(&course, id).Error; err != nil {
			return nil, fmt.Errorf("failed to get course: %w", err)
		}
		if err := c.helpers.FillCourseComputed(ctx, db, []*models.Course{&course}); err != nil {
			return nil, err
		}
		return &course, nil
	}

	if tx != nil {
		return load()
	}

	var course models.Course
	err := c.cacheManager.Course.CacheOrExecute(ctx, cache.CourseKey(id), &course, cache.CourseCacheConfig.TTL, func() (interface{}, error) {
		return load()
	})
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// Update writes the editable fields; the instructor is never touched
func (c *CoursePostgreSQL) Update(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	result := c.getDB(tx).WithContext(ctx).Model(&models.Course{}).Where("id = ?", course.ID).Updates(map[string]interface{}{
		"title":          course.Title,
		"description":    course.Description,
		"category_id":    course.CategoryID,
		"thumbnail":      course.Thumbnail,
		"duration_hours": course.DurationHours,
		"is_published":   course.IsPublished,
		"updated_at":     time.Now(),
	})
	if result.Error != nil {
		return fmt.Errorf("failed to update course: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("failed to update course: %w", repositories.ErrNotFound)
	}

	cache.InvalidateCourseCache(ctx, c.cacheManager, course.ID)
	return nil
}

func (c *CoursePostgreSQL) SetPublished(ctx context.Context, tx *gorm.DB, id uint, published bool) error {
	result := c.getDB(tx).WithContext(ctx).Model(&models.Course{}).Where("id = ?", id).Updates(map[string]interface{}{
		"is_published": published,
		"updated_at":   time.Now(),
	})
	if result.Error != nil {
		return fmt.Errorf("failed to update course status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("failed to update course status: %w", repositories.ErrNotFound)
	}

	cache.InvalidateCourseCache(ctx, c.cacheManager, id)
	return nil
}

// Delete removes a course together with its enrollments
func (c *CoursePostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := c.getDB(tx).WithContext(ctx)
	if err := db.Where("course_id = ?", id).Delete(&models.Enrollment{}).Error; err != nil {
		return fmt.Errorf("failed to delete course enrollments: %w", err)
	}
	result := db.Delete(&models.Course{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete course: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("failed to delete course: %w", repositories.ErrNotFound)
	}

	cache.InvalidateCourseCache(ctx, c.cacheManager, id)
	return nil
}

// List retrieves courses visible under scope with filters and pagination
func (c *CoursePostgreSQL) List(ctx context.Context, tx *gorm.DB, scope policy.CourseScope, filters repositories.CourseFilters) ([]*models.Course, int64, error) {
	db := c.getDB(tx)
	build := func() *gorm.DB {
		query := db.WithContext(ctx).Model(&models.Course{})
		query = c.helpers.ApplyCourseScope(query, scope)
		query = c.applyFilters(query, filters)
		return query
	}

	var total int64
	if err := build().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count courses: %w", err)
	}

	query := build().Select("courses.*").Preload("Instructor").Preload("Category")
	query = c.helpers.ApplyPaginationAndSort(query, "courses", courseSortColumns, "created_at", filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	var courses []*models.Course
	if err := query.Find(&courses).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list courses: %w", err)
	}

	if err := c.helpers.FillCourseComputed(ctx, db, courses); err != nil {
		return nil, 0, err
	}
	return courses, total, nil
}

func (c *CoursePostgreSQL) applyFilters(query *gorm.DB, filters repositories.CourseFilters) *gorm.DB {
	if filters.CategoryID != nil {
		query = query.Where("courses.category_id = ?", *filters.CategoryID)
	}
	if filters.Published != nil {
		query = query.Where("courses.is_published = ?", *filters.Published)
	}
	if filters.Search != "" {
		p := LikePattern(filters.Search)
		query = query.
			Joins("LEFT JOIN categories ON categories.id = courses.category_id").
			Where("(LOWER(courses.title) LIKE ? OR LOWER(courses.description) LIKE ? OR LOWER(categories.name) LIKE ?)", p, p, p)
	}
	return query
}
