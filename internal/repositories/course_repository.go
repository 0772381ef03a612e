package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/policy"
)

type CategoryRepository interface {
	Create(ctx context.Context, tx *gorm.DB, category *models.Category) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Category, error)
	Update(ctx context.Context, tx *gorm.DB, category *models.Category) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	List(ctx context.Context, tx *gorm.DB, filters CategoryFilters) ([]*models.Category, int64, error)
	ExistsByName(ctx context.Context, tx *gorm.DB, name string, excludeID *uint) (bool, error)
}

// CourseRepository reads return courses with instructor_name, category_name
// and enrollment_count filled in.
type CourseRepository interface {
	Create(ctx context.Context, tx *gorm.DB, course *models.Course) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error)
	Update(ctx context.Context, tx *gorm.DB, course *models.Course) error
	SetPublished(ctx context.Context, tx *gorm.DB, id uint, published bool) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	List(ctx context.Context, tx *gorm.DB, scope policy.CourseScope, filters CourseFilters) ([]*models.Course, int64, error)
}

// EnrollmentRepository reads return enrollments with Course loaded and
// student_name and course_title filled in.
type EnrollmentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, enrollment *models.Enrollment) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Enrollment, error)
	Exists(ctx context.Context, tx *gorm.DB, studentID string, courseID uint) (bool, error)
	UpdateProgress(ctx context.Context, tx *gorm.DB, id uint, progress float64, completed bool) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	List(ctx context.Context, tx *gorm.DB, scope policy.EnrollmentScope, filters EnrollmentFilters) ([]*models.Enrollment, int64, error)
}
