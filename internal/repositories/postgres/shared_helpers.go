package postgres

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/policy"
)

// SharedHelpers contains query building shared by the catalog repositories
type SharedHelpers struct {
	db *gorm.DB
}

func NewSharedHelpers(db *gorm.DB) *SharedHelpers {
	return &SharedHelpers{db: db}
}

// ApplyCourseScope restricts a courses query to what the scope allows
func (h *SharedHelpers) ApplyCourseScope(query *gorm.DB, scope policy.CourseScope) *gorm.DB {
	if scope.All {
		return query
	}

	var clauses []string
	var args []interface{}
	if scope.Published {
		clauses = append(clauses, "courses.is_published = ?")
		args = append(args, true)
	}
	if scope.InstructorID != "" {
		clauses = append(clauses, "courses.instructor_id = ?")
		args = append(args, scope.InstructorID)
	}
	if scope.EnrolledBy != "" {
		clauses = append(clauses, "courses.id IN (SELECT course_id FROM enrollments WHERE student_id = ?)")
		args = append(args, scope.EnrolledBy)
	}
	if len(clauses) == 0 {
		return query.Where("1 = 0")
	}
	return query.Where("("+strings.Join(clauses, " OR ")+")", args...)
}

// ApplyEnrollmentScope restricts an enrollments query to what the scope allows
func (h *SharedHelpers) ApplyEnrollmentScope(query *gorm.DB, scope policy.EnrollmentScope) *gorm.DB {
	if scope.Deny {
		return query.Where("1 = 0")
	}
	if scope.StudentID != "" {
		query = query.Where("enrollments.student_id = ?", scope.StudentID)
	}
	if scope.CourseInstructorID != "" {
		query = query.Where("enrollments.course_id IN (SELECT id FROM courses WHERE instructor_id = ?)", scope.CourseInstructorID)
	}
	return query
}

// ApplyPaginationAndSort applies pagination and sorting with SQL injection protection
func (h *SharedHelpers) ApplyPaginationAndSort(query *gorm.DB, table string, allowed map[string]bool, defaultSort, sortBy, sortOrder string, limit, offset int) *gorm.DB {
	if sortBy == "" || !allowed[sortBy] {
		sortBy = defaultSort
	}

	if strings.EqualFold(sortOrder, "asc") {
		sortOrder = "ASC"
	} else {
		sortOrder = "DESC"
	}

	query = query.Order(fmt.Sprintf("%s.%s %s", table, sortBy, sortOrder)).Order(table + ".id " + sortOrder)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	return query
}

// LikePattern builds a case-insensitive LIKE argument
func LikePattern(search string) string {
	return "%" + strings.ToLower(strings.TrimSpace(search)) + "%"
}

type courseCountRow struct {
	CourseID uint
	Total    int64
}

// FillCourseComputed sets instructor_name, category_name and
// enrollment_count. Instructor and Category must be preloaded.
func (h *SharedHelpers) FillCourseComputed(ctx context.Context, db *gorm.DB, courses []*models.Course) error {
	if len(courses) == 0 {
		return nil
	}

	ids := make([]uint, 0, len(courses))
	for _, c := range courses {
		ids = append(ids, c.ID)
	}

	var rows []courseCountRow
	if err := db.WithContext(ctx).
		Model(&models.Enrollment{}).
		Select("course_id, COUNT(*) AS total").
		Where("course_id IN ?", ids).
		Group("course_id").
		Scan(&rows).Error; err != nil {
		return fmt.Errorf("failed to count enrollments: %w", err)
	}

	counts := make(map[uint]int64, len(rows))
	for _, r := range rows {
		counts[r.CourseID] = r.Total
	}

	for _, c := range courses {
		c.EnrollmentCount = counts[c.ID]
		if c.Instructor != nil {
			c.InstructorName = c.Instructor.FullName()
		}
		if c.Category != nil {
			c.CategoryName = c.Category.Name
		}
	}
	return nil
}

// FillEnrollmentComputed sets student_name and course_title from preloaded relations
func (h *SharedHelpers) FillEnrollmentComputed(enrollments []*models.Enrollment) {
	for _, e := range enrollments {
		if e.Student != nil {
			e.StudentName = e.Student.FullName()
		}
		if e.Course != nil {
			e.CourseTitle = e.Course.Title
		}
	}
}
