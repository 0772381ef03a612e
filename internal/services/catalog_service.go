package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/lms-service/internal/events"
	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/policy"
	"github.com/SAP-F-2025/lms-service/internal/repositories"
	"github.com/SAP-F-2025/lms-service/internal/validator"
)

type catalogService struct {
	baseService
}

func NewCatalogService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.Publisher) CatalogService {
	return &catalogService{
		baseService: baseService{
			repo:      repo,
			db:        db,
			logger:    logger,
			validator: validator,
			publisher: publisher,
		},
	}
}

// ===== CATEGORIES =====

func (s *catalogService) ListCategories(ctx context.Context, filters repositories.CategoryFilters) (*CategoryListResponse, error) {
	filters.Limit, filters.Offset = normalizePage(filters.Limit, filters.Offset)

	categories, total, err := s.repo.Category().List(ctx, nil, filters)
	if err != nil {
		return nil, err
	}
	return &CategoryListResponse{Categories: categories, Total: total}, nil
}

func (s *catalogService) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	category, err := s.repo.Category().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewNotFoundError("category", id)
		}
		return nil, err
	}
	return category, nil
}

func (s *catalogService) CreateCategory(ctx context.Context, actor *policy.Actor, req *CategoryRequest) (*models.Category, error) {
	if err := s.requireCatalogManager(actor, "category", "create"); err != nil {
		return nil, err
	}
	if err := s.validate(req); err != nil {
		return nil, err
	}

	if err := s.checkCategoryName(ctx, req.Name, nil); err != nil {
		return nil, err
	}

	category := &models.Category{
		Name:        req.Name,
		Description: req.Description,
	}
	if err := s.repo.Category().Create(ctx, nil, category); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, NewConflictError("category with this name already exists")
		}
		return nil, err
	}

	s.logger.Info("Category created", "category_id", category.ID, "user_id", actor.ID)
	return category, nil
}

// UpdateCategory has no object-level check: any catalog manager may edit
// any category
func (s *catalogService) UpdateCategory(ctx context.Context, actor *policy.Actor, id uint, req *CategoryRequest) (*models.Category, error) {
	if err := s.requireCatalogManager(actor, "category", "update"); err != nil {
		return nil, err
	}
	if err := s.validate(req); err != nil {
		return nil, err
	}

	category, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkCategoryName(ctx, req.Name, &id); err != nil {
		return nil, err
	}

	category.Name = req.Name
	category.Description = req.Description
	if err := s.repo.Category().Update(ctx, nil, category); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, NewConflictError("category with this name already exists")
		}
		return nil, err
	}

	return s.GetCategory(ctx, id)
}

func (s *catalogService) DeleteCategory(ctx context.Context, actor *policy.Actor, id uint) error {
	if err := s.requireCatalogManager(actor, "category", "delete"); err != nil {
		return err
	}

	if err := s.repo.Category().Delete(ctx, nil, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return NewNotFoundError("category", id)
		}
		return err
	}

	s.logger.Info("Category deleted", "category_id", id, "user_id", actor.ID)
	return nil
}

// ===== COURSES =====

func (s *catalogService) ListCourses(ctx context.Context, actor *policy.Actor, filters repositories.CourseFilters) (*CourseListResponse, error) {
	if actor == nil {
		return nil, NewAuthenticationError("authentication required")
	}
	return s.listCourses(ctx, policy.CourseScopeFor(actor), filters)
}

// MyCourses narrows to exact ownership: an instructor's own courses, a
// student's enrolled courses, everything for admins
func (s *catalogService) MyCourses(ctx context.Context, actor *policy.Actor, filters repositories.CourseFilters) (*CourseListResponse, error) {
	if actor == nil {
		return nil, NewAuthenticationError("authentication required")
	}
	return s.listCourses(ctx, policy.MyCoursesScopeFor(actor), filters)
}

func (s *catalogService) listCourses(ctx context.Context, scope policy.CourseScope, filters repositories.CourseFilters) (*CourseListResponse, error) {
	filters.Limit, filters.Offset = normalizePage(filters.Limit, filters.Offset)

	courses, total, err := s.repo.Course().List(ctx, nil, scope, filters)
	if err != nil {
		return nil, err
	}

	return &CourseListResponse{
		Courses: courses,
		Total:   total,
		Limit:   filters.Limit,
		Offset:  filters.Offset,
	}, nil
}

// GetCourse reports courses outside the actor's listing scope as not found
func (s *catalogService) GetCourse(ctx context.Context, actor *policy.Actor, id uint) (*models.Course, error) {
	if actor == nil {
		return nil, NewAuthenticationError("authentication required")
	}

	course, err := s.repo.Course().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewNotFoundError("course", id)
		}
		return nil, err
	}

	if !policy.CourseScopeFor(actor).Allows(course) {
		return nil, NewNotFoundError("course", id)
	}
	return course, nil
}

// CreateCourse always makes the actor the instructor
func (s *catalogService) CreateCourse(ctx context.Context, actor *policy.Actor, req *CreateCourseRequest) (*models.Course, error) {
	if err := s.requireCatalogManager(actor, "course", "create"); err != nil {
		return nil, err
	}
	if err := s.validate(req); err != nil {
		return nil, err
	}
	if err := s.checkCategoryExists(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	course := &models.Course{
		Title:         req.Title,
		Description:   req.Description,
		CategoryID:    req.CategoryID,
		InstructorID:  actor.ID,
		Thumbnail:     req.Thumbnail,
		DurationHours: req.DurationHours,
		IsPublished:   req.IsPublished,
	}
	if err := s.repo.Course().Create(ctx, nil, course); err != nil {
		return nil, err
	}

	s.publish(ctx, events.CourseCreated, map[string]interface{}{
		"course_id":     course.ID,
		"instructor_id": course.InstructorID,
		"is_published":  course.IsPublished,
	})
	if course.IsPublished {
		s.publishCoursePublished(ctx, course)
	}
	s.logger.Info("Course created", "course_id", course.ID, "instructor_id", actor.ID)

	return s.repo.Course().GetByID(ctx, nil, course.ID)
}

func (s *catalogService) UpdateCourse(ctx context.Context, actor *policy.Actor, id uint, req *UpdateCourseRequest) (*models.Course, error) {
	if err := s.requireCatalogManager(actor, "course", "update"); err != nil {
		return nil, err
	}
	if err := s.validate(req); err != nil {
		return nil, err
	}

	course, err := s.getOwnedCourse(ctx, actor, id, "update")
	if err != nil {
		return nil, err
	}
	wasPublished := course.IsPublished

	if req.Title != nil {
		course.Title = *req.Title
	}
	if req.Description != nil {
		course.Description = *req.Description
	}
	if req.CategoryID != nil {
		if err := s.checkCategoryExists(ctx, req.CategoryID); err != nil {
			return nil, err
		}
		course.CategoryID = req.CategoryID
	}
	if req.Thumbnail != nil {
		course.Thumbnail = req.Thumbnail
	}
	if req.DurationHours != nil {
		course.DurationHours = *req.DurationHours
	}
	if req.IsPublished != nil {
		course.IsPublished = *req.IsPublished
	}

	if err := s.repo.Course().Update(ctx, nil, course); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewNotFoundError("course", id)
		}
		return nil, err
	}

	if course.IsPublished && !wasPublished {
		s.publishCoursePublished(ctx, course)
	}
	s.logger.Info("Course updated", "course_id", id, "user_id", actor.ID)

	return s.repo.Course().GetByID(ctx, nil, id)
}

func (s *catalogService) PublishCourse(ctx context.Context, actor *policy.Actor, id uint, published bool) (*models.Course, error) {
	if err := s.requireCatalogManager(actor, "course", "publish"); err != nil {
		return nil, err
	}

	course, err := s.getOwnedCourse(ctx, actor, id, "publish")
	if err != nil {
		return nil, err
	}

	if course.IsPublished != published {
		if err := s.repo.Course().SetPublished(ctx, nil, id, published); err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, NewNotFoundError("course", id)
			}
			return nil, err
		}
		if published {
			s.publishCoursePublished(ctx, course)
		}
		s.logger.Info("Course publication changed", "course_id", id, "is_published", published)
	}

	return s.repo.Course().GetByID(ctx, nil, id)
}

func (s *catalogService) DeleteCourse(ctx context.Context, actor *policy.Actor, id uint) error {
	if err := s.requireCatalogManager(actor, "course", "delete"); err != nil {
		return err
	}

	if _, err := s.getOwnedCourse(ctx, actor, id, "delete"); err != nil {
		return err
	}

	err := s.withTx(ctx, func(tx *gorm.DB) error {
		return s.repo.Course().Delete(ctx, tx, id)
	})
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return NewNotFoundError("course", id)
		}
		return err
	}

	s.logger.Info("Course deleted", "course_id", id, "user_id", actor.ID)
	return nil
}

// ===== HELPERS =====

func (s *catalogService) requireCatalogManager(actor *policy.Actor, resource, action string) error {
	if actor == nil {
		return NewAuthenticationError("authentication required")
	}
	if !policy.CanManageCatalog(actor) {
		return NewPermissionError(actor.ID, resource, action, "insufficient role permissions")
	}
	return nil
}

// getOwnedCourse loads a course for mutation. Invisible courses are not
// found; visible ones the actor does not own are forbidden.
func (s *catalogService) getOwnedCourse(ctx context.Context, actor *policy.Actor, id uint, action string) (*models.Course, error) {
	course, err := s.GetCourse(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanActOnObject(actor, course) {
		return nil, NewPermissionError(actor.ID, "course", action, "not the course instructor")
	}
	return course, nil
}

func (s *catalogService) checkCategoryName(ctx context.Context, name string, excludeID *uint) error {
	exists, err := s.repo.Category().ExistsByName(ctx, nil, name, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check category name: %w", err)
	}
	if exists {
		return NewConflictError("category with this name already exists")
	}
	return nil
}

func (s *catalogService) checkCategoryExists(ctx context.Context, id *uint) error {
	if id == nil {
		return nil
	}
	if _, err := s.repo.Category().GetByID(ctx, nil, *id); err != nil {
		if repositories.IsNotFoundError(err) {
			return NewValidationError("category", "category does not exist")
		}
		return err
	}
	return nil
}

func (s *catalogService) publishCoursePublished(ctx context.Context, course *models.Course) {
	s.publish(ctx, events.CoursePublished, map[string]interface{}{
		"course_id":     course.ID,
		"instructor_id": course.InstructorID,
	})
}
