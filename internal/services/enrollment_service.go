package services

import (
	"context"
	"log/slog"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/lms-service/internal/events"
	"github.com/SAP-F-2025/lms-service/internal/metrics"
	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/policy"
	"github.com/SAP-F-2025/lms-service/internal/repositories"
	"github.com/SAP-F-2025/lms-service/internal/validator"
)

const msgAlreadyEnrolled = "already enrolled in this course"

type enrollmentService struct {
	baseService
}

func NewEnrollmentService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.Publisher) EnrollmentService {
	return &enrollmentService{
		baseService: baseService{
			repo:      repo,
			db:        db,
			logger:    logger,
			validator: validator,
			publisher: publisher,
		},
	}
}

func (s *enrollmentService) List(ctx context.Context, actor *policy.Actor, filters repositories.EnrollmentFilters) (*EnrollmentListResponse, error) {
	if actor == nil {
		return nil, NewAuthenticationError("authentication required")
	}
	return s.list(ctx, policy.EnrollmentScopeFor(actor), filters)
}

// MyEnrollments lists only enrollments where the actor is the student
func (s *enrollmentService) MyEnrollments(ctx context.Context, actor *policy.Actor, filters repositories.EnrollmentFilters) (*EnrollmentListResponse, error) {
	if actor == nil {
		return nil, NewAuthenticationError("authentication required")
	}
	return s.list(ctx, policy.MyEnrollmentsScopeFor(actor), filters)
}

func (s *enrollmentService) list(ctx context.Context, scope policy.EnrollmentScope, filters repositories.EnrollmentFilters) (*EnrollmentListResponse, error) {
	filters.Limit, filters.Offset = normalizePage(filters.Limit, filters.Offset)

	enrollments, total, err := s.repo.Enrollment().List(ctx, nil, scope, filters)
	if err != nil {
		return nil, err
	}

	return &EnrollmentListResponse{
		Enrollments: enrollments,
		Total:       total,
		Limit:       filters.Limit,
		Offset:      filters.Offset,
	}, nil
}

func (s *enrollmentService) Get(ctx context.Context, actor *policy.Actor, id uint) (*models.Enrollment, error) {
	if actor == nil {
		return nil, NewAuthenticationError("authentication required")
	}

	enrollment, err := s.repo.Enrollment().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewNotFoundError("enrollment", id)
		}
		return nil, err
	}

	if !policy.EnrollmentScopeFor(actor).Allows(enrollment, courseInstructor(enrollment)) {
		return nil, NewNotFoundError("enrollment", id)
	}
	return enrollment, nil
}

// Create enrolls the actor. The student is never taken from the payload.
// A duplicate is rejected up front and again by the unique index when two
// requests race.
func (s *enrollmentService) Create(ctx context.Context, actor *policy.Actor, req *CreateEnrollmentRequest) (enrollment *models.Enrollment, err error) {
	if actor == nil {
		return nil, NewAuthenticationError("authentication required")
	}
	defer func() {
		metrics.EnrollmentsTotal.WithLabelValues(metrics.Result(err)).Inc()
	}()

	if err := s.validate(req); err != nil {
		return nil, err
	}

	course, err := s.repo.Course().GetByID(ctx, nil, req.CourseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewValidationError("course", "course does not exist")
		}
		return nil, err
	}
	if !policy.CourseScopeFor(actor).Allows(course) {
		return nil, NewValidationError("course", "course does not exist")
	}

	exists, err := s.repo.Enrollment().Exists(ctx, nil, actor.ID, course.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, NewConflictError(msgAlreadyEnrolled)
	}

	created := &models.Enrollment{
		StudentID: actor.ID,
		CourseID:  course.ID,
	}
	if err := s.repo.Enrollment().Create(ctx, nil, created); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, NewConflictError(msgAlreadyEnrolled)
		}
		return nil, err
	}

	s.publish(ctx, events.EnrollmentCreated, map[string]interface{}{
		"enrollment_id": created.ID,
		"student_id":    actor.ID,
		"course_id":     course.ID,
	})
	s.logger.Info("Enrollment created", "enrollment_id", created.ID, "student_id", actor.ID, "course_id", course.ID)

	return s.repo.Enrollment().GetByID(ctx, nil, created.ID)
}

// UpdateProgress is allowed for the student, the course instructor and
// admins. Reaching 100 marks the enrollment completed.
func (s *enrollmentService) UpdateProgress(ctx context.Context, actor *policy.Actor, id uint, req *UpdateEnrollmentRequest) (*models.Enrollment, error) {
	if actor == nil {
		return nil, NewAuthenticationError("authentication required")
	}
	if errs := s.validator.GetBusinessValidator().ValidateProgress(req); len(errs) > 0 {
		return nil, invalid(errs)
	}

	enrollment, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanModifyEnrollment(actor, enrollment, courseInstructor(enrollment)) {
		return nil, NewPermissionError(actor.ID, "enrollment", "update", "not the student or course instructor")
	}

	progress := enrollment.Progress
	if req.Progress != nil {
		progress = *req.Progress
	}
	completed := enrollment.Completed
	if req.Completed != nil {
		completed = *req.Completed
	}
	if progress >= 100 {
		completed = true
	}

	if err := s.repo.Enrollment().UpdateProgress(ctx, nil, id, progress, completed); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewNotFoundError("enrollment", id)
		}
		return nil, err
	}

	return s.repo.Enrollment().GetByID(ctx, nil, id)
}

// Delete is allowed for the enrolled student and admins
func (s *enrollmentService) Delete(ctx context.Context, actor *policy.Actor, id uint) error {
	enrollment, err := s.Get(ctx, actor, id)
	if err != nil {
		return err
	}
	if !policy.IsAdmin(actor) && enrollment.StudentID != actor.ID {
		return NewPermissionError(actor.ID, "enrollment", "delete", "not the enrolled student")
	}

	if err := s.repo.Enrollment().Delete(ctx, nil, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return NewNotFoundError("enrollment", id)
		}
		return err
	}

	s.logger.Info("Enrollment deleted", "enrollment_id", id, "user_id", actor.ID)
	return nil
}

func courseInstructor(e *models.Enrollment) string {
	if e == nil || e.Course == nil {
		return ""
	}
	return e.Course.InstructorID
}
