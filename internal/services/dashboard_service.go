package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/lms-service/internal/cache"
	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/policy"
	"github.com/SAP-F-2025/lms-service/internal/repositories"
)

type dashboardService struct {
	repo         repositories.Repository
	db           *gorm.DB
	logger       *slog.Logger
	cacheManager *cache.CacheManager
}

func NewDashboardService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, cacheManager *cache.CacheManager) DashboardService {
	if cacheManager == nil {
		cacheManager = cache.NewCacheManager(nil)
	}
	return &dashboardService{
		repo:         repo,
		db:           db,
		logger:       logger,
		cacheManager: cacheManager,
	}
}

// Stats branches on the actor: admins and superusers get platform totals,
// instructors totals over their own courses, everyone else their own
// enrollment counts
func (s *dashboardService) Stats(ctx context.Context, actor *policy.Actor) (interface{}, error) {
	if actor == nil {
		return nil, NewAuthenticationError("authentication required")
	}

	switch {
	case policy.IsAdmin(actor):
		var stats models.AdminStats
		if err := s.cached(ctx, actor, "admin", &stats, func() (interface{}, error) {
			return s.adminStats(ctx)
		}); err != nil {
			return nil, err
		}
		return &stats, nil

	case policy.IsInstructor(actor):
		var stats models.InstructorStats
		if err := s.cached(ctx, actor, "instructor", &stats, func() (interface{}, error) {
			return s.instructorStats(ctx, actor.ID)
		}); err != nil {
			return nil, err
		}
		return &stats, nil

	default:
		var stats models.StudentStats
		if err := s.cached(ctx, actor, "student", &stats, func() (interface{}, error) {
			return s.studentStats(ctx, actor.ID)
		}); err != nil {
			return nil, err
		}
		return &stats, nil
	}
}

// cached keys by user and branch so a role change never serves the other
// payload shape
func (s *dashboardService) cached(ctx context.Context, actor *policy.Actor, branch string, dest interface{}, fetch func() (interface{}, error)) error {
	key := fmt.Sprintf("%s:%s", cache.StatsKey(actor.ID), branch)
	return s.cacheManager.Stats.CacheOrExecute(ctx, key, dest, cache.StatsCacheConfig.TTL, fetch)
}

func (s *dashboardService) adminStats(ctx context.Context) (*models.AdminStats, error) {
	dash := s.repo.Dashboard()
	var stats models.AdminStats
	var err error

	if stats.TotalUsers, err = dash.CountUsers(ctx, nil); err != nil {
		return nil, err
	}
	if stats.TotalCourses, err = dash.CountCourses(ctx, nil); err != nil {
		return nil, err
	}
	if stats.TotalEnrollments, err = dash.CountEnrollments(ctx, nil); err != nil {
		return nil, err
	}
	if stats.AdminCount, err = dash.CountAdmins(ctx, nil); err != nil {
		return nil, err
	}
	if stats.InstructorCount, err = dash.CountUsersByRole(ctx, nil, models.RoleInstructor); err != nil {
		return nil, err
	}
	if stats.StudentCount, err = dash.CountUsersByRole(ctx, nil, models.RoleStudent); err != nil {
		return nil, err
	}

	s.logger.Debug("Computed admin dashboard stats", "total_users", stats.TotalUsers)
	return &stats, nil
}

func (s *dashboardService) instructorStats(ctx context.Context, instructorID string) (*models.InstructorStats, error) {
	dash := s.repo.Dashboard()
	var stats models.InstructorStats
	var err error

	if stats.MyCourses, err = dash.CountCoursesByInstructor(ctx, nil, instructorID); err != nil {
		return nil, err
	}
	if stats.TotalStudents, err = dash.CountStudentsByInstructor(ctx, nil, instructorID); err != nil {
		return nil, err
	}
	if stats.TotalEnrollments, err = dash.CountEnrollmentsByInstructor(ctx, nil, instructorID); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *dashboardService) studentStats(ctx context.Context, studentID string) (*models.StudentStats, error) {
	dash := s.repo.Dashboard()
	completed, inProgress := true, false
	var stats models.StudentStats
	var err error

	if stats.EnrolledCourses, err = dash.CountEnrollmentsByStudent(ctx, nil, studentID, nil); err != nil {
		return nil, err
	}
	if stats.CompletedCourses, err = dash.CountEnrollmentsByStudent(ctx, nil, studentID, &completed); err != nil {
		return nil, err
	}
	if stats.InProgress, err = dash.CountEnrollmentsByStudent(ctx, nil, studentID, &inProgress); err != nil {
		return nil, err
	}
	return &stats, nil
}
