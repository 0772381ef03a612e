package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/lms-service/internal/policy"
	"github.com/SAP-F-2025/lms-service/internal/repositories"
)

const (
	enrollmentSheet = "Enrollments"
	exportBatchSize = 100
)

var enrollmentHeader = []interface{}{
	"ID", "Student", "Student Name", "Course", "Course Title", "Progress", "Completed", "Enrolled At",
}

type exportService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewExportService(repo repositories.Repository, logger *slog.Logger) ExportService {
	return &exportService{
		repo:   repo,
		logger: logger,
	}
}

// ExportEnrollments writes every enrollment in the actor's listing scope to
// a single-sheet workbook
func (s *exportService) ExportEnrollments(ctx context.Context, actor *policy.Actor, w io.Writer) error {
	if actor == nil {
		return NewAuthenticationError("authentication required")
	}
	if !policy.CanManageCatalog(actor) {
		return NewPermissionError(actor.ID, "enrollment", "export", "insufficient role permissions")
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("Failed to close workbook", "error", err)
		}
	}()

	if err := f.SetSheetName("Sheet1", enrollmentSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := f.SetSheetRow(enrollmentSheet, "A1", &enrollmentHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	scope := policy.EnrollmentScopeFor(actor)
	row := 2
	for offset := 0; ; offset += exportBatchSize {
		enrollments, _, err := s.repo.Enrollment().List(ctx, nil, scope, repositories.EnrollmentFilters{
			Limit:     exportBatchSize,
			Offset:    offset,
			SortBy:    "enrolled_at",
			SortOrder: "asc",
		})
		if err != nil {
			return err
		}

		for _, e := range enrollments {
			cell, err := excelize.CoordinatesToCellName(1, row)
			if err != nil {
				return err
			}
			values := []interface{}{
				e.ID,
				e.StudentID,
				e.StudentName,
				e.CourseID,
				e.CourseTitle,
				e.Progress,
				e.Completed,
				e.EnrolledAt.UTC().Format("2006-01-02 15:04:05"),
			}
			if err := f.SetSheetRow(enrollmentSheet, cell, &values); err != nil {
				return fmt.Errorf("failed to write row %d: %w", row, err)
			}
			row++
		}

		if len(enrollments) < exportBatchSize {
			break
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	s.logger.Info("Enrollments exported", "user_id", actor.ID, "rows", row-2)
	return nil
}
