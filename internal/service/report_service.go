package service

import (
	"context"
	"database/sql"
	"math"

	"go.uber.org/zap"

	"github.com/trainup/training-api/internal/models"
	appErrors "github.com/trainup/training-api/pkg/errors"
)

type reportRepository interface {
	CourseStatistics(ctx context.Context, courseID int64) (*models.CourseStatistics, error)
}

type reportCourseReader interface {
	FindByID(ctx context.Context, id int64) (*models.Course, error)
}

type auditReader interface {
	List(ctx context.Context, filter models.AuditFilter) ([]models.AuditLog, error)
}

// ReportService serves read-only aggregations over enrollments.
// Statistics are recomputed from the store on every call and never
// cached, so they always reflect the committed state.
type ReportService struct {
	repo    reportRepository
	courses reportCourseReader
	audits  auditReader
	logger  *zap.Logger
}

// NewReportService constructs ReportService.
func NewReportService(repo reportRepository, courses reportCourseReader, audits auditReader, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{repo: repo, courses: courses, audits: audits, logger: logger}
}

// CourseStatistics returns enrollment counts, a per-status breakdown
// and grade/progress averages for one course. A course with no
// enrollments reports zero counts and zero averages.
func (s *ReportService) CourseStatistics(ctx context.Context, courseID int64) (*models.CourseStatistics, error) {
	if _, err := s.courses.FindByID(ctx, courseID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Storage(err, "failed to load course")
	}

	stats, err := s.repo.CourseStatistics(ctx, courseID)
	if err != nil {
		return nil, appErrors.Storage(err, "failed to compute course statistics")
	}
	stats.AverageGrade = round2(stats.AverageGrade)
	stats.AverageProgress = round2(stats.AverageProgress)
	return stats, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ActivityLogs returns recent audit entries, newest first.
func (s *ReportService) ActivityLogs(ctx context.Context, filter models.AuditFilter) ([]models.AuditLog, error) {
	if s.audits == nil {
		return nil, nil
	}
	entries, err := s.audits.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Storage(err, "failed to list activity logs")
	}
	return entries, nil
}
