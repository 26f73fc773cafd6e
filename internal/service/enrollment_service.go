package service

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/trainup/training-api/internal/models"
	"github.com/trainup/training-api/internal/repository"
	"github.com/trainup/training-api/internal/validation"
	"github.com/trainup/training-api/pkg/config"
	appErrors "github.com/trainup/training-api/pkg/errors"
	"github.com/trainup/training-api/pkg/export"
)

type enrollmentRepository interface {
	Create(ctx context.Context, enrollment *models.Enrollment) error
	FindByID(ctx context.Context, id int64) (*models.Enrollment, error)
	UpdateProgress(ctx context.Context, id int64, progress float64, status models.EnrollmentStatus, completionDate *time.Time) error
	UpdateGrade(ctx context.Context, id int64, grade float64) error
	List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error)
	ExportRows(ctx context.Context, courseID int64) ([]models.ExportRow, error)
}

type enrollmentStudentReader interface {
	FindByID(ctx context.Context, id int64) (*models.Student, error)
}

type enrollmentCourseReader interface {
	FindByID(ctx context.Context, id int64) (*models.Course, error)
}

// EnrollRequest asks for one student to take one course.
type EnrollRequest struct {
	StudentID int64 `json:"student_id" validate:"required,gt=0"`
	CourseID  int64 `json:"course_id" validate:"required,gt=0"`
}

// EnrollmentService manages enrollment lifecycle and seat allocation.
type EnrollmentService struct {
	repo      enrollmentRepository
	students  enrollmentStudentReader
	courses   enrollmentCourseReader
	cfg       config.EnrollmentsConfig
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewEnrollmentService constructs EnrollmentService.
func NewEnrollmentService(repo enrollmentRepository, students enrollmentStudentReader, courses enrollmentCourseReader,
	cfg config.EnrollmentsConfig, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if cfg.ExpectedCompletionDays <= 0 {
		cfg.ExpectedCompletionDays = 90
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{
		repo:      repo,
		students:  students,
		courses:   courses,
		cfg:       cfg,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Enroll seats a student in a course. The student must be active and
// the course must be open; capacity and pair uniqueness are enforced
// atomically by the repository under a course row lock.
func (s *EnrollmentService) Enroll(ctx context.Context, req EnrollRequest) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}

	student, err := s.students.FindByID(ctx, req.StudentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Storage(err, "failed to load student")
	}
	if student.Status != models.StudentStatusActive {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student is not active")
	}

	course, err := s.courses.FindByID(ctx, req.CourseID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Storage(err, "failed to load course")
	}
	if !course.IsActive {
		return nil, appErrors.Clone(appErrors.ErrValidation, "course is not open for enrollment")
	}

	enrolledAt := s.now()
	expected := enrolledAt.AddDate(0, 0, s.cfg.ExpectedCompletionDays)
	enrollment := &models.Enrollment{
		StudentID:          req.StudentID,
		CourseID:           req.CourseID,
		EnrollmentDate:     enrolledAt,
		ExpectedCompletion: &expected,
		Status:             models.EnrollmentStatusEnrolled,
	}
	if err := s.repo.Create(ctx, enrollment); err != nil {
		if appErr := appErrors.FromError(err); appErr.Code != appErrors.ErrInternal.Code {
			return nil, appErr
		}
		return nil, appErrors.Storage(err, "failed to create enrollment")
	}

	s.metrics.RecordEnrollmentCreated()
	s.logger.Info("student enrolled",
		zap.Int64("enrollment_id", enrollment.ID),
		zap.Int64("student_id", req.StudentID),
		zap.Int64("course_id", req.CourseID))
	return enrollment, nil
}

// Get returns an enrollment by id.
func (s *EnrollmentService) Get(ctx context.Context, id int64) (*models.Enrollment, error) {
	enrollment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Storage(err, "failed to load enrollment")
	}
	return enrollment, nil
}

// UpdateProgress records a progress percentage and derives the status
// from it. Reaching 100 marks the enrollment completed and stamps the
// completion date; partial progress moves it to in_progress; zero
// leaves the current status in place. Dropped and failed enrollments
// refuse progress updates unless terminal overwrites are enabled.
func (s *EnrollmentService) UpdateProgress(ctx context.Context, id int64, progress float64) (*models.Enrollment, error) {
	if !validation.Progress(progress) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "progress must be between 0 and 100")
	}

	enrollment, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if enrollment.Status.Terminal() && !s.cfg.OverwriteTerminalStatus {
		return nil, appErrors.ErrTerminalEnrollment
	}

	status := enrollment.Status
	if status.Terminal() {
		status = models.EnrollmentStatusEnrolled
	}
	completionDate := enrollment.CompletionDate
	switch {
	case progress >= 100:
		status = models.EnrollmentStatusCompleted
		if completionDate == nil {
			done := s.now()
			completionDate = &done
		}
	case progress > 0:
		status = models.EnrollmentStatusInProgress
		completionDate = nil
	}

	if err := s.repo.UpdateProgress(ctx, id, progress, status, completionDate); err != nil {
		if err == repository.ErrNoRowsAffected {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Storage(err, "failed to update progress")
	}

	enrollment.Progress = progress
	enrollment.Status = status
	enrollment.CompletionDate = completionDate
	s.logger.Info("progress updated",
		zap.Int64("enrollment_id", id),
		zap.Float64("progress", progress),
		zap.String("status", string(status)))
	return enrollment, nil
}

// Drop marks an enrollment as dropped, releasing its course seat.
func (s *EnrollmentService) Drop(ctx context.Context, id int64) (*models.Enrollment, error) {
	enrollment, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if enrollment.Status == models.EnrollmentStatusCompleted {
		return nil, appErrors.Clone(appErrors.ErrValidation, "completed enrollments cannot be dropped")
	}
	if enrollment.Status.Terminal() {
		return nil, appErrors.ErrTerminalEnrollment
	}
	if err := s.repo.UpdateProgress(ctx, id, enrollment.Progress, models.EnrollmentStatusDropped, enrollment.CompletionDate); err != nil {
		return nil, appErrors.Storage(err, "failed to drop enrollment")
	}
	enrollment.Status = models.EnrollmentStatusDropped
	s.logger.Info("enrollment dropped", zap.Int64("enrollment_id", id))
	return enrollment, nil
}

// RecordGrade stores a final grade for an enrollment.
func (s *EnrollmentService) RecordGrade(ctx context.Context, id int64, grade float64) (*models.Enrollment, error) {
	if !validation.Grade(grade) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "grade must be between 0 and 100")
	}
	enrollment, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateGrade(ctx, id, grade); err != nil {
		if err == repository.ErrNoRowsAffected {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Storage(err, "failed to record grade")
	}
	enrollment.Grade = &grade
	return enrollment, nil
}

// List returns enrollments with student and course context.
func (s *EnrollmentService) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, *models.Pagination, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown enrollment status")
	}
	enrollments, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Storage(err, "failed to list enrollments")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 50
	}
	return enrollments, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// ExportCSV renders the per-course enrollment dump: one row per
// enrollment with name, email, status, progress and grade. A missing
// grade exports as an empty cell.
func (s *EnrollmentService) ExportCSV(ctx context.Context, courseID int64) ([]byte, error) {
	rows, err := s.repo.ExportRows(ctx, courseID)
	if err != nil {
		return nil, appErrors.Storage(err, "failed to export enrollments")
	}

	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		grade := ""
		if row.Grade != nil {
			grade = strconv.FormatFloat(*row.Grade, 'f', -1, 64)
		}
		records = append(records, []string{
			row.Name,
			row.Email,
			row.Status,
			strconv.FormatFloat(row.Progress, 'f', -1, 64),
			grade,
		})
	}

	exporter := export.NewCSVExporter()
	data, err := exporter.Render([]string{"name", "email", "status", "progress", "grade"}, records)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
	}
	return data, nil
}
