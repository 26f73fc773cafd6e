package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/trainup/training-api/internal/models"
	appErrors "github.com/trainup/training-api/pkg/errors"
)

type attendanceRepository interface {
	RecordAttendance(ctx context.Context, att *models.Attendance) error
	ListAttendance(ctx context.Context, enrollmentID int64) ([]models.Attendance, error)
	RecordAssessment(ctx context.Context, assessment *models.Assessment) error
	ListAssessments(ctx context.Context, enrollmentID int64) ([]models.Assessment, error)
}

type attendanceEnrollmentReader interface {
	Get(ctx context.Context, id int64) (*models.Enrollment, error)
}

// RecordAttendanceRequest marks presence for one class date.
type RecordAttendanceRequest struct {
	ClassDate     string  `json:"class_date" validate:"required"`
	Present       bool    `json:"present"`
	Justification *string `json:"justification,omitempty"`
	Notes         *string `json:"notes,omitempty"`
}

// RecordAssessmentRequest registers one evaluation event.
type RecordAssessmentRequest struct {
	AssessmentType string  `json:"assessment_type" validate:"required"`
	AssessmentDate string  `json:"assessment_date" validate:"required"`
	Score          float64 `json:"score"`
	MaxScore       float64 `json:"max_score" validate:"required,gt=0"`
	Feedback       *string `json:"feedback,omitempty"`
}

// AttendanceService manages per-class attendance and assessment events
// attached to enrollments.
type AttendanceService struct {
	repo        attendanceRepository
	enrollments attendanceEnrollmentReader
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewAttendanceService constructs AttendanceService.
func NewAttendanceService(repo attendanceRepository, enrollments attendanceEnrollmentReader,
	validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{repo: repo, enrollments: enrollments, validator: validate, logger: logger}
}

// RecordAttendance appends an attendance row for an enrollment. The
// parent's attendance percentage is recomputed in the same transaction.
func (s *AttendanceService) RecordAttendance(ctx context.Context, enrollmentID int64, req RecordAttendanceRequest) (*models.Attendance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	classDate, err := time.Parse("2006-01-02", req.ClassDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid class date, want YYYY-MM-DD")
	}
	enrollment, err := s.enrollments.Get(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	if enrollment.Status.Terminal() {
		return nil, appErrors.ErrTerminalEnrollment
	}

	att := &models.Attendance{
		EnrollmentID:  enrollmentID,
		ClassDate:     classDate,
		Present:       req.Present,
		Justification: req.Justification,
		Notes:         req.Notes,
	}
	if err := s.repo.RecordAttendance(ctx, att); err != nil {
		return nil, appErrors.Storage(err, "failed to record attendance")
	}
	s.logger.Info("attendance recorded",
		zap.Int64("enrollment_id", enrollmentID),
		zap.String("class_date", req.ClassDate),
		zap.Bool("present", req.Present))
	return att, nil
}

// ListAttendance returns the attendance history of an enrollment.
func (s *AttendanceService) ListAttendance(ctx context.Context, enrollmentID int64) ([]models.Attendance, error) {
	if _, err := s.enrollments.Get(ctx, enrollmentID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListAttendance(ctx, enrollmentID)
	if err != nil {
		return nil, appErrors.Storage(err, "failed to list attendance")
	}
	return rows, nil
}

// RecordAssessment appends an assessment event for an enrollment.
func (s *AttendanceService) RecordAssessment(ctx context.Context, enrollmentID int64, req RecordAssessmentRequest) (*models.Assessment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assessment payload")
	}
	if req.Score < 0 || req.Score > req.MaxScore {
		return nil, appErrors.Clone(appErrors.ErrValidation, "score must be between 0 and max score")
	}
	assessmentDate, err := time.Parse("2006-01-02", req.AssessmentDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid assessment date, want YYYY-MM-DD")
	}
	enrollment, err := s.enrollments.Get(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	if enrollment.Status.Terminal() {
		return nil, appErrors.ErrTerminalEnrollment
	}

	assessment := &models.Assessment{
		EnrollmentID:   enrollmentID,
		AssessmentType: req.AssessmentType,
		AssessmentDate: assessmentDate,
		Score:          req.Score,
		MaxScore:       req.MaxScore,
		Feedback:       req.Feedback,
	}
	if err := s.repo.RecordAssessment(ctx, assessment); err != nil {
		return nil, appErrors.Storage(err, "failed to record assessment")
	}
	s.logger.Info("assessment recorded",
		zap.Int64("enrollment_id", enrollmentID),
		zap.String("type", req.AssessmentType))
	return assessment, nil
}

// ListAssessments returns the assessment history of an enrollment.
func (s *AttendanceService) ListAssessments(ctx context.Context, enrollmentID int64) ([]models.Assessment, error) {
	if _, err := s.enrollments.Get(ctx, enrollmentID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListAssessments(ctx, enrollmentID)
	if err != nil {
		return nil, appErrors.Storage(err, "failed to list assessments")
	}
	return rows, nil
}
