package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/trainup/training-api/internal/models"
	"github.com/trainup/training-api/pkg/config"
	appErrors "github.com/trainup/training-api/pkg/errors"
)

type mockAttendanceRepo struct {
	attendance    []models.Attendance
	assessments   []models.Assessment
	recordErr     error
	assessErr     error
	recordedAtt   *models.Attendance
	recordedAsmnt *models.Assessment
}

func (m *mockAttendanceRepo) RecordAttendance(ctx context.Context, att *models.Attendance) error {
	if m.recordErr != nil {
		return m.recordErr
	}
	att.ID = 5
	m.recordedAtt = att
	return nil
}

func (m *mockAttendanceRepo) ListAttendance(ctx context.Context, enrollmentID int64) ([]models.Attendance, error) {
	return m.attendance, nil
}

func (m *mockAttendanceRepo) RecordAssessment(ctx context.Context, assessment *models.Assessment) error {
	if m.assessErr != nil {
		return m.assessErr
	}
	assessment.ID = 6
	m.recordedAsmnt = assessment
	return nil
}

func (m *mockAttendanceRepo) ListAssessments(ctx context.Context, enrollmentID int64) ([]models.Assessment, error) {
	return m.assessments, nil
}

func newAttendanceService(repo *mockAttendanceRepo, enrollment *models.Enrollment) *AttendanceService {
	enrollments := newEnrollmentService(&mockEnrollmentRepo{enrollment: enrollment}, nil, nil, config.EnrollmentsConfig{})
	return NewAttendanceService(repo, enrollments, nil, zap.NewNop())
}

func TestAttendanceServiceRecordAttendance(t *testing.T) {
	repo := &mockAttendanceRepo{}
	svc := newAttendanceService(repo, &models.Enrollment{ID: 7, Status: models.EnrollmentStatusInProgress})

	att, err := svc.RecordAttendance(context.Background(), 7, RecordAttendanceRequest{
		ClassDate: "2026-03-10",
		Present:   true,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), att.ID)
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), att.ClassDate)
	assert.True(t, att.Present)
}

func TestAttendanceServiceRecordAttendanceBadDate(t *testing.T) {
	svc := newAttendanceService(&mockAttendanceRepo{}, &models.Enrollment{ID: 7, Status: models.EnrollmentStatusEnrolled})

	_, err := svc.RecordAttendance(context.Background(), 7, RecordAttendanceRequest{ClassDate: "10/03/2026"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAttendanceServiceRecordAttendanceTerminalRefused(t *testing.T) {
	repo := &mockAttendanceRepo{}
	svc := newAttendanceService(repo, &models.Enrollment{ID: 7, Status: models.EnrollmentStatusDropped})

	_, err := svc.RecordAttendance(context.Background(), 7, RecordAttendanceRequest{ClassDate: "2026-03-10"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrTerminalEnrollment.Code, appErrors.FromError(err).Code)
	assert.Nil(t, repo.recordedAtt)
}

func TestAttendanceServiceRecordAssessment(t *testing.T) {
	repo := &mockAttendanceRepo{}
	svc := newAttendanceService(repo, &models.Enrollment{ID: 7, Status: models.EnrollmentStatusInProgress})

	assessment, err := svc.RecordAssessment(context.Background(), 7, RecordAssessmentRequest{
		AssessmentType: "final_exam",
		AssessmentDate: "2026-06-01",
		Score:          18,
		MaxScore:       20,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(6), assessment.ID)
	assert.Equal(t, 18.0, assessment.Score)
}

func TestAttendanceServiceRecordAssessmentScoreAboveMax(t *testing.T) {
	svc := newAttendanceService(&mockAttendanceRepo{}, &models.Enrollment{ID: 7, Status: models.EnrollmentStatusInProgress})

	_, err := svc.RecordAssessment(context.Background(), 7, RecordAssessmentRequest{
		AssessmentType: "quiz",
		AssessmentDate: "2026-06-01",
		Score:          25,
		MaxScore:       20,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAttendanceServiceListUnknownEnrollment(t *testing.T) {
	svc := newAttendanceService(&mockAttendanceRepo{}, nil)

	_, err := svc.ListAttendance(context.Background(), 99)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
