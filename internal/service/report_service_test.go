package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/trainup/training-api/internal/models"
	appErrors "github.com/trainup/training-api/pkg/errors"
)

type mockReportRepo struct {
	stats *models.CourseStatistics
	err   error
	calls int
}

func (m *mockReportRepo) CourseStatistics(ctx context.Context, courseID int64) (*models.CourseStatistics, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.stats, nil
}

func TestReportServiceCourseStatisticsRounds(t *testing.T) {
	repo := &mockReportRepo{stats: &models.CourseStatistics{
		CourseID:      2,
		TotalStudents: 3,
		StatusBreakdown: map[models.EnrollmentStatus]int{
			models.EnrollmentStatusCompleted:  2,
			models.EnrollmentStatusInProgress: 1,
		},
		AverageGrade:    86.666666,
		AverageProgress: 83.333333,
	}}
	courses := &mockCourseReader{course: &models.Course{ID: 2, Title: "Go Fundamentals"}}
	svc := NewReportService(repo, courses, nil, zap.NewNop())

	stats, err := svc.CourseStatistics(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 86.67, stats.AverageGrade)
	assert.Equal(t, 83.33, stats.AverageProgress)
	assert.Equal(t, 3, stats.TotalStudents)
	assert.Equal(t, 2, stats.StatusBreakdown[models.EnrollmentStatusCompleted])
}

func TestReportServiceCourseStatisticsRecomputes(t *testing.T) {
	repo := &mockReportRepo{stats: &models.CourseStatistics{CourseID: 2, StatusBreakdown: map[models.EnrollmentStatus]int{}}}
	courses := &mockCourseReader{course: &models.Course{ID: 2}}
	svc := NewReportService(repo, courses, nil, zap.NewNop())

	_, err := svc.CourseStatistics(context.Background(), 2)
	require.NoError(t, err)
	_, err = svc.CourseStatistics(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.calls)
}

func TestReportServiceCourseStatisticsUnknownCourse(t *testing.T) {
	svc := NewReportService(&mockReportRepo{}, &mockCourseReader{err: sql.ErrNoRows}, nil, zap.NewNop())

	_, err := svc.CourseStatistics(context.Background(), 99)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestReportServiceCourseStatisticsEmptyCourse(t *testing.T) {
	repo := &mockReportRepo{stats: &models.CourseStatistics{
		CourseID:        2,
		StatusBreakdown: map[models.EnrollmentStatus]int{},
	}}
	courses := &mockCourseReader{course: &models.Course{ID: 2}}
	svc := NewReportService(repo, courses, nil, zap.NewNop())

	stats, err := svc.CourseStatistics(context.Background(), 2)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalStudents)
	assert.Zero(t, stats.AverageGrade)
	assert.Zero(t, stats.AverageProgress)
	assert.Empty(t, stats.StatusBreakdown)
}
