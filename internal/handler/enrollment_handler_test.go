package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/trainup/training-api/internal/models"
	"github.com/trainup/training-api/internal/service"
	"github.com/trainup/training-api/pkg/config"
	"github.com/trainup/training-api/pkg/response"
)

type enrollmentRepoStub struct {
	enrollment *models.Enrollment
	progressed bool
}

func (s *enrollmentRepoStub) Create(ctx context.Context, enrollment *models.Enrollment) error {
	enrollment.ID = 7
	return nil
}

func (s *enrollmentRepoStub) FindByID(ctx context.Context, id int64) (*models.Enrollment, error) {
	if s.enrollment == nil {
		return nil, sql.ErrNoRows
	}
	copied := *s.enrollment
	return &copied, nil
}

func (s *enrollmentRepoStub) UpdateProgress(ctx context.Context, id int64, progress float64, status models.EnrollmentStatus, completionDate *time.Time) error {
	s.progressed = true
	return nil
}

func (s *enrollmentRepoStub) UpdateGrade(ctx context.Context, id int64, grade float64) error {
	return nil
}

func (s *enrollmentRepoStub) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error) {
	return nil, 0, nil
}

func (s *enrollmentRepoStub) ExportRows(ctx context.Context, courseID int64) ([]models.ExportRow, error) {
	grade := 91.0
	return []models.ExportRow{
		{Name: "Ana Souza", Email: "ana@example.com", Status: "completed", Progress: 100, Grade: &grade},
	}, nil
}

type courseReaderStub struct {
	course *models.Course
}

func (s *courseReaderStub) FindByID(ctx context.Context, id int64) (*models.Course, error) {
	if s.course == nil {
		return nil, sql.ErrNoRows
	}
	return s.course, nil
}

func newEnrollmentHandler(repo *enrollmentRepoStub) *EnrollmentHandler {
	students := &studentRepoStub{student: &models.Student{ID: 1, Status: models.StudentStatusActive}}
	courses := &courseReaderStub{course: &models.Course{ID: 2, MaxStudents: 30, IsActive: true}}
	enrollments := service.NewEnrollmentService(repo, students, courses, config.EnrollmentsConfig{}, nil, nil, zap.NewNop())
	return NewEnrollmentHandler(enrollments, nil)
}

func TestEnrollmentHandlerCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newEnrollmentHandler(&enrollmentRepoStub{})

	payload, _ := json.Marshal(service.EnrollRequest{StudentID: 1, CourseID: 2})
	c, w := newGinContext(http.MethodPost, "/enrollments", payload)

	handler.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)
}

func TestEnrollmentHandlerUpdateProgressTerminal(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &enrollmentRepoStub{enrollment: &models.Enrollment{ID: 7, Status: models.EnrollmentStatusDropped}}
	handler := newEnrollmentHandler(repo)

	payload, _ := json.Marshal(map[string]float64{"progress": 50})
	c, w := newGinContext(http.MethodPut, "/enrollments/7/progress", payload)
	c.Params = gin.Params{{Key: "id", Value: "7"}}

	handler.UpdateProgress(c)
	require.Equal(t, http.StatusPreconditionFailed, w.Code)
	assert.False(t, repo.progressed)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "ENROLLMENT_TERMINAL", envelope.Error.Code)
}

func TestEnrollmentHandlerExportCSV(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newEnrollmentHandler(&enrollmentRepoStub{})

	c, w := newGinContext(http.MethodGet, "/courses/2/enrollments/export", nil)
	c.Params = gin.Params{{Key: "courseId", Value: "2"}}

	handler.ExportCSV(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "course-2-enrollments.csv")
	assert.Contains(t, w.Body.String(), "ana@example.com")
}
