package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/trainup/training-api/internal/models"
	appErrors "github.com/trainup/training-api/pkg/errors"
)

type mockCourseRepo struct {
	course     *models.Course
	created    *models.Course
	updated    *models.Course
	active     int
	activeErr  error
	courses    []models.Course
	listErr    error
	findErr    error
	createErr  error
	updateErr  error
	countCalls int
}

func (m *mockCourseRepo) Create(ctx context.Context, course *models.Course) error {
	if m.createErr != nil {
		return m.createErr
	}
	course.ID = 2
	m.created = course
	return nil
}

func (m *mockCourseRepo) FindByID(ctx context.Context, id int64) (*models.Course, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	if m.course == nil {
		return nil, sql.ErrNoRows
	}
	copied := *m.course
	return &copied, nil
}

func (m *mockCourseRepo) Update(ctx context.Context, course *models.Course) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updated = course
	return nil
}

func (m *mockCourseRepo) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error) {
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	return m.courses, len(m.courses), nil
}

func (m *mockCourseRepo) CountActiveEnrollments(ctx context.Context, courseID int64) (int, error) {
	m.countCalls++
	if m.activeErr != nil {
		return 0, m.activeErr
	}
	return m.active, nil
}

func TestCourseServiceCreateDefaultsCategory(t *testing.T) {
	repo := &mockCourseRepo{}
	svc := NewCourseService(repo, nil, zap.NewNop())

	course, err := svc.Create(context.Background(), CreateCourseRequest{
		Title:         "Go Fundamentals",
		DurationHours: 40,
		MaxStudents:   30,
	})
	require.NoError(t, err)
	assert.Equal(t, models.CourseCategoryOther, course.Category)
	assert.True(t, course.IsActive)
	assert.Equal(t, int64(2), course.ID)
}

func TestCourseServiceCreateRejectsUnknownCategory(t *testing.T) {
	svc := NewCourseService(&mockCourseRepo{}, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), CreateCourseRequest{
		Title:         "Go Fundamentals",
		DurationHours: 40,
		MaxStudents:   30,
		Category:      "cooking",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCourseServiceCreateDuplicateTitle(t *testing.T) {
	repo := &mockCourseRepo{createErr: &pq.Error{Code: "23505", Constraint: "courses_title_key"}}
	svc := NewCourseService(repo, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), CreateCourseRequest{
		Title:         "Go Fundamentals",
		DurationHours: 40,
		MaxStudents:   30,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestCourseServiceUpdateDuplicateTitle(t *testing.T) {
	repo := &mockCourseRepo{
		course:    &models.Course{ID: 2, Title: "Go Fundamentals", MaxStudents: 30, IsActive: true},
		updateErr: &pq.Error{Code: "23505", Constraint: "courses_title_key"},
	}
	svc := NewCourseService(repo, nil, zap.NewNop())

	taken := "Advanced Go"
	_, err := svc.Update(context.Background(), 2, UpdateCourseRequest{Title: &taken})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestCourseServiceCreateRequiresCapacity(t *testing.T) {
	svc := NewCourseService(&mockCourseRepo{}, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), CreateCourseRequest{Title: "Go", DurationHours: 40})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCourseServiceUpdateShrinkBelowActiveRefused(t *testing.T) {
	repo := &mockCourseRepo{
		course: &models.Course{ID: 2, Title: "Go Fundamentals", MaxStudents: 30, IsActive: true},
		active: 12,
	}
	svc := NewCourseService(repo, nil, zap.NewNop())

	smaller := 10
	_, err := svc.Update(context.Background(), 2, UpdateCourseRequest{MaxStudents: &smaller})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Nil(t, repo.updated)
}

func TestCourseServiceUpdateGrow(t *testing.T) {
	repo := &mockCourseRepo{
		course: &models.Course{ID: 2, Title: "Go Fundamentals", MaxStudents: 30, IsActive: true},
		active: 12,
	}
	svc := NewCourseService(repo, nil, zap.NewNop())

	larger := 50
	course, err := svc.Update(context.Background(), 2, UpdateCourseRequest{MaxStudents: &larger})
	require.NoError(t, err)
	assert.Equal(t, 50, course.MaxStudents)
	require.NotNil(t, repo.updated)
}

func TestCourseServiceAvailability(t *testing.T) {
	repo := &mockCourseRepo{
		course: &models.Course{ID: 2, MaxStudents: 30, IsActive: true},
		active: 28,
	}
	svc := NewCourseService(repo, nil, zap.NewNop())

	availability, err := svc.Availability(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 30, availability.MaxStudents)
	assert.Equal(t, 28, availability.ActiveStudents)
	assert.Equal(t, 2, availability.AvailableSeats)
}

func TestCourseServiceAvailabilityNotFound(t *testing.T) {
	svc := NewCourseService(&mockCourseRepo{}, nil, zap.NewNop())

	_, err := svc.Availability(context.Background(), 99)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
