package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/trainup/training-api/internal/models"
	"github.com/trainup/training-api/internal/service"
	"github.com/trainup/training-api/pkg/response"
)

type studentRepoStub struct {
	student *models.Student
}

func (s *studentRepoStub) Create(ctx context.Context, student *models.Student) error {
	student.ID = 1
	return nil
}

func (s *studentRepoStub) FindByID(ctx context.Context, id int64) (*models.Student, error) {
	if s.student == nil {
		return nil, sql.ErrNoRows
	}
	copied := *s.student
	return &copied, nil
}

func (s *studentRepoStub) FindByEmail(ctx context.Context, email string) (*models.Student, error) {
	if s.student == nil {
		return nil, sql.ErrNoRows
	}
	return s.student, nil
}

func (s *studentRepoStub) Update(ctx context.Context, student *models.Student) error {
	return nil
}

func (s *studentRepoStub) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	return nil, 0, nil
}

func newGinContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func TestStudentHandlerRegister(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewStudentHandler(service.NewStudentService(&studentRepoStub{}, nil, zap.NewNop()))

	payload, _ := json.Marshal(service.RegisterStudentRequest{Name: "Ana Souza", Email: "ana@example.com"})
	c, w := newGinContext(http.MethodPost, "/students", payload)

	handler.Register(c)
	require.Equal(t, http.StatusCreated, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Nil(t, envelope.Error)
}

func TestStudentHandlerRegisterInvalidEmail(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewStudentHandler(service.NewStudentService(&studentRepoStub{}, nil, zap.NewNop()))

	payload, _ := json.Marshal(service.RegisterStudentRequest{Name: "Ana Souza", Email: "bad"})
	c, w := newGinContext(http.MethodPost, "/students", payload)

	handler.Register(c)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "VALIDATION_ERROR", envelope.Error.Code)
}

func TestStudentHandlerGetNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewStudentHandler(service.NewStudentService(&studentRepoStub{}, nil, zap.NewNop()))

	c, w := newGinContext(http.MethodGet, "/students/9", nil)
	c.Params = gin.Params{{Key: "id", Value: "9"}}

	handler.Get(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestStudentHandlerGetBadID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewStudentHandler(service.NewStudentService(&studentRepoStub{}, nil, zap.NewNop()))

	c, w := newGinContext(http.MethodGet, "/students/abc", nil)
	c.Params = gin.Params{{Key: "id", Value: "abc"}}

	handler.Get(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
