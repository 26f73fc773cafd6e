package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/trainup/training-api/internal/models"
	"github.com/trainup/training-api/pkg/config"
	appErrors "github.com/trainup/training-api/pkg/errors"
)

type mockCertificationRepo struct {
	createCalls int
	failures    int
	createErr   error
	created     *models.Certification
	detail      *models.CertificationDetail
	findCalls   int
	findErr     error
}

func (m *mockCertificationRepo) Create(ctx context.Context, cert *models.Certification) error {
	m.createCalls++
	if m.createCalls <= m.failures {
		return appErrors.ErrDuplicateCertificate
	}
	if m.createErr != nil {
		return m.createErr
	}
	cert.ID = 10
	m.created = cert
	return nil
}

func (m *mockCertificationRepo) FindByID(ctx context.Context, id int64) (*models.CertificationDetail, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.detail, nil
}

func (m *mockCertificationRepo) FindByVerificationCode(ctx context.Context, code string) (*models.CertificationDetail, error) {
	m.findCalls++
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.detail, nil
}

func (m *mockCertificationRepo) ListByEnrollment(ctx context.Context, enrollmentID int64) ([]models.Certification, error) {
	if m.created == nil {
		return nil, nil
	}
	return []models.Certification{*m.created}, nil
}

type stubCacheRepo struct {
	store map[string][]byte
}

func (s *stubCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	payload, ok := s.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (s *stubCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if s.store == nil {
		s.store = make(map[string][]byte)
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.store[key] = payload
	return nil
}

func newCertificationService(repo *mockCertificationRepo, enrollment *models.Enrollment, cfg config.CertificatesConfig) *CertificationService {
	reader := &mockEnrollmentRepo{enrollment: enrollment}
	cache := NewCacheService(&stubCacheRepo{}, time.Minute, zap.NewNop())
	return NewCertificationService(repo, reader, cache, cfg, NewMetricsService(), zap.NewNop())
}

func completedEnrollment() *models.Enrollment {
	return &models.Enrollment{ID: 7, StudentID: 1, CourseID: 2, Status: models.EnrollmentStatusCompleted, Progress: 100}
}

func TestCertificationServiceIssue(t *testing.T) {
	repo := &mockCertificationRepo{}
	svc := newCertificationService(repo, completedEnrollment(), config.CertificatesConfig{Issuer: "TrainUp Academy"})
	issued := time.Date(2026, 7, 1, 10, 20, 30, 0, time.UTC)
	svc.now = func() time.Time { return issued }

	cert, err := svc.Issue(context.Background(), 7, "")
	require.NoError(t, err)
	assert.Equal(t, int64(10), cert.ID)
	assert.Equal(t, "TrainUp Academy", cert.IssuedBy)
	assert.Equal(t, issued, cert.IssueDate)
	assert.Nil(t, cert.ExpiryDate)
	assert.Regexp(t, regexp.MustCompile(`^CERT-7-20260701102030-[0-9A-F]{4}$`), cert.CertificateNumber)
	assert.Regexp(t, regexp.MustCompile(`^[0-9A-F]{16}$`), cert.VerificationCode)
}

func TestCertificationServiceIssueNamedIssuer(t *testing.T) {
	repo := &mockCertificationRepo{}
	svc := newCertificationService(repo, completedEnrollment(), config.CertificatesConfig{Issuer: "TrainUp Academy"})

	cert, err := svc.Issue(context.Background(), 7, "Carla Mendes")
	require.NoError(t, err)
	assert.Equal(t, "Carla Mendes", cert.IssuedBy)
}

func TestCertificationServiceIssueSetsExpiry(t *testing.T) {
	repo := &mockCertificationRepo{}
	svc := newCertificationService(repo, completedEnrollment(), config.CertificatesConfig{ValidityDays: 365})
	issued := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issued }

	cert, err := svc.Issue(context.Background(), 7, "")
	require.NoError(t, err)
	require.NotNil(t, cert.ExpiryDate)
	assert.Equal(t, issued.AddDate(0, 0, 365), *cert.ExpiryDate)
}

func TestCertificationServiceIssueNotCompleted(t *testing.T) {
	enrollment := completedEnrollment()
	enrollment.Status = models.EnrollmentStatusInProgress
	svc := newCertificationService(&mockCertificationRepo{}, enrollment, config.CertificatesConfig{})

	_, err := svc.Issue(context.Background(), 7, "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrEnrollmentNotCompleted.Code, appErrors.FromError(err).Code)
}

func TestCertificationServiceIssueMissingEnrollment(t *testing.T) {
	svc := newCertificationService(&mockCertificationRepo{}, nil, config.CertificatesConfig{})

	_, err := svc.Issue(context.Background(), 7, "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestCertificationServiceIssueRetriesOnCollision(t *testing.T) {
	repo := &mockCertificationRepo{failures: 2}
	svc := newCertificationService(repo, completedEnrollment(), config.CertificatesConfig{IssueAttempts: 5})

	cert, err := svc.Issue(context.Background(), 7, "")
	require.NoError(t, err)
	assert.Equal(t, 3, repo.createCalls)
	assert.NotEmpty(t, cert.CertificateNumber)
}

func TestCertificationServiceIssueExhaustsRetries(t *testing.T) {
	repo := &mockCertificationRepo{failures: 10}
	svc := newCertificationService(repo, completedEnrollment(), config.CertificatesConfig{IssueAttempts: 3})

	_, err := svc.Issue(context.Background(), 7, "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrCertificateGeneration.Code, appErrors.FromError(err).Code)
	assert.Equal(t, 3, repo.createCalls)
}

func TestCertificationServiceVerifyCaches(t *testing.T) {
	detail := &models.CertificationDetail{
		Certification: models.Certification{
			ID:               10,
			EnrollmentID:     7,
			VerificationCode: "ABCDEF0123456789",
		},
		StudentName: "Ana Souza",
		CourseTitle: "Go Fundamentals",
	}
	repo := &mockCertificationRepo{detail: detail}
	svc := newCertificationService(repo, completedEnrollment(), config.CertificatesConfig{VerifyCacheTTL: time.Minute})

	first, err := svc.Verify(context.Background(), "abcdef0123456789")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.findCalls)
	assert.Equal(t, "Ana Souza", first.StudentName)

	second, err := svc.Verify(context.Background(), "ABCDEF0123456789")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.findCalls)
	assert.Equal(t, first.ID, second.ID)
}

func TestCertificationServiceVerifyNotFound(t *testing.T) {
	repo := &mockCertificationRepo{findErr: sql.ErrNoRows}
	svc := newCertificationService(repo, completedEnrollment(), config.CertificatesConfig{})

	_, err := svc.Verify(context.Background(), "FFFFFFFFFFFFFFFF")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestCertificationServiceVerifyBlankCode(t *testing.T) {
	svc := newCertificationService(&mockCertificationRepo{}, completedEnrollment(), config.CertificatesConfig{})

	_, err := svc.Verify(context.Background(), "   ")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCertificationServiceRenderPDF(t *testing.T) {
	detail := &models.CertificationDetail{
		Certification: models.Certification{
			ID:                10,
			CertificateNumber: "CERT-7-20260701102030-AB12",
			VerificationCode:  "ABCDEF0123456789",
			IssuedBy:          "TrainUp Academy",
			IssueDate:         time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
		},
		StudentName: "Ana Souza",
		CourseTitle: "Go Fundamentals",
	}
	svc := newCertificationService(&mockCertificationRepo{detail: detail}, completedEnrollment(), config.CertificatesConfig{})

	data, err := svc.RenderPDF(context.Background(), 10)
	require.NoError(t, err)
	assert.True(t, len(data) > 0)
	assert.Equal(t, "%PDF", string(data[:4]))
}
