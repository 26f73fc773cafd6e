package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/trainup/training-api/internal/models"
	"github.com/trainup/training-api/pkg/config"
	appErrors "github.com/trainup/training-api/pkg/errors"
	"github.com/trainup/training-api/pkg/export"
)

type certificationRepository interface {
	Create(ctx context.Context, cert *models.Certification) error
	FindByID(ctx context.Context, id int64) (*models.CertificationDetail, error)
	FindByVerificationCode(ctx context.Context, code string) (*models.CertificationDetail, error)
	ListByEnrollment(ctx context.Context, enrollmentID int64) ([]models.Certification, error)
}

type certificationEnrollmentReader interface {
	FindByID(ctx context.Context, id int64) (*models.Enrollment, error)
}

// CertificationService issues and verifies completion certificates.
type CertificationService struct {
	repo        certificationRepository
	enrollments certificationEnrollmentReader
	cache       *CacheService
	cfg         config.CertificatesConfig
	metrics     *MetricsService
	pdf         *export.CertificatePDFExporter
	logger      *zap.Logger
	now         func() time.Time
}

// NewCertificationService constructs CertificationService.
func NewCertificationService(repo certificationRepository, enrollments certificationEnrollmentReader,
	cache *CacheService, cfg config.CertificatesConfig, metrics *MetricsService, logger *zap.Logger) *CertificationService {
	if cfg.Issuer == "" {
		cfg.Issuer = "Training System"
	}
	if cfg.IssueAttempts <= 0 {
		cfg.IssueAttempts = 5
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CertificationService{
		repo:        repo,
		enrollments: enrollments,
		cache:       cache,
		cfg:         cfg,
		metrics:     metrics,
		pdf:         export.NewCertificatePDFExporter(),
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Issue creates a certificate for a completed enrollment. The issuedBy
// name falls back to the configured issuer when blank. Identifier
// collisions retry with fresh randomness a bounded number of times
// before giving up.
func (s *CertificationService) Issue(ctx context.Context, enrollmentID int64, issuedBy string) (*models.Certification, error) {
	enrollment, err := s.enrollments.FindByID(ctx, enrollmentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Storage(err, "failed to load enrollment")
	}
	if enrollment.Status != models.EnrollmentStatusCompleted {
		return nil, appErrors.ErrEnrollmentNotCompleted
	}

	if issuedBy == "" {
		issuedBy = s.cfg.Issuer
	}
	issueDate := s.now()
	var expiry *time.Time
	if s.cfg.ValidityDays > 0 {
		until := issueDate.AddDate(0, 0, s.cfg.ValidityDays)
		expiry = &until
	}

	for attempt := 0; attempt < s.cfg.IssueAttempts; attempt++ {
		number, err := certificateNumber(enrollmentID, issueDate)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrCertificateGeneration.Code,
				appErrors.ErrCertificateGeneration.Status, "failed to generate certificate number")
		}
		code, err := verificationCode()
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrCertificateGeneration.Code,
				appErrors.ErrCertificateGeneration.Status, "failed to generate verification code")
		}

		cert := &models.Certification{
			EnrollmentID:      enrollmentID,
			CertificateNumber: number,
			IssueDate:         issueDate,
			ExpiryDate:        expiry,
			VerificationCode:  code,
			IssuedBy:          issuedBy,
		}
		err = s.repo.Create(ctx, cert)
		if err == nil {
			s.metrics.RecordCertificateIssued()
			s.logger.Info("certificate issued",
				zap.Int64("certificate_id", cert.ID),
				zap.Int64("enrollment_id", enrollmentID),
				zap.String("number", number))
			return cert, nil
		}
		if errors.Is(err, appErrors.ErrDuplicateCertificate) {
			s.metrics.RecordCertificateRetry()
			s.logger.Warn("certificate identifier collision, retrying",
				zap.Int64("enrollment_id", enrollmentID),
				zap.Int("attempt", attempt+1))
			continue
		}
		return nil, appErrors.Storage(err, "failed to store certificate")
	}
	return nil, appErrors.ErrCertificateGeneration
}

// Get returns a certificate with its student and course context.
func (s *CertificationService) Get(ctx context.Context, id int64) (*models.CertificationDetail, error) {
	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "certificate not found")
		}
		return nil, appErrors.Storage(err, "failed to load certificate")
	}
	return detail, nil
}

// Verify resolves a verification code to its certificate. Results are
// cached; certificate rows never change after issuance so a cached hit
// can never go stale.
func (s *CertificationService) Verify(ctx context.Context, code string) (*models.CertificationDetail, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "verification code is required")
	}

	cacheKey := "cert:verify:" + code
	var cached models.CertificationDetail
	if s.cache.Get(ctx, cacheKey, &cached) {
		s.metrics.RecordVerificationLookup(true)
		return &cached, nil
	}

	detail, err := s.repo.FindByVerificationCode(ctx, code)
	if err != nil {
		if err == sql.ErrNoRows {
			s.metrics.RecordVerificationLookup(false)
			return nil, appErrors.Clone(appErrors.ErrNotFound, "certificate not found")
		}
		return nil, appErrors.Storage(err, "failed to verify certificate")
	}

	s.cache.Set(ctx, cacheKey, detail, s.cfg.VerifyCacheTTL)
	s.metrics.RecordVerificationLookup(true)
	return detail, nil
}

// ListByEnrollment returns every certificate issued for an enrollment.
func (s *CertificationService) ListByEnrollment(ctx context.Context, enrollmentID int64) ([]models.Certification, error) {
	certs, err := s.repo.ListByEnrollment(ctx, enrollmentID)
	if err != nil {
		return nil, appErrors.Storage(err, "failed to list certificates")
	}
	return certs, nil
}

// RenderPDF produces the printable document for a certificate.
func (s *CertificationService) RenderPDF(ctx context.Context, id int64) ([]byte, error) {
	detail, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	data, err := s.pdf.Render(export.CertificateDocument{
		StudentName:       detail.StudentName,
		CourseTitle:       detail.CourseTitle,
		CertificateNumber: detail.CertificateNumber,
		VerificationCode:  detail.VerificationCode,
		IssuedBy:          detail.IssuedBy,
		IssueDate:         detail.IssueDate,
		ExpiryDate:        detail.ExpiryDate,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render certificate pdf")
	}
	return data, nil
}

// certificateNumber builds CERT-<enrollment>-<timestamp>-<suffix>. The
// random suffix keeps two certificates issued in the same second for
// the same enrollment from colliding.
func certificateNumber(enrollmentID int64, issued time.Time) (string, error) {
	suffix := make([]byte, 2)
	if _, err := rand.Read(suffix); err != nil {
		return "", err
	}
	return fmt.Sprintf("CERT-%d-%s-%s", enrollmentID,
		issued.Format("20060102150405"),
		strings.ToUpper(hex.EncodeToString(suffix))), nil
}

// verificationCode returns 16 uppercase hex characters of randomness.
func verificationCode() (string, error) {
	raw := make([]byte, 8)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(raw)), nil
}
