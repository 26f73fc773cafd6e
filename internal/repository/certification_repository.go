package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/trainup/training-api/internal/models"
	appErrors "github.com/trainup/training-api/pkg/errors"
)

// CertificationRepository handles persistence of issued certificates.
type CertificationRepository struct {
	db *sqlx.DB
}

// NewCertificationRepository constructs the repository.
func NewCertificationRepository(db *sqlx.DB) *CertificationRepository {
	return &CertificationRepository{db: db}
}

// Create inserts a certificate and its audit entry in one transaction.
// A unique violation on either identifier surfaces as
// ErrDuplicateCertificate so the caller can retry with fresh randomness.
func (r *CertificationRepository) Create(ctx context.Context, cert *models.Certification) error {
	if cert.IssueDate.IsZero() {
		cert.IssueDate = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin issue certificate: %w", err)
	}
	const query = `INSERT INTO certifications (enrollment_id, certificate_number, issue_date, expiry_date, verification_code, issued_by)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at`
	row := tx.QueryRowxContext(ctx, query,
		cert.EnrollmentID, cert.CertificateNumber, cert.IssueDate,
		cert.ExpiryDate, cert.VerificationCode, cert.IssuedBy)
	if err := row.Scan(&cert.ID, &cert.CreatedAt); err != nil {
		tx.Rollback() //nolint:errcheck
		if IsUniqueViolation(err) {
			return appErrors.ErrDuplicateCertificate
		}
		return fmt.Errorf("create certificate: %w", err)
	}
	detail := fmt.Sprintf("Certificate %s issued for enrollment %d", cert.CertificateNumber, cert.EnrollmentID)
	if err := appendAuditTx(ctx, tx, models.AuditActorCertification, cert.ID, models.AuditActionCertificateIssued, detail); err != nil {
		tx.Rollback() //nolint:errcheck
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit issue certificate: %w", err)
	}
	return nil
}

// FindByID returns a certificate with student and course context.
func (r *CertificationRepository) FindByID(ctx context.Context, id int64) (*models.CertificationDetail, error) {
	const query = `SELECT cert.id, cert.enrollment_id, cert.certificate_number, cert.issue_date, cert.expiry_date,
        cert.verification_code, cert.issued_by, cert.created_at,
        s.name AS student_name, c.title AS course_title
        FROM certifications cert
        JOIN enrollments e ON e.id = cert.enrollment_id
        JOIN students s ON s.id = e.student_id
        JOIN courses c ON c.id = e.course_id
        WHERE cert.id = $1`
	var detail models.CertificationDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// FindByVerificationCode resolves a certificate for public verification.
func (r *CertificationRepository) FindByVerificationCode(ctx context.Context, code string) (*models.CertificationDetail, error) {
	const query = `SELECT cert.id, cert.enrollment_id, cert.certificate_number, cert.issue_date, cert.expiry_date,
        cert.verification_code, cert.issued_by, cert.created_at,
        s.name AS student_name, c.title AS course_title
        FROM certifications cert
        JOIN enrollments e ON e.id = cert.enrollment_id
        JOIN students s ON s.id = e.student_id
        JOIN courses c ON c.id = e.course_id
        WHERE cert.verification_code = $1`
	var detail models.CertificationDetail
	if err := r.db.GetContext(ctx, &detail, query, code); err != nil {
		return nil, err
	}
	return &detail, nil
}

// ListByEnrollment returns every certificate issued for an enrollment,
// newest first. Re-issuing is allowed so multiple rows may exist.
func (r *CertificationRepository) ListByEnrollment(ctx context.Context, enrollmentID int64) ([]models.Certification, error) {
	const query = `SELECT id, enrollment_id, certificate_number, issue_date, expiry_date, verification_code, issued_by, created_at
        FROM certifications WHERE enrollment_id = $1 ORDER BY issue_date DESC`
	var certs []models.Certification
	if err := r.db.SelectContext(ctx, &certs, query, enrollmentID); err != nil {
		return nil, fmt.Errorf("list certificates: %w", err)
	}
	return certs, nil
}
