package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trainup/training-api/internal/models"
	appErrors "github.com/trainup/training-api/pkg/errors"
)

func TestCertificationRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCertificationRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO certifications").
		WithArgs(int64(5), "CERT-5-20260831120000-A1B2", sqlmock.AnyArg(), nil, "4FA9C03D11E27B86", "Training System").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(11), time.Now()))
	mock.ExpectExec("INSERT INTO activity_logs").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	cert := &models.Certification{
		EnrollmentID:      5,
		CertificateNumber: "CERT-5-20260831120000-A1B2",
		VerificationCode:  "4FA9C03D11E27B86",
		IssuedBy:          "Training System",
	}
	require.NoError(t, repo.Create(context.Background(), cert))
	assert.Equal(t, int64(11), cert.ID)
	assert.False(t, cert.IssueDate.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCertificationRepositoryCreateDuplicate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCertificationRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO certifications").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "certifications_verification_code_key"})
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &models.Certification{EnrollmentID: 5})
	require.ErrorIs(t, err, appErrors.ErrDuplicateCertificate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCertificationRepositoryFindByVerificationCode(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCertificationRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "enrollment_id", "certificate_number", "issue_date", "expiry_date",
		"verification_code", "issued_by", "created_at", "student_name", "course_title",
	}).AddRow(int64(11), int64(5), "CERT-5-20260831120000-A1B2", now, nil,
		"4FA9C03D11E27B86", "Training System", now, "Maria Souza", "Go Fundamentals")

	mock.ExpectQuery(regexp.QuoteMeta("WHERE cert.verification_code = $1")).
		WithArgs("4FA9C03D11E27B86").
		WillReturnRows(rows)

	detail, err := repo.FindByVerificationCode(context.Background(), "4FA9C03D11E27B86")
	require.NoError(t, err)
	assert.Equal(t, "Maria Souza", detail.StudentName)
	assert.Equal(t, "Go Fundamentals", detail.CourseTitle)
	assert.NoError(t, mock.ExpectationsWereMet())
}
