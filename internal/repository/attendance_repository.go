package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/trainup/training-api/internal/models"
)

// AttendanceRepository handles the append-only attendance and
// assessment child records of an enrollment.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// RecordAttendance appends an attendance row and recomputes the parent
// enrollment's attendance percentage inside the same transaction.
func (r *AttendanceRepository) RecordAttendance(ctx context.Context, att *models.Attendance) error {
	if att.RecordedAt.IsZero() {
		att.RecordedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin record attendance: %w", err)
	}
	const insert = `INSERT INTO attendance (enrollment_id, class_date, present, justification, notes, recorded_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id`
	row := tx.QueryRowxContext(ctx, insert,
		att.EnrollmentID, att.ClassDate, att.Present, att.Justification, att.Notes, att.RecordedAt)
	if err := row.Scan(&att.ID); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("record attendance: %w", err)
	}

	const recompute = `UPDATE enrollments SET
        attendance_percentage = (
            SELECT ROUND(100.0 * COUNT(*) FILTER (WHERE present) / COUNT(*), 2)
            FROM attendance WHERE enrollment_id = $1
        ),
        updated_at = NOW()
        WHERE id = $1`
	if _, err := tx.ExecContext(ctx, recompute, att.EnrollmentID); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("recompute attendance percentage: %w", err)
	}

	detail := fmt.Sprintf("Attendance for %s recorded", att.ClassDate.Format("2006-01-02"))
	if err := appendAuditTx(ctx, tx, models.AuditActorEnrollment, att.EnrollmentID, models.AuditActionAttendanceAdded, detail); err != nil {
		tx.Rollback() //nolint:errcheck
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit record attendance: %w", err)
	}
	return nil
}

// ListAttendance returns attendance rows for an enrollment in class
// date order.
func (r *AttendanceRepository) ListAttendance(ctx context.Context, enrollmentID int64) ([]models.Attendance, error) {
	const query = `SELECT id, enrollment_id, class_date, present, justification, notes, recorded_at
        FROM attendance WHERE enrollment_id = $1 ORDER BY class_date ASC`
	var rows []models.Attendance
	if err := r.db.SelectContext(ctx, &rows, query, enrollmentID); err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	return rows, nil
}

// RecordAssessment appends an assessment row with its audit entry.
func (r *AttendanceRepository) RecordAssessment(ctx context.Context, assessment *models.Assessment) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin record assessment: %w", err)
	}
	const insert = `INSERT INTO assessments (enrollment_id, assessment_type, assessment_date, score, max_score, feedback)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at`
	row := tx.QueryRowxContext(ctx, insert,
		assessment.EnrollmentID, assessment.AssessmentType, assessment.AssessmentDate,
		assessment.Score, assessment.MaxScore, assessment.Feedback)
	if err := row.Scan(&assessment.ID, &assessment.CreatedAt); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("record assessment: %w", err)
	}
	detail := fmt.Sprintf("%s scored %g/%g", assessment.AssessmentType, assessment.Score, assessment.MaxScore)
	if err := appendAuditTx(ctx, tx, models.AuditActorEnrollment, assessment.EnrollmentID, models.AuditActionAssessmentAdded, detail); err != nil {
		tx.Rollback() //nolint:errcheck
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit record assessment: %w", err)
	}
	return nil
}

// ListAssessments returns assessment rows for an enrollment in event order.
func (r *AttendanceRepository) ListAssessments(ctx context.Context, enrollmentID int64) ([]models.Assessment, error) {
	const query = `SELECT id, enrollment_id, assessment_type, assessment_date, score, max_score, feedback, created_at
        FROM assessments WHERE enrollment_id = $1 ORDER BY assessment_date ASC`
	var rows []models.Assessment
	if err := r.db.SelectContext(ctx, &rows, query, enrollmentID); err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	return rows, nil
}
