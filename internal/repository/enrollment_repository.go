package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/trainup/training-api/internal/models"
	appErrors "github.com/trainup/training-api/pkg/errors"
)

// EnrollmentRepository handles persistence of enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

const enrollmentColumns = `id, student_id, course_id, enrollment_date, start_date, completion_date, expected_completion, progress, status, grade, attendance_percentage, feedback, created_at, updated_at`

// Create inserts an enrollment after re-verifying capacity and pair
// uniqueness under a row lock on the course, all in one transaction.
// Returns ErrCapacityExceeded or ErrDuplicateEnrollment as business
// rejections; the course row lock keeps two concurrent writers from
// both observing spare capacity.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.EnrollmentDate.IsZero() {
		enrollment.EnrollmentDate = time.Now().UTC()
	}
	if enrollment.Status == "" {
		enrollment.Status = models.EnrollmentStatusEnrolled
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin enroll: %w", err)
	}

	var maxStudents int
	if err := tx.GetContext(ctx, &maxStudents,
		`SELECT max_students FROM courses WHERE id = $1 FOR UPDATE`, enrollment.CourseID); err != nil {
		tx.Rollback() //nolint:errcheck
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return fmt.Errorf("lock course: %w", err)
	}

	var active int
	if err := tx.GetContext(ctx, &active,
		`SELECT COUNT(*) FROM enrollments WHERE course_id = $1 AND status IN ($2, $3)`,
		enrollment.CourseID, models.EnrollmentStatusEnrolled, models.EnrollmentStatusInProgress); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("count active enrollments: %w", err)
	}
	if active >= maxStudents {
		tx.Rollback() //nolint:errcheck
		return appErrors.ErrCapacityExceeded
	}

	var exists int
	err = tx.GetContext(ctx, &exists,
		`SELECT 1 FROM enrollments WHERE student_id = $1 AND course_id = $2`,
		enrollment.StudentID, enrollment.CourseID)
	if err == nil {
		tx.Rollback() //nolint:errcheck
		return appErrors.ErrDuplicateEnrollment
	}
	if err != sql.ErrNoRows {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("check duplicate enrollment: %w", err)
	}

	const insert = `INSERT INTO enrollments (student_id, course_id, enrollment_date, expected_completion, progress, status, attendance_percentage)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, created_at, updated_at`
	row := tx.QueryRowxContext(ctx, insert,
		enrollment.StudentID, enrollment.CourseID, enrollment.EnrollmentDate,
		enrollment.ExpectedCompletion, enrollment.Progress, enrollment.Status,
		enrollment.AttendancePercentage)
	if err := row.Scan(&enrollment.ID, &enrollment.CreatedAt, &enrollment.UpdatedAt); err != nil {
		tx.Rollback() //nolint:errcheck
		if IsUniqueViolation(err) {
			return appErrors.ErrDuplicateEnrollment
		}
		return fmt.Errorf("create enrollment: %w", err)
	}

	detail := fmt.Sprintf("Student %d enrolled in course %d", enrollment.StudentID, enrollment.CourseID)
	if err := appendAuditTx(ctx, tx, models.AuditActorEnrollment, enrollment.ID, models.AuditActionEnrollmentCreated, detail); err != nil {
		tx.Rollback() //nolint:errcheck
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit enroll: %w", err)
	}
	return nil
}

// FindByID returns an enrollment by its ID.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id int64) (*models.Enrollment, error) {
	query := fmt.Sprintf(`SELECT %s FROM enrollments WHERE id = $1`, enrollmentColumns)
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, id); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// UpdateProgress sets progress, status and completion date, writing the
// audit entry in the same transaction.
func (r *EnrollmentRepository) UpdateProgress(ctx context.Context, id int64, progress float64, status models.EnrollmentStatus, completionDate *time.Time) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update progress: %w", err)
	}
	const query = `UPDATE enrollments
        SET progress = $2, status = $3, completion_date = $4, updated_at = NOW()
        WHERE id = $1`
	res, err := tx.ExecContext(ctx, query, id, progress, status, completionDate)
	if err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("update progress: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		tx.Rollback() //nolint:errcheck
		return ErrNoRowsAffected
	}
	detail := fmt.Sprintf("Progress: %g%%", progress)
	if err := appendAuditTx(ctx, tx, models.AuditActorEnrollment, id, models.AuditActionProgressUpdated, detail); err != nil {
		tx.Rollback() //nolint:errcheck
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update progress: %w", err)
	}
	return nil
}

// UpdateGrade sets the grade for an enrollment.
func (r *EnrollmentRepository) UpdateGrade(ctx context.Context, id int64, grade float64) error {
	const query = `UPDATE enrollments SET grade = $2, updated_at = NOW() WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, grade)
	if err != nil {
		return fmt.Errorf("update grade: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

// List returns enrollments joined with student and course info, ordered
// by enrollment id ascending for deterministic iteration.
func (r *EnrollmentRepository) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error) {
	base := `FROM enrollments e
JOIN students s ON s.id = e.student_id
JOIN courses c ON c.id = e.course_id`
	where := []string{"1=1"}
	var args []interface{}
	if filter.CourseID != 0 {
		where = append(where, fmt.Sprintf("e.course_id = $%d", len(args)+1))
		args = append(args, filter.CourseID)
	}
	if filter.StudentID != 0 {
		where = append(where, fmt.Sprintf("e.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.Status != "" {
		where = append(where, fmt.Sprintf("e.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	whereClause := strings.Join(where, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT e.id, e.student_id, e.course_id, e.enrollment_date, e.start_date, e.completion_date,
        e.expected_completion, e.progress, e.status, e.grade, e.attendance_percentage, e.feedback, e.created_at, e.updated_at,
        s.name AS student_name, s.email AS student_email, c.title AS course_title
        %s WHERE %s ORDER BY e.id ASC LIMIT %d OFFSET %d`, base, whereClause, size, offset)

	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list enrollments: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s WHERE %s", base, whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count enrollments: %w", err)
	}
	return enrollments, total, nil
}

// ExportRows returns the five-column per-course dump used by the CSV
// export contract.
func (r *EnrollmentRepository) ExportRows(ctx context.Context, courseID int64) ([]models.ExportRow, error) {
	const query = `SELECT s.name, s.email, e.status, e.progress, e.grade
        FROM enrollments e
        JOIN students s ON s.id = e.student_id
        WHERE e.course_id = $1
        ORDER BY e.id ASC`
	var rows []models.ExportRow
	if err := r.db.SelectContext(ctx, &rows, query, courseID); err != nil {
		return nil, fmt.Errorf("export enrollments: %w", err)
	}
	return rows, nil
}
