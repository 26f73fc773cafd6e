package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/trainup/training-api/internal/models"
)

// CourseRepository handles persistence of catalog entries.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

const courseColumns = `id, title, description, duration_hours, category, instructor, prerequisites, max_students, price, is_active, created_date, created_at, updated_at`

// Create persists a new course together with its audit entry.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	if course.CreatedDate.IsZero() {
		course.CreatedDate = time.Now().UTC()
	}
	if course.Category == "" {
		course.Category = models.CourseCategoryOther
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create course: %w", err)
	}
	const query = `INSERT INTO courses (title, description, duration_hours, category, instructor, prerequisites, max_students, price, is_active, created_date)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING id, created_at, updated_at`
	row := tx.QueryRowxContext(ctx, query,
		course.Title, course.Description, course.DurationHours, course.Category,
		course.Instructor, course.Prerequisites, course.MaxStudents, course.Price,
		course.IsActive, course.CreatedDate)
	if err := row.Scan(&course.ID, &course.CreatedAt, &course.UpdatedAt); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("create course: %w", err)
	}
	detail := fmt.Sprintf("Course %s created", course.Title)
	if err := appendAuditTx(ctx, tx, models.AuditActorCourse, course.ID, models.AuditActionCourseCreated, detail); err != nil {
		tx.Rollback() //nolint:errcheck
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create course: %w", err)
	}
	return nil
}

// FindByID returns a course by its ID.
func (r *CourseRepository) FindByID(ctx context.Context, id int64) (*models.Course, error) {
	query := fmt.Sprintf(`SELECT %s FROM courses WHERE id = $1`, courseColumns)
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// Update mutates catalog fields of a course and audits the change.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update course: %w", err)
	}
	const query = `UPDATE courses
        SET title = $2, description = $3, duration_hours = $4, category = $5, instructor = $6,
            prerequisites = $7, max_students = $8, price = $9, is_active = $10, updated_at = NOW()
        WHERE id = $1`
	res, err := tx.ExecContext(ctx, query,
		course.ID, course.Title, course.Description, course.DurationHours, course.Category,
		course.Instructor, course.Prerequisites, course.MaxStudents, course.Price, course.IsActive)
	if err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("update course: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		tx.Rollback() //nolint:errcheck
		return ErrNoRowsAffected
	}
	detail := fmt.Sprintf("Course %s updated", course.Title)
	if err := appendAuditTx(ctx, tx, models.AuditActorCourse, course.ID, models.AuditActionCourseUpdated, detail); err != nil {
		tx.Rollback() //nolint:errcheck
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update course: %w", err)
	}
	return nil
}

// List returns courses filtered by category and active flag.
func (r *CourseRepository) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error) {
	where := []string{"1=1"}
	var args []interface{}
	if filter.Category != "" {
		where = append(where, fmt.Sprintf("category = $%d", len(args)+1))
		args = append(args, filter.Category)
	}
	if filter.ActiveOnly {
		where = append(where, "is_active = TRUE")
	}
	whereClause := strings.Join(where, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s FROM courses WHERE %s ORDER BY title LIMIT %d OFFSET %d`,
		courseColumns, whereClause, size, offset)
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list courses: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM courses WHERE %s", whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count courses: %w", err)
	}
	return courses, total, nil
}

// CountActiveEnrollments counts the enrollments occupying seats.
func (r *CourseRepository) CountActiveEnrollments(ctx context.Context, courseID int64) (int, error) {
	const query = `SELECT COUNT(*) FROM enrollments WHERE course_id = $1 AND status IN ($2, $3)`
	var count int
	if err := r.db.GetContext(ctx, &count, query, courseID,
		models.EnrollmentStatusEnrolled, models.EnrollmentStatusInProgress); err != nil {
		return 0, fmt.Errorf("count active enrollments: %w", err)
	}
	return count, nil
}
