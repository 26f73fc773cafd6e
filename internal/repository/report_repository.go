package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/trainup/training-api/internal/models"
)

// ReportRepository serves read-only statistical rollups.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository constructs the repository.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// CourseStatistics aggregates enrollment counts and averages for one
// course. Averages come back unrounded; the service rounds for display.
func (r *ReportRepository) CourseStatistics(ctx context.Context, courseID int64) (*models.CourseStatistics, error) {
	stats := &models.CourseStatistics{
		CourseID:        courseID,
		StatusBreakdown: map[models.EnrollmentStatus]int{},
	}

	const totalQuery = `SELECT COUNT(*) FROM enrollments WHERE course_id = $1`
	if err := r.db.GetContext(ctx, &stats.TotalStudents, totalQuery, courseID); err != nil {
		return nil, fmt.Errorf("count course enrollments: %w", err)
	}

	const breakdownQuery = `SELECT status, COUNT(*) AS count FROM enrollments WHERE course_id = $1 GROUP BY status`
	var rows []models.StatusCount
	if err := r.db.SelectContext(ctx, &rows, breakdownQuery, courseID); err != nil {
		return nil, fmt.Errorf("status breakdown: %w", err)
	}
	for _, row := range rows {
		stats.StatusBreakdown[row.Status] = row.Count
	}

	// Grade averages only over rows carrying a grade, progress over all.
	const avgQuery = `SELECT COALESCE(AVG(grade) FILTER (WHERE grade IS NOT NULL), 0) AS average_grade,
        COALESCE(AVG(progress), 0) AS average_progress
        FROM enrollments WHERE course_id = $1`
	averages := struct {
		AverageGrade    float64 `db:"average_grade"`
		AverageProgress float64 `db:"average_progress"`
	}{}
	if err := r.db.GetContext(ctx, &averages, avgQuery, courseID); err != nil {
		return nil, fmt.Errorf("course averages: %w", err)
	}
	stats.AverageGrade = averages.AverageGrade
	stats.AverageProgress = averages.AverageProgress

	return stats, nil
}
