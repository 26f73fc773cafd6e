package models

// CourseStatistics is a read-only rollup over a course's enrollments,
// recomputed on every call.
type CourseStatistics struct {
	CourseID        int64                    `json:"course_id"`
	TotalStudents   int                      `json:"total_students"`
	StatusBreakdown map[EnrollmentStatus]int `json:"status_breakdown"`
	AverageGrade    float64                  `json:"average_grade"`
	AverageProgress float64                  `json:"average_progress"`
}

// StatusCount is one row of the per-status enrollment breakdown.
type StatusCount struct {
	Status EnrollmentStatus `db:"status"`
	Count  int              `db:"count"`
}
