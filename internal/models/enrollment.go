package models

import "time"

// EnrollmentStatus represents the lifecycle of an enrollment.
type EnrollmentStatus string

// Possible enrollment statuses.
const (
	EnrollmentStatusEnrolled   EnrollmentStatus = "enrolled"
	EnrollmentStatusInProgress EnrollmentStatus = "in_progress"
	EnrollmentStatusCompleted  EnrollmentStatus = "completed"
	EnrollmentStatusDropped    EnrollmentStatus = "dropped"
	EnrollmentStatusFailed     EnrollmentStatus = "failed"
)

// Valid reports whether the status is one of the known values.
func (s EnrollmentStatus) Valid() bool {
	switch s {
	case EnrollmentStatusEnrolled, EnrollmentStatusInProgress, EnrollmentStatusCompleted,
		EnrollmentStatusDropped, EnrollmentStatusFailed:
		return true
	}
	return false
}

// Active reports whether the enrollment occupies a course seat.
func (s EnrollmentStatus) Active() bool {
	return s == EnrollmentStatusEnrolled || s == EnrollmentStatusInProgress
}

// Terminal reports whether the enrollment left the course without
// completing it.
func (s EnrollmentStatus) Terminal() bool {
	return s == EnrollmentStatusDropped || s == EnrollmentStatusFailed
}

// Enrollment binds one student to one course; the pair is unique.
type Enrollment struct {
	ID                   int64            `db:"id" json:"id"`
	StudentID            int64            `db:"student_id" json:"student_id"`
	CourseID             int64            `db:"course_id" json:"course_id"`
	EnrollmentDate       time.Time        `db:"enrollment_date" json:"enrollment_date"`
	StartDate            *time.Time       `db:"start_date" json:"start_date,omitempty"`
	CompletionDate       *time.Time       `db:"completion_date" json:"completion_date,omitempty"`
	ExpectedCompletion   *time.Time       `db:"expected_completion" json:"expected_completion,omitempty"`
	Progress             float64          `db:"progress" json:"progress"`
	Status               EnrollmentStatus `db:"status" json:"status"`
	Grade                *float64         `db:"grade" json:"grade,omitempty"`
	AttendancePercentage float64          `db:"attendance_percentage" json:"attendance_percentage"`
	Feedback             *string          `db:"feedback" json:"feedback,omitempty"`
	CreatedAt            time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time        `db:"updated_at" json:"updated_at"`
}

// EnrollmentDetail enriches Enrollment with student and course info.
type EnrollmentDetail struct {
	Enrollment
	StudentName  string `db:"student_name" json:"student_name"`
	StudentEmail string `db:"student_email" json:"student_email"`
	CourseTitle  string `db:"course_title" json:"course_title"`
}

// EnrollmentFilter provides filters for listing enrollments.
type EnrollmentFilter struct {
	CourseID  int64
	StudentID int64
	Status    EnrollmentStatus
	Page      int
	PageSize  int
}

// ExportRow is one line of the per-course enrollment dump.
type ExportRow struct {
	Name     string   `db:"name"`
	Email    string   `db:"email"`
	Status   string   `db:"status"`
	Progress float64  `db:"progress"`
	Grade    *float64 `db:"grade"`
}
