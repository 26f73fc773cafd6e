package models

import "time"

// Audit action constants written by mutating operations.
const (
	AuditActionStudentCreated    = "STUDENT_CREATED"
	AuditActionStudentUpdated    = "STUDENT_UPDATED"
	AuditActionCourseCreated     = "COURSE_CREATED"
	AuditActionCourseUpdated     = "COURSE_UPDATED"
	AuditActionEnrollmentCreated = "ENROLLMENT_CREATED"
	AuditActionProgressUpdated   = "PROGRESS_UPDATED"
	AuditActionCertificateIssued = "CERTIFICATE_ISSUED"
	AuditActionAttendanceAdded   = "ATTENDANCE_RECORDED"
	AuditActionAssessmentAdded   = "ASSESSMENT_RECORDED"
)

// Actor kinds identify which entity family an audit entry refers to.
const (
	AuditActorStudent       = "student"
	AuditActorCourse        = "course"
	AuditActorEnrollment    = "enrollment"
	AuditActorCertification = "certification"
)

// AuditFilter limits audit log listings.
type AuditFilter struct {
	ActorKind string
	ActorID   int64
	Limit     int
}

// AuditLog is an append-only trace of a successful mutating operation.
// Entries are written inside the same transaction as the mutation they
// describe.
type AuditLog struct {
	ID        int64     `db:"id" json:"id"`
	ActorKind string    `db:"actor_kind" json:"actor_kind"`
	ActorID   *int64    `db:"actor_id" json:"actor_id,omitempty"`
	Action    string    `db:"action" json:"action"`
	Details   *string   `db:"details" json:"details,omitempty"`
	Timestamp time.Time `db:"timestamp" json:"timestamp"`
}
