package models

import "time"

// Attendance is an append-only per-class-date record for an enrollment.
type Attendance struct {
	ID            int64     `db:"id" json:"id"`
	EnrollmentID  int64     `db:"enrollment_id" json:"enrollment_id"`
	ClassDate     time.Time `db:"class_date" json:"class_date"`
	Present       bool      `db:"present" json:"present"`
	Justification *string   `db:"justification" json:"justification,omitempty"`
	Notes         *string   `db:"notes" json:"notes,omitempty"`
	RecordedAt    time.Time `db:"recorded_at" json:"recorded_at"`
}

// Assessment is an append-only evaluation event for an enrollment.
type Assessment struct {
	ID             int64     `db:"id" json:"id"`
	EnrollmentID   int64     `db:"enrollment_id" json:"enrollment_id"`
	AssessmentType string    `db:"assessment_type" json:"assessment_type"`
	AssessmentDate time.Time `db:"assessment_date" json:"assessment_date"`
	Score          float64   `db:"score" json:"score"`
	MaxScore       float64   `db:"max_score" json:"max_score"`
	Feedback       *string   `db:"feedback" json:"feedback,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
