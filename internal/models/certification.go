package models

import "time"

// Certification is an issued certificate for a completed enrollment.
// Rows are immutable once written; re-issuing creates a new row.
type Certification struct {
	ID                int64      `db:"id" json:"id"`
	EnrollmentID      int64      `db:"enrollment_id" json:"enrollment_id"`
	CertificateNumber string     `db:"certificate_number" json:"certificate_number"`
	IssueDate         time.Time  `db:"issue_date" json:"issue_date"`
	ExpiryDate        *time.Time `db:"expiry_date" json:"expiry_date,omitempty"`
	VerificationCode  string     `db:"verification_code" json:"verification_code"`
	IssuedBy          string     `db:"issued_by" json:"issued_by"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
}

// CertificationDetail joins a certificate with its student and course
// for public verification display.
type CertificationDetail struct {
	Certification
	StudentName string `db:"student_name" json:"student_name"`
	CourseTitle string `db:"course_title" json:"course_title"`
}
