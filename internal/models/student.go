package models

import "time"

// StudentStatus represents the lifecycle of a student record.
type StudentStatus string

// Possible student statuses.
const (
	StudentStatusActive    StudentStatus = "active"
	StudentStatusInactive  StudentStatus = "inactive"
	StudentStatusSuspended StudentStatus = "suspended"
	StudentStatusGraduated StudentStatus = "graduated"
)

// Valid reports whether the status is one of the known values.
func (s StudentStatus) Valid() bool {
	switch s {
	case StudentStatusActive, StudentStatusInactive, StudentStatusSuspended, StudentStatusGraduated:
		return true
	}
	return false
}

// Student represents a learner registered with the training provider.
// Students are never hard-deleted; deactivation is the only removal.
type Student struct {
	ID               int64         `db:"id" json:"id"`
	Name             string        `db:"name" json:"name"`
	Email            string        `db:"email" json:"email"`
	Phone            *string       `db:"phone" json:"phone,omitempty"`
	CPF              *string       `db:"cpf" json:"cpf,omitempty"`
	BirthDate        *time.Time    `db:"birth_date" json:"birth_date,omitempty"`
	RegistrationDate time.Time     `db:"registration_date" json:"registration_date"`
	Status           StudentStatus `db:"status" json:"status"`
	Notes            *string       `db:"notes" json:"notes,omitempty"`
	CreatedAt        time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time     `db:"updated_at" json:"updated_at"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Status   StudentStatus
	Search   string
	Page     int
	PageSize int
}
