package models

import "time"

// CourseCategory classifies catalog entries.
type CourseCategory string

// Possible course categories.
const (
	CourseCategoryTechnology  CourseCategory = "technology"
	CourseCategoryBusiness    CourseCategory = "business"
	CourseCategoryDesign      CourseCategory = "design"
	CourseCategoryMarketing   CourseCategory = "marketing"
	CourseCategoryDataScience CourseCategory = "data_science"
	CourseCategorySoftSkills  CourseCategory = "soft_skills"
	CourseCategoryOther       CourseCategory = "other"
)

// Valid reports whether the category is one of the known values.
func (c CourseCategory) Valid() bool {
	switch c {
	case CourseCategoryTechnology, CourseCategoryBusiness, CourseCategoryDesign,
		CourseCategoryMarketing, CourseCategoryDataScience, CourseCategorySoftSkills,
		CourseCategoryOther:
		return true
	}
	return false
}

// Course is a catalog entry with a seat capacity limit.
type Course struct {
	ID            int64          `db:"id" json:"id"`
	Title         string         `db:"title" json:"title"`
	Description   *string        `db:"description" json:"description,omitempty"`
	DurationHours int            `db:"duration_hours" json:"duration_hours"`
	Category      CourseCategory `db:"category" json:"category"`
	Instructor    *string        `db:"instructor" json:"instructor,omitempty"`
	Prerequisites *string        `db:"prerequisites" json:"prerequisites,omitempty"`
	MaxStudents   int            `db:"max_students" json:"max_students"`
	Price         float64        `db:"price" json:"price"`
	IsActive      bool           `db:"is_active" json:"is_active"`
	CreatedDate   time.Time      `db:"created_date" json:"created_date"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updated_at"`
}

// CourseFilter limits course listings.
type CourseFilter struct {
	Category   CourseCategory
	ActiveOnly bool
	Page       int
	PageSize   int
}
