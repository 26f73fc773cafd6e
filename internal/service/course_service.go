package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/trainup/training-api/internal/models"
	"github.com/trainup/training-api/internal/repository"
	appErrors "github.com/trainup/training-api/pkg/errors"
)

type courseRepository interface {
	Create(ctx context.Context, course *models.Course) error
	FindByID(ctx context.Context, id int64) (*models.Course, error)
	Update(ctx context.Context, course *models.Course) error
	List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error)
	CountActiveEnrollments(ctx context.Context, courseID int64) (int, error)
}

// CreateCourseRequest describes a new catalog entry.
type CreateCourseRequest struct {
	Title         string  `json:"title" validate:"required"`
	Description   *string `json:"description,omitempty"`
	DurationHours int     `json:"duration_hours" validate:"required,gt=0"`
	Category      string  `json:"category,omitempty"`
	Instructor    *string `json:"instructor,omitempty"`
	Prerequisites *string `json:"prerequisites,omitempty"`
	MaxStudents   int     `json:"max_students" validate:"required,gt=0"`
	Price         float64 `json:"price" validate:"gte=0"`
}

// UpdateCourseRequest describes the mutable course fields.
type UpdateCourseRequest struct {
	Title         *string  `json:"title,omitempty"`
	Description   *string  `json:"description,omitempty"`
	DurationHours *int     `json:"duration_hours,omitempty"`
	Category      *string  `json:"category,omitempty"`
	Instructor    *string  `json:"instructor,omitempty"`
	Prerequisites *string  `json:"prerequisites,omitempty"`
	MaxStudents   *int     `json:"max_students,omitempty"`
	Price         *float64 `json:"price,omitempty"`
	IsActive      *bool    `json:"is_active,omitempty"`
}

// CourseAvailability summarises seat occupancy for one course.
type CourseAvailability struct {
	CourseID       int64 `json:"course_id"`
	MaxStudents    int   `json:"max_students"`
	ActiveStudents int   `json:"active_students"`
	AvailableSeats int   `json:"available_seats"`
}

// CourseService manages the course catalog.
type CourseService struct {
	repo      courseRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService constructs CourseService.
func NewCourseService(repo courseRepository, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{repo: repo, validator: validate, logger: logger}
}

// Create registers a new course in the catalog.
func (s *CourseService) Create(ctx context.Context, req CreateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	category := models.CourseCategory(req.Category)
	if category == "" {
		category = models.CourseCategoryOther
	}
	if !category.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown course category")
	}

	course := &models.Course{
		Title:         req.Title,
		Description:   req.Description,
		DurationHours: req.DurationHours,
		Category:      category,
		Instructor:    req.Instructor,
		Prerequisites: req.Prerequisites,
		MaxStudents:   req.MaxStudents,
		Price:         req.Price,
		IsActive:      true,
	}
	if err := s.repo.Create(ctx, course); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "course title already exists")
		}
		return nil, appErrors.Storage(err, "failed to create course")
	}
	s.logger.Info("course created", zap.Int64("course_id", course.ID), zap.String("title", course.Title))
	return course, nil
}

// Get returns a course by id.
func (s *CourseService) Get(ctx context.Context, id int64) (*models.Course, error) {
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Storage(err, "failed to load course")
	}
	return course, nil
}

// Update mutates the allowed fields of a course. Shrinking max_students
// below the current active enrollment count is rejected so existing
// seats stay honoured.
func (s *CourseService) Update(ctx context.Context, id int64, req UpdateCourseRequest) (*models.Course, error) {
	course, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		if *req.Title == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "title cannot be empty")
		}
		course.Title = *req.Title
	}
	if req.Description != nil {
		course.Description = req.Description
	}
	if req.DurationHours != nil {
		if *req.DurationHours <= 0 {
			return nil, appErrors.Clone(appErrors.ErrValidation, "duration must be positive")
		}
		course.DurationHours = *req.DurationHours
	}
	if req.Category != nil {
		category := models.CourseCategory(*req.Category)
		if !category.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown course category")
		}
		course.Category = category
	}
	if req.Instructor != nil {
		course.Instructor = req.Instructor
	}
	if req.Prerequisites != nil {
		course.Prerequisites = req.Prerequisites
	}
	if req.MaxStudents != nil {
		if *req.MaxStudents <= 0 {
			return nil, appErrors.Clone(appErrors.ErrValidation, "max students must be positive")
		}
		active, err := s.repo.CountActiveEnrollments(ctx, id)
		if err != nil {
			return nil, appErrors.Storage(err, "failed to count active enrollments")
		}
		if *req.MaxStudents < active {
			return nil, appErrors.Clone(appErrors.ErrValidation, "max students cannot drop below current active enrollments")
		}
		course.MaxStudents = *req.MaxStudents
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return nil, appErrors.Clone(appErrors.ErrValidation, "price cannot be negative")
		}
		course.Price = *req.Price
	}
	if req.IsActive != nil {
		course.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, course); err != nil {
		if err == repository.ErrNoRowsAffected {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "course title already exists")
		}
		return nil, appErrors.Storage(err, "failed to update course")
	}
	return course, nil
}

// Availability reports how many seats remain in a course.
func (s *CourseService) Availability(ctx context.Context, id int64) (*CourseAvailability, error) {
	course, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	active, err := s.repo.CountActiveEnrollments(ctx, id)
	if err != nil {
		return nil, appErrors.Storage(err, "failed to count active enrollments")
	}
	seats := course.MaxStudents - active
	if seats < 0 {
		seats = 0
	}
	return &CourseAvailability{
		CourseID:       course.ID,
		MaxStudents:    course.MaxStudents,
		ActiveStudents: active,
		AvailableSeats: seats,
	}, nil
}

// List returns catalog entries with pagination metadata.
func (s *CourseService) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, *models.Pagination, error) {
	if filter.Category != "" && !filter.Category.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown course category")
	}
	courses, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Storage(err, "failed to list courses")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return courses, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}
