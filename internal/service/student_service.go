package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/trainup/training-api/internal/models"
	"github.com/trainup/training-api/internal/repository"
	"github.com/trainup/training-api/internal/validation"
	appErrors "github.com/trainup/training-api/pkg/errors"
)

type studentRepository interface {
	Create(ctx context.Context, student *models.Student) error
	FindByID(ctx context.Context, id int64) (*models.Student, error)
	FindByEmail(ctx context.Context, email string) (*models.Student, error)
	Update(ctx context.Context, student *models.Student) error
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
}

// RegisterStudentRequest describes student registration payload.
type RegisterStudentRequest struct {
	Name      string  `json:"name" validate:"required"`
	Email     string  `json:"email" validate:"required"`
	Phone     *string `json:"phone,omitempty"`
	CPF       *string `json:"cpf,omitempty"`
	BirthDate *string `json:"birth_date,omitempty"`
	Notes     *string `json:"notes,omitempty"`
}

// UpdateStudentRequest describes the mutable student fields.
type UpdateStudentRequest struct {
	Name   *string `json:"name,omitempty"`
	Email  *string `json:"email,omitempty"`
	Phone  *string `json:"phone,omitempty"`
	CPF    *string `json:"cpf,omitempty"`
	Status *string `json:"status,omitempty"`
	Notes  *string `json:"notes,omitempty"`
}

// StudentService manages student records.
type StudentService struct {
	repo      studentRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs StudentService.
func NewStudentService(repo studentRepository, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, validator: validate, logger: logger}
}

// Register creates a student after validating identity fields. Nothing
// is written when any check fails.
func (s *StudentService) Register(ctx context.Context, req RegisterStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	if !validation.Email(req.Email) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid email format")
	}
	if req.Phone != nil && !validation.Phone(*req.Phone) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid phone format")
	}
	if req.CPF != nil && !validation.CPF(*req.CPF) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid cpf")
	}

	var birthDate *time.Time
	if req.BirthDate != nil {
		parsed, err := time.Parse("2006-01-02", *req.BirthDate)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid birth date, want YYYY-MM-DD")
		}
		birthDate = &parsed
	}

	if _, err := s.repo.FindByEmail(ctx, req.Email); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
	} else if err != sql.ErrNoRows {
		return nil, appErrors.Storage(err, "failed to check email uniqueness")
	}

	student := &models.Student{
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		CPF:       req.CPF,
		BirthDate: birthDate,
		Status:    models.StudentStatusActive,
		Notes:     req.Notes,
	}
	if err := s.repo.Create(ctx, student); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "email or cpf already registered")
		}
		return nil, appErrors.Storage(err, "failed to create student")
	}
	s.logger.Info("student registered", zap.Int64("student_id", student.ID))
	return student, nil
}

// Get returns a student by id.
func (s *StudentService) Get(ctx context.Context, id int64) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Storage(err, "failed to load student")
	}
	return student, nil
}

// Update mutates the allowed fields of a student.
func (s *StudentService) Update(ctx context.Context, id int64, req UpdateStudentRequest) (*models.Student, error) {
	student, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		if !validation.Email(*req.Email) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid email format")
		}
		student.Email = *req.Email
	}
	if req.Phone != nil {
		if !validation.Phone(*req.Phone) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid phone format")
		}
		student.Phone = req.Phone
	}
	if req.CPF != nil {
		if !validation.CPF(*req.CPF) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid cpf")
		}
		student.CPF = req.CPF
	}
	if req.Status != nil {
		status := models.StudentStatus(*req.Status)
		if !status.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown student status")
		}
		student.Status = status
	}
	if req.Name != nil {
		student.Name = *req.Name
	}
	if req.Notes != nil {
		student.Notes = req.Notes
	}

	if err := s.repo.Update(ctx, student); err != nil {
		if err == repository.ErrNoRowsAffected {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "email or cpf already registered")
		}
		return nil, appErrors.Storage(err, "failed to update student")
	}
	return student, nil
}

// Deactivate soft-deletes a student; records are never removed.
func (s *StudentService) Deactivate(ctx context.Context, id int64) (*models.Student, error) {
	inactive := string(models.StudentStatusInactive)
	return s.Update(ctx, id, UpdateStudentRequest{Status: &inactive})
}

// List returns students with pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown student status")
	}
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Storage(err, "failed to list students")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return students, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}
