package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/enrollment-portal-api/internal/models"
	"github.com/noah-isme/enrollment-portal-api/internal/repository"
	"github.com/noah-isme/enrollment-portal-api/pkg/database"
	appErrors "github.com/noah-isme/enrollment-portal-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, id int64) (*models.Student, error)
	UpdateProfile(ctx context.Context, student *models.Student) error
}

type registrationStore interface {
	Register(ctx context.Context, student *models.Student, user *models.User) error
	Remove(ctx context.Context, studentID int64) error
}

type studentApplicationReader interface {
	ListByStudent(ctx context.Context, studentID int64) ([]models.ApplicationDetail, error)
}

type studentEnrollmentReader interface {
	ListByStudent(ctx context.Context, studentID int64) ([]models.Enrollment, error)
}

// RegisterStudentRequest is the public self-registration payload.
type RegisterStudentRequest struct {
	ULI           string     `json:"uli" validate:"required,uli"`
	FirstName     string     `json:"first_name" validate:"required,max=100"`
	MiddleName    string     `json:"middle_name" validate:"max=100"`
	LastName      string     `json:"last_name" validate:"required,max=100"`
	Email         string     `json:"email" validate:"required,email"`
	Password      string     `json:"password" validate:"required,min=8,max=72"`
	ContactNumber string     `json:"contact_number" validate:"max=30"`
	BirthDate     *time.Time `json:"birth_date"`
	Address       string     `json:"address"`
}

// UpdateProfileRequest carries the fields a student may edit.
type UpdateProfileRequest struct {
	FirstName     string     `json:"first_name" validate:"required,max=100"`
	MiddleName    string     `json:"middle_name" validate:"max=100"`
	LastName      string     `json:"last_name" validate:"required,max=100"`
	ContactNumber string     `json:"contact_number" validate:"max=30"`
	BirthDate     *time.Time `json:"birth_date"`
	Address       string     `json:"address"`
}

// StudentProfile is a student with its course history.
type StudentProfile struct {
	models.Student
	Applications []models.ApplicationDetail `json:"applications"`
}

type StudentService struct {
	students     studentRepository
	registration registrationStore
	applications studentApplicationReader
	enrollments  studentEnrollmentReader
	validator    *validator.Validate
	sink         ActivitySink
	logger       *zap.Logger
	clock        func() time.Time
	bcryptCost   int
}

func NewStudentService(students studentRepository, registration registrationStore, applications studentApplicationReader, enrollments studentEnrollmentReader, sink ActivitySink, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{
		students:     students,
		registration: registration,
		applications: applications,
		enrollments:  enrollments,
		validator:    validate,
		sink:         sink,
		logger:       logger,
		clock:        time.Now,
		bcryptCost:   bcrypt.DefaultCost,
	}
}

// Register creates the student record and its STUDENT login.
func (s *StudentService) Register(ctx context.Context, req RegisterStudentRequest) (*models.Student, error) {
	req.ULI = NormalizeULI(req.ULI)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, validationMessage(err))
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to hash password")
	}

	student := &models.Student{
		ULI:           req.ULI,
		FirstName:     strings.TrimSpace(req.FirstName),
		MiddleName:    optionalString(req.MiddleName),
		LastName:      strings.TrimSpace(req.LastName),
		Email:         req.Email,
		ContactNumber: strings.TrimSpace(req.ContactNumber),
		BirthDate:     req.BirthDate,
		Address:       strings.TrimSpace(req.Address),
		Status:        models.StudentStatusPending,
	}
	user := &models.User{Email: req.Email, PasswordHash: string(hash), Role: models.RoleStudent, Active: true}
	if err := s.registration.Register(ctx, student, user); err != nil {
		switch {
		case database.IsUniqueViolation(err, "students_uli_key"):
			return nil, appErrors.Clone(appErrors.ErrConflict, "ULI already registered")
		case database.IsUniqueViolation(err, "students_email_key", "users_email_key"):
			return nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
		}
		return nil, appErrors.Persistence(err, "failed to register student")
	}

	if s.sink != nil {
		if err := s.sink.Log(ctx, models.ActivityStudentRegistered, "Student "+student.ULI+" registered",
			models.ActorStudent, &student.ID, models.SubjectStudent, student.ID); err != nil {
			s.logger.Warn("activity log failed", zap.String("event", models.ActivityStudentRegistered), zap.Error(err))
		}
	}
	return student, nil
}

// GetProfile returns the student with every application and its display status.
func (s *StudentService) GetProfile(ctx context.Context, id int64) (*StudentProfile, error) {
	student, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	apps, err := s.applications.ListByStudent(ctx, id)
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to load applications")
	}
	enrollments, err := s.enrollments.ListByStudent(ctx, id)
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to load enrollments")
	}
	byApplication := make(map[int64]*models.Enrollment, len(enrollments))
	for i := range enrollments {
		byApplication[enrollments[i].ApplicationID] = &enrollments[i]
	}

	today := s.clock()
	for i := range apps {
		apps[i].Enrollment = byApplication[apps[i].ID]
		apps[i].DisplayStatus = string(ResolveDisplayStatus(apps[i].CourseApplication, apps[i].Enrollment, today))
	}
	if apps == nil {
		apps = []models.ApplicationDetail{}
	}
	return &StudentProfile{Student: *student, Applications: apps}, nil
}

// UpdateProfile rewrites contact details. Lifecycle fields are never touched here.
func (s *StudentService) UpdateProfile(ctx context.Context, id int64, req UpdateProfileRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, validationMessage(err))
	}
	student, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	student.FirstName = strings.TrimSpace(req.FirstName)
	student.MiddleName = optionalString(req.MiddleName)
	student.LastName = strings.TrimSpace(req.LastName)
	student.ContactNumber = strings.TrimSpace(req.ContactNumber)
	student.BirthDate = req.BirthDate
	student.Address = strings.TrimSpace(req.Address)
	if err := s.students.UpdateProfile(ctx, student); err != nil {
		if errors.Is(err, repository.ErrStaleState) {
			return nil, appErrors.Clone(appErrors.ErrStudentNotFound, "")
		}
		return nil, appErrors.Persistence(err, "failed to update profile")
	}
	return student, nil
}

// List returns students for the admin directory.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	students, total, err := s.students.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Persistence(err, "failed to list students")
	}
	page, size := filter.Window()
	if students == nil {
		students = []models.Student{}
	}
	return students, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Delete soft deletes a student and disables its login.
func (s *StudentService) Delete(ctx context.Context, id int64) error {
	if err := s.registration.Remove(ctx, id); err != nil {
		if errors.Is(err, repository.ErrStaleState) {
			return appErrors.Clone(appErrors.ErrStudentNotFound, "")
		}
		return appErrors.Persistence(err, "failed to delete student")
	}
	s.logger.Info("student deleted", zap.Int64("student_id", id))
	return nil
}

func (s *StudentService) get(ctx context.Context, id int64) (*models.Student, error) {
	student, err := s.students.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrStudentNotFound, "")
		}
		return nil, appErrors.Persistence(err, "failed to load student")
	}
	return student, nil
}
