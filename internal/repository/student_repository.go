package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/noah-isme/enrollment-portal-api/internal/models"
)

const studentColumns = `id, uli, first_name, middle_name, last_name, email, contact_number, birth_date, address,
        status, course, nc_level, adviser, training_start, training_end, created_at, updated_at, deleted_at`

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db dbtx
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db dbtx) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns non-deleted students matching the provided filters.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	conditions := []string{"deleted_at IS NULL"}
	var args []interface{}

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(first_name || ' ' || last_name) LIKE $%d OR LOWER(uli) LIKE $%d OR LOWER(email) LIKE $%d)", len(args)+1, len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	where := " WHERE " + strings.Join(conditions, " AND ")

	allowedSorts := map[string]string{
		"last_name":  "last_name",
		"uli":        "uli",
		"status":     "status",
		"created_at": "created_at",
	}
	column, ok := allowedSorts[filter.SortBy]
	if !ok {
		column = "created_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	page, size := filter.Window()
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s FROM students%s ORDER BY %s %s LIMIT %d OFFSET %d", studentColumns, where, column, order, size, offset)
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM students"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// FindByID fetches a non-deleted student. Missing rows surface as sql.ErrNoRows.
func (r *StudentRepository) FindByID(ctx context.Context, id int64) (*models.Student, error) {
	query := "SELECT " + studentColumns + " FROM students WHERE id = $1 AND deleted_at IS NULL"
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// LockByID fetches a non-deleted student holding a row lock until the transaction ends.
func (r *StudentRepository) LockByID(ctx context.Context, id int64) (*models.Student, error) {
	query := "SELECT " + studentColumns + " FROM students WHERE id = $1 AND deleted_at IS NULL FOR UPDATE"
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// Create inserts a new student and assigns its generated ID.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now
	if student.Status == "" {
		student.Status = models.StudentStatusPending
	}
	const query = `INSERT INTO students (uli, first_name, middle_name, last_name, email, contact_number, birth_date, address, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id`
	if err := r.db.GetContext(ctx, &student.ID, query,
		student.ULI, student.FirstName, student.MiddleName, student.LastName, student.Email, student.ContactNumber,
		student.BirthDate, student.Address, student.Status, student.CreatedAt, student.UpdatedAt,
	); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// UpdateProfile rewrites the contact fields a student may edit.
func (r *StudentRepository) UpdateProfile(ctx context.Context, student *models.Student) error {
	student.UpdatedAt = time.Now().UTC()
	const query = `UPDATE students SET first_name = :first_name, middle_name = :middle_name, last_name = :last_name,
        contact_number = :contact_number, birth_date = :birth_date, address = :address, updated_at = :updated_at
        WHERE id = :id AND deleted_at IS NULL`
	result, err := r.db.NamedExecContext(ctx, query, student)
	if err != nil {
		return fmt.Errorf("update student profile: %w", err)
	}
	return requireAffected(result)
}

// UpdateProjection writes the legacy denormalised lifecycle fields.
func (r *StudentRepository) UpdateProjection(ctx context.Context, id int64, p models.StudentProjection, at time.Time) error {
	const query = `UPDATE students SET status = $2, course = $3, nc_level = $4, adviser = $5,
        training_start = $6, training_end = $7, updated_at = $8 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, p.Status, p.Course, p.NCLevel, p.Adviser, p.TrainingStart, p.TrainingEnd, at)
	if err != nil {
		return fmt.Errorf("update student projection: %w", err)
	}
	return requireAffected(result)
}

// UpdateStatus changes only the projected status, leaving course fields as they are.
func (r *StudentRepository) UpdateStatus(ctx context.Context, id int64, status models.StudentStatus, at time.Time) error {
	const query = `UPDATE students SET status = $2, updated_at = $3 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, status, at)
	if err != nil {
		return fmt.Errorf("update student status: %w", err)
	}
	return requireAffected(result)
}

// SoftDelete flags a student as deleted. Already deleted rows yield ErrStaleState.
func (r *StudentRepository) SoftDelete(ctx context.Context, id int64) error {
	now := time.Now().UTC()
	const query = `UPDATE students SET deleted_at = $2, updated_at = $2 WHERE id = $1 AND deleted_at IS NULL`
	result, err := r.db.ExecContext(ctx, query, id, now)
	if err != nil {
		return fmt.Errorf("soft delete student: %w", err)
	}
	return requireAffected(result)
}
