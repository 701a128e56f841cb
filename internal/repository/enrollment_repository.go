package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/noah-isme/enrollment-portal-api/internal/models"
)

const enrollmentColumns = `id, application_id, student_id, course_id, adviser_id, training_start, training_end,
        enrollment_status, completion_status, completed_at, completion_approved_at, completion_approved_by,
        certificate_number, notes, created_at, updated_at`

// EnrollmentRepository handles persistence of enrollments.
type EnrollmentRepository struct {
	db dbtx
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db dbtx) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// FindByID returns an enrollment by its ID.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id int64) (*models.Enrollment, error) {
	query := "SELECT " + enrollmentColumns + " FROM enrollments WHERE id = $1"
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, id); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// LockByID returns an enrollment holding a row lock until the transaction ends.
func (r *EnrollmentRepository) LockByID(ctx context.Context, id int64) (*models.Enrollment, error) {
	query := "SELECT " + enrollmentColumns + " FROM enrollments WHERE id = $1 FOR UPDATE"
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, id); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// ListByStudent returns all enrollments of a student.
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID int64) ([]models.Enrollment, error) {
	query := "SELECT " + enrollmentColumns + " FROM enrollments WHERE student_id = $1 ORDER BY created_at DESC"
	var enrollments []models.Enrollment
	if err := r.db.SelectContext(ctx, &enrollments, query, studentID); err != nil {
		return nil, fmt.Errorf("list student enrollments: %w", err)
	}
	return enrollments, nil
}

// Insert persists a new enrollment record and assigns its generated ID.
func (r *EnrollmentRepository) Insert(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.EnrollmentStatus == "" {
		enrollment.EnrollmentStatus = models.EnrollmentStatusEnrolled
	}
	if enrollment.CreatedAt.IsZero() {
		enrollment.CreatedAt = time.Now().UTC()
	}
	if enrollment.UpdatedAt.IsZero() {
		enrollment.UpdatedAt = enrollment.CreatedAt
	}
	const query = `INSERT INTO enrollments (application_id, student_id, course_id, adviser_id, training_start, training_end,
        enrollment_status, notes, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`
	if err := r.db.GetContext(ctx, &enrollment.ID, query,
		enrollment.ApplicationID, enrollment.StudentID, enrollment.CourseID, enrollment.AdviserID,
		enrollment.TrainingStart, enrollment.TrainingEnd, enrollment.EnrollmentStatus, enrollment.Notes,
		enrollment.CreatedAt, enrollment.UpdatedAt,
	); err != nil {
		return fmt.Errorf("insert enrollment: %w", err)
	}
	return nil
}

// Update applies the non-nil fields of update when the row still matches expected.
// A nil expected completion status matches rows whose completion_status is NULL.
func (r *EnrollmentRepository) Update(ctx context.Context, id int64, expected models.EnrollmentState, update models.EnrollmentUpdate) error {
	sets := []string{"enrollment_status = $1", "updated_at = $2"}
	args := []interface{}{update.EnrollmentStatus, update.UpdatedAt}
	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if update.CompletionStatus != nil {
		add("completion_status", *update.CompletionStatus)
	}
	if update.CompletedAt != nil {
		add("completed_at", *update.CompletedAt)
	}
	if update.CompletionApprovedAt != nil {
		add("completion_approved_at", *update.CompletionApprovedAt)
	}
	if update.CompletionApprovedBy != nil {
		add("completion_approved_by", *update.CompletionApprovedBy)
	}
	if update.CertificateNumber != nil {
		add("certificate_number", *update.CertificateNumber)
	}
	if update.Notes != nil {
		add("notes", *update.Notes)
	}

	args = append(args, id, expected.EnrollmentStatus)
	where := fmt.Sprintf("id = $%d AND enrollment_status = $%d", len(args)-1, len(args))
	if expected.CompletionStatus == nil {
		where += " AND completion_status IS NULL"
	} else {
		args = append(args, *expected.CompletionStatus)
		where += fmt.Sprintf(" AND completion_status = $%d", len(args))
	}

	query := fmt.Sprintf("UPDATE enrollments SET %s WHERE %s", strings.Join(sets, ", "), where)
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update enrollment: %w", err)
	}
	return requireAffected(result)
}

// ListPendingCompletions returns enrollments awaiting completion sign-off, oldest report first.
func (r *EnrollmentRepository) ListPendingCompletions(ctx context.Context) ([]models.PendingCompletion, error) {
	const query = `SELECT e.id AS enrollment_id, e.application_id, e.student_id, s.uli AS student_uli,
        CONCAT_WS(' ', s.first_name, s.last_name) AS student_name, e.course_id, c.name AS course_name,
        a.nc_level, adv.full_name AS adviser_name, e.training_start, e.training_end, e.completed_at
        FROM enrollments e
        JOIN students s ON s.id = e.student_id
        JOIN courses c ON c.id = e.course_id
        JOIN course_applications a ON a.id = e.application_id
        LEFT JOIN advisers adv ON adv.id = e.adviser_id
        WHERE e.completion_status = 'pending' AND s.deleted_at IS NULL
        ORDER BY e.completed_at ASC NULLS LAST, e.id ASC`
	var rows []models.PendingCompletion
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list pending completions: %w", err)
	}
	return rows, nil
}

// FindIssuedCertificate loads the printable details of an approved completion.
func (r *EnrollmentRepository) FindIssuedCertificate(ctx context.Context, id int64) (*models.IssuedCertificate, error) {
	const query = `SELECT e.id AS enrollment_id, e.student_id, CONCAT_WS(' ', s.first_name, s.middle_name, s.last_name) AS student_name,
        c.name AS course_name, a.nc_level, adv.full_name AS adviser_name, e.certificate_number, e.completion_approved_at
        FROM enrollments e
        JOIN students s ON s.id = e.student_id
        JOIN courses c ON c.id = e.course_id
        JOIN course_applications a ON a.id = e.application_id
        LEFT JOIN advisers adv ON adv.id = e.adviser_id
        WHERE e.id = $1 AND e.completion_status = 'approved' AND e.certificate_number IS NOT NULL`
	var cert models.IssuedCertificate
	if err := r.db.GetContext(ctx, &cert, query, id); err != nil {
		return nil, err
	}
	return &cert, nil
}
