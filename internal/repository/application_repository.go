package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/noah-isme/enrollment-portal-api/internal/models"
)

const applicationColumns = `id, student_id, course_id, nc_level, status, applied_at, reviewed_at, reviewed_by,
        review_notes, training_start, training_end, adviser_id`

// CourseApplicationRepository persists course applications.
type CourseApplicationRepository struct {
	db dbtx
}

// NewCourseApplicationRepository constructs the repository.
func NewCourseApplicationRepository(db dbtx) *CourseApplicationRepository {
	return &CourseApplicationRepository{db: db}
}

// FindByID returns an application by its ID.
func (r *CourseApplicationRepository) FindByID(ctx context.Context, id int64) (*models.CourseApplication, error) {
	query := "SELECT " + applicationColumns + " FROM course_applications WHERE id = $1"
	var app models.CourseApplication
	if err := r.db.GetContext(ctx, &app, query, id); err != nil {
		return nil, err
	}
	return &app, nil
}

// LockByID returns an application holding a row lock until the transaction ends.
func (r *CourseApplicationRepository) LockByID(ctx context.Context, id int64) (*models.CourseApplication, error) {
	query := "SELECT " + applicationColumns + " FROM course_applications WHERE id = $1 FOR UPDATE"
	var app models.CourseApplication
	if err := r.db.GetContext(ctx, &app, query, id); err != nil {
		return nil, err
	}
	return &app, nil
}

// HasPending reports whether the student has an application awaiting review.
func (r *CourseApplicationRepository) HasPending(ctx context.Context, studentID int64) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM course_applications WHERE student_id = $1 AND status = 'pending')`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, studentID); err != nil {
		return false, fmt.Errorf("check pending application: %w", err)
	}
	return exists, nil
}

// HasActiveEngagement reports whether the student holds an approval or an enrollment that
// has not reached an approved completion.
func (r *CourseApplicationRepository) HasActiveEngagement(ctx context.Context, studentID int64) (bool, error) {
	const query = `SELECT EXISTS (
        SELECT 1 FROM course_applications a
        LEFT JOIN enrollments e ON e.application_id = a.id
        WHERE a.student_id = $1 AND a.status = 'approved'
          AND (e.id IS NULL OR e.enrollment_status <> 'dropped')
        UNION ALL
        SELECT 1 FROM enrollments e
        WHERE e.student_id = $1
          AND (e.enrollment_status = 'enrolled'
               OR (e.enrollment_status = 'completed' AND e.completion_status IS DISTINCT FROM 'approved'))
    )`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, studentID); err != nil {
		return false, fmt.Errorf("check active engagement: %w", err)
	}
	return exists, nil
}

// LatestForCourse returns the student's most recent application for a course, or nil when none exists.
func (r *CourseApplicationRepository) LatestForCourse(ctx context.Context, studentID, courseID int64) (*models.CourseApplication, error) {
	query := "SELECT " + applicationColumns + ` FROM course_applications
        WHERE student_id = $1 AND course_id = $2 ORDER BY applied_at DESC, id DESC LIMIT 1`
	var app models.CourseApplication
	if err := r.db.GetContext(ctx, &app, query, studentID, courseID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find latest application: %w", err)
	}
	return &app, nil
}

// ListByStudent returns every application of a student, newest first, with the course name.
func (r *CourseApplicationRepository) ListByStudent(ctx context.Context, studentID int64) ([]models.ApplicationDetail, error) {
	const query = `SELECT a.id, a.student_id, a.course_id, a.nc_level, a.status, a.applied_at, a.reviewed_at, a.reviewed_by,
        a.review_notes, a.training_start, a.training_end, a.adviser_id, c.name AS course_name
        FROM course_applications a
        JOIN courses c ON c.id = a.course_id
        WHERE a.student_id = $1
        ORDER BY a.applied_at DESC, a.id DESC`
	var apps []models.ApplicationDetail
	if err := r.db.SelectContext(ctx, &apps, query, studentID); err != nil {
		return nil, fmt.Errorf("list student applications: %w", err)
	}
	return apps, nil
}

// Insert stores a new application and assigns its generated ID.
func (r *CourseApplicationRepository) Insert(ctx context.Context, app *models.CourseApplication) error {
	if app.Status == "" {
		app.Status = models.ApplicationStatusPending
	}
	const query = `INSERT INTO course_applications (student_id, course_id, nc_level, status, applied_at)
        VALUES ($1, $2, $3, $4, $5) RETURNING id`
	if err := r.db.GetContext(ctx, &app.ID, query, app.StudentID, app.CourseID, app.NCLevel, app.Status, app.AppliedAt); err != nil {
		return fmt.Errorf("insert application: %w", err)
	}
	return nil
}

// UpdateStatus moves an application from one status to another. The review columns are
// written only when review is provided. Zero affected rows yields ErrStaleState.
func (r *CourseApplicationRepository) UpdateStatus(ctx context.Context, id int64, from, to models.ApplicationStatus, review *models.ApplicationReview) error {
	var (
		result sql.Result
		err    error
	)
	if review == nil {
		const query = `UPDATE course_applications SET status = $3 WHERE id = $1 AND status = $2`
		result, err = r.db.ExecContext(ctx, query, id, from, to)
	} else {
		const query = `UPDATE course_applications SET status = $3, reviewed_at = $4, reviewed_by = $5, review_notes = $6,
            training_start = $7, training_end = $8, adviser_id = $9
            WHERE id = $1 AND status = $2`
		result, err = r.db.ExecContext(ctx, query, id, from, to, review.ReviewedAt, review.ReviewedBy, review.Notes,
			review.TrainingStart, review.TrainingEnd, review.AdviserID)
	}
	if err != nil {
		return fmt.Errorf("update application status: %w", err)
	}
	return requireAffected(result)
}
