package repository

import (
	"context"
	"fmt"

	"github.com/noah-isme/enrollment-portal-api/internal/models"
)

// CourseRepository reads the training catalogue.
type CourseRepository struct {
	db dbtx
}

// NewCourseRepository constructs a CourseRepository.
func NewCourseRepository(db dbtx) *CourseRepository {
	return &CourseRepository{db: db}
}

// ListActive returns every active course ordered by name.
func (r *CourseRepository) ListActive(ctx context.Context) ([]models.Course, error) {
	const query = `SELECT id, code, name, nc_levels, active FROM courses WHERE active = TRUE ORDER BY name`
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// FindActiveByID returns an active course. Missing or inactive courses surface as sql.ErrNoRows.
func (r *CourseRepository) FindActiveByID(ctx context.Context, id int64) (*models.Course, error) {
	const query = `SELECT id, code, name, nc_levels, active FROM courses WHERE id = $1 AND active = TRUE`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// FindByID returns a course regardless of its active flag.
func (r *CourseRepository) FindByID(ctx context.Context, id int64) (*models.Course, error) {
	const query = `SELECT id, code, name, nc_levels, active FROM courses WHERE id = $1`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// AdviserRepository reads training advisers.
type AdviserRepository struct {
	db dbtx
}

// NewAdviserRepository constructs an AdviserRepository.
func NewAdviserRepository(db dbtx) *AdviserRepository {
	return &AdviserRepository{db: db}
}

// ListActive returns every active adviser ordered by name.
func (r *AdviserRepository) ListActive(ctx context.Context) ([]models.Adviser, error) {
	const query = `SELECT id, full_name, active FROM advisers WHERE active = TRUE ORDER BY full_name`
	var advisers []models.Adviser
	if err := r.db.SelectContext(ctx, &advisers, query); err != nil {
		return nil, fmt.Errorf("list advisers: %w", err)
	}
	return advisers, nil
}

// FindByID returns an adviser regardless of its active flag.
func (r *AdviserRepository) FindByID(ctx context.Context, id int64) (*models.Adviser, error) {
	const query = `SELECT id, full_name, active FROM advisers WHERE id = $1`
	var adviser models.Adviser
	if err := r.db.GetContext(ctx, &adviser, query, id); err != nil {
		return nil, err
	}
	return &adviser, nil
}

// FindActiveByID returns an active adviser. Missing or inactive advisers surface as sql.ErrNoRows.
func (r *AdviserRepository) FindActiveByID(ctx context.Context, id int64) (*models.Adviser, error) {
	const query = `SELECT id, full_name, active FROM advisers WHERE id = $1 AND active = TRUE`
	var adviser models.Adviser
	if err := r.db.GetContext(ctx, &adviser, query, id); err != nil {
		return nil, err
	}
	return &adviser, nil
}
