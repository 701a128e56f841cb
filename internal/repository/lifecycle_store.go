package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/enrollment-portal-api/internal/models"
)

// LifecycleTx is the set of reads and conditional writes a lifecycle transition may perform
// inside a single transaction.
type LifecycleTx interface {
	LockStudent(ctx context.Context, id int64) (*models.Student, error)
	FindCourse(ctx context.Context, id int64) (*models.Course, error)
	FindAdviser(ctx context.Context, id int64) (*models.Adviser, error)
	FindApplication(ctx context.Context, id int64) (*models.CourseApplication, error)
	LockApplication(ctx context.Context, id int64) (*models.CourseApplication, error)
	FindEnrollment(ctx context.Context, id int64) (*models.Enrollment, error)
	LockEnrollment(ctx context.Context, id int64) (*models.Enrollment, error)
	HasPendingApplication(ctx context.Context, studentID int64) (bool, error)
	HasActiveEngagement(ctx context.Context, studentID int64) (bool, error)
	LatestApplicationForCourse(ctx context.Context, studentID, courseID int64) (*models.CourseApplication, error)
	InsertApplication(ctx context.Context, app *models.CourseApplication) error
	UpdateApplicationStatus(ctx context.Context, id int64, from, to models.ApplicationStatus, review *models.ApplicationReview) error
	InsertEnrollment(ctx context.Context, enrollment *models.Enrollment) error
	UpdateEnrollment(ctx context.Context, id int64, expected models.EnrollmentState, update models.EnrollmentUpdate) error
	UpdateStudentProjection(ctx context.Context, studentID int64, projection models.StudentProjection, at time.Time) error
}

// LifecycleStore runs lifecycle transitions against Postgres.
type LifecycleStore struct {
	db *sqlx.DB
}

// NewLifecycleStore constructs a LifecycleStore.
func NewLifecycleStore(db *sqlx.DB) *LifecycleStore {
	return &LifecycleStore{db: db}
}

// WithinTx runs fn in a transaction, committing when fn returns nil and rolling back otherwise.
func (s *LifecycleStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx LifecycleTx) error) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin lifecycle transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(ctx, newLifecycleTx(tx)); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit lifecycle transaction: %w", err)
	}
	return nil
}

// ListPendingCompletions reads the completion worklist outside of any transaction.
func (s *LifecycleStore) ListPendingCompletions(ctx context.Context) ([]models.PendingCompletion, error) {
	return NewEnrollmentRepository(s.db).ListPendingCompletions(ctx)
}

type lifecycleTx struct {
	students     *StudentRepository
	courses      *CourseRepository
	advisers     *AdviserRepository
	applications *CourseApplicationRepository
	enrollments  *EnrollmentRepository
}

func newLifecycleTx(tx *sqlx.Tx) *lifecycleTx {
	return &lifecycleTx{
		students:     NewStudentRepository(tx),
		courses:      NewCourseRepository(tx),
		advisers:     NewAdviserRepository(tx),
		applications: NewCourseApplicationRepository(tx),
		enrollments:  NewEnrollmentRepository(tx),
	}
}

func (t *lifecycleTx) LockStudent(ctx context.Context, id int64) (*models.Student, error) {
	return t.students.LockByID(ctx, id)
}

func (t *lifecycleTx) FindCourse(ctx context.Context, id int64) (*models.Course, error) {
	return t.courses.FindByID(ctx, id)
}

func (t *lifecycleTx) FindAdviser(ctx context.Context, id int64) (*models.Adviser, error) {
	return t.advisers.FindByID(ctx, id)
}

func (t *lifecycleTx) FindApplication(ctx context.Context, id int64) (*models.CourseApplication, error) {
	return t.applications.FindByID(ctx, id)
}

func (t *lifecycleTx) LockApplication(ctx context.Context, id int64) (*models.CourseApplication, error) {
	return t.applications.LockByID(ctx, id)
}

func (t *lifecycleTx) FindEnrollment(ctx context.Context, id int64) (*models.Enrollment, error) {
	return t.enrollments.FindByID(ctx, id)
}

func (t *lifecycleTx) LockEnrollment(ctx context.Context, id int64) (*models.Enrollment, error) {
	return t.enrollments.LockByID(ctx, id)
}

func (t *lifecycleTx) HasPendingApplication(ctx context.Context, studentID int64) (bool, error) {
	return t.applications.HasPending(ctx, studentID)
}

func (t *lifecycleTx) HasActiveEngagement(ctx context.Context, studentID int64) (bool, error) {
	return t.applications.HasActiveEngagement(ctx, studentID)
}

func (t *lifecycleTx) LatestApplicationForCourse(ctx context.Context, studentID, courseID int64) (*models.CourseApplication, error) {
	return t.applications.LatestForCourse(ctx, studentID, courseID)
}

func (t *lifecycleTx) InsertApplication(ctx context.Context, app *models.CourseApplication) error {
	return t.applications.Insert(ctx, app)
}

func (t *lifecycleTx) UpdateApplicationStatus(ctx context.Context, id int64, from, to models.ApplicationStatus, review *models.ApplicationReview) error {
	return t.applications.UpdateStatus(ctx, id, from, to, review)
}

func (t *lifecycleTx) InsertEnrollment(ctx context.Context, enrollment *models.Enrollment) error {
	return t.enrollments.Insert(ctx, enrollment)
}

func (t *lifecycleTx) UpdateEnrollment(ctx context.Context, id int64, expected models.EnrollmentState, update models.EnrollmentUpdate) error {
	return t.enrollments.Update(ctx, id, expected, update)
}

func (t *lifecycleTx) UpdateStudentProjection(ctx context.Context, studentID int64, projection models.StudentProjection, at time.Time) error {
	return t.students.UpdateProjection(ctx, studentID, projection, at)
}
