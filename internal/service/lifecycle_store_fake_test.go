package service

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/lib/pq"

	"github.com/noah-isme/enrollment-portal-api/internal/models"
	"github.com/noah-isme/enrollment-portal-api/internal/repository"
)

// memoryStore is a transactional in-memory lifecycle store. Transactions are serialised
// and rolled back by restoring a snapshot.
type memoryStore struct {
	mu sync.Mutex

	nextApplication int64
	nextEnrollment  int64

	students     map[int64]models.Student
	courses      map[int64]models.Course
	advisers     map[int64]models.Adviser
	applications map[int64]models.CourseApplication
	enrollments  map[int64]models.Enrollment

	// failures keyed by method name, returned the next time the method runs.
	failures map[string]error
	// beforeUpdate runs inside conditional updates to simulate a concurrent writer.
	beforeUpdate func(s *memoryStore)

	listErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		students:     map[int64]models.Student{},
		courses:      map[int64]models.Course{},
		advisers:     map[int64]models.Adviser{},
		applications: map[int64]models.CourseApplication{},
		enrollments:  map[int64]models.Enrollment{},
		failures:     map[string]error{},
	}
}

func (s *memoryStore) addStudent(id int64) {
	s.students[id] = models.Student{ID: id, ULI: "ABC-12-345-67890-123", FirstName: "Juan", LastName: "Cruz", Status: models.StudentStatusPending}
}

func (s *memoryStore) addCourse(id int64, name string) {
	s.courses[id] = models.Course{ID: id, Code: name, Name: name, NCLevels: "NC II", Active: true}
}

func (s *memoryStore) addAdviser(id int64, name string) {
	s.advisers[id] = models.Adviser{ID: id, FullName: name, Active: true}
}

func (s *memoryStore) seedApplication(app models.CourseApplication) int64 {
	s.nextApplication++
	app.ID = s.nextApplication
	s.applications[app.ID] = app
	return app.ID
}

func (s *memoryStore) seedEnrollment(e models.Enrollment) int64 {
	s.nextEnrollment++
	e.ID = s.nextEnrollment
	s.enrollments[e.ID] = e
	return e.ID
}

func (s *memoryStore) applicationsFor(studentID int64) []models.CourseApplication {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.CourseApplication
	for _, app := range s.applications {
		if app.StudentID == studentID {
			out = append(out, app)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type memorySnapshot struct {
	nextApplication, nextEnrollment int64
	students                        map[int64]models.Student
	applications                    map[int64]models.CourseApplication
	enrollments                     map[int64]models.Enrollment
}

func (s *memoryStore) snapshot() memorySnapshot {
	snap := memorySnapshot{
		nextApplication: s.nextApplication,
		nextEnrollment:  s.nextEnrollment,
		students:        make(map[int64]models.Student, len(s.students)),
		applications:    make(map[int64]models.CourseApplication, len(s.applications)),
		enrollments:     make(map[int64]models.Enrollment, len(s.enrollments)),
	}
	for k, v := range s.students {
		snap.students[k] = v
	}
	for k, v := range s.applications {
		snap.applications[k] = v
	}
	for k, v := range s.enrollments {
		snap.enrollments[k] = v
	}
	return snap
}

func (s *memoryStore) restore(snap memorySnapshot) {
	s.nextApplication = snap.nextApplication
	s.nextEnrollment = snap.nextEnrollment
	s.students = snap.students
	s.applications = snap.applications
	s.enrollments = snap.enrollments
}

func (s *memoryStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repository.LifecycleTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.snapshot()
	if err := fn(ctx, &memoryTx{s: s}); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func (s *memoryStore) ListPendingCompletions(ctx context.Context) ([]models.PendingCompletion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []models.PendingCompletion
	for _, e := range s.enrollments {
		if !e.AwaitingCompletionApproval() {
			continue
		}
		student := s.students[e.StudentID]
		out = append(out, models.PendingCompletion{
			EnrollmentID:  e.ID,
			ApplicationID: e.ApplicationID,
			StudentID:     e.StudentID,
			StudentULI:    student.ULI,
			StudentName:   student.FirstName + " " + student.LastName,
			CourseID:      e.CourseID,
			CourseName:    s.courses[e.CourseID].Name,
			NCLevel:       s.applications[e.ApplicationID].NCLevel,
			CompletedAt:   e.CompletedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EnrollmentID < out[j].EnrollmentID })
	return out, nil
}

type memoryTx struct {
	s *memoryStore
}

func (t *memoryTx) fail(method string) error {
	if err, ok := t.s.failures[method]; ok {
		delete(t.s.failures, method)
		return err
	}
	return nil
}

func (t *memoryTx) LockStudent(ctx context.Context, id int64) (*models.Student, error) {
	if err := t.fail("LockStudent"); err != nil {
		return nil, err
	}
	student, ok := t.s.students[id]
	if !ok || student.DeletedAt != nil {
		return nil, sql.ErrNoRows
	}
	return &student, nil
}

func (t *memoryTx) FindCourse(ctx context.Context, id int64) (*models.Course, error) {
	course, ok := t.s.courses[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &course, nil
}

func (t *memoryTx) FindAdviser(ctx context.Context, id int64) (*models.Adviser, error) {
	adviser, ok := t.s.advisers[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &adviser, nil
}

func (t *memoryTx) FindApplication(ctx context.Context, id int64) (*models.CourseApplication, error) {
	app, ok := t.s.applications[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &app, nil
}

func (t *memoryTx) LockApplication(ctx context.Context, id int64) (*models.CourseApplication, error) {
	return t.FindApplication(ctx, id)
}

func (t *memoryTx) FindEnrollment(ctx context.Context, id int64) (*models.Enrollment, error) {
	e, ok := t.s.enrollments[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &e, nil
}

func (t *memoryTx) LockEnrollment(ctx context.Context, id int64) (*models.Enrollment, error) {
	return t.FindEnrollment(ctx, id)
}

func (t *memoryTx) HasPendingApplication(ctx context.Context, studentID int64) (bool, error) {
	if err := t.fail("HasPendingApplication"); err != nil {
		return false, err
	}
	for _, app := range t.s.applications {
		if app.StudentID == studentID && app.Status == models.ApplicationStatusPending {
			return true, nil
		}
	}
	return false, nil
}

func (t *memoryTx) HasActiveEngagement(ctx context.Context, studentID int64) (bool, error) {
	for _, app := range t.s.applications {
		if app.StudentID != studentID || app.Status != models.ApplicationStatusApproved {
			continue
		}
		dropped := false
		for _, e := range t.s.enrollments {
			if e.ApplicationID == app.ID && e.EnrollmentStatus == models.EnrollmentStatusDropped {
				dropped = true
			}
		}
		if !dropped {
			return true, nil
		}
	}
	for _, e := range t.s.enrollments {
		if e.StudentID == studentID && e.Unresolved() {
			return true, nil
		}
	}
	return false, nil
}

func (t *memoryTx) LatestApplicationForCourse(ctx context.Context, studentID, courseID int64) (*models.CourseApplication, error) {
	var latest *models.CourseApplication
	for _, app := range t.s.applications {
		if app.StudentID != studentID || app.CourseID != courseID {
			continue
		}
		app := app
		if latest == nil || app.AppliedAt.After(latest.AppliedAt) || (app.AppliedAt.Equal(latest.AppliedAt) && app.ID > latest.ID) {
			latest = &app
		}
	}
	return latest, nil
}

func (t *memoryTx) InsertApplication(ctx context.Context, app *models.CourseApplication) error {
	if err := t.fail("InsertApplication"); err != nil {
		return err
	}
	for _, existing := range t.s.applications {
		if existing.StudentID == app.StudentID && existing.Status == models.ApplicationStatusPending {
			return &pq.Error{Code: "23505", Constraint: "uq_course_applications_one_pending"}
		}
	}
	t.s.nextApplication++
	app.ID = t.s.nextApplication
	t.s.applications[app.ID] = *app
	return nil
}

func (t *memoryTx) UpdateApplicationStatus(ctx context.Context, id int64, from, to models.ApplicationStatus, review *models.ApplicationReview) error {
	if t.s.beforeUpdate != nil {
		t.s.beforeUpdate(t.s)
	}
	app, ok := t.s.applications[id]
	if !ok || app.Status != from {
		return repository.ErrStaleState
	}
	app.Status = to
	if review != nil {
		reviewedAt := review.ReviewedAt
		reviewedBy := review.ReviewedBy
		app.ReviewedAt = &reviewedAt
		app.ReviewedBy = &reviewedBy
		app.ReviewNotes = review.Notes
		app.TrainingStart = review.TrainingStart
		app.TrainingEnd = review.TrainingEnd
		app.AdviserID = review.AdviserID
	}
	t.s.applications[id] = app
	return nil
}

func (t *memoryTx) InsertEnrollment(ctx context.Context, enrollment *models.Enrollment) error {
	for _, existing := range t.s.enrollments {
		if existing.ApplicationID == enrollment.ApplicationID {
			return &pq.Error{Code: "23505", Constraint: "enrollments_application_key"}
		}
	}
	t.s.nextEnrollment++
	enrollment.ID = t.s.nextEnrollment
	t.s.enrollments[enrollment.ID] = *enrollment
	return nil
}

func (t *memoryTx) UpdateEnrollment(ctx context.Context, id int64, expected models.EnrollmentState, update models.EnrollmentUpdate) error {
	if t.s.beforeUpdate != nil {
		t.s.beforeUpdate(t.s)
	}
	e, ok := t.s.enrollments[id]
	if !ok || e.EnrollmentStatus != expected.EnrollmentStatus || !sameCompletion(e.CompletionStatus, expected.CompletionStatus) {
		return repository.ErrStaleState
	}
	if update.CertificateNumber != nil {
		for otherID, other := range t.s.enrollments {
			if otherID != id && other.CertificateNumber != nil && *other.CertificateNumber == *update.CertificateNumber {
				return &pq.Error{Code: "23505", Constraint: "enrollments_certificate_number_key"}
			}
		}
	}
	e.EnrollmentStatus = update.EnrollmentStatus
	e.UpdatedAt = update.UpdatedAt
	if update.CompletionStatus != nil {
		e.CompletionStatus = update.CompletionStatus
	}
	if update.CompletedAt != nil {
		e.CompletedAt = update.CompletedAt
	}
	if update.CompletionApprovedAt != nil {
		e.CompletionApprovedAt = update.CompletionApprovedAt
	}
	if update.CompletionApprovedBy != nil {
		e.CompletionApprovedBy = update.CompletionApprovedBy
	}
	if update.CertificateNumber != nil {
		e.CertificateNumber = update.CertificateNumber
	}
	if update.Notes != nil {
		e.Notes = update.Notes
	}
	t.s.enrollments[id] = e
	return nil
}

func (t *memoryTx) UpdateStudentProjection(ctx context.Context, studentID int64, projection models.StudentProjection, at time.Time) error {
	if err := t.fail("UpdateStudentProjection"); err != nil {
		return err
	}
	student, ok := t.s.students[studentID]
	if !ok {
		return repository.ErrStaleState
	}
	student.Status = projection.Status
	student.Course = projection.Course
	student.NCLevel = projection.NCLevel
	student.Adviser = projection.Adviser
	student.TrainingStart = projection.TrainingStart
	student.TrainingEnd = projection.TrainingEnd
	student.UpdatedAt = at
	t.s.students[studentID] = student
	return nil
}

func sameCompletion(a, b *models.CompletionStatus) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

type recordedActivity struct {
	EventType   string
	Message     string
	ActorType   string
	ActorID     *int64
	SubjectType string
	SubjectID   int64
}

type recordingSink struct {
	mu      sync.Mutex
	entries []recordedActivity
	err     error
}

func (r *recordingSink) Log(ctx context.Context, eventType, message, actorType string, actorID *int64, subjectType string, subjectID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, recordedActivity{eventType, message, actorType, actorID, subjectType, subjectID})
	return r.err
}

func (r *recordingSink) events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.EventType
	}
	return out
}

type recordingEnqueuer struct {
	mu          sync.Mutex
	enrollments []int64
	err         error
}

func (r *recordingEnqueuer) EnqueueRender(ctx context.Context, enrollmentID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enrollments = append(r.enrollments, enrollmentID)
	return r.err
}
