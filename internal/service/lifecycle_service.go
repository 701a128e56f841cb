package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/enrollment-portal-api/internal/models"
	"github.com/noah-isme/enrollment-portal-api/internal/repository"
	"github.com/noah-isme/enrollment-portal-api/pkg/database"
	appErrors "github.com/noah-isme/enrollment-portal-api/pkg/errors"
)

const (
	pendingCompletionsCacheKey  = "enrollment:completions:pending"
	pendingApplicationIndex     = "uq_course_applications_one_pending"
	certificateNumberConstraint = "enrollments_certificate_number_key"
)

// Lifecycle operation names used for metrics.
const (
	OpSubmitApplication  = "submit_application"
	OpApproveApplication = "approve_application"
	OpRejectApplication  = "reject_application"
	OpMarkCompleted      = "mark_completed"
	OpApproveCompletion  = "approve_completion"
	OpDropEnrollment     = "drop_enrollment"
)

type lifecycleStore interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx repository.LifecycleTx) error) error
	ListPendingCompletions(ctx context.Context) ([]models.PendingCompletion, error)
}

type certificateEnqueuer interface {
	EnqueueRender(ctx context.Context, enrollmentID int64) error
}

// Actor identifies who triggered a transition. For students ID is the student id,
// for admins it is the user id.
type Actor struct {
	Type string
	ID   int64
}

// ApprovalTerms are the training terms attached to an application when it is approved.
type ApprovalTerms struct {
	AdviserID     *int64
	TrainingStart *time.Time
	TrainingEnd   *time.Time
	Notes         *string
}

// CertificateNumber formats the certificate issued for a student in the given approval year.
func CertificateNumber(year int, studentID int64) string {
	return fmt.Sprintf("CERT-%04d-%06d", year, studentID)
}

// LifecycleService owns the application, enrollment and completion state machine.
// Every operation runs in one transaction and either commits its transition or leaves
// no persisted change.
type LifecycleService struct {
	store        lifecycleStore
	sink         ActivitySink
	logger       *zap.Logger
	clock        func() time.Time
	cache        *CacheService
	cacheTTL     time.Duration
	metrics      *MetricsService
	certificates certificateEnqueuer
}

// LifecycleOption configures the service.
type LifecycleOption func(*LifecycleService)

// WithClock overrides the time source.
func WithClock(clock func() time.Time) LifecycleOption {
	return func(s *LifecycleService) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithWorklistCache caches the pending completion worklist.
func WithWorklistCache(cache *CacheService, ttl time.Duration) LifecycleOption {
	return func(s *LifecycleService) {
		s.cache = cache
		s.cacheTTL = ttl
	}
}

// WithLifecycleMetrics records transition outcomes.
func WithLifecycleMetrics(metrics *MetricsService) LifecycleOption {
	return func(s *LifecycleService) {
		s.metrics = metrics
	}
}

// WithCertificateEnqueuer schedules certificate rendering after issuance.
func WithCertificateEnqueuer(enqueuer certificateEnqueuer) LifecycleOption {
	return func(s *LifecycleService) {
		s.certificates = enqueuer
	}
}

// NewLifecycleService constructs the lifecycle engine.
func NewLifecycleService(store lifecycleStore, sink ActivitySink, logger *zap.Logger, opts ...LifecycleOption) *LifecycleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &LifecycleService{
		store:  store,
		sink:   sink,
		logger: logger,
		clock:  time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

// SubmitApplication files a pending application for the student and returns its id.
func (s *LifecycleService) SubmitApplication(ctx context.Context, studentID, courseID int64, ncLevel string) (int64, error) {
	ncLevel = strings.TrimSpace(ncLevel)
	if ncLevel == "" {
		return 0, appErrors.Clone(appErrors.ErrValidation, "nc level is required")
	}
	now := s.now()
	var (
		app    models.CourseApplication
		course *models.Course
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.LifecycleTx) error {
		student, err := tx.LockStudent(ctx, studentID)
		if err != nil {
			return notFound(err, appErrors.ErrStudentNotFound)
		}
		course, err = tx.FindCourse(ctx, courseID)
		if err != nil {
			return notFound(err, appErrors.ErrCourseNotFound)
		}
		if !course.Active {
			return appErrors.Clone(appErrors.ErrCourseNotFound, "course is not open for applications")
		}

		pending, err := tx.HasPendingApplication(ctx, student.ID)
		if err != nil {
			return err
		}
		if pending {
			return appErrors.Clone(appErrors.ErrHasPendingApplication, "")
		}
		if student.Status == models.StudentStatusApproved {
			return appErrors.Clone(appErrors.ErrHasActiveApproval, "")
		}
		active, err := tx.HasActiveEngagement(ctx, student.ID)
		if err != nil {
			return err
		}
		if active {
			return appErrors.Clone(appErrors.ErrHasActiveApproval, "")
		}
		latest, err := tx.LatestApplicationForCourse(ctx, student.ID, course.ID)
		if err != nil {
			return err
		}
		if latest != nil && latest.Status.Blocking() {
			return appErrors.Clone(appErrors.ErrDuplicateActiveCourse, "")
		}

		app = models.CourseApplication{
			StudentID: student.ID,
			CourseID:  course.ID,
			NCLevel:   ncLevel,
			Status:    models.ApplicationStatusPending,
			AppliedAt: now,
		}
		if err := tx.InsertApplication(ctx, &app); err != nil {
			return err
		}
		return tx.UpdateStudentProjection(ctx, student.ID, models.StudentProjection{
			Status:  models.StudentStatusPending,
			Course:  &course.Name,
			NCLevel: &app.NCLevel,
		}, now)
	})
	if err != nil {
		return 0, s.fail(OpSubmitApplication, err, "failed to submit application")
	}

	s.committed(ctx, OpSubmitApplication, models.ActivityApplicationSubmitted,
		fmt.Sprintf("Application #%d submitted for %s (%s)", app.ID, course.Name, app.NCLevel),
		Actor{Type: models.ActorStudent, ID: studentID}, models.SubjectApplication, app.ID)
	return app.ID, nil
}

// ApproveApplicationAndCreateEnrollment approves a pending application and opens its enrollment.
func (s *LifecycleService) ApproveApplicationAndCreateEnrollment(ctx context.Context, applicationID, adminID int64, terms ApprovalTerms) (*models.Enrollment, error) {
	if terms.TrainingStart != nil && terms.TrainingEnd != nil && terms.TrainingEnd.Before(*terms.TrainingStart) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "training end must not be before training start")
	}
	now := s.now()
	var enrollment models.Enrollment
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.LifecycleTx) error {
		app, student, err := s.lockApplication(ctx, tx, applicationID)
		if err != nil {
			return err
		}
		if app.Status != models.ApplicationStatusPending {
			return appErrors.Clone(appErrors.ErrApplicationNotPending, "")
		}

		var adviser *models.Adviser
		if terms.AdviserID != nil {
			adviser, err = tx.FindAdviser(ctx, *terms.AdviserID)
			if err != nil {
				return notFound(err, appErrors.ErrAdviserNotFound)
			}
			if !adviser.Active {
				return appErrors.Clone(appErrors.ErrAdviserNotFound, "adviser is inactive")
			}
		}
		course, err := tx.FindCourse(ctx, app.CourseID)
		if err != nil {
			return notFound(err, appErrors.ErrCourseNotFound)
		}

		if student.Status == models.StudentStatusApproved {
			return appErrors.Clone(appErrors.ErrHasActiveApproval, "")
		}
		active, err := tx.HasActiveEngagement(ctx, student.ID)
		if err != nil {
			return err
		}
		if active {
			return appErrors.Clone(appErrors.ErrHasActiveApproval, "")
		}

		if err := tx.UpdateApplicationStatus(ctx, app.ID, models.ApplicationStatusPending, models.ApplicationStatusApproved, &models.ApplicationReview{
			ReviewedAt:    now,
			ReviewedBy:    adminID,
			Notes:         terms.Notes,
			TrainingStart: terms.TrainingStart,
			TrainingEnd:   terms.TrainingEnd,
			AdviserID:     terms.AdviserID,
		}); err != nil {
			return err
		}

		enrollment = models.Enrollment{
			ApplicationID:    app.ID,
			StudentID:        student.ID,
			CourseID:         app.CourseID,
			AdviserID:        terms.AdviserID,
			TrainingStart:    terms.TrainingStart,
			TrainingEnd:      terms.TrainingEnd,
			EnrollmentStatus: models.EnrollmentStatusEnrolled,
			Notes:            terms.Notes,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if err := tx.InsertEnrollment(ctx, &enrollment); err != nil {
			return err
		}

		return tx.UpdateStudentProjection(ctx, student.ID, models.StudentProjection{
			Status:        models.StudentStatusApproved,
			Course:        &course.Name,
			NCLevel:       &app.NCLevel,
			Adviser:       adviserName(adviser),
			TrainingStart: terms.TrainingStart,
			TrainingEnd:   terms.TrainingEnd,
		}, now)
	})
	if err != nil {
		return nil, s.fail(OpApproveApplication, err, "failed to approve application")
	}

	s.committed(ctx, OpApproveApplication, models.ActivityApplicationApproved,
		fmt.Sprintf("Application #%d approved, enrollment #%d created", applicationID, enrollment.ID),
		Actor{Type: models.ActorAdmin, ID: adminID}, models.SubjectApplication, applicationID)
	return &enrollment, nil
}

// RejectApplication rejects a pending application. The student may apply again immediately.
func (s *LifecycleService) RejectApplication(ctx context.Context, applicationID, adminID int64, reason string) error {
	now := s.now()
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.LifecycleTx) error {
		app, student, err := s.lockApplication(ctx, tx, applicationID)
		if err != nil {
			return err
		}
		if app.Status != models.ApplicationStatusPending {
			return appErrors.Clone(appErrors.ErrApplicationNotPending, "")
		}
		if err := tx.UpdateApplicationStatus(ctx, app.ID, models.ApplicationStatusPending, models.ApplicationStatusRejected, &models.ApplicationReview{
			ReviewedAt: now,
			ReviewedBy: adminID,
			Notes:      optionalString(reason),
		}); err != nil {
			return err
		}
		projection := models.StudentProjection{Status: models.StudentStatusRejected, NCLevel: &app.NCLevel}
		if course, err := tx.FindCourse(ctx, app.CourseID); err == nil {
			projection.Course = &course.Name
		} else if !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		return tx.UpdateStudentProjection(ctx, student.ID, projection, now)
	})
	if err != nil {
		return s.fail(OpRejectApplication, err, "failed to reject application")
	}

	message := fmt.Sprintf("Application #%d rejected", applicationID)
	if reason = strings.TrimSpace(reason); reason != "" {
		message += ": " + reason
	}
	s.committed(ctx, OpRejectApplication, models.ActivityApplicationRejected, message,
		Actor{Type: models.ActorAdmin, ID: adminID}, models.SubjectApplication, applicationID)
	return nil
}

// MarkCourseCompleted records that training finished and queues the enrollment for sign-off.
// It reports changed=false without error when the enrollment is already completed,
// whether the sign-off is still pending or was approved.
// Student actors may only complete their own enrollments.
func (s *LifecycleService) MarkCourseCompleted(ctx context.Context, enrollmentID int64, actor Actor) (bool, error) {
	now := s.now()
	changed := false
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.LifecycleTx) error {
		current, err := tx.FindEnrollment(ctx, enrollmentID)
		if err != nil {
			return notFound(err, appErrors.ErrEnrollmentNotFound)
		}
		if actor.Type == models.ActorStudent && current.StudentID != actor.ID {
			return appErrors.Clone(appErrors.ErrEnrollmentNotFound, "")
		}
		enrollment, err := s.lockEnrollment(ctx, tx, current)
		if err != nil {
			return err
		}
		if enrollment.EnrollmentStatus == models.EnrollmentStatusCompleted {
			return nil
		}
		if enrollment.EnrollmentStatus != models.EnrollmentStatusEnrolled {
			return appErrors.Clone(appErrors.ErrEnrollmentNotEnrolled, "")
		}
		if err := tx.UpdateEnrollment(ctx, enrollment.ID,
			models.EnrollmentState{EnrollmentStatus: models.EnrollmentStatusEnrolled, CompletionStatus: enrollment.CompletionStatus},
			models.EnrollmentUpdate{
				EnrollmentStatus: models.EnrollmentStatusCompleted,
				CompletionStatus: models.CompletionStatusPtr(models.CompletionStatusPending),
				CompletedAt:      &now,
				UpdatedAt:        now,
			}); err != nil {
			return err
		}
		changed = true
		return nil
	})
	if err != nil {
		return false, s.fail(OpMarkCompleted, err, "failed to mark course completed")
	}
	if !changed {
		s.metrics.RecordTransition(OpMarkCompleted, OutcomeNoop)
		return false, nil
	}

	s.committed(ctx, OpMarkCompleted, models.ActivityCourseCompleted,
		fmt.Sprintf("Enrollment #%d marked completed, awaiting approval", enrollmentID),
		actor, models.SubjectEnrollment, enrollmentID)
	return true, nil
}

// ApproveCompletionAndIssueCertificate signs off a completed enrollment and assigns its
// certificate number. An empty certificateNumber generates one from the approval year.
func (s *LifecycleService) ApproveCompletionAndIssueCertificate(ctx context.Context, enrollmentID, adminID int64, certificateNumber, notes string) (*models.Enrollment, error) {
	now := s.now()
	var enrollment *models.Enrollment
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.LifecycleTx) error {
		current, err := tx.FindEnrollment(ctx, enrollmentID)
		if err != nil {
			return notFound(err, appErrors.ErrEnrollmentNotFound)
		}
		enrollment, err = s.lockEnrollment(ctx, tx, current)
		if err != nil {
			return err
		}
		if !enrollment.AwaitingCompletionApproval() {
			return appErrors.Clone(appErrors.ErrCompletionNotPending, "")
		}

		number := strings.TrimSpace(certificateNumber)
		if number == "" {
			number = CertificateNumber(now.Year(), enrollment.StudentID)
		} else if !ValidCertificateNumber(number) {
			return appErrors.Clone(appErrors.ErrValidation, "certificate number may only contain letters, digits and dashes")
		}
		update := models.EnrollmentUpdate{
			EnrollmentStatus:     models.EnrollmentStatusCompleted,
			CompletionStatus:     models.CompletionStatusPtr(models.CompletionStatusApproved),
			CompletionApprovedAt: &now,
			CompletionApprovedBy: &adminID,
			CertificateNumber:    &number,
			Notes:                optionalString(notes),
			UpdatedAt:            now,
		}
		if err := tx.UpdateEnrollment(ctx, enrollment.ID,
			models.EnrollmentState{EnrollmentStatus: models.EnrollmentStatusCompleted, CompletionStatus: models.CompletionStatusPtr(models.CompletionStatusPending)},
			update); err != nil {
			return err
		}
		if err := tx.UpdateApplicationStatus(ctx, enrollment.ApplicationID, models.ApplicationStatusApproved, models.ApplicationStatusCompleted, nil); err != nil {
			return err
		}

		projection, err := s.enrollmentProjection(ctx, tx, enrollment, models.StudentStatusCompleted)
		if err != nil {
			return err
		}
		if err := tx.UpdateStudentProjection(ctx, enrollment.StudentID, projection, now); err != nil {
			return err
		}

		enrollment.CompletionStatus = update.CompletionStatus
		enrollment.CompletionApprovedAt = &now
		enrollment.CompletionApprovedBy = &adminID
		enrollment.CertificateNumber = &number
		if update.Notes != nil {
			enrollment.Notes = update.Notes
		}
		enrollment.UpdatedAt = now
		return nil
	})
	if err != nil {
		if database.IsUniqueViolation(err, certificateNumberConstraint) {
			s.metrics.RecordTransition(OpApproveCompletion, OutcomeRejected)
			return nil, appErrors.Clone(appErrors.ErrConflict, "certificate number already issued")
		}
		return nil, s.fail(OpApproveCompletion, err, "failed to approve completion")
	}

	s.committed(ctx, OpApproveCompletion, models.ActivityCertificateIssued,
		fmt.Sprintf("Completion approved for enrollment #%d, certificate %s issued", enrollmentID, *enrollment.CertificateNumber),
		Actor{Type: models.ActorAdmin, ID: adminID}, models.SubjectEnrollment, enrollmentID)
	if s.certificates != nil {
		if err := s.certificates.EnqueueRender(ctx, enrollment.ID); err != nil {
			s.logger.Warn("failed to enqueue certificate rendering", zap.Int64("enrollment_id", enrollment.ID), zap.Error(err))
		}
	}
	return enrollment, nil
}

// DropEnrollment ends an enrolled training without completion. The originating application
// is closed as rejected so the student may apply again.
func (s *LifecycleService) DropEnrollment(ctx context.Context, enrollmentID, adminID int64, reason string) error {
	now := s.now()
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.LifecycleTx) error {
		current, err := tx.FindEnrollment(ctx, enrollmentID)
		if err != nil {
			return notFound(err, appErrors.ErrEnrollmentNotFound)
		}
		enrollment, err := s.lockEnrollment(ctx, tx, current)
		if err != nil {
			return err
		}
		if enrollment.EnrollmentStatus != models.EnrollmentStatusEnrolled {
			return appErrors.Clone(appErrors.ErrEnrollmentNotEnrolled, "")
		}
		if err := tx.UpdateEnrollment(ctx, enrollment.ID,
			models.EnrollmentState{EnrollmentStatus: models.EnrollmentStatusEnrolled, CompletionStatus: enrollment.CompletionStatus},
			models.EnrollmentUpdate{
				EnrollmentStatus: models.EnrollmentStatusDropped,
				Notes:            optionalString(reason),
				UpdatedAt:        now,
			}); err != nil {
			return err
		}
		if err := tx.UpdateApplicationStatus(ctx, enrollment.ApplicationID, models.ApplicationStatusApproved, models.ApplicationStatusRejected, nil); err != nil {
			return err
		}
		projection, err := s.enrollmentProjection(ctx, tx, enrollment, models.StudentStatusRejected)
		if err != nil {
			return err
		}
		projection.Adviser, projection.TrainingStart, projection.TrainingEnd = nil, nil, nil
		return tx.UpdateStudentProjection(ctx, enrollment.StudentID, projection, now)
	})
	if err != nil {
		return s.fail(OpDropEnrollment, err, "failed to drop enrollment")
	}

	message := fmt.Sprintf("Enrollment #%d dropped", enrollmentID)
	if reason = strings.TrimSpace(reason); reason != "" {
		message += ": " + reason
	}
	s.committed(ctx, OpDropEnrollment, models.ActivityEnrollmentDropped, message,
		Actor{Type: models.ActorAdmin, ID: adminID}, models.SubjectEnrollment, enrollmentID)
	return nil
}

// GetPendingCompletionApprovals returns the admin worklist of enrollments awaiting sign-off.
func (s *LifecycleService) GetPendingCompletionApprovals(ctx context.Context) ([]models.PendingCompletion, error) {
	var cached []models.PendingCompletion
	if s.cache.Get(ctx, pendingCompletionsCacheKey, &cached) {
		return cached, nil
	}
	items, err := s.store.ListPendingCompletions(ctx)
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to list pending completions")
	}
	if items == nil {
		items = []models.PendingCompletion{}
	}
	s.cache.Set(ctx, pendingCompletionsCacheKey, items, s.cacheTTL)
	return items, nil
}

func (s *LifecycleService) now() time.Time {
	return s.clock().UTC()
}

// lockApplication locks the owning student before the application so that every
// transition for one student is serialised in the same order.
func (s *LifecycleService) lockApplication(ctx context.Context, tx repository.LifecycleTx, id int64) (*models.CourseApplication, *models.Student, error) {
	current, err := tx.FindApplication(ctx, id)
	if err != nil {
		return nil, nil, notFound(err, appErrors.ErrApplicationNotFound)
	}
	student, err := tx.LockStudent(ctx, current.StudentID)
	if err != nil {
		return nil, nil, notFound(err, appErrors.ErrStudentNotFound)
	}
	app, err := tx.LockApplication(ctx, id)
	if err != nil {
		return nil, nil, notFound(err, appErrors.ErrApplicationNotFound)
	}
	return app, student, nil
}

func (s *LifecycleService) lockEnrollment(ctx context.Context, tx repository.LifecycleTx, current *models.Enrollment) (*models.Enrollment, error) {
	if _, err := tx.LockStudent(ctx, current.StudentID); err != nil {
		return nil, notFound(err, appErrors.ErrStudentNotFound)
	}
	enrollment, err := tx.LockEnrollment(ctx, current.ID)
	if err != nil {
		return nil, notFound(err, appErrors.ErrEnrollmentNotFound)
	}
	return enrollment, nil
}

func (s *LifecycleService) enrollmentProjection(ctx context.Context, tx repository.LifecycleTx, enrollment *models.Enrollment, status models.StudentStatus) (models.StudentProjection, error) {
	projection := models.StudentProjection{
		Status:        status,
		TrainingStart: enrollment.TrainingStart,
		TrainingEnd:   enrollment.TrainingEnd,
	}
	course, err := tx.FindCourse(ctx, enrollment.CourseID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return projection, err
	}
	if course != nil {
		projection.Course = &course.Name
	}
	app, err := tx.FindApplication(ctx, enrollment.ApplicationID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return projection, err
	}
	if app != nil {
		projection.NCLevel = &app.NCLevel
	}
	if enrollment.AdviserID != nil {
		adviser, err := tx.FindAdviser(ctx, *enrollment.AdviserID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return projection, err
		}
		projection.Adviser = adviserName(adviser)
	}
	return projection, nil
}

// committed runs the post-commit side effects of a state-changing transition.
func (s *LifecycleService) committed(ctx context.Context, op, eventType, message string, actor Actor, subjectType string, subjectID int64) {
	s.metrics.RecordTransition(op, OutcomeChanged)
	s.cache.Invalidate(ctx, pendingCompletionsCacheKey)
	s.logger.Info("lifecycle transition", zap.String("operation", op), zap.String("subject_type", subjectType), zap.Int64("subject_id", subjectID))
	s.emitActivity(ctx, eventType, message, actor, subjectType, subjectID)
}

func (s *LifecycleService) emitActivity(ctx context.Context, eventType, message string, actor Actor, subjectType string, subjectID int64) {
	if s.sink == nil {
		return
	}
	actorID := actor.ID
	if err := s.sink.Log(ctx, eventType, message, actor.Type, &actorID, subjectType, subjectID); err != nil {
		s.logger.Warn("failed to record lifecycle activity", zap.String("event", eventType), zap.Int64("subject_id", subjectID), zap.Error(err))
	}
}

// fail translates a transaction error into the lifecycle taxonomy and records the outcome.
func (s *LifecycleService) fail(op string, err error, message string) error {
	var appErr *appErrors.Error
	switch {
	case errors.As(err, &appErr):
		s.metrics.RecordTransition(op, OutcomeRejected)
		return appErr
	case errors.Is(err, repository.ErrStaleState):
		s.metrics.RecordTransition(op, OutcomeRejected)
		return appErrors.Clone(appErrors.ErrConcurrentModification, "")
	case database.IsUniqueViolation(err, pendingApplicationIndex):
		s.metrics.RecordTransition(op, OutcomeRejected)
		return appErrors.Clone(appErrors.ErrHasPendingApplication, "")
	}
	s.metrics.RecordTransition(op, OutcomeFailed)
	s.logger.Error(message, zap.String("operation", op), zap.Error(err))
	return appErrors.Persistence(err, message)
}

func notFound(err error, template *appErrors.Error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(template, "")
	}
	return err
}

func adviserName(adviser *models.Adviser) *string {
	if adviser == nil {
		return nil
	}
	name := adviser.FullName
	return &name
}

func optionalString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
