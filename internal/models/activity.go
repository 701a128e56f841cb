package models

import "time"

// Activity event types recorded for lifecycle transitions.
const (
	ActivityApplicationSubmitted = "application_submitted"
	ActivityApplicationApproved  = "application_approved"
	ActivityApplicationRejected  = "application_rejected"
	ActivityCourseCompleted      = "course_completed"
	ActivityCertificateIssued    = "certificate_issued"
	ActivityEnrollmentDropped    = "enrollment_dropped"
	ActivityStudentRegistered    = "student_registered"
)

// Actor and subject types used in activity entries.
const (
	ActorStudent = "student"
	ActorAdmin   = "admin"
	ActorSystem  = "system"

	SubjectStudent     = "student"
	SubjectApplication = "application"
	SubjectEnrollment  = "enrollment"
)

// ActivityLog is an append-only audit trail entry.
type ActivityLog struct {
	ID          string    `db:"id" json:"id"`
	EventType   string    `db:"event_type" json:"event_type"`
	Message     string    `db:"message" json:"message"`
	ActorType   string    `db:"actor_type" json:"actor_type"`
	ActorID     *int64    `db:"actor_id" json:"actor_id,omitempty"`
	SubjectType string    `db:"subject_type" json:"subject_type"`
	SubjectID   int64     `db:"subject_id" json:"subject_id"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// ActivityFilter constrains activity listing queries.
type ActivityFilter struct {
	EventType   string
	SubjectType string
	SubjectID   int64
	Limit       int
	Offset      int
}
