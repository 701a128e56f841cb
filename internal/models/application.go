package models

import "time"

// ApplicationStatus captures the review state of a course application.
type ApplicationStatus string

const (
	ApplicationStatusPending   ApplicationStatus = "pending"
	ApplicationStatusApproved  ApplicationStatus = "approved"
	ApplicationStatusRejected  ApplicationStatus = "rejected"
	ApplicationStatusCompleted ApplicationStatus = "completed"
)

// Blocking reports whether an application in this status prevents a new one for the same course.
func (s ApplicationStatus) Blocking() bool {
	return s != ApplicationStatusRejected && s != ApplicationStatusCompleted
}

// CourseApplication is one attempt by a student to enroll in a course.
type CourseApplication struct {
	ID            int64             `db:"id" json:"id"`
	StudentID     int64             `db:"student_id" json:"student_id"`
	CourseID      int64             `db:"course_id" json:"course_id"`
	NCLevel       string            `db:"nc_level" json:"nc_level"`
	Status        ApplicationStatus `db:"status" json:"status"`
	AppliedAt     time.Time         `db:"applied_at" json:"applied_at"`
	ReviewedAt    *time.Time        `db:"reviewed_at" json:"reviewed_at,omitempty"`
	ReviewedBy    *int64            `db:"reviewed_by" json:"reviewed_by,omitempty"`
	ReviewNotes   *string           `db:"review_notes" json:"review_notes,omitempty"`
	TrainingStart *time.Time        `db:"training_start" json:"training_start,omitempty"`
	TrainingEnd   *time.Time        `db:"training_end" json:"training_end,omitempty"`
	AdviserID     *int64            `db:"adviser_id" json:"adviser_id,omitempty"`
}

// ApplicationReview groups the columns written when an application leaves pending.
type ApplicationReview struct {
	ReviewedAt    time.Time
	ReviewedBy    int64
	Notes         *string
	TrainingStart *time.Time
	TrainingEnd   *time.Time
	AdviserID     *int64
}

// ApplicationDetail enriches an application with its course and optional enrollment.
type ApplicationDetail struct {
	CourseApplication
	CourseName    string      `db:"course_name" json:"course_name"`
	Enrollment    *Enrollment `db:"-" json:"enrollment,omitempty"`
	DisplayStatus string      `db:"-" json:"display_status"`
}
