package models

import "time"

// EnrollmentStatus represents the training state of an enrollment.
type EnrollmentStatus string

// Possible enrollment statuses.
const (
	EnrollmentStatusEnrolled  EnrollmentStatus = "enrolled"
	EnrollmentStatusCompleted EnrollmentStatus = "completed"
	EnrollmentStatusDropped   EnrollmentStatus = "dropped"
)

// CompletionStatus represents the admin sign-off on a completed enrollment.
type CompletionStatus string

// Possible completion statuses.
const (
	CompletionStatusPending  CompletionStatus = "pending"
	CompletionStatusApproved CompletionStatus = "approved"
)

// Enrollment is the active-training record created from an approved application.
type Enrollment struct {
	ID                   int64             `db:"id" json:"id"`
	ApplicationID        int64             `db:"application_id" json:"application_id"`
	StudentID            int64             `db:"student_id" json:"student_id"`
	CourseID             int64             `db:"course_id" json:"course_id"`
	AdviserID            *int64            `db:"adviser_id" json:"adviser_id,omitempty"`
	TrainingStart        *time.Time        `db:"training_start" json:"training_start,omitempty"`
	TrainingEnd          *time.Time        `db:"training_end" json:"training_end,omitempty"`
	EnrollmentStatus     EnrollmentStatus  `db:"enrollment_status" json:"enrollment_status"`
	CompletionStatus     *CompletionStatus `db:"completion_status" json:"completion_status,omitempty"`
	CompletedAt          *time.Time        `db:"completed_at" json:"completed_at,omitempty"`
	CompletionApprovedAt *time.Time        `db:"completion_approved_at" json:"completion_approved_at,omitempty"`
	CompletionApprovedBy *int64            `db:"completion_approved_by" json:"completion_approved_by,omitempty"`
	CertificateNumber    *string           `db:"certificate_number" json:"certificate_number,omitempty"`
	Notes                *string           `db:"notes" json:"notes,omitempty"`
	CreatedAt            time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time         `db:"updated_at" json:"updated_at"`
}

// Unresolved reports whether the enrollment still occupies the student's single active slot.
func (e Enrollment) Unresolved() bool {
	switch e.EnrollmentStatus {
	case EnrollmentStatusEnrolled:
		return true
	case EnrollmentStatusCompleted:
		return e.CompletionStatus == nil || *e.CompletionStatus != CompletionStatusApproved
	default:
		return false
	}
}

// AwaitingCompletionApproval reports whether the enrollment waits for admin sign-off.
func (e Enrollment) AwaitingCompletionApproval() bool {
	return e.EnrollmentStatus == EnrollmentStatusCompleted &&
		e.CompletionStatus != nil && *e.CompletionStatus == CompletionStatusPending
}

// EnrollmentUpdate lists the columns a transition may set. Nil fields are left untouched.
type EnrollmentUpdate struct {
	EnrollmentStatus     EnrollmentStatus
	CompletionStatus     *CompletionStatus
	CompletedAt          *time.Time
	CompletionApprovedAt *time.Time
	CompletionApprovedBy *int64
	CertificateNumber    *string
	Notes                *string
	UpdatedAt            time.Time
}

// EnrollmentState is the precondition a conditional enrollment update is checked against.
type EnrollmentState struct {
	EnrollmentStatus EnrollmentStatus
	CompletionStatus *CompletionStatus
}

// PendingCompletion is one row of the admin completion worklist.
type PendingCompletion struct {
	EnrollmentID  int64      `db:"enrollment_id" json:"enrollment_id"`
	ApplicationID int64      `db:"application_id" json:"application_id"`
	StudentID     int64      `db:"student_id" json:"student_id"`
	StudentULI    string     `db:"student_uli" json:"student_uli"`
	StudentName   string     `db:"student_name" json:"student_name"`
	CourseID      int64      `db:"course_id" json:"course_id"`
	CourseName    string     `db:"course_name" json:"course_name"`
	NCLevel       string     `db:"nc_level" json:"nc_level"`
	AdviserName   *string    `db:"adviser_name" json:"adviser_name,omitempty"`
	TrainingStart *time.Time `db:"training_start" json:"training_start,omitempty"`
	TrainingEnd   *time.Time `db:"training_end" json:"training_end,omitempty"`
	CompletedAt   *time.Time `db:"completed_at" json:"completed_at,omitempty"`
}

// IssuedCertificate carries what is printed on a completion certificate.
type IssuedCertificate struct {
	EnrollmentID      int64     `db:"enrollment_id" json:"enrollment_id"`
	StudentID         int64     `db:"student_id" json:"student_id"`
	StudentName       string    `db:"student_name" json:"student_name"`
	CourseName        string    `db:"course_name" json:"course_name"`
	NCLevel           string    `db:"nc_level" json:"nc_level"`
	AdviserName       *string   `db:"adviser_name" json:"adviser_name,omitempty"`
	CertificateNumber string    `db:"certificate_number" json:"certificate_number"`
	ApprovedAt        time.Time `db:"completion_approved_at" json:"approved_at"`
}

// CertificateKey is the storage key of a rendered certificate.
func (c IssuedCertificate) CertificateKey() string {
	return "certificates/" + c.CertificateNumber + ".pdf"
}

// CompletionStatusPtr returns a pointer to the provided status.
func CompletionStatusPtr(status CompletionStatus) *CompletionStatus {
	return &status
}
