package dto

// SubmitApplicationRequest is sent by a student applying to a course.
type SubmitApplicationRequest struct {
	CourseID int64  `json:"course_id" binding:"required,gt=0"`
	NCLevel  string `json:"nc_level" binding:"required"`
}

// ApproveApplicationRequest carries the training terms set by the reviewer.
// Dates use the YYYY-MM-DD layout.
type ApproveApplicationRequest struct {
	AdviserID     *int64  `json:"adviser_id"`
	TrainingStart string  `json:"training_start"`
	TrainingEnd   string  `json:"training_end"`
	Notes         *string `json:"notes"`
}

type RejectApplicationRequest struct {
	Reason string `json:"reason"`
}

// ApproveCompletionRequest optionally overrides the generated certificate number.
type ApproveCompletionRequest struct {
	CertificateNumber string `json:"certificate_number" binding:"omitempty,certno"`
	Notes             string `json:"notes"`
}

type DropEnrollmentRequest struct {
	Reason string `json:"reason"`
}

// SubmitApplicationResponse returns the id of the new pending application.
type SubmitApplicationResponse struct {
	ApplicationID int64 `json:"application_id"`
}

// MarkCompletedResponse reports whether the call moved the enrollment.
type MarkCompletedResponse struct {
	EnrollmentID int64 `json:"enrollment_id"`
	Changed      bool  `json:"changed"`
}
