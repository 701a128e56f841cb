package service

import (
	"time"

	"github.com/noah-isme/enrollment-portal-api/internal/models"
)

// DisplayStatus is the presentation state of an application, derived on read and never stored.
type DisplayStatus string

// Display states.
const (
	DisplayPending                    DisplayStatus = "pending"
	DisplayEnrolled                   DisplayStatus = "enrolled"
	DisplayInProgress                 DisplayStatus = "in_progress"
	DisplayPendingStart               DisplayStatus = "pending_start"
	DisplayTrainingEnded              DisplayStatus = "training_ended"
	DisplayAwaitingCompletionApproval DisplayStatus = "awaiting_completion_approval"
	DisplayCompleted                  DisplayStatus = "completed"
	DisplayRejected                   DisplayStatus = "rejected"
	DisplayDropped                    DisplayStatus = "dropped"
)

// ResolveDisplayStatus derives the display state from stored fields and today's date.
// The enrollment, when present, takes precedence over the application status. Training
// window boundaries are compared as calendar days and are inclusive.
func ResolveDisplayStatus(app models.CourseApplication, enrollment *models.Enrollment, today time.Time) DisplayStatus {
	if enrollment != nil {
		switch enrollment.EnrollmentStatus {
		case models.EnrollmentStatusDropped:
			return DisplayDropped
		case models.EnrollmentStatusCompleted:
			if enrollment.CompletionStatus != nil && *enrollment.CompletionStatus == models.CompletionStatusApproved {
				return DisplayCompleted
			}
			return DisplayAwaitingCompletionApproval
		case models.EnrollmentStatusEnrolled:
			return windowStatus(enrollment.TrainingStart, enrollment.TrainingEnd, today)
		}
	}

	switch app.Status {
	case models.ApplicationStatusPending:
		return DisplayPending
	case models.ApplicationStatusRejected:
		return DisplayRejected
	case models.ApplicationStatusCompleted:
		return DisplayCompleted
	case models.ApplicationStatusApproved:
		return windowStatus(app.TrainingStart, app.TrainingEnd, today)
	}
	return DisplayPending
}

func windowStatus(start, end *time.Time, today time.Time) DisplayStatus {
	if start == nil && end == nil {
		return DisplayEnrolled
	}
	day := calendarDay(today)
	if start != nil && day.Before(calendarDay(*start)) {
		return DisplayPendingStart
	}
	if end != nil && day.After(calendarDay(*end)) {
		return DisplayTrainingEnded
	}
	return DisplayInProgress
}

func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
