package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/enrollment-portal-api/internal/dto"
	"github.com/noah-isme/enrollment-portal-api/internal/models"
	"github.com/noah-isme/enrollment-portal-api/internal/service"
	"github.com/noah-isme/enrollment-portal-api/pkg/response"
)

type applicationLifecycle interface {
	SubmitApplication(ctx context.Context, studentID, courseID int64, ncLevel string) (int64, error)
	ApproveApplicationAndCreateEnrollment(ctx context.Context, applicationID, adminID int64, terms service.ApprovalTerms) (*models.Enrollment, error)
	RejectApplication(ctx context.Context, applicationID, adminID int64, reason string) error
}

// ApplicationHandler exposes course application submission and review.
type ApplicationHandler struct {
	lifecycle applicationLifecycle
}

func NewApplicationHandler(lifecycle applicationLifecycle) *ApplicationHandler {
	return &ApplicationHandler{lifecycle: lifecycle}
}

// Submit godoc
// @Summary Apply to a course
// @Tags Applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.SubmitApplicationRequest true "Application"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /me/applications [post]
func (h *ApplicationHandler) Submit(c *gin.Context) {
	studentID, err := currentStudentID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.SubmitApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid application payload"))
		return
	}
	id, err := h.lifecycle.SubmitApplication(c.Request.Context(), studentID, req.CourseID, req.NCLevel)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.SubmitApplicationResponse{ApplicationID: id})
}

// Approve godoc
// @Summary Approve an application and open its enrollment
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Param payload body dto.ApproveApplicationRequest false "Training terms"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /admin/applications/{id}/approve [post]
func (h *ApplicationHandler) Approve(c *gin.Context) {
	adminID, err := currentAdminID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.ApproveApplicationRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		response.Error(c, bindError(err, "invalid approval payload"))
		return
	}
	terms := service.ApprovalTerms{AdviserID: req.AdviserID, Notes: req.Notes}
	if terms.TrainingStart, err = parseDate("training_start", req.TrainingStart); err != nil {
		response.Error(c, err)
		return
	}
	if terms.TrainingEnd, err = parseDate("training_end", req.TrainingEnd); err != nil {
		response.Error(c, err)
		return
	}
	enrollment, err := h.lifecycle.ApproveApplicationAndCreateEnrollment(c.Request.Context(), id, adminID, terms)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, enrollment)
}

// Reject godoc
// @Summary Reject a pending application
// @Tags Admin
// @Accept json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Param payload body dto.RejectApplicationRequest false "Reason"
// @Success 204
// @Failure 412 {object} response.Envelope
// @Router /admin/applications/{id}/reject [post]
func (h *ApplicationHandler) Reject(c *gin.Context) {
	adminID, err := currentAdminID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.RejectApplicationRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		response.Error(c, bindError(err, "invalid rejection payload"))
		return
	}
	if err := h.lifecycle.RejectApplication(c.Request.Context(), id, adminID, req.Reason); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
