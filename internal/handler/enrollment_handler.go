package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/enrollment-portal-api/internal/dto"
	"github.com/noah-isme/enrollment-portal-api/internal/models"
	"github.com/noah-isme/enrollment-portal-api/internal/service"
	"github.com/noah-isme/enrollment-portal-api/pkg/response"
)

type enrollmentLifecycle interface {
	MarkCourseCompleted(ctx context.Context, enrollmentID int64, actor service.Actor) (bool, error)
	ApproveCompletionAndIssueCertificate(ctx context.Context, enrollmentID, adminID int64, certificateNumber, notes string) (*models.Enrollment, error)
	DropEnrollment(ctx context.Context, enrollmentID, adminID int64, reason string) error
	GetPendingCompletionApprovals(ctx context.Context) ([]models.PendingCompletion, error)
}

type worklistExporter interface {
	PendingCompletions(ctx context.Context, format service.ExportFormat) (*service.ExportFile, error)
}

// EnrollmentHandler exposes completion reporting, sign-off and the admin worklist.
type EnrollmentHandler struct {
	lifecycle enrollmentLifecycle
	exporter  worklistExporter
}

func NewEnrollmentHandler(lifecycle enrollmentLifecycle, exporter worklistExporter) *EnrollmentHandler {
	return &EnrollmentHandler{lifecycle: lifecycle, exporter: exporter}
}

// MarkCompleted godoc
// @Summary Report training as completed
// @Description Students may only report their own enrollments. Repeating the call is a no-op.
// @Tags Enrollments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /me/enrollments/{id}/complete [post]
// @Router /admin/enrollments/{id}/complete [post]
func (h *EnrollmentHandler) MarkCompleted(c *gin.Context) {
	actor, err := actorFromClaims(claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	changed, err := h.lifecycle.MarkCourseCompleted(c.Request.Context(), id, actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.MarkCompletedResponse{EnrollmentID: id, Changed: changed}, nil)
}

// ApproveCompletion godoc
// @Summary Approve completion and issue the certificate
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Enrollment ID"
// @Param payload body dto.ApproveCompletionRequest false "Certificate override"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /admin/enrollments/{id}/approve-completion [post]
func (h *EnrollmentHandler) ApproveCompletion(c *gin.Context) {
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
	var req dto.ApproveCompletionRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		response.Error(c, bindError(err, "invalid completion payload"))
		return
	}
	enrollment, err := h.lifecycle.ApproveCompletionAndIssueCertificate(c.Request.Context(), id, adminID, req.CertificateNumber, req.Notes)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollment, nil)
}

// Drop godoc
// @Summary Drop an active enrollment
// @Tags Admin
// @Accept json
// @Security BearerAuth
// @Param id path int true "Enrollment ID"
// @Param payload body dto.DropEnrollmentRequest false "Reason"
// @Success 204
// @Failure 412 {object} response.Envelope
// @Router /admin/enrollments/{id}/drop [post]
func (h *EnrollmentHandler) Drop(c *gin.Context) {
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
	var req dto.DropEnrollmentRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		response.Error(c, bindError(err, "invalid drop payload"))
		return
	}
	if err := h.lifecycle.DropEnrollment(c.Request.Context(), id, adminID, req.Reason); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// PendingCompletions godoc
// @Summary Completion approval worklist
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /admin/completions/pending [get]
func (h *EnrollmentHandler) PendingCompletions(c *gin.Context) {
	items, err := h.lifecycle.GetPendingCompletionApprovals(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil, map[string]interface{}{"count": len(items)})
}

// ExportPendingCompletions godoc
// @Summary Download the completion worklist
// @Tags Admin
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Router /admin/completions/pending/export [get]
func (h *EnrollmentHandler) ExportPendingCompletions(c *gin.Context) {
	file, err := h.exporter.PendingCompletions(c.Request.Context(), service.ExportFormat(c.DefaultQuery("format", "csv")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, file.Filename, file.ContentType, file.Data)
}
