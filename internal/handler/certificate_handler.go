package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/enrollment-portal-api/internal/service"
	appErrors "github.com/noah-isme/enrollment-portal-api/pkg/errors"
	"github.com/noah-isme/enrollment-portal-api/pkg/response"
)

type certificateService interface {
	DownloadLink(ctx context.Context, enrollmentID int64, viewer service.Actor) (*service.CertificateLink, error)
	Open(token string) (io.ReadCloser, string, error)
}

// CertificateHandler issues and redeems signed certificate links.
type CertificateHandler struct {
	certificates certificateService
	downloadPath string
}

// NewCertificateHandler builds the handler. downloadPath is the public URL of Download.
func NewCertificateHandler(certificates certificateService, downloadPath string) *CertificateHandler {
	return &CertificateHandler{certificates: certificates, downloadPath: downloadPath}
}

// Link godoc
// @Summary Signed certificate download link
// @Tags Certificates
// @Produce json
// @Security BearerAuth
// @Param id path int true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /me/enrollments/{id}/certificate [get]
// @Router /admin/enrollments/{id}/certificate [get]
func (h *CertificateHandler) Link(c *gin.Context) {
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
	link, err := h.certificates.DownloadLink(c.Request.Context(), id, actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, link, nil, map[string]interface{}{
		"url": h.downloadPath + "?token=" + link.Token,
	})
}

// Download godoc
// @Summary Download a certificate PDF
// @Tags Certificates
// @Produce application/pdf
// @Param token query string true "Signed token"
// @Success 200 {file} file
// @Failure 401 {object} response.Envelope
// @Router /certificates/download [get]
func (h *CertificateHandler) Download(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "download token required"))
		return
	}
	rc, name, err := h.certificates.Open(token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer rc.Close() //nolint:errcheck
	c.Header("Cache-Control", "no-store")
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.DataFromReader(http.StatusOK, -1, "application/pdf", rc, nil)
}
