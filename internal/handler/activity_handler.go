package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/enrollment-portal-api/internal/dto"
	"github.com/noah-isme/enrollment-portal-api/internal/models"
	"github.com/noah-isme/enrollment-portal-api/pkg/response"
)

type activityLister interface {
	List(ctx context.Context, filter models.ActivityFilter) ([]models.ActivityLog, error)
}

type ActivityHandler struct {
	activity activityLister
}

func NewActivityHandler(activity activityLister) *ActivityHandler {
	return &ActivityHandler{activity: activity}
}

// List godoc
// @Summary Recent activity
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param event_type query string false "Event type"
// @Param subject_type query string false "student, application or enrollment"
// @Param subject_id query int false "Subject ID"
// @Param limit query int false "Max entries (default 50, max 200)"
// @Param offset query int false "Offset"
// @Success 200 {object} response.Envelope
// @Router /admin/activity [get]
func (h *ActivityHandler) List(c *gin.Context) {
	var q dto.ActivityQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, bindError(err, "invalid query"))
		return
	}
	entries, err := h.activity.List(c.Request.Context(), models.ActivityFilter{
		EventType:   q.EventType,
		SubjectType: q.SubjectType,
		SubjectID:   q.SubjectID,
		Limit:       q.Limit,
		Offset:      q.Offset,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}
