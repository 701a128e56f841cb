package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/enrollment-portal-api/internal/middleware"
	"github.com/noah-isme/enrollment-portal-api/internal/models"
	"github.com/noah-isme/enrollment-portal-api/internal/service"
	appErrors "github.com/noah-isme/enrollment-portal-api/pkg/errors"
)

const dateLayout = "2006-01-02"

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		service.RegisterValidations(v)
	}
}

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// actorFromClaims maps a token to the lifecycle actor. Students act as their
// student record, admins as their user.
func actorFromClaims(claims *models.JWTClaims) (service.Actor, error) {
	if claims == nil {
		return service.Actor{}, appErrors.ErrUnauthorized
	}
	if claims.Role == models.RoleStudent {
		if claims.StudentID == nil {
			return service.Actor{}, appErrors.Clone(appErrors.ErrForbidden, "no student record linked")
		}
		return service.Actor{Type: models.ActorStudent, ID: *claims.StudentID}, nil
	}
	return service.Actor{Type: models.ActorAdmin, ID: claims.UserID}, nil
}

func currentStudentID(c *gin.Context) (int64, error) {
	actor, err := actorFromClaims(claimsFromContext(c))
	if err != nil {
		return 0, err
	}
	if actor.Type != models.ActorStudent {
		return 0, appErrors.Clone(appErrors.ErrForbidden, "student account required")
	}
	return actor.ID, nil
}

func currentAdminID(c *gin.Context) (int64, error) {
	claims := claimsFromContext(c)
	if claims == nil {
		return 0, appErrors.ErrUnauthorized
	}
	if claims.Role != models.RoleAdmin {
		return 0, appErrors.ErrForbidden
	}
	return claims.UserID, nil
}

func idParam(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "invalid "+name)
	}
	return id, nil
}

func parseDate(field, raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, field+" must be YYYY-MM-DD")
	}
	return &t, nil
}

func bindError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, message)
}

// bindOptionalJSON binds a JSON body when one is present. An empty body leaves dest untouched.
func bindOptionalJSON(c *gin.Context, dest interface{}) error {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return nil
	}
	if err := c.ShouldBindJSON(dest); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
