package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/enrollment-portal-api/internal/models"
	appErrors "github.com/noah-isme/enrollment-portal-api/pkg/errors"
)

type stubValidator struct{}

func (stubValidator) ValidateToken(token string) (*models.JWTClaims, error) {
	sid := int64(42)
	switch token {
	case "student":
		return &models.JWTClaims{UserID: 5, Role: models.RoleStudent, StudentID: &sid}, nil
	case "admin":
		return &models.JWTClaims{UserID: 1, Role: models.RoleAdmin}, nil
	}
	return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin", JWT(stubValidator{}), RequireRoles(models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.GET("/any", JWT(stubValidator{}), RequireRoles(models.RoleAdmin, models.RoleStudent), func(c *gin.Context) {
		claims := c.MustGet(ContextUserKey).(*models.JWTClaims)
		c.String(http.StatusOK, string(claims.Role))
	})
	return r
}

func TestJWTAndRoles(t *testing.T) {
	r := newRouter()
	cases := []struct {
		path   string
		header string
		want   int
	}{
		{"/admin", "", http.StatusUnauthorized},
		{"/admin", "Token admin", http.StatusUnauthorized},
		{"/admin", "Bearer nope", http.StatusUnauthorized},
		{"/admin", "Bearer student", http.StatusForbidden},
		{"/admin", "Bearer admin", http.StatusOK},
		{"/any", "bearer student", http.StatusOK},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, tc.path, nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		r.ServeHTTP(w, req)
		assert.Equal(t, tc.want, w.Code, tc.path+" "+tc.header)
	}
}

func TestRequireRolesWithoutClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", RequireRoles(models.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMetricsMiddlewareWithoutService(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Metrics(nil))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}
