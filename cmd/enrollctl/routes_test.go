package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/enrollment-portal-api/internal/handler"
	"github.com/noah-isme/enrollment-portal-api/internal/models"
	"github.com/noah-isme/enrollment-portal-api/internal/service"
	"github.com/noah-isme/enrollment-portal-api/pkg/config"
)

const testSecret = "routes-test-secret"

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{Env: config.EnvProduction, APIPrefix: "/api/v1"}
	auth := service.NewAuthService(nil, nil, nil, service.AuthConfig{Secret: testSecret, Issuer: "enrollment-portal-api"})
	h := routeHandlers{
		auth:         handler.NewAuthHandler(nil),
		students:     handler.NewStudentHandler(nil),
		applications: handler.NewApplicationHandler(nil),
		enrollments:  handler.NewEnrollmentHandler(nil, nil),
		catalog:      handler.NewCatalogHandler(nil),
		activity:     handler.NewActivityHandler(nil),
		certificates: handler.NewCertificateHandler(nil, "/api/v1/certificates/download"),
		system:       handler.NewMetricsHandler(nil, nil),
	}
	return newRouter(cfg, zap.NewNop(), auth, service.NewMetricsService(), h)
}

func bearer(t *testing.T, role models.UserRole, studentID *int64) string {
	t.Helper()
	now := time.Now()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &models.JWTClaims{
		UserID:    1,
		Role:      role,
		StudentID: studentID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "enrollment-portal-api",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + token
}

func TestRouterProbes(t *testing.T) {
	r := testRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/docs/index.html", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouterAccessControl(t *testing.T) {
	r := testRouter(t)
	studentID := int64(42)
	student := bearer(t, models.RoleStudent, &studentID)
	admin := bearer(t, models.RoleAdmin, nil)

	tests := []struct {
		name   string
		method string
		path   string
		auth   string
		want   int
	}{
		{"profile needs a token", http.MethodGet, "/api/v1/me", "", http.StatusUnauthorized},
		{"admin cannot use student routes", http.MethodPost, "/api/v1/me/applications", admin, http.StatusForbidden},
		{"student cannot approve", http.MethodPost, "/api/v1/admin/applications/1/approve", student, http.StatusForbidden},
		{"student cannot read worklist", http.MethodGet, "/api/v1/admin/completions/pending", student, http.StatusForbidden},
		{"garbage token", http.MethodGet, "/api/v1/courses", "Bearer not-a-jwt", http.StatusUnauthorized},
		{"download without token", http.MethodGet, "/api/v1/certificates/download", "", http.StatusUnauthorized},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(tc.method, tc.path, nil)
			if tc.auth != "" {
				req.Header.Set("Authorization", tc.auth)
			}
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.want, w.Code)
		})
	}
}
